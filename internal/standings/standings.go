// Package standings orders a league's participant stats into a ranked table.
package standings

import (
	"fmt"
	"sort"

	"github.com/mauv0809/shuttle-league/internal/apperr"
	"github.com/mauv0809/shuttle-league/internal/league"
)

// PodiumSize is the number of places shown as champions.
const PodiumSize = 3

// Standing is one ranked row of the table.
type Standing struct {
	Position int `json:"position"`
	league.ParticipantStats
	PointDiff     int     `json:"point_diff"`
	WinPercentage float64 `json:"win_percentage"`
}

// Rank orders stats by wins desc, matches played asc, losses asc, point differential desc,
// points scored desc, points conceded asc, then name and user id asc.
// The input is not modified. Every record must reference a user.
func Rank(stats []league.ParticipantStats) ([]Standing, error) {
	ranked := make([]Standing, 0, len(stats))
	for i, s := range stats {
		if s.UserID == "" {
			return nil, apperr.Invalid("rank standings", fmt.Sprintf("stats record %d has no user", i))
		}
		ranked = append(ranked, Standing{
			ParticipantStats: s,
			PointDiff:        s.PointDiff(),
			WinPercentage:    WinPercentage(s),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i].ParticipantStats, ranked[j].ParticipantStats)
	})
	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked, nil
}

func less(a, b league.ParticipantStats) bool {
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	if a.MatchesPlayed != b.MatchesPlayed {
		return a.MatchesPlayed < b.MatchesPlayed
	}
	if a.Losses != b.Losses {
		return a.Losses < b.Losses
	}
	if a.PointDiff() != b.PointDiff() {
		return a.PointDiff() > b.PointDiff()
	}
	if a.PointsScored != b.PointsScored {
		return a.PointsScored > b.PointsScored
	}
	if a.PointsConceded != b.PointsConceded {
		return a.PointsConceded < b.PointsConceded
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.UserID < b.UserID
}

// Podium returns the first PodiumSize entries, or fewer when the league is smaller.
func Podium(ranked []Standing) []Standing {
	n := min(PodiumSize, len(ranked))
	return ranked[:n:n]
}

// WinPercentage is wins over matches played, as a percentage. Zero when nothing was played.
func WinPercentage(s league.ParticipantStats) float64 {
	if s.MatchesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.MatchesPlayed) * 100
}
