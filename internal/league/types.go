package league

import (
	"database/sql"
	"sync"
	"time"
)

// store handles all database operations for leagues, participants, invitations and matches.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

type Visibility string

const (
	VisibilityPrivate Visibility = "PRIVATE"
	VisibilityPublic  Visibility = "PUBLIC"
)

type Role string

const (
	RoleCreator   Role = "CREATOR"
	RoleAdmin     Role = "ADMIN"
	RolePlayer    Role = "PLAYER"
	RoleSpectator Role = "SPECTATOR"
)

type ParticipantStatus string

const (
	StatusPending ParticipantStatus = "PENDING"
	StatusActive  ParticipantStatus = "ACTIVE"
	StatusInvited ParticipantStatus = "INVITED"
)

// ParticipationState is a user's relationship to one league.
type ParticipationState string

const (
	StateNone    ParticipationState = "NONE"
	StateInvited ParticipationState = "INVITED"
	StateActive  ParticipationState = "ACTIVE"
)

type MatchStatus string

const (
	MatchScheduled MatchStatus = "SCHEDULED"
	MatchPlaying   MatchStatus = "PLAYING"
	MatchFinished  MatchStatus = "FINISHED"
)

// Rules are the per-league match rules. FixedDouble is only meaningful when Double is set.
type Rules struct {
	Points      int   `json:"points"`
	Deuce       bool  `json:"deuce"`
	Double      bool  `json:"double"`
	FixedDouble *bool `json:"fixed_double,omitempty"`
}

type League struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	Visibility Visibility `json:"visibility"`
	Rules      Rules      `json:"rules"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewLeague is the input for CreateLeague.
type NewLeague struct {
	Name       string
	Visibility Visibility
	Rules      Rules
	CreatorID  string
}

// RulesUpdate carries the toggles to change; nil fields are left alone.
type RulesUpdate struct {
	Points      *int  `json:"points,omitempty"`
	Deuce       *bool `json:"deuce,omitempty"`
	Double      *bool `json:"double,omitempty"`
	FixedDouble *bool `json:"fixed_double,omitempty"`
}

type Participant struct {
	ID       string            `json:"id"`
	LeagueID string            `json:"league_id"`
	UserID   string            `json:"user_id"`
	Name     string            `json:"name"`
	Role     Role              `json:"role"`
	Status   ParticipantStatus `json:"status"`
	JoinedAt time.Time         `json:"joined_at"`
}

// ParticipantStats are the aggregate counters for one user in one league.
type ParticipantStats struct {
	LeagueID       string `json:"league_id"`
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Wins           int    `json:"wins"`
	Losses         int    `json:"losses"`
	PointsScored   int    `json:"points_scored"`
	PointsConceded int    `json:"points_conceded"`
	MatchesPlayed  int    `json:"matches_played"`
}

// PointDiff is points scored minus points conceded.
func (s ParticipantStats) PointDiff() int {
	return s.PointsScored - s.PointsConceded
}

type Match struct {
	ID         string      `json:"id"`
	LeagueID   string      `json:"league_id"`
	Team1      []string    `json:"team1"`
	Team2      []string    `json:"team2"`
	Score1     int         `json:"score1"`
	Score2     int         `json:"score2"`
	Status     MatchStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	StartedAt  *time.Time  `json:"started_at,omitempty"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

// Winners returns the winning team of a finished match, or nil.
func (m *Match) Winners() []string {
	if m.Status != MatchFinished || m.Score1 == m.Score2 {
		return nil
	}
	if m.Score1 > m.Score2 {
		return m.Team1
	}
	return m.Team2
}

type Invitation struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	LeagueID   string    `json:"league_id"`
	LeagueName string    `json:"league_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
