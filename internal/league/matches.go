package league

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/shuttle-league/internal/apperr"
)

// CreateMatch schedules a match between two teams of active participants.
// Teams have one player each, or two when the league plays doubles.
func (s *store) CreateMatch(ctx context.Context, leagueID string, team1, team2 []string) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	l, err := getLeague(ctx, tx, leagueID)
	if err != nil {
		return nil, err
	}
	if err := validateTeams(l.Rules, team1, team2); err != nil {
		return nil, err
	}
	for _, userID := range append(append([]string{}, team1...), team2...) {
		p, err := getParticipant(ctx, tx, leagueID, userID)
		if err != nil {
			if errors.Is(err, apperr.ErrParticipantNotFound) {
				return nil, apperr.Field("teams", fmt.Sprintf("%s is not a participant of this league", userID))
			}
			return nil, err
		}
		if p.Status != StatusActive || p.Role == RoleSpectator {
			return nil, apperr.Field("teams", fmt.Sprintf("%s cannot play in this league", userID))
		}
	}

	t1, err := json.Marshal(team1)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal team1: %w", err)
	}
	t2, err := json.Marshal(team2)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal team2: %w", err)
	}

	now := time.Now()
	m := &Match{
		ID:        uuid.New().String(),
		LeagueID:  leagueID,
		Team1:     team1,
		Team2:     team2,
		Status:    MatchScheduled,
		CreatedAt: now,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO matches (id, league_id, team1_json, team2_json, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`, m.ID, m.LeagueID, string(t1), string(t2), m.Status, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to insert match: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match: %w", err)
	}
	log.Info("Created match", "matchID", m.ID, "leagueID", leagueID, "team1", team1, "team2", team2)
	return m, nil
}

func validateTeams(rules Rules, team1, team2 []string) error {
	size := 1
	if rules.Double {
		size = 2
	}
	if len(team1) != size || len(team2) != size {
		return apperr.Field("teams", fmt.Sprintf("each team needs exactly %d player(s)", size))
	}
	seen := make(map[string]bool, size*2)
	for _, id := range append(append([]string{}, team1...), team2...) {
		if id == "" {
			return apperr.Field("teams", "player id is required")
		}
		if seen[id] {
			return apperr.Field("teams", "a player can only appear once in a match")
		}
		seen[id] = true
	}
	return nil
}

// ValidateScore checks a final score against the league rules. There are no ties, and the
// winner must reach the point target. With deuce the winner needs a two point lead past it.
func ValidateScore(rules Rules, score1, score2 int) error {
	if score1 < 0 || score2 < 0 {
		return apperr.Field("score", "scores cannot be negative")
	}
	if score1 == score2 {
		return apperr.Field("score", "a match cannot end in a tie")
	}
	winner, loser := score1, score2
	if score2 > score1 {
		winner, loser = score2, score1
	}
	target := rules.Points
	if !rules.Deuce {
		if winner != target {
			return apperr.Field("score", fmt.Sprintf("the winner must score exactly %d points", target))
		}
		return nil
	}
	switch {
	case winner == target && loser <= target-2:
		return nil
	case winner > target && loser == winner-2:
		return nil
	}
	return apperr.Field("score", fmt.Sprintf("invalid score %d-%d for a game to %d with deuce", score1, score2, target))
}

const matchColumns = `id, league_id, team1_json, team2_json, score1, score2, status, created_at, started_at, finished_at`

func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var (
		m                     Match
		team1, team2          string
		createdAt             int64
		startedAt, finishedAt sql.NullInt64
	)
	err := scanner.Scan(&m.ID, &m.LeagueID, &team1, &team2, &m.Score1, &m.Score2, &m.Status, &createdAt, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(team1), &m.Team1); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team1: %w", err)
	}
	if err := json.Unmarshal([]byte(team2), &m.Team2); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team2: %w", err)
	}
	m.CreatedAt = time.Unix(createdAt, 0)
	if startedAt.Valid {
		t := time.Unix(startedAt.Int64, 0)
		m.StartedAt = &t
	}
	if finishedAt.Valid {
		t := time.Unix(finishedAt.Int64, 0)
		m.FinishedAt = &t
	}
	return &m, nil
}

func getMatch(ctx context.Context, q queryer, matchID string) (*Match, error) {
	m, err := scanMatch(q.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, matchID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

func (s *store) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getMatch(ctx, s.db, matchID)
}

func (s *store) ListMatches(ctx context.Context, leagueID string) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE league_id = ? ORDER BY created_at DESC, id`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := []Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// StartMatch moves a match from SCHEDULED to PLAYING.
func (s *store) StartMatch(ctx context.Context, matchID string) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	res, err := s.db.ExecContext(ctx, `UPDATE matches SET status = ?, started_at = ? WHERE id = ? AND status = ?`,
		MatchPlaying, now.Unix(), matchID, MatchScheduled)
	if err != nil {
		return nil, fmt.Errorf("failed to start match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check affected rows: %w", err)
	}
	m, err := getMatch(ctx, s.db, matchID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.ErrMatchStatusTransition
	}
	log.Info("Started match", "matchID", matchID, "leagueID", m.LeagueID)
	return m, nil
}

// FinishMatch records the final score and folds it into every player's stats in one transaction.
// A match can be finished from SCHEDULED or PLAYING, but only once.
func (s *store) FinishMatch(ctx context.Context, matchID string, score1, score2 int) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	m, err := getMatch(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status == MatchFinished {
		return nil, apperr.ErrMatchStatusTransition
	}
	l, err := getLeague(ctx, tx, m.LeagueID)
	if err != nil {
		return nil, err
	}
	if err := ValidateScore(l.Rules, score1, score2); err != nil {
		return nil, err
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `UPDATE matches SET score1 = ?, score2 = ?, status = ?, finished_at = ? WHERE id = ?`,
		score1, score2, MatchFinished, now.Unix(), matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to finish match: %w", err)
	}

	team1Won := score1 > score2
	if err := applyResult(ctx, tx, m.LeagueID, m.Team1, team1Won, score1, score2); err != nil {
		return nil, err
	}
	if err := applyResult(ctx, tx, m.LeagueID, m.Team2, !team1Won, score2, score1); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match result: %w", err)
	}

	m.Score1, m.Score2 = score1, score2
	m.Status = MatchFinished
	m.FinishedAt = &now
	log.Info("Finished match", "matchID", matchID, "leagueID", m.LeagueID, "score1", score1, "score2", score2)
	return m, nil
}

// applyResult adds one match to the stats of every player on a team. Players who left the
// league since the match was scheduled have no stats row and are skipped.
func applyResult(ctx context.Context, q queryer, leagueID string, team []string, won bool, scored, conceded int) error {
	win, loss := 0, 1
	if won {
		win, loss = 1, 0
	}
	for _, userID := range team {
		_, err := q.ExecContext(ctx, `
			UPDATE participant_stats SET
				wins = wins + ?,
				losses = losses + ?,
				points_scored = points_scored + ?,
				points_conceded = points_conceded + ?,
				matches_played = matches_played + 1
			WHERE league_id = ? AND user_id = ?`,
			win, loss, scored, conceded, leagueID, userID)
		if err != nil {
			return fmt.Errorf("failed to update stats for %s: %w", userID, err)
		}
	}
	return nil
}
