package league

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/shuttle-league/internal/apperr"
	"github.com/mauv0809/shuttle-league/internal/database"
)

// insertParticipant upserts the (league, user) row as ACTIVE. An existing row keeps its role.
func insertParticipant(ctx context.Context, q queryer, leagueID, userID string, role Role, now time.Time) (*Participant, error) {
	p := &Participant{
		ID:       uuid.New().String(),
		LeagueID: leagueID,
		UserID:   userID,
		Role:     role,
		Status:   StatusActive,
		JoinedAt: now,
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO league_participants (id, league_id, user_id, role, status, joined_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(league_id, user_id) DO UPDATE SET
			status = excluded.status,
			joined_at = excluded.joined_at`,
		p.ID, p.LeagueID, p.UserID, p.Role, p.Status, now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert participant: %w", err)
	}
	return getParticipant(ctx, q, leagueID, userID)
}

// ensureStats creates the zeroed stats row for a participant if it does not exist yet.
func ensureStats(ctx context.Context, q queryer, leagueID, userID string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO participant_stats (league_id, user_id) VALUES (?, ?)
		ON CONFLICT(league_id, user_id) DO NOTHING`, leagueID, userID)
	if err != nil {
		return fmt.Errorf("failed to create participant stats: %w", err)
	}
	return nil
}

const participantQuery = `
	SELECT p.id, p.league_id, p.user_id, COALESCE(u.display_name, ''), p.role, p.status, p.joined_at
	FROM league_participants p
	LEFT JOIN users u ON u.id = p.user_id`

func scanParticipant(scanner interface{ Scan(...any) error }) (*Participant, error) {
	var (
		p        Participant
		joinedAt int64
	)
	if err := scanner.Scan(&p.ID, &p.LeagueID, &p.UserID, &p.Name, &p.Role, &p.Status, &joinedAt); err != nil {
		return nil, err
	}
	p.JoinedAt = time.Unix(joinedAt, 0)
	return &p, nil
}

func getParticipant(ctx context.Context, q queryer, leagueID, userID string) (*Participant, error) {
	row := q.QueryRowContext(ctx, participantQuery+` WHERE p.league_id = ? AND p.user_id = ?`, leagueID, userID)
	p, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

func (s *store) GetParticipant(ctx context.Context, leagueID, userID string) (*Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getParticipant(ctx, s.db, leagueID, userID)
}

func (s *store) ListParticipants(ctx context.Context, leagueID string) ([]Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, participantQuery+` WHERE p.league_id = ? ORDER BY p.joined_at, p.user_id`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := []Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

// UpdateParticipantRole changes a member's role. The creator role is fixed at league creation.
func (s *store) UpdateParticipantRole(ctx context.Context, leagueID, userID string, role Role) error {
	switch role {
	case RoleAdmin, RolePlayer, RoleSpectator:
	case RoleCreator:
		return apperr.Field("role", "the creator role cannot be assigned")
	default:
		return apperr.Field("role", "unknown role")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := getParticipant(ctx, s.db, leagueID, userID)
	if err != nil {
		return err
	}
	if p.Role == RoleCreator {
		return apperr.Field("role", "the creator role cannot be changed")
	}
	_, err = s.db.ExecContext(ctx, `UPDATE league_participants SET role = ? WHERE league_id = ? AND user_id = ?`, role, leagueID, userID)
	if err != nil {
		return fmt.Errorf("failed to update participant role: %w", err)
	}
	log.Info("Updated participant role", "leagueID", leagueID, "userID", userID, "role", role)
	return nil
}

// JoinLeague lets a user join a public league without an invitation.
func (s *store) JoinLeague(ctx context.Context, leagueID, userID string) (*Participant, error) {
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
	if l.Visibility != VisibilityPublic {
		return nil, apperr.ErrLeaguePrivate
	}
	if existing, err := getParticipant(ctx, tx, leagueID, userID); err == nil && existing.Status == StatusActive {
		return nil, apperr.ErrAlreadyParticipant
	} else if err != nil && !errors.Is(err, apperr.ErrParticipantNotFound) {
		return nil, err
	}

	p, err := insertParticipant(ctx, tx, leagueID, userID, RolePlayer, time.Now())
	if err != nil {
		return nil, err
	}
	if err := ensureStats(ctx, tx, leagueID, userID); err != nil {
		return nil, err
	}
	// A pending invitation is moot once the user is in.
	if _, err := tx.ExecContext(ctx, `DELETE FROM invitations WHERE league_id = ? AND receiver_id = ?`, leagueID, userID); err != nil {
		return nil, fmt.Errorf("failed to clear invitation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit join: %w", err)
	}
	log.Info("User joined league", "leagueID", leagueID, "userID", userID)
	return p, nil
}

// LeaveLeague moves a participant back to "no relationship". Their stats row goes with them.
func (s *store) LeaveLeague(ctx context.Context, leagueID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := getParticipant(ctx, tx, leagueID, userID)
	if err != nil {
		return err
	}
	if p.Role == RoleCreator {
		return apperr.ErrCreatorCannotLeave
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM league_participants WHERE league_id = ? AND user_id = ?`, leagueID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	if err := database.CheckAffected(res, apperr.ErrParticipantNotFound); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM participant_stats WHERE league_id = ? AND user_id = ?`, leagueID, userID); err != nil {
		return fmt.Errorf("failed to delete participant stats: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit leave: %w", err)
	}
	log.Info("User left league", "leagueID", leagueID, "userID", userID)
	return nil
}

// ParticipationState derives NONE / INVITED / ACTIVE from the participant and invitation rows.
func (s *store) ParticipationState(ctx context.Context, leagueID, userID string) (ParticipationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := getParticipant(ctx, s.db, leagueID, userID)
	switch {
	case err == nil && p.Status == StatusActive:
		return StateActive, nil
	case err != nil && !errors.Is(err, apperr.ErrParticipantNotFound):
		return StateNone, err
	}

	var invited bool
	err = s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM invitations WHERE league_id = ? AND receiver_id = ?)`, leagueID, userID).Scan(&invited)
	if err != nil {
		return StateNone, fmt.Errorf("failed to check invitation: %w", err)
	}
	if invited {
		return StateInvited, nil
	}
	return StateNone, nil
}

// ListStats returns the stats rows of one league with the participants' display names.
func (s *store) ListStats(ctx context.Context, leagueID string) ([]ParticipantStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			ps.league_id,
			ps.user_id,
			COALESCE(u.display_name, ''),
			ps.wins,
			ps.losses,
			ps.points_scored,
			ps.points_conceded,
			ps.matches_played
		FROM participant_stats ps
		LEFT JOIN users u ON u.id = ps.user_id
		WHERE ps.league_id = ?`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participant stats: %w", err)
	}
	defer rows.Close()

	stats := []ParticipantStats{}
	for rows.Next() {
		var stat ParticipantStats
		err := rows.Scan(
			&stat.LeagueID,
			&stat.UserID,
			&stat.Name,
			&stat.Wins,
			&stat.Losses,
			&stat.PointsScored,
			&stat.PointsConceded,
			&stat.MatchesPlayed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}
