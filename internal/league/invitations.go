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

// SendInvitation creates an invitation for (receiver, league). A second invitation for the same
// pair is rejected by the unique index, so concurrent senders cannot both succeed.
func (s *store) SendInvitation(ctx context.Context, senderID, receiverID, leagueID string) (*Invitation, error) {
	if senderID == "" || receiverID == "" {
		return nil, apperr.Invalid("send invitation", "sender and receiver are required")
	}
	if senderID == receiverID {
		return nil, apperr.Field("receiver_id", "you cannot invite yourself")
	}

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
	if p, err := getParticipant(ctx, tx, leagueID, receiverID); err == nil && p.Status == StatusActive {
		return nil, apperr.ErrAlreadyParticipant
	} else if err != nil && !errors.Is(err, apperr.ErrParticipantNotFound) {
		return nil, err
	}

	now := time.Now()
	inv := &Invitation{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		LeagueID:   leagueID,
		LeagueName: l.Name,
		CreatedAt:  now,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO invitations (id, sender_id, receiver_id, league_id, created_at)
		VALUES (?, ?, ?, ?, ?)`, inv.ID, inv.SenderID, inv.ReceiverID, inv.LeagueID, now.Unix())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.ErrAlreadyInvited
		}
		return nil, fmt.Errorf("failed to insert invitation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invitation: %w", err)
	}
	log.Info("Sent league invitation", "invitationID", inv.ID, "leagueID", leagueID, "sender", senderID, "receiver", receiverID)
	return inv, nil
}

const invitationQuery = `
	SELECT i.id, i.sender_id, i.receiver_id, i.league_id, COALESCE(l.name, ''), i.created_at
	FROM invitations i
	LEFT JOIN leagues l ON l.id = i.league_id`

func scanInvitation(scanner interface{ Scan(...any) error }) (*Invitation, error) {
	var (
		inv       Invitation
		createdAt int64
	)
	if err := scanner.Scan(&inv.ID, &inv.SenderID, &inv.ReceiverID, &inv.LeagueID, &inv.LeagueName, &createdAt); err != nil {
		return nil, err
	}
	inv.CreatedAt = time.Unix(createdAt, 0)
	return &inv, nil
}

func (s *store) GetInvitation(ctx context.Context, invitationID string) (*Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, err := scanInvitation(s.db.QueryRowContext(ctx, invitationQuery+` WHERE i.id = ?`, invitationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// AcceptInvitation deletes the invitation and activates the participant in one transaction.
// If the invitation is already gone the caller gets ErrInvitationNotFound and nothing is written.
func (s *store) AcceptInvitation(ctx context.Context, invitationID, leagueID, userID string) (*Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM invitations WHERE id = ? AND league_id = ? AND receiver_id = ?`, invitationID, leagueID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete invitation: %w", err)
	}
	if err := database.CheckAffected(res, apperr.ErrInvitationNotFound); err != nil {
		return nil, err
	}

	p, err := insertParticipant(ctx, tx, leagueID, userID, RolePlayer, time.Now())
	if err != nil {
		return nil, err
	}
	if err := ensureStats(ctx, tx, leagueID, userID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invitation acceptance: %w", err)
	}
	log.Info("Accepted league invitation", "invitationID", invitationID, "leagueID", leagueID, "userID", userID)
	return p, nil
}

// DeclineInvitation deletes the invitation. Declining one that is already gone is a no-op.
func (s *store) DeclineInvitation(ctx context.Context, invitationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = ?`, invitationID)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		log.Debug("Invitation already gone", "invitationID", invitationID)
	}
	return nil
}

func (s *store) ListInvitationsForUser(ctx context.Context, userID string) ([]Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listInvitations(ctx, invitationQuery+` WHERE i.receiver_id = ? ORDER BY i.created_at DESC, i.id`, userID)
}

func (s *store) ListInvitationsForLeague(ctx context.Context, leagueID string) ([]Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listInvitations(ctx, invitationQuery+` WHERE i.league_id = ? ORDER BY i.created_at DESC, i.id`, leagueID)
}

func (s *store) listInvitations(ctx context.Context, query string, args ...any) ([]Invitation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()

	invitations := []Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation row: %w", err)
		}
		invitations = append(invitations, *inv)
	}
	return invitations, rows.Err()
}
