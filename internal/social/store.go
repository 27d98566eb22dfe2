package social

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

// New creates a new SocialStore.
func New(db *sql.DB) SocialStore {
	return &store{
		db: db,
	}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SendFriendRequest creates a request from sender to receiver. Only one request may exist per
// unordered pair, and none once the two are friends.
func (s *store) SendFriendRequest(ctx context.Context, senderID, receiverID string) (*FriendRequest, error) {
	if senderID == "" || receiverID == "" {
		return nil, apperr.Invalid("send friend request", "sender and receiver are required")
	}
	if senderID == receiverID {
		return nil, apperr.Field("receiver_id", "you cannot send a friend request to yourself")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	friends, err := areFriends(ctx, tx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, apperr.ErrAlreadyFriends
	}

	low, high := pair(senderID, receiverID)
	now := time.Now()
	req := &FriendRequest{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		CreatedAt:  now,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO friend_requests (id, sender_id, receiver_id, user_low, user_high, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`, req.ID, senderID, receiverID, low, high, now.Unix())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.ErrAlreadyRequested
		}
		return nil, fmt.Errorf("failed to insert friend request: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit friend request: %w", err)
	}
	log.Info("Sent friend request", "requestID", req.ID, "sender", senderID, "receiver", receiverID)
	return req, nil
}

func getFriendRequest(ctx context.Context, q queryer, requestID string) (*FriendRequest, error) {
	var (
		req       FriendRequest
		createdAt int64
	)
	err := q.QueryRowContext(ctx, `SELECT id, sender_id, receiver_id, created_at FROM friend_requests WHERE id = ?`, requestID).
		Scan(&req.ID, &req.SenderID, &req.ReceiverID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrFriendRequestNotFound
		}
		return nil, fmt.Errorf("failed to get friend request: %w", err)
	}
	req.CreatedAt = time.Unix(createdAt, 0)
	return &req, nil
}

func (s *store) GetFriendRequest(ctx context.Context, requestID string) (*FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getFriendRequest(ctx, s.db, requestID)
}

// AcceptFriendRequest turns the request into a friendship. Only the receiver may accept.
func (s *store) AcceptFriendRequest(ctx context.Context, requestID, userID string) (*Friend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	req, err := getFriendRequest(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ReceiverID != userID {
		return nil, apperr.ErrNotYourRequest
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM friend_requests WHERE id = ?`, requestID); err != nil {
		return nil, fmt.Errorf("failed to delete friend request: %w", err)
	}

	low, high := pair(req.SenderID, req.ReceiverID)
	now := time.Now()
	f := &Friend{
		ID:    uuid.New().String(),
		Users: [2]string{low, high},
		Since: now,
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO friends (id, user_low, user_high, since) VALUES (?, ?, ?, ?)`, f.ID, low, high, now.Unix())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.ErrAlreadyFriends
		}
		return nil, fmt.Errorf("failed to insert friendship: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit friendship: %w", err)
	}
	log.Info("Accepted friend request", "requestID", requestID, "friendshipID", f.ID)
	return f, nil
}

// DeclineFriendRequest is the receiver's way of dropping a request. Gone requests are a no-op.
func (s *store) DeclineFriendRequest(ctx context.Context, requestID, userID string) error {
	return s.dropRequest(ctx, requestID, func(req *FriendRequest) bool { return req.ReceiverID == userID })
}

// CancelFriendRequest is the sender's way of dropping a request.
func (s *store) CancelFriendRequest(ctx context.Context, requestID, userID string) error {
	return s.dropRequest(ctx, requestID, func(req *FriendRequest) bool { return req.SenderID == userID })
}

func (s *store) dropRequest(ctx context.Context, requestID string, allowed func(*FriendRequest) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := getFriendRequest(ctx, s.db, requestID)
	if errors.Is(err, apperr.ErrFriendRequestNotFound) {
		log.Debug("Friend request already gone", "requestID", requestID)
		return nil
	}
	if err != nil {
		return err
	}
	if !allowed(req) {
		return apperr.ErrNotYourRequest
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM friend_requests WHERE id = ?`, requestID); err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}
	log.Info("Dropped friend request", "requestID", requestID)
	return nil
}

func (s *store) ListFriendRequests(ctx context.Context, userID string, direction Direction) ([]FriendRequest, error) {
	column := "receiver_id"
	switch direction {
	case Incoming:
	case Outgoing:
		column = "sender_id"
	default:
		return nil, apperr.Field("direction", "direction must be incoming or outgoing")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sender_id, receiver_id, created_at FROM friend_requests WHERE `+column+` = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friend requests: %w", err)
	}
	defer rows.Close()

	requests := []FriendRequest{}
	for rows.Next() {
		var (
			req       FriendRequest
			createdAt int64
		)
		if err := rows.Scan(&req.ID, &req.SenderID, &req.ReceiverID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend request row: %w", err)
		}
		req.CreatedAt = time.Unix(createdAt, 0)
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func getFriendship(ctx context.Context, q queryer, friendshipID string) (*Friend, error) {
	var (
		f     Friend
		since int64
	)
	err := q.QueryRowContext(ctx, `SELECT id, user_low, user_high, since FROM friends WHERE id = ?`, friendshipID).
		Scan(&f.ID, &f.Users[0], &f.Users[1], &since)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrFriendshipNotFound
		}
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}
	f.Since = time.Unix(since, 0)
	return &f, nil
}

func (s *store) GetFriendship(ctx context.Context, friendshipID string) (*Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getFriendship(ctx, s.db, friendshipID)
}

func (s *store) ListFriends(ctx context.Context, userID string) ([]Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_low, user_high, since FROM friends
		WHERE user_low = ? OR user_high = ?
		ORDER BY since DESC, id`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friends: %w", err)
	}
	defer rows.Close()

	friends := []Friend{}
	for rows.Next() {
		var (
			f     Friend
			since int64
		)
		if err := rows.Scan(&f.ID, &f.Users[0], &f.Users[1], &since); err != nil {
			return nil, fmt.Errorf("failed to scan friend row: %w", err)
		}
		f.Since = time.Unix(since, 0)
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

func areFriends(ctx context.Context, q queryer, userA, userB string) (bool, error) {
	low, high := pair(userA, userB)
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM friends WHERE user_low = ? AND user_high = ?)`, low, high).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

// AreFriends reports whether a friendship record exists for the pair.
func (s *store) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return areFriends(ctx, s.db, userA, userB)
}

// Unfriend deletes the friendship. Either member may do it.
func (s *store) Unfriend(ctx context.Context, friendshipID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := getFriendship(ctx, s.db, friendshipID)
	if err != nil {
		return err
	}
	if f.Users[0] != userID && f.Users[1] != userID {
		return apperr.ErrNotYourRequest
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM friends WHERE id = ?`, friendshipID)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	if err := database.CheckAffected(res, apperr.ErrFriendshipNotFound); err != nil {
		return err
	}
	log.Info("Removed friendship", "friendshipID", friendshipID, "by", userID)
	return nil
}
