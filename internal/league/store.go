package league

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/mauv0809/shuttle-league/internal/apperr"
	"github.com/mauv0809/shuttle-league/internal/database"
)

const DefaultPoints = 21

// New creates a new LeagueStore.
func New(db *sql.DB) LeagueStore {
	return &store{
		db: db,
	}
}

// CreateLeague writes the league, the creator's participation and the creator's stats row together.
func (s *store) CreateLeague(ctx context.Context, in NewLeague) (*League, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Field("name", "league name is required")
	}
	if in.CreatorID == "" {
		return nil, apperr.Invalid("create league", "creator id is required")
	}
	rules := in.Rules
	if rules.Points == 0 {
		rules.Points = DefaultPoints
	}
	if rules.Points < 0 {
		return nil, apperr.Field("points", "points must be positive")
	}
	if !rules.Double && rules.FixedDouble != nil {
		return nil, apperr.Field("fixed_double", "fixed doubles requires doubles")
	}
	rules = normalizeRules(rules)
	visibility := in.Visibility
	if visibility == "" {
		visibility = VisibilityPrivate
	}
	if visibility != VisibilityPrivate && visibility != VisibilityPublic {
		return nil, apperr.Field("visibility", "visibility must be PRIVATE or PUBLIC")
	}

	now := time.Now()
	l := &League{
		ID:         uuid.New().String(),
		Name:       name,
		Slug:       slug.Make(name),
		Visibility: visibility,
		Rules:      rules,
		CreatedBy:  in.CreatorID,
		CreatedAt:  now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO leagues (id, name, slug, points, visibility, deuce, doubles, fixed_doubles, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, l.Slug, l.Rules.Points, l.Visibility, l.Rules.Deuce, l.Rules.Double, nullBool(l.Rules.FixedDouble), l.CreatedBy, now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert league: %w", err)
	}
	if _, err := insertParticipant(ctx, tx, l.ID, in.CreatorID, RoleCreator, now); err != nil {
		return nil, err
	}
	if err := ensureStats(ctx, tx, l.ID, in.CreatorID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit league creation: %w", err)
	}

	log.Info("Created league", "leagueID", l.ID, "name", l.Name, "creator", in.CreatorID)
	return l, nil
}

// normalizeRules applies the doubles cascade: fixed doubles exists only while doubles is on.
func normalizeRules(r Rules) Rules {
	if !r.Double {
		r.FixedDouble = nil
	} else if r.FixedDouble == nil {
		f := false
		r.FixedDouble = &f
	}
	return r
}

func (s *store) GetLeague(ctx context.Context, leagueID string) (*League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getLeague(ctx, s.db, leagueID)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const leagueColumns = `id, name, slug, points, visibility, deuce, doubles, fixed_doubles, created_by, created_at`

func getLeague(ctx context.Context, q queryer, leagueID string) (*League, error) {
	row := q.QueryRowContext(ctx, `SELECT `+leagueColumns+` FROM leagues WHERE id = ?`, leagueID)
	l, err := scanLeague(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	return l, nil
}

// scanLeague is a helper function to scan a single league row.
func scanLeague(scanner interface{ Scan(...any) error }) (*League, error) {
	var (
		l            League
		fixedDoubles sql.NullBool
		createdAt    int64
	)
	err := scanner.Scan(&l.ID, &l.Name, &l.Slug, &l.Rules.Points, &l.Visibility, &l.Rules.Deuce, &l.Rules.Double, &fixedDoubles, &l.CreatedBy, &createdAt)
	if err != nil {
		return nil, err
	}
	if fixedDoubles.Valid {
		v := fixedDoubles.Bool
		l.Rules.FixedDouble = &v
	}
	l.CreatedAt = time.Unix(createdAt, 0)
	return &l, nil
}

func (s *store) ListLeagues(ctx context.Context) ([]League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLeagues(ctx, `SELECT `+leagueColumns+` FROM leagues ORDER BY created_at DESC, id`)
}

func (s *store) ListPublicLeagues(ctx context.Context) ([]League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLeagues(ctx, `SELECT `+leagueColumns+` FROM leagues WHERE visibility = ? ORDER BY created_at DESC, id`, VisibilityPublic)
}

// ListLeaguesForUser returns the leagues the user actively participates in.
func (s *store) ListLeaguesForUser(ctx context.Context, userID string) ([]League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLeagues(ctx, `
		SELECT l.id, l.name, l.slug, l.points, l.visibility, l.deuce, l.doubles, l.fixed_doubles, l.created_by, l.created_at
		FROM leagues l
		JOIN league_participants p ON p.league_id = l.id
		WHERE p.user_id = ? AND p.status = ?
		ORDER BY l.created_at DESC, l.id`, userID, StatusActive)
}

func (s *store) listLeagues(ctx context.Context, query string, args ...any) ([]League, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leagues: %w", err)
	}
	defer rows.Close()

	leagues := []League{}
	for rows.Next() {
		l, err := scanLeague(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan league row: %w", err)
		}
		leagues = append(leagues, *l)
	}
	return leagues, rows.Err()
}

// UpdateRules applies the requested toggles. Turning doubles off clears fixed doubles;
// turning it on starts fixed doubles at false.
func (s *store) UpdateRules(ctx context.Context, leagueID string, update RulesUpdate) (*League, error) {
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
	rules, err := applyRulesUpdate(l.Rules, update)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE leagues SET points = ?, deuce = ?, doubles = ?, fixed_doubles = ? WHERE id = ?`,
		rules.Points, rules.Deuce, rules.Double, nullBool(rules.FixedDouble), leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to update league rules: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rules update: %w", err)
	}

	l.Rules = rules
	log.Info("Updated league rules", "leagueID", leagueID, "double", rules.Double, "deuce", rules.Deuce, "points", rules.Points)
	return l, nil
}

func applyRulesUpdate(current Rules, update RulesUpdate) (Rules, error) {
	rules := current
	if update.Points != nil {
		if *update.Points <= 0 {
			return current, apperr.Field("points", "points must be positive")
		}
		rules.Points = *update.Points
	}
	if update.Deuce != nil {
		rules.Deuce = *update.Deuce
	}
	if update.Double != nil && *update.Double != current.Double {
		rules.Double = *update.Double
		if rules.Double {
			f := false
			rules.FixedDouble = &f
		} else {
			rules.FixedDouble = nil
		}
	}
	if update.FixedDouble != nil {
		if !rules.Double {
			return current, apperr.Field("fixed_double", "fixed doubles requires doubles")
		}
		v := *update.FixedDouble
		rules.FixedDouble = &v
	}
	return normalizeRules(rules), nil
}

func (s *store) SetVisibility(ctx context.Context, leagueID string, visibility Visibility) error {
	if visibility != VisibilityPrivate && visibility != VisibilityPublic {
		return apperr.Field("visibility", "visibility must be PRIVATE or PUBLIC")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE leagues SET visibility = ? WHERE id = ?`, visibility, leagueID)
	if err != nil {
		return fmt.Errorf("failed to update visibility: %w", err)
	}
	return database.CheckAffected(res, apperr.ErrLeagueNotFound)
}

// DeleteLeague removes the league and everything scoped to it in one transaction.
func (s *store) DeleteLeague(ctx context.Context, leagueID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"matches", "participant_stats", "league_participants", "invitations"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE league_id = ?", leagueID); err != nil {
			log.Error("Failed to clear league table", "error", err, "table", table, "leagueID", leagueID)
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM leagues WHERE id = ?`, leagueID)
	if err != nil {
		return fmt.Errorf("failed to delete league: %w", err)
	}
	if err := database.CheckAffected(res, apperr.ErrLeagueNotFound); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit league deletion: %w", err)
	}
	log.Info("Deleted league", "leagueID", leagueID)
	return nil
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
