// Package store handles SQLite persistence of bingo sessions.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/bingo/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session data.
type Store struct {
	db  *sql.DB
	now func() time.Time
	log *zap.SugaredLogger
}

// NewSession describes a session to create together with its card set.
type NewSession struct {
	Name       string
	Seed       int64
	Rows       int
	Categories []model.Category
	Cards      []model.Card
}

// Open opens or creates the SQLite database and applies migrations. A nil log
// discards store events.
func Open(path string, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	version, err := migrateUp(path)
	if err != nil {
		return nil, err
	}
	log.Debugw("store.migrated", "path", path, "version", version)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection serializes writers to a session record.
	db.SetMaxOpenConns(1)
	return &Store{db: db, now: time.Now, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSession stores a new active session with its categories and cards.
// Only one session may be active at a time.
func (s *Store) CreateSession(ctx context.Context, ns NewSession) (sess model.Session, err error) {
	const op = "create session"
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Session{}, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				s.log.Warnw("store.rollback_failed", "op", op, "error", rerr)
			}
		}
	}()

	var active int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE status = ?`, model.StatusActive).Scan(&active); err != nil {
		return model.Session{}, err
	}
	if active > 0 {
		s.log.Warnw("session.create_rejected", "reason", "active session exists")
		err = &model.Error{Op: op, Kind: model.KindConflict, Err: model.ErrActiveSession}
		return model.Session{}, err
	}

	createdAt := s.now().UTC()
	name := strings.TrimSpace(ns.Name)
	if name == "" {
		name = DefaultSessionName(createdAt)
	}
	sess = model.Session{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    model.StatusActive,
		Seed:      ns.Seed,
		CreatedAt: createdAt,
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, name, status, seed, rows_per_column, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, sess.Status, sess.Seed, ns.Rows, createdAt.Format(time.RFC3339Nano),
	); err != nil {
		return model.Session{}, err
	}
	for i, c := range ns.Categories {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO session_categories (session_id, position, label, range_start, range_end) VALUES (?, ?, ?, ?, ?)`,
			sess.ID, i, c.Label, c.Start, c.End,
		); err != nil {
			return model.Session{}, err
		}
	}
	if err = insertCards(ctx, tx, sess.ID, ns.Cards); err != nil {
		return model.Session{}, err
	}
	if err = tx.Commit(); err != nil {
		return model.Session{}, err
	}
	s.log.Infow("session.stored", "session", sess.ID, "categories", len(ns.Categories), "cards", len(ns.Cards))
	return sess, nil
}

func insertCards(ctx context.Context, tx *sql.Tx, sessionID string, cards []model.Card) error {
	if len(cards) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO card_cells (session_id, card_id, col, row_index, number) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, card := range cards {
		for col, values := range card.Columns {
			for row, n := range values {
				if _, err := stmt.ExecContext(ctx, sessionID, card.ID, col, row, n); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ActiveSession returns the active session, if any.
func (s *Store) ActiveSession(ctx context.Context) (model.Session, bool, error) {
	sessions, err := s.ListSessions(ctx, model.SessionFilter{Status: model.StatusActive, Limit: 1})
	if err != nil {
		return model.Session{}, false, err
	}
	if len(sessions) == 0 {
		return model.Session{}, false, nil
	}
	return sessions[0], true, nil
}

// GetSession loads one session with its drawn numbers.
func (s *Store) GetSession(ctx context.Context, id string) (model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, status, seed, created_at, finished_at FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, &model.Error{Op: "get session", Kind: model.KindNotFound, Err: model.ErrSessionNotFound}
	}
	if err != nil {
		return model.Session{}, err
	}
	sess.DrawnNumbers, err = s.LoadDrawnNumbers(ctx, id)
	if err != nil {
		return model.Session{}, err
	}
	return sess, nil
}

// ListSessions returns sessions newest first, with their drawn numbers.
func (s *Store) ListSessions(ctx context.Context, filter model.SessionFilter) ([]model.Session, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Name != "" {
		clauses = append(clauses, "name LIKE ?")
		args = append(args, "%"+filter.Name+"%")
	}
	query := fmt.Sprintf(`SELECT id, name, status, seed, created_at, finished_at
		FROM sessions
		WHERE %s
		ORDER BY created_at DESC`, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var sessions []model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			closeRows(rows)
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		closeRows(rows)
		return nil, err
	}
	closeRows(rows)

	for i := range sessions {
		drawn, err := s.LoadDrawnNumbers(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].DrawnNumbers = drawn
	}
	return sessions, nil
}

// FinishSession marks an active session as finished.
func (s *Store) FinishSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, finished_at = ? WHERE id = ? AND status = ?`,
		model.StatusFinished, s.now().UTC().Format(time.RFC3339Nano), id, model.StatusActive)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		s.log.Warnw("session.finish_rejected", "session", id)
		return model.Errorf("finish session", model.KindNotFound, "no active session %s: %w", id, model.ErrSessionNotFound)
	}
	return nil
}

// LoadDrawnNumbers returns the numbers drawn in a session, in draw order.
func (s *Store) LoadDrawnNumbers(ctx context.Context, sessionID string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT number FROM drawn_numbers WHERE session_id = ? ORDER BY draw_index ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	drawn := []int{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		drawn = append(drawn, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return drawn, nil
}

// AppendDrawnNumber records the number drawn at drawIndex (1-based) for an
// active session. Indexes must be appended in order.
func (s *Store) AppendDrawnNumber(ctx context.Context, sessionID string, drawIndex, number int) (err error) {
	const op = "append drawn number"
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				s.log.Warnw("store.rollback_failed", "op", op, "error", rerr)
			}
		}
	}()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM sessions WHERE id = ?`, sessionID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		err = &model.Error{Op: op, Kind: model.KindNotFound, Err: model.ErrSessionNotFound}
		return err
	}
	if err != nil {
		return err
	}
	if model.SessionStatus(status) != model.StatusActive {
		s.log.Warnw("draw.rejected", "session", sessionID, "draw", drawIndex, "number", number, "status", status)
		err = model.Errorf(op, model.KindConflict, "session %s is %s", sessionID, status)
		return err
	}
	var count int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM drawn_numbers WHERE session_id = ?`, sessionID).Scan(&count); err != nil {
		return err
	}
	if drawIndex != count+1 {
		s.log.Warnw("draw.rejected", "session", sessionID, "draw", drawIndex, "number", number, "next", count+1)
		err = model.Errorf(op, model.KindConflict, "draw index %d out of sequence, next is %d", drawIndex, count+1)
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO drawn_numbers (session_id, draw_index, number, drawn_at) VALUES (?, ?, ?, ?)`,
		sessionID, drawIndex, number, s.now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadCategories returns the category partition stored with a session.
func (s *Store) LoadCategories(ctx context.Context, sessionID string) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, range_start, range_end FROM session_categories WHERE session_id = ? ORDER BY position ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.Label, &c.Start, &c.End); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cats, nil
}

// LoadCards rebuilds the card set stored with a session, ordered by card id.
func (s *Store) LoadCards(ctx context.Context, sessionID string) ([]model.Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT card_id, col, number FROM card_cells WHERE session_id = ? ORDER BY card_id, col, row_index`, sessionID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var cards []model.Card
	for rows.Next() {
		var cardID, col, n int
		if err := rows.Scan(&cardID, &col, &n); err != nil {
			return nil, err
		}
		if len(cards) == 0 || cards[len(cards)-1].ID != cardID {
			cards = append(cards, model.Card{ID: cardID})
		}
		card := &cards[len(cards)-1]
		for len(card.Columns) <= col {
			card.Columns = append(card.Columns, nil)
		}
		card.Columns[col] = append(card.Columns[col], n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

// DefaultSessionName names a session after its creation time.
func DefaultSessionName(at time.Time) string {
	return "Session " + at.Local().Format("2006-01-02 15:04")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (model.Session, error) {
	var sess model.Session
	var status, createdAt string
	var finishedAt sql.NullString
	if err := row.Scan(&sess.ID, &sess.Name, &status, &sess.Seed, &createdAt, &finishedAt); err != nil {
		return model.Session{}, err
	}
	sess.Status = model.SessionStatus(status)
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.Session{}, err
	}
	sess.CreatedAt = parsed
	if finishedAt.Valid {
		f, err := time.Parse(time.RFC3339Nano, finishedAt.String)
		if err != nil {
			return model.Session{}, err
		}
		sess.FinishedAt = &f
	}
	return sess, nil
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}
