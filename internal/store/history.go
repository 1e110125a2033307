package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/gesture"
)

// DefaultHistoryLimit is the page size used when a caller passes no limit.
const DefaultHistoryLimit = 50

// Entry is one emitted command.
type Entry struct {
	ID        string      `json:"id"`
	Kind      action.Kind `json:"kind"`
	Param     *float64    `json:"param,omitempty"`
	Gesture   gesture.ID  `json:"gesture,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// HistoryRepository records and lists emitted commands.
type HistoryRepository struct {
	db *sql.DB
}

// History returns the command history repository for this store.
func (s *Store) History() *HistoryRepository {
	return &HistoryRepository{db: s.db}
}

// Record inserts e, assigning an ID and timestamp when they are unset.
func (r *HistoryRepository) Record(e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	var param sql.NullFloat64
	if e.Param != nil {
		param = sql.NullFloat64{Float64: *e.Param, Valid: true}
	}

	_, err := r.db.Exec(
		`INSERT INTO command_history (id, kind, param, gesture, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Kind), param, string(e.Gesture), e.Error, e.CreatedAt.UTC(),
	)
	return err
}

// Recent returns up to limit entries, newest first.
func (r *HistoryRepository) Recent(limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := r.db.Query(
		`SELECT id, kind, param, gesture, error, created_at
		 FROM command_history ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		e := &Entry{}
		var kind, gid string
		var param sql.NullFloat64

		if err := rows.Scan(&e.ID, &kind, &param, &gid, &e.Error, &e.CreatedAt); err != nil {
			return nil, err
		}

		e.Kind = action.Kind(kind)
		e.Gesture = gesture.ID(gid)
		if param.Valid {
			p := param.Float64
			e.Param = &p
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Count returns the number of recorded entries.
func (r *HistoryRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM command_history`).Scan(&n)
	return n, err
}

// Prune deletes all but the newest keep entries and returns how many were removed.
func (r *HistoryRepository) Prune(keep int) (int64, error) {
	result, err := r.db.Exec(
		`DELETE FROM command_history WHERE id NOT IN (
			SELECT id FROM command_history ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
