package store

import (
	"database/sql"
	"errors"
	"time"
)

// SessionRecord summarizes one painting session. Strokes themselves are
// never stored.
type SessionRecord struct {
	ID        string     `json:"id"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Strokes   int        `json:"strokes"`
	Undos     int        `json:"undos"`
	Clears    int        `json:"clears"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// SessionRepository records session start, progress and end.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Start inserts a new open session. StartedAt is set when zero.
func (r *SessionRepository) Start(rec *SessionRecord) error {
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, width, height, strokes, undos, clears, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Width, rec.Height, rec.Strokes, rec.Undos, rec.Clears, rec.StartedAt,
	)
	return err
}

// Update stores the counters of rec.
func (r *SessionRepository) Update(rec *SessionRecord) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET strokes = ?, undos = ?, clears = ? WHERE id = ?`,
		rec.Strokes, rec.Undos, rec.Clears, rec.ID,
	)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// Finish stores the final counters and marks the session ended.
func (r *SessionRepository) Finish(rec *SessionRecord) error {
	now := time.Now()
	result, err := r.db.Exec(
		`UPDATE sessions SET strokes = ?, undos = ?, clears = ?, ended_at = ? WHERE id = ?`,
		rec.Strokes, rec.Undos, rec.Clears, now, rec.ID,
	)
	if err != nil {
		return err
	}
	if err := expectRow(result); err != nil {
		return err
	}
	rec.EndedAt = &now
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*SessionRecord, error) {
	row := r.db.QueryRow(
		`SELECT id, width, height, strokes, undos, clears, started_at, ended_at
		 FROM sessions WHERE id = ?`,
		id,
	)
	rec, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List returns the most recent sessions first, at most limit of them.
func (r *SessionRepository) List(limit int) ([]*SessionRecord, error) {
	rows, err := r.db.Query(
		`SELECT id, width, height, strokes, undos, clears, started_at, ended_at
		 FROM sessions ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (*SessionRecord, error) {
	rec := &SessionRecord{}
	var ended sql.NullTime
	err := s.Scan(&rec.ID, &rec.Width, &rec.Height, &rec.Strokes, &rec.Undos, &rec.Clears,
		&rec.StartedAt, &ended)
	if err != nil {
		return nil, err
	}
	if ended.Valid {
		t := ended.Time
		rec.EndedAt = &t
	}
	return rec, nil
}

func expectRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
