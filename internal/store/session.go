package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one control run's telemetry: how many frames were seen, how
// many had a hand, and how many accepted transitions entered each action.
type Session struct {
	ID            string     `json:"id"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	Frames        int64      `json:"frames"`
	HandFrames    int64      `json:"hand_frames"`
	Accelerations int64      `json:"accelerations"`
	Brakes        int64      `json:"brakes"`
}

// SessionRepository provides access to session telemetry.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session starting now and returns its ID.
func (r *SessionRepository) Create() (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		id, time.Now(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Finish records the session's end time and final counters.
func (r *SessionRepository) Finish(id string, frames, handFrames, accelerations, brakes int64) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, frames = ?, hand_frames = ?, accelerations = ?, brakes = ?
		 WHERE id = ?`,
		time.Now(), frames, handFrames, accelerations, brakes, id,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, started_at, ended_at, frames, hand_frames, accelerations, brakes
		 FROM sessions WHERE id = ?`, id,
	)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return session, nil
}

// List retrieves all sessions, most recent first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, started_at, ended_at, frames, hand_frames, accelerations, brakes
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	s := &Session{}
	var ended sql.NullTime

	err := row.Scan(&s.ID, &s.StartedAt, &ended, &s.Frames, &s.HandFrames, &s.Accelerations, &s.Brakes)
	if err != nil {
		return nil, err
	}

	if ended.Valid {
		s.EndedAt = &ended.Time
	}
	return s, nil
}
