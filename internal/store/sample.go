package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sample is one labeled feature vector recorded during a labeling session.
type Sample struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"` // "open" or "closed"
	Features  []float64 `json:"features"`
	CreatedAt time.Time `json:"created_at"`
}

// SampleRepository provides access to recorded training samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Create inserts a labeled sample and returns its ID. The feature vector
// is stored as a JSON array.
func (r *SampleRepository) Create(label string, features []float64) (string, error) {
	data, err := json.Marshal(features)
	if err != nil {
		return "", fmt.Errorf("encode features: %w", err)
	}

	id := uuid.NewString()
	_, err = r.db.Exec(
		`INSERT INTO samples (id, label, features) VALUES (?, ?, ?)`,
		id, label, string(data),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// List retrieves all samples, oldest first.
func (r *SampleRepository) List() ([]Sample, error) {
	rows, err := r.db.Query(
		`SELECT id, label, features, created_at FROM samples ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var features string
		if err := rows.Scan(&s.ID, &s.Label, &features, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(features), &s.Features); err != nil {
			return nil, fmt.Errorf("decode features for sample %s: %w", s.ID, err)
		}
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

// CountByLabel returns the number of samples per label.
func (r *SampleRepository) CountByLabel() (map[string]int64, error) {
	rows, err := r.db.Query(`SELECT label, COUNT(*) FROM samples GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var label string
		var n int64
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}

	return counts, rows.Err()
}

// DeleteAll removes every recorded sample.
func (r *SampleRepository) DeleteAll() error {
	_, err := r.db.Exec(`DELETE FROM samples`)
	return err
}
