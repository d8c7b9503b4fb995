package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pavelanni/dreamroute/internal/riasec"
)

// GetProfilerProgress returns the saved profiler position for a user.
// A user who never started gets the zero Progress.
func (s *Store) GetProfilerProgress(userID int64) (riasec.Progress, error) {
	var raw string
	err := s.db.QueryRow(`SELECT progress FROM profiler_progress WHERE user_id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return riasec.Progress{}, nil
	}
	if err != nil {
		return riasec.Progress{}, err
	}
	var p riasec.Progress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return riasec.Progress{}, fmt.Errorf("decode profiler progress: %w", err)
	}
	return p, nil
}

// SaveProfilerProgress stores the profiler position for a user.
func (s *Store) SaveProfilerProgress(userID int64, p riasec.Progress) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profiler progress: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO profiler_progress (user_id, progress, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET progress = excluded.progress, updated_at = excluded.updated_at`,
		userID, string(raw), s.now(),
	)
	return err
}

// ResetProfilerProgress forgets a user's answers.
func (s *Store) ResetProfilerProgress(userID int64) error {
	_, err := s.db.Exec(`DELETE FROM profiler_progress WHERE user_id = ?`, userID)
	return err
}
