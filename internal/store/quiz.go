package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/dreamroute/internal/flow"
	"github.com/pavelanni/dreamroute/internal/model"
)

// CreateQuizSession starts a career quiz session and returns its id.
func (s *Store) CreateQuizSession(name, email string, state flow.State) (string, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO quiz_sessions (id, name, email, state, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, email, string(raw), model.QuizInProgress, s.now(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetQuizSession returns a quiz session, or nil if the id is unknown.
func (s *Store) GetQuizSession(id string) (*model.QuizSession, error) {
	var (
		q   model.QuizSession
		raw string
	)
	err := s.db.QueryRow(
		`SELECT id, name, email, state, status, field, started_at, completed_at
		 FROM quiz_sessions WHERE id = ?`, id,
	).Scan(&q.ID, &q.Name, &q.Email, &raw, &q.Status, &q.Field, &q.StartedAt, &q.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &q.State); err != nil {
		return nil, fmt.Errorf("decode state of session %s: %w", id, err)
	}
	return &q, nil
}

// SaveQuizState replaces the traversal state of an in-progress session.
// Completed sessions are left untouched.
func (s *Store) SaveQuizState(id string, state flow.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE quiz_sessions SET state = ? WHERE id = ? AND status = ?`,
		string(raw), id, model.QuizInProgress,
	)
	return err
}

// CompleteQuizSession stores the final state and the predicted field. It
// reports false when the session was not in progress, so of two concurrent
// completions only one wins.
func (s *Store) CompleteQuizSession(id string, state flow.State, field string) (bool, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return false, fmt.Errorf("encode state: %w", err)
	}
	res, err := s.db.Exec(
		`UPDATE quiz_sessions SET state = ?, status = ?, field = ?, completed_at = ? WHERE id = ? AND status = ?`,
		string(raw), model.QuizCompleted, field, s.now(), id, model.QuizInProgress,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ReopenQuizSession puts a completed session back in progress at state.
func (s *Store) ReopenQuizSession(id string, state flow.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE quiz_sessions SET state = ?, status = ?, field = '', completed_at = NULL WHERE id = ?`,
		string(raw), model.QuizInProgress, id,
	)
	return err
}

// DeleteQuizSession removes a session.
func (s *Store) DeleteQuizSession(id string) error {
	_, err := s.db.Exec(`DELETE FROM quiz_sessions WHERE id = ?`, id)
	return err
}

// CountQuizSessions returns the number of sessions per status.
func (s *Store) CountQuizSessions() (map[model.QuizStatus]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM quiz_sessions GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[model.QuizStatus]int)
	for rows.Next() {
		var (
			st model.QuizStatus
			n  int
		)
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

// AbandonStaleQuizSessions deletes in-progress sessions started before cutoff.
func (s *Store) AbandonStaleQuizSessions(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(
		`DELETE FROM quiz_sessions WHERE status = ? AND started_at < ?`, model.QuizInProgress, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
