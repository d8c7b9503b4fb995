package store

import (
	"testing"
	"time"

	"github.com/pavelanni/dreamroute/internal/flow"
	"github.com/pavelanni/dreamroute/internal/model"
	"github.com/pavelanni/dreamroute/internal/riasec"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, username string, role model.UserRole) int64 {
	t.Helper()
	id, err := s.CreateUser(model.User{
		Username:     username,
		DisplayName:  "User " + username,
		PasswordHash: "hash",
		Role:         role,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("createTestUser: %v", err)
	}
	return id
}

func TestQuizSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	tbl := flow.Default().Table

	state := flow.Start(tbl)
	id, err := s.CreateQuizSession("Ann", "ann@example.com", state)
	if err != nil {
		t.Fatalf("CreateQuizSession: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("expected uuid id, got %q", id)
	}

	q, err := s.GetQuizSession(id)
	if err != nil {
		t.Fatalf("GetQuizSession: %v", err)
	}
	if q == nil {
		t.Fatal("session not found")
	}
	if q.Name != "Ann" || q.Status != model.QuizInProgress || q.State.Current != "q1" {
		t.Errorf("unexpected session: %+v", q)
	}

	state, err = tbl.Step(state, "Agree")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveQuizState(id, state); err != nil {
		t.Fatalf("SaveQuizState: %v", err)
	}
	q, _ = s.GetQuizSession(id)
	if q.State.Current != "q2_cs" || len(q.State.Steps) != 1 {
		t.Errorf("state not saved: %+v", q.State)
	}

	ok, err := s.CompleteQuizSession(id, state, "Computer Science / AI")
	if err != nil || !ok {
		t.Fatalf("CompleteQuizSession: %v, %v", ok, err)
	}
	q, _ = s.GetQuizSession(id)
	if q.Status != model.QuizCompleted || q.Field != "Computer Science / AI" || q.CompletedAt == nil {
		t.Errorf("session not completed: %+v", q)
	}

	counts, err := s.CountQuizSessions()
	if err != nil {
		t.Fatalf("CountQuizSessions: %v", err)
	}
	if counts[model.QuizCompleted] != 1 || counts[model.QuizInProgress] != 0 {
		t.Errorf("counts = %v", counts)
	}

	if err := s.DeleteQuizSession(id); err != nil {
		t.Fatalf("DeleteQuizSession: %v", err)
	}
	q, err = s.GetQuizSession(id)
	if err != nil || q != nil {
		t.Errorf("expected nil session after delete, got %+v, %v", q, err)
	}
}

func TestGetQuizSessionUnknown(t *testing.T) {
	s := newTestStore(t)
	q, err := s.GetQuizSession("nope")
	if err != nil || q != nil {
		t.Errorf("GetQuizSession(unknown) = %+v, %v", q, err)
	}
}

func TestAbandonStaleQuizSessions(t *testing.T) {
	s := newTestStore(t)
	state := flow.Start(flow.Default().Table)
	if _, err := s.CreateQuizSession("A", "a@example.com", state); err != nil {
		t.Fatal(err)
	}

	n, err := s.AbandonStaleQuizSessions(time.Now().Add(-time.Hour))
	if err != nil || n != 0 {
		t.Errorf("recent session removed: n=%d err=%v", n, err)
	}
	n, err = s.AbandonStaleQuizSessions(time.Now().Add(time.Hour))
	if err != nil || n != 1 {
		t.Errorf("stale session kept: n=%d err=%v", n, err)
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	id := createTestUser(t, s, "alice", model.UserRoleParticipant)

	u, err := s.GetUserByUsername("alice")
	if err != nil || u == nil {
		t.Fatalf("GetUserByUsername: %+v, %v", u, err)
	}
	if u.ID != id || u.Role != model.UserRoleParticipant || !u.Active {
		t.Errorf("unexpected user: %+v", u)
	}

	byID, err := s.GetUserByID(id)
	if err != nil || byID == nil || byID.Username != "alice" {
		t.Errorf("GetUserByID: %+v, %v", byID, err)
	}

	missing, err := s.GetUserByUsername("bob")
	if err != nil || missing != nil {
		t.Errorf("expected nil for unknown user, got %+v, %v", missing, err)
	}

	if _, err := s.CreateUser(model.User{Username: "alice", PasswordHash: "x", Role: model.UserRoleParticipant}); err == nil {
		t.Error("expected duplicate username error")
	}
}

func TestEnsureAdmin(t *testing.T) {
	s := newTestStore(t)
	if err := s.EnsureAdmin("admin", "h1"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if err := s.EnsureAdmin("admin", "h2"); err != nil {
		t.Fatalf("EnsureAdmin again: %v", err)
	}
	u, _ := s.GetUserByUsername("admin")
	if u == nil || u.PasswordHash != "h2" || u.Role != model.UserRoleAdmin {
		t.Errorf("admin = %+v", u)
	}
	n, err := s.UserCount(model.UserRoleAdmin)
	if err != nil || n != 1 {
		t.Errorf("UserCount(admin) = %d, %v", n, err)
	}
}

func TestAuthSessions(t *testing.T) {
	s := newTestStore(t)
	uid := createTestUser(t, s, "alice", model.UserRoleParticipant)

	token, err := s.CreateAuthSession(uid)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64", len(token))
	}

	sess, err := s.GetAuthSession(token)
	if err != nil || sess == nil || sess.UserID != uid {
		t.Fatalf("GetAuthSession: %+v, %v", sess, err)
	}

	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatal(err)
	}
	sess, err = s.GetAuthSession(token)
	if err != nil || sess != nil {
		t.Errorf("expected nil after delete, got %+v, %v", sess, err)
	}
}

func TestExpiredAuthSession(t *testing.T) {
	s := newTestStore(t)
	uid := createTestUser(t, s, "alice", model.UserRoleParticipant)
	past := time.Now().Add(-48 * time.Hour)
	if _, err := s.db.Exec(
		`INSERT INTO auth_sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		"old", uid, past, past.Add(AuthSessionTTL),
	); err != nil {
		t.Fatal(err)
	}

	sess, err := s.GetAuthSession("old")
	if err != nil || sess != nil {
		t.Errorf("expired session returned: %+v, %v", sess, err)
	}
}

func TestProfilerProgress(t *testing.T) {
	s := newTestStore(t)
	uid := createTestUser(t, s, "alice", model.UserRoleParticipant)

	p, err := s.GetProfilerProgress(uid)
	if err != nil {
		t.Fatal(err)
	}
	if p.Index != 0 || len(p.Answers) != 0 {
		t.Errorf("expected zero progress, got %+v", p)
	}

	p = riasec.Progress{}.Answer("Agree").Answer("Neutral")
	if err := s.SaveProfilerProgress(uid, p); err != nil {
		t.Fatalf("SaveProfilerProgress: %v", err)
	}
	p = p.Answer("Disagree")
	if err := s.SaveProfilerProgress(uid, p); err != nil {
		t.Fatalf("SaveProfilerProgress update: %v", err)
	}

	got, err := s.GetProfilerProgress(uid)
	if err != nil {
		t.Fatal(err)
	}
	if got.Index != 3 || len(got.Answers) != 3 || got.Answers[2] != "Disagree" {
		t.Errorf("progress = %+v", got)
	}

	if err := s.ResetProfilerProgress(uid); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetProfilerProgress(uid)
	if got.Index != 0 {
		t.Errorf("progress not reset: %+v", got)
	}
}

func TestMetadata(t *testing.T) {
	s := newTestStore(t)

	v, err := s.GetMetadata("missing")
	if err != nil || v != "" {
		t.Errorf("GetMetadata(missing) = %q, %v", v, err)
	}

	prev, err := s.RecordFlowHash("aaa")
	if err != nil || prev != "" {
		t.Errorf("first RecordFlowHash = %q, %v", prev, err)
	}
	prev, err = s.RecordFlowHash("bbb")
	if err != nil || prev != "aaa" {
		t.Errorf("second RecordFlowHash = %q, %v", prev, err)
	}
	v, _ = s.GetMetadata(MetaFlowHash)
	if v != "bbb" {
		t.Errorf("flow hash = %q, want bbb", v)
	}
}

func TestAuthSessionSlidingExpiry(t *testing.T) {
	s := newTestStore(t)
	uid := createTestUser(t, s, "alice", model.UserRoleParticipant)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }

	token, err := s.CreateAuthSession(uid)
	if err != nil {
		t.Fatal(err)
	}

	// Early use does not extend the session.
	s.now = func() time.Time { return start.Add(time.Hour) }
	sess, err := s.GetAuthSession(token)
	if err != nil || sess == nil {
		t.Fatalf("GetAuthSession: %+v, %v", sess, err)
	}
	if !sess.ExpiresAt.Equal(start.Add(AuthSessionTTL)) {
		t.Errorf("expires_at = %v, want unchanged", sess.ExpiresAt)
	}

	// Use past half of the TTL pushes expiry out by a full TTL.
	late := start.Add(20 * time.Hour)
	s.now = func() time.Time { return late }
	sess, err = s.GetAuthSession(token)
	if err != nil || sess == nil {
		t.Fatalf("GetAuthSession late: %+v, %v", sess, err)
	}
	if !sess.ExpiresAt.Equal(late.Add(AuthSessionTTL)) {
		t.Errorf("expires_at = %v, want %v", sess.ExpiresAt, late.Add(AuthSessionTTL))
	}

	// Still valid beyond the original expiry.
	s.now = func() time.Time { return start.Add(30 * time.Hour) }
	if sess, err := s.GetAuthSession(token); err != nil || sess == nil {
		t.Fatalf("extended session missing: %+v, %v", sess, err)
	}
}

func TestEnsureAdminRevokesSessions(t *testing.T) {
	s := newTestStore(t)
	if err := s.EnsureAdmin("admin", "first"); err != nil {
		t.Fatal(err)
	}
	admin, err := s.GetUserByUsername("admin")
	if err != nil || admin == nil {
		t.Fatalf("admin missing: %v", err)
	}
	token, err := s.CreateAuthSession(admin.ID)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.EnsureAdmin("admin", "second"); err != nil {
		t.Fatal(err)
	}
	if sess, err := s.GetAuthSession(token); err != nil || sess != nil {
		t.Errorf("session survived password reset: %+v, %v", sess, err)
	}
	admin, _ = s.GetUserByUsername("admin")
	if admin.PasswordHash != "second" {
		t.Errorf("password hash = %q, want second", admin.PasswordHash)
	}
}

func TestCompleteQuizSessionOnlyOnce(t *testing.T) {
	s := newTestStore(t)
	tbl := flow.Default().Table
	id, err := s.CreateQuizSession("Ann", "", flow.Start(tbl))
	if err != nil {
		t.Fatal(err)
	}
	done, err := tbl.Step(flow.Start(tbl), "no such answer")
	if err != nil {
		t.Fatal(err)
	}

	ok, err := s.CompleteQuizSession(id, done, "A")
	if err != nil || !ok {
		t.Fatalf("first completion: %v, %v", ok, err)
	}
	ok, err = s.CompleteQuizSession(id, done, "B")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("second completion should report false")
	}
	q, _ := s.GetQuizSession(id)
	if q.Field != "A" {
		t.Errorf("field = %q, want first completion to stick", q.Field)
	}

	// A late state save does not resurrect the session.
	if err := s.SaveQuizState(id, flow.Start(tbl)); err != nil {
		t.Fatal(err)
	}
	q, _ = s.GetQuizSession(id)
	if !q.State.Done() {
		t.Errorf("completed state overwritten: %+v", q.State)
	}
}

func TestReopenQuizSession(t *testing.T) {
	s := newTestStore(t)
	tbl := flow.Default().Table
	start := flow.Start(tbl)
	id, err := s.CreateQuizSession("Ann", "", start)
	if err != nil {
		t.Fatal(err)
	}
	done, _ := tbl.Step(start, "")
	if ok, err := s.CompleteQuizSession(id, done, "A"); err != nil || !ok {
		t.Fatalf("complete: %v, %v", ok, err)
	}
	if err := s.ReopenQuizSession(id, start); err != nil {
		t.Fatal(err)
	}
	q, _ := s.GetQuizSession(id)
	if q.Status != model.QuizInProgress || q.Field != "" || q.CompletedAt != nil || q.State.Current != "q1" {
		t.Errorf("session not reopened: %+v", q)
	}
}
