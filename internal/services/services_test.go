package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"quizgame/internal/middleware"
	"quizgame/internal/models"
)

type stubUserRepo struct {
	mu           sync.Mutex
	byName       map[string]*models.User
	createErr    error
	lastLoginErr error
	lastLogin    []uuid.UUID
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byName: make(map[string]*models.User)}
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	s.byName[user.Username] = user
	return nil
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byName[username]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	s.lastLogin = append(s.lastLogin, id)
	return s.lastLoginErr
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]uuid.UUID
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[string]uuid.UUID)}
}

func (m *memorySessions) Save(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = userID
	return nil
}

func (m *memorySessions) Lookup(ctx context.Context, sessionID string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.sessions[sessionID]
	if !ok {
		return uuid.Nil, ErrSessionNotFound
	}
	return id, nil
}

func (m *memorySessions) Revoke(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func newTestAuthService() (*AuthService, *stubUserRepo, *memorySessions) {
	users := newStubUserRepo()
	sessions := newMemorySessions()
	svc := NewAuthService(users, sessions, middleware.NewTokenAuth("test-secret", time.Hour), nil, nil)
	svc.bcryptCost = bcrypt.MinCost
	return svc, users, sessions
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, models.RegisterRequest{Username: " alice ", Email: "alice@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if resp.Token == "" || resp.User.Username != "alice" {
		t.Fatalf("unexpected register response: %+v", resp)
	}
	if resp.User.Email == nil || *resp.User.Email != "alice@example.com" {
		t.Fatalf("expected email to be stored")
	}
	if resp.User.PasswordHash == "password123" {
		t.Fatalf("password must be hashed")
	}

	userID, err := svc.Authenticate(ctx, resp.Token)
	if err != nil || userID != resp.User.ID {
		t.Fatalf("expected registered token to authenticate, got %s %v", userID, err)
	}

	login, err := svc.Login(ctx, models.LoginRequest{Username: "alice", Password: "password123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.Token == resp.Token {
		t.Fatalf("expected a fresh token per login")
	}
	if len(users.lastLogin) != 1 {
		t.Fatalf("expected last login to be updated")
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), models.RegisterRequest{Username: "al", Email: "nope", Password: "short"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"username", "email", "password"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("expected field error for %s, got %v", field, verr.Fields)
		}
	}
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.RegisterRequest{Username: "bob", Password: "password123"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := svc.Register(ctx, models.RegisterRequest{Username: "bob", Password: "password456"})
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	users.createErr = &pgconn.PgError{Code: "23505"}
	_, err = svc.Register(ctx, models.RegisterRequest{Username: "carol", Password: "password123"})
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError on unique violation, got %v", err)
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()
	svc.Register(ctx, models.RegisterRequest{Username: "dave", Password: "password123"})

	tests := []models.LoginRequest{
		{Username: "dave", Password: "wrong-password"},
		{Username: "nobody", Password: "password123"},
		{Username: "", Password: ""},
	}
	for _, req := range tests {
		_, err := svc.Login(ctx, req)
		var uerr *UnauthorizedError
		if !errors.As(err, &uerr) {
			t.Fatalf("expected UnauthorizedError for %+v, got %v", req, err)
		}
		if uerr.Message != "Invalid username or password" {
			t.Errorf("unexpected message %q", uerr.Message)
		}
	}
}

func TestAuthService_LoginLogsLastLoginFailure(t *testing.T) {
	svc, users, _ := newTestAuthService()
	core, logs := observer.New(zap.WarnLevel)
	svc.logger = zap.New(core)
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.RegisterRequest{Username: "erin", Password: "password123"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	users.lastLoginErr = errors.New("connection reset")

	resp, err := svc.Login(ctx, models.LoginRequest{Username: "erin", Password: "password123"})
	if err != nil || resp.Token == "" {
		t.Fatalf("login should succeed when last login cannot be stored, got %v", err)
	}
	if logs.FilterMessage("failed to update last login").Len() != 1 {
		t.Fatalf("expected a warning for the failed update, got %v", logs.All())
	}
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	svc, _, sessions := newTestAuthService()
	ctx := context.Background()

	resp, _ := svc.Register(ctx, models.RegisterRequest{Username: "erin", Password: "password123"})
	if err := svc.Logout(ctx, resp.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Fatalf("expected session to be revoked")
	}
	if _, err := svc.Authenticate(ctx, resp.Token); err != middleware.ErrInvalidToken {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
	if err := svc.Logout(ctx, resp.Token); err != nil {
		t.Fatalf("second logout should be a no-op, got %v", err)
	}
}

func TestAuthService_AuthenticateRejectsForeignSession(t *testing.T) {
	svc, _, sessions := newTestAuthService()
	ctx := context.Background()

	resp, _ := svc.Register(ctx, models.RegisterRequest{Username: "frank", Password: "password123"})
	for id := range sessions.sessions {
		sessions.sessions[id] = uuid.New()
	}
	if _, err := svc.Authenticate(ctx, resp.Token); err != middleware.ErrInvalidToken {
		t.Fatalf("expected mismatched session to be rejected, got %v", err)
	}
}

func TestAuthService_Profile(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	resp, _ := svc.Register(ctx, models.RegisterRequest{Username: "grace", Password: "password123"})
	user, err := svc.Profile(ctx, resp.User.ID)
	if err != nil || user.Username != "grace" {
		t.Fatalf("expected profile for grace, got %v %v", user, err)
	}

	_, err = svc.Profile(ctx, uuid.New())
	var nerr *NotFoundError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

type stubScoreRepo struct {
	created   []*models.Score
	lastLimit int
}

func (s *stubScoreRepo) Create(ctx context.Context, score *models.Score) error {
	score.ID = uuid.New()
	score.CreatedAt = time.Now()
	s.created = append(s.created, score)
	return nil
}

func (s *stubScoreRepo) ListTop(ctx context.Context, limit int) ([]models.Score, error) {
	s.lastLimit = limit
	return []models.Score{}, nil
}

type stubQueue struct {
	jobs []models.ScoreJob
	err  error
}

func (q *stubQueue) Enqueue(ctx context.Context, job models.ScoreJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func TestScoreService_SubmitGuest(t *testing.T) {
	repo := &stubScoreRepo{}
	queue := &stubQueue{}
	svc := NewScoreService(repo, newStubUserRepo(), queue, nil, zap.NewNop())

	score, err := svc.Submit(context.Background(), nil, models.SubmitScoreRequest{Score: 3, Wrong: 2})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if score.PlayerName != GuestPlayerName || score.Difficulty != models.DifficultyEasy {
		t.Fatalf("expected guest defaults, got %+v", score)
	}
	if len(queue.jobs) != 1 || queue.jobs[0].ScoreID != score.ID || queue.jobs[0].UserID != nil {
		t.Fatalf("expected one guest job for the stored score, got %+v", queue.jobs)
	}
}

func TestScoreService_SubmitAuthenticatedUsesUsername(t *testing.T) {
	users := newStubUserRepo()
	user := &models.User{Username: "heidi"}
	users.Create(context.Background(), user)

	queue := &stubQueue{}
	svc := NewScoreService(&stubScoreRepo{}, users, queue, nil, zap.NewNop())

	score, err := svc.Submit(context.Background(), &user.ID, models.SubmitScoreRequest{PlayerName: "someone else", Score: 5, Difficulty: "hard"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if score.PlayerName != "heidi" || score.UserID == nil || *score.UserID != user.ID {
		t.Fatalf("expected score tied to heidi, got %+v", score)
	}
	if queue.jobs[0].UserID == nil || *queue.jobs[0].UserID != user.ID {
		t.Fatalf("expected job to carry the user id")
	}
}

func TestScoreService_SubmitValidationAndQueueFailure(t *testing.T) {
	repo := &stubScoreRepo{}
	svc := NewScoreService(repo, newStubUserRepo(), &stubQueue{err: errors.New("redis down")}, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), nil, models.SubmitScoreRequest{Score: -1, Difficulty: "insane"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["difficulty"]; !ok {
		t.Errorf("expected difficulty field error, got %v", verr.Fields)
	}

	if _, err := svc.Submit(context.Background(), nil, models.SubmitScoreRequest{Score: 1}); err != nil {
		t.Fatalf("queue failure must not fail the submission: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected score to be stored")
	}
}

func TestScoreService_TopLimit(t *testing.T) {
	repo := &stubScoreRepo{}
	svc := NewScoreService(repo, newStubUserRepo(), &stubQueue{}, nil, zap.NewNop())

	for _, tc := range []struct{ in, want int }{{0, 10}, {-5, 10}, {25, 25}, {1000, 100}} {
		svc.Top(context.Background(), tc.in)
		if repo.lastLimit != tc.want {
			t.Errorf("limit %d: expected %d, got %d", tc.in, tc.want, repo.lastLimit)
		}
	}
}

type stubQuestionRepo struct {
	questions []models.Question
	failAt    int // 1-based row that fails to insert; 0 never fails
}

func (s *stubQuestionRepo) ListActive(ctx context.Context) ([]models.Question, error) {
	return s.questions, nil
}

func (s *stubQuestionRepo) Count(ctx context.Context) (int, error) {
	return len(s.questions), nil
}

// CreateBatch stages rows and keeps them only if every insert succeeds.
func (s *stubQuestionRepo) CreateBatch(ctx context.Context, questions []models.Question) error {
	staged := append([]models.Question{}, s.questions...)
	for i := range questions {
		if s.failAt == i+1 {
			return errors.New("value too long for type character varying(255)")
		}
		questions[i].ID = len(staged) + 1
		staged = append(staged, questions[i])
	}
	s.questions = staged
	return nil
}

func TestQuestionService_SeedFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	data := `{"questions":[
		{"question":"2 + 2?","options":["3","4"],"answer":"4"},
		{"question":"Capital of France?","options":["Paris","Rome","Oslo"],"answer":"Paris"}
	]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	repo := &stubQuestionRepo{}
	svc := NewQuestionService(repo, zap.NewNop())

	n, err := svc.SeedFromFile(context.Background(), path)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 seeded questions, got %d %v", n, err)
	}
	if !repo.questions[0].IsActive {
		t.Fatalf("seeded questions should be active")
	}

	n, err = svc.SeedFromFile(context.Background(), path)
	if err != nil || n != 0 {
		t.Fatalf("expected seed to be skipped when questions exist, got %d %v", n, err)
	}

	if n, err := svc.SeedFromFile(context.Background(), ""); err != nil || n != 0 {
		t.Fatalf("expected empty path to be a no-op")
	}
}

func TestQuestionService_SeedFromFile_FailureLeavesTableEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	data := `{"questions":[
		{"question":"2 + 2?","options":["3","4"],"answer":"4"},
		{"question":"Capital of France?","options":["Paris","Rome"],"answer":"Paris"},
		{"question":"Largest planet?","options":["Mars","Jupiter"],"answer":"Jupiter"}
	]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	repo := &stubQuestionRepo{failAt: 2}
	svc := NewQuestionService(repo, zap.NewNop())

	n, err := svc.SeedFromFile(context.Background(), path)
	if err == nil || n != 0 {
		t.Fatalf("expected failed seed to report 0 and an error, got %d %v", n, err)
	}
	if len(repo.questions) != 0 {
		t.Fatalf("expected no rows after failed seed, got %d", len(repo.questions))
	}

	repo.failAt = 0
	n, err = svc.SeedFromFile(context.Background(), path)
	if err != nil || n != 3 {
		t.Fatalf("expected retry to seed all 3 questions, got %d %v", n, err)
	}
	if len(repo.questions) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(repo.questions))
	}
}
