package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Thobbytosin/flowva-server/internal/config"
	"github.com/Thobbytosin/flowva-server/internal/domain"
	"github.com/Thobbytosin/flowva-server/internal/service/google"
	"github.com/Thobbytosin/flowva-server/internal/service/token"
	apperrors "github.com/Thobbytosin/flowva-server/pkg/errors"
	"github.com/Thobbytosin/flowva-server/pkg/logger"
)

// fakeUserRepo is an in-memory UserRepository with the same conflict
// semantics as the Postgres implementation.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return apperrors.NewConflictError("Account already exists")
	}
	r.nextID++
	user.ID = r.nextID
	user.LastLogin = time.Now()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	stored := *user
	r.users[user.Email] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			cp.Password = ""
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFoundError("Account not found")
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, apperrors.NewNotFoundError("Account not found")
	}
	cp := *u
	cp.Password = ""
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, apperrors.NewNotFoundError("Account not found")
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[email]
	return ok, nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			u.LastLogin = time.Now()
			return nil
		}
	}
	return apperrors.NewNotFoundError("Account not found")
}

func (r *fakeUserRepo) UpdatePreferences(ctx context.Context, id int64, prefs *domain.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			cp := *prefs
			u.Preferences = &cp
			return nil
		}
	}
	return apperrors.NewNotFoundError("Account not found")
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			u.Password = hashedPassword
			now := time.Now()
			u.LastPasswordReset = &now
			return nil
		}
	}
	return apperrors.NewNotFoundError("Account not found")
}

// fakeMailer records outgoing mail and fails on demand.
type fakeMailer struct {
	mu       sync.Mutex
	welcome  []string
	codes    map[string]string
	resets   map[string]string
	failNext error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{codes: make(map[string]string), resets: make(map[string]string)}
}

func (m *fakeMailer) SendWelcome(ctx context.Context, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		return m.failNext
	}
	m.welcome = append(m.welcome, to)
	return nil
}

func (m *fakeMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		return m.failNext
	}
	m.codes[to] = code
	return nil
}

func (m *fakeMailer) SendPasswordReset(ctx context.Context, to, resetPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		return m.failNext
	}
	m.resets[to] = resetPassword
	return nil
}

// fakeVerifier returns a canned Google profile.
type fakeVerifier struct {
	profile *google.Profile
	err     error
}

func (v *fakeVerifier) GetProfile(ctx context.Context, accessToken string) (*google.Profile, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.profile, nil
}

type testEnv struct {
	svc    *Service
	repo   *fakeUserRepo
	mailer *fakeMailer
	google *fakeVerifier
	cfg    *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		AccessTokenSecret:          "access-secret",
		RefreshTokenSecret:         "refresh-secret",
		VerificationTokenSecret:    "verification-secret",
		ResetTokenSecret:           "reset-secret",
		AccessTokenExpirationDays:  1,
		RefreshTokenExpirationDays: 5,
		ResetPassword:              "master-reset-value",
	}

	log, err := logger.New("error")
	require.NoError(t, err)

	repo := newFakeUserRepo()
	mailer := newFakeMailer()
	verifier := &fakeVerifier{}

	return &testEnv{
		svc:    NewService(cfg, repo, token.NewService(cfg), mailer, verifier, log),
		repo:   repo,
		mailer: mailer,
		google: verifier,
		cfg:    cfg,
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.StatusCode
}

func TestRegisterDirect(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.svc.RegisterDirect(ctx, "A@B.com", "Abcdef1!")
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", user.Email, "email is stored lowercase")
	assert.True(t, user.Verified)
	assert.Equal(t, []string{"a@b.com"}, env.mailer.welcome)

	stored, err := env.repo.GetByEmailWithPassword(ctx, "a@b.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("Abcdef1!")))
}

func TestRegisterDirectRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
	}{
		{"blank email", "   ", "Abcdef1!", 400},
		{"blank password", "a@b.com", "", 400},
		{"malformed email", "not-an-email", "Abcdef1!", 400},
		{"weak password", "a@b.com", "short", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.RegisterDirect(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, statusOf(t, err))
		})
	}
}

func TestRegisterDirectDuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.RegisterDirect(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)

	_, err = env.svc.RegisterDirect(ctx, "a@b.com", "Abcdef1!")
	require.Error(t, err)
	assert.Equal(t, 409, statusOf(t, err))
}

func TestRegisterDirectMailFailureKeepsAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.mailer.failNext = errors.New("provider down")

	_, err := env.svc.RegisterDirect(ctx, "a@b.com", "Abcdef1!")
	require.Error(t, err)
	assert.Equal(t, 400, statusOf(t, err))

	// The account exists even though the welcome mail failed.
	exists, err := env.repo.EmailExists(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestVerifyFirstSignupFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	signed, err := env.svc.BeginVerification(ctx, "Ada", "ada@example.com", "Abcdef1!")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	// Nothing persisted yet.
	exists, err := env.repo.EmailExists(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	code := env.mailer.codes["ada@example.com"]
	require.Len(t, code, 6)

	user, err := env.svc.CompleteVerification(ctx, signed, code)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.True(t, user.Verified)
}

func TestCompleteVerificationWrongCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	signed, err := env.svc.BeginVerification(ctx, "Ada", "ada@example.com", "Abcdef1!")
	require.NoError(t, err)

	_, err = env.svc.CompleteVerification(ctx, signed, "000000")
	require.Error(t, err)
	assert.Equal(t, 403, statusOf(t, err))

	exists, _ := env.repo.EmailExists(ctx, "ada@example.com")
	assert.False(t, exists, "mismatched code must not create the account")
}

func TestCompleteVerificationBadToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.CompleteVerification(context.Background(), "garbage", "123456")
	require.Error(t, err)
	assert.Equal(t, 401, statusOf(t, err))
}

func TestResendVerificationIssuesFreshCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	signed, err := env.svc.BeginVerification(ctx, "Ada", "ada@example.com", "Abcdef1!")
	require.NoError(t, err)
	first := env.mailer.codes["ada@example.com"]

	fresh, err := env.svc.ResendVerification(ctx, signed)
	require.NoError(t, err)
	require.NotEmpty(t, fresh)
	second := env.mailer.codes["ada@example.com"]

	// The new token completes with the new code.
	user, err := env.svc.CompleteVerification(ctx, fresh, second)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)

	// Both codes were six digits; they may rarely collide, so only check
	// shape here.
	assert.Len(t, first, 6)
	assert.Len(t, second, 6)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.RegisterDirect(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)

	user, pair, err := env.svc.Login(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Empty(t, user.Password, "login response user must not carry the hash")
}

func TestLoginErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.RegisterDirect(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)

	t.Run("blank fields", func(t *testing.T) {
		_, _, err := env.svc.Login(ctx, "", "")
		require.Error(t, err)
		assert.Equal(t, 403, statusOf(t, err))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := env.svc.Login(ctx, "nobody@b.com", "Abcdef1!")
		require.Error(t, err)
		assert.Equal(t, 404, statusOf(t, err))
		assert.Contains(t, err.Error(), "Account not found")
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := env.svc.Login(ctx, "a@b.com", "wrong-pass-1!")
		require.Error(t, err)
		// Same status as unknown email, different message.
		assert.Equal(t, 404, statusOf(t, err))
		assert.Contains(t, err.Error(), "Invalid credentials")
	})
}

func TestLoginMasterOverride(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.RegisterDirect(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)

	// The configured reset value bypasses the hash comparison.
	_, pair, err := env.svc.Login(ctx, "a@b.com", env.cfg.ResetPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestGoogleLoginCreatesAccountOnFirstSight(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.google.profile = &google.Profile{
		ID:      "g-123",
		Email:   "G.User@Example.com",
		Name:    "G User",
		Picture: "https://example.com/p.png",
	}

	user, pair, err := env.svc.GoogleLogin(ctx, "ya29.token")
	require.NoError(t, err)
	require.NotNil(t, pair)

	assert.Equal(t, "g.user@example.com", user.Email)
	assert.True(t, user.GoogleRegistered)
	assert.True(t, user.Verified)
	assert.Empty(t, user.Password)
	require.NotNil(t, user.Avatar)
	assert.Equal(t, "https://example.com/p.png", user.Avatar.URL)

	// Second sign-in reuses the account.
	again, _, err := env.svc.GoogleLogin(ctx, "ya29.token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestGoogleLoginRejectsBadToken(t *testing.T) {
	env := newTestEnv(t)
	env.google.err = errors.New("userinfo: 401")

	_, _, err := env.svc.GoogleLogin(context.Background(), "bad")
	require.Error(t, err)
	assert.Equal(t, 401, statusOf(t, err))
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.RegisterDirect(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)

	_, pair, err := env.svc.Login(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)

	user, fresh, err := env.svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)
	assert.NotEmpty(t, fresh.AccessToken)
	assert.NotEmpty(t, fresh.RefreshToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.RegisterDirect(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)
	_, pair, err := env.svc.Login(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)

	// An access token signed with the access secret must not refresh.
	_, _, err = env.svc.Refresh(pair.AccessToken)
	require.Error(t, err)
	assert.Equal(t, 401, statusOf(t, err))
}

func TestForgotPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.RegisterDirect(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)

	require.NoError(t, env.svc.ForgotPassword(ctx, "a@b.com"))
	assert.Equal(t, env.cfg.ResetPassword, env.mailer.resets["a@b.com"],
		"the flow mails the static configured reset value")

	t.Run("missing email", func(t *testing.T) {
		err := env.svc.ForgotPassword(ctx, "")
		require.Error(t, err)
		assert.Equal(t, 400, statusOf(t, err))
	})

	t.Run("unknown account", func(t *testing.T) {
		err := env.svc.ForgotPassword(ctx, "nobody@b.com")
		require.Error(t, err)
		assert.Equal(t, 404, statusOf(t, err))
	})
}

func TestForgotPasswordThrottledAfterRecentReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.RegisterDirect(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)

	stored, err := env.repo.GetByEmailWithPassword(ctx, "a@b.com")
	require.NoError(t, err)
	require.NoError(t, env.repo.UpdatePassword(ctx, stored.ID, "new-hash"))

	err = env.svc.ForgotPassword(ctx, "a@b.com")
	require.Error(t, err)
	assert.Equal(t, 403, statusOf(t, err))
}

func TestUpdatePreferencesReplacesEntireObject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.svc.RegisterDirect(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)

	first := &domain.UpdatePreferencesRequest{
		SelfDescription: "builder",
		Work:            []string{"backend", "infra"},
		Country:         "NG",
		ToolStack:       []string{"go"},
		Goals:           []string{"ship"},
	}
	require.NoError(t, env.svc.UpdatePreferences(ctx, user.ID, first))

	second := &domain.UpdatePreferencesRequest{
		SelfDescription: "x",
		Work:            []string{},
		Country:         "NG",
		ToolStack:       []string{},
		Goals:           []string{},
	}
	require.NoError(t, env.svc.UpdatePreferences(ctx, user.ID, second))

	got, err := env.svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Preferences)
	assert.Equal(t, "x", got.Preferences.SelfDescription)
	assert.Empty(t, got.Preferences.Work, "no leftover fields from the earlier update")
	assert.Empty(t, got.Preferences.Goals)
}

func TestGetUserNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.GetUser(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, 404, statusOf(t, err))
}
