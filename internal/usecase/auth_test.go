package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mbevents/backend/internal/domain"
	"github.com/mbevents/backend/internal/email"
	"github.com/mbevents/backend/internal/token"
	"github.com/mbevents/backend/internal/usecase"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

type fakeUserRepo struct {
	create                  func(ctx context.Context, user *domain.User) (*domain.User, error)
	findByEmail             func(ctx context.Context, email string) (*domain.User, error)
	findByID                func(ctx context.Context, id string) (*domain.User, error)
	setResetToken           func(ctx context.Context, userID, token string, expiresAt time.Time) error
	consumeResetToken       func(ctx context.Context, userID, token, newHash string) error
	clearExpiredResetTokens func(ctx context.Context) (int64, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return r.create(ctx, user)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	return r.setResetToken(ctx, userID, token, expiresAt)
}

func (r *fakeUserRepo) ConsumeResetToken(ctx context.Context, userID, token, newHash string) error {
	return r.consumeResetToken(ctx, userID, token, newHash)
}

func (r *fakeUserRepo) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	return r.clearExpiredResetTokens(ctx)
}

type fakeMailer struct {
	messages []email.Message
}

func (m *fakeMailer) Enqueue(msg email.Message) {
	m.messages = append(m.messages, msg)
}

// ---- helpers ----

const (
	testJWTKey      = "test-jwt-secret-at-least-32-chars!!"
	testFrontendURL = "http://localhost:5173"
)

func newAuthUsecase(repo *fakeUserRepo, mail *fakeMailer) *usecase.AuthUsecase {
	return usecase.NewAuthUsecase(repo, token.NewIssuer([]byte(testJWTKey)), mail, testFrontendURL)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

// ---- Register ----

func TestRegister_HashesPasswordAndQueuesWelcomeEmail(t *testing.T) {
	var stored *domain.User
	repo := &fakeUserRepo{
		create: func(_ context.Context, user *domain.User) (*domain.User, error) {
			stored = user
			return user, nil
		},
	}
	mail := &fakeMailer{}

	created, err := newAuthUsecase(repo, mail).Register(context.Background(), "a@x.com", "A", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored.PasswordHash == "secret1" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
	if created.ID == "" {
		t.Error("created user has no ID")
	}

	if len(mail.messages) != 1 {
		t.Fatalf("queued %d emails, want 1", len(mail.messages))
	}
	if mail.messages[0].To != "a@x.com" {
		t.Errorf("welcome email to %q, want a@x.com", mail.messages[0].To)
	}
}

func TestRegister_DuplicateEmail_ReturnsErrEmailTaken(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, _ *domain.User) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	mail := &fakeMailer{}

	_, err := newAuthUsecase(repo, mail).Register(context.Background(), "a@x.com", "A", "secret1")
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("want ErrEmailTaken, got %v", err)
	}
	if len(mail.messages) != 0 {
		t.Errorf("queued %d emails on failed registration, want 0", len(mail.messages))
	}
}

// ---- Login ----

func TestLogin_UnknownEmail_ReturnsErrUserNotFound(t *testing.T) {
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	_, _, err := newAuthUsecase(repo, &fakeMailer{}).Login(context.Background(), "nobody@x.com", "secret1")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestLogin_WrongPassword_ReturnsErrInvalidCredentials(t *testing.T) {
	user := &domain.User{ID: "user-1", Email: "a@x.com", PasswordHash: hashOf(t, "secret1")}
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return user, nil
		},
	}

	_, _, err := newAuthUsecase(repo, &fakeMailer{}).Login(context.Background(), "a@x.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_Success_TokenDecodesToUser(t *testing.T) {
	user := &domain.User{ID: "user-1", Email: "a@x.com", FullName: "A", PasswordHash: hashOf(t, "secret1")}
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return user, nil
		},
	}

	signed, got, err := newAuthUsecase(repo, &fakeMailer{}).Login(context.Background(), "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Email != user.Email || got.FullName != user.FullName {
		t.Errorf("returned user %+v, want %+v", got, user)
	}

	claims, err := token.NewIssuer([]byte(testJWTKey)).Verify(signed)
	if err != nil {
		t.Fatalf("returned token does not verify: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("token UserID = %q, want %q", claims.UserID, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("token Email = %q, want %q", claims.Email, user.Email)
	}
}

// ---- ForgotPassword ----

func TestForgotPassword_StoresTokenAndEmailsIt(t *testing.T) {
	user := &domain.User{ID: "user-1", Email: "a@x.com", FullName: "A"}

	var storedToken string
	var storedExpiry time.Time
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return user, nil
		},
		setResetToken: func(_ context.Context, userID, tok string, expiresAt time.Time) error {
			if userID != user.ID {
				t.Errorf("stored token for %q, want %q", userID, user.ID)
			}
			storedToken = tok
			storedExpiry = expiresAt
			return nil
		},
	}
	mail := &fakeMailer{}

	before := time.Now()
	if err := newAuthUsecase(repo, mail).ForgotPassword(context.Background(), user.Email); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if storedToken == "" {
		t.Fatal("no reset token stored")
	}
	if !storedExpiry.After(before) {
		t.Errorf("expiry %v not in the future", storedExpiry)
	}

	// The raw token must be verifiable as a reset token for this user.
	claims, err := token.NewIssuer([]byte(testJWTKey)).VerifyReset(storedToken)
	if err != nil {
		t.Fatalf("stored token does not verify: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("token UserID = %q, want %q", claims.UserID, user.ID)
	}

	// And it travels to the user only inside the reset link.
	if len(mail.messages) != 1 {
		t.Fatalf("queued %d emails, want 1", len(mail.messages))
	}
	if !strings.Contains(mail.messages[0].HTML, "?token="+storedToken) {
		t.Error("reset email does not contain the stored token")
	}
}

func TestForgotPassword_UnknownEmail_ReturnsErrUserNotFound(t *testing.T) {
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	mail := &fakeMailer{}

	err := newAuthUsecase(repo, mail).ForgotPassword(context.Background(), "nobody@x.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
	if len(mail.messages) != 0 {
		t.Errorf("queued %d emails for unknown user, want 0", len(mail.messages))
	}
}

// ---- ResetPassword ----

func TestResetPassword_TamperedToken_FailsBeforeStoreLookup(t *testing.T) {
	repo := &fakeUserRepo{
		consumeResetToken: func(_ context.Context, _, _, _ string) error {
			t.Fatal("store touched with an invalid token")
			return nil
		},
	}

	err := newAuthUsecase(repo, &fakeMailer{}).ResetPassword(context.Background(), "not.a.jwt", "newpass1")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

func TestResetPassword_SessionToken_Rejected(t *testing.T) {
	session, err := token.NewIssuer([]byte(testJWTKey)).IssueSession("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	repo := &fakeUserRepo{
		consumeResetToken: func(_ context.Context, _, _, _ string) error {
			t.Fatal("store touched with a session token")
			return nil
		},
	}

	if err := newAuthUsecase(repo, &fakeMailer{}).ResetPassword(context.Background(), session, "newpass1"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

func TestResetPassword_Success_SwapsHashForTokenOwner(t *testing.T) {
	raw, err := token.NewIssuer([]byte(testJWTKey)).IssueReset("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var gotUserID, gotToken, gotHash string
	repo := &fakeUserRepo{
		consumeResetToken: func(_ context.Context, userID, tok, newHash string) error {
			gotUserID, gotToken, gotHash = userID, tok, newHash
			return nil
		},
	}

	if err := newAuthUsecase(repo, &fakeMailer{}).ResetPassword(context.Background(), raw, "newpass1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotUserID != "user-1" {
		t.Errorf("consumed for user %q, want user-1", gotUserID)
	}
	if gotToken != raw {
		t.Error("stored-token comparison did not use the presented token")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(gotHash), []byte("newpass1")); err != nil {
		t.Errorf("new hash does not match new password: %v", err)
	}
}

func TestResetPassword_NoPendingReset_ReturnsErrResetNotPending(t *testing.T) {
	raw, err := token.NewIssuer([]byte(testJWTKey)).IssueReset("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	repo := &fakeUserRepo{
		consumeResetToken: func(_ context.Context, _, _, _ string) error {
			return domain.ErrResetNotPending
		},
	}

	if err := newAuthUsecase(repo, &fakeMailer{}).ResetPassword(context.Background(), raw, "newpass1"); !errors.Is(err, domain.ErrResetNotPending) {
		t.Errorf("want ErrResetNotPending, got %v", err)
	}
}

// TestResetFlow_TokenIsSingleUse drives forgot → reset → reset against an
// in-memory user record: the second reset must fail because the first one
// cleared the stored token.
func TestResetFlow_TokenIsSingleUse(t *testing.T) {
	user := &domain.User{ID: "user-1", Email: "a@x.com", FullName: "A", PasswordHash: hashOf(t, "secret1")}

	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return user, nil
		},
		setResetToken: func(_ context.Context, _, tok string, expiresAt time.Time) error {
			user.ResetToken = &tok
			user.ResetTokenExpiry = &expiresAt
			return nil
		},
		consumeResetToken: func(_ context.Context, userID, tok, newHash string) error {
			if user.ResetToken == nil || userID != user.ID || *user.ResetToken != tok ||
				user.ResetTokenExpiry.Before(time.Now()) {
				return domain.ErrResetNotPending
			}
			user.PasswordHash = newHash
			user.ResetToken = nil
			user.ResetTokenExpiry = nil
			return nil
		},
	}
	mail := &fakeMailer{}
	uc := newAuthUsecase(repo, mail)

	if err := uc.ForgotPassword(context.Background(), user.Email); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	raw := *user.ResetToken

	if err := uc.ResetPassword(context.Background(), raw, "newpass1"); err != nil {
		t.Fatalf("first reset: %v", err)
	}
	if user.ResetToken != nil || user.ResetTokenExpiry != nil {
		t.Error("reset fields not cleared after successful reset")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newpass1")); err != nil {
		t.Errorf("password not updated: %v", err)
	}

	if err := uc.ResetPassword(context.Background(), raw, "another1"); !errors.Is(err, domain.ErrResetNotPending) {
		t.Errorf("second reset with same token = %v, want ErrResetNotPending", err)
	}
}

// TestResetFlow_ExpiredStoredToken simulates a stored expiry in the past;
// the signed token itself is still valid, the stored-expiry check must reject.
func TestResetFlow_ExpiredStoredToken(t *testing.T) {
	raw, err := token.NewIssuer([]byte(testJWTKey)).IssueReset("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	past := time.Now().Add(-time.Minute)
	user := &domain.User{ID: "user-1", ResetToken: &raw, ResetTokenExpiry: &past}

	repo := &fakeUserRepo{
		consumeResetToken: func(_ context.Context, userID, tok, _ string) error {
			if user.ResetToken == nil || userID != user.ID || *user.ResetToken != tok ||
				user.ResetTokenExpiry.Before(time.Now()) {
				return domain.ErrResetNotPending
			}
			return nil
		},
	}

	if err := newAuthUsecase(repo, &fakeMailer{}).ResetPassword(context.Background(), raw, "newpass1"); !errors.Is(err, domain.ErrResetNotPending) {
		t.Errorf("want ErrResetNotPending, got %v", err)
	}
}
