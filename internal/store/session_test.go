package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepak9783/Eatsy/internal/domain"
	"github.com/deepak9783/Eatsy/internal/statefile"
	"github.com/deepak9783/Eatsy/internal/testutil"
)

// fakeUserService scripts one outcome per endpoint.
type fakeUserService struct {
	user    *domain.UserProfile
	message string
	err     error
}

func (f *fakeUserService) outcome() (*domain.UserProfile, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.user, f.message, nil
}

func (f *fakeUserService) Signup(context.Context, domain.SignupInput) (*domain.UserProfile, string, error) {
	return f.outcome()
}

func (f *fakeUserService) Login(context.Context, domain.LoginInput) (*domain.UserProfile, string, error) {
	return f.outcome()
}

func (f *fakeUserService) VerifyEmail(context.Context, string) (*domain.UserProfile, string, error) {
	return f.outcome()
}

func (f *fakeUserService) CheckAuth(context.Context) (*domain.UserProfile, error) {
	user, _, err := f.outcome()
	return user, err
}

func (f *fakeUserService) Logout(context.Context) (string, error) {
	_, msg, err := f.outcome()
	return msg, err
}

func (f *fakeUserService) ForgotPassword(context.Context, string) (string, error) {
	_, msg, err := f.outcome()
	return msg, err
}

func (f *fakeUserService) ResetPassword(context.Context, string, string) (string, error) {
	_, msg, err := f.outcome()
	return msg, err
}

func (f *fakeUserService) UpdateProfile(context.Context, domain.ProfileInput) (*domain.UserProfile, string, error) {
	return f.outcome()
}

func alice() *domain.UserProfile {
	return &domain.UserProfile{
		Fullname:   "Alice Doe",
		Email:      "alice@example.com",
		Contact:    "5550001",
		IsVerified: true,
	}
}

// watchInvariant fails the test if any committed state breaks the
// IsAuthenticated <=> User != nil pairing.
func watchInvariant(t *testing.T, s *SessionStore) {
	t.Helper()
	cancel := s.Subscribe(func(st domain.Session) {
		assert.True(t, st.Valid(),
			"pairing invariant broken: isAuthenticated=%t user=%v", st.IsAuthenticated, st.User)
	})
	t.Cleanup(cancel)
}

func TestSessionStartsUnresolved(t *testing.T) {
	s := NewSessionStore(&fakeUserService{}, nil, nil)

	st := s.Session()
	assert.True(t, st.IsCheckingAuth)
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.False(t, st.Loading)
}

func TestLoginSuccess(t *testing.T) {
	svc := &fakeUserService{user: alice(), message: "Welcome back Alice Doe"}
	rec := testutil.NewRecordingNotifier()
	s := NewSessionStore(svc, rec, nil)
	watchInvariant(t, s)

	s.Login(context.Background(), domain.LoginInput{Email: "alice@example.com", Password: "pw"})

	st := s.Session()
	assert.False(t, st.Loading)
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "alice@example.com", st.User.Email)
	assert.Equal(t, []string{"Welcome back Alice Doe"}, rec.Successes())
	assert.Empty(t, rec.Errors())
}

func TestLoginFailureLeavesSessionAlone(t *testing.T) {
	// login({email, password:"bad"}) against {success:false, message:"Invalid
	// credentials"}: loading false, isAuthenticated unchanged, error toast
	// with the server message.
	svc := &fakeUserService{user: alice(), message: "ok"}
	rec := testutil.NewRecordingNotifier()
	s := NewSessionStore(svc, rec, nil)
	watchInvariant(t, s)

	s.Login(context.Background(), domain.LoginInput{Email: "alice@example.com", Password: "pw"})
	require.True(t, s.Session().IsAuthenticated)
	rec.Reset()

	svc.err = &domain.ValidationError{Message: "Invalid credentials"}
	s.Login(context.Background(), domain.LoginInput{Email: "alice@example.com", Password: "bad"})

	st := s.Session()
	assert.False(t, st.Loading)
	assert.True(t, st.IsAuthenticated, "failed re-auth must not log the user out")
	require.NotNil(t, st.User)
	assert.Equal(t, []string{"Invalid credentials"}, rec.Errors())
	assert.Empty(t, rec.Successes())
}

func TestSignupSuccess(t *testing.T) {
	svc := &fakeUserService{user: alice(), message: "Account created successfully"}
	rec := testutil.NewRecordingNotifier()
	s := NewSessionStore(svc, rec, nil)
	watchInvariant(t, s)

	s.Signup(context.Background(), domain.SignupInput{Fullname: "Alice Doe", Email: "alice@example.com", Password: "pw"})

	st := s.Session()
	assert.False(t, st.Loading)
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, []string{"Account created successfully"}, rec.Successes())
}

func TestSignupTransportFailureUsesGenericMessage(t *testing.T) {
	svc := &fakeUserService{err: &domain.TransportError{Err: errors.New("connection refused")}}
	rec := testutil.NewRecordingNotifier()
	s := NewSessionStore(svc, rec, nil)
	watchInvariant(t, s)

	s.Signup(context.Background(), domain.SignupInput{Email: "alice@example.com", Password: "pw"})

	st := s.Session()
	assert.False(t, st.Loading)
	assert.False(t, st.IsAuthenticated)
	assert.Equal(t, []string{domain.GenericErrorMessage}, rec.Errors())
}

func TestVerifyEmailFailureUsesErrorChannel(t *testing.T) {
	svc := &fakeUserService{err: &domain.ValidationError{Message: "Invalid or expired verification code"}}
	rec := testutil.NewRecordingNotifier()
	s := NewSessionStore(svc, rec, nil)
	watchInvariant(t, s)

	s.VerifyEmail(context.Background(), "000000")

	assert.False(t, s.Session().Loading)
	assert.Empty(t, rec.Successes())
	assert.Equal(t, []string{"Invalid or expired verification code"}, rec.Errors())
}

func TestVerifyEmailSuccess(t *testing.T) {
	svc := &fakeUserService{user: alice(), message: "Email verified successfully"}
	rec := testutil.NewRecordingNotifier()
	s := NewSessionStore(svc, rec, nil)
	watchInvariant(t, s)

	s.VerifyEmail(context.Background(), "123456")

	st := s.Session()
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, []string{"Email verified successfully"}, rec.Successes())
}

func TestCheckAuthenticationSuccess(t *testing.T) {
	svc := &fakeUserService{user: alice()}
	s := NewSessionStore(svc, nil, nil)
	watchInvariant(t, s)

	s.CheckAuthentication(context.Background())

	st := s.Session()
	assert.False(t, st.IsCheckingAuth)
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "alice@example.com", st.User.Email)
}

func TestCheckAuthenticationFailureClearsUser(t *testing.T) {
	svc := &fakeUserService{user: alice()}
	rec := testutil.NewRecordingNotifier()
	s := NewSessionStore(svc, rec, nil)
	watchInvariant(t, s)

	s.Login(context.Background(), domain.LoginInput{Email: "alice@example.com", Password: "pw"})
	require.True(t, s.Session().IsAuthenticated)

	svc.err = &domain.AuthError{Message: "User not authenticated"}
	s.CheckAuthentication(context.Background())

	st := s.Session()
	assert.False(t, st.IsCheckingAuth)
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User, "failed probe must clear the user to keep the pairing")
}

func TestCheckAuthenticationIsSilent(t *testing.T) {
	rec := testutil.NewRecordingNotifier()
	s := NewSessionStore(&fakeUserService{err: &domain.AuthError{}}, rec, nil)

	s.CheckAuthentication(context.Background())

	assert.Empty(t, rec.Successes())
	assert.Empty(t, rec.Errors())
}

func TestLogoutClearsSession(t *testing.T) {
	svc := &fakeUserService{user: alice(), message: "ok"}
	rec := testutil.NewRecordingNotifier()
	s := NewSessionStore(svc, rec, nil)
	watchInvariant(t, s)

	s.Login(context.Background(), domain.LoginInput{Email: "alice@example.com", Password: "pw"})
	require.True(t, s.Session().IsAuthenticated)

	svc.message = "Logged out successfully"
	s.Logout(context.Background())

	st := s.Session()
	assert.False(t, st.Loading)
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.Contains(t, rec.Successes(), "Logged out successfully")
}

func TestLogoutFailureKeepsSession(t *testing.T) {
	svc := &fakeUserService{user: alice(), message: "ok"}
	rec := testutil.NewRecordingNotifier()
	s := NewSessionStore(svc, rec, nil)
	watchInvariant(t, s)

	s.Login(context.Background(), domain.LoginInput{Email: "alice@example.com", Password: "pw"})
	rec.Reset()

	svc.err = &domain.TransportError{Err: errors.New("timeout")}
	s.Logout(context.Background())

	st := s.Session()
	assert.False(t, st.Loading)
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, []string{domain.GenericErrorMessage}, rec.Errors())
}

func TestForgotAndResetPasswordDoNotTouchUser(t *testing.T) {
	svc := &fakeUserService{user: alice(), message: "ok"}
	rec := testutil.NewRecordingNotifier()
	s := NewSessionStore(svc, rec, nil)
	watchInvariant(t, s)

	s.Login(context.Background(), domain.LoginInput{Email: "alice@example.com", Password: "pw"})
	before := s.Session()
	rec.Reset()

	svc.message = "Password reset link sent to your email"
	s.ForgotPassword(context.Background(), "alice@example.com")

	svc.message = "Password reset successfully"
	s.ResetPassword(context.Background(), "sometoken", "newpw")

	st := s.Session()
	assert.False(t, st.Loading)
	assert.Equal(t, before.IsAuthenticated, st.IsAuthenticated)
	assert.Equal(t, before.User, st.User)
	assert.Equal(t, []string{
		"Password reset link sent to your email",
		"Password reset successfully",
	}, rec.Successes())
}

func TestResetPasswordFailure(t *testing.T) {
	svc := &fakeUserService{err: &domain.ValidationError{Message: "Invalid or expired reset token"}}
	rec := testutil.NewRecordingNotifier()
	s := NewSessionStore(svc, rec, nil)

	s.ResetPassword(context.Background(), "bad", "newpw")

	assert.False(t, s.Session().Loading)
	assert.Equal(t, []string{"Invalid or expired reset token"}, rec.Errors())
}

func TestUpdateProfileSuccess(t *testing.T) {
	updated := alice()
	updated.City = "Lisbon"
	svc := &fakeUserService{user: updated, message: "Profile updated successfully"}
	rec := testutil.NewRecordingNotifier()
	s := NewSessionStore(svc, rec, nil)
	watchInvariant(t, s)

	s.UpdateProfile(context.Background(), domain.ProfileInput{City: "Lisbon"})

	st := s.Session()
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "Lisbon", st.User.City)
	assert.Equal(t, []string{"Profile updated successfully"}, rec.Successes())
}

func TestUpdateProfileFailureNotifiesOnly(t *testing.T) {
	svc := &fakeUserService{user: alice(), message: "ok"}
	rec := testutil.NewRecordingNotifier()
	s := NewSessionStore(svc, rec, nil)
	watchInvariant(t, s)

	s.Login(context.Background(), domain.LoginInput{Email: "alice@example.com", Password: "pw"})
	before := s.Session()
	rec.Reset()

	svc.err = &domain.ValidationError{Message: "Invalid request body"}
	s.UpdateProfile(context.Background(), domain.ProfileInput{})

	assert.Equal(t, before, s.Session())
	assert.Equal(t, []string{"Invalid request body"}, rec.Errors())
}

func TestEveryOperationSettlesWithLoadingFalse(t *testing.T) {
	ops := map[string]func(*SessionStore){
		"signup":    func(s *SessionStore) { s.Signup(context.Background(), domain.SignupInput{}) },
		"login":     func(s *SessionStore) { s.Login(context.Background(), domain.LoginInput{}) },
		"verify":    func(s *SessionStore) { s.VerifyEmail(context.Background(), "x") },
		"checkAuth": func(s *SessionStore) { s.CheckAuthentication(context.Background()) },
		"logout":    func(s *SessionStore) { s.Logout(context.Background()) },
		"forgot":    func(s *SessionStore) { s.ForgotPassword(context.Background(), "a@b.c") },
		"reset":     func(s *SessionStore) { s.ResetPassword(context.Background(), "t", "p") },
		"update":    func(s *SessionStore) { s.UpdateProfile(context.Background(), domain.ProfileInput{}) },
	}
	outcomes := map[string]*fakeUserService{
		"success": {user: alice(), message: "ok"},
		"failure": {err: &domain.ValidationError{Message: "nope"}},
	}

	for opName, op := range ops {
		for outcomeName, svc := range outcomes {
			t.Run(opName+"/"+outcomeName, func(t *testing.T) {
				s := NewSessionStore(svc, nil, nil)
				op(s)
				assert.False(t, s.Session().Loading)
			})
		}
	}
}

func TestSessionPersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	slot := statefile.NewSlot(path)

	svc := &fakeUserService{user: alice(), message: "ok"}
	first := NewSessionStore(svc, nil, slot)
	first.Login(context.Background(), domain.LoginInput{Email: "alice@example.com", Password: "pw"})
	require.True(t, first.Session().IsAuthenticated)

	// A fresh store over the same slot is authenticated before any probe.
	second := NewSessionStore(&fakeUserService{err: &domain.TransportError{Err: errors.New("offline")}}, nil, slot)
	st := second.Session()
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "alice@example.com", st.User.Email)
	assert.True(t, st.IsCheckingAuth, "rehydration must not pre-resolve the probe")
}

func TestPersistedSlotOmitsTransientFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	slot := statefile.NewSlot(path)

	svc := &fakeUserService{user: alice(), message: "ok"}
	s := NewSessionStore(svc, nil, slot)
	s.Login(context.Background(), domain.LoginInput{Email: "alice@example.com", Password: "pw"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "user")
	assert.Contains(t, raw, "isAuthenticated")
	assert.NotContains(t, raw, "loading")
	assert.NotContains(t, raw, "isCheckingAuth")
}

func TestLogoutPersistsClearedSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	slot := statefile.NewSlot(path)

	svc := &fakeUserService{user: alice(), message: "ok"}
	first := NewSessionStore(svc, nil, slot)
	first.Login(context.Background(), domain.LoginInput{Email: "alice@example.com", Password: "pw"})
	first.Logout(context.Background())

	second := NewSessionStore(svc, nil, slot)
	assert.False(t, second.Session().IsAuthenticated)
	assert.Nil(t, second.Session().User)
}
