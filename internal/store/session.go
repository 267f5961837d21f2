package store

import (
	"context"

	"github.com/deepak9783/Eatsy/internal/domain"
	"github.com/deepak9783/Eatsy/internal/notify"
	"github.com/deepak9783/Eatsy/internal/statefile"
	"github.com/deepak9783/Eatsy/pkg/logger"
)

// UserService is the remote collaborator behind the session store: one
// method per endpoint, each returning the server's user payload and/or
// message, or a classified error (domain.ValidationError, TransportError,
// AuthError). Implemented by internal/api.
type UserService interface {
	Signup(ctx context.Context, input domain.SignupInput) (*domain.UserProfile, string, error)
	Login(ctx context.Context, input domain.LoginInput) (*domain.UserProfile, string, error)
	VerifyEmail(ctx context.Context, verificationCode string) (*domain.UserProfile, string, error)
	CheckAuth(ctx context.Context) (*domain.UserProfile, error)
	Logout(ctx context.Context) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
	UpdateProfile(ctx context.Context, input domain.ProfileInput) (*domain.UserProfile, string, error)
}

// persistedSession is the durable subset of the session state. Loading and
// IsCheckingAuth are transient and never written.
type persistedSession struct {
	User            *domain.UserProfile `json:"user"`
	IsAuthenticated bool                `json:"isAuthenticated"`
}

// SessionStore owns the authenticated-user record. Each operation is a
// remote call bracketed by state transitions; failures are classified,
// surfaced as notifications and never propagated, and every operation
// settles with Loading == false.
type SessionStore struct {
	store    *Store[domain.Session]
	service  UserService
	notifier notify.Notifier
	slot     *statefile.Slot
}

// NewSessionStore builds a session store over the given service. The state
// starts unresolved (IsCheckingAuth true) and, when slot holds a persisted
// session, rehydrated from it before any network probe runs. notifier and
// slot may be nil.
func NewSessionStore(service UserService, notifier notify.Notifier, slot *statefile.Slot) *SessionStore {
	s := &SessionStore{
		store:    New(domain.Session{IsCheckingAuth: true}),
		service:  service,
		notifier: notifier,
		slot:     slot,
	}
	s.rehydrate()
	return s
}

// Session returns the current session state.
func (s *SessionStore) Session() domain.Session {
	return s.store.Get()
}

// Subscribe registers fn to observe every committed session state.
func (s *SessionStore) Subscribe(fn func(domain.Session)) (cancel func()) {
	return s.store.Subscribe(fn)
}

// Signup registers a new account. On success the session becomes
// authenticated as the new user; on failure the prior session is left
// alone and an error notification carries the server's message.
func (s *SessionStore) Signup(ctx context.Context, input domain.SignupInput) {
	log := logger.WithOperation("signup")
	s.setLoading(true)

	user, message, err := s.service.Signup(ctx, input)
	if err != nil {
		log.Warn().Err(err).Msg("signup failed")
		s.fail(err)
		return
	}

	log.Info().Str("email", user.Email).Msg("signed up")
	s.settle(func(st domain.Session) domain.Session {
		st.Loading = false
		return signIn(st, user)
	})
	s.success(message)
}

// Login authenticates with credentials. A failed attempt leaves the
// existing session untouched: a bad re-auth must not log the user out.
func (s *SessionStore) Login(ctx context.Context, input domain.LoginInput) {
	log := logger.WithOperation("login")
	s.setLoading(true)

	user, message, err := s.service.Login(ctx, input)
	if err != nil {
		log.Warn().Err(err).Msg("login failed")
		s.fail(err)
		return
	}

	log.Info().Str("email", user.Email).Msg("logged in")
	s.settle(func(st domain.Session) domain.Session {
		st.Loading = false
		return signIn(st, user)
	})
	s.success(message)
}

// VerifyEmail submits the emailed verification code. Failures go through
// the error notification channel.
func (s *SessionStore) VerifyEmail(ctx context.Context, verificationCode string) {
	log := logger.WithOperation("verify_email")
	s.setLoading(true)

	user, message, err := s.service.VerifyEmail(ctx, verificationCode)
	if err != nil {
		log.Warn().Err(err).Msg("email verification failed")
		s.fail(err)
		return
	}

	log.Info().Str("email", user.Email).Msg("email verified")
	s.settle(func(st domain.Session) domain.Session {
		st.Loading = false
		return signIn(st, user)
	})
	s.success(message)
}

// CheckAuthentication probes the server for the current session. On any
// failure the session is cleared, user included, so the pairing invariant
// holds; no notification is surfaced either way.
func (s *SessionStore) CheckAuthentication(ctx context.Context) {
	log := logger.WithOperation("check_auth")
	s.store.Update(func(st domain.Session) domain.Session {
		st.IsCheckingAuth = true
		return st
	})

	user, err := s.service.CheckAuth(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("no active session")
		s.settle(func(st domain.Session) domain.Session {
			st.IsCheckingAuth = false
			return signOut(st)
		})
		return
	}

	log.Debug().Str("email", user.Email).Msg("session resumed")
	s.settle(func(st domain.Session) domain.Session {
		st.IsCheckingAuth = false
		return signIn(st, user)
	})
}

// Logout ends the server session and clears the local one.
func (s *SessionStore) Logout(ctx context.Context) {
	log := logger.WithOperation("logout")
	s.setLoading(true)

	message, err := s.service.Logout(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("logout failed")
		s.fail(err)
		return
	}

	log.Info().Msg("logged out")
	s.settle(func(st domain.Session) domain.Session {
		st.Loading = false
		return signOut(st)
	})
	s.success(message)
}

// ForgotPassword requests a password-reset email. Neither outcome touches
// the authenticated user.
func (s *SessionStore) ForgotPassword(ctx context.Context, email string) {
	log := logger.WithOperation("forgot_password")
	s.setLoading(true)

	message, err := s.service.ForgotPassword(ctx, email)
	if err != nil {
		log.Warn().Err(err).Msg("forgot password failed")
		s.fail(err)
		return
	}

	s.settle(func(st domain.Session) domain.Session {
		st.Loading = false
		return st
	})
	s.success(message)
}

// ResetPassword redeems a reset token for a new password. Neither outcome
// touches the authenticated user.
func (s *SessionStore) ResetPassword(ctx context.Context, token, newPassword string) {
	log := logger.WithOperation("reset_password")
	s.setLoading(true)

	message, err := s.service.ResetPassword(ctx, token, newPassword)
	if err != nil {
		log.Warn().Err(err).Msg("password reset failed")
		s.fail(err)
		return
	}

	s.settle(func(st domain.Session) domain.Session {
		st.Loading = false
		return st
	})
	s.success(message)
}

// UpdateProfile saves edited profile fields. It does not toggle Loading; on
// failure only an error notification is surfaced.
func (s *SessionStore) UpdateProfile(ctx context.Context, input domain.ProfileInput) {
	log := logger.WithOperation("update_profile")

	user, message, err := s.service.UpdateProfile(ctx, input)
	if err != nil {
		log.Warn().Err(err).Msg("profile update failed")
		s.notifyError(domain.UserMessage(err))
		return
	}

	log.Info().Str("email", user.Email).Msg("profile updated")
	s.settle(func(st domain.Session) domain.Session {
		return signIn(st, user)
	})
	s.success(message)
}

// signIn sets the authenticated pair together. The profile is copied so the
// committed state cannot alias caller-held memory.
func signIn(st domain.Session, user *domain.UserProfile) domain.Session {
	u := *user
	st.User = &u
	st.IsAuthenticated = true
	return st
}

// signOut clears the authenticated pair together.
func signOut(st domain.Session) domain.Session {
	st.User = nil
	st.IsAuthenticated = false
	return st
}

func (s *SessionStore) setLoading(v bool) {
	s.store.Update(func(st domain.Session) domain.Session {
		st.Loading = v
		return st
	})
}

// fail settles a loading operation on its failure path: Loading drops, the
// session is otherwise left at its prior value, and the classified error is
// surfaced on the error channel.
func (s *SessionStore) fail(err error) {
	s.settle(func(st domain.Session) domain.Session {
		st.Loading = false
		return st
	})
	s.notifyError(domain.UserMessage(err))
}

// settle commits a terminal transition and writes the durable subset of the
// resulting state to the slot.
func (s *SessionStore) settle(fn func(domain.Session) domain.Session) {
	next := s.store.Update(fn)
	s.persist(next)
}

func (s *SessionStore) persist(st domain.Session) {
	if s.slot == nil {
		return
	}
	err := s.slot.Save(persistedSession{
		User:            st.User,
		IsAuthenticated: st.IsAuthenticated,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to persist session")
	}
}

func (s *SessionStore) rehydrate() {
	if s.slot == nil {
		return
	}
	var saved persistedSession
	ok, err := s.slot.Load(&saved)
	if err != nil {
		logger.Warn().Err(err).Msg("discarding unreadable session state")
		return
	}
	if !ok {
		return
	}
	// A slot written before a crash could hold a mismatched pair; only a
	// complete one counts as authenticated.
	if !saved.IsAuthenticated || saved.User == nil {
		return
	}
	s.store.Update(func(st domain.Session) domain.Session {
		return signIn(st, saved.User)
	})
}

func (s *SessionStore) success(message string) {
	if s.notifier == nil {
		return
	}
	if message == "" {
		message = "Done."
	}
	s.notifier.Success(message)
}

func (s *SessionStore) notifyError(message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Error(message)
}
