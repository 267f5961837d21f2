// Package testutil hosts an in-process fake of the Eatsy backend for the
// client test suites: the user endpoints with real cookie-based sessions,
// plus the restaurant search surface, behind the same gzip wrapping and
// response envelopes the production server uses.
package testutil

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/deepak9783/Eatsy/internal/domain"
)

type account struct {
	id               string
	password         string
	verificationCode string
	profile          domain.UserProfile
}

// UserService is a fake Eatsy backend. Zero-value maps are not usable; build
// it with NewUserService.
type UserService struct {
	mu          sync.Mutex
	secret      []byte
	byEmail     map[string]*account
	byID        map[string]*account
	resetTokens map[string]string // token -> account id
	restaurants []domain.Restaurant
	menus       map[string][]domain.MenuItem
}

func NewUserService() *UserService {
	return &UserService{
		secret:      []byte("fixture-signing-secret"),
		byEmail:     make(map[string]*account),
		byID:        make(map[string]*account),
		resetTokens: make(map[string]string),
		menus:       make(map[string][]domain.MenuItem),
	}
}

// Handler returns the service's HTTP handler, gzip-wrapped like the real
// router.
func (s *UserService) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/signup", s.handleSignup)
	mux.HandleFunc("POST /user/login", s.handleLogin)
	mux.HandleFunc("POST /user/verify-email", s.handleVerifyEmail)
	mux.HandleFunc("GET /user/check-auth", s.handleCheckAuth)
	mux.HandleFunc("POST /user/logout", s.handleLogout)
	mux.HandleFunc("POST /user/forgot-password", s.handleForgotPassword)
	mux.HandleFunc("POST /user/resetpassword/{token}", s.handleResetPassword)
	mux.HandleFunc("PUT /user/profile/update", s.handleUpdateProfile)
	mux.HandleFunc("GET /restaurant/search/{query}", s.handleSearch)
	mux.HandleFunc("GET /menu/{id}", s.handleMenu)
	return gziphandler.GzipHandler(mux)
}

// SeedUser registers an account directly, bypassing signup. Returns the
// verification code the account would have been emailed.
func (s *UserService) SeedUser(profile domain.UserProfile, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := &account{
		id:               uuid.NewString(),
		password:         password,
		verificationCode: newVerificationCode(),
		profile:          profile,
	}
	s.byEmail[profile.Email] = acc
	s.byID[acc.id] = acc
	return acc.verificationCode
}

// SeedRestaurant registers a restaurant and its menu for the search surface.
func (s *UserService) SeedRestaurant(r domain.Restaurant, menu []domain.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.restaurants = append(s.restaurants, r)
	s.menus[r.ID] = menu
}

// SeedResetToken issues a password-reset token for the given email, as the
// forgot-password flow would.
func (s *UserService) SeedResetToken(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byEmail[email]
	if !ok {
		return "", false
	}
	token := uuid.NewString()
	s.resetTokens[token] = acc.id
	return token, true
}

func (s *UserService) handleSignup(w http.ResponseWriter, r *http.Request) {
	var input domain.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Email == "" || input.Password == "" {
		writeFailure(w, http.StatusBadRequest, "All fields are required")
		return
	}

	s.mu.Lock()
	if _, exists := s.byEmail[input.Email]; exists {
		s.mu.Unlock()
		writeFailure(w, http.StatusBadRequest, "User already exists with this email")
		return
	}
	acc := &account{
		id:               uuid.NewString(),
		password:         input.Password,
		verificationCode: newVerificationCode(),
		profile: domain.UserProfile{
			Fullname: input.Fullname,
			Email:    input.Email,
			Contact:  input.Contact,
		},
	}
	s.byEmail[input.Email] = acc
	s.byID[acc.id] = acc
	profile := acc.profile
	s.mu.Unlock()

	s.setSessionCookie(w, acc.id)
	writeUser(w, "Account created successfully", profile)
}

func (s *UserService) handleLogin(w http.ResponseWriter, r *http.Request) {
	var input domain.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeFailure(w, http.StatusBadRequest, "All fields are required")
		return
	}

	s.mu.Lock()
	acc, ok := s.byEmail[input.Email]
	if !ok || acc.password != input.Password {
		s.mu.Unlock()
		writeFailure(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	profile := acc.profile
	id := acc.id
	s.mu.Unlock()

	s.setSessionCookie(w, id)
	writeUser(w, fmt.Sprintf("Welcome back %s", profile.Fullname), profile)
}

func (s *UserService) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VerificationCode string `json:"verificationCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.VerificationCode == "" {
		writeFailure(w, http.StatusBadRequest, "Verification code is required")
		return
	}

	s.mu.Lock()
	var match *account
	for _, acc := range s.byID {
		if acc.verificationCode == body.VerificationCode {
			match = acc
			break
		}
	}
	if match == nil {
		s.mu.Unlock()
		writeFailure(w, http.StatusBadRequest, "Invalid or expired verification code")
		return
	}
	match.profile.IsVerified = true
	profile := match.profile
	id := match.id
	s.mu.Unlock()

	s.setSessionCookie(w, id)
	writeUser(w, "Email verified successfully", profile)
}

func (s *UserService) handleCheckAuth(w http.ResponseWriter, r *http.Request) {
	acc := s.authenticate(r)
	if acc == nil {
		writeFailure(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	writeUser(w, "", acc.profile)
}

func (s *UserService) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeMessage(w, "Logged out successfully")
}

func (s *UserService) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeFailure(w, http.StatusBadRequest, "Email is required")
		return
	}

	s.mu.Lock()
	acc, ok := s.byEmail[body.Email]
	if !ok {
		s.mu.Unlock()
		writeFailure(w, http.StatusBadRequest, "User doesn't exist")
		return
	}
	token := uuid.NewString()
	s.resetTokens[token] = acc.id
	s.mu.Unlock()

	writeMessage(w, "Password reset link sent to your email")
}

func (s *UserService) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	var body struct {
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewPassword == "" {
		writeFailure(w, http.StatusBadRequest, "New password is required")
		return
	}

	s.mu.Lock()
	id, ok := s.resetTokens[token]
	if !ok {
		s.mu.Unlock()
		writeFailure(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	delete(s.resetTokens, token)
	s.byID[id].password = body.NewPassword
	s.mu.Unlock()

	writeMessage(w, "Password reset successfully")
}

func (s *UserService) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	acc := s.authenticate(r)
	if acc == nil {
		writeFailure(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	var input domain.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	if input.Fullname != "" {
		acc.profile.Fullname = input.Fullname
	}
	acc.profile.Address = input.Address
	acc.profile.City = input.City
	acc.profile.Country = input.Country
	if input.ProfilePicture != "" {
		acc.profile.ProfilePicture = input.ProfilePicture
	}
	profile := acc.profile
	s.mu.Unlock()

	writeUser(w, "Profile updated successfully", profile)
}

func (s *UserService) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.PathValue("query")

	s.mu.Lock()
	var results []domain.Restaurant
	for _, rest := range s.restaurants {
		if containsFold(rest.Name, query) || containsFold(rest.City, query) || containsFold(rest.Country, query) {
			results = append(results, rest)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"restaurants": results,
	})
}

func (s *UserService) handleMenu(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	menu, ok := s.menus[id]
	s.mu.Unlock()
	if !ok {
		writeFailure(w, http.StatusNotFound, "Restaurant not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"menus":   menu,
	})
}

func (s *UserService) authenticate(r *http.Request) *account {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	userID, err := validateToken(s.secret, cookie.Value)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[userID]
}

// newVerificationCode returns the 6-digit code the backend would email.
func newVerificationCode() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	n := binary.BigEndian.Uint32(b) % 1000000
	return fmt.Sprintf("%06d", n)
}

func (s *UserService) setSessionCookie(w http.ResponseWriter, userID string) {
	token, err := generateToken(s.secret, userID, 24*time.Hour)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   24 * 60 * 60,
	})
}
