// Package api is the HTTP/JSON client for the Eatsy backend. Every response
// is an envelope {success, message, ...payload}; success:false and transport
// faults both classify as failures per the taxonomy in internal/domain.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/deepak9783/Eatsy/internal/domain"
	"github.com/deepak9783/Eatsy/pkg/logger"
)

// Client talks to the Eatsy backend. The cookie jar carries the HttpOnly
// session cookie between calls; the limiter paces outbound requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for the given base URL (no trailing slash).
// timeout bounds every request end to end, so no operation can hang a
// loading flag forever.
func NewClient(baseURL string, timeout time.Duration, requestsPerSec float64, burst int) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), burst),
	}, nil
}

// envelope is the header every response shares.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type userEnvelope struct {
	envelope
	User *domain.UserProfile `json:"user"`
}

type restaurantsEnvelope struct {
	envelope
	Restaurants []domain.Restaurant `json:"restaurants"`
}

type menuEnvelope struct {
	envelope
	Menus []domain.MenuItem `json:"menus"`
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, input domain.SignupInput) (*domain.UserProfile, string, error) {
	return c.userCall(ctx, http.MethodPost, "/user/signup", input)
}

// Login authenticates with credentials.
func (c *Client) Login(ctx context.Context, input domain.LoginInput) (*domain.UserProfile, string, error) {
	return c.userCall(ctx, http.MethodPost, "/user/login", input)
}

// VerifyEmail submits the emailed verification code.
func (c *Client) VerifyEmail(ctx context.Context, verificationCode string) (*domain.UserProfile, string, error) {
	body := map[string]string{"verificationCode": verificationCode}
	return c.userCall(ctx, http.MethodPost, "/user/verify-email", body)
}

// CheckAuth probes the current session.
func (c *Client) CheckAuth(ctx context.Context) (*domain.UserProfile, error) {
	user, _, err := c.userCall(ctx, http.MethodGet, "/user/check-auth", nil)
	return user, err
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) (string, error) {
	return c.messageCall(ctx, http.MethodPost, "/user/logout", nil)
}

// ForgotPassword requests a password-reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	body := map[string]string{"email": email}
	return c.messageCall(ctx, http.MethodPost, "/user/forgot-password", body)
}

// ResetPassword redeems a reset token for a new password.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	body := map[string]string{"newPassword": newPassword}
	path := "/user/resetpassword/" + url.PathEscape(token)
	return c.messageCall(ctx, http.MethodPost, path, body)
}

// UpdateProfile saves edited profile fields.
func (c *Client) UpdateProfile(ctx context.Context, input domain.ProfileInput) (*domain.UserProfile, string, error) {
	return c.userCall(ctx, http.MethodPut, "/user/profile/update", input)
}

// SearchRestaurants queries the restaurant directory by name, city or
// country.
func (c *Client) SearchRestaurants(ctx context.Context, query string) ([]domain.Restaurant, error) {
	var out restaurantsEnvelope
	path := "/restaurant/search/" + url.PathEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Restaurants, nil
}

// GetRestaurantMenu fetches the menu of one restaurant.
func (c *Client) GetRestaurantMenu(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	var out menuEnvelope
	path := "/menu/" + url.PathEscape(restaurantID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Menus, nil
}

// userCall runs an endpoint whose success payload carries a user record. A
// success envelope without one is treated as a failure rather than handed
// to the store, which must never pair IsAuthenticated with a nil user.
func (c *Client) userCall(ctx context.Context, method, path string, body any) (*domain.UserProfile, string, error) {
	var out userEnvelope
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, "", err
	}
	if out.User == nil {
		return nil, "", &domain.TransportError{Err: fmt.Errorf("%s %s: success response missing user", method, path)}
	}
	return out.User, out.Message, nil
}

// messageCall runs an endpoint whose success payload is just a message.
func (c *Client) messageCall(ctx context.Context, method, path string, body any) (string, error) {
	var out envelope
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// do sends one request and decodes the response into out, classifying every
// failure: transport faults (including the limiter's context errors) as
// TransportError, 401 as AuthError, and success:false or any other non-2xx
// as ValidationError carrying the server's message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.TransportError{Err: err}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &domain.TransportError{Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &domain.TransportError{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.RemoteCall(method, path, 0, time.Since(start), err)
		return &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	logger.RemoteCall(method, path, resp.StatusCode, time.Since(start), err)
	if err != nil {
		return &domain.TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	var env envelope
	if len(data) > 0 {
		// Best effort: non-JSON error bodies still classify by status.
		_ = json.Unmarshal(data, &env)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &domain.AuthError{Message: env.Message}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &domain.ValidationError{Message: env.Message}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &domain.TransportError{Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	if !env.Success {
		return &domain.ValidationError{Message: env.Message}
	}
	return nil
}
