// Package upstream is the REST client for the headless commerce backend that
// owns the catalog, identity and order processing. All paths are relative to
// the /api-suffixed base URL.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// Client talks to the commerce backend. Requests carry no default timeout,
// cancellation comes from the caller's context.
type Client struct {
	apiURL string
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a client for the given /api-suffixed base URL.
func NewClient(apiURL string) *Client {
	return &Client{
		apiURL: apiURL,
		http:   &http.Client{},
		logger: util.GetLogger(),
	}
}

// AuthResponse is the body of a successful login or registration.
type AuthResponse struct {
	JWT  string      `json:"jwt"`
	User models.User `json:"-"`
}

type authEnvelope struct {
	JWT  string    `json:"jwt"`
	User userEntry `json:"user"`
}

// userEntry mirrors the backend's user record field names.
type userEntry struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`
	Blocked   bool   `json:"blocked"`
	FullName  string `json:"fullName"`
	TaxID     string `json:"cpf"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func (u userEntry) toModel() models.User {
	return models.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Confirmed: u.Confirmed,
		Blocked:   u.Blocked,
		FullName:  u.FullName,
		TaxID:     u.TaxID,
		Phone:     u.Phone,
		Address:   u.Address,
	}
}

// Login authenticates with POST /auth/local.
func (c *Client) Login(ctx context.Context, identifier, password string) (*AuthResponse, error) {
	body := map[string]string{"identifier": identifier, "password": password}

	var env authEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/auth/local", "", nil, body, &env); err != nil {
		return nil, err
	}
	return &AuthResponse{JWT: env.JWT, User: env.User.toModel()}, nil
}

// RegisterRequest carries the registration form. Address is the assembled
// street/number/complement/city/state string.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Register creates an account with POST /auth/local/register.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var env authEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/auth/local/register", "", nil, req, &env); err != nil {
		return nil, err
	}
	return &AuthResponse{JWT: env.JWT, User: env.User.toModel()}, nil
}

// Me refreshes the authenticated profile via GET /users/me.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var entry userEntry
	if err := c.doJSON(ctx, http.MethodGet, "/users/me?populate=*", token, nil, nil, &entry); err != nil {
		return nil, err
	}
	user := entry.toModel()
	return &user, nil
}

// UpdateProfileRequest carries the extended profile fields attached after
// registration.
type UpdateProfileRequest struct {
	FullName string `json:"fullName,omitempty"`
	TaxID    string `json:"cpf,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// UpdateUser updates the profile via PUT /users/{id}.
func (c *Client) UpdateUser(ctx context.Context, token string, userID int64, req UpdateProfileRequest) (*models.User, error) {
	var entry userEntry
	path := "/users/" + strconv.FormatInt(userID, 10)
	if err := c.doJSON(ctx, http.MethodPut, path, token, nil, req, &entry); err != nil {
		return nil, err
	}
	user := entry.toModel()
	return &user, nil
}

// ConfirmEmail validates an email confirmation code.
func (c *Client) ConfirmEmail(ctx context.Context, code string) error {
	path := "/auth/email-confirmation?confirmation=" + code
	return c.doJSON(ctx, http.MethodGet, path, "", nil, nil, nil)
}

// ForgotPassword starts the password recovery flow.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.doJSON(ctx, http.MethodPost, "/auth/forgot-password", "", nil, body, nil)
}

// ResetPassword completes the recovery flow with the emailed code.
func (c *Client) ResetPassword(ctx context.Context, code, password, confirmation string) (*AuthResponse, error) {
	body := map[string]string{
		"code":                 code,
		"password":             password,
		"passwordConfirmation": confirmation,
	}

	var env authEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/auth/reset-password", "", nil, body, &env); err != nil {
		return nil, err
	}
	return &AuthResponse{JWT: env.JWT, User: env.User.toModel()}, nil
}

// doJSON issues a request and decodes the response into out when non-nil.
// Non-2xx responses are returned as *APIError with the backend message
// preserved.
func (c *Client) doJSON(ctx context.Context, method, path, token string, headers map[string]string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	endpoint := method + " " + trimQuery(path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		util.UpstreamRequestDuration.WithLabelValues(endpoint, "error").Observe(time.Since(start).Seconds())
		c.logger.Warn("Upstream request failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return fmt.Errorf("upstream %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	util.UpstreamRequestDuration.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return nil
}

func trimQuery(path string) string {
	for i := 0; i < len(path); i++ {
		if path[i] == '?' {
			return path[:i]
		}
	}
	return path
}
