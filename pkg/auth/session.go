package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	cblog "github.com/charmbracelet/log"
	appcontext "github.com/darksworm/argofleet/pkg/context"
	apperrors "github.com/darksworm/argofleet/pkg/errors"
	"github.com/darksworm/argofleet/pkg/model"
)

// SessionService handles ArgoCD authentication API calls for one instance.
// Tokens are fetched per operation and never cached: every mutation and
// every locator pass owns the token it requested.
type SessionService struct {
	baseURL    string
	httpClient *http.Client
}

// LoginRequest represents the ArgoCD session create request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the ArgoCD session create response
type LoginResponse struct {
	Token string `json:"token"`
}

var customHTTPClient *http.Client

// SetHTTPClient sets a custom HTTP client used by all new session services
func SetHTTPClient(client *http.Client) {
	customHTTPClient = client
}

// NewSessionService creates a new session service for the given instance URL
func NewSessionService(baseURL string) *SessionService {
	if customHTTPClient != nil {
		return &SessionService{baseURL: baseURL, httpClient: customHTTPClient}
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		IdleConnTimeout:       30 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
	}

	return &SessionService{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

// Login authenticates against the instance's session endpoint and returns a
// JWT token. A 401 becomes the typed Unauthorized error carrying the
// instance URL; no retry happens here, callers decide whether to skip or
// abort.
func (s *SessionService) Login(ctx context.Context, creds model.Credentials) (string, error) {
	ctx, cancel := appcontext.WithAuthTimeout(ctx)
	defer cancel()

	bodyBytes, err := json.Marshal(LoginRequest{
		Username: creds.Username,
		Password: creds.Password,
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorInternal, "LOGIN_MARSHAL_FAILED",
			"Failed to marshal login request")
	}

	url := s.baseURL + "/api/v1/session"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorNetwork, "REQUEST_CREATE_FAILED",
			"Failed to create login request").WithContext("url", url)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if timeoutErr := appcontext.HandleTimeout(ctx, appcontext.OpAuth); timeoutErr != nil {
			return "", timeoutErr.WithContext("url", url)
		}
		return "", apperrors.Wrap(err, apperrors.ErrorNetwork, "LOGIN_REQUEST_FAILED",
			"Login request failed").WithContext("url", url).AsRecoverable()
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorNetwork, "RESPONSE_READ_FAILED",
			"Failed to read login response").WithContext("url", url)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		cblog.With("component", "auth").Warn("Credentials rejected", "instance", s.baseURL)
		return "", apperrors.Unauthorized(s.baseURL).WithDetails(loginErrorMessage(body))
	}

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.New(apperrors.ErrorAPI, "LOGIN_FAILED",
			"Login failed").
			WithDetails(loginErrorMessage(body)).
			WithContext("status", resp.StatusCode).
			WithContext("url", url)
	}

	var loginResp LoginResponse
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorAPI, "LOGIN_PARSE_FAILED",
			"Failed to parse login response").WithContext("url", url)
	}

	if loginResp.Token == "" {
		return "", apperrors.New(apperrors.ErrorAPI, "LOGIN_NO_TOKEN",
			"Login succeeded but no token returned").WithContext("url", url)
	}

	return loginResp.Token, nil
}

// loginErrorMessage pulls the human-readable message out of an error body
func loginErrorMessage(body []byte) string {
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}
	return string(body)
}
