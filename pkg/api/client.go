package api

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
	"github.com/darksworm/argofleet/pkg/retry"
)

// Client is the HTTP client for one ArgoCD instance. It reports transport
// failures as errors and hands every HTTP response - success or not - back
// to the caller: classifying application-level error shapes is the
// outcome layer's job, not the transport's.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retryCfg   retry.RetryConfig
}

var customHTTPClient *http.Client

// SetHTTPClient sets a custom HTTP client to be used by all new Client instances
func SetHTTPClient(client *http.Client) {
	customHTTPClient = client
}

// NewClient creates a new ArgoCD API client for the given instance
func NewClient(baseURL, token string) *Client {
	var httpClient *http.Client

	if customHTTPClient != nil {
		httpClient = &http.Client{
			Transport:     customHTTPClient.Transport,
			CheckRedirect: customHTTPClient.CheckRedirect,
			Jar:           customHTTPClient.Jar,
			Timeout:       customHTTPClient.Timeout,
		}
	} else {
		transport := &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   2 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   3 * time.Second,
			ResponseHeaderTimeout: 5 * time.Second,
			IdleConnTimeout:       30 * time.Second,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
		}

		// No client timeout; request-specific timing comes from context timeouts
		httpClient = &http.Client{Transport: transport}
	}

	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
		retryCfg:   retry.NetworkConfig,
	}
}

// WithRetryConfig overrides the transport retry policy
func (c *Client) WithRetryConfig(cfg retry.RetryConfig) *Client {
	c.retryCfg = cfg
	return c
}

// Response is one HTTP exchange's result, whatever its status
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the response carries a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get performs a GET request with transport retry
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.doWithRetry(ctx, "GET", path, nil)
}

// Post performs a POST request with transport retry
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.doWithRetry(ctx, "POST", path, body)
}

// Delete performs a DELETE request with transport retry
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.doWithRetry(ctx, "DELETE", path, nil)
}

func (c *Client) doWithRetry(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	// callers that set their own deadline (sync uses a longer one) keep it
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = appcontext.WithAPITimeout(ctx)
		defer cancel()
	}

	var result *Response
	err := retry.RetryWithBackoff(ctx, c.retryCfg, method+" "+path, func(attempt int) error {
		var opErr error
		result, opErr = c.request(ctx, method, path, body)
		return opErr
	})

	return result, err
}

// request performs the actual HTTP request
func (c *Client) request(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorValidation, "JSON_MARSHAL_FAILED",
				"Failed to marshal request body").
				WithContext("method", method).
				WithContext("path", path)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorNetwork, "REQUEST_CREATE_FAILED",
			"Failed to create HTTP request").
			WithContext("method", method).
			WithContext("url", url)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.TimeoutError("REQUEST_TIMEOUT",
				"Request timed out - server may be unreachable").
				WithContext("method", method).
				WithContext("url", url)
		}

		if ctx.Err() == context.Canceled {
			return nil, apperrors.New(apperrors.ErrorInternal, "REQUEST_CANCELLED",
				"Request was cancelled").
				WithContext("method", method).
				WithContext("url", url)
		}

		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, apperrors.TimeoutError("NETWORK_TIMEOUT",
				"Network connection timed out").
				WithContext("method", method).
				WithContext("url", url)
		}

		return nil, apperrors.Wrap(err, apperrors.ErrorNetwork, "HTTP_REQUEST_FAILED",
			"HTTP request failed").
			WithContext("method", method).
			WithContext("url", url).
			AsRecoverable()
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorNetwork, "RESPONSE_READ_FAILED",
			"Failed to read response body").
			WithContext("method", method).
			WithContext("url", url)
	}

	if resp.StatusCode >= 400 {
		cblog.With("component", "api", "op", "http").Debug("http error response",
			"method", method,
			"url", url,
			"status", resp.StatusCode,
			"len", len(respBody),
		)
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}
