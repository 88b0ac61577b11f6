package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/barbot/internal/client/models"
	"github.com/dmitrijs2005/barbot/internal/common"
	"github.com/dmitrijs2005/barbot/internal/logging"
	"github.com/google/uuid"
)

const (
	pathChat        = "/api/chat"
	pathToken       = "/api/token"
	pathRegister    = "/api/register"
	pathCurrentUser = "/api/users/me"
	pathHealth      = "/api/"
)

// HTTPClient talks to the assistant backend over HTTP/JSON.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for baseURL. Requests go through transport;
// a nil transport means http.DefaultTransport.
func NewHTTPClient(baseURL string, transport http.RoundTripper, logger logging.Logger) *HTTPClient {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: transport},
		logger:  logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type chatRequest struct {
	Messages []models.Message `json:"messages"`
}

type chatResponse struct {
	Response json.RawMessage `json:"response"`
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathToken, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body, err := c.do(req)
	if err != nil {
		return "", err
	}
	if !isSuccess(status) {
		return "", c.mapError(status, body, failedKind(status, ErrInvalidCredentials))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", &ServerError{Kind: ErrUnavailable, Status: status, Cause: err}
	}
	if tr.AccessToken == "" {
		return "", &ServerError{Kind: ErrUnavailable, Status: status, Cause: errors.New("token response without access_token")}
	}
	return tr.AccessToken, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (*models.UserProfile, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, pathRegister, reg)
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, c.mapError(status, body, failedKind(status, ErrRegistrationRejected))
	}

	var profile models.UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, &ServerError{Kind: ErrUnavailable, Status: status, Cause: err}
	}
	return &profile, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context, token string) (*models.UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathCurrentUser, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(common.AuthorizationHeaderName, common.BearerValue(token))

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, c.mapError(status, body, ErrUnauthorized)
	}
	if !isSuccess(status) {
		return nil, c.mapError(status, body, ErrUnavailable)
	}

	var profile models.UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, &ServerError{Kind: ErrUnavailable, Status: status, Cause: err}
	}
	return &profile, nil
}

// Chat posts the conversation and returns the value of the response field.
// A success body without that envelope is returned whole; classifying odd
// payloads is the caller's concern.
func (c *HTTPClient) Chat(ctx context.Context, messages []models.Message) (json.RawMessage, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, pathChat, chatRequest{Messages: messages})
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, c.mapError(status, body, ErrUnauthorized)
	}
	if !isSuccess(status) {
		return nil, c.mapError(status, body, ErrUnavailable)
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil || len(cr.Response) == 0 {
		return json.RawMessage(body), nil
	}
	return cr.Response, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathHealth, nil)
	if err != nil {
		return err
	}

	status, body, err := c.do(req)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return c.mapError(status, body, ErrUnavailable)
	}
	return nil
}

func (c *HTTPClient) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends req with a fresh request ID and reads the whole body.
// A nil error means a response arrived, whatever its status.
func (c *HTTPClient) do(req *http.Request) (int, []byte, error) {
	ctx := req.Context()
	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	req.Header.Set("Accept", "application/json")

	log := c.logger.With("request_id", requestID, "method", req.Method, "path", req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug(ctx, "backend call failed", "error", err, "elapsed", time.Since(start))
		return 0, nil, &ServerError{Kind: ErrUnavailable, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Debug(ctx, "reading backend response failed", "status", resp.StatusCode, "error", err)
		return resp.StatusCode, nil, &ServerError{Kind: ErrUnavailable, Status: resp.StatusCode, Cause: err}
	}

	log.Debug(ctx, "backend call", "status", resp.StatusCode, "elapsed", time.Since(start), "bytes", len(body))
	return resp.StatusCode, body, nil
}

func (c *HTTPClient) mapError(status int, body []byte, kind error) error {
	return &ServerError{Kind: kind, Status: status, Detail: parseDetail(body)}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// failedKind picks ErrUnavailable for server-side failures and clientKind
// for everything the backend refused on purpose.
func failedKind(status int, clientKind error) error {
	if status >= 500 {
		return ErrUnavailable
	}
	return clientKind
}

// parseDetail extracts the "detail" field of an error body. FastAPI sends a
// string for handled errors and a list of {msg} objects for validation errors.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	if string(envelope.Detail) == "null" {
		return ""
	}
	return string(envelope.Detail)
}
