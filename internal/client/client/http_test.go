package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/barbot/internal/client/models"
	"github.com/dmitrijs2005/barbot/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, nil, nil)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestHTTPClient_Login_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, pathToken, r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(common.RequestIDHeaderName))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "admin", r.PostForm.Get("username"))
		assert.Equal(t, "secret", r.PostForm.Get("password"))
		writeJSON(w, http.StatusOK, `{"access_token":"tok-1","token_type":"bearer"}`)
	})

	token, err := c.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func TestHTTPClient_Login_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Incorrect username or password"}`)
	})

	_, err := c.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Incorrect username or password", err.Error())

	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Status)
}

func TestHTTPClient_Login_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Login(context.Background(), "admin", "secret")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "Login failed", DetailOr(err, "Login failed"))
}

func TestHTTPClient_Login_MissingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"token_type":"bearer"}`)
	})

	_, err := c.Login(context.Background(), "admin", "secret")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_Register(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathRegister, r.URL.Path)
		var reg models.Registration
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reg))
		assert.Equal(t, "newbie", reg.Username)
		assert.Equal(t, "n@example.com", reg.Email)
		assert.Equal(t, "pw", reg.Password)
		writeJSON(w, http.StatusOK, `{"username":"newbie","email":"n@example.com","disabled":false}`)
	})

	profile, err := c.Register(context.Background(), models.Registration{Username: "newbie", Email: "n@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "newbie", profile.Username)
}

func TestHTTPClient_Register_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"detail":"Username already registered"}`)
	})

	_, err := c.Register(context.Background(), models.Registration{Username: "admin"})
	assert.ErrorIs(t, err, ErrRegistrationRejected)
	assert.Equal(t, "Username already registered", DetailOr(err, "Registration failed"))
}

func TestHTTPClient_Register_ValidationDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity,
			`{"detail":[{"loc":["body","email"],"msg":"field required"},{"loc":["body","password"],"msg":"too short"}]}`)
	})

	_, err := c.Register(context.Background(), models.Registration{})
	assert.ErrorIs(t, err, ErrRegistrationRejected)
	assert.Equal(t, "field required; too short", err.Error())
}

func TestHTTPClient_CurrentUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathCurrentUser, r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get(common.AuthorizationHeaderName))
		writeJSON(w, http.StatusOK, `{"username":"admin","full_name":"Admin User"}`)
	})

	u, err := c.CurrentUser(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "Admin User", u.DisplayName())
}

func TestHTTPClient_CurrentUser_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"not found", http.StatusNotFound, ErrUnavailable},
		{"server error", http.StatusBadGateway, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := c.CurrentUser(context.Background(), "tok")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTPClient_Chat_UnwrapsResponseField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathChat, r.URL.Path)
		var body struct {
			Messages []models.Message `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if assert.Len(t, body.Messages, 1) {
			assert.Equal(t, models.RoleUser, body.Messages[0].Role)
			assert.Equal(t, "What's in a Mojito?", body.Messages[0].Content)
		}
		writeJSON(w, http.StatusOK, `{"response":{"name":"Mojito","ingredients":[],"instructions":[]}}`)
	})

	raw, err := c.Chat(context.Background(), []models.Message{{Role: models.RoleUser, Content: "What's in a Mojito?"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Mojito","ingredients":[],"instructions":[]}`, string(raw))
}

func TestHTTPClient_Chat_BodyWithoutEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"foo":1}`)
	})

	raw, err := c.Chat(context.Background(), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"foo":1}`, string(raw))
}

func TestHTTPClient_Chat_Errors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Not authenticated"}`)
	})
	_, err := c.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err = c.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url, nil, nil)
	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)

	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Zero(t, se.Status)
	assert.NotNil(t, se.Cause)
}

func TestHTTPClient_Ping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathHealth, r.URL.Path)
		writeJSON(w, http.StatusOK, `{"message":"ok"}`)
	})
	assert.NoError(t, c.Ping(context.Background()))
}

type headerRecorder struct {
	seen http.Header
}

func (h *headerRecorder) RoundTrip(r *http.Request) (*http.Response, error) {
	h.seen = r.Header.Clone()
	return nil, errors.New("boom")
}

func TestHTTPClient_UsesInjectedTransport(t *testing.T) {
	rec := &headerRecorder{}
	c := NewHTTPClient("http://example.invalid/", rec, nil)

	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	require.NotNil(t, rec.seen)
	assert.NotEmpty(t, rec.seen.Get(common.RequestIDHeaderName))
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string", `{"detail":"nope"}`, "nope"},
		{"list", `{"detail":[{"msg":"a"},{"msg":"b"}]}`, "a; b"},
		{"object", `{"detail":{"code":1}}`, `{"code":1}`},
		{"null", `{"detail":null}`, ""},
		{"missing", `{}`, ""},
		{"not json", `Internal Server Error`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDetail([]byte(tt.body)))
		})
	}
}

func TestServerError_Error(t *testing.T) {
	assert.Equal(t, "server unavailable", (&ServerError{Kind: ErrUnavailable}).Error())
	assert.Equal(t, "server unavailable (status 502)", (&ServerError{Kind: ErrUnavailable, Status: 502}).Error())
	assert.Equal(t, "unauthorized: x", (&ServerError{Kind: ErrUnauthorized, Cause: errors.New("x")}).Error())
	assert.Equal(t, "bad", (&ServerError{Kind: ErrUnauthorized, Detail: "bad"}).Error())
}
