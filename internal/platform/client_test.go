package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/freementors/internal/domain"
	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
	"github.com/felixgeelhaar/freementors/internal/log"
)

// recordedRequest is what the fake server saw
type recordedRequest struct {
	Operation     string
	Query         string
	Variables     map[string]any
	Authorization string
	RequestID     string
}

// fakeAPI is a GraphQL endpoint answering by operation name
type fakeAPI struct {
	t         *testing.T
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string]string
	status    int
}

func newFakeAPI(t *testing.T, responses map[string]string) (*fakeAPI, *Client) {
	t.Helper()
	api := &fakeAPI{t: t, responses: responses, status: http.StatusOK}
	server := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(server.Close)

	client := NewClient(server.URL)
	client.Logger = log.Discard()
	return api, client
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.t.Errorf("invalid request body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	a.mu.Lock()
	a.requests = append(a.requests, recordedRequest{
		Operation:     body.OperationName,
		Query:         body.Query,
		Variables:     body.Variables,
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-ID"),
	})
	status := a.status
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	a.mu.Lock()
	response := a.responses[body.OperationName]
	a.mu.Unlock()
	_, _ = w.Write([]byte(response))
}

func (a *fakeAPI) last() recordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	require.NotEmpty(a.t, a.requests, "no request recorded")
	return a.requests[len(a.requests)-1]
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("")
	assert.Equal(t, DefaultEndpoint, client.Endpoint)
	assert.NotNil(t, client.HTTPClient)
	assert.Empty(t, client.Token)
}

func TestWithTokenDoesNotMutateReceiver(t *testing.T) {
	client := NewClient("http://example.test/graphql/")
	authed := client.WithToken("tok")

	assert.Empty(t, client.Token)
	assert.Equal(t, "tok", authed.Token)
	assert.Equal(t, client.Endpoint, authed.Endpoint)
}

func TestDoSendsHeaders(t *testing.T) {
	api, client := newFakeAPI(t, map[string]string{
		"CurrentUser": `{"data":{"currentUser":{"id":"1","firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","role":"ADMIN"}}}`,
	})

	_, err := client.WithToken("secret-token").CurrentUser(context.Background())
	require.NoError(t, err)

	req := api.last()
	assert.Equal(t, "Bearer secret-token", req.Authorization)
	assert.NotEmpty(t, req.RequestID)
	assert.Equal(t, "CurrentUser", req.Operation)
}

func TestDoErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode fmerrors.ErrorCode
		wantMsg  string
	}{
		{
			name:     "graphql error list",
			status:   http.StatusOK,
			body:     `{"data":null,"errors":[{"message":"Invalid token"},{"message":"Signature expired"}]}`,
			wantCode: fmerrors.ErrCodeProtocol,
			wantMsg:  "Invalid token, Signature expired",
		},
		{
			name:     "error list on non-2xx is still protocol",
			status:   http.StatusBadRequest,
			body:     `{"errors":[{"message":"Syntax Error"}]}`,
			wantCode: fmerrors.ErrCodeProtocol,
			wantMsg:  "Syntax Error",
		},
		{
			name:     "server error without error list",
			status:   http.StatusInternalServerError,
			body:     `<html>oops</html>`,
			wantCode: fmerrors.ErrCodeTransport,
		},
		{
			name:     "non JSON body",
			status:   http.StatusOK,
			body:     `<html>login page</html>`,
			wantCode: fmerrors.ErrCodeMalformed,
		},
		{
			name:     "missing data",
			status:   http.StatusOK,
			body:     `{"data":null}`,
			wantCode: fmerrors.ErrCodeMalformed,
		},
		{
			name:     "null field",
			status:   http.StatusOK,
			body:     `{"data":{"currentUser":null}}`,
			wantCode: fmerrors.ErrCodeMalformed,
		},
		{
			name:     "unknown role",
			status:   http.StatusOK,
			body:     `{"data":{"currentUser":{"email":"x@example.com","role":"SUPERUSER"}}}`,
			wantCode: fmerrors.ErrCodeMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, client := newFakeAPI(t, map[string]string{"CurrentUser": tt.body})
			api.status = tt.status

			identity, err := client.WithToken("tok").CurrentUser(context.Background())
			require.Error(t, err)
			assert.Nil(t, identity)
			assert.Equal(t, tt.wantCode, fmerrors.CodeOf(err))
			if tt.wantMsg != "" {
				fmErr, ok := fmerrors.As(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantMsg, fmErr.Message)
			}
		})
	}
}

func TestDoTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	client := NewClient(endpoint)
	client.Logger = log.Discard()

	_, err := client.LoginUser(context.Background(), "ada@example.com", "pw")
	require.Error(t, err)
	assert.True(t, fmerrors.HasCode(err, fmerrors.ErrCodeTransport))
}

func TestDoRespectsContext(t *testing.T) {
	_, client := newFakeAPI(t, map[string]string{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.LoginUser(ctx, "ada@example.com", "pw")
	require.Error(t, err)
	assert.True(t, fmerrors.HasCode(err, fmerrors.ErrCodeTransport))
}

func TestResultErr(t *testing.T) {
	var nilResult *Result
	assert.True(t, fmerrors.HasCode(nilResult.Err(), fmerrors.ErrCodeMalformed))

	ok := &Result{Success: true, Message: "done"}
	assert.NoError(t, ok.Err())

	rejected := &Result{Success: false, Message: "Mentor unavailable"}
	err := rejected.Err()
	require.Error(t, err)
	assert.True(t, fmerrors.HasCode(err, fmerrors.ErrCodeRejected))
	assert.True(t, strings.Contains(err.Error(), "Mentor unavailable"))
}

func TestCurrentUserWithoutToken(t *testing.T) {
	api, client := newFakeAPI(t, map[string]string{})

	_, err := client.CurrentUser(context.Background())
	require.Error(t, err)
	assert.True(t, fmerrors.HasCode(err, fmerrors.ErrCodeLoginRequired))

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Empty(t, api.requests, "no request must be sent without a token")
}

func TestVerifyToken(t *testing.T) {
	api, client := newFakeAPI(t, map[string]string{
		"CurrentUser": `{"data":{"currentUser":{"id":"7","firstName":"Grace","lastName":"Hopper","email":"grace@example.com","role":"MENTOR","expertise":"Compilers","bio":null}}}`,
	})

	identity, err := client.VerifyToken(context.Background(), "stored-token")
	require.NoError(t, err)

	assert.Equal(t, domain.Identity{
		ID:        "7",
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		Role:      domain.RoleMentor,
		Expertise: "Compilers",
	}, *identity)
	assert.Equal(t, "Bearer stored-token", api.last().Authorization)
	assert.Empty(t, client.Token)
}

func TestPing(t *testing.T) {
	api, client := newFakeAPI(t, map[string]string{
		"Ping": `{"data":{"__typename":"Query"}}`,
	})

	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, "Ping", api.last().Operation)
	assert.Empty(t, api.last().Authorization)

	api.mu.Lock()
	api.responses["Ping"] = `{"data":{}}`
	api.mu.Unlock()
	err := client.Ping(context.Background())
	assert.True(t, fmerrors.HasCode(err, fmerrors.ErrCodeMalformed))
}
