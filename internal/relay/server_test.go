package relay

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/thanhdat24/code-learning/internal/judge"
	"github.com/thanhdat24/code-learning/internal/progress"
	"github.com/thanhdat24/code-learning/internal/remote"
	"github.com/thanhdat24/code-learning/internal/userstore"
)

type failingRepo struct{}

func (failingRepo) Find(context.Context, string) (*progress.Record, error) {
	return nil, errors.New("connection reset")
}

func (failingRepo) Upsert(context.Context, progress.Record) error {
	return errors.New("connection reset")
}

func newTestServer(t *testing.T, repo userstore.Repository, logger *zap.Logger) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(Options{Repo: repo, Logger: logger}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, userstore.NewMemory(), nil)
	code, body := do(t, http.MethodGet, srv.URL+"/api/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"ok":true}`, body)
}

func TestGetUser(t *testing.T) {
	repo := userstore.NewMemory()
	require.NoError(t, repo.Upsert(context.Background(), progress.Record{Username: "alice", Points: 40, SolvedProblemIDs: []string{"two-sum"}, Submissions: []progress.Submission{}}))
	srv := newTestServer(t, repo, nil)

	code, body := do(t, http.MethodGet, srv.URL+"/api/users/alice", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"username":"alice","solvedProblemIds":["two-sum"],"points":40,"submissions":[]}`, body)

	code, body = do(t, http.MethodGet, srv.URL+"/api/users/nobody", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "null", strings.TrimSpace(body))

	code, body = do(t, http.MethodGet, srv.URL+"/api/users/%20%20", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"error":"Invalid username"}`, body)
}

func TestPutUser(t *testing.T) {
	repo := userstore.NewMemory()
	srv := newTestServer(t, repo, nil)
	url := srv.URL + "/api/users/bob"

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantBody string
	}{
		{"not json", `{oops`, http.StatusBadRequest, `{"error":"Invalid JSON body"}`},
		{"not an object", `[1,2]`, http.StatusBadRequest, `{"error":"Invalid JSON body"}`},
		{"username mismatch", `{"username":"mallory"}`, http.StatusBadRequest, `{"error":"Username in URL must match body.username"}`},
		{"missing username", `{"points":3}`, http.StatusBadRequest, `{"error":"Username in URL must match body.username"}`},
		{"ok", `{"username":"bob","points":55,"solvedProblemIds":["two-sum",7],"submissions":"nope"}`, http.StatusOK, `{"ok":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, http.MethodPut, url, tt.body)
			assert.Equal(t, tt.wantCode, code)
			assert.JSONEq(t, tt.wantBody, body)
		})
	}

	rec, err := repo.Find(context.Background(), "bob")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 55, rec.Points)
	assert.Equal(t, []string{"two-sum"}, rec.SolvedProblemIDs)
	assert.Empty(t, rec.Submissions)
}

func TestPutUser_BodyLimit(t *testing.T) {
	srv := newTestServer(t, userstore.NewMemory(), nil)
	big := `{"username":"bob","pad":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	code, _ := do(t, http.MethodPut, srv.URL+"/api/users/bob", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
}

func TestBackendFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	srv := newTestServer(t, failingRepo{}, zap.New(core))

	code, body := do(t, http.MethodGet, srv.URL+"/api/users/carol", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, body)

	code, body = do(t, http.MethodPut, srv.URL+"/api/users/carol", `{"username":"carol"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, body)

	assert.Equal(t, 2, logs.Len())
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, userstore.NewMemory(), nil)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/users/alice", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := httptest.NewServer(New(Options{Repo: userstore.NewMemory(), Registry: reg}))
	defer srv.Close()

	do(t, http.MethodGet, srv.URL+"/api/users/alice", "")
	do(t, http.MethodPut, srv.URL+"/api/users/alice", `{"username":"alice"}`)

	_, body := do(t, http.MethodGet, srv.URL+"/metrics", "")
	assert.Contains(t, body, `codemaster_relay_http_requests_total{method="GET",route="/api/users/{username}",status="200"} 1`)
	assert.Contains(t, body, `codemaster_relay_record_upserts_total{outcome="ok"} 1`)
	assert.NotContains(t, body, `route="/api/users/alice"`)
}

// The client and relay agree on the wire format end to end.
func TestRemoteClientRoundTrip(t *testing.T) {
	srv := newTestServer(t, userstore.NewMemory(), nil)
	c := remote.New(srv.URL)
	ctx := context.Background()

	got, err := c.Get(ctx, "dave")
	require.NoError(t, err)
	assert.Nil(t, got)

	rec := progress.Apply(progress.New("dave"), progress.NewSubmission("two-sum", "code", judge.Verdict{
		Status:      judge.StatusAccepted,
		Score:       88,
		Feedback:    "good",
		Suggestions: []string{},
	}, time.UnixMilli(1_700_000_000_000)))
	require.NoError(t, c.Put(ctx, rec))

	got, err = c.Get(ctx, "dave")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)

	err = c.Put(ctx, progress.Record{Username: " "})
	var se *remote.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
}

func TestServeShutsDown(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(Options{Repo: userstore.NewMemory()}).Serve(ctx, lis) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + lis.Addr().String() + "/api/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
