package intake

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"codelens/internal/store"
)

func TestParseRepoURL(t *testing.T) {
	ref, err := ParseRepoURL("https://github.com/acme/widgets/")
	require.NoError(t, err)
	assert.Equal(t, "acme", ref.Owner)
	assert.Equal(t, "widgets", ref.Repo)

	ref, err = ParseRepoURL("https://github.com/my-org/repo.name_2")
	require.NoError(t, err)
	assert.Equal(t, "repo.name_2", ref.Repo)

	bad := []string{
		"http://github.com/acme/widgets",
		"https://gitlab.com/acme/widgets",
		"https://github.com/acme",
		"https://github.com/acme/widgets/tree/main",
		"github.com/acme/widgets",
	}
	for _, s := range bad {
		_, err := ParseRepoURL(s)
		assert.ErrorIs(t, err, ErrInvalidURL, s)
		assert.Equal(t, "Invalid GitHub repository URL format", UserMessage(err))
	}

	_, err = ParseRepoURL("  ")
	assert.ErrorIs(t, err, ErrMissingURL)
	assert.Equal(t, "GitHub URL is required", UserMessage(err))
}

func newClient(t *testing.T, h http.HandlerFunc) (*AnalysisClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewAnalysisClient(ClientConfig{BaseURL: srv.URL, APIKey: "secret", Timeout: 2 * time.Second}), srv
}

func TestAnalyzeSendsRequestAndCaches(t *testing.T) {
	var calls int32
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/analyze", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var body RepoRef
		b, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(b, &body))
		assert.Equal(t, "acme", body.Owner)
		assert.Equal(t, "widgets", body.Repo)
		_, _ = w.Write([]byte(`{"projectName":"widgets"}`))
	})

	ref, _ := ParseRepoURL("https://github.com/acme/widgets")
	for i := 0; i < 2; i++ {
		data, err := c.Analyze(context.Background(), ref)
		require.NoError(t, err)
		assert.JSONEq(t, `{"projectName":"widgets"}`, string(data))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, uint64(1), c.CacheStats().Hits)
}

func TestAnalyzeStatusMapping(t *testing.T) {
	cases := []struct {
		status  int
		body    string
		want    error
		code    int
		message string
	}{
		{http.StatusNotFound, `{}`, ErrRepoNotFound, http.StatusNotFound, "Repository not found or not accessible"},
		{http.StatusForbidden, `{}`, ErrAccessDenied, http.StatusForbidden, "Repository access denied. Please check if the repository is public."},
		{http.StatusBadGateway, `{}`, ErrUpstream, http.StatusInternalServerError, "Failed to analyze repository. Please try again later."},
		{http.StatusOK, `[1,2]`, ErrInvalidUpstreamData, http.StatusInternalServerError, "Invalid data received from analysis service"},
		{http.StatusOK, `null`, ErrInvalidUpstreamData, http.StatusInternalServerError, "Invalid data received from analysis service"},
	}
	for _, tc := range cases {
		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		})
		_, err := c.Analyze(context.Background(), RepoRef{Owner: "a", Repo: "b"})
		require.ErrorIs(t, err, tc.want)
		assert.Equal(t, tc.code, HTTPStatus(err))
		assert.Equal(t, tc.message, UserMessage(err))
	}
}

func TestAnalyzeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := NewAnalysisClient(ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Analyze(context.Background(), RepoRef{Owner: "a", Repo: "b"})
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, http.StatusRequestTimeout, HTTPStatus(err))
}

func TestAnalyzeUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewAnalysisClient(ClientConfig{BaseURL: url})
	_, err := c.Analyze(context.Background(), RepoRef{Owner: "a", Repo: "b"})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
	assert.Equal(t, "Unable to connect to analysis service. Please try again later.", UserMessage(err))
}

func TestAnalyzeDroppedConnectionIsUnavailable(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	})

	_, err := c.Analyze(context.Background(), RepoRef{Owner: "a", Repo: "b"})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
	assert.Equal(t, "Unable to connect to analysis service. Please try again later.", UserMessage(err))
}

func TestAnalyzeCancelledByCaller(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Analyze(ctx, RepoRef{Owner: "a", Repo: "b"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestAnalyzeRateLimited(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	_, err := c.Analyze(context.Background(), RepoRef{Owner: "a", Repo: "one"})
	require.ErrorIs(t, err, ErrUpstream)
	_, err = c.Analyze(context.Background(), RepoRef{Owner: "a", Repo: "two"})
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(err))
}

type stubAnalyzer struct {
	data json.RawMessage
	err  error
}

func (s stubAnalyzer) Analyze(context.Context, RepoRef) (json.RawMessage, error) {
	return s.data, s.err
}

func TestURLIntakeSubmit(t *testing.T) {
	st := store.New(nil, "")
	u := NewURLIntake(stubAnalyzer{data: json.RawMessage(`{"classes":{}}`)}, st)

	res, err := u.Submit(context.Background(), "https://github.com/acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets", res.Ref.String())

	cur, ok := st.Current()
	require.True(t, ok)
	assert.Equal(t, res.Snapshot.Revision, cur.Revision)
	assert.Equal(t, "acme/widgets", cur.Report.ProjectName)
}

func TestURLIntakeFailureLeavesStoreUntouched(t *testing.T) {
	st := store.New(nil, "")
	u := NewURLIntake(stubAnalyzer{err: ErrRepoNotFound}, st)

	_, err := u.Submit(context.Background(), "https://github.com/acme/ghost")
	require.ErrorIs(t, err, ErrRepoNotFound)
	_, ok := st.Current()
	assert.False(t, ok)

	_, err = u.Submit(context.Background(), "not a url")
	require.ErrorIs(t, err, ErrInvalidURL)
}
