package platform

import (
	"context"
	"errors"
	"gitgud_server/internal/common"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var fixedNow = func() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newKattisServer(t *testing.T, status int, body string) *KattisAdapter {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewKattisAdapter(srv.URL, srv.Client(), fixedNow)
}

func TestNormalizeKattisUsername(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"John Doe", "john-doe"},
		{"john-doe", "john-doe"}, // already normalized: idempotent
		{"  Jane  ", "jane"},
		{"A  B   C", "a-b-c"},
		{"UPPER", "upper"},
	}
	for _, c := range cases {
		if got := NormalizeKattisUsername(c.in); got != c.want {
			t.Errorf("NormalizeKattisUsername(%q) = %q, want %q", c.in, got, c.want)
		}
		// Normalizing the output again must be a no-op.
		if got := NormalizeKattisUsername(NormalizeKattisUsername(c.in)); got != c.want {
			t.Errorf("normalization of %q is not idempotent: %q", c.in, got)
		}
	}
}

func TestKattisAnchorExtractorWins(t *testing.T) {
	t.Parallel()

	// Two clean anchors plus a loose path fragment that only the weaker
	// extractors would pick up. The fragment must not leak into the result.
	body := `<html><h1>jane</h1>
		<table>
		<tr><td><a href="/problems/hello" class="name">Hello World!</a></td></tr>
		<tr><td><a href="/problems/twosum" class="name">Two Sum</a></td></tr>
		</table>
		<script>var recent = "/problems/carrots";</script>
		</html>`
	adapter := newKattisServer(t, http.StatusOK, body)

	solves, err := adapter.FetchSolves(context.Background(), "jane")
	if err != nil {
		t.Fatalf("FetchSolves failed: %v", err)
	}
	if len(solves) != 2 {
		t.Fatalf("expected 2 solves from the anchor extractor, got %d", len(solves))
	}
	if want := "https://open.kattis.com/problems/hello"; solves[0].URL != want {
		t.Errorf("URL = %s, want %s", solves[0].URL, want)
	}
	if solves[0].Name != "Hello World!" {
		t.Errorf("Name = %q, want %q", solves[0].Name, "Hello World!")
	}
	for _, s := range solves {
		if s.URL == "https://open.kattis.com/problems/carrots" {
			t.Error("weaker extractor result leaked into anchor-extractor output")
		}
		if !s.SolvedAt.Equal(fixedNow()) {
			t.Errorf("SolvedAt = %v, want import time %v", s.SolvedAt, fixedNow())
		}
	}
}

func TestKattisHrefFallback(t *testing.T) {
	t.Parallel()

	// No full anchors; the bare href extractor should take over.
	body := `<html><h1>jane</h1>
		<a href="/problems/hello"><span>Hello World!</span></a>
		<a href="/problems/hello"><span>Hello World!</span></a>
		</html>`
	adapter := newKattisServer(t, http.StatusOK, body)

	solves, err := adapter.FetchSolves(context.Background(), "jane")
	if err != nil {
		t.Fatalf("FetchSolves failed: %v", err)
	}
	if len(solves) != 1 {
		t.Fatalf("expected 1 deduplicated solve, got %d", len(solves))
	}
	if want := "https://open.kattis.com/problems/hello"; solves[0].URL != want {
		t.Errorf("URL = %s, want %s", solves[0].URL, want)
	}
	if solves[0].Name != "" {
		t.Errorf("href extractor carries no names, got %q", solves[0].Name)
	}
}

func TestKattisNoSolvesPhrase(t *testing.T) {
	t.Parallel()

	body := `<html><h1>jane</h1><p>jane has not solved any problems yet.</p></html>`
	adapter := newKattisServer(t, http.StatusOK, body)

	solves, err := adapter.FetchSolves(context.Background(), "jane")
	if err != nil {
		t.Fatalf("empty profile must be success, got error: %v", err)
	}
	if len(solves) != 0 {
		t.Fatalf("expected empty solve list, got %d", len(solves))
	}
}

func TestKattisUserMarkersAbsent(t *testing.T) {
	t.Parallel()

	body := `<html><title>Kattis</title><p>Search results</p></html>`
	adapter := newKattisServer(t, http.StatusOK, body)

	_, err := adapter.FetchSolves(context.Background(), "jane")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for a page without user markers, got %v", err)
	}
}

func TestKattisHTTPNotFound(t *testing.T) {
	t.Parallel()

	adapter := newKattisServer(t, http.StatusNotFound, "not found")
	_, err := adapter.FetchSolves(context.Background(), "jane")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on 404, got %v", err)
	}
}

func TestKattisRateLimited(t *testing.T) {
	t.Parallel()

	adapter := newKattisServer(t, http.StatusTooManyRequests, "slow down")
	_, err := adapter.FetchSolves(context.Background(), "jane")
	if !errors.Is(err, common.ErrRateLimited) {
		t.Fatalf("expected rate-limited error on 429, got %v", err)
	}
}

func TestKattisConfirmedUserZeroMatches(t *testing.T) {
	t.Parallel()

	// User marker present, but the page carries no problem links at all.
	// That is a valid empty result, not a scrape failure.
	body := `<html><h1>jane</h1><p>Member since 2020</p></html>`
	adapter := newKattisServer(t, http.StatusOK, body)

	solves, err := adapter.FetchSolves(context.Background(), "jane")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(solves) != 0 {
		t.Fatalf("expected no solves, got %d", len(solves))
	}
}

func TestKattisUsernameNormalizedForRequest(t *testing.T) {
	t.Parallel()

	var requestedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Write([]byte(`<html><h1>john-doe</h1></html>`))
	}))
	t.Cleanup(srv.Close)

	adapter := NewKattisAdapter(srv.URL, srv.Client(), fixedNow)
	if _, err := adapter.FetchSolves(context.Background(), " John Doe "); err != nil {
		t.Fatalf("FetchSolves failed: %v", err)
	}
	if requestedPath != "/users/john-doe" {
		t.Errorf("requested path = %s, want /users/john-doe", requestedPath)
	}
}

func TestRunExtractorCascadeOrder(t *testing.T) {
	t.Parallel()

	// Only the legacy path shape present: the cascade should fall all the
	// way through to the last extractor.
	matches := runExtractorCascade(`see /problem/oldformat for details`)
	if len(matches) != 1 || matches[0].id != "oldformat" {
		t.Fatalf("legacy extractor failed: %+v", matches)
	}

	if got := runExtractorCascade(`<html>nothing here</html>`); got != nil {
		t.Fatalf("expected nil for no matches, got %+v", got)
	}
}
