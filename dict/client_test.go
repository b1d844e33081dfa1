package dict

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const apiPayload = `[{
	"word": "serendipity",
	"phonetic": "/ˌsɛɹ.ənˈdɪp.ɪ.ti/",
	"phonetics": [{"text": "/ˌsɛɹ.ənˈdɪp.ɪ.ti/"}],
	"meanings": [{
		"partOfSpeech": "noun",
		"definitions": [{
			"definition": "An unsought, unintended fortunate discovery.",
			"example": "Finding the book was pure serendipity."
		}]
	}]
}]`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithHTTPClient(srv.Client())), srv
}

func TestLookupSuccess(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/entries/en/serendipity" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, apiPayload)
	})

	entry, err := c.Lookup(context.Background(), " Serendipity! ")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if entry.Word != "serendipity" || entry.Failure != "" {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.Definition != "An unsought, unintended fortunate discovery." {
		t.Errorf("definition = %q", entry.Definition)
	}
	if entry.Phonetic == "" || entry.PartOfSpeech != "noun" || entry.Example == "" {
		t.Errorf("entry missing fields: %+v", entry)
	}

	// Second lookup of the same canonical word hits the cache.
	if _, err := c.Lookup(context.Background(), "serendipity"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("network calls = %d, want 1", calls.Load())
	}
}

func TestLookupInvalidWord(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be issued for invalid words")
	})
	for _, raw := range []string{"", "a", "123", "  !? "} {
		if _, err := c.Lookup(context.Background(), raw); !errors.Is(err, ErrInvalidWord) {
			t.Errorf("Lookup(%q) err = %v, want ErrInvalidWord", raw, err)
		}
	}
}

func TestLookupNotFoundIsCached(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"title":"No Definitions Found"}`, http.StatusNotFound)
	})

	for i := 0; i < 2; i++ {
		entry, err := c.Lookup(context.Background(), "blorptastic")
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if entry.Failure != FailureNotFound {
			t.Fatalf("failure = %q, want %q", entry.Failure, FailureNotFound)
		}
		if entry.Definition == "" {
			t.Error("not-found entry needs a fallback message")
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("network calls = %d, want 1 (not-found must be cached)", calls.Load())
	}
}

func TestLookupNetworkErrorIsRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	for i := 0; i < 2; i++ {
		entry, err := c.Lookup(context.Background(), "resilient")
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if entry.Failure != FailureNetwork {
			t.Fatalf("failure = %q, want %q", entry.Failure, FailureNetwork)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("network calls = %d, want 2 (network failures must not be cached)", calls.Load())
	}
	if c.Cache().Len() != 0 {
		t.Fatalf("cache has %d entries, want 0", c.Cache().Len())
	}
}

func TestLookupTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close() // connection refused from here on

	c := NewClient(WithBaseURL(base))
	entry, err := c.Lookup(context.Background(), "offline")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if entry.Failure != FailureNetwork {
		t.Fatalf("failure = %q, want %q", entry.Failure, FailureNetwork)
	}
}

func TestConcurrentLookupsShareOneRequest(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		fmt.Fprint(w, apiPayload)
	})

	const n = 8
	var wg sync.WaitGroup
	entries := make([]Entry, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry, err := c.Lookup(context.Background(), "serendipity")
			if err != nil {
				t.Errorf("Lookup: %v", err)
			}
			entries[i] = entry
		}(i)
	}
	// Let every goroutine reach the client before the server responds.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("network calls = %d, want 1 (in-flight de-duplication)", got)
	}
	for _, e := range entries {
		if e.Word != "serendipity" {
			t.Fatalf("caller saw %+v", e)
		}
	}
}

func TestEntryWithNoDefinitionsReadsAsNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"word":"hollow","meanings":[]}]`)
	})
	entry, err := c.Lookup(context.Background(), "hollow")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if entry.Failure != FailureNotFound {
		t.Fatalf("failure = %q, want %q", entry.Failure, FailureNotFound)
	}
}
