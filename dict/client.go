package dict

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/docpane/docpane/observability"
)

// DefaultBaseURL points at the public dictionary API. The client appends
// /entries/en/{word}.
const DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2"

const (
	notFoundMessage = "No definition found for this word."
	networkMessage  = "Could not reach the dictionary service. Try again."
)

// Client resolves canonical words to definitions over HTTP, consulting the
// cache first. Concurrent lookups for the same uncached word share a single
// request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *Cache
	logger     observability.Logger
	tracer     observability.Tracer

	mu       sync.Mutex
	inflight map[string]*inflightCall
}

type inflightCall struct {
	done  chan struct{}
	entry Entry
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at a different lookup service.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithCache injects a shared session cache.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLogger injects a structured logger.
func WithLogger(l observability.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTracer injects a tracer for lookup spans.
func WithTracer(tr observability.Tracer) Option {
	return func(c *Client) { c.tracer = tr }
}

// NewClient builds a lookup client. With no options it talks to the public
// service with a fresh cache.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
		logger:     observability.NopLogger{},
		tracer:     observability.NopTracer(),
		inflight:   make(map[string]*inflightCall),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NewCache()
	}
	return c
}

// Cache exposes the session cache backing this client.
func (c *Client) Cache() *Cache { return c.cache }

// Lookup normalizes raw and resolves it to a definition entry. It returns
// ErrInvalidWord when normalization rejects the text; every other outcome,
// including not-found and network failure, is reported inside the entry so
// the popup can display it. Cache hits return synchronously with no network
// traffic.
func (c *Client) Lookup(ctx context.Context, raw string) (Entry, error) {
	word, ok := Normalize(raw)
	if !ok {
		return Entry{}, ErrInvalidWord
	}

	if entry, ok := c.cache.Get(word); ok {
		c.logger.Debug("definition cache hit", observability.String("word", word))
		return entry, nil
	}

	c.mu.Lock()
	if call, ok := c.inflight[word]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.entry, nil
		case <-ctx.Done():
			return Entry{}, ctx.Err()
		}
	}
	call := &inflightCall{done: make(chan struct{})}
	c.inflight[word] = call
	c.mu.Unlock()

	ctx, span := c.tracer.StartSpan(ctx, observability.SpanDefinition)
	span.SetTag("word", word)
	entry := c.fetch(ctx, word)
	if entry.Failure == FailureNetwork {
		span.SetError(fmt.Errorf("lookup %s: %s", word, entry.Failure))
	}
	span.Finish()

	c.cache.Put(word, entry)

	call.entry = entry
	close(call.done)
	c.mu.Lock()
	delete(c.inflight, word)
	c.mu.Unlock()

	return entry, nil
}

// apiEntry mirrors the lookup service's response shape.
type apiEntry struct {
	Word      string `json:"word"`
	Phonetic  string `json:"phonetic"`
	Phonetics []struct {
		Text string `json:"text"`
	} `json:"phonetics"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
			Example    string `json:"example"`
		} `json:"definitions"`
	} `json:"meanings"`
}

func (c *Client) fetch(ctx context.Context, word string) Entry {
	endpoint := fmt.Sprintf("%s/entries/en/%s", c.baseURL, url.PathEscape(word))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return networkFailure(word)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("definition lookup failed",
			observability.String("word", word), observability.Error("err", err))
		return networkFailure(word)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Entry{Word: word, Definition: notFoundMessage, Failure: FailureNotFound}
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("definition lookup failed",
			observability.String("word", word), observability.Int("status", resp.StatusCode))
		return networkFailure(word)
	}

	var payload []apiEntry
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || len(payload) == 0 {
		return networkFailure(word)
	}

	return entryFromAPI(word, payload[0])
}

func networkFailure(word string) Entry {
	return Entry{Word: word, Definition: networkMessage, Failure: FailureNetwork}
}

func entryFromAPI(word string, api apiEntry) Entry {
	entry := Entry{Word: word, Phonetic: api.Phonetic}
	if entry.Phonetic == "" {
		for _, p := range api.Phonetics {
			if p.Text != "" {
				entry.Phonetic = p.Text
				break
			}
		}
	}
	for _, meaning := range api.Meanings {
		for _, def := range meaning.Definitions {
			if def.Definition == "" {
				continue
			}
			entry.PartOfSpeech = meaning.PartOfSpeech
			entry.Definition = def.Definition
			entry.Example = def.Example
			return entry
		}
	}
	// Entries with no usable definition read the same as unknown words.
	entry.Definition = notFoundMessage
	entry.Failure = FailureNotFound
	return entry
}
