package realtime

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bassista/go_sole/internal/apperr"
	"github.com/bassista/go_sole/internal/client"
	"github.com/bassista/go_sole/internal/logger"
	"golang.org/x/time/rate"
)

// SSETransport reads the backend's text/event-stream endpoint.
type SSETransport struct {
	url        string
	tokens     client.TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSSETransport streams from path relative to baseURL. Reconnects are
// spaced at least reconnect apart.
func NewSSETransport(baseURL, path string, tokens client.TokenSource, reconnect time.Duration) (*SSETransport, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid stream base url %q", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid stream path %q: %w", path, err)
	}
	if reconnect <= 0 {
		reconnect = 3 * time.Second
	}
	return &SSETransport{
		url:        base.ResolveReference(ref).String(),
		tokens:     tokens,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Every(reconnect), 1),
	}, nil
}

// URL returns the resolved stream endpoint.
func (t *SSETransport) URL() string { return t.url }

// Run connects and reconnects until ctx is done.
func (t *SSETransport) Run(ctx context.Context, emit func(Event)) error {
	log := logger.WithComponent("realtime-sse")
	for {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil
		}
		err := t.stream(ctx, emit)
		if ctx.Err() != nil {
			return nil
		}
		if apperr.HTTPStatus(err) == http.StatusUnauthorized {
			return err
		}
		if err != nil {
			log.Warnf("event stream dropped: %v", err)
		} else {
			log.Debug("event stream ended, reconnecting")
		}
	}
}

func (t *SSETransport) stream(ctx context.Context, emit func(Event)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if t.tokens != nil {
		if tok := t.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return apperr.TransportErr(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apperr.HTTPErr(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return readEvents(resp.Body, emit)
}

// readEvents parses the event-stream framing: "event:" and "data:" fields
// accumulate until a blank line dispatches them. Comments start with ':'.
func readEvents(r io.Reader, emit func(Event)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var (
		name string
		data []string
	)
	dispatch := func() {
		if name == "" && len(data) == 0 {
			return
		}
		emit(parseMessage(name, []byte(strings.Join(data, "\n"))))
		name, data = "", nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			dispatch()
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			name = value
		case "data":
			data = append(data, value)
		}
	}
	return scanner.Err()
}
