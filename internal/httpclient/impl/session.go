package impl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultUserAgent   = "feedloader/0.1"
	defaultMaxBodySize = 10 << 20 // 10 MiB
)

// Task is a prepared request. Nothing is sent until Resume is called.
type Task interface {
	Resume()
}

// Session is the network primitive the Client is built on. The completion
// passed to DataTask fires once, after Resume, in the shape the underlying
// stack produces: any of data, resp and err may be nil. Sessions are expected
// to complete asynchronously; Client defers a completion that fires before
// Get returns.
type Session interface {
	DataTask(ctx context.Context, u *url.URL, completion func(data []byte, resp *http.Response, err error)) Task
}

// NetSession runs each task as a GET on its own goroutine using net/http.
type NetSession struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

func NewNetSession(timeout time.Duration, userAgent string, maxBodySize int64) *NetSession {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultUserAgent
	}
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}
	return &NetSession{
		client:      &http.Client{Timeout: timeout},
		userAgent:   userAgent,
		maxBodySize: maxBodySize,
	}
}

func (s *NetSession) DataTask(ctx context.Context, u *url.URL, completion func([]byte, *http.Response, error)) Task {
	return &netTask{session: s, ctx: ctx, url: u, completion: completion}
}

type netTask struct {
	session    *NetSession
	ctx        context.Context
	url        *url.URL
	completion func([]byte, *http.Response, error)
	once       sync.Once
}

func (t *netTask) Resume() {
	t.once.Do(func() {
		go t.run()
	})
}

func (t *netTask) run() {
	if t.url == nil {
		t.completion(nil, nil, fmt.Errorf("session: url is required"))
		return
	}
	req, err := http.NewRequestWithContext(t.ctx, http.MethodGet, t.url.String(), nil)
	if err != nil {
		t.completion(nil, nil, fmt.Errorf("session: new request: %w", err))
		return
	}
	req.Header.Set("User-Agent", t.session.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := t.session.client.Do(req)
	if err != nil {
		t.completion(nil, nil, err)
		return
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, t.session.maxBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		t.completion(nil, resp, fmt.Errorf("session: read body: %w", err))
		return
	}
	if int64(len(body)) > t.session.maxBodySize {
		t.completion(nil, resp, fmt.Errorf("session: response larger than %d bytes", t.session.maxBodySize))
		return
	}
	t.completion(body, resp, nil)
}
