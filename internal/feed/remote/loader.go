package remote

import (
	"context"
	"net/url"
	"sync/atomic"

	"github.com/bakkerme/feedloader/internal/feed"
	"github.com/bakkerme/feedloader/internal/httpclient"
)

// Loader loads the feed at a fixed URL through an httpclient.Client.
//
// Once the Loader is closed, completions of loads still in flight are dropped.
type Loader struct {
	client httpclient.Client
	url    *url.URL
	alive  *atomic.Bool
}

var _ feed.Loader = (*Loader)(nil)

func NewLoader(client httpclient.Client, u *url.URL) *Loader {
	alive := &atomic.Bool{}
	alive.Store(true)
	return &Loader{client: client, url: u, alive: alive}
}

// Load issues one Get per call. Each call completes independently.
func (l *Loader) Load(ctx context.Context, completion func(feed.Result)) {
	// The in-flight closure must not reference l, only the liveness flag.
	alive := l.alive
	l.client.Get(ctx, l.url, func(result httpclient.Result) {
		if !alive.Load() {
			return
		}
		completion(toResult(result))
	})
}

// Close stops delivery of any outstanding completion. It is safe to call
// more than once.
func (l *Loader) Close() error {
	l.alive.Store(false)
	return nil
}

func toResult(result httpclient.Result) feed.Result {
	if result.Err != nil {
		return feed.Failure(feed.Connectivity)
	}
	items, err := Map(result.Response.StatusCode, result.Data)
	if err != nil {
		return feed.Failure(feed.InvalidData)
	}
	return feed.Success(items)
}
