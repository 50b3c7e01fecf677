package httpclient

import (
	"context"
	"net/http"
	"net/url"
)

// Response is the metadata of a completed HTTP exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	URL        *url.URL
}

// Result is the outcome of a single Get. Either Err is set, or Data and
// Response describe a completed exchange.
type Result struct {
	Data     []byte
	Response Response
	Err      error
}

// Client fetches raw bytes from a URL.
//
// Implementations call completion exactly once per Get, asynchronously and
// never before Get returns. Completions of concurrent calls are unordered.
type Client interface {
	Get(ctx context.Context, u *url.URL, completion func(Result))
}
