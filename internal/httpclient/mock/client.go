package mock

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/bakkerme/feedloader/internal/httpclient"
)

type message struct {
	url        *url.URL
	completion func(httpclient.Result)
}

// Client records every Get and holds its completion until the test
// completes it with Complete or CompleteWithStatus.
type Client struct {
	mu       sync.Mutex
	messages []message
}

func (c *Client) Get(_ context.Context, u *url.URL, completion func(httpclient.Result)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message{url: u, completion: completion})
}

// RequestedURLs returns the URLs passed to Get, in call order.
func (c *Client) RequestedURLs() []*url.URL {
	c.mu.Lock()
	defer c.mu.Unlock()
	urls := make([]*url.URL, 0, len(c.messages))
	for _, m := range c.messages {
		urls = append(urls, m.url)
	}
	return urls
}

// Complete fails the index-th Get with err.
func (c *Client) Complete(err error, index int) {
	c.completion(index)(httpclient.Result{Err: err})
}

// CompleteWithStatus finishes the index-th Get with a response.
func (c *Client) CompleteWithStatus(code int, data []byte, index int) {
	m := c.message(index)
	m.completion(httpclient.Result{
		Data: data,
		Response: httpclient.Response{
			StatusCode: code,
			Header:     make(http.Header),
			URL:        m.url,
		},
	})
}

func (c *Client) completion(index int) func(httpclient.Result) {
	return c.message(index).completion
}

func (c *Client) message(index int) message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messages[index]
}
