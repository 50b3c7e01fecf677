package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/bakkerme/feedloader/internal/httpclient"
	"github.com/bakkerme/feedloader/internal/logx"
	"github.com/bakkerme/feedloader/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/bakkerme/feedloader/internal/httpclient/impl"

// ErrUnexpectedOutcome is reported when the session completes with neither
// an error nor a usable data and response pair.
var ErrUnexpectedOutcome = errors.New("httpclient: unexpected outcome")

// Client implements httpclient.Client on top of a Session.
type Client struct {
	session Session
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

var _ httpclient.Client = (*Client)(nil)

// NewClient wraps session. m may be nil.
func NewClient(session Session, m *metrics.Metrics) *Client {
	return &Client{
		session: session,
		metrics: m,
		tracer:  otel.Tracer(tracerName),
	}
}

func (c *Client) Get(ctx context.Context, u *url.URL, completion func(httpclient.Result)) {
	target := ""
	if u != nil {
		target = u.String()
	}
	ctx, span := c.tracer.Start(ctx, "httpclient.Get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", http.MethodGet),
			attribute.String("http.url", target),
		),
	)
	logger := logx.FromContext(ctx).With(slog.String("url", target))

	var once sync.Once
	deliver := func(result httpclient.Result, outcome string) {
		once.Do(func() {
			c.metrics.RecordTransport(outcome)
			if result.Err != nil {
				span.RecordError(result.Err)
				span.SetStatus(codes.Error, outcome)
				logger.Warn("feed request failed", slog.String("outcome", outcome), slog.String("err", result.Err.Error()))
			} else {
				span.SetAttributes(attribute.Int("http.status_code", result.Response.StatusCode))
				logger.Debug("feed request completed", slog.Int("status", result.Response.StatusCode), slog.Int("bytes", len(result.Data)))
			}
			span.End()
			completion(result)
		})
	}

	// A session may complete inside Resume. Such completions are held until
	// Get has returned.
	returned := make(chan struct{})
	defer close(returned)

	task := c.session.DataTask(ctx, u, func(data []byte, resp *http.Response, err error) {
		result, outcome := normalize(target, u, data, resp, err)
		select {
		case <-returned:
			deliver(result, outcome)
		default:
			go func() {
				<-returned
				deliver(result, outcome)
			}()
		}
	})
	task.Resume()
}

func normalize(target string, u *url.URL, data []byte, resp *http.Response, err error) (httpclient.Result, string) {
	switch {
	case err != nil:
		return httpclient.Result{Err: fmt.Errorf("httpclient: get %s: %w", target, err)}, metrics.OutcomeError
	case data != nil && resp != nil:
		return httpclient.Result{
			Data: data,
			Response: httpclient.Response{
				StatusCode: resp.StatusCode,
				Header:     resp.Header,
				URL:        u,
			},
		}, metrics.OutcomeOK
	default:
		return httpclient.Result{Err: ErrUnexpectedOutcome}, metrics.OutcomeUnexpected
	}
}
