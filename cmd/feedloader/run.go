package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/bakkerme/feedloader/internal/config"
	"github.com/bakkerme/feedloader/internal/feed"
	"github.com/bakkerme/feedloader/internal/feed/remote"
	"github.com/bakkerme/feedloader/internal/httpclient"
	"github.com/bakkerme/feedloader/internal/logx"
	"github.com/bakkerme/feedloader/internal/metrics"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var errFeedsFailed = errors.New("one or more feeds failed to load")

type namedFeed struct {
	Name string
	URL  *url.URL
}

type namedLoader struct {
	namedFeed
	remote *remote.Loader
	loader feed.Loader
}

type itemReport struct {
	ID          string  `json:"id" yaml:"id"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
	Location    *string `json:"location,omitempty" yaml:"location,omitempty"`
	Image       string  `json:"image" yaml:"image"`
}

type feedReport struct {
	Name  string       `json:"name" yaml:"name"`
	URL   string       `json:"url" yaml:"url"`
	Error string       `json:"error,omitempty" yaml:"error,omitempty"`
	Items []itemReport `json:"items" yaml:"items"`
}

// resolveFeeds returns the single -url feed when set, otherwise the feeds of
// the document at path, along with the effective HTTP settings.
func resolveFeeds(rawURL, path string, httpEnv config.HTTPEnvConfig) ([]namedFeed, config.HTTPEnvConfig, error) {
	if rawURL != "" {
		u, err := config.ParseFeedURL(rawURL)
		if err != nil {
			return nil, httpEnv, err
		}
		return []namedFeed{{Name: u.Host, URL: u}}, httpEnv, nil
	}

	doc, err := config.LoadDocument(path)
	if err != nil {
		return nil, httpEnv, err
	}
	httpCfg, err := doc.HTTP.Apply(httpEnv)
	if err != nil {
		return nil, httpEnv, err
	}
	feeds := make([]namedFeed, 0, len(doc.Feeds))
	for _, f := range doc.Feeds {
		u, err := f.ParsedURL()
		if err != nil {
			return nil, httpEnv, fmt.Errorf("feed %q: %w", f.Name, err)
		}
		feeds = append(feeds, namedFeed{Name: f.Name, URL: u})
	}
	return feeds, httpCfg, nil
}

func newLoaders(client httpclient.Client, feeds []namedFeed, m *metrics.Metrics) []namedLoader {
	loaders := make([]namedLoader, 0, len(feeds))
	for _, f := range feeds {
		r := remote.NewLoader(client, f.URL)
		loaders = append(loaders, namedLoader{namedFeed: f, remote: r, loader: feed.Instrument(r, m)})
	}
	return loaders
}

func closeLoaders(loaders []namedLoader) {
	for _, l := range loaders {
		_ = l.remote.Close()
	}
}

// loadAll loads every feed concurrently and returns reports in input order.
func loadAll(ctx context.Context, loaders []namedLoader) []feedReport {
	reports := make([]feedReport, len(loaders))
	var wg sync.WaitGroup
	for i, l := range loaders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			feedCtx := logx.With(ctx, "feed", l.Name)
			items, err := feed.Await(feedCtx, l.loader)
			reports[i] = newReport(l.namedFeed, items, err)
		}()
	}
	wg.Wait()
	return reports
}

func newReport(f namedFeed, items []feed.Item, err error) feedReport {
	report := feedReport{Name: f.Name, URL: f.URL.String(), Items: []itemReport{}}
	if err != nil {
		report.Error = err.Error()
		return report
	}
	for _, item := range items {
		r := itemReport{
			ID:          item.ID().String(),
			Description: optional(item.Description()),
			Location:    optional(item.Location()),
		}
		if image := item.Image(); image != nil {
			r.Image = image.String()
		}
		report.Items = append(report.Items, r)
	}
	return report
}

func optional(v string, ok bool) *string {
	if !ok {
		return nil
	}
	return &v
}

func writeReports(w io.Writer, format string, reports []feedReport) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func runOnce(ctx context.Context, loaders []namedLoader, w io.Writer, format string) error {
	reports := loadAll(ctx, loaders)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeReports(w, format, reports); err != nil {
		return err
	}
	for _, r := range reports {
		if r.Error != "" {
			return errFeedsFailed
		}
	}
	return nil
}
