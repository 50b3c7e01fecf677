package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bakkerme/feedloader/internal/config"
	"github.com/bakkerme/feedloader/internal/httpclient/impl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const itemsPayload = `{"items":[
	{"id":"4f5c1e2a-9b7d-4c3e-8a1f-2d6b0e9c7a51","image":"https://img.example.com/1.png"},
	{"id":"0d9a3c6e-1b2f-4e5d-9c8b-7a6f5e4d3c2b","description":"desc","location":"loc","image":"https://img.example.com/2.png"}
]}`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(itemsPayload))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"items":[]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestResolveFeeds_SingleURL(t *testing.T) {
	feeds, httpCfg, err := resolveFeeds("https://example.com/items", "does-not-exist.yaml", config.HTTPEnvConfig{UserAgent: "ua"})

	require.NoError(t, err)
	require.Len(t, feeds, 1)
	assert.Equal(t, "example.com", feeds[0].Name)
	assert.Equal(t, "ua", httpCfg.UserAgent)
}

func TestResolveFeeds_Document(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedloader.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feeds:\n  - name: a\n    url: https://a.example.com/items\nhttp:\n  user_agent: doc/1.0\n"), 0o600))

	feeds, httpCfg, err := resolveFeeds("", path, config.HTTPEnvConfig{UserAgent: "env/1.0", Timeout: time.Second})

	require.NoError(t, err)
	require.Len(t, feeds, 1)
	assert.Equal(t, "a", feeds[0].Name)
	assert.Equal(t, "doc/1.0", httpCfg.UserAgent)
	assert.Equal(t, time.Second, httpCfg.Timeout)
}

func TestResolveFeeds_InvalidURL(t *testing.T) {
	_, _, err := resolveFeeds("not a url", "", config.HTTPEnvConfig{})
	assert.Error(t, err)
}

func TestRunOnce_LoadsAllFeedsInOrder(t *testing.T) {
	server := newFeedServer(t)
	feeds, _, err := resolveFeeds(server.URL+"/ok", "", config.HTTPEnvConfig{})
	require.NoError(t, err)
	brokenURL, err := config.ParseFeedURL(server.URL + "/broken")
	require.NoError(t, err)
	feeds = append(feeds, namedFeed{Name: "broken", URL: brokenURL})

	client := impl.NewClient(impl.NewNetSession(time.Second, "test", 0), nil)
	loaders := newLoaders(client, feeds, nil)
	defer closeLoaders(loaders)

	var out bytes.Buffer
	err = runOnce(context.Background(), loaders, &out, formatJSON)
	assert.ErrorIs(t, err, errFeedsFailed)

	var reports []feedReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &reports))
	require.Len(t, reports, 2)

	require.Empty(t, reports[0].Error)
	require.Len(t, reports[0].Items, 2)
	assert.Equal(t, "4f5c1e2a-9b7d-4c3e-8a1f-2d6b0e9c7a51", reports[0].Items[0].ID)
	assert.Nil(t, reports[0].Items[0].Description)
	require.NotNil(t, reports[0].Items[1].Location)
	assert.Equal(t, "loc", *reports[0].Items[1].Location)

	assert.Equal(t, "broken", reports[1].Name)
	assert.Equal(t, "feed: invalid data", reports[1].Error)
	assert.Empty(t, reports[1].Items)
}

func TestWriteReports_YAML(t *testing.T) {
	desc := "desc"
	reports := []feedReport{{
		Name:  "a",
		URL:   "https://a.example.com",
		Items: []itemReport{{ID: "id-1", Description: &desc, Image: "https://img.example.com/1.png"}},
	}}

	var out bytes.Buffer
	require.NoError(t, writeReports(&out, formatYAML, reports))

	var decoded []feedReport
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, reports, decoded)
	assert.NotContains(t, out.String(), "location")
}

func TestWriteReports_UnknownFormat(t *testing.T) {
	assert.Error(t, writeReports(&bytes.Buffer{}, "xml", nil))
}
