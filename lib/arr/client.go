// Copyright (c) 2016-2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package arr queries the import history of media-indexing services (Sonarr,
// Radarr, Whisparr). The bridge uses it to learn when a downloaded file has
// been picked up by the service that requested it.
package arr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"

	"github.com/stevedore/stevedore/utils/httputil"
)

const (
	_historyPageSize = 1000

	// The import event type recorded when a service moves a dropped file
	// into its library.
	_importedEventType = "downloadFolderImported"
)

// Config defines a single service's client configuration.
type Config struct {
	Name    string        `yaml:"name"`
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

func (c Config) applyDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// Client checks one service's history for imported files.
type Client interface {
	Name() string
	HasImported(ctx context.Context, droppedPath string) (bool, error)
}

// HTTPClient defines the Client implementation. Queries run behind a circuit
// breaker so that a downed service degrades to cheap rejections instead of
// a timeout per query, and identical in-flight page fetches are collapsed.
type HTTPClient struct {
	config  Config
	breaker *gobreaker.CircuitBreaker
	sf      singleflight.Group
}

// New returns a new HTTPClient.
func New(config Config) *HTTPClient {
	config = config.applyDefaults()
	return &HTTPClient{
		config: config,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: config.Name,
		}),
	}
}

// Name returns the configured service name, for log attribution.
func (c *HTTPClient) Name() string {
	return c.config.Name
}

type historyRecord struct {
	EventType string `json:"eventType"`
	Data      struct {
		DroppedPath string `json:"droppedPath"`
	} `json:"data"`
}

type historyPage struct {
	Page         int             `json:"page"`
	PageSize     int             `json:"pageSize"`
	TotalRecords int             `json:"totalRecords"`
	Records      []historyRecord `json:"records"`
}

// HasImported reports whether the service's history holds a
// downloadFolderImported event whose dropped path equals droppedPath. Pages
// through the history until a match is found or totalRecords is reached.
func (c *HTTPClient) HasImported(ctx context.Context, droppedPath string) (bool, error) {
	seen := 0
	// The v3 history endpoint is 1-based; page 0 and page 1 both return the
	// first page, so starting at 1 avoids fetching it twice.
	for page := 1; ; page++ {
		h, err := c.getHistoryPage(ctx, page)
		if err != nil {
			return false, err
		}
		for _, record := range h.Records {
			if record.EventType == _importedEventType && record.Data.DroppedPath == droppedPath {
				return true, nil
			}
		}
		seen += len(h.Records)
		if seen >= h.TotalRecords || len(h.Records) == 0 {
			return false, nil
		}
	}
}

func (c *HTTPClient) getHistoryPage(ctx context.Context, page int) (*historyPage, error) {
	url := fmt.Sprintf(
		"%s/api/v3/history?includeSeries=false&includeEpisode=false&page=%d&pageSize=%d",
		strings.TrimSuffix(c.config.URL, "/"), page, _historyPageSize)

	v, err, _ := c.sf.Do(url, func() (interface{}, error) {
		return c.breaker.Execute(func() (interface{}, error) {
			resp, err := httputil.Get(
				url,
				httputil.SendContext(ctx),
				httputil.SendTimeout(c.config.Timeout),
				httputil.SendHeaders(map[string]string{"X-Api-Key": c.config.APIKey}))
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			h := new(historyPage)
			if err := json.NewDecoder(resp.Body).Decode(h); err != nil {
				return nil, fmt.Errorf("decode history: %s", err)
			}
			return h, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return v.(*historyPage), nil
}

// IsCircuitOpen returns true if err was a rejection from an open circuit
// breaker rather than a real query failure.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests)
}

// IsUnreachable returns true if err means the service simply was not
// listening. Routine while a service restarts; callers log it quietly.
func IsUnreachable(err error) bool {
	return httputil.IsNetworkError(err) &&
		strings.Contains(err.Error(), "connection refused")
}

var _ Client = (*HTTPClient)(nil)
