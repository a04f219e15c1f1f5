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

// Package fetch streams remote file content onto local disk. Writes land in
// a sibling temp file and are renamed over the final path on success, so a
// final path either holds a complete file or nothing.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/uber-go/tally"
	"go.uber.org/atomic"

	"github.com/stevedore/stevedore/core"
	"github.com/stevedore/stevedore/utils/httputil"
	"github.com/stevedore/stevedore/utils/log"
	"github.com/stevedore/stevedore/utils/memsize"
)

// TempFileSuffix marks in-progress downloads next to their final path.
const TempFileSuffix = ".downloading"

// Config defines Fetcher configuration.
type Config struct {
	// BufferSize is the copy buffer used when streaming a response body to
	// disk.
	BufferSize datasize.ByteSize `yaml:"buffer_size"`

	// Timeout bounds a single file download end to end.
	Timeout time.Duration `yaml:"timeout"`
}

func (c Config) applyDefaults() Config {
	if c.BufferSize == 0 {
		c.BufferSize = datasize.MB
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Minute
	}
	return c
}

// Fetcher materializes download targets on local disk.
type Fetcher struct {
	config     Config
	stats      tally.Scope
	client     *http.Client
	downloaded atomic.Int64
}

// New creates a new Fetcher.
func New(config Config, stats tally.Scope) *Fetcher {
	config = config.applyDefaults()
	stats = stats.Tagged(map[string]string{
		"module": "fetch",
	})
	return &Fetcher{
		config: config,
		stats:  stats,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// TotalDownloaded returns the bytes written to disk over the process
// lifetime.
func (f *Fetcher) TotalDownloaded() int64 {
	return f.downloaded.Load()
}

// Fetch materializes target. Directory targets are created idempotently with
// no network I/O. File targets whose final path already exists succeed
// immediately, making replays free. Any error leaves no temp file behind.
func (f *Fetcher) Fetch(ctx context.Context, target core.DownloadTarget) error {
	switch target.Kind {
	case core.Directory:
		if err := os.MkdirAll(target.To, 0755); err != nil {
			return fmt.Errorf("create directory: %s", err)
		}
		return nil
	case core.File:
		return f.fetchFile(ctx, target)
	default:
		return fmt.Errorf("unknown target kind %v", target.Kind)
	}
}

func (f *Fetcher) fetchFile(ctx context.Context, target core.DownloadTarget) error {
	if _, err := os.Stat(target.To); err == nil {
		log.With("hash", target.TransferHash).Infof("%s: already exists", target.To)
		return nil
	}
	if target.From == "" {
		return fmt.Errorf("file target %s has no source url", target.To)
	}
	if err := os.MkdirAll(filepath.Dir(target.To), 0755); err != nil {
		return fmt.Errorf("create parent directory: %s", err)
	}

	tmp := target.To + TempFileSuffix
	n, err := f.download(ctx, target.From, tmp)
	if err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warnf("Failed to remove temp file %s: %s", tmp, rmErr)
		}
		f.stats.Counter("download_errors").Inc(1)
		return err
	}
	if err := os.Rename(tmp, target.To); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warnf("Failed to remove temp file %s: %s", tmp, rmErr)
		}
		return fmt.Errorf("rename temp file: %s", err)
	}

	f.downloaded.Add(n)
	f.stats.Counter("files_downloaded").Inc(1)
	f.stats.Counter("bytes_downloaded").Inc(n)
	log.With("hash", target.TransferHash).Infof(
		"%s: downloaded %s", target.To, memsize.Format(uint64(n)))
	return nil
}

func (f *Fetcher) download(ctx context.Context, from, to string) (n int64, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, from, nil)
	if err != nil {
		return 0, fmt.Errorf("new request: %s", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, httputil.NewNetworkError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, httputil.NewStatusError(resp)
	}

	file, err := os.Create(to)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %s", err)
	}
	defer file.Close()

	buf := make([]byte, int(f.config.BufferSize))
	n, err = io.CopyBuffer(file, resp.Body, buf)
	if err != nil {
		return 0, fmt.Errorf("copy body: %s", err)
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %s", err)
	}
	return n, nil
}
