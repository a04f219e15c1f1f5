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

// Package proxyserver exposes a Transmission RPC endpoint backed by the
// remote cloud service. Media managers configured to use a Transmission
// download client talk to this server; every torrent they see is actually a
// remote transfer.
package proxyserver

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/satori/go.uuid"
	"github.com/uber-go/tally"

	"github.com/stevedore/stevedore/lib/fetch"
	"github.com/stevedore/stevedore/lib/middleware"
	"github.com/stevedore/stevedore/lib/putio"
	"github.com/stevedore/stevedore/lib/transfer/engine"
	"github.com/stevedore/stevedore/utils/handler"
	"github.com/stevedore/stevedore/utils/listener"
	"github.com/stevedore/stevedore/utils/log"
)

// Server implements the slice of the Transmission RPC dialect the media
// managers exercise.
type Server struct {
	config       Config
	stats        tally.Scope
	client       putio.Client
	fetcher      *fetch.Fetcher
	engineConfig engine.Config
	sessionID    string
}

// New creates a new Server. The engine config supplies the download
// directory and the remote scoping (source tag, parent folder) under which
// new transfers are filed.
func New(
	config Config,
	stats tally.Scope,
	client putio.Client,
	fetcher *fetch.Fetcher,
	engineConfig engine.Config) *Server {

	stats = stats.Tagged(map[string]string{
		"module": "proxyserver",
	})
	return &Server{
		config:       config,
		stats:        stats,
		client:       client,
		fetcher:      fetcher,
		engineConfig: engineConfig,
		sessionID:    uuid.NewV4().String(),
	}
}

// Handler returns the root http handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.LatencyTimer(s.stats))
	r.Use(middleware.HitCounter(s.stats))

	r.Get("/health", handler.Wrap(s.healthHandler))
	r.Post("/transmission/rpc", handler.Wrap(s.rpcHandler))

	return r
}

// ListenAndServe serves Handler on the configured listener, blocking until
// failure.
func (s *Server) ListenAndServe() error {
	log.Infof("Starting proxy server on %s", s.config.Listener)
	return listener.Serve(s.config.Listener, s.Handler())
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) error {
	if _, err := s.client.AccountInfo(r.Context()); err != nil {
		return handler.Errorf("remote service unreachable: %s", err).
			Status(http.StatusServiceUnavailable)
	}
	fmt.Fprintln(w, "OK")
	return nil
}
