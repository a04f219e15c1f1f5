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

// Package engine drives remote transfers through their local lifecycle:
// discovery, download, import confirmation, seeding and cleanup. The state
// machine is expressed as events on a bounded channel rather than a mutable
// status field; each transition is emitted by the code which completed the
// previous one.
package engine

import (
	"context"

	"github.com/andres-erbsen/clock"
	"github.com/uber-go/tally"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/stevedore/stevedore/core"
	"github.com/stevedore/stevedore/lib/arr"
	"github.com/stevedore/stevedore/lib/fetch"
	"github.com/stevedore/stevedore/lib/putio"
	"github.com/stevedore/stevedore/lib/transfer/engine/seenset"
	"github.com/stevedore/stevedore/lib/transfer/plan"
	"github.com/stevedore/stevedore/utils/dedup"
	"github.com/stevedore/stevedore/utils/log"
	"github.com/stevedore/stevedore/utils/taskgroup"
)

// downloadTask asks a download worker to materialize one target. The worker
// resolves done with the fetch result; the channel is buffered so resolution
// never blocks the worker.
type downloadTask struct {
	target core.DownloadTarget
	done   chan error
}

// Engine is the download orchestration pipeline.
type Engine struct {
	config  Config
	stats   tally.Scope
	clk     clock.Clock
	client  putio.Client
	arrs    []arr.Client
	planner *plan.Planner
	fetcher *fetch.Fetcher

	events   chan event
	tasks    chan downloadTask
	seen     *seenset.Set
	watchers *taskgroup.Group

	numActive   atomic.Int64
	summaryTrap *dedup.IntervalTrap
}

// New creates a new Engine.
func New(
	config Config,
	stats tally.Scope,
	clk clock.Clock,
	client putio.Client,
	arrs []arr.Client,
	planner *plan.Planner,
	fetcher *fetch.Fetcher) *Engine {

	config = config.applyDefaults()
	stats = stats.Tagged(map[string]string{
		"module": "engine",
	})
	e := &Engine{
		config:   config,
		stats:    stats,
		clk:      clk,
		client:   client,
		arrs:     arrs,
		planner:  planner,
		fetcher:  fetcher,
		events:   make(chan event, config.EventBufferSize),
		tasks:    make(chan downloadTask, config.TaskBufferSize),
		seen:     seenset.New(),
		watchers: taskgroup.New(),
	}
	e.summaryTrap = dedup.NewIntervalTrap(config.SummaryInterval, clk, &summaryTask{e})
	return e
}

// Run reconciles existing remote state, then serves the pipeline until ctx
// is cancelled. Always returns nil after a clean drain; the engine survives
// all per-transfer errors.
func (e *Engine) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < e.config.OrchestrationWorkers; i++ {
		g.Go(func() error {
			e.orchestrate(gctx)
			return nil
		})
	}
	for i := 0; i < e.config.DownloadWorkers; i++ {
		g.Go(func() error {
			e.download(gctx)
			return nil
		})
	}
	g.Go(func() error {
		if err := e.reconcile(gctx); err != nil {
			log.Errorf("Startup reconciliation: %s", err)
		}
		e.poll(gctx)
		return nil
	})
	g.Wait()
	e.watchers.Wait()
	return nil
}

// Seen returns whether the engine has dispatched transfer id in the current
// remote lifetime. Exposed for tests.
func (e *Engine) Seen(id uint64) bool {
	return e.seen.Has(id)
}

func (e *Engine) orchestrate(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-e.events:
			ev.apply(ctx, e)
		}
	}
}

func (e *Engine) download(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-e.tasks:
			task.done <- e.fetcher.Fetch(ctx, task.target)
		}
	}
}

// post delivers ev unless the engine is shutting down. Blocks when the event
// channel is full; that backpressure is what bounds the pipeline.
func (e *Engine) post(ctx context.Context, ev event) bool {
	select {
	case <-ctx.Done():
		return false
	case e.events <- ev:
		return true
	}
}

func (e *Engine) handleQueued(ctx context.Context, t *core.Transfer) {
	log.Infof("%s: download started", t)

	targets, err := e.planner.Plan(ctx, t)
	if err != nil {
		log.Errorf("%s: plan targets: %s", t, err)
		return
	}
	if len(targets) == 0 {
		log.Infof("%s: nothing downloadable, dropping", t)
		return
	}

	timer := e.stats.Timer("download_time").Start()
	dones := make([]chan error, len(targets))
	for i, target := range targets {
		dones[i] = make(chan error, 1)
		select {
		case <-ctx.Done():
			return
		case e.tasks <- downloadTask{target, dones[i]}:
		}
	}

	ok := true
	for i, done := range dones {
		select {
		case <-ctx.Done():
			return
		case err := <-done:
			if err != nil {
				log.With("target", targets[i].To).Errorf("%s: download failed: %s", t, err)
				ok = false
			}
		}
	}
	if !ok {
		// The transfer stays seen; it is only reconsidered if the remote
		// side removes and re-adds it.
		log.Warnf("%s: not all targets downloaded", t)
		e.stats.Counter("failed_downloads").Inc(1)
		return
	}
	timer.Stop()

	t.SetTargets(targets)
	log.Infof("%s: download done", t)
	e.post(ctx, downloadedEvent{t})
}

type summaryTask struct {
	engine *Engine
}

func (s *summaryTask) Run() {
	log.Infof("Active transfers: %d", s.engine.numActive.Load())
}
