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
package engine

import (
	"context"
	"fmt"

	"github.com/stevedore/stevedore/core"
)

// event is a transfer lifecycle transition, applied by whichever
// orchestration worker receives it. Each transition is emitted only by code
// which ran after the previous transition completed on the same transfer,
// so per-transfer ordering holds without shared state.
type event interface {
	apply(ctx context.Context, e *Engine)
}

// queuedEvent fires when the poller (or a fresh remote listing) observes a
// new downloadable transfer.
type queuedEvent struct {
	transfer *core.Transfer
}

func (ev queuedEvent) apply(ctx context.Context, e *Engine) {
	e.handleQueued(ctx, ev.transfer)
}

// downloadedEvent fires once every target of a transfer's plan has landed on
// local disk.
type downloadedEvent struct {
	transfer *core.Transfer
}

func (ev downloadedEvent) apply(ctx context.Context, e *Engine) {
	t := ev.transfer
	e.watchers.Go(fmt.Sprintf("import-watch-%d", t.ID), func() error {
		return e.watchImport(ctx, t)
	})
}

// importedEvent fires once every file target of a transfer has been imported
// by a configured service, or when the startup reconciler finds a transfer
// already imported.
type importedEvent struct {
	transfer *core.Transfer
}

func (ev importedEvent) apply(ctx context.Context, e *Engine) {
	t := ev.transfer
	e.watchers.Go(fmt.Sprintf("seed-watch-%d", t.ID), func() error {
		return e.watchSeeding(ctx, t)
	})
}
