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

	"github.com/stevedore/stevedore/lib/putio"
	"github.com/stevedore/stevedore/utils/log"
)

// poll emits new downloadable transfers on a fixed cadence until ctx is
// cancelled. Listing errors are retried on the next tick; the loop never
// terminates on them.
func (e *Engine) poll(ctx context.Context) {
	ticker := e.clk.Ticker(e.config.PollingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug("Poller stopped")
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	transfers, err := e.listTransfers(ctx)
	if err != nil {
		log.Warnf("List transfers failed, retrying on next tick: %s", err)
		return
	}

	live := make(map[uint64]struct{}, len(transfers))
	for _, pt := range transfers {
		live[pt.ID] = struct{}{}
	}

	for _, pt := range transfers {
		if e.seen.Has(pt.ID) || !pt.Downloadable() {
			continue
		}
		t := pt.Mirror()
		log.Infof("%s: ready for download", t)
		if !e.post(ctx, queuedEvent{t}) {
			return
		}
		e.seen.Add(pt.ID)
	}

	// Ids the remote side dropped are released so a re-added transfer is
	// processed again.
	e.seen.Prune(live)

	e.numActive.Store(int64(len(transfers)))
	e.stats.Gauge("transfers_active").Update(float64(len(transfers)))
	e.summaryTrap.Trap()
}

func (e *Engine) listTransfers(ctx context.Context) ([]putio.Transfer, error) {
	return e.client.ListTransfers(ctx, putio.ListFilter{
		Source:   e.config.InstanceName,
		ParentID: e.config.InstanceFolderID,
	})
}
