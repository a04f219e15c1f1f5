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

	"golang.org/x/sync/errgroup"

	"github.com/stevedore/stevedore/utils/log"
)

// reconcile classifies the transfers already living on the remote side at
// boot. A transfer whose file targets were all imported while the process
// was down is marked seen and re-enters the pipeline at the seed watch
// stage; everything else is left unseen for the poller's first tick.
// Per-transfer errors are logged and skipped.
func (e *Engine) reconcile(ctx context.Context) error {
	log.Info("Checking existing transfers")

	transfers, err := e.listTransfers(ctx)
	if err != nil {
		return fmt.Errorf("list transfers: %s", err)
	}

	var g errgroup.Group
	g.SetLimit(e.config.ReconcileWorkers)
	for _, pt := range transfers {
		if !pt.Downloadable() {
			continue
		}
		pt := pt
		g.Go(func() error {
			t := pt.Mirror()
			targets, err := e.planner.Plan(ctx, t)
			if err != nil {
				log.Warnf("%s: plan targets: %s", t, err)
				return nil
			}
			t.SetTargets(targets)
			if !e.imported(ctx, t) {
				log.Infof("%s: not imported yet", t)
				return nil
			}
			log.Infof("%s: already imported", t)
			e.seen.Add(t.ID)
			e.post(ctx, importedEvent{t})
			return nil
		})
	}
	g.Wait()

	log.Info("Done checking existing transfers")
	return nil
}
