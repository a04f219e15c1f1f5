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
	"os"

	"github.com/stevedore/stevedore/core"
	"github.com/stevedore/stevedore/lib/arr"
	"github.com/stevedore/stevedore/lib/putio"
	"github.com/stevedore/stevedore/utils/log"
)

// watchImport probes the configured services each tick until one of them has
// imported every file target of t, then deletes the local artifact and
// advances the transfer.
func (e *Engine) watchImport(ctx context.Context, t *core.Transfer) error {
	ticker := e.clk.Ticker(e.config.PollingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debugf("%s: import watch stopped", t)
			return nil
		case <-ticker.C:
			if !e.imported(ctx, t) {
				continue
			}
			if err := e.removeLocal(t); err != nil {
				return fmt.Errorf("%s: remove local artifact: %s", t, err)
			}
			e.stats.Counter("imports").Inc(1)
			e.post(ctx, importedEvent{t})
			return nil
		}
	}
}

// imported reports whether every file target of t has been imported by at
// least one configured service. Different targets may be claimed by
// different services. A transfer with no file targets, or a deployment with
// no services configured, never reports imported; such transfers stay on
// local disk.
func (e *Engine) imported(ctx context.Context, t *core.Transfer) bool {
	files := t.FileTargets()
	if len(files) == 0 || len(e.arrs) == 0 {
		return false
	}
	for _, target := range files {
		if !e.targetImported(ctx, t, target) {
			return false
		}
	}
	return true
}

// targetImported asks each service in order whether it imported target; the
// first to say yes wins and is attributed in the log.
func (e *Engine) targetImported(ctx context.Context, t *core.Transfer, target core.DownloadTarget) bool {
	for _, c := range e.arrs {
		ok, err := c.HasImported(ctx, target.To)
		if err != nil {
			if arr.IsCircuitOpen(err) || arr.IsUnreachable(err) {
				log.Debugf("%s: %s history unavailable: %s", t, c.Name(), err)
			} else {
				log.Warnf("%s: query %s history: %s", t, c.Name(), err)
			}
			continue
		}
		if ok {
			log.Infof("%s: %s imported by %s", t, target.To, c.Name())
			return true
		}
	}
	return false
}

// removeLocal deletes t's top level artifact from local disk. Already gone is
// fine; the service may have moved rather than copied it.
func (e *Engine) removeLocal(t *core.Transfer) error {
	top, ok := t.TopLevelTarget()
	if !ok {
		return nil
	}
	if err := os.RemoveAll(top.To); err != nil {
		return err
	}
	log.Infof("%s: removed %s", t, top.To)
	return nil
}

// watchSeeding polls t's remote status each tick until it leaves SEEDING,
// then removes the transfer and its files from the remote side.
func (e *Engine) watchSeeding(ctx context.Context, t *core.Transfer) error {
	ticker := e.clk.Ticker(e.config.PollingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debugf("%s: seed watch stopped", t)
			return nil
		case <-ticker.C:
			pt, err := e.client.GetTransfer(ctx, t.ID)
			if err != nil {
				log.Warnf("%s: get transfer: %s", t, err)
				continue
			}
			if putio.StatusEqual(pt.Status, putio.StatusSeeding) {
				continue
			}
			e.cleanupRemote(ctx, t)
			log.Infof("%s: done seeding", t)
			e.stats.Counter("transfers_completed").Inc(1)
			return nil
		}
	}
}

// cleanupRemote removes t and its files from the remote side. Failures are
// logged and abandoned; the remote service reaps orphans on its own schedule.
func (e *Engine) cleanupRemote(ctx context.Context, t *core.Transfer) {
	if err := e.client.RemoveTransfer(ctx, t.ID); err != nil {
		log.Warnf("%s: remove remote transfer: %s", t, err)
	}
	if err := e.client.DeleteFile(ctx, t.FileID); err != nil {
		log.Warnf("%s: delete remote files: %s", t, err)
	}
}
