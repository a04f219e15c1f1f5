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
package core

import (
	"fmt"
	"sync"
	"time"
)

// Defaults displayed when the remote service omits a field.
const (
	UnknownTransferName = "Unknown"
	DefaultTransferHash = "0000"
)

// Transfer is the process-local mirror of a remote cloud transfer. The
// remote side stays authoritative for download progress and seeding; the
// mirror carries the snapshot observed at listing time plus the local
// download plan.
//
// A Transfer is created by the poller or the startup reconciler and flows
// through the orchestration pipeline by reference. Its only mutable state is
// the target plan, written once by the orchestration worker after planning
// and read by watchers.
type Transfer struct {
	ID           uint64
	Name         string
	Hash         string
	Status       string
	FileID       int64
	SaveParentID int64
	Size         int64
	Downloaded   int64
	DownSpeed    int64
	UpSpeed      int64
	ETA          int64
	Availability int
	ErrorMessage string
	CreatedAt    time.Time
	FinishedAt   time.Time

	mu      sync.Mutex
	targets []DownloadTarget
}

// NewTransfer creates a Transfer, applying display defaults for fields the
// remote service omitted.
func NewTransfer(id uint64, name, hash string) *Transfer {
	if name == "" {
		name = UnknownTransferName
	}
	if hash == "" {
		hash = DefaultTransferHash
	}
	return &Transfer{ID: id, Name: name, Hash: hash}
}

// SetTargets installs t's download plan. Called once by the orchestration
// worker after every target resolved successfully.
func (t *Transfer) SetTargets(targets []DownloadTarget) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.targets = append([]DownloadTarget(nil), targets...)
}

// Targets returns a copy of t's download plan.
func (t *Transfer) Targets() []DownloadTarget {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]DownloadTarget(nil), t.targets...)
}

// FileTargets returns the File targets of t's plan, in plan order.
func (t *Transfer) FileTargets() []DownloadTarget {
	t.mu.Lock()
	defer t.mu.Unlock()
	var files []DownloadTarget
	for _, target := range t.targets {
		if target.Kind == File {
			files = append(files, target)
		}
	}
	return files
}

// TopLevelTarget returns the target owning the transfer's local root, if the
// plan has one.
func (t *Transfer) TopLevelTarget() (DownloadTarget, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, target := range t.targets {
		if target.TopLevel {
			return target, true
		}
	}
	return DownloadTarget{}, false
}

// LeftUntilDone returns the bytes the remote side still has to download,
// clamped at zero. Remote listings occasionally report downloaded > size.
func (t *Transfer) LeftUntilDone() int64 {
	left := t.Size - t.Downloaded
	if left < 0 {
		return 0
	}
	return left
}

// PercentDone returns remote download progress in [0, 1].
func (t *Transfer) PercentDone() float64 {
	if t.Size <= 0 {
		return 0
	}
	p := float64(t.Downloaded) / float64(t.Size)
	if p > 1 {
		return 1
	}
	return p
}

func (t *Transfer) String() string {
	return fmt.Sprintf("%s (id=%d)", t.Name, t.ID)
}
