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

// Package seenset tracks which remote transfer ids have already been
// dispatched, so a transfer enters the pipeline exactly once per remote
// lifetime.
package seenset

import "sync"

// Set is a concurrency-safe membership set of transfer ids. Pruning against
// the live listing keeps it O(live transfers) and releases ids the remote
// side has removed, so a re-added transfer is processed again.
type Set struct {
	mu  sync.Mutex
	ids map[uint64]struct{}
}

// New creates a new Set.
func New() *Set {
	return &Set{ids: make(map[uint64]struct{})}
}

// Add marks id as seen.
func (s *Set) Add(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
}

// Has returns true if id has been seen.
func (s *Set) Has(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Prune removes every seen id not present in live.
func (s *Set) Prune(live map[uint64]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.ids {
		if _, ok := live[id]; !ok {
			delete(s.ids, id)
		}
	}
}

// Len returns the number of seen ids.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
