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
package taskgroup

import (
	"sync"

	"github.com/stevedore/stevedore/utils/log"
)

// Group tracks named background goroutines. Completed tasks are reaped each
// time a new task starts, so the tracked set stays proportional to the number
// of live tasks no matter how many have run. Task errors are absorbed and
// logged, never propagated.
type Group struct {
	mu    sync.Mutex
	tasks []*task
	wg    sync.WaitGroup
}

type task struct {
	name string
	done chan struct{}
}

// New creates a new Group.
func New() *Group {
	return &Group{}
}

// Go runs fn in a new tracked goroutine. Any error returned by fn is logged
// against name.
func (g *Group) Go(name string, fn func() error) {
	t := &task{name: name, done: make(chan struct{})}

	g.mu.Lock()
	g.sweep()
	g.tasks = append(g.tasks, t)
	g.mu.Unlock()

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer close(t.done)
		if err := fn(); err != nil {
			log.With("task", t.name).Errorf("Task exited: %s", err)
		}
	}()
}

// sweep drops completed tasks. Must be called with mu held.
func (g *Group) sweep() {
	alive := g.tasks[:0]
	for _, t := range g.tasks {
		select {
		case <-t.done:
		default:
			alive = append(alive, t)
		}
	}
	for i := len(alive); i < len(g.tasks); i++ {
		g.tasks[i] = nil
	}
	g.tasks = alive
}

// Size returns the number of tracked tasks, including completed tasks which
// have not been swept yet.
func (g *Group) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks)
}

// Wait blocks until every task started so far has completed.
func (g *Group) Wait() {
	g.wg.Wait()
}
