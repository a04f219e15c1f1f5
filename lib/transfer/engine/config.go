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
	"time"

	"github.com/stevedore/stevedore/lib/transfer/plan"
)

// Config defines Engine configuration.
type Config struct {
	// DownloadDirectory is the local root all transfers land under.
	DownloadDirectory string `yaml:"download_directory" validate:"nonzero"`

	// PollingInterval drives the poller and both watcher kinds.
	PollingInterval time.Duration `yaml:"polling_interval"`

	// OrchestrationWorkers is the number of workers applying transfer
	// events.
	OrchestrationWorkers int `yaml:"orchestration_workers"`

	// DownloadWorkers is the number of workers streaming files to disk.
	DownloadWorkers int `yaml:"download_workers"`

	// SkipDirectories elides remote folders by name, case-insensitively.
	SkipDirectories []string `yaml:"skip_directories"`

	// InstanceName is this deployment's source tag on the remote side.
	InstanceName string `yaml:"instance_name"`

	// InstanceFolderID is the remote folder this deployment's transfers are
	// saved under. Zero means it is discovered at startup.
	InstanceFolderID int64 `yaml:"instance_folder_id"`

	// EventBufferSize caps the transfer event channel. A full channel
	// blocks producers, bounding the pipeline.
	EventBufferSize int `yaml:"event_buffer_size"`

	// TaskBufferSize caps the download task channel.
	TaskBufferSize int `yaml:"task_buffer_size"`

	// SummaryInterval rate-limits the active transfer summary log.
	SummaryInterval time.Duration `yaml:"summary_interval"`

	// ReconcileWorkers bounds the startup reconciler's fan-out.
	ReconcileWorkers int `yaml:"reconcile_workers"`
}

func (c Config) applyDefaults() Config {
	if c.PollingInterval == 0 {
		c.PollingInterval = 10 * time.Second
	}
	if c.OrchestrationWorkers == 0 {
		c.OrchestrationWorkers = 10
	}
	if c.DownloadWorkers == 0 {
		c.DownloadWorkers = 4
	}
	if c.EventBufferSize == 0 {
		c.EventBufferSize = 100
	}
	if c.TaskBufferSize == 0 {
		c.TaskBufferSize = 100
	}
	if c.SummaryInterval == 0 {
		c.SummaryInterval = time.Minute
	}
	if c.ReconcileWorkers == 0 {
		c.ReconcileWorkers = 4
	}
	return c
}

// PlanConfig derives the target planner's configuration.
func (c Config) PlanConfig() plan.Config {
	return plan.Config{
		DownloadDirectory: c.DownloadDirectory,
		SkipDirectories:   c.SkipDirectories,
		InstanceFolderID:  c.InstanceFolderID,
	}
}
