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
package cmd

import (
	"go.uber.org/zap"

	"github.com/stevedore/stevedore/lib/arr"
	"github.com/stevedore/stevedore/lib/fetch"
	"github.com/stevedore/stevedore/lib/putio"
	"github.com/stevedore/stevedore/lib/transfer/engine"
	"github.com/stevedore/stevedore/metrics"
	"github.com/stevedore/stevedore/proxy/proxyserver"
)

// Config defines proxy configuration.
type Config struct {
	ZapLogging zap.Config         `yaml:"zap"`
	Metrics    metrics.Config     `yaml:"metrics"`
	Putio      putio.Config       `yaml:"putio"`
	Engine     engine.Config      `yaml:"engine"`
	Fetch      fetch.Config       `yaml:"fetch"`
	Server     proxyserver.Config `yaml:"server"`
	Sonarr     []arr.Config       `yaml:"sonarr"`
	Radarr     []arr.Config       `yaml:"radarr"`
	Whisparr   []arr.Config       `yaml:"whisparr"`
}

// ArrConfigs flattens the per-service blocks into one client list.
func (c Config) ArrConfigs() []arr.Config {
	var configs []arr.Config
	configs = append(configs, c.Sonarr...)
	configs = append(configs, c.Radarr...)
	configs = append(configs, c.Whisparr...)
	return configs
}
