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
package putio

import "time"

// Config defines HTTPClient configuration.
type Config struct {
	// Token is the OAuth token sent on every request.
	Token string `yaml:"token"`

	// API overrides the remote API base url. Intended for testing.
	API string `yaml:"api"`

	Timeout time.Duration `yaml:"timeout"`

	// ClientID identifies the application during the OAuth OOB flow. Not
	// used for regular API calls.
	ClientID string `yaml:"client_id"`
}

func (c Config) applyDefaults() Config {
	if c.API == "" {
		c.API = "https://api.put.io/v2"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.ClientID == "" {
		c.ClientID = "4701"
	}
	return c
}
