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
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFile, "config", "", "", "configuration file path")
	rootCmd.PersistentFlags().StringVarP(
		&cluster, "cluster", "", "", "deployment name used to tag metrics")
	rootCmd.AddCommand(getTokenCmd)
}

var (
	configFile string
	cluster    string

	rootCmd = &cobra.Command{
		Use: "stevedore",
		Short: "stevedore bridges Transmission-speaking media managers onto a " +
			"cloud torrent service, downloading completed transfers to local disk.",
		Run: func(rootCmd *cobra.Command, args []string) {
			run()
		},
	}

	getTokenCmd = &cobra.Command{
		Use:   "get-token",
		Short: "Obtain an OAuth token for the remote service interactively.",
		Run: func(cmd *cobra.Command, args []string) {
			getToken()
		},
	}
)

// Execute runs the CLI.
func Execute() {
	rootCmd.Execute()
}
