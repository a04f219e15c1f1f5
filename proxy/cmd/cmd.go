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
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/andres-erbsen/clock"

	"github.com/stevedore/stevedore/lib/arr"
	"github.com/stevedore/stevedore/lib/fetch"
	"github.com/stevedore/stevedore/lib/putio"
	"github.com/stevedore/stevedore/lib/transfer/engine"
	"github.com/stevedore/stevedore/lib/transfer/plan"
	"github.com/stevedore/stevedore/metrics"
	"github.com/stevedore/stevedore/proxy/proxyserver"
	"github.com/stevedore/stevedore/utils/configutil"
	"github.com/stevedore/stevedore/utils/log"
)

const _bootTimeout = time.Minute

func run() {
	var config Config
	if err := configutil.Load(configFile, &config); err != nil {
		panic(err)
	}

	zlog := log.ConfigureLogger(config.ZapLogging)
	defer zlog.Sync()

	stats, closer, err := metrics.New(config.Metrics, cluster)
	if err != nil {
		log.Fatalf("Failed to init metrics: %s", err)
	}
	defer closer.Close()

	go metrics.EmitVersion(stats)

	client := putio.New(config.Putio)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), _bootTimeout)
	defer bootCancel()

	// An invalid token or unreachable service is a configuration problem;
	// fail loudly before serving anything.
	account, err := client.AccountInfo(bootCtx)
	if err != nil {
		log.Fatalf("Failed to verify account: %s", err)
	}
	log.Infof("Connected as %s", account.Username)

	if config.Engine.InstanceName == "" {
		log.Fatal("Engine instance name is required")
	}
	if config.Engine.InstanceFolderID == 0 {
		folderID, err := putio.EnsureFolder(bootCtx, client, config.Engine.InstanceName, 0)
		if err != nil {
			log.Fatalf("Failed to ensure instance folder: %s", err)
		}
		log.Infof("Using remote folder %q (id=%d)", config.Engine.InstanceName, folderID)
		config.Engine.InstanceFolderID = folderID
	}

	var arrs []arr.Client
	for _, c := range config.ArrConfigs() {
		arrs = append(arrs, arr.New(c))
		log.Infof("Watching imports of %s at %s", c.Name, c.URL)
	}

	planner := plan.New(config.Engine.PlanConfig(), client)
	fetcher := fetch.New(config.Fetch, stats)
	e := engine.New(config.Engine, stats, clock.New(), client, arrs, planner, fetcher)
	server := proxyserver.New(config.Server, stats, client, fetcher, config.Engine)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Fatal(server.ListenAndServe())
	}()

	if err := e.Run(ctx); err != nil {
		log.Fatalf("Engine terminated: %s", err)
	}
	log.Info("Shutdown complete")
}

// getToken walks the remote service's out-of-band OAuth flow on the terminal.
func getToken() {
	var config putio.Config
	if configFile != "" {
		var full Config
		if err := configutil.Load(configFile, &full); err != nil {
			panic(err)
		}
		config = full.Putio
	}

	code, err := putio.GetOOBCode(config)
	if err != nil {
		fmt.Printf("Failed to obtain code: %s\n", err)
		return
	}
	fmt.Printf("Go to https://put.io/link and enter the code %s\n", code)
	fmt.Println("Waiting for the code to be linked...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	token, err := putio.PollOOBToken(ctx, config, code)
	if err != nil {
		fmt.Printf("Failed to obtain token: %s\n", err)
		return
	}
	fmt.Printf("Your OAuth token is: %s\n", token)
}
