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
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"go.uber.org/atomic"

	"github.com/stevedore/stevedore/core"
	"github.com/stevedore/stevedore/lib/arr"
	"github.com/stevedore/stevedore/lib/fetch"
	"github.com/stevedore/stevedore/lib/putio"
	"github.com/stevedore/stevedore/lib/transfer/plan"
	"github.com/stevedore/stevedore/mocks/lib/arr/mockarr"
	"github.com/stevedore/stevedore/mocks/lib/putio/mockputio"
	"github.com/stevedore/stevedore/utils/testutil"
)

const _testInterval = 10 * time.Second

type engineMocks struct {
	ctrl   *gomock.Controller
	config Config
	clk    *clock.Mock
	client *mockputio.MockClient
	arrs   []arr.Client
}

func newEngineMocks(t *testing.T) (*engineMocks, func()) {
	ctrl := gomock.NewController(t)
	return &engineMocks{
		ctrl: ctrl,
		config: Config{
			DownloadDirectory: t.TempDir(),
			PollingInterval:   _testInterval,
		},
		clk:    clock.NewMock(),
		client: mockputio.NewMockClient(ctrl),
	}, ctrl.Finish
}

func (m *engineMocks) new() *Engine {
	planner := plan.New(m.config.PlanConfig(), m.client)
	fetcher := fetch.New(fetch.Config{}, tally.NoopScope)
	return New(m.config, tally.NoopScope, m.clk, m.client, m.arrs, planner, fetcher)
}

func strptr(s string) *string { return &s }

func i64ptr(i int64) *int64 { return &i }

// remoteTransfer builds a downloadable wire transfer whose tree is a single
// video file served by the given url.
func remoteTransfer(id uint64, fileID int64, name string) putio.Transfer {
	return putio.Transfer{
		ID:     id,
		Name:   strptr(name),
		Hash:   strptr("d2474e86"),
		FileID: i64ptr(fileID),
		Status: putio.StatusSeeding,
	}
}

func TestEngineDownloadsNewTransfer(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newEngineMocks(t)
	defer cleanup()

	addr, stop := testutil.StartServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("some video content"))
		}))
	defer stop()

	pt := remoteTransfer(1, 100, "some show")
	mocks.client.EXPECT().ListTransfers(gomock.Any(), gomock.Any()).Return(
		[]putio.Transfer{pt}, nil).AnyTimes()
	mocks.client.EXPECT().ListFiles(gomock.Any(), int64(100)).Return(&putio.FileList{
		Parent: putio.File{ID: 100, Name: "some show.mkv", FileType: putio.FileTypeVideo},
	}, nil).AnyTimes()
	mocks.client.EXPECT().FileURL(gomock.Any(), int64(100)).Return(
		"http://"+addr+"/files/100/stream", nil).AnyTimes()

	e := mocks.new()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	target := filepath.Join(mocks.config.DownloadDirectory, "some show.mkv")
	require.NoError(testutil.PollUntilTrue(5*time.Second, func() bool {
		mocks.clk.Add(_testInterval)
		_, err := os.Stat(target)
		return err == nil
	}))
	require.True(e.Seen(1))

	cancel()
	<-done
}

func TestEngineImportAndSeedLifecycle(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newEngineMocks(t)
	defer cleanup()

	addr, stop := testutil.StartServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("some video content"))
		}))
	defer stop()

	var (
		imported    atomic.Bool
		doneSeeding atomic.Bool
		removed     atomic.Bool
		deleted     atomic.Bool
	)

	pt := remoteTransfer(1, 100, "some show")
	mocks.client.EXPECT().ListTransfers(gomock.Any(), gomock.Any()).Return(
		[]putio.Transfer{pt}, nil).AnyTimes()
	mocks.client.EXPECT().ListFiles(gomock.Any(), int64(100)).Return(&putio.FileList{
		Parent: putio.File{ID: 100, Name: "some show.mkv", FileType: putio.FileTypeVideo},
	}, nil).AnyTimes()
	mocks.client.EXPECT().FileURL(gomock.Any(), int64(100)).Return(
		"http://"+addr+"/files/100/stream", nil).AnyTimes()
	mocks.client.EXPECT().GetTransfer(gomock.Any(), uint64(1)).DoAndReturn(
		func(context.Context, uint64) (putio.Transfer, error) {
			status := putio.StatusSeeding
			if doneSeeding.Load() {
				status = putio.StatusCompleted
			}
			return putio.Transfer{ID: 1, Status: status}, nil
		}).AnyTimes()
	mocks.client.EXPECT().RemoveTransfer(gomock.Any(), uint64(1)).DoAndReturn(
		func(context.Context, uint64) error {
			removed.Store(true)
			return nil
		})
	mocks.client.EXPECT().DeleteFile(gomock.Any(), int64(100)).DoAndReturn(
		func(context.Context, int64) error {
			deleted.Store(true)
			return nil
		})

	sonarr := mockarr.NewMockClient(mocks.ctrl)
	sonarr.EXPECT().Name().Return("sonarr").AnyTimes()
	sonarr.EXPECT().HasImported(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string) (bool, error) {
			return imported.Load(), nil
		}).AnyTimes()
	mocks.arrs = []arr.Client{sonarr}

	e := mocks.new()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	target := filepath.Join(mocks.config.DownloadDirectory, "some show.mkv")
	require.NoError(testutil.PollUntilTrue(5*time.Second, func() bool {
		mocks.clk.Add(_testInterval)
		_, err := os.Stat(target)
		return err == nil
	}))

	// The local artifact is deleted once the service reports it imported.
	imported.Store(true)
	require.NoError(testutil.PollUntilTrue(5*time.Second, func() bool {
		mocks.clk.Add(_testInterval)
		_, err := os.Stat(target)
		return os.IsNotExist(err)
	}))

	// While the remote side still reports SEEDING, nothing is cleaned up.
	for i := 0; i < 3; i++ {
		mocks.clk.Add(_testInterval)
		time.Sleep(50 * time.Millisecond)
	}
	require.False(removed.Load())
	require.False(deleted.Load())

	doneSeeding.Store(true)
	require.NoError(testutil.PollUntilTrue(5*time.Second, func() bool {
		mocks.clk.Add(_testInterval)
		return removed.Load() && deleted.Load()
	}))

	cancel()
	<-done
}

func TestEngineSkipsTransfersWithoutFileTree(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newEngineMocks(t)
	defer cleanup()

	ready := remoteTransfer(1, 100, "ready")
	pending := putio.Transfer{ID: 2, Name: strptr("pending"), Status: putio.StatusDownloading}
	mocks.client.EXPECT().ListTransfers(gomock.Any(), putio.ListFilter{}).Return(
		[]putio.Transfer{ready, pending}, nil)

	e := mocks.new()
	e.tick(context.Background())

	require.True(e.Seen(1))
	require.False(e.Seen(2))
	require.Equal(1, len(e.events))
}

func TestEnginePrunesRemovedTransfers(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newEngineMocks(t)
	defer cleanup()

	pt := remoteTransfer(1, 100, "some show")
	gomock.InOrder(
		mocks.client.EXPECT().ListTransfers(gomock.Any(), putio.ListFilter{}).Return(
			[]putio.Transfer{pt}, nil),
		mocks.client.EXPECT().ListTransfers(gomock.Any(), putio.ListFilter{}).Return(
			nil, nil),
		mocks.client.EXPECT().ListTransfers(gomock.Any(), putio.ListFilter{}).Return(
			[]putio.Transfer{pt}, nil),
	)

	e := mocks.new()
	ctx := context.Background()

	e.tick(ctx)
	require.True(e.Seen(1))

	// The remote side dropped the transfer; its id is released.
	e.tick(ctx)
	require.False(e.Seen(1))

	// Re-added, so it is dispatched again.
	e.tick(ctx)
	require.True(e.Seen(1))
	require.Equal(2, len(e.events))
}

func TestEngineSurvivesListingErrors(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newEngineMocks(t)
	defer cleanup()

	pt := remoteTransfer(1, 100, "some show")
	gomock.InOrder(
		mocks.client.EXPECT().ListTransfers(gomock.Any(), putio.ListFilter{}).Return(
			nil, errors.New("service unavailable")),
		mocks.client.EXPECT().ListTransfers(gomock.Any(), putio.ListFilter{}).Return(
			[]putio.Transfer{pt}, nil),
	)

	e := mocks.new()
	ctx := context.Background()

	e.tick(ctx)
	require.False(e.Seen(1))

	e.tick(ctx)
	require.True(e.Seen(1))
}

func TestReconcileMarksImportedTransfers(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newEngineMocks(t)
	defer cleanup()

	pt := remoteTransfer(1, 100, "some show")
	mocks.client.EXPECT().ListTransfers(gomock.Any(), putio.ListFilter{}).Return(
		[]putio.Transfer{pt}, nil)
	mocks.client.EXPECT().ListFiles(gomock.Any(), int64(100)).Return(&putio.FileList{
		Parent: putio.File{ID: 100, Name: "some show.mkv", FileType: putio.FileTypeVideo},
	}, nil)
	mocks.client.EXPECT().FileURL(gomock.Any(), int64(100)).Return(
		"http://localhost/files/100/stream", nil)

	sonarr := mockarr.NewMockClient(mocks.ctrl)
	sonarr.EXPECT().Name().Return("sonarr").AnyTimes()
	sonarr.EXPECT().HasImported(
		gomock.Any(),
		filepath.Join(mocks.config.DownloadDirectory, "some show.mkv")).Return(true, nil)
	mocks.arrs = []arr.Client{sonarr}

	e := mocks.new()
	require.NoError(e.reconcile(context.Background()))

	require.True(e.Seen(1))
	require.Equal(1, len(e.events))
	_, ok := (<-e.events).(importedEvent)
	require.True(ok)
}

func TestReconcileLeavesUnimportedTransfersForPoller(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newEngineMocks(t)
	defer cleanup()

	pt := remoteTransfer(1, 100, "some show")
	mocks.client.EXPECT().ListTransfers(gomock.Any(), putio.ListFilter{}).Return(
		[]putio.Transfer{pt}, nil)
	mocks.client.EXPECT().ListFiles(gomock.Any(), int64(100)).Return(&putio.FileList{
		Parent: putio.File{ID: 100, Name: "some show.mkv", FileType: putio.FileTypeVideo},
	}, nil)
	mocks.client.EXPECT().FileURL(gomock.Any(), int64(100)).Return(
		"http://localhost/files/100/stream", nil)

	sonarr := mockarr.NewMockClient(mocks.ctrl)
	sonarr.EXPECT().Name().Return("sonarr").AnyTimes()
	sonarr.EXPECT().HasImported(gomock.Any(), gomock.Any()).Return(false, nil)
	mocks.arrs = []arr.Client{sonarr}

	e := mocks.new()
	require.NoError(e.reconcile(context.Background()))

	require.False(e.Seen(1))
	require.Equal(0, len(e.events))
}

func TestImportedSpreadAcrossServices(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newEngineMocks(t)
	defer cleanup()

	root := filepath.Join(mocks.config.DownloadDirectory, "some show")
	e1 := filepath.Join(root, "e1.mkv")
	e2 := filepath.Join(root, "e2.mkv")
	e3 := filepath.Join(root, "e3.mkv")

	// Each service's history only holds the episode it requested; a transfer
	// is imported once every file has been claimed by somebody.
	sonarr := mockarr.NewMockClient(mocks.ctrl)
	sonarr.EXPECT().Name().Return("sonarr").AnyTimes()
	sonarr.EXPECT().HasImported(gomock.Any(), e1).Return(true, nil).AnyTimes()
	sonarr.EXPECT().HasImported(gomock.Any(), e2).Return(false, nil).AnyTimes()
	sonarr.EXPECT().HasImported(gomock.Any(), e3).Return(false, nil).AnyTimes()

	radarr := mockarr.NewMockClient(mocks.ctrl)
	radarr.EXPECT().Name().Return("radarr").AnyTimes()
	radarr.EXPECT().HasImported(gomock.Any(), e1).Return(false, nil).AnyTimes()
	radarr.EXPECT().HasImported(gomock.Any(), e2).Return(true, nil).AnyTimes()
	radarr.EXPECT().HasImported(gomock.Any(), e3).Return(false, nil).AnyTimes()

	mocks.arrs = []arr.Client{sonarr, radarr}
	e := mocks.new()

	tr := core.NewTransfer(1, "some show", "d2474e86")
	targets := []core.DownloadTarget{
		{To: root, Kind: core.Directory, TopLevel: true},
		{To: e1, From: "http://localhost/files/1/stream", Kind: core.File},
		{To: e2, From: "http://localhost/files/2/stream", Kind: core.File},
	}
	tr.SetTargets(targets)
	require.True(e.imported(context.Background(), tr))

	// One unclaimed file holds the whole transfer back.
	tr.SetTargets(append(targets, core.DownloadTarget{
		To: e3, From: "http://localhost/files/3/stream", Kind: core.File,
	}))
	require.False(e.imported(context.Background(), tr))
}

func TestEngineDropsTransfersWithEmptyPlans(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newEngineMocks(t)
	defer cleanup()

	mocks.config.SkipDirectories = []string{"sample"}

	// The whole tree is one skipped folder, so the plan comes back empty.
	mocks.client.EXPECT().ListFiles(gomock.Any(), int64(100)).Return(&putio.FileList{
		Parent: putio.File{ID: 100, Name: "Sample", FileType: putio.FileTypeFolder},
	}, nil)

	e := mocks.new()
	pt := remoteTransfer(1, 100, "some show")
	e.handleQueued(context.Background(), pt.Mirror())

	require.Equal(0, len(e.events))

	entries, err := os.ReadDir(mocks.config.DownloadDirectory)
	require.NoError(err)
	require.Empty(entries)
}
