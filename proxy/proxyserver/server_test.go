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
package proxyserver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"

	"github.com/stevedore/stevedore/core"
	"github.com/stevedore/stevedore/lib/fetch"
	"github.com/stevedore/stevedore/lib/putio"
	"github.com/stevedore/stevedore/lib/transfer/engine"
	"github.com/stevedore/stevedore/mocks/lib/putio/mockputio"
	"github.com/stevedore/stevedore/utils/testutil"
)

const (
	_testUser = "arr"
	_testPass = "secret"
)

type serverFixture struct {
	client    *mockputio.MockClient
	addr      string
	sessionID string
	downloads string
}

func newServerFixture(t *testing.T) (*serverFixture, func()) {
	var cleanup testutil.Cleanup
	defer cleanup.Recover()

	ctrl := gomock.NewController(t)
	cleanup.Add(ctrl.Finish)

	client := mockputio.NewMockClient(ctrl)
	downloads := t.TempDir()
	s := New(
		Config{Username: _testUser, Password: _testPass},
		tally.NoopScope,
		client,
		fetch.New(fetch.Config{}, tally.NoopScope),
		engine.Config{
			DownloadDirectory: downloads,
			InstanceName:      "stevedore",
			InstanceFolderID:  77,
		})
	addr, stop := testutil.StartServer(s.Handler())
	cleanup.Add(stop)

	f := &serverFixture{
		client:    client,
		addr:      addr,
		sessionID: s.sessionID,
		downloads: downloads,
	}
	return f, cleanup.Run
}

type testResponse struct {
	Result    string                 `json:"result"`
	Arguments map[string]interface{} `json:"arguments"`
}

func (f *serverFixture) call(t *testing.T, method string, args interface{}) testResponse {
	body, err := json.Marshal(map[string]interface{}{
		"method":    method,
		"arguments": args,
	})
	require.NoError(t, err)

	req, err := http.NewRequest(
		"POST", fmt.Sprintf("http://%s/transmission/rpc", f.addr), bytes.NewReader(body))
	require.NoError(t, err)
	req.SetBasicAuth(_testUser, _testPass)
	req.Header.Set(_sessionIDHeader, f.sessionID)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tr testResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tr))
	return tr
}

func strptr(s string) *string { return &s }

func i64ptr(i int64) *int64 { return &i }

func TestRPCSessionHandshake(t *testing.T) {
	require := require.New(t)

	f, cleanup := newServerFixture(t)
	defer cleanup()

	req, err := http.NewRequest(
		"POST", fmt.Sprintf("http://%s/transmission/rpc", f.addr), nil)
	require.NoError(err)
	req.SetBasicAuth(_testUser, _testPass)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(err)
	resp.Body.Close()
	require.Equal(http.StatusConflict, resp.StatusCode)
	require.Equal(f.sessionID, resp.Header.Get(_sessionIDHeader))

	// Replaying with the issued id succeeds.
	tr := f.call(t, "session-get", nil)
	require.Equal("success", tr.Result)
	require.Equal(f.downloads, tr.Arguments["download-dir"])
}

func TestRPCRejectsBadCredentials(t *testing.T) {
	require := require.New(t)

	f, cleanup := newServerFixture(t)
	defer cleanup()

	req, err := http.NewRequest(
		"POST", fmt.Sprintf("http://%s/transmission/rpc", f.addr), nil)
	require.NoError(err)
	req.SetBasicAuth(_testUser, "wrong")
	req.Header.Set(_sessionIDHeader, f.sessionID)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(err)
	resp.Body.Close()
	require.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestTorrentGetMapsTransfers(t *testing.T) {
	require := require.New(t)

	f, cleanup := newServerFixture(t)
	defer cleanup()

	f.client.EXPECT().ListTransfers(
		gomock.Any(), putio.ListFilter{Source: "stevedore", ParentID: 77}).Return(
		[]putio.Transfer{
			{
				ID:         1,
				Name:       strptr("seeding show"),
				Hash:       strptr("aaaa"),
				Status:     putio.StatusSeeding,
				Size:       i64ptr(1000),
				Downloaded: i64ptr(1200), // Overreported; left must clamp to 0.
				FileID:     i64ptr(100),
			},
			{
				ID:         2,
				Name:       strptr("downloading show"),
				Hash:       strptr("bbbb"),
				Status:     putio.StatusDownloading,
				Size:       i64ptr(1000),
				Downloaded: i64ptr(400),
			},
		}, nil)

	tr := f.call(t, "torrent-get", map[string]interface{}{
		"fields": []string{"id", "name", "status", "leftUntilDone"},
	})
	require.Equal("success", tr.Result)

	raw, err := json.Marshal(tr.Arguments["torrents"])
	require.NoError(err)
	var torrents []torrent
	require.NoError(json.Unmarshal(raw, &torrents))
	require.Len(torrents, 2)

	require.Equal(uint64(1), torrents[0].ID)
	require.Equal(statusSeed, torrents[0].Status)
	require.Equal(int64(0), torrents[0].LeftUntilDone)
	require.True(torrents[0].IsFinished)

	require.Equal(uint64(2), torrents[1].ID)
	require.Equal(statusDownload, torrents[1].Status)
	require.Equal(int64(600), torrents[1].LeftUntilDone)
	require.False(torrents[1].IsFinished)
}

func TestTorrentGetFiltersByIDAndHash(t *testing.T) {
	require := require.New(t)

	f, cleanup := newServerFixture(t)
	defer cleanup()

	transfers := []putio.Transfer{
		{ID: 1, Name: strptr("one"), Hash: strptr("aaaa"), Status: putio.StatusSeeding},
		{ID: 2, Name: strptr("two"), Hash: strptr("bbbb"), Status: putio.StatusSeeding},
		{ID: 3, Name: strptr("three"), Hash: strptr("cccc"), Status: putio.StatusSeeding},
	}
	f.client.EXPECT().ListTransfers(gomock.Any(), gomock.Any()).Return(transfers, nil)

	tr := f.call(t, "torrent-get", map[string]interface{}{
		"ids": []interface{}{1, "BBBB"},
	})
	require.Equal("success", tr.Result)

	raw, err := json.Marshal(tr.Arguments["torrents"])
	require.NoError(err)
	var torrents []torrent
	require.NoError(json.Unmarshal(raw, &torrents))
	require.Len(torrents, 2)
	require.Equal("one", torrents[0].Name)
	require.Equal("two", torrents[1].Name)
}

func TestTorrentAddMagnet(t *testing.T) {
	require := require.New(t)

	f, cleanup := newServerFixture(t)
	defer cleanup()

	h := core.InfoHashFixture()
	magnet := fmt.Sprintf("magnet:?xt=urn:btih:%s&dn=some+show", h.Hex())

	f.client.EXPECT().AddTransfer(gomock.Any(), magnet, int64(77), "stevedore").Return(
		putio.Transfer{ID: 9, Status: putio.StatusInQueue}, nil)

	tr := f.call(t, "torrent-add", map[string]interface{}{"filename": magnet})
	require.Equal("success", tr.Result)

	added := tr.Arguments["torrent-added"].(map[string]interface{})
	require.Equal(float64(9), added["id"])
	require.Equal("some show", added["name"])
	require.Equal(h.Hex(), added["hashString"])
}

func TestTorrentAddMetainfo(t *testing.T) {
	require := require.New(t)

	f, cleanup := newServerFixture(t)
	defer cleanup()

	raw, mi := core.TorrentFixture()

	f.client.EXPECT().UploadTorrent(
		gomock.Any(), mi.Name()+".torrent", raw, int64(77), "stevedore").Return(
		putio.Transfer{ID: 9, Status: putio.StatusInQueue}, nil)

	tr := f.call(t, "torrent-add", map[string]interface{}{
		"metainfo": base64.StdEncoding.EncodeToString(raw),
	})
	require.Equal("success", tr.Result)

	added := tr.Arguments["torrent-added"].(map[string]interface{})
	require.Equal(mi.Name(), added["name"])
	require.Equal(mi.InfoHash().Hex(), added["hashString"])
}

func TestTorrentAddRejectsGarbage(t *testing.T) {
	require := require.New(t)

	f, cleanup := newServerFixture(t)
	defer cleanup()

	tr := f.call(t, "torrent-add", map[string]interface{}{
		"filename": "http://example.com/not-a-magnet",
	})
	require.NotEqual("success", tr.Result)
}

func TestTorrentRemove(t *testing.T) {
	require := require.New(t)

	f, cleanup := newServerFixture(t)
	defer cleanup()

	transfers := []putio.Transfer{
		{ID: 1, Name: strptr("one"), Hash: strptr("aaaa"), Status: putio.StatusSeeding, FileID: i64ptr(100)},
		{ID: 2, Name: strptr("two"), Hash: strptr("bbbb"), Status: putio.StatusSeeding, FileID: i64ptr(200)},
	}
	f.client.EXPECT().ListTransfers(gomock.Any(), gomock.Any()).Return(transfers, nil)
	f.client.EXPECT().RemoveTransfer(gomock.Any(), uint64(1)).Return(nil)
	f.client.EXPECT().DeleteFile(gomock.Any(), int64(100)).Return(nil)

	tr := f.call(t, "torrent-remove", map[string]interface{}{
		"ids":               []interface{}{1},
		"delete-local-data": true,
	})
	require.Equal("success", tr.Result)
}

func TestTorrentRemoveRequiresIDs(t *testing.T) {
	require := require.New(t)

	f, cleanup := newServerFixture(t)
	defer cleanup()

	tr := f.call(t, "torrent-remove", map[string]interface{}{})
	require.NotEqual("success", tr.Result)
}

func TestNoopMethods(t *testing.T) {
	require := require.New(t)

	f, cleanup := newServerFixture(t)
	defer cleanup()

	for _, method := range []string{"torrent-set", "torrent-set-location", "queue-move-top"} {
		tr := f.call(t, method, map[string]interface{}{"ids": []interface{}{1}})
		require.Equal("success", tr.Result)
	}
}

func TestUnsupportedMethod(t *testing.T) {
	require := require.New(t)

	f, cleanup := newServerFixture(t)
	defer cleanup()

	tr := f.call(t, "blocklist-update", nil)
	require.NotEqual("success", tr.Result)
}

func TestFreeSpace(t *testing.T) {
	require := require.New(t)

	f, cleanup := newServerFixture(t)
	defer cleanup()

	tr := f.call(t, "free-space", map[string]interface{}{"path": f.downloads})
	require.Equal("success", tr.Result)
	require.Equal(f.downloads, tr.Arguments["path"])
	require.True(tr.Arguments["size-bytes"].(float64) > 0)
}

func TestSessionStats(t *testing.T) {
	require := require.New(t)

	f, cleanup := newServerFixture(t)
	defer cleanup()

	f.client.EXPECT().ListTransfers(gomock.Any(), gomock.Any()).Return(
		[]putio.Transfer{
			{ID: 1, Status: putio.StatusDownloading, DownSpeed: i64ptr(100)},
			{ID: 2, Status: putio.StatusSeeding, UpSpeed: i64ptr(50)},
		}, nil)

	tr := f.call(t, "session-stats", nil)
	require.Equal("success", tr.Result)
	require.Equal(float64(2), tr.Arguments["torrentCount"])
	require.Equal(float64(100), tr.Arguments["downloadSpeed"])
	require.Equal(float64(50), tr.Arguments["uploadSpeed"])
}

func TestHealth(t *testing.T) {
	require := require.New(t)

	f, cleanup := newServerFixture(t)
	defer cleanup()

	f.client.EXPECT().AccountInfo(gomock.Any()).Return(putio.AccountInfo{}, nil)

	resp, err := http.Get(fmt.Sprintf("http://%s/health", f.addr))
	require.NoError(err)
	resp.Body.Close()
	require.Equal(http.StatusOK, resp.StatusCode)
}
