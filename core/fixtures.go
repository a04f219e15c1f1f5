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
	"bytes"
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/jackpal/bencode-go"

	"github.com/stevedore/stevedore/utils/randutil"
)

// InfoHashFixture creates a random InfoHash for testing purposes.
func InfoHashFixture() InfoHash {
	return NewInfoHashFromBytes(randutil.Text(32))
}

// TransferFixture creates a random downloadable Transfer for testing purposes.
func TransferFixture() *Transfer {
	t := NewTransfer(
		rand.Uint64(),
		fmt.Sprintf("transfer-%s", randutil.Text(8)),
		InfoHashFixture().Hex())
	t.Status = "COMPLETED"
	t.FileID = rand.Int63()
	t.Size = 1000
	t.Downloaded = 1000
	return t
}

// DownloadTargetFixture creates a top level File DownloadTarget under dir for
// testing purposes.
func DownloadTargetFixture(dir string) DownloadTarget {
	name := fmt.Sprintf("%s.mkv", randutil.Text(8))
	return DownloadTarget{
		To:           filepath.Join(dir, name),
		From:         fmt.Sprintf("http://localhost:0/files/%s", name),
		Kind:         File,
		TopLevel:     true,
		TransferHash: InfoHashFixture().Hex(),
	}
}

// TorrentFixture creates the bencoded bytes of a minimal single file torrent
// along with the MetaInfo describing them, for testing purposes.
func TorrentFixture() ([]byte, *MetaInfo) {
	name := fmt.Sprintf("fixture-%s.mkv", randutil.Text(6))
	var b bytes.Buffer
	err := bencode.Marshal(&b, map[string]interface{}{
		"announce": "http://tracker.example.com/announce",
		"info": map[string]interface{}{
			"name":         name,
			"length":       int64(4096),
			"piece length": int64(262144),
			"pieces":       string(randutil.Text(20)),
		},
	})
	if err != nil {
		panic(err)
	}
	mi, err := DeserializeTorrent(b.Bytes())
	if err != nil {
		panic(err)
	}
	return b.Bytes(), mi
}
