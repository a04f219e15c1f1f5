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
	"errors"
	"fmt"

	"github.com/jackpal/bencode-go"
)

// MetaInfo carries the slice of torrent metadata the bridge needs: enough to
// name a transfer and identify it by info hash. Piece data is left to the
// remote service, which performs the actual BitTorrent download.
type MetaInfo struct {
	name     string
	length   int64
	infoHash InfoHash
	announce string
}

// Name returns the torrent's advertised name.
func (mi *MetaInfo) Name() string { return mi.name }

// Length returns the total payload size summed over all files.
func (mi *MetaInfo) Length() int64 { return mi.length }

// InfoHash returns the torrent InfoHash.
func (mi *MetaInfo) InfoHash() InfoHash { return mi.infoHash }

// Announce returns the primary tracker url, if the torrent declares one.
func (mi *MetaInfo) Announce() string { return mi.announce }

// DeserializeTorrent decodes a bencoded torrent file. The info hash is
// computed over the re-encoded info dictionary; since bencoding mandates
// sorted dictionary keys, re-encoding a decoded dictionary reproduces the
// original bytes for spec-compliant files.
func DeserializeTorrent(data []byte) (*MetaInfo, error) {
	v, err := bencode.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("bencode: %s", err)
	}
	root, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.New("torrent root must be a dictionary")
	}
	infoVal, ok := root["info"]
	if !ok {
		return nil, errors.New("torrent missing info dictionary")
	}
	info, ok := infoVal.(map[string]interface{})
	if !ok {
		return nil, errors.New("torrent info must be a dictionary")
	}

	var b bytes.Buffer
	if err := bencode.Marshal(&b, info); err != nil {
		return nil, fmt.Errorf("bencode info: %s", err)
	}

	mi := &MetaInfo{infoHash: NewInfoHashFromBytes(b.Bytes())}
	if name, ok := info["name"].(string); ok {
		mi.name = name
	}
	if length, ok := info["length"].(int64); ok {
		mi.length = length
	} else if files, ok := info["files"].([]interface{}); ok {
		for _, f := range files {
			fd, ok := f.(map[string]interface{})
			if !ok {
				continue
			}
			if length, ok := fd["length"].(int64); ok {
				mi.length += length
			}
		}
	}
	if announce, ok := root["announce"].(string); ok {
		mi.announce = announce
	}
	return mi, nil
}
