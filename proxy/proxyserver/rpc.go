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
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/stevedore/stevedore/core"
	"github.com/stevedore/stevedore/lib/putio"
	"github.com/stevedore/stevedore/utils/diskspaceutil"
	"github.com/stevedore/stevedore/utils/errutil"
	"github.com/stevedore/stevedore/utils/handler"
	"github.com/stevedore/stevedore/utils/log"
)

const _sessionIDHeader = "X-Transmission-Session-Id"

// Transmission torrent status codes.
const (
	statusStopped      = 0
	statusCheckWait    = 1
	statusCheck        = 2
	statusDownloadWait = 3
	statusDownload     = 4
	statusSeedWait     = 5
	statusSeed         = 6
)

type rpcRequest struct {
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments"`
	Tag       *int            `json:"tag,omitempty"`
}

type rpcResponse struct {
	Result    string      `json:"result"`
	Arguments interface{} `json:"arguments,omitempty"`
	Tag       *int        `json:"tag,omitempty"`
}

// rpcHandler serves POST /transmission/rpc. Transport-level failures (auth,
// session handshake, malformed body) surface as HTTP errors; method failures
// surface in the protocol's result string with a 200, which is how real
// Transmission behaves.
func (s *Server) rpcHandler(w http.ResponseWriter, r *http.Request) error {
	if s.config.Username != "" {
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.config.Username || pass != s.config.Password {
			return handler.ErrorStatus(http.StatusUnauthorized).
				Header("WWW-Authenticate", `Basic realm="transmission"`)
		}
	}
	if r.Header.Get(_sessionIDHeader) != s.sessionID {
		return handler.Errorf("invalid session id").
			Status(http.StatusConflict).
			Header(_sessionIDHeader, s.sessionID)
	}

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return handler.Errorf("decode request: %s", err).Status(http.StatusBadRequest)
	}

	resp := rpcResponse{Result: "success", Tag: req.Tag}
	args, err := s.dispatch(r.Context(), req)
	if err != nil {
		log.Warnf("Method %s: %s", req.Method, err)
		resp.Result = err.Error()
	} else {
		resp.Arguments = args
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return handler.Errorf("encode response: %s", err)
	}
	return nil
}

func (s *Server) dispatch(ctx context.Context, req rpcRequest) (interface{}, error) {
	switch req.Method {
	case "session-get":
		return s.sessionGet(), nil
	case "session-stats":
		return s.sessionStats(ctx)
	case "torrent-get":
		return s.torrentGet(ctx, req.Arguments)
	case "torrent-add":
		return s.torrentAdd(ctx, req.Arguments)
	case "torrent-remove":
		return s.torrentRemove(ctx, req.Arguments)
	case "torrent-set", "torrent-set-location", "queue-move-top":
		// Accepted and ignored. The remote service owns queue order and
		// locations; the managers only need a success result.
		return struct{}{}, nil
	case "free-space":
		return s.freeSpace(req.Arguments)
	default:
		return nil, fmt.Errorf("method not supported: %s", req.Method)
	}
}

func (s *Server) sessionGet() interface{} {
	return map[string]interface{}{
		"download-dir":        s.engineConfig.DownloadDirectory,
		"version":             "2.94",
		"rpc-version":         15,
		"rpc-version-minimum": 1,
		"seedRatioLimit":      1.0,
		"seedRatioLimited":    false,
	}
}

func (s *Server) sessionStats(ctx context.Context) (interface{}, error) {
	transfers, err := s.listTransfers(ctx)
	if err != nil {
		return nil, err
	}
	var downSpeed, upSpeed int64
	for _, pt := range transfers {
		t := pt.Mirror()
		downSpeed += t.DownSpeed
		upSpeed += t.UpSpeed
	}
	return map[string]interface{}{
		"activeTorrentCount": len(transfers),
		"pausedTorrentCount": 0,
		"torrentCount":       len(transfers),
		"downloadSpeed":      downSpeed,
		"uploadSpeed":        upSpeed,
		"cumulative-stats": map[string]interface{}{
			"downloadedBytes": s.fetcher.TotalDownloaded(),
			"uploadedBytes":   0,
		},
	}, nil
}

// torrent is the wire representation of one transfer in torrent-get replies.
type torrent struct {
	ID             uint64  `json:"id"`
	HashString     string  `json:"hashString"`
	Name           string  `json:"name"`
	DownloadDir    string  `json:"downloadDir"`
	TotalSize      int64   `json:"totalSize"`
	LeftUntilDone  int64   `json:"leftUntilDone"`
	DownloadedEver int64   `json:"downloadedEver"`
	PercentDone    float64 `json:"percentDone"`
	RateDownload   int64   `json:"rateDownload"`
	RateUpload     int64   `json:"rateUpload"`
	ETA            int64   `json:"eta"`
	Status         int     `json:"status"`
	IsFinished     bool    `json:"isFinished"`
	ErrorString    string  `json:"errorString"`
	SeedRatioLimit float64 `json:"seedRatioLimit"`
}

func (s *Server) mirrorTorrent(t *core.Transfer) torrent {
	return torrent{
		ID:             t.ID,
		HashString:     t.Hash,
		Name:           t.Name,
		DownloadDir:    s.engineConfig.DownloadDirectory,
		TotalSize:      t.Size,
		LeftUntilDone:  t.LeftUntilDone(),
		DownloadedEver: t.Downloaded,
		PercentDone:    t.PercentDone(),
		RateDownload:   t.DownSpeed,
		RateUpload:     t.UpSpeed,
		ETA:            t.ETA,
		Status:         mapStatus(t.Status),
		IsFinished:     t.PercentDone() >= 1,
		ErrorString:    t.ErrorMessage,
		SeedRatioLimit: 1,
	}
}

func mapStatus(status string) int {
	switch strings.ToUpper(status) {
	case putio.StatusStopped, putio.StatusError:
		return statusStopped
	case putio.StatusCheckWait:
		return statusCheckWait
	case putio.StatusCheck:
		return statusCheck
	case putio.StatusQueued, putio.StatusInQueue, putio.StatusPreparingDownload:
		return statusDownloadWait
	case putio.StatusDownloading, putio.StatusCompleting:
		return statusDownload
	case putio.StatusSeedingWait:
		return statusSeedWait
	case putio.StatusSeeding, putio.StatusCompleted:
		return statusSeed
	default:
		return statusStopped
	}
}

type torrentGetArgs struct {
	IDs []interface{} `json:"ids"`
}

func (s *Server) torrentGet(ctx context.Context, rawArgs json.RawMessage) (interface{}, error) {
	var args torrentGetArgs
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return nil, fmt.Errorf("decode arguments: %s", err)
		}
	}
	transfers, err := s.listTransfers(ctx)
	if err != nil {
		return nil, err
	}
	torrents := make([]torrent, 0, len(transfers))
	for _, pt := range transfers {
		t := pt.Mirror()
		if !matchIDs(args.IDs, t) {
			continue
		}
		torrents = append(torrents, s.mirrorTorrent(t))
	}
	return map[string]interface{}{"torrents": torrents}, nil
}

// matchIDs implements the protocol's ids argument: absent means all, numbers
// match transfer ids, strings match info hashes.
func matchIDs(ids []interface{}, t *core.Transfer) bool {
	if len(ids) == 0 {
		return true
	}
	for _, id := range ids {
		switch v := id.(type) {
		case float64:
			if uint64(v) == t.ID {
				return true
			}
		case string:
			if strings.EqualFold(v, t.Hash) {
				return true
			}
		}
	}
	return false
}

type torrentAddArgs struct {
	Metainfo string `json:"metainfo"`
	Filename string `json:"filename"`
}

func (s *Server) torrentAdd(ctx context.Context, rawArgs json.RawMessage) (interface{}, error) {
	var args torrentAddArgs
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		return nil, fmt.Errorf("decode arguments: %s", err)
	}

	var (
		pt   putio.Transfer
		name string
		hash string
	)
	switch {
	case args.Metainfo != "":
		raw, err := base64.StdEncoding.DecodeString(args.Metainfo)
		if err != nil {
			return nil, fmt.Errorf("decode metainfo: %s", err)
		}
		mi, err := core.DeserializeTorrent(raw)
		if err != nil {
			return nil, fmt.Errorf("parse torrent: %s", err)
		}
		name = mi.Name()
		hash = mi.InfoHash().Hex()
		pt, err = s.client.UploadTorrent(
			ctx,
			name+".torrent",
			raw,
			s.engineConfig.InstanceFolderID,
			s.engineConfig.InstanceName)
		if err != nil {
			return nil, fmt.Errorf("upload torrent: %s", err)
		}
	case args.Filename != "":
		m, err := core.ParseMagnet(args.Filename)
		if err != nil {
			return nil, fmt.Errorf("parse magnet: %s", err)
		}
		name = m.Name
		hash = m.InfoHash.Hex()
		pt, err = s.client.AddTransfer(
			ctx,
			args.Filename,
			s.engineConfig.InstanceFolderID,
			s.engineConfig.InstanceName)
		if err != nil {
			return nil, fmt.Errorf("add transfer: %s", err)
		}
	default:
		return nil, fmt.Errorf("arguments hold neither metainfo nor filename")
	}

	t := pt.Mirror()
	if t.Name != core.UnknownTransferName {
		name = t.Name
	}
	if t.Hash != core.DefaultTransferHash {
		hash = t.Hash
	}
	log.Infof("%s: added via rpc", t)

	return map[string]interface{}{
		"torrent-added": map[string]interface{}{
			"id":         t.ID,
			"name":       name,
			"hashString": hash,
		},
	}, nil
}

type torrentRemoveArgs struct {
	IDs             []interface{} `json:"ids"`
	DeleteLocalData bool          `json:"delete-local-data"`
}

func (s *Server) torrentRemove(ctx context.Context, rawArgs json.RawMessage) (interface{}, error) {
	var args torrentRemoveArgs
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		return nil, fmt.Errorf("decode arguments: %s", err)
	}
	if len(args.IDs) == 0 {
		return nil, fmt.Errorf("no ids specified")
	}
	transfers, err := s.listTransfers(ctx)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, pt := range transfers {
		t := pt.Mirror()
		if !matchIDs(args.IDs, t) {
			continue
		}
		log.Infof("%s: removed via rpc", t)
		if err := s.client.RemoveTransfer(ctx, t.ID); err != nil {
			errs = append(errs, fmt.Errorf("remove transfer %d: %s", t.ID, err))
		}
		if args.DeleteLocalData && pt.Downloadable() {
			if err := s.client.DeleteFile(ctx, t.FileID); err != nil {
				errs = append(errs, fmt.Errorf("delete files of transfer %d: %s", t.ID, err))
			}
		}
	}
	if err := errutil.Join(errs); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

type freeSpaceArgs struct {
	Path string `json:"path"`
}

func (s *Server) freeSpace(rawArgs json.RawMessage) (interface{}, error) {
	var args freeSpaceArgs
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return nil, fmt.Errorf("decode arguments: %s", err)
		}
	}
	if args.Path == "" {
		args.Path = s.engineConfig.DownloadDirectory
	}
	usage, err := diskspaceutil.PathUsage(args.Path)
	if err != nil {
		return nil, fmt.Errorf("disk usage: %s", err)
	}
	return map[string]interface{}{
		"path":       args.Path,
		"size-bytes": usage.FreeBytes,
	}, nil
}

func (s *Server) listTransfers(ctx context.Context) ([]putio.Transfer, error) {
	transfers, err := s.client.ListTransfers(ctx, putio.ListFilter{
		Source:   s.engineConfig.InstanceName,
		ParentID: s.engineConfig.InstanceFolderID,
	})
	if err != nil {
		return nil, fmt.Errorf("list transfers: %s", err)
	}
	return transfers, nil
}
