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

// Package plan turns a transfer's remote file tree into an ordered list of
// download targets: directories first, then the files inside them.
package plan

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/stevedore/stevedore/core"
	"github.com/stevedore/stevedore/lib/putio"
	"github.com/stevedore/stevedore/utils/stringset"
)

// Subtitle files are downloaded alongside videos regardless of the remote
// side's content type classification.
var _subtitleExtensions = stringset.New(".srt", ".sub", ".vtt", ".ssa", ".ass")

// Config defines Planner configuration.
type Config struct {
	// DownloadDirectory is the local root every plan lands under.
	DownloadDirectory string `yaml:"download_directory"`

	// SkipDirectories elides whole remote subtrees by folder name,
	// case-insensitively. Typically sample and extras folders.
	SkipDirectories []string `yaml:"skip_directories"`

	// InstanceFolderID, when set, rejects plans whose root was saved outside
	// this instance's folder. Guards against scope leakage when the remote
	// listing was unscoped.
	InstanceFolderID int64 `yaml:"instance_folder_id"`
}

// Planner walks remote file trees and produces download plans.
type Planner struct {
	config Config
	skip   stringset.Set
	client putio.Client
}

// New creates a new Planner.
func New(config Config, client putio.Client) *Planner {
	skip := stringset.New()
	for _, name := range config.SkipDirectories {
		skip.Add(strings.ToLower(name))
	}
	return &Planner{
		config: config,
		skip:   skip,
		client: client,
	}
}

// Plan produces t's download plan. The plan holds exactly one top level
// target unless it is empty; an empty plan means the tree holds nothing
// downloadable. Output is deterministic for identical remote listings.
func (p *Planner) Plan(ctx context.Context, t *core.Transfer) ([]core.DownloadTarget, error) {
	if t.FileID == 0 {
		return nil, fmt.Errorf("transfer %s has no file id", t)
	}
	listing, err := p.client.ListFiles(ctx, t.FileID)
	if err != nil {
		return nil, fmt.Errorf("list files: %s", err)
	}
	if p.config.InstanceFolderID != 0 && listing.Parent.ParentID != p.config.InstanceFolderID {
		return nil, fmt.Errorf(
			"transfer %s root is outside the instance folder (parent %d)",
			t, listing.Parent.ParentID)
	}
	return p.walkListing(ctx, listing, t.Hash, p.config.DownloadDirectory, true)
}

func (p *Planner) walk(
	ctx context.Context,
	fileID int64,
	hash, base string,
	topLevel bool) ([]core.DownloadTarget, error) {

	listing, err := p.client.ListFiles(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("list files: %s", err)
	}
	return p.walkListing(ctx, listing, hash, base, topLevel)
}

func (p *Planner) walkListing(
	ctx context.Context,
	listing *putio.FileList,
	hash, base string,
	topLevel bool) ([]core.DownloadTarget, error) {

	to := filepath.Join(base, listing.Parent.Name)

	switch {
	case listing.Parent.IsDir():
		if p.skip.Has(strings.ToLower(listing.Parent.Name)) {
			return nil, nil
		}
		var children []core.DownloadTarget
		for _, f := range listing.Files {
			targets, err := p.walk(ctx, f.ID, hash, to, false)
			if err != nil {
				return nil, err
			}
			children = append(children, targets...)
		}
		if len(children) == 0 {
			// Nothing downloadable survives under this folder.
			return nil, nil
		}
		plan := make([]core.DownloadTarget, 0, len(children)+1)
		plan = append(plan, core.DownloadTarget{
			To:           to,
			Kind:         core.Directory,
			TopLevel:     topLevel,
			TransferHash: hash,
		})
		return append(plan, children...), nil
	case downloadable(listing.Parent):
		url, err := p.client.FileURL(ctx, listing.Parent.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve file url: %s", err)
		}
		return []core.DownloadTarget{{
			To:           to,
			From:         url,
			Kind:         core.File,
			TopLevel:     topLevel,
			TransferHash: hash,
		}}, nil
	default:
		return nil, nil
	}
}

func downloadable(f putio.File) bool {
	if strings.EqualFold(f.FileType, putio.FileTypeVideo) {
		return true
	}
	return _subtitleExtensions.Has(strings.ToLower(filepath.Ext(f.Name)))
}
