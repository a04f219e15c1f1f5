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

import "fmt"

// TargetKind classifies what a DownloadTarget materializes on local disk.
type TargetKind int

const (
	// Directory targets create a local directory and perform no network I/O.
	Directory TargetKind = iota

	// File targets stream remote content to a local path.
	File
)

func (k TargetKind) String() string {
	switch k {
	case Directory:
		return "directory"
	case File:
		return "file"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// DownloadTarget is a single instruction in a transfer's download plan,
// mapping one remote node onto the local filesystem.
type DownloadTarget struct {
	// To is the absolute local path the target materializes at.
	To string

	// From is the HTTP url content is fetched from. Empty iff Kind is
	// Directory.
	From string

	// Kind classifies the target.
	Kind TargetKind

	// TopLevel is true on exactly one target per plan: the one whose To is
	// the transfer's root on local disk. The top level target is what gets
	// deleted locally after import.
	TopLevel bool

	// TransferHash cross-references the owning transfer for log correlation.
	TransferHash string
}

func (t DownloadTarget) String() string {
	return fmt.Sprintf("%s %s", t.Kind, t.To)
}
