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

import (
	"bytes"
	"strings"
	"time"

	"github.com/stevedore/stevedore/core"
)

// Transfer statuses reported by the remote service. Comparisons are always
// case-insensitive.
const (
	StatusStopped            = "STOPPED"
	StatusCompleted          = "COMPLETED"
	StatusError              = "ERROR"
	StatusCheckWait          = "CHECKWAIT"
	StatusPreparingDownload  = "PREPARING_DOWNLOAD"
	StatusCheck              = "CHECK"
	StatusCompleting         = "COMPLETING"
	StatusQueued             = "QUEUED"
	StatusInQueue            = "IN_QUEUE"
	StatusDownloading        = "DOWNLOADING"
	StatusSeedingWait        = "SEEDINGWAIT"
	StatusSeeding            = "SEEDING"
)

// File types reported in file listings.
const (
	FileTypeFolder = "FOLDER"
	FileTypeVideo  = "VIDEO"
)

// StatusEqual compares two status strings case-insensitively.
func StatusEqual(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Time unmarshals the remote service's zone-less timestamps, which also
// appear in RFC3339 form on some endpoints.
type Time struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Transfer mirrors a remote transfer record. Optional fields are pointers;
// the remote service omits them freely depending on transfer state.
type Transfer struct {
	ID             uint64  `json:"id"`
	Hash           *string `json:"hash"`
	Name           *string `json:"name"`
	Size           *int64  `json:"size"`
	Downloaded     *int64  `json:"downloaded"`
	Uploaded       *int64  `json:"uploaded"`
	DownSpeed      *int64  `json:"down_speed"`
	UpSpeed        *int64  `json:"up_speed"`
	EstimatedTime  *int64  `json:"estimated_time"`
	Status         string  `json:"status"`
	StartedAt      *Time   `json:"started_at"`
	FinishedAt     *Time   `json:"finished_at"`
	FileID         *int64  `json:"file_id"`
	SaveParentID   *int64  `json:"save_parent_id"`
	Source         *string `json:"source"`
	UserfileExists bool    `json:"userfile_exists"`
	Availability   *int    `json:"availability"`
	ErrorMessage   *string `json:"error_message"`
}

// Downloadable returns true once the remote side has materialized a file
// tree for the transfer.
func (t Transfer) Downloadable() bool {
	return t.FileID != nil && *t.FileID != 0
}

// Mirror converts t into the process-local representation consumed by the
// orchestration engine and the RPC facade.
func (t Transfer) Mirror() *core.Transfer {
	m := core.NewTransfer(t.ID, strOrEmpty(t.Name), strOrEmpty(t.Hash))
	m.Status = t.Status
	m.Size = int64OrZero(t.Size)
	m.Downloaded = int64OrZero(t.Downloaded)
	m.DownSpeed = int64OrZero(t.DownSpeed)
	m.UpSpeed = int64OrZero(t.UpSpeed)
	m.ETA = int64OrZero(t.EstimatedTime)
	m.FileID = int64OrZero(t.FileID)
	m.SaveParentID = int64OrZero(t.SaveParentID)
	m.ErrorMessage = strOrEmpty(t.ErrorMessage)
	if t.Availability != nil {
		m.Availability = *t.Availability
	}
	if t.StartedAt != nil {
		m.CreatedAt = t.StartedAt.Time
	}
	if t.FinishedAt != nil {
		m.FinishedAt = t.FinishedAt.Time
	}
	return m
}

// File mirrors a remote file record.
type File struct {
	ID          int64  `json:"id"`
	ParentID    int64  `json:"parent_id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	FileType    string `json:"file_type"`
	Size        int64  `json:"size"`
	CreatedAt   *Time  `json:"created_at"`
}

// IsDir returns true if f is a folder.
func (f File) IsDir() bool {
	return strings.EqualFold(f.FileType, FileTypeFolder)
}

// FileList is the result of listing a remote file node: the node itself plus
// its direct children.
type FileList struct {
	Parent File   `json:"parent"`
	Files  []File `json:"files"`
}

// AccountInfo holds the account fields the bridge reports and verifies at
// startup.
type AccountInfo struct {
	Username string `json:"username"`
	Mail     string `json:"mail"`
	Disk     struct {
		Avail int64 `json:"avail"`
		Used  int64 `json:"used"`
		Size  int64 `json:"size"`
	} `json:"disk"`
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func int64OrZero(i *int64) int64 {
	if i == nil {
		return 0
	}
	return *i
}
