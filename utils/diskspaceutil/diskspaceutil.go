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
package diskspaceutil

import "syscall"

// DiskSpace holds space usage of a filesystem.
type DiskSpace struct {
	TotalBytes uint64
	FreeBytes  uint64
	UsedBytes  uint64
	Util       float64
}

// PathUsage returns the space usage of the filesystem containing path.
func PathUsage(path string) (DiskSpace, error) {
	fs := syscall.Statfs_t{}
	if err := syscall.Statfs(path, &fs); err != nil {
		return DiskSpace{}, err
	}
	total := fs.Blocks * uint64(fs.Bsize)
	free := fs.Bavail * uint64(fs.Bsize)
	used := total - free
	return DiskSpace{
		TotalBytes: total,
		FreeBytes:  free,
		UsedBytes:  used,
		Util:       float64(used) / float64(total),
	}, nil
}

// Usage returns the space usage of the root filesystem.
func Usage() (DiskSpace, error) {
	return PathUsage("/")
}
