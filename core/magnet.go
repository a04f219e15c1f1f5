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
	"encoding/base32"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Magnet holds the fields of a magnet uri the bridge cares about.
type Magnet struct {
	Name     string
	InfoHash InfoHash
}

const _btihPrefix = "urn:btih:"

// ParseMagnet extracts the display name and info hash from a magnet uri.
// The hash may be hex (40 chars) or base32 (32 chars) encoded.
func ParseMagnet(s string) (*Magnet, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parse uri: %s", err)
	}
	if u.Scheme != "magnet" {
		return nil, fmt.Errorf("invalid scheme: %q", u.Scheme)
	}
	q := u.Query()

	var h InfoHash
	var found bool
	for _, xt := range q["xt"] {
		if !strings.HasPrefix(xt, _btihPrefix) {
			continue
		}
		raw := strings.TrimPrefix(xt, _btihPrefix)
		switch len(raw) {
		case 40:
			h, err = NewInfoHashFromHex(strings.ToLower(raw))
			if err != nil {
				return nil, fmt.Errorf("parse btih: %s", err)
			}
		case 32:
			b, err := base32.StdEncoding.DecodeString(strings.ToUpper(raw))
			if err != nil {
				return nil, fmt.Errorf("parse base32 btih: %s", err)
			}
			copy(h[:], b)
		default:
			return nil, fmt.Errorf("invalid btih length: %d", len(raw))
		}
		found = true
		break
	}
	if !found {
		return nil, errors.New("magnet uri missing btih")
	}
	return &Magnet{Name: q.Get("dn"), InfoHash: h}, nil
}
