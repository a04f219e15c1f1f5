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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/stevedore/stevedore/utils/httputil"
)

// errNotLinkedYet signals that the user has not entered the device code yet.
var errNotLinkedYet = errors.New("code not linked yet")

// GetOOBCode requests a device code for the out-of-band OAuth flow. The user
// enters the code at put.io/link to authorize the bridge.
func GetOOBCode(config Config) (string, error) {
	config = config.applyDefaults()
	var result struct {
		Code string `json:"code"`
	}
	resp, err := httputil.Get(
		fmt.Sprintf("%s/oauth2/oob/code?app_id=%s", config.API, config.ClientID),
		httputil.SendTimeout(config.Timeout),
		httputil.SendRetry())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %s", err)
	}
	if result.Code == "" {
		return "", errors.New("remote service returned an empty code")
	}
	return result.Code, nil
}

// PollOOBToken polls until the user has linked code and a token is issued.
// Polls on a constant interval; gives up after ten minutes.
func PollOOBToken(ctx context.Context, config Config, code string) (string, error) {
	config = config.applyDefaults()

	var token string
	check := func() error {
		var result struct {
			OAuthToken string `json:"oauth_token"`
		}
		resp, err := httputil.Get(
			fmt.Sprintf("%s/oauth2/oob/code/%s", config.API, code),
			httputil.SendContext(ctx),
			httputil.SendTimeout(config.Timeout))
		if err != nil {
			if httputil.IsStatus(err, 400) || httputil.IsNotFound(err) {
				return backoff.Permanent(fmt.Errorf("code rejected: %s", err))
			}
			return err
		}
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %s", err))
		}
		if result.OAuthToken == "" {
			return errNotLinkedYet
		}
		token = result.OAuthToken
		return nil
	}

	b := backoff.WithContext(
		newConstantBackOffWithCap(5*time.Second, 10*time.Minute), ctx)
	if err := backoff.Retry(check, b); err != nil {
		return "", err
	}
	return token, nil
}

type cappedConstantBackOff struct {
	interval time.Duration
	deadline time.Time
}

func newConstantBackOffWithCap(interval, maxElapsed time.Duration) backoff.BackOff {
	return &cappedConstantBackOff{interval, time.Now().Add(maxElapsed)}
}

func (b *cappedConstantBackOff) NextBackOff() time.Duration {
	if time.Now().After(b.deadline) {
		return backoff.Stop
	}
	return b.interval
}

func (b *cappedConstantBackOff) Reset() {}
