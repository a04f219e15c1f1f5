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
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	"github.com/stevedore/stevedore/utils/httputil"
)

// ListFilter scopes a transfer listing to one bridge instance. The remote
// side carries two independent scoping mechanisms: the folder transfers are
// saved under and the source tag submitted on add. Parent id filtering is
// preferred when configured; source matching covers listings where the
// remote side omits or ignores the parent id.
type ListFilter struct {
	Source   string
	ParentID int64
}

func (f ListFilter) match(t Transfer) bool {
	if f.ParentID != 0 {
		return t.SaveParentID != nil && *t.SaveParentID == f.ParentID
	}
	if f.Source != "" {
		return t.Source != nil && *t.Source == f.Source
	}
	return true
}

// Client wraps the remote cloud service's REST endpoints consumed by the
// bridge.
type Client interface {
	AccountInfo(ctx context.Context) (AccountInfo, error)

	ListTransfers(ctx context.Context, filter ListFilter) ([]Transfer, error)
	GetTransfer(ctx context.Context, id uint64) (Transfer, error)
	AddTransfer(ctx context.Context, rawurl string, parentID int64, source string) (Transfer, error)
	UploadTorrent(ctx context.Context, name string, metainfo []byte, parentID int64, source string) (Transfer, error)
	RemoveTransfer(ctx context.Context, id uint64) error

	ListFiles(ctx context.Context, fileID int64) (*FileList, error)
	FileURL(ctx context.Context, fileID int64) (string, error)
	CreateFolder(ctx context.Context, name string, parentID int64) (File, error)
	DeleteFile(ctx context.Context, fileID int64) error
}

// HTTPClient defines the Client implementation.
type HTTPClient struct {
	config Config
}

// New returns a new HTTPClient.
func New(config Config) *HTTPClient {
	return &HTTPClient{config.applyDefaults()}
}

// AccountInfo returns the account the configured token belongs to.
func (c *HTTPClient) AccountInfo(ctx context.Context) (AccountInfo, error) {
	var result struct {
		Info AccountInfo `json:"info"`
	}
	err := c.get(ctx, "/account/info", nil, &result)
	return result.Info, err
}

// ListTransfers lists live transfers matching filter. The parent id is also
// passed to the remote side, which scopes the listing server-side on
// endpoints that support it; the local filter makes the result correct
// either way.
func (c *HTTPClient) ListTransfers(ctx context.Context, filter ListFilter) ([]Transfer, error) {
	q := url.Values{}
	if filter.ParentID != 0 {
		q.Set("parent_id", strconv.FormatInt(filter.ParentID, 10))
	}
	var result struct {
		Transfers []Transfer `json:"transfers"`
	}
	if err := c.get(ctx, "/transfers/list", q, &result); err != nil {
		return nil, err
	}
	var transfers []Transfer
	for _, t := range result.Transfers {
		if filter.match(t) {
			transfers = append(transfers, t)
		}
	}
	return transfers, nil
}

// GetTransfer returns the transfer identified by id.
func (c *HTTPClient) GetTransfer(ctx context.Context, id uint64) (Transfer, error) {
	var result struct {
		Transfer Transfer `json:"transfer"`
	}
	err := c.get(ctx, fmt.Sprintf("/transfers/%d", id), nil, &result)
	return result.Transfer, err
}

// AddTransfer submits a magnet link or torrent url, saved under parentID and
// tagged with source.
func (c *HTTPClient) AddTransfer(
	ctx context.Context, rawurl string, parentID int64, source string) (Transfer, error) {

	form := url.Values{}
	form.Set("url", rawurl)
	if parentID != 0 {
		form.Set("save_parent_id", strconv.FormatInt(parentID, 10))
	}
	if source != "" {
		form.Set("source", source)
	}
	var result struct {
		Transfer Transfer `json:"transfer"`
	}
	err := c.postForm(ctx, "/transfers/add", form, &result)
	return result.Transfer, err
}

// UploadTorrent uploads a torrent file, which the remote side turns into a
// transfer saved under parentID and tagged with source.
func (c *HTTPClient) UploadTorrent(
	ctx context.Context, name string, metainfo []byte, parentID int64, source string) (Transfer, error) {

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	if parentID != 0 {
		if err := w.WriteField("parent_id", strconv.FormatInt(parentID, 10)); err != nil {
			return Transfer{}, fmt.Errorf("write parent_id field: %s", err)
		}
	}
	if source != "" {
		if err := w.WriteField("source", source); err != nil {
			return Transfer{}, fmt.Errorf("write source field: %s", err)
		}
	}
	fw, err := w.CreateFormFile("file", name)
	if err != nil {
		return Transfer{}, fmt.Errorf("create form file: %s", err)
	}
	if _, err := fw.Write(metainfo); err != nil {
		return Transfer{}, fmt.Errorf("write form file: %s", err)
	}
	if err := w.Close(); err != nil {
		return Transfer{}, fmt.Errorf("close form: %s", err)
	}

	var result struct {
		Transfer Transfer `json:"transfer"`
	}
	resp, err := httputil.Post(
		c.config.API+"/files/upload",
		httputil.SendContext(ctx),
		httputil.SendTimeout(c.config.Timeout),
		httputil.SendHeaders(map[string]string{
			"Authorization": "Bearer " + c.config.Token,
			"Content-Type":  w.FormDataContentType(),
		}),
		httputil.SendBody(&b))
	if err != nil {
		return Transfer{}, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Transfer{}, fmt.Errorf("decode response: %s", err)
	}
	return result.Transfer, nil
}

// RemoveTransfer removes the transfer identified by id. An already-removed
// transfer is not an error.
func (c *HTTPClient) RemoveTransfer(ctx context.Context, id uint64) error {
	form := url.Values{}
	form.Set("transfer_ids", strconv.FormatUint(id, 10))
	err := c.postForm(ctx, "/transfers/remove", form, nil)
	if httputil.IsNotFound(err) {
		return nil
	}
	return err
}

// ListFiles returns the file node identified by fileID along with its direct
// children.
func (c *HTTPClient) ListFiles(ctx context.Context, fileID int64) (*FileList, error) {
	q := url.Values{}
	q.Set("parent_id", strconv.FormatInt(fileID, 10))
	var result FileList
	if err := c.get(ctx, "/files/list", q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FileURL resolves the direct download url for fileID.
func (c *HTTPClient) FileURL(ctx context.Context, fileID int64) (string, error) {
	var result struct {
		URL string `json:"url"`
	}
	if err := c.get(ctx, fmt.Sprintf("/files/%d/url", fileID), nil, &result); err != nil {
		return "", err
	}
	return result.URL, nil
}

// CreateFolder creates a folder named name under parentID.
func (c *HTTPClient) CreateFolder(ctx context.Context, name string, parentID int64) (File, error) {
	form := url.Values{}
	form.Set("name", name)
	form.Set("parent_id", strconv.FormatInt(parentID, 10))
	var result struct {
		File File `json:"file"`
	}
	err := c.postForm(ctx, "/files/create-folder", form, &result)
	return result.File, err
}

// DeleteFile deletes the remote file tree rooted at fileID. An already-gone
// tree is not an error.
func (c *HTTPClient) DeleteFile(ctx context.Context, fileID int64) error {
	form := url.Values{}
	form.Set("file_ids", strconv.FormatInt(fileID, 10))
	err := c.postForm(ctx, "/files/delete", form, nil)
	if httputil.IsNotFound(err) {
		return nil
	}
	return err
}

func (c *HTTPClient) get(
	ctx context.Context, path string, query url.Values, result interface{}) error {

	u := c.config.API + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	resp, err := httputil.Get(
		u,
		httputil.SendContext(ctx),
		httputil.SendTimeout(c.config.Timeout),
		httputil.SendHeaders(c.authHeaders()),
		httputil.SendRetry())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %s", err)
	}
	return nil
}

func (c *HTTPClient) postForm(
	ctx context.Context, path string, form url.Values, result interface{}) error {

	headers := c.authHeaders()
	headers["Content-Type"] = "application/x-www-form-urlencoded"
	resp, err := httputil.Post(
		c.config.API+path,
		httputil.SendContext(ctx),
		httputil.SendTimeout(c.config.Timeout),
		httputil.SendHeaders(headers),
		httputil.SendBody(strings.NewReader(form.Encode())))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %s", err)
	}
	return nil
}

func (c *HTTPClient) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.config.Token}
}

// EnsureFolder finds or creates a folder named name directly under parentID
// and returns its id. Used at startup to adopt the instance folder when no
// folder id is configured.
func EnsureFolder(ctx context.Context, client Client, name string, parentID int64) (int64, error) {
	listing, err := client.ListFiles(ctx, parentID)
	if err != nil {
		return 0, fmt.Errorf("list files: %s", err)
	}
	for _, f := range listing.Files {
		if f.IsDir() && strings.EqualFold(f.Name, name) {
			return f.ID, nil
		}
	}
	f, err := client.CreateFolder(ctx, name, parentID)
	if err != nil {
		return 0, fmt.Errorf("create folder: %s", err)
	}
	return f.ID, nil
}

var _ Client = (*HTTPClient)(nil)
