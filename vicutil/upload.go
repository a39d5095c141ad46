/*
Copyright © 2024 the vicparam authors.
This file is part of vicparam.

vicparam is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

vicparam is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with vicparam.  If not, see <http://www.gnu.org/licenses/>.
*/

package vicutil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	files [][2]string
	err   error
	dir   string
}

// uploadOutput uploads every file registered by maybeUpload.
func (u *uploader) uploadOutput(ctx context.Context) error {
	if u.err != nil {
		return u.err
	}
	for _, files := range u.files {
		if err := u.upload(ctx, files[0], files[1]); err != nil {
			return err
		}
	}
	return nil
}

func (u *uploader) upload(ctx context.Context, local, remote string) error {
	r, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("vicparam: opening file '%s' for upload: %s", local, err)
	}
	defer r.Close()
	url, err := url.Parse(remote)
	if err != nil {
		return fmt.Errorf("vicparam: parsing url '%s' for upload: %s", remote, err)
	}
	bucket, err := OpenBucket(ctx, url.Scheme+"://"+url.Host)
	if err != nil {
		return fmt.Errorf("vicparam: opening bucket to upload file '%s': %s", remote, err)
	}
	w, err := bucket.NewWriter(ctx, strings.TrimPrefix(url.Path, "/"), nil)
	if err != nil {
		return fmt.Errorf("vicparam: opening writer to upload file '%s': %s", remote, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("vicparam: uploading file '%s' to '%s': %s", local, remote, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("vicparam: uploading file '%s' to '%s': %s", local, remote, err)
	}
	return nil
}

// maybeUpload checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will then be uploaded to blob storage when
// uploadOutput method is run.
func (u *uploader) maybeUpload(path string) string {
	if u.err != nil {
		return ""
	}
	if !IsBlob(path) {
		return path
	}
	if u.dir == "" {
		u.dir, u.err = ioutil.TempDir("", "vicparam")
		if u.err != nil {
			return ""
		}
	}
	files := expandShp(path)
	for _, f := range files {
		u.files = append(u.files, [2]string{
			filepath.Join(u.dir, filepath.Base(f)),
			f,
		})
	}
	return filepath.Join(u.dir, filepath.Base(files[0]))
}
