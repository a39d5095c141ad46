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
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
	"github.com/sirupsen/logrus"
)

// maxRetries is the number of times a failed download is retried.
const maxRetries = 3

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL or a blob storage location.
// If it is, it downloads the file and returns the path to the
// downloaded file.
// For shapefiles, it downloads all associated files and
// returns the path to the file with the ".shp" extension.
// Failures are logged and the given path is returned.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) string {
	if path == "" {
		return path
	}
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path
	}

	var o string
	var err error
	switch {
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		o, err = downloadHTTP(path, log)
	case IsBlob(path):
		o, err = downloadBlob(ctx, path)
	default:
		return path
	}
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("download failed")
		return path
	}
	log.WithFields(logrus.Fields{"from": path, "to": o}).Debug("downloaded input")
	return o
}

// retry runs f with exponential backoff.
func retry(f func() error, log logrus.FieldLogger) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	return backoff.RetryNotify(f, backoff.WithMaxRetries(b, maxRetries),
		func(err error, d time.Duration) {
			log.WithError(err).Infof("retrying in %v", d)
		})
}

// downloadHTTP downloads a file from the specified URL and returns
// the path to the downloaded file.
func downloadHTTP(path string, log logrus.FieldLogger) (string, error) {
	// Prepare a temporary directory for the downloads.
	dir, err := ioutil.TempDir("", "vicparam")
	if err != nil {
		return "", fmt.Errorf("vicparam: creating temporary download directory: %v", err)
	}
	fnames := expandShp(path)
	for _, fname := range fnames {
		local := filepath.Join(dir, filepath.Base(fname))
		err := retry(func() error {
			resp, err := http.Get(fname)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("vicparam: downloading %s: %s", fname, resp.Status)
			}
			return writeFile(local, resp.Body)
		}, log)
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, filepath.Base(fnames[0])), nil
}

func writeFile(path string, r io.Reader) error {
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// Even if name contains subdirectories, only the base directory name will be
// used when opening the bucket.
// The currently accepted storage providers are "file" for the local filesystem
// (e.g., for testing), "gs" for Google Cloud Storage, and "s3" for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	url, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("vicutil.OpenBucket: %v", err)
	}
	switch url.Scheme {
	case "file":
		return fileblob.NewBucket(url.Hostname())
	case "gs":
		return gsBucket(ctx, url.Hostname())
	case "s3":
		return s3Bucket(ctx, url.Hostname())
	default:
		return nil, fmt.Errorf("vicutil.OpenBucket: invalid provider %s", url.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name)
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, path string) (string, error) {
	url, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	bucket, err := OpenBucket(ctx, url.Scheme+"://"+url.Host)
	if err != nil {
		return "", err
	}
	dir, err := ioutil.TempDir("", "vicparam")
	if err != nil {
		return "", fmt.Errorf("vicparam: creating temporary download directory: %v", err)
	}
	fnames := expandShp(strings.TrimPrefix(url.Path, "/"))
	for _, key := range fnames {
		r, err := bucket.NewReader(ctx, key)
		if err != nil {
			return "", err
		}
		err = writeFile(filepath.Join(dir, filepath.Base(key)), r)
		r.Close()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, filepath.Base(fnames[0])), nil
}

// expandShp returns the given file + associated [.dbf, .shx, .prj]
// files if the given file has the .shp extension, and returns the given
// file otherwise
func expandShp(filename string) []string {
	o := []string{filename}
	ext := filepath.Ext(filename)
	if ext != ".shp" {
		return o
	}
	for _, newExt := range []string{".dbf", ".shx", ".prj"} {
		o = append(o, filename[0:len(filename)-4]+newExt)
	}
	return o
}
