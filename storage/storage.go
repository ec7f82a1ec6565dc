package storage

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/helloworldpark/tickle-stock-info/commons"
	"github.com/helloworldpark/tickle-stock-info/logger"
)

// Prefix of every object written by this service.
const Prefix = "tickle-stock-info/"

const publicHost = "https://storage.googleapis.com/"

// ErrStorageDisabled means no bucket is configured.
var ErrStorageDisabled = errors.New("storage is disabled")

var newError = commons.NewTaggedWrapper("Storage")

// Uploader publishes files to a Cloud Storage bucket.
type Uploader struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
}

// NewUploader connects to bucketName with the default credentials.
// An empty bucketName returns ErrStorageDisabled.
func NewUploader(ctx context.Context, bucketName string) (*Uploader, error) {
	if bucketName == "" {
		return nil, ErrStorageDisabled
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, newError(err, "failed to create client")
	}
	return &Uploader{client: client, bucket: client.Bucket(bucketName), name: bucketName}, nil
}

// Close closes the client.
func (u *Uploader) Close() error {
	if u == nil || u.client == nil {
		return nil
	}
	return u.client.Close()
}

// Write uploads contents under Prefix, makes it public and returns its URL.
func (u *Uploader) Write(ctx context.Context, contents []byte, filename, contentType string) (string, error) {
	if u == nil || u.bucket == nil {
		return "", ErrStorageDisabled
	}
	filePath := ObjectPath(filename)
	object := u.bucket.Object(filePath)

	writer := object.NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := writer.Write(contents); err != nil {
		writer.Close()
		return "", newError(err, "failed to write "+filePath)
	}
	if err := writer.Close(); err != nil {
		return "", newError(err, "failed to write "+filePath)
	}
	if err := object.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return "", newError(err, "failed to publish "+filePath)
	}
	logger.Info("[Storage] Uploaded %s (%d bytes)", filePath, len(contents))
	return PublicURL(u.name, filePath), nil
}

// Remove deletes every object under Prefix whose name contains contains.
func (u *Uploader) Remove(ctx context.Context, contains string) error {
	if u == nil || u.bucket == nil {
		return ErrStorageDisabled
	}
	it := u.bucket.Objects(ctx, &storage.Query{Prefix: Prefix})
	var toDelete []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return newError(err, "failed to list objects")
		}
		if strings.Contains(attrs.Name, contains) {
			toDelete = append(toDelete, attrs.Name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(toDelete)))

	var lastErr error
	for _, path := range toDelete {
		if err := u.bucket.Object(path).Delete(ctx); err != nil {
			logger.Warn("[Storage] Failed to delete %s: %v", path, err)
			lastErr = newError(err, "failed to delete "+path)
		}
	}
	return lastErr
}

// ObjectPath returns the object name of filename.
func ObjectPath(filename string) string {
	return Prefix + strings.TrimLeft(filename, "/")
}

// PublicURL returns the public address of an object.
func PublicURL(bucket, objectPath string) string {
	parts := strings.Split(objectPath, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return publicHost + bucket + "/" + strings.Join(parts, "/")
}
