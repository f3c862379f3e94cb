package gcstorage

import (
	"context"
	"fmt"
	"io"

	"github.com/wyciszone/fpgrowth-with-weight/filestore"

	"cloud.google.com/go/storage"
	log "github.com/sirupsen/logrus"
)

var _ filestore.FileManager = (*GCSDriver)(nil)

type GCSDriver struct {
	client     *storage.Client
	BucketName string
}

// New uses application default credentials.
func New(bucketName string) (*GCSDriver, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	d := &GCSDriver{
		BucketName: bucketName,
		client:     client,
	}
	return d, nil
}

func (gcsd *GCSDriver) Create(dir, fileName string, reader io.ReadSeeker) error {
	ctx := context.Background()
	obj := gcsd.client.Bucket(gcsd.BucketName).Object(dir + fileName)
	w := obj.NewWriter(ctx)
	if _, err := io.Copy(w, reader); err != nil {
		log.WithError(err).WithField("object", dir+fileName).Error("Failed to upload object")
		w.Close()
		return err
	}
	return w.Close()
}

func (gcsd *GCSDriver) Get(dir, fileName string) (io.ReadCloser, error) {
	ctx := context.Background()
	obj := gcsd.client.Bucket(gcsd.BucketName).Object(dir + fileName)
	return obj.NewReader(ctx)
}

func (gcsd *GCSDriver) GetBucketName() string {
	return gcsd.BucketName
}

func (gcsd *GCSDriver) GetRunDir(runID string) string {
	return fmt.Sprintf("runs/%s/", runID)
}

func (gcsd *GCSDriver) GetReportFilePathAndName(runID, format string) (string, string) {
	return gcsd.GetRunDir(runID), fmt.Sprintf("top_patterns.%s", format)
}

func (gcsd *GCSDriver) GetTreeSnapshotFilePathAndName(runID string) (string, string) {
	return gcsd.GetRunDir(runID), "fptree.txt"
}
