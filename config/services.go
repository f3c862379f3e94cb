package config

import (
	"fmt"

	"github.com/wyciszone/fpgrowth-with-weight/filestore"
	serviceDisk "github.com/wyciszone/fpgrowth-with-weight/services/disk"
	serviceGCS "github.com/wyciszone/fpgrowth-with-weight/services/gcstorage"
	serviceS3 "github.com/wyciszone/fpgrowth-with-weight/services/s3"
)

// NewFileManager returns the storage driver selected by c.Storage.
func (c *Configuration) NewFileManager() (filestore.FileManager, error) {
	switch c.Storage {
	case StorageDisk:
		return serviceDisk.New(c.BaseDir), nil
	case StorageGCS:
		gcsd, err := serviceGCS.New(c.BucketName)
		if err != nil {
			return nil, err
		}
		return gcsd, nil
	case StorageS3:
		return serviceS3.New(c.BucketName, c.Region), nil
	}
	return nil, fmt.Errorf("storage [ %s ] not recognised", c.Storage)
}
