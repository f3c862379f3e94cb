package filestore

import (
	"io"
)

type FileManager interface {
	Create(dir, fileName string, reader io.ReadSeeker) error
	Get(dir, fileName string) (io.ReadCloser, error)
	GetBucketName() string
	GetRunDir(runID string) string
	GetReportFilePathAndName(runID, format string) (string, string)
	GetTreeSnapshotFilePathAndName(runID string) (string, string)
}
