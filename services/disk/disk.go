package disk

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wyciszone/fpgrowth-with-weight/filestore"

	log "github.com/sirupsen/logrus"
)

var _ filestore.FileManager = (*DiskDriver)(nil)

type DiskDriver struct {
	// This can be used as namespace
	// to differentiate files across multiple instances of DiskDriver
	// Analogus to bucket name
	baseDir string
}

func New(baseDir string) *DiskDriver {
	return &DiskDriver{baseDir: strings.TrimSuffix(baseDir, "/")}
}

func MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func (dd *DiskDriver) Create(path, fileName string, reader io.ReadSeeker) error {
	err := MkdirAll(path)
	if err != nil {
		log.WithError(err).Errorln("Failed to create dir")
		return err
	}

	if !strings.HasSuffix(path, "/") {
		// Append / to the end if not present.
		path = path + "/"
	}
	file, err := os.Create(path + fileName)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(file, reader)
	return err
}

// Get opens a file in read only mode.
// Caller should take care of closing the returned io.ReadCloser.
func (dd *DiskDriver) Get(path, fileName string) (io.ReadCloser, error) {
	log.WithFields(log.Fields{
		"Path":     path,
		"FileName": fileName,
	}).Debug("DiskDriver Opening file")

	if path != "" && !strings.HasSuffix(path, "/") {
		// Append / to the end if not present.
		path = path + "/"
	}
	return os.OpenFile(path+fileName, os.O_RDONLY, 0444)
}

func (dd *DiskDriver) GetBucketName() string {
	return dd.baseDir
}

func (dd *DiskDriver) GetRunDir(runID string) string {
	return fmt.Sprintf("%s/runs/%s/", dd.baseDir, runID)
}

func (dd *DiskDriver) GetReportFilePathAndName(runID, format string) (string, string) {
	return dd.GetRunDir(runID), fmt.Sprintf("top_patterns.%s", format)
}

func (dd *DiskDriver) GetTreeSnapshotFilePathAndName(runID string) (string, string) {
	return dd.GetRunDir(runID), "fptree.txt"
}
