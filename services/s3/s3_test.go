package s3

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var s3Driver *S3Driver

// TODO: add Create and Get tests against localstack
func TestMain(m *testing.M) {
	s3Driver = New("fpminer-dev-test", "us-east-1")
	os.Exit(m.Run())
}

func TestGetReportFilePathAndName(t *testing.T) {
	runID := uuid.New().String()
	path, name := s3Driver.GetReportFilePathAndName(runID, "xlsx")
	assert.Equal(t, "runs/"+runID+"/", path)
	assert.Equal(t, "top_patterns.xlsx", name)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "runs/a/fptree.txt", s3Driver.key("runs/a/", "fptree.txt"))
	assert.Equal(t, "runs/a/fptree.txt", s3Driver.key("runs/a", "fptree.txt"))
	assert.Equal(t, "fptree.txt", s3Driver.key("", "fptree.txt"))
}
