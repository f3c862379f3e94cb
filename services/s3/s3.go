package s3

import (
	"fmt"
	"io"

	"github.com/wyciszone/fpgrowth-with-weight/filestore"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	log "github.com/sirupsen/logrus"
)

const (
	separator = "/"
)

var _ filestore.FileManager = (*S3Driver)(nil)

type S3Driver struct {
	s3         *s3.S3
	BucketName string
	Region     string
}

func New(bucketName, region string) *S3Driver {
	session := session.New()
	s3 := s3.New(session, aws.NewConfig().WithRegion(region))
	return &S3Driver{s3: s3, BucketName: bucketName, Region: region}
}

func (sd *S3Driver) key(dir, fileName string) string {
	if dir == "" {
		return fileName
	}
	if dir[len(dir)-1:] == separator {
		return dir + fileName
	}
	return dir + separator + fileName
}

func (sd *S3Driver) Create(dir, fileName string, reader io.ReadSeeker) error {
	log.WithFields(log.Fields{
		"Dir":        dir,
		"BucketName": sd.BucketName,
		"Region":     sd.Region,
	}).Debug("S3Driver Creating file")

	input := &s3.PutObjectInput{
		Bucket: aws.String(sd.BucketName),
		Body:   reader,
		Key:    aws.String(sd.key(dir, fileName)),
	}
	_, err := sd.s3.PutObject(input)
	return err
}

func (sd *S3Driver) Get(dir, fileName string) (io.ReadCloser, error) {
	input := s3.GetObjectInput{
		Bucket: aws.String(sd.BucketName),
		Key:    aws.String(sd.key(dir, fileName)),
	}
	op, err := sd.s3.GetObject(&input)
	if err != nil {
		return nil, err
	}
	return op.Body, nil
}

func (sd *S3Driver) GetBucketName() string {
	return sd.BucketName
}

func (sd *S3Driver) GetRunDir(runID string) string {
	return fmt.Sprintf("runs/%s/", runID)
}

func (sd *S3Driver) GetReportFilePathAndName(runID, format string) (string, string) {
	return sd.GetRunDir(runID), fmt.Sprintf("top_patterns.%s", format)
}

func (sd *S3Driver) GetTreeSnapshotFilePathAndName(runID string) (string, string) {
	return sd.GetRunDir(runID), "fptree.txt"
}
