package network

import (
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"io"
)

// S3Upload copies one file to S3. Typical usage:
//
//	upload := NewS3Upload(constants.AWSVirginia, config.MirrorBucket,
//		"mets/METS.<uuid>.xml", "application/xml")
//	upload.AddMetadata("uuid", "<uuid>")
//	reader, err := fs.Open("/path/to/METS.<uuid>.xml")
//	if err != nil {
//		... whatever ...
//	}
//	defer reader.Close()
//	upload.Send(reader)
//	if upload.ErrorMessage != "" {
//		... do something ...
//	}
//	urlOfNewItem := upload.Response.Location
type S3Upload struct {
	AWSRegion    string
	Endpoint     string // optional, see GetS3Session
	ErrorMessage string
	UploadInput  *s3manager.UploadInput
	Response     *s3manager.UploadOutput
	session      *session.Session
}

// Creates a new S3 upload object. Param region is the name of the AWS
// region to upload to, like constants.AWSVirginia. Param key is the S3
// key of the new object, and contentType is a standard Content-Type
// header, like application/xml.
func NewS3Upload(region, bucket, key, contentType string) *S3Upload {
	uploadInput := &s3manager.UploadInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}
	uploadInput.Metadata = make(map[string]*string)
	return &S3Upload{
		AWSRegion:   region,
		UploadInput: uploadInput,
	}
}

// Returns an S3 session for this upload, or nil if we can't get
// one. In that case, ErrorMessage says why.
func (client *S3Upload) GetSession() *session.Session {
	if client.session == nil {
		var err error
		client.session, err = GetS3Session(client.AWSRegion, client.Endpoint)
		if err != nil {
			client.ErrorMessage = err.Error()
		}
	}
	return client.session
}

// Adds x-amz-meta-<key> metadata to the upload.
func (client *S3Upload) AddMetadata(key, value string) {
	client.UploadInput.Metadata[key] = &value
}

// Upload a file to S3. If ErrorMessage == "", the upload succeeded.
// Check S3Upload.Response.Location for the item's S3 URL.
// Caller is responsible for closing the reader.
func (client *S3Upload) Send(reader io.Reader) {
	_session := client.GetSession()
	if _session == nil {
		return
	}
	client.UploadInput.Body = reader
	uploader := s3manager.NewUploader(_session)
	uploader.LeavePartsOnError = false // we have to pay for abandoned parts
	var err error
	client.Response, err = uploader.Upload(client.UploadInput)
	if err != nil {
		client.ErrorMessage = err.Error()
	}
}
