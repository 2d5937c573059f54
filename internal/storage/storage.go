// Package storage stores uploaded documents on the local filesystem or an
// S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type Disk interface {
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

type Options struct {
	Driver        string
	LocalRoot     string
	PublicBaseURL string

	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3Key      string
	S3Secret   string
	S3URL      string
}

func New(ctx context.Context, o Options) (Disk, error) {
	switch strings.ToLower(o.Driver) {
	case "", "local":
		return NewLocal(o.LocalRoot, strings.TrimRight(o.PublicBaseURL, "/")+"/uploads"), nil
	case "s3":
		return NewS3(ctx, o)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", o.Driver)
	}
}

var allowedDocs = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// DocumentPath builds a unique key under dir for an uploaded document and
// returns its content type. Only PDF and Word files are accepted.
func DocumentPath(dir, filename string) (string, string, error) {
	ext := strings.ToLower(path.Ext(filename))
	ct, ok := allowedDocs[ext]
	if !ok {
		return "", "", fmt.Errorf("unsupported file type %q", ext)
	}
	return path.Join(dir, uuid.NewString()+ext), ct, nil
}
