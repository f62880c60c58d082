package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gantryci/gantry/pkg/auth"
	"github.com/gantryci/gantry/pkg/dist"
	"github.com/gantryci/gantry/pkg/errors"
)

// HTTPUploader uploads distribution files to a package index over HTTP. Each
// artifact is sent as a multipart POST with the file content and its sha256
// digest; the configured authenticator is applied to every request.
type HTTPUploader struct {
	client    *http.Client
	indexURL  string
	auth      auth.Authenticator
	userAgent string
}

// DefaultUploadTimeout bounds a single artifact upload.
const DefaultUploadTimeout = 5 * time.Minute

// NewHTTPUploader creates an uploader for the given index URL.
func NewHTTPUploader(indexURL string, authenticator auth.Authenticator, timeout time.Duration) *HTTPUploader {
	if timeout <= 0 {
		timeout = DefaultUploadTimeout
	}
	if authenticator == nil {
		authenticator = auth.None{}
	}
	return &HTTPUploader{
		client:    &http.Client{Timeout: timeout},
		indexURL:  indexURL,
		auth:      authenticator,
		userAgent: "gantry/" + Version,
	}
}

// Version is the client version reported in the upload User-Agent.
const Version = "0.1.0"

// Upload sends one artifact to the index. Any transport error or non-2xx
// response is an upload failure; the uploader itself never retries.
func (u *HTTPUploader) Upload(ctx context.Context, artifact dist.Artifact) error {
	body, contentType, err := u.buildRequestBody(artifact)
	if err != nil {
		return errors.Wrap(errors.ErrUploadFailed, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.indexURL, body)
	if err != nil {
		return errors.Wrap(errors.ErrUploadFailed, err.Error())
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", u.userAgent)
	if err := u.auth.Apply(req); err != nil {
		return errors.Wrap(errors.ErrUploadFailed, err.Error())
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrUploadFailed, "%s: %v", filepath.Base(artifact.Path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Wrapf(errors.ErrUploadFailed, "%s: index returned %d: %s",
			filepath.Base(artifact.Path), resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}

func (u *HTTPUploader) buildRequestBody(artifact dist.Artifact) (io.Reader, string, error) {
	file, err := os.Open(artifact.Path)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("kind", string(artifact.Kind)); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("sha256_digest", artifact.SHA256); err != nil {
		return nil, "", err
	}

	part, err := writer.CreateFormFile("content", filepath.Base(artifact.Path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, writer.FormDataContentType(), nil
}

// String describes the upload target, for logs.
func (u *HTTPUploader) String() string {
	return fmt.Sprintf("index %s (auth: %s)", u.indexURL, u.auth.Type())
}
