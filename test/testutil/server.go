package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Upload is one distribution received by the test index server.
type Upload struct {
	Kind   string
	Digest string
	Name   string
	Size   int64
}

// UploadServer is a test double for a package index upload endpoint. It
// accepts multipart uploads and records them in arrival order.
type UploadServer struct {
	Server *httptest.Server

	mu      sync.Mutex
	uploads []Upload
	status  int
}

// NewUploadServer starts a server that accepts every upload with 200 OK.
// The server is shut down when the test finishes.
func NewUploadServer(t *testing.T) *UploadServer {
	t.Helper()

	us := &UploadServer{status: http.StatusOK}
	us.Server = httptest.NewServer(http.HandlerFunc(us.handle))
	t.Cleanup(us.Server.Close)
	return us
}

// URL returns the upload endpoint URL.
func (us *UploadServer) URL() string {
	return us.Server.URL
}

// FailWith makes the server answer every subsequent upload with the given
// status code.
func (us *UploadServer) FailWith(status int) {
	us.mu.Lock()
	defer us.mu.Unlock()
	us.status = status
}

// Uploads returns a copy of the uploads received so far.
func (us *UploadServer) Uploads() []Upload {
	us.mu.Lock()
	defer us.mu.Unlock()
	return append([]Upload(nil), us.uploads...)
}

// Kinds returns the kind field of each received upload in arrival order.
func (us *UploadServer) Kinds() []string {
	us.mu.Lock()
	defer us.mu.Unlock()
	kinds := make([]string, len(us.uploads))
	for i, u := range us.uploads {
		kinds[i] = u.Kind
	}
	return kinds
}

func (us *UploadServer) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	upload := Upload{
		Kind:   r.FormValue("kind"),
		Digest: r.FormValue("sha256_digest"),
	}
	if file, header, err := r.FormFile("content"); err == nil {
		upload.Name = header.Filename
		upload.Size = header.Size
		_ = file.Close()
	}

	us.mu.Lock()
	us.uploads = append(us.uploads, upload)
	status := us.status
	us.mu.Unlock()

	w.WriteHeader(status)
}
