//go:generate mockgen -destination=./mocks/publish.go . Uploader
package publish

import (
	"context"

	"github.com/gantryci/gantry/pkg/dist"
)

// Uploader sends one built distribution to the package index.
type Uploader interface {
	// Upload transmits the artifact to the index. A nil return means the
	// index accepted the file.
	Upload(ctx context.Context, artifact dist.Artifact) error
}
