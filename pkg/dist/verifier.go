package dist

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/mholt/archives"

	"github.com/gantryci/gantry/pkg/errors"
)

// MinArtifactSize rejects obviously truncated archives (the smallest valid
// gzip stream is about 20 bytes).
const MinArtifactSize = 50

// Verifier checks the structural integrity of built distributions before
// they are allowed anywhere near an upload.
type Verifier struct{}

// NewVerifier creates a new Verifier instance.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifyPair verifies both halves of the artifact pair against the metadata
// they were built from.
func (v *Verifier) VerifyPair(ctx context.Context, meta *Metadata, pair *Pair) error {
	for _, artifact := range pair.Artifacts() {
		if err := v.VerifyArtifact(ctx, meta, artifact); err != nil {
			return err
		}
	}
	return nil
}

// VerifyArtifact checks one distribution file: it must exist, meet the
// minimum size, report the recorded digest, open as an archive, and contain
// a metadata file matching the expected name and version. Embedded file
// hashes are recomputed and compared.
func (v *Verifier) VerifyArtifact(ctx context.Context, meta *Metadata, artifact Artifact) error {
	info, err := os.Stat(artifact.Path)
	if err != nil {
		return errors.Wrapf(errors.ErrVerifyFailed, "%s: %v", artifact.Path, err)
	}
	if info.Size() < MinArtifactSize {
		return errors.Wrapf(errors.ErrVerifyFailed, "%s: file too small (%d bytes)", artifact.Path, info.Size())
	}
	if artifact.SHA256 != "" {
		digest, err := fileSHA256(artifact.Path)
		if err != nil {
			return errors.Wrapf(errors.ErrVerifyFailed, "%s: %v", artifact.Path, err)
		}
		if digest != artifact.SHA256 {
			return errors.Wrapf(errors.ErrVerifyFailed, "%s: checksum mismatch", artifact.Path)
		}
	}

	fsys, err := archives.FileSystem(ctx, artifact.Path, nil)
	if err != nil {
		return errors.Wrapf(errors.ErrVerifyFailed, "%s: not a readable archive: %v", artifact.Path, err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer closer.Close()
	}

	prefix := fmt.Sprintf("%s-%s", meta.Name, meta.NormalizedVersion())
	metaFile, err := fsys.Open(path.Join(prefix, MetadataFileName))
	if err != nil {
		return errors.Wrapf(errors.ErrVerifyFailed, "%s: missing %s: %v", artifact.Path, MetadataFileName, err)
	}
	defer metaFile.Close()

	var embedded Metadata
	if err := json.NewDecoder(metaFile).Decode(&embedded); err != nil {
		return errors.Wrapf(errors.ErrVerifyFailed, "%s: bad metadata: %v", artifact.Path, err)
	}
	if embedded.Name != meta.Name || embedded.Version != meta.Version {
		return errors.Wrapf(errors.ErrVerifyFailed,
			"%s: metadata mismatch - expected %s %s, got %s %s",
			artifact.Path, meta.Name, meta.Version, embedded.Name, embedded.Version)
	}

	return verifyEmbeddedHashes(fsys, prefix, &embedded)
}

func verifyEmbeddedHashes(fsys fs.FS, prefix string, meta *Metadata) error {
	for relPath, want := range meta.Hashes {
		file, err := fsys.Open(path.Join(prefix, relPath))
		if err != nil {
			return errors.Wrapf(errors.ErrVerifyFailed, "missing file %s: %v", relPath, err)
		}
		hash := sha256.New()
		if _, err := io.Copy(hash, file); err != nil {
			file.Close()
			return errors.Wrapf(errors.ErrVerifyFailed, "failed to read %s: %v", relPath, err)
		}
		if err := file.Close(); err != nil {
			return errors.Wrap(errors.ErrVerifyFailed, err.Error())
		}
		if got := fmt.Sprintf("%x", hash.Sum(nil)); got != want {
			return errors.Wrapf(errors.ErrVerifyFailed, "hash mismatch for %s", relPath)
		}
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
