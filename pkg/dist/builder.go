package dist

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"

	"github.com/gantryci/gantry/pkg/errors"
	"github.com/gantryci/gantry/pkg/fsutil"
)

// Kind distinguishes the two halves of the artifact pair.
type Kind string

// Artifact kinds.
const (
	KindSource Kind = "sdist"
	KindBinary Kind = "bdist"
)

// Artifact is one built distribution file.
type Artifact struct {
	Kind   Kind   `json:"kind"`
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// Pair is the build output: exactly one source distribution and one built
// distribution.
type Pair struct {
	Source Artifact `json:"source"`
	Binary Artifact `json:"binary"`
}

// Artifacts returns the pair in upload order: source first.
func (p *Pair) Artifacts() []Artifact {
	return []Artifact{p.Source, p.Binary}
}

// stagingExcludes are never copied into a distribution.
var stagingExcludes = map[string]bool{
	".git": true,
	".hg":  true,
}

// Builder produces the artifact pair from a source tree.
type Builder struct {
	Metadata  *Metadata
	SourceDir string
	OutputDir string

	// Exclude lists additional top-level entries to leave out of the
	// distributions (e.g. "dist", ".tox").
	Exclude []string

	tempDir string
}

// NewBuilder creates a builder for the given metadata and directories.
func NewBuilder(meta *Metadata, sourceDir, outputDir string) *Builder {
	return &Builder{
		Metadata:  meta,
		SourceDir: sourceDir,
		OutputDir: outputDir,
	}
}

// Build stages the source tree, embeds the metadata file and produces both
// archives. Either both artifacts exist on return or an error is returned
// and neither is usable.
func (b *Builder) Build(ctx context.Context) (*Pair, error) {
	if err := b.checkInput(); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "gantry-dist")
	if err != nil {
		return nil, errors.Wrap(errors.ErrBuildFailed, err.Error())
	}
	b.tempDir = dir
	defer os.RemoveAll(dir)

	b.Metadata.Hashes = make(map[string]string)

	if err := b.stageSource(); err != nil {
		return nil, errors.Wrap(errors.ErrBuildFailed, err.Error())
	}
	if err := b.writeMetadataFile(); err != nil {
		return nil, errors.Wrap(errors.ErrBuildFailed, err.Error())
	}

	if err := fsutil.EnsureDir(b.OutputDir); err != nil {
		return nil, errors.Wrap(errors.ErrBuildFailed, err.Error())
	}

	sourcePath := b.outputFile("tar.gz")
	if err := b.createArchive(ctx, sourcePath, archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}); err != nil {
		return nil, errors.Wrapf(errors.ErrBuildFailed, "source distribution: %v", err)
	}

	binaryPath := b.outputFile("zip")
	if err := b.createArchive(ctx, binaryPath, archives.Zip{}); err != nil {
		return nil, errors.Wrapf(errors.ErrBuildFailed, "built distribution: %v", err)
	}

	source, err := describeArtifact(KindSource, sourcePath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrBuildFailed, err.Error())
	}
	binary, err := describeArtifact(KindBinary, binaryPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrBuildFailed, err.Error())
	}

	return &Pair{Source: source, Binary: binary}, nil
}

func (b *Builder) checkInput() error {
	if b.Metadata == nil {
		return errors.Wrap(errors.ErrValidation, "distribution metadata is required")
	}
	if err := b.Metadata.Validate(); err != nil {
		return err
	}
	info, err := os.Stat(b.SourceDir)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidPath, "source directory %s: %v", b.SourceDir, err)
	}
	if !info.IsDir() {
		return errors.Wrapf(errors.ErrInvalidPath, "source %s is not a directory", b.SourceDir)
	}
	if b.OutputDir == "" {
		return errors.Wrap(errors.ErrInvalidPath, "output directory is required")
	}
	return nil
}

// stageSource copies the source tree into the staging directory, hashing
// each regular file as it goes. Symlinks pointing outside the source tree
// are rejected.
func (b *Builder) stageSource() error {
	absSource, err := filepath.Abs(b.SourceDir)
	if err != nil {
		return err
	}

	return filepath.WalkDir(absSource, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == absSource {
			return nil
		}

		relPath, err := filepath.Rel(absSource, path)
		if err != nil {
			return err
		}

		parts := strings.Split(filepath.ToSlash(relPath), "/")
		if stagingExcludes[parts[0]] || b.excludedTopLevel(parts[0]) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		stagePath := filepath.Join(b.tempDir, relPath)
		switch d.Type() & os.ModeType {
		case os.ModeDir:
			return os.Mkdir(stagePath, fsutil.DirModeDefault)
		case os.ModeSymlink:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			if filepath.IsAbs(target) {
				return errors.Wrapf(errors.ErrInvalidPath, "symlink %s is absolute", relPath)
			}
			resolved := filepath.Join(filepath.Dir(path), target)
			if !strings.HasPrefix(resolved, absSource+string(os.PathSeparator)) {
				return errors.Wrapf(errors.ErrInvalidPath, "symlink %s points outside the source tree", relPath)
			}
			return os.Symlink(target, stagePath)
		default:
			digest, err := copyAndHash(path, stagePath)
			if err != nil {
				return err
			}
			b.Metadata.Hashes[filepath.ToSlash(relPath)] = digest
			return nil
		}
	})
}

func (b *Builder) excludedTopLevel(name string) bool {
	for _, ex := range b.Exclude {
		if name == ex {
			return true
		}
	}
	return false
}

func (b *Builder) writeMetadataFile() error {
	data, err := json.MarshalIndent(b.Metadata, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	file, err := fsutil.CreateFilePerm(filepath.Join(b.tempDir, MetadataFileName), fsutil.FileModeDefault)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write(data)
	return err
}

func (b *Builder) createArchive(ctx context.Context, outputPath string, format archives.Archiver) error {
	srcRoot := filepath.ToSlash(b.tempDir)
	if !strings.HasSuffix(srcRoot, "/") {
		srcRoot += "/"
	}
	// All archive entries live under a name-version top-level directory.
	prefix := fmt.Sprintf("%s-%s", b.Metadata.Name, b.Metadata.NormalizedVersion())
	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		srcRoot: prefix,
	})
	if err != nil {
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Sync()
		_ = out.Close()
	}()

	return format.Archive(ctx, out, files)
}

func (b *Builder) outputFile(ext string) string {
	return filepath.Join(b.OutputDir, fmt.Sprintf("%s-%s.%s",
		b.Metadata.Name, b.Metadata.NormalizedVersion(), ext))
}

func describeArtifact(kind Kind, path string) (Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return Artifact{}, err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return Artifact{}, err
	}

	return Artifact{
		Kind:   kind,
		Path:   path,
		Size:   info.Size(),
		SHA256: fmt.Sprintf("%x", hash.Sum(nil)),
	}, nil
}

func copyAndHash(src, dst string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := fsutil.CreateFilePerm(dst, fsutil.FileModeDefault)
	if err != nil {
		return "", err
	}

	hash := sha256.New()
	if _, err := io.Copy(out, io.TeeReader(in, hash)); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
