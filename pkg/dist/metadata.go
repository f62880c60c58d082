// Package dist builds and verifies the release artifact pair: one source
// distribution (tar.gz) and one built distribution (zip), both derived from
// a project checkout and its release metadata.
package dist

import (
	"regexp"

	"github.com/gantryci/gantry/pkg/errors"
	"github.com/hashicorp/go-version"
)

// MetadataFileName is the name of the metadata file embedded at the root of
// every distribution archive.
const MetadataFileName = "metadata.json"

// Metadata describes the release being distributed. It is written into both
// archives of the artifact pair.
type Metadata struct {
	Name       string `json:"name" yaml:"name"`
	Version    string `json:"version" yaml:"version"`
	Summary    string `json:"summary,omitempty" yaml:"summary,omitempty"`
	License    string `json:"license,omitempty" yaml:"license,omitempty"`
	Maintainer string `json:"maintainer,omitempty" yaml:"maintainer,omitempty"`

	// Hashes maps archive-internal file paths to their sha256 digests,
	// populated during the build.
	Hashes map[string]string `json:"files,omitempty" yaml:"-"`
}

var namePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9._-]*[a-z0-9])?$`)

// Validate checks the metadata for release use. The version must parse as a
// semantic version; a leading "v" (as in release tags) is accepted.
func (m *Metadata) Validate() error {
	if m.Name == "" {
		return errors.Wrap(errors.ErrValidation, "distribution name is required")
	}
	if !namePattern.MatchString(m.Name) {
		return errors.Wrapf(errors.ErrValidation, "invalid distribution name %q", m.Name)
	}
	if m.Version == "" {
		return errors.Wrap(errors.ErrValidation, "distribution version is required")
	}
	if _, err := version.NewVersion(m.Version); err != nil {
		return errors.Wrapf(errors.ErrValidation, "invalid version %q: %v", m.Version, err)
	}
	return nil
}

// NormalizedVersion returns the canonical version string without any leading
// tag prefix. Validate must have succeeded first.
func (m *Metadata) NormalizedVersion() string {
	v, err := version.NewVersion(m.Version)
	if err != nil {
		return m.Version
	}
	return v.String()
}
