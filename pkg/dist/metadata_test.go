package dist

import (
	"testing"

	"github.com/gantryci/gantry/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataValidate(t *testing.T) {
	tests := []struct {
		name    string
		meta    Metadata
		wantErr bool
	}{
		{name: "valid", meta: Metadata{Name: "braket-sdk", Version: "1.2.3"}},
		{name: "tag-style version", meta: Metadata{Name: "braket-sdk", Version: "v1.2.3"}},
		{name: "prerelease version", meta: Metadata{Name: "braket-sdk", Version: "1.2.3-rc.1"}},
		{name: "missing name", meta: Metadata{Version: "1.0.0"}, wantErr: true},
		{name: "uppercase name", meta: Metadata{Name: "Braket", Version: "1.0.0"}, wantErr: true},
		{name: "name with spaces", meta: Metadata{Name: "my pkg", Version: "1.0.0"}, wantErr: true},
		{name: "missing version", meta: Metadata{Name: "pkg"}, wantErr: true},
		{name: "garbage version", meta: Metadata{Name: "pkg", Version: "not.a.version!"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMetadataNormalizedVersion(t *testing.T) {
	meta := Metadata{Name: "pkg", Version: "v1.2.3"}
	require.NoError(t, meta.Validate())
	assert.Equal(t, "1.2.3", meta.NormalizedVersion())

	meta.Version = "2.0.0"
	assert.Equal(t, "2.0.0", meta.NormalizedVersion())
}
