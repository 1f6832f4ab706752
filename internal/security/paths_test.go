package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	tmp := t.TempDir()
	out := filepath.Join(tmp, "out")
	elsewhere := filepath.Join(tmp, "elsewhere")
	require.NoError(t, os.MkdirAll(out, 0o755))
	require.NoError(t, os.MkdirAll(elsewhere, 0o755))
	link := filepath.Join(out, "reports")
	require.NoError(t, os.Symlink(elsewhere, link))

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"summary in output dir", filepath.Join(out, "run.summary.json"), false},
		{"nested new directory", filepath.Join(out, "2026", "run.json"), false},
		{"dot-dot escape", filepath.Join(out, "..", "run.json"), true},
		{"relative escape", "../../../etc/passwd", true},
		{"absolute elsewhere", "/etc/passwd", true},
		{"through symlinked directory", filepath.Join(link, "run.json"), true},
		{"symlink itself", link, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.path, out)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePathWithinDirectory_MissingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	assert.Error(t, ValidatePathWithinDirectory(filepath.Join(missing, "a.json"), missing))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"derby.summary.json", "derby.summary.json"},
		{"first half.json", "first_half.json"},
		{"../escape.json", "escape.json"},
		{"a//b  c", "a_b_c"},
		{"__x__", "x"},
		{"", "unknown"},
		{"///", "unknown"},
		{"Ümlaut-2.json", "mlaut-2.json"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}

	assert.Len(t, SanitizeFilename(strings.Repeat("a", 256)), maxFilenameLen)
}
