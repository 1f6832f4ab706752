// Package security guards the files the CLI writes.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// maxFilenameLen caps sanitised file names.
const maxFilenameLen = 128

// ValidatePathWithinDirectory returns an error unless filePath, once
// cleaned and with symlinks resolved, lies inside dir. A path that does
// not exist yet is resolved through its nearest existing ancestor, so a
// symlinked parent cannot redirect a new file outside dir.
func ValidatePathWithinDirectory(filePath, dir string) error {
	target, err := resolve(filePath)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", filePath, err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve directory %s: %w", dir, err)
	}
	root, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return fmt.Errorf("resolve directory %s: %w", dir, err)
	}

	rel, err := filepath.Rel(root, target)
	if err != nil {
		return fmt.Errorf("path %s is outside %s: %w", filePath, dir, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("path traversal detected: %s escapes %s", filePath, dir)
	}
	return nil
}

// resolve returns the canonical absolute form of p.
func resolve(p string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}

	for dir := filepath.Dir(abs); ; dir = filepath.Dir(dir) {
		if real, err := filepath.EvalSymlinks(dir); err == nil {
			rest, err := filepath.Rel(dir, abs)
			if err != nil {
				return "", err
			}
			return filepath.Join(real, rest), nil
		}
		if filepath.Dir(dir) == dir {
			return abs, nil
		}
	}
}

// SanitizeFilename turns an arbitrary string into a file name made of
// ASCII letters, digits, dot, underscore and dash. Runs of other
// characters become one underscore; leading and trailing dots and
// underscores are dropped. Empty results become "unknown".
func SanitizeFilename(s string) string {
	var b strings.Builder
	gap := false
	for _, r := range s {
		if b.Len() >= maxFilenameLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
			gap = r == '_'
		case !gap:
			b.WriteByte('_')
			gap = true
		}
	}
	if out := strings.Trim(b.String(), "._"); out != "" {
		return out
	}
	return "unknown"
}
