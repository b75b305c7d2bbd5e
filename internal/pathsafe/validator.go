// Package pathsafe implements the pluggable input/output path validation
// policy and the scoped temp-file lease used throughout the conversion
// pipeline.
package pathsafe

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/DeltaShift/hookswitch/internal/errs"
)

// urlScheme matches an RFC 3986 scheme prefix like "file://" or "http://".
var urlScheme = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// Validator is the pluggable path-validation policy described in spec §4.9.
// ProjectRoot is an explicit configuration value set at construction time
// rather than an ambient global, per the design note in spec §9.
type Validator struct {
	ProjectRoot string
	tempDir     string
}

// New builds a Validator rooted at projectRoot. If projectRoot is empty, the
// current working directory is used.
func New(projectRoot string) *Validator {
	if projectRoot == "" {
		if wd, err := os.Getwd(); err == nil {
			projectRoot = wd
		}
	}
	return &Validator{ProjectRoot: projectRoot, tempDir: os.TempDir()}
}

func rejectShape(p string) error {
	if p == "" {
		return errs.New(errs.InvalidPath, "empty path")
	}
	if strings.ContainsRune(p, 0) {
		return errs.New(errs.InvalidPath, "path contains NUL byte")
	}
	if urlScheme.MatchString(p) {
		return errs.Newf(errs.InvalidPath, "path %q looks like a URL-scheme wrapper", p)
	}
	for _, part := range strings.Split(filepath.ToSlash(p), "/") {
		if part == ".." {
			return errs.Newf(errs.InvalidPath, "path %q contains a parent-directory component", p)
		}
	}
	return nil
}

// underRoot reports whether canon (already filepath.Clean'd and absolute)
// resides under root or under the system temp directory.
func (v *Validator) underRoot(canon string) bool {
	for _, root := range []string{v.ProjectRoot, v.tempDir} {
		if root == "" {
			continue
		}
		rel, err := filepath.Rel(root, canon)
		if err != nil {
			continue
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return true
	}
	return false
}

// ValidateInput resolves path as a readable input file: it must pass the
// shape checks, canonicalize under the project root or system temp
// directory, and name an existing regular file.
func (v *Validator) ValidateInput(path string) (string, error) {
	if err := rejectShape(path); err != nil {
		return "", err
	}
	canon, err := filepath.Abs(path)
	if err != nil {
		return "", errs.Wrap(errs.InvalidPath, err)
	}
	if resolved, err := filepath.EvalSymlinks(canon); err == nil {
		canon = resolved
	}
	canon = filepath.Clean(canon)
	if !v.underRoot(canon) {
		return "", errs.Newf(errs.InvalidPath, "path %q escapes the project root and the system temp directory", path)
	}
	info, err := os.Stat(canon)
	if err != nil {
		return "", errs.Wrap(errs.InvalidPath, err)
	}
	if !info.Mode().IsRegular() {
		return "", errs.Newf(errs.InvalidPath, "path %q is not a regular file", path)
	}
	f, err := os.Open(canon)
	if err != nil {
		return "", errs.Wrap(errs.InvalidPath, err)
	}
	_ = f.Close()
	return canon, nil
}

// ValidateOutput resolves path as a writable output file location: the
// parent directory must exist, be a directory, and be writable. The result
// is the parent's canonical path joined with the original base name.
func (v *Validator) ValidateOutput(path string) (string, error) {
	if err := rejectShape(path); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errs.Wrap(errs.InvalidPath, err)
	}
	dir := filepath.Dir(abs)
	base := filepath.Base(abs)

	canonDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", errs.Wrap(errs.InvalidPath, err)
	}
	canonDir = filepath.Clean(canonDir)
	if !v.underRoot(canonDir) {
		return "", errs.Newf(errs.InvalidPath, "output directory %q escapes the project root and the system temp directory", dir)
	}
	info, err := os.Stat(canonDir)
	if err != nil {
		return "", errs.Wrap(errs.InvalidPath, err)
	}
	if !info.IsDir() {
		return "", errs.Newf(errs.InvalidPath, "%q is not a directory", dir)
	}
	probe, err := os.CreateTemp(canonDir, ".hookswitch-writetest-*")
	if err != nil {
		return "", errs.Wrap(errs.InvalidPath, err)
	}
	probeName := probe.Name()
	_ = probe.Close()
	_ = os.Remove(probeName)

	return filepath.Join(canonDir, base), nil
}
