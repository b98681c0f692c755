package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator keeps template names inside the configured directory
type PathValidator struct {
	configuredDirectory string
}

// NewPathValidator creates a new path validator for the given directory
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if configuredDirectory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	return &PathValidator{
		configuredDirectory: configuredDirectory,
	}, nil
}

// ValidateName checks that name is a relative PDF file name that stays
// inside the configured directory once joined to it
func (v *PathValidator) ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("file name contains a null byte")
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return fmt.Errorf("absolute paths are not allowed: %s", name)
	}

	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("file name escapes the template directory: %s", name)
	}

	if !strings.EqualFold(filepath.Ext(clean), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", name)
	}

	return nil
}

// ResolveName validates name and returns its path inside the configured
// directory, following symlinks
func (v *PathValidator) ResolveName(name string) (string, error) {
	if err := v.ValidateName(name); err != nil {
		return "", err
	}

	path := filepath.Join(v.configuredDirectory, filepath.FromSlash(name))
	within, err := v.IsPathWithinDirectory(path)
	if err != nil {
		return "", fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return "", fmt.Errorf("path is outside configured directory: %s", name)
	}
	return path, nil
}

// IsPathWithinDirectory checks if a path is within the configured directory
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}

	absConfigDir, err := filepath.Abs(v.configuredDirectory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(absConfigDir)

	// A symlinked template must still point into the directory
	realPath := cleanPath
	if info, err := os.Lstat(cleanPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
			realPath = resolved
		}
	}

	realDir := cleanDir
	if resolved, err := filepath.EvalSymlinks(cleanDir); err == nil {
		realDir = resolved
	}

	within := func(p string) bool {
		for _, dir := range []string{cleanDir, realDir} {
			if p == dir || strings.HasPrefix(p, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}

	return within(cleanPath) && within(realPath), nil
}

// GetConfiguredDirectory returns the configured directory path
func (v *PathValidator) GetConfiguredDirectory() string {
	return v.configuredDirectory
}
