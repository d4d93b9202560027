package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the cobtool home directory.
	DefaultDirName = ".cobtool"

	// TemplatesDirName is the subdirectory for locally mirrored templates.
	TemplatesDirName = "templates"

	// OutputDirName is the subdirectory rendered letters are saved to by the CLI.
	OutputDirName = "output"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the cobtool home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.cobtool).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// TemplatesPath returns the path to the local template tree.
func (d *Dir) TemplatesPath() string {
	return filepath.Join(d.path, TemplatesDirName)
}

// OutputPath returns the directory rendered letters are written to.
func (d *Dir) OutputPath() string {
	return filepath.Join(d.path, OutputDirName)
}

// OutputFile returns the path for a rendered letter. Path separators in
// name are replaced so a file name can never escape the output directory.
func (d *Dir) OutputFile(name string) string {
	return filepath.Join(d.OutputPath(), filepath.Base(filepath.Clean("/"+name)))
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{d.TemplatesPath(), d.OutputPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// HasTemplates reports whether the local template tree has any entries.
func (d *Dir) HasTemplates() bool {
	entries, err := os.ReadDir(d.TemplatesPath())
	return err == nil && len(entries) > 0
}
