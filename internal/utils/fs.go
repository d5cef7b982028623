package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// DirStatus is what CheckDirStatus found out about a directory.
type DirStatus struct {
	Exists   bool
	Writable bool
	Error    error
}

// FileExists reports whether path can be stat'ed.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates dirPath and its parents when missing.
func EnsureDir(dirPath string) error {
	return os.MkdirAll(dirPath, 0o755)
}

// WriteFile writes data to path through a temp file in the same directory,
// creating the directory first. Readers never see a half-written file.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// SaveTOMLFile encodes data as TOML and writes it with WriteFile.
func SaveTOMLFile(data any, filePath string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("encode %s: %w", filePath, err)
	}
	if err := WriteFile(filePath, buf.Bytes()); err != nil {
		log.Errorf("Failed to write %s: %v", filePath, err)
		return err
	}
	return nil
}

// GetAbsolutePath returns path made absolute, or "unknown" for an empty path.
func GetAbsolutePath(path string) string {
	if path == "" {
		return "unknown"
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// GetExecutableDir returns the directory of the running binary.
func GetExecutableDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(execPath), nil
}

// CheckDirStatus creates dirPath if needed and checks that it accepts new files.
func CheckDirStatus(dirPath string) DirStatus {
	if err := EnsureDir(dirPath); err != nil {
		log.Warnf("Cannot create directory %s: %v", dirPath, err)
		return DirStatus{Error: err}
	}
	status := DirStatus{Exists: true}
	f, err := os.CreateTemp(dirPath, ".write_test")
	if err != nil {
		log.Warnf("Cannot write to directory %s: %v", dirPath, err)
		status.Error = err
		return status
	}
	f.Close()
	os.Remove(f.Name())
	status.Writable = true
	return status
}
