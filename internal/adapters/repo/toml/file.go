package toml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	stateFileMode   = 0o600
	stateDirMode    = 0o700
	stateConfigDir  = ".coffeeviz"
	tempFilePattern = ".cvz-*.toml.tmp"
)

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

// resolvePath returns the configured path for key, or defaultFile under
// ~/.coffeeviz when the key is unset.
func resolvePath(cfg *viper.Viper, key, defaultFile string) (string, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(key)
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, stateConfigDir, defaultFile)
	}

	return normalizePath(path)
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve state path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

// lockForPath hands every store on the same file the same lock, so two
// instances in one process never interleave a read-modify-write.
func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

// readTOMLFile decodes path into out. It reports false when the file does
// not exist.
func readTOMLFile(path, label string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s file: %w", label, err)
	}

	if err := toml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s file: %w", label, err)
	}

	return true, nil
}

func writeTOMLFile(path, label string, file any) error {
	if err := os.MkdirAll(filepath.Dir(path), stateDirMode); err != nil {
		return fmt.Errorf("create %s directory: %w", label, err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode %s file: %w", label, err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp %s file: %w", label, err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp %s file: %w", label, err)
	}

	if err := tempFile.Chmod(stateFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp %s file: %w", label, err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp %s file: %w", label, err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace %s file: %w", label, err)
	}

	cleanup = false

	if err := os.Chmod(path, stateFileMode); err != nil {
		return fmt.Errorf("chmod %s file: %w", label, err)
	}

	return nil
}

func removeFile(path, label string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s file: %w", label, err)
	}
	return nil
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.Format(time.RFC3339)
}
