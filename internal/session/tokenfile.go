package session

import (
	"os"
	"path/filepath"
	"strings"
)

// tokenFile persists the bearer credential across restarts. Writes go
// through a temp file + rename so a crash never leaves a torn token.
type tokenFile struct {
	path string
}

func newTokenFile(path string) *tokenFile {
	return &tokenFile{path: path}
}

// Load returns the persisted token, or "" when none is stored.
func (f *tokenFile) Load() string {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Save durably stores token, creating the parent directory when needed.
func (f *tokenFile) Save(token string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(token); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, f.path)
}

// Clear removes the persisted token. Removing an absent file is not an
// error.
func (f *tokenFile) Clear() error {
	err := os.Remove(f.path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
