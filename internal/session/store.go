package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	storeDirMode    = 0o700
	sessionFileMode = 0o600
	sessionFileName = "session.json"
	tempFilePattern = ".session-*.json.tmp"

	// DefaultProfile names the token subdirectory used when no profile is
	// selected.
	DefaultProfile = "default"
)

// Store keeps one session file per profile under a fixed root directory.
// Files are owner-only; writes go through a temp file and rename so a
// concurrent invocation never observes a partial token file.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

// Load reads the stored session for a profile. A missing file is a normal
// outcome reported through the second return value, not an error.
func (s *Store) Load(profile string) (Session, bool, error) {
	path, err := s.pathFor(profile)
	if err != nil {
		return Session{}, false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("read session file: %w", err)
	}

	sess, err := Decode(data)
	if err != nil {
		return Session{}, false, fmt.Errorf("session file %s: %w", path, err)
	}

	return sess, true, nil
}

// Exists reports whether a session file is present for the profile.
func (s *Store) Exists(profile string) bool {
	path, err := s.pathFor(profile)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Save atomically replaces the stored session for a profile.
func (s *Store) Save(profile string, sess Session) error {
	path, err := s.pathFor(profile)
	if err != nil {
		return err
	}

	data, err := Encode(sess)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, storeDirMode); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
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
		return fmt.Errorf("write temp session file: %w", err)
	}

	if err := tempFile.Chmod(sessionFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}

	cleanup = false
	return nil
}

// Clear removes the profile's persisted session. Clearing an absent session
// is not an error.
func (s *Store) Clear(profile string) error {
	dir, err := s.dirFor(profile)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear session directory: %w", err)
	}
	return nil
}

// Dir returns the profile's token directory for display purposes.
func (s *Store) Dir(profile string) string {
	dir, err := s.dirFor(profile)
	if err != nil {
		return s.root
	}
	return dir
}

func (s *Store) pathFor(profile string) (string, error) {
	dir, err := s.dirFor(profile)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sessionFileName), nil
}

func (s *Store) dirFor(profile string) (string, error) {
	name := strings.TrimSpace(profile)
	if name == "" {
		name = DefaultProfile
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid profile name %q", profile)
	}
	return filepath.Join(s.root, name), nil
}
