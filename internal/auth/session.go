// Package auth stores marketplace login sessions. Cookies and headers
// captured from an interactive login live in the OS keyring where one
// is available, and in a mode-0600 file tree otherwise.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage.
	KeyringService = "flipscan"
	// FallbackDir is the directory for file-based session storage when
	// no keyring is available.
	FallbackDir = ".flipscan/sessions"
)

// Keyring availability is probed once; headless and CI environments
// have no secret service.
var fileBasedStorageCache *bool

func useFileBasedStorage() bool {
	if fileBasedStorageCache != nil {
		return *fileBasedStorageCache
	}

	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		result := true
		fileBasedStorageCache = &result
		return true
	}

	testKey := "_test_keyring_access_"
	err := keyring.Set(KeyringService, testKey, "test")
	result := (err != nil)
	fileBasedStorageCache = &result

	if !result {
		keyring.Delete(KeyringService, testKey)
	}

	return result
}

func getSessionDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, FallbackDir)
	return dir, os.MkdirAll(dir, 0700)
}

func getSessionPath(name string) (string, error) {
	dir, err := getSessionDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".json"), nil
}

// SessionData is one stored marketplace login.
type SessionData struct {
	Name      string            `json:"name"`
	URL       string            `json:"url"`
	Cookies   []Cookie          `json:"cookies"`
	Headers   map[string]string `json:"headers,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at,omitempty"`
}

// Cookie is a browser cookie in the shape the CDP network domain uses.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// SaveSession persists a session to the keyring or the fallback file.
func SaveSession(session *SessionData) error {
	if session.Name == "" {
		return fmt.Errorf("session name cannot be empty")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	if useFileBasedStorage() {
		path, err := getSessionPath(session.Name)
		if err != nil {
			return fmt.Errorf("failed to get session path: %w", err)
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("failed to save session file: %w", err)
		}
		return nil
	}

	if err := keyring.Set(KeyringService, session.Name, string(data)); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}

	return nil
}

// LoadSession retrieves a stored session, rejecting expired ones.
func LoadSession(name string) (*SessionData, error) {
	if name == "" {
		return nil, fmt.Errorf("session name cannot be empty")
	}

	var data string
	var err error

	if useFileBasedStorage() {
		path, err := getSessionPath(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get session path: %w", err)
		}
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load session file: %w", err)
		}
		data = string(fileData)
	} else {
		data, err = keyring.Get(KeyringService, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load from keyring: %w", err)
		}
	}

	var session SessionData
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to deserialize session: %w", err)
	}

	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("session expired")
	}

	return &session, nil
}

// DeleteSession removes a stored session.
func DeleteSession(name string) error {
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}

	if useFileBasedStorage() {
		path, err := getSessionPath(name)
		if err != nil {
			return fmt.Errorf("failed to get session path: %w", err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete session file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(KeyringService, name); err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return nil
}

// ListSessions returns all stored session names. File storage lists the
// directory; keyring storage keeps a manifest entry, since keyrings
// cannot be enumerated by service.
func ListSessions() ([]string, error) {
	if useFileBasedStorage() {
		dir, err := getSessionDir()
		if err != nil {
			return nil, err
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return []string{}, nil
			}
			return nil, err
		}

		var sessions []string
		for _, entry := range entries {
			if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
				sessions = append(sessions, strings.TrimSuffix(entry.Name(), ".json"))
			}
		}
		return sessions, nil
	}

	manifestData, err := keyring.Get(KeyringService, "_manifest")
	if err != nil {
		return []string{}, nil
	}

	var sessions []string
	if err := json.Unmarshal([]byte(manifestData), &sessions); err != nil {
		return nil, fmt.Errorf("failed to deserialize manifest: %w", err)
	}

	return sessions, nil
}

func updateManifest(sessionName string, add bool) error {
	sessions, _ := ListSessions()

	if add {
		found := false
		for _, s := range sessions {
			if s == sessionName {
				found = true
				break
			}
		}
		if !found {
			sessions = append(sessions, sessionName)
		}
	} else {
		kept := []string{}
		for _, s := range sessions {
			if s != sessionName {
				kept = append(kept, s)
			}
		}
		sessions = kept
	}

	data, err := json.Marshal(sessions)
	if err != nil {
		return err
	}

	return keyring.Set(KeyringService, "_manifest", string(data))
}

// SaveSessionWithManifest saves a session and registers it in the
// keyring manifest.
func SaveSessionWithManifest(session *SessionData) error {
	if err := SaveSession(session); err != nil {
		return err
	}

	if useFileBasedStorage() {
		return nil
	}

	return updateManifest(session.Name, true)
}

// DeleteSessionWithManifest deletes a session and drops it from the
// keyring manifest.
func DeleteSessionWithManifest(name string) error {
	if err := DeleteSession(name); err != nil {
		return err
	}

	if useFileBasedStorage() {
		return nil
	}

	return updateManifest(name, false)
}
