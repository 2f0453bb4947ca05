package settings

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Data is the persisted settings document
type Data struct {
	Language          string `json:"language,omitempty"`
	ExpireTimeSetting string `json:"expire_time_setting,omitempty"`
}

// Store handles the on-disk settings document (display language and the
// expiry-time rule). Read on every interaction, written only by explicit
// operator actions.
type Store struct {
	filename string
	data     Data
	mu       sync.RWMutex
	logger   *logrus.Logger
}

// NewStore creates a settings store backed by the given file
func NewStore(filename string, logger *logrus.Logger) *Store {
	s := &Store{filename: filename, logger: logger}
	if err := s.load(); err != nil {
		logger.Warnf("Failed to load settings file: %v", err)
	}
	return s
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filename)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &s.data)
}

// save assumes the mutex is already locked
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	tmpFile := s.filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpFile, s.filename)
}

// Language returns the configured display language, defaulting to English
func (s *Store) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data.Language == "" {
		return "en"
	}
	return s.data.Language
}

// SetLanguage persists the display language
func (s *Store) SetLanguage(lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Language = lang
	return s.save()
}

// ExpireTimeSetting returns the raw expiry-time rule, empty when unset
func (s *Store) ExpireTimeSetting() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.ExpireTimeSetting
}

// SetExpireTimeSetting persists the expiry-time rule
func (s *Store) SetExpireTimeSetting(rule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.ExpireTimeSetting = rule
	return s.save()
}
