package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"remna-tg-admin/internal/constants"
	"remna-tg-admin/internal/models"
)

// SessionService owns the per-chat conversation sessions. Sessions expire
// after a period of inactivity, which is equivalent to the operator
// re-entering the main menu.
type SessionService struct {
	cache  *cache.Cache
	logger *logrus.Logger
}

// NewSessionService creates a new session service
func NewSessionService(logger *logrus.Logger) *SessionService {
	return &SessionService{
		cache: cache.New(
			constants.SessionExpiration*time.Minute,
			constants.SessionCleanupInterval*time.Minute,
		),
		logger: logger,
	}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("session_%d", chatID)
}

// Get returns the chat's session, creating a fresh main-menu session when
// none exists.
func (s *SessionService) Get(chatID int64) *models.Session {
	if data, found := s.cache.Get(sessionKey(chatID)); found {
		if session, ok := data.(*models.Session); ok {
			return session
		}
	}

	session := &models.Session{State: models.MainMenu}
	s.cache.Set(sessionKey(chatID), session, cache.DefaultExpiration)
	return session
}

// Save refreshes the session's lifetime after a handler mutated it
func (s *SessionService) Save(chatID int64, session *models.Session) {
	s.cache.Set(sessionKey(chatID), session, cache.DefaultExpiration)
	s.logger.Debugf("Session for chat %d now in state %d", chatID, session.State)
}

// Clear drops the chat's session entirely
func (s *SessionService) Clear(chatID int64) {
	s.cache.Delete(sessionKey(chatID))
	s.logger.Debugf("Cleared session for chat %d", chatID)
}
