package ui

import (
	"csvdash/domain/core"

	"github.com/gin-gonic/gin"
)

const (
	sessionIDKey      = "sid"
	contextSession    = "csvdash.session"
	defaultCookieName = "csvdash_session"
)

// ensureSession makes sure every page request carries a session id cookie and
// exposes the id to handlers
func (s *Server) ensureSession() gin.HandlerFunc {
	cookieName := s.config.Session.CookieName
	if cookieName == "" {
		cookieName = defaultCookieName
	}

	return func(c *gin.Context) {
		// an undecodable cookie still yields a fresh session
		sess, err := s.cookies.Get(c.Request, cookieName)
		if err != nil {
			s.logger.Debug("Discarding session cookie: %v", err)
		}

		var id core.SessionID
		if raw, ok := sess.Values[sessionIDKey].(string); ok {
			if parsed, err := core.ParseSessionID(raw); err == nil {
				id = parsed
			}
		}

		if id.IsEmpty() {
			id = core.NewSessionID()
			sess.Values[sessionIDKey] = id.String()
			if err := sess.Save(c.Request, c.Writer); err != nil {
				s.logger.Error("Failed to save session cookie: %v", err)
			}
			s.logger.Debug("Started session %s", id)
		}

		c.Set(contextSession, id)
		c.Next()
	}
}

// sessionID returns the id set by ensureSession
func sessionID(c *gin.Context) core.SessionID {
	if v, ok := c.Get(contextSession); ok {
		if id, ok := v.(core.SessionID); ok {
			return id
		}
	}
	return ""
}
