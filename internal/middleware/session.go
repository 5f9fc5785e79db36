package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie is the visitor identifier. It is a mock: unsigned and not
// bound to anything but the browser.
const SessionCookie = "rent_excellence_sid"

const ctxClientID = "client_id"

// sessionCookieMaxAge keeps the id for a year; state expiry is handled by
// the attribution service, not the cookie.
const sessionCookieMaxAge = 365 * 24 * 60 * 60

// Session makes sure every request carries a visitor id
func Session(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err != nil || !validSessionID(sid) {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sid, sessionCookieMaxAge, "/", "", secure, true)
		}
		c.Set(ctxClientID, sid)
		c.Next()
	}
}

func validSessionID(sid string) bool {
	_, err := uuid.Parse(sid)
	return err == nil
}

// ClientID returns the visitor id set by Session
func ClientID(c *gin.Context) string {
	return c.GetString(ctxClientID)
}
