package admin

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// QueryToken lets browser websocket clients, which cannot set headers,
// authenticate with ?token=. Plain HTTP requests are left untouched so
// tokens do not end up in ordinary URLs.
func QueryToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !websocket.IsWebSocketUpgrade(c.Request) || c.GetHeader("Authorization") != "" {
			c.Next()
			return
		}
		if token := strings.TrimSpace(c.Query("token")); token != "" {
			c.Request.Header.Set("Authorization", "Bearer "+token)
		}
		c.Next()
	}
}
