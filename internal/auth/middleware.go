package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the session cookie and stores the signed-in
// user's identity in the request context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := GetSession(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		c.Set("user_id", session.UserID)
		c.Set("email", session.Email)
		c.Set("name", session.Name)
		c.Set("picture", session.Picture)

		c.Next()
	}
}
