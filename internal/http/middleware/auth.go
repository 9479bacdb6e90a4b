package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dtbooking/backend/internal/models"
)

// ActorKey is the gin context key the resolved authenticated user is stored
// under.
const ActorKey = "authenticated_user"

// Authenticated resolves the acting user from request headers. Session
// handling proper lives upstream; by the time a request reaches this service
// the gateway has stamped the verified identity onto it.
func Authenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		idRaw := c.GetHeader("X-User-Id")
		id, err := strconv.ParseInt(idRaw, 10, 64)
		if idRaw == "" || err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "authentication required",
			})
			return
		}
		c.Set(ActorKey, models.User{
			ID:     id,
			RoleID: c.GetHeader("X-User-Role"),
		})
		c.Next()
	}
}

// Actor returns the authenticated user stored by Authenticated.
func Actor(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
