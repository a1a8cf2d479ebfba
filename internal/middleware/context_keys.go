package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const actorIDKey = contextKey("actorID")

// actorHeader carries the caller's opaque identity. The core never
// authenticates it; authentication is an external collaborator concern.
const actorHeader = "X-Actor-ID"

// ActorMiddleware extracts the acting user's identifier from the request
// header and stores it in the Gin context. Requests without an actor are
// rejected: every mutation needs a createdBy/updatedBy value.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(actorHeader)
		if actorID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": actorHeader + " header is required"})
			return
		}
		c.Set(string(actorIDKey), actorID)
		c.Next()
	}
}

// GetActorIDFromContext retrieves the acting user's ID from the Gin context.
// It returns the ID and a boolean indicating if it was found.
func GetActorIDFromContext(c *gin.Context) (string, bool) {
	actorVal, exists := c.Get(string(actorIDKey))
	if !exists {
		return "", false
	}
	actorID, ok := actorVal.(string)
	if !ok {
		return "", false
	}
	return actorID, true
}
