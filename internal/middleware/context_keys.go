package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// practitionerIDKey is the key used to store the authenticated token subject.
const practitionerIDKey = contextKey("practitionerID")

// GetPractitionerIDFromContext retrieves the authenticated subject from the request context.
// It returns the ID and a boolean indicating if it was found.
func GetPractitionerIDFromContext(c *gin.Context) (string, bool) {
	return PractitionerIDFromCtx(c.Request.Context())
}

// PractitionerIDFromCtx retrieves the authenticated subject from a standard context.
func PractitionerIDFromCtx(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(practitionerIDKey).(string)
	return id, ok && id != ""
}
