package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"craftcrm/internal/progression"
	"craftcrm/pkg/rbac"
)

// statusFor maps rejection kinds to HTTP statuses: ordering violations
// are conflicts, input problems are bad requests.
func statusFor(kind progression.ErrorKind) int {
	switch kind {
	case progression.KindOnHold,
		progression.KindBackwardMove,
		progression.KindSkippedSubstage,
		progression.KindForwardOnly,
		progression.KindAlreadyCompleted:
		return http.StatusConflict
	case progression.KindValidation, progression.KindOutOfRange:
		return http.StatusBadRequest
	case progression.KindForbidden:
		return http.StatusForbidden
	case progression.KindNotFound, progression.KindUnknownSubstage:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error with its kind. Unclassified errors are
// internal and keep their detail out of the response.
func respondError(c *gin.Context, err error) {
	if kind := progression.KindOf(err); kind != "" {
		c.JSON(statusFor(kind), gin.H{
			"error": err.Error(),
			"kind":  string(kind),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// actorFrom rebuilds the acting user from the values the auth
// middleware stored on the request context.
func actorFrom(c *gin.Context) rbac.Actor {
	id, _ := c.Get("user_id")
	name, _ := c.Get("user_name")
	role, _ := c.Get("user_role")

	uid, _ := id.(int)
	uname, _ := name.(string)
	urole, _ := role.(string)
	return rbac.ResolveActor(uid, uname, urole)
}
