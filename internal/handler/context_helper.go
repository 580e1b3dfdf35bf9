package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tutorhive/booking-api/internal/models"
)

// actorFromRequest resolves the caller identity from gateway-injected
// headers. Authentication happens upstream; an absent role defaults to
// student.
func actorFromRequest(c *gin.Context) models.Actor {
	actor := models.Actor{
		ID:   c.GetHeader("X-Actor-ID"),
		Role: models.Role(c.GetHeader("X-Actor-Role")),
	}
	switch actor.Role {
	case models.RoleStudent, models.RoleParent, models.RoleTeacher, models.RoleAdmin:
	default:
		actor.Role = models.RoleStudent
	}
	return actor
}
