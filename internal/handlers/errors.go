package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"autoshop-server/internal/middleware"
	"autoshop-server/internal/models"
	"autoshop-server/internal/services"
	"autoshop-server/internal/utils"
)

// respondError writes the response for an error returned by a service.
// Rule failures carry their reason to the caller; anything else is logged
// and reported as a generic 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error, action string) {
	if re, ok := services.AsRuleError(err); ok {
		switch re.Kind {
		case services.KindForbidden:
			utils.Forbidden(c, re.Reason)
		case services.KindNotFound:
			utils.NotFound(c, re.Reason)
		default:
			utils.UnprocessableEntity(c, re.Reason)
		}
		return
	}

	_ = c.Error(err)
	logger.WithError(err).WithFields(logrus.Fields{
		"request_id": c.GetString(middleware.ContextRequestID),
		"path":       c.FullPath(),
	}).Error(action + " failed")
	utils.InternalServerError(c, "Failed to "+action)
}

// pathID reads a UUID path parameter, answering 400 when it is malformed.
func pathID(c *gin.Context, name, label string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		utils.BadRequest(c, "Invalid "+label+" ID format")
		return "", false
	}
	return id, true
}

func currentActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
	}
	return actor, ok
}
