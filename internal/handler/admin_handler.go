package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"craftcrm/internal/progression"
	"craftcrm/pkg/outbox"
	"craftcrm/pkg/rbac"
)

// AdminHandler exposes operational endpoints that are gated on admin
// capabilities rather than mounted on a separate port.
type AdminHandler struct {
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewAdminHandler(outboxRepo *outbox.Repository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		outbox: outboxRepo,
		logger: logger,
	}
}

// ReplayOutboxEvent resets a parked outbox event to pending so the
// dispatcher picks it up again on its next poll.
// POST /admin/outbox/:id/replay
func (h *AdminHandler) ReplayOutboxEvent(c *gin.Context) {
	actor := actorFrom(c)
	if !actor.Has(rbac.CapReplayOutbox) {
		respondError(c, &progression.Error{
			Kind:    progression.KindForbidden,
			Message: "replaying outbox events requires an admin role",
		})
		return
	}

	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	event, err := h.outbox.GetEventByID(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, outbox.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to load outbox event",
			zap.Int64("event_id", eventID),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	if err := h.outbox.ReplayEvent(c.Request.Context(), eventID); err != nil {
		h.logger.Error("Failed to replay outbox event",
			zap.Int64("event_id", eventID),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	h.logger.Info("Outbox event queued for replay",
		zap.Int64("event_id", eventID),
		zap.String("routing_key", event.RoutingKey),
		zap.String("previous_status", event.Status),
		zap.Int("actor_id", actor.ID),
	)
	c.JSON(http.StatusOK, gin.H{
		"status":      "replayed",
		"event_id":    eventID,
		"routing_key": event.RoutingKey,
	})
}
