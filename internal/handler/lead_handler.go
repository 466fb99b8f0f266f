package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"craftcrm/internal/hold"
	"craftcrm/internal/service"
)

type LeadHandler struct {
	leads       *service.LeadService
	progression *service.ProgressionService
	holds       *service.HoldService
	logger      *zap.Logger
}

func NewLeadHandler(
	leads *service.LeadService,
	progression *service.ProgressionService,
	holds *service.HoldService,
	logger *zap.Logger,
) *LeadHandler {
	return &LeadHandler{
		leads:       leads,
		progression: progression,
		holds:       holds,
		logger:      logger,
	}
}

func (h *LeadHandler) Create(c *gin.Context) {
	var req service.CreateLeadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l, err := h.leads.Create(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"lead": l})
}

func (h *LeadHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	l, err := h.leads.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": l})
}

func (h *LeadHandler) ChangeStage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req changeStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l, err := h.progression.ChangeLeadStage(c.Request.Context(), id, req.NewStage, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": l})
}

func (h *LeadHandler) SetHold(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req holdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l, err := h.holds.SetLeadHold(c.Request.Context(), id, hold.Request{
		Action: hold.Action(req.Action),
		Reason: req.Reason,
	}, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": l})
}

func (h *LeadHandler) GetActivities(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	limit, offset := pageParams(c)

	entries, err := h.leads.GetActivities(c.Request.Context(), id, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": entries})
}

func (h *LeadHandler) AddComment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.leads.AddComment(c.Request.Context(), id, req.Message, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"activity": entry})
}

type convertRequest struct {
	ProjectName string `json:"project_name"`
}

func (h *LeadHandler) Convert(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req convertRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	p, err := h.leads.Convert(c.Request.Context(), id, req.ProjectName, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": p})
}
