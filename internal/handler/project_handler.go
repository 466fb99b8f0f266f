package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"craftcrm/internal/hold"
	"craftcrm/internal/service"
)

type ProjectHandler struct {
	projects    *service.ProjectService
	progression *service.ProgressionService
	holds       *service.HoldService
	logger      *zap.Logger
}

func NewProjectHandler(
	projects *service.ProjectService,
	progression *service.ProgressionService,
	holds *service.HoldService,
	logger *zap.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		projects:    projects,
		progression: progression,
		holds:       holds,
		logger:      logger,
	}
}

func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.projects.Create(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": p})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	p, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

type changeStageRequest struct {
	NewStage string `json:"new_stage" binding:"required"`
}

func (h *ProjectHandler) ChangeStage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req changeStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.progression.ChangeStage(c.Request.Context(), id, req.NewStage, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *ProjectHandler) CompleteSubstage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	substageID := c.Param("substage_id")

	result, err := h.progression.CompleteSubstage(c.Request.Context(), id, substageID, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type setPercentageRequest struct {
	Percentage *int   `json:"percentage" binding:"required"`
	Comment    string `json:"comment"`
}

func (h *ProjectHandler) SetPercentage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	substageID := c.Param("substage_id")

	var req setPercentageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.progression.SetPercentage(c.Request.Context(), id, substageID, *req.Percentage, req.Comment, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type holdRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

func (h *ProjectHandler) SetHold(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req holdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.holds.SetProjectHold(c.Request.Context(), id, hold.Request{
		Action: hold.Action(req.Action),
		Reason: req.Reason,
	}, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *ProjectHandler) GetTimeline(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	entries, err := h.projects.GetTimeline(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timeline": entries})
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *ProjectHandler) GetActivities(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	limit, offset := pageParams(c)

	entries, err := h.projects.GetActivities(c.Request.Context(), id, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": entries})
}

type commentRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *ProjectHandler) AddComment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.projects.AddComment(c.Request.Context(), id, req.Message, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"activity": entry})
}

type addCollaboratorRequest struct {
	UserID int `json:"user_id" binding:"required"`
}

func (h *ProjectHandler) AddCollaborator(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req addCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.projects.AddCollaborator(c.Request.Context(), id, req.UserID, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}

func (h *ProjectHandler) ListCollaborators(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	users, err := h.projects.ListCollaborators(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collaborators": users})
}
