package schedule

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"pingslot/internal/api"
	"pingslot/internal/notify"
	"pingslot/internal/timegrid"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo    Repository
	service Service
	events  notify.Publisher
}

func NewHandler(db *sqlx.DB, events notify.Publisher) *Handler {
	repo := NewRepository(db)
	return &Handler{
		repo:    repo,
		service: NewService(repo),
		events:  events,
	}
}

type CreateTemplateRequest struct {
	Name string `json:"name" binding:"required"`
}

type AddTemplateSlotRequest struct {
	DayOfWeek  int    `json:"day_of_week" binding:"min=0,max=6"`
	StartMin   int    `json:"start_min" binding:"min=0,max=1440"`
	EndMin     int    `json:"end_min" binding:"required,min=0,max=1440"`
	Name       string `json:"name" binding:"required"`
	Coach      string `json:"coach"`
	SlotGroup  string `json:"slot_group"`
	IsBlocking bool   `json:"is_blocking"`
}

type AddTemplateHourRequest struct {
	DayOfWeek int `json:"day_of_week" binding:"min=0,max=6"`
	StartMin  int `json:"start_min" binding:"min=0,max=1440"`
	EndMin    int `json:"end_min" binding:"required,min=0,max=1440"`
}

type ApplyTemplateRequest struct {
	WeekStarts []string `json:"week_starts" binding:"required,min=1"`
	Mode       string   `json:"mode" binding:"required"`
}

type ApplyTemplatesRequest struct {
	TemplateIDs []int    `json:"template_ids" binding:"required,min=1"`
	WeekStarts  []string `json:"week_starts" binding:"required,min=1"`
}

type AnalyzeRequest struct {
	WeekStarts []string `json:"week_starts" binding:"required,min=1"`
}

// CreateTemplate godoc
// @Summary      Create schedule template
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      201  {object}  Template
// @Failure      400  {object}  api.ErrorResponse
// @Router       /admin/templates [post]
func (h *Handler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	tpl, err := h.repo.CreateTemplate(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create template"})
		return
	}

	h.events.Publish(c.Request.Context(), notify.CollectionTemplates)
	c.JSON(http.StatusCreated, tpl)
}

// ListTemplates godoc
// @Summary      List schedule templates
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Template
// @Router       /admin/templates [get]
func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.repo.ListTemplates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch templates"})
		return
	}

	c.JSON(http.StatusOK, templates)
}

// GetTemplate godoc
// @Summary      Get template with its slots and hours
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        templateID  path  int  true  "Template ID"
// @Success      200  {object}  gin.H
// @Failure      404  {object}  api.ErrorResponse
// @Router       /admin/templates/{templateID} [get]
func (h *Handler) GetTemplate(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	tpl, err := h.repo.GetTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch template"})
		return
	}

	slots, err := h.repo.GetTemplateSlots(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch template slots"})
		return
	}

	hours, err := h.repo.GetTemplateHours(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch template hours"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": tpl, "slots": slots, "hours": hours})
}

// DeleteTemplate godoc
// @Summary      Delete template
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        templateID  path  int  true  "Template ID"
// @Success      200  {object}  api.MessageResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /admin/templates/{templateID} [delete]
func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}

	if err := h.repo.DeleteTemplate(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete template"})
		return
	}

	h.events.Publish(c.Request.Context(), notify.CollectionTemplates)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Template deleted"})
}

// AddTemplateSlot godoc
// @Summary      Add recurring slot to template
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        templateID  path  int  true  "Template ID"
// @Success      201  {object}  TemplateSlot
// @Failure      400  {object}  api.ErrorResponse
// @Router       /admin/templates/{templateID}/slots [post]
func (h *Handler) AddTemplateSlot(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}

	var req AddTemplateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if req.StartMin >= req.EndMin {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "start_min must be before end_min"})
		return
	}

	slot, err := h.repo.AddTemplateSlot(c.Request.Context(), TemplateSlot{
		TemplateID: id,
		DayOfWeek:  req.DayOfWeek,
		StartMin:   req.StartMin,
		EndMin:     req.EndMin,
		Name:       req.Name,
		Coach:      req.Coach,
		SlotGroup:  req.SlotGroup,
		IsBlocking: req.IsBlocking,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to add template slot"})
		return
	}

	h.events.Publish(c.Request.Context(), notify.CollectionTemplates)
	c.JSON(http.StatusCreated, slot)
}

// DeleteTemplateSlot godoc
// @Summary      Remove recurring slot from template
// @Tags         templates
// @Security     BearerAuth
// @Param        templateID  path  int  true  "Template ID"
// @Param        slotID      path  int  true  "Template slot ID"
// @Success      200  {object}  api.MessageResponse
// @Router       /admin/templates/{templateID}/slots/{slotID} [delete]
func (h *Handler) DeleteTemplateSlot(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid slot ID"})
		return
	}

	if err := h.repo.DeleteTemplateSlot(c.Request.Context(), id, slotID); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete template slot"})
		return
	}

	h.events.Publish(c.Request.Context(), notify.CollectionTemplates)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Template slot deleted"})
}

// AddTemplateHour godoc
// @Summary      Add opening-hour range to template
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        templateID  path  int  true  "Template ID"
// @Success      201  {object}  TemplateHour
// @Failure      400  {object}  api.ErrorResponse
// @Router       /admin/templates/{templateID}/hours [post]
func (h *Handler) AddTemplateHour(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}

	var req AddTemplateHourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if req.StartMin >= req.EndMin {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "start_min must be before end_min"})
		return
	}

	hour, err := h.repo.AddTemplateHour(c.Request.Context(), TemplateHour{
		TemplateID: id,
		DayOfWeek:  req.DayOfWeek,
		StartMin:   req.StartMin,
		EndMin:     req.EndMin,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to add template hour"})
		return
	}

	h.events.Publish(c.Request.Context(), notify.CollectionTemplates)
	c.JSON(http.StatusCreated, hour)
}

// DeleteTemplateHour godoc
// @Summary      Remove opening-hour range from template
// @Tags         templates
// @Security     BearerAuth
// @Param        templateID  path  int  true  "Template ID"
// @Param        hourID      path  int  true  "Template hour ID"
// @Success      200  {object}  api.MessageResponse
// @Router       /admin/templates/{templateID}/hours/{hourID} [delete]
func (h *Handler) DeleteTemplateHour(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}

	hourID, err := strconv.Atoi(c.Param("hourID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid hour ID"})
		return
	}

	if err := h.repo.DeleteTemplateHour(c.Request.Context(), id, hourID); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete template hour"})
		return
	}

	h.events.Publish(c.Request.Context(), notify.CollectionTemplates)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Template hour deleted"})
}

// ApplyTemplate godoc
// @Summary      Apply template to weeks
// @Description  Materializes the template onto the given Monday-start weeks with the selected merge mode.
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        templateID  path  int  true  "Template ID"
// @Success      200  {object}  ApplyResult
// @Failure      400  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /admin/templates/{templateID}/apply [post]
func (h *Handler) ApplyTemplate(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}

	var req ApplyTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	weekStarts, err := parseWeekStarts(req.WeekStarts)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.service.ApplyTemplateToWeeks(c.Request.Context(), id, weekStarts, Mode(req.Mode))
	if err != nil {
		h.applyError(c, err)
		return
	}

	h.publishWeekChanges(c)
	c.JSON(http.StatusOK, result)
}

// ApplyTemplates godoc
// @Summary      Apply multiple templates by priority
// @Description  Applies templates in descending priority order; the first wins every conflict.
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      200  {object}  ApplyResult
// @Failure      400  {object}  api.ErrorResponse
// @Router       /admin/templates/apply [post]
func (h *Handler) ApplyTemplates(c *gin.Context) {
	var req ApplyTemplatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	weekStarts, err := parseWeekStarts(req.WeekStarts)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.service.ApplyTemplatesToWeeks(c.Request.Context(), req.TemplateIDs, weekStarts)
	if err != nil {
		h.applyError(c, err)
		return
	}

	h.publishWeekChanges(c)
	c.JSON(http.StatusOK, result)
}

// AnalyzeTemplate godoc
// @Summary      Preview template application
// @Description  Dry-run: reports configured weeks and colliding slot pairs without writing.
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        templateID  path  int  true  "Template ID"
// @Success      200  {object}  AnalysisResult
// @Failure      400  {object}  api.ErrorResponse
// @Router       /admin/templates/{templateID}/analyze [post]
func (h *Handler) AnalyzeTemplate(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	weekStarts, err := parseWeekStarts(req.WeekStarts)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.service.Analyze(c.Request.Context(), id, weekStarts)
	if err != nil {
		h.applyError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetWeek godoc
// @Summary      Get week configuration
// @Tags         weeks
// @Security     BearerAuth
// @Produce      json
// @Param        weekStart  path  string  true  "Monday date (YYYY-MM-DD)"
// @Success      200  {object}  gin.H
// @Failure      404  {object}  api.ErrorResponse
// @Router       /admin/weeks/{weekStart} [get]
func (h *Handler) GetWeek(c *gin.Context) {
	weekStart, ok := h.weekStart(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	cfg, err := h.repo.GetWeekConfig(ctx, weekStart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch week config"})
		return
	}
	if cfg == nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Week is not configured"})
		return
	}

	slots, err := h.repo.GetWeekSlots(ctx, cfg.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch week slots"})
		return
	}

	hours, err := h.repo.GetWeekHours(ctx, cfg.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch week hours"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": cfg, "slots": slots, "hours": hours})
}

// DeleteWeek godoc
// @Summary      Delete week configuration
// @Tags         weeks
// @Security     BearerAuth
// @Produce      json
// @Param        weekStart  path  string  true  "Monday date (YYYY-MM-DD)"
// @Success      200  {object}  api.MessageResponse
// @Router       /admin/weeks/{weekStart} [delete]
func (h *Handler) DeleteWeek(c *gin.Context) {
	weekStart, ok := h.weekStart(c)
	if !ok {
		return
	}

	if err := h.repo.DeleteWeekConfig(c.Request.Context(), weekStart); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete week config"})
		return
	}

	h.publishWeekChanges(c)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Week configuration deleted"})
}

// DeleteWeekSlot godoc
// @Summary      Delete single week slot
// @Tags         weeks
// @Security     BearerAuth
// @Produce      json
// @Param        weekStart  path  string  true  "Monday date (YYYY-MM-DD)"
// @Param        slotID     path  int     true  "Week slot ID"
// @Success      200  {object}  api.MessageResponse
// @Router       /admin/weeks/{weekStart}/slots/{slotID} [delete]
func (h *Handler) DeleteWeekSlot(c *gin.Context) {
	weekStart, ok := h.weekStart(c)
	if !ok {
		return
	}

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid slot ID"})
		return
	}

	ctx := c.Request.Context()
	cfg, err := h.repo.GetWeekConfig(ctx, weekStart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch week config"})
		return
	}
	if cfg == nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Week is not configured"})
		return
	}

	if err := h.repo.DeleteWeekSlot(ctx, cfg.ID, slotID); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete week slot"})
		return
	}

	h.publishWeekChanges(c)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Week slot deleted"})
}

func (h *Handler) templateID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("templateID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid template ID"})
		return 0, false
	}
	return id, true
}

func (h *Handler) weekStart(c *gin.Context) (time.Time, bool) {
	weekStart, err := time.Parse(timegrid.DateFmt, c.Param("weekStart"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid week start date, use YYYY-MM-DD"})
		return time.Time{}, false
	}
	return weekStart, true
}

func (h *Handler) applyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTemplateNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Template not found"})
	case errors.Is(err, ErrInvalidMode), errors.Is(err, ErrNoTemplates), errors.Is(err, ErrNotMondayAnchor):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Template operation failed"})
	}
}

func (h *Handler) publishWeekChanges(c *gin.Context) {
	ctx := c.Request.Context()
	h.events.Publish(ctx, notify.CollectionWeekSlots)
	h.events.Publish(ctx, notify.CollectionWeekHours)
	h.events.Publish(ctx, notify.CollectionReservations)
}

func parseWeekStarts(raw []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		t, err := time.Parse(timegrid.DateFmt, s)
		if err != nil {
			return nil, errors.New("invalid week start date, use YYYY-MM-DD")
		}
		out = append(out, t)
	}
	return out, nil
}
