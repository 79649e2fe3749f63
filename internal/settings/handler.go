package settings

import (
	"net/http"
	"strconv"

	"pingslot/internal/api"
	"pingslot/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo   Repository
	events notify.Publisher
}

func NewHandler(db *sqlx.DB, events notify.Publisher) *Handler {
	return &Handler{
		repo:   NewRepository(db),
		events: events,
	}
}

type UpdateTotalTablesRequest struct {
	TotalTables int `json:"total_tables" binding:"required,min=1,max=64"`
}

// GetCapacity godoc
// @Summary      Get table capacity
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  gin.H
// @Router       /admin/settings/total-tables [get]
func (h *Handler) GetCapacity(c *gin.Context) {
	tables, err := h.repo.TotalTables(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch capacity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_tables": tables,
		"max_persons":  MaxPersons(tables),
	})
}

// UpdateCapacity godoc
// @Summary      Update table capacity
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      200  {object}  gin.H
// @Failure      400  {object}  api.ErrorResponse
// @Router       /admin/settings/total-tables [put]
func (h *Handler) UpdateCapacity(c *gin.Context) {
	var req UpdateTotalTablesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.repo.Set(c.Request.Context(), KeyTotalTables, strconv.Itoa(req.TotalTables)); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update capacity"})
		return
	}

	h.events.Publish(c.Request.Context(), notify.CollectionSettings)
	c.JSON(http.StatusOK, gin.H{
		"total_tables": req.TotalTables,
		"max_persons":  MaxPersons(req.TotalTables),
	})
}
