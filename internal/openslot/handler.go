package openslot

import (
	"context"
	"errors"
	"net/http"
	"time"

	"pingslot/internal/api"
	"pingslot/internal/auth"
	"pingslot/internal/metrics"
	"pingslot/internal/notify"
	"pingslot/internal/timegrid"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// CloseNotifier tells members their reservations on a closed slot were
// dropped. *booking.Service satisfies it; nil disables notices.
type CloseNotifier interface {
	NotifySlotClosed(ctx context.Context, date time.Time, slotID string)
}

type Handler struct {
	repo   Repository
	events notify.Publisher
	closed CloseNotifier
}

func NewHandler(db *sqlx.DB, events notify.Publisher, closed CloseNotifier) *Handler {
	return &Handler{
		repo:   NewRepository(db),
		events: events,
		closed: closed,
	}
}

// OpenSlot godoc
// @Summary      Open ad-hoc slot
// @Description  Opens a slot for booking outside any recurring configuration, optionally restricted by license target.
// @Tags         opened-slots
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      201  {object}  OpenedSlot
// @Failure      400  {object}  api.ErrorResponse
// @Router       /admin/opened-slots [post]
func (h *Handler) OpenSlot(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req OpenSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	date, err := time.Parse(timegrid.DateFmt, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid date, use YYYY-MM-DD"})
		return
	}
	if _, ok := timegrid.SlotByID(req.SlotID); !ok {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown slot ID"})
		return
	}
	if !ValidTarget(req.Target) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "target must be all, loisir or competition"})
		return
	}

	slot, err := h.repo.Open(c.Request.Context(), date, req.SlotID, userID, req.Target)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to open slot"})
		return
	}

	metrics.OpenedSlotsTotal.WithLabelValues("open").Inc()
	h.events.Publish(c.Request.Context(), notify.CollectionOpenedSlots)
	c.JSON(http.StatusCreated, slot)
}

// CloseSlot godoc
// @Summary      Close ad-hoc slot
// @Description  Removes the opened slot and deletes every reservation on it. Irreversible; the caller must have confirmed.
// @Tags         opened-slots
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      200  {object}  gin.H
// @Failure      400  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /admin/opened-slots [delete]
func (h *Handler) CloseSlot(c *gin.Context) {
	var req CloseSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	date, err := time.Parse(timegrid.DateFmt, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid date, use YYYY-MM-DD"})
		return
	}

	opened, err := h.repo.Get(c.Request.Context(), date, req.SlotID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to close slot"})
		return
	}
	if opened == nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Slot is not opened"})
		return
	}

	// Notices go out first: the close deletes the reservation rows that name
	// the affected members.
	if h.closed != nil {
		h.closed.NotifySlotClosed(c.Request.Context(), date, req.SlotID)
	}

	deleted, err := h.repo.Close(c.Request.Context(), date, req.SlotID)
	if err != nil {
		if errors.Is(err, ErrNotOpened) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Slot is not opened"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to close slot"})
		return
	}

	metrics.OpenedSlotsTotal.WithLabelValues("close").Inc()
	h.events.Publish(c.Request.Context(), notify.CollectionOpenedSlots)
	h.events.Publish(c.Request.Context(), notify.CollectionReservations)
	c.JSON(http.StatusOK, gin.H{
		"message":              "Slot closed",
		"deleted_reservations": deleted,
	})
}

// ListOpenedSlots godoc
// @Summary      List opened slots in a date range
// @Tags         opened-slots
// @Security     BearerAuth
// @Produce      json
// @Param        from  query  string  true  "Start date (YYYY-MM-DD)"
// @Param        to    query  string  true  "End date (YYYY-MM-DD)"
// @Success      200  {array}  OpenedSlot
// @Failure      400  {object}  api.ErrorResponse
// @Router       /admin/opened-slots [get]
func (h *Handler) ListOpenedSlots(c *gin.Context) {
	from, err := time.Parse(timegrid.DateFmt, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid from date, use YYYY-MM-DD"})
		return
	}
	to, err := time.Parse(timegrid.DateFmt, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid to date, use YYYY-MM-DD"})
		return
	}

	slots, err := h.repo.ListRange(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch opened slots"})
		return
	}

	c.JSON(http.StatusOK, slots)
}
