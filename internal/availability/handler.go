package availability

import (
	"errors"
	"net/http"
	"time"

	"pingslot/internal/api"
	"pingslot/internal/auth"
	"pingslot/internal/timegrid"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// DaySheet godoc
// @Summary      Calendar day view
// @Description  Classification, durations and roster for every catalog slot on a date.
// @Tags         availability
// @Security     BearerAuth
// @Produce      json
// @Param        date  query  string  true  "Date (YYYY-MM-DD)"
// @Success      200  {array}   SlotInfo
// @Failure      400  {object}  api.ErrorResponse
// @Router       /calendar/day [get]
func (h *Handler) DaySheet(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	date, err := time.Parse(timegrid.DateFmt, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid date, use YYYY-MM-DD"})
		return
	}

	infos, err := h.service.DaySheet(c.Request.Context(), user, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to compute day sheet"})
		return
	}

	c.JSON(http.StatusOK, infos)
}

// SlotAvailability godoc
// @Summary      Slot availability
// @Description  Classification, registration gate, valid durations and roster for one slot.
// @Tags         availability
// @Security     BearerAuth
// @Produce      json
// @Param        slotID  path   string  true  "Slot ID, e.g. 18:00"
// @Param        date    query  string  true  "Date (YYYY-MM-DD)"
// @Success      200  {object}  SlotInfo
// @Failure      400  {object}  api.ErrorResponse
// @Router       /slots/{slotID}/availability [get]
func (h *Handler) SlotAvailability(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	date, err := time.Parse(timegrid.DateFmt, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid date, use YYYY-MM-DD"})
		return
	}

	info, err := h.service.SlotInfo(c.Request.Context(), user, date, c.Param("slotID"))
	if err != nil {
		if errors.Is(err, ErrUnknownSlot) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown slot ID"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to compute availability"})
		return
	}

	c.JSON(http.StatusOK, info)
}

func currentUser(c *gin.Context) (User, bool) {
	id, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return User{}, false
	}
	return User{
		ID:      id,
		Name:    auth.GetUserName(c),
		Email:   auth.GetUserEmail(c),
		License: auth.GetUserLicense(c),
	}, true
}
