package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pingslot/internal/api"
	"pingslot/internal/auth"
	"pingslot/internal/availability"
	"pingslot/internal/timegrid"
)

type Handler struct {
	service *Service
}

// NewHandler takes a constructed service rather than a DB handle because the
// same service also notifies members when an opened slot is closed.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func currentUser(c *gin.Context) (availability.User, bool) {
	id, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return availability.User{}, false
	}
	return availability.User{
		ID:      id,
		Name:    auth.GetUserName(c),
		Email:   auth.GetUserEmail(c),
		License: auth.GetUserLicense(c),
	}, true
}

func parseDate(c *gin.Context, raw string) (time.Time, bool) {
	date, err := time.Parse(timegrid.DateFmt, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid date, use YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}

// Register godoc
// @Summary      Book a slot
// @Description  Registers the member on N consecutive half-hour slots starting at slotID.
// @Tags         booking
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        slotID   path  string           true  "Base slot ID, e.g. 18:00"
// @Param        request  body  RegisterRequest  true  "Date and duration in half-hour units"
// @Success      201  {object}  RegisterResult
// @Failure      400  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /slots/{slotID}/register [post]
func (h *Handler) Register(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	result, err := h.service.Register(c.Request.Context(), user, date, c.Param("slotID"), req.Duration)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrUnknownSlot):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown slot ID"})
		case errors.Is(err, ErrNotBookable):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrInvalidDuration):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Requested duration is not available from this slot"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to register"})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Unregister godoc
// @Summary      Cancel a booking
// @Description  Removes the member's booking anchored at slotID, all spanned slots included.
// @Tags         booking
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        slotID   path  string             true  "Base slot ID"
// @Param        request  body  UnregisterRequest  true  "Date"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  api.ErrorResponse
// @Router       /slots/{slotID}/unregister [post]
func (h *Handler) Unregister(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req UnregisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	deleted, err := h.service.Unregister(c.Request.Context(), user.ID, date, c.Param("slotID"))
	if err != nil {
		if errors.Is(err, ErrNotRegistered) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No reservation to cancel"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to unregister"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled", "deleted": deleted})
}

// Invite godoc
// @Summary      Invite guests
// @Description  Creates pending invitations on the member's booking for the listed guests.
// @Tags         booking
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        slotID   path  string         true  "Base slot ID"
// @Param        request  body  InviteRequest  true  "Date and guests"
// @Success      201  {object}  api.MessageResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /slots/{slotID}/invitations [post]
func (h *Handler) Invite(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	err := h.service.Invite(c.Request.Context(), user, date, c.Param("slotID"), req.Guests)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoGuests):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "At least one guest is required"})
		case errors.Is(err, ErrNotRegistered):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "You are not registered on this slot"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to invite guests"})
		}
		return
	}

	c.JSON(http.StatusCreated, api.MessageResponse{Message: "Guests invited"})
}

// Respond godoc
// @Summary      Answer an invitation
// @Description  Accepts or declines the member's pending invitation on a slot.
// @Tags         booking
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        slotID   path  string          true  "Base slot ID"
// @Param        request  body  RespondRequest  true  "Date and accept flag"
// @Success      200  {object}  api.MessageResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /slots/{slotID}/invitations/respond [post]
func (h *Handler) Respond(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	err := h.service.Respond(c.Request.Context(), user.ID, date, c.Param("slotID"), *req.Accept)
	if err != nil {
		if errors.Is(err, ErrInvitationNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No pending invitation on this slot"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to record response"})
		return
	}

	if *req.Accept {
		c.JSON(http.StatusOK, api.MessageResponse{Message: "Invitation accepted"})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Invitation declined"})
}

// AdminDeleteReservation godoc
// @Summary      Remove a member's booking
// @Description  Admin override: deletes another member's booking and all its spanned slots.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body  AdminDeleteRequest  true  "Date, slot and user"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  api.ErrorResponse
// @Router       /admin/reservations [delete]
func (h *Handler) AdminDeleteReservation(c *gin.Context) {
	var req AdminDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	deleted, err := h.service.AdminDeleteReservation(c.Request.Context(), date, req.SlotID, req.UserID)
	if err != nil {
		if errors.Is(err, ErrNotRegistered) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No reservation found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete reservation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation deleted", "deleted": deleted})
}

// AdminDeleteInvitation godoc
// @Summary      Remove a member's invitation
// @Description  Admin override: deletes another member's invitation on a slot.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body  AdminDeleteRequest  true  "Date, slot and user"
// @Success      200  {object}  api.MessageResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /admin/invitations [delete]
func (h *Handler) AdminDeleteInvitation(c *gin.Context) {
	var req AdminDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	if err := h.service.AdminDeleteInvitation(c.Request.Context(), date, req.SlotID, req.UserID); err != nil {
		if errors.Is(err, ErrInvitationNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No invitation found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete invitation"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Invitation deleted"})
}
