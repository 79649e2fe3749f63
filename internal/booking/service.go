package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pingslot/internal/availability"
	"pingslot/internal/logger"
	"pingslot/internal/metrics"
	"pingslot/internal/notify"
	"pingslot/internal/timegrid"
)

var (
	ErrNotBookable        = errors.New("slot is not bookable")
	ErrInvalidDuration    = errors.New("duration not available from this slot")
	ErrNoGuests           = errors.New("at least one guest is required")
	ErrNotRegistered      = errors.New("no reservation found for user on this slot")
	ErrInvitationNotFound = errors.New("invitation not found")
)

// Mailer queues member notices. *email.Service satisfies it; a nil Mailer
// disables notices.
type Mailer interface {
	SendInvitationNotice(ctx context.Context, email, guestName, inviterName, slotID string, date time.Time) error
	SendSlotClosedNotice(ctx context.Context, email, name, slotID string, date time.Time) error
}

// Service owns the registration lifecycle: it runs the availability gate,
// snapshots capacity, writes the reservation rows and fans out change events.
type Service struct {
	repo   Repository
	avail  *availability.Service
	events notify.Publisher
	mailer Mailer
}

func NewService(repo Repository, avail *availability.Service, events notify.Publisher, mailer Mailer) *Service {
	if events == nil {
		events = notify.NopPublisher{}
	}
	return &Service{repo: repo, avail: avail, events: events, mailer: mailer}
}

// bookedSlotIDs returns the IDs of the duration consecutive catalog slots
// starting at slotID.
func bookedSlotIDs(slotID string, duration int) ([]string, error) {
	start := timegrid.Index(slotID)
	if start < 0 {
		return nil, availability.ErrUnknownSlot
	}
	if duration < 1 || start+duration > timegrid.Count() {
		return nil, ErrInvalidDuration
	}

	ids := make([]string, 0, duration)
	for _, slot := range timegrid.Slots()[start : start+duration] {
		ids = append(ids, slot.ID)
	}
	return ids, nil
}

// Register books duration consecutive slots for the user starting at slotID.
// The overbooking state is snapshotted once, before the write, and stamped
// on every row of the booking.
func (s *Service) Register(ctx context.Context, user availability.User, date time.Time, slotID string, duration int) (*RegisterResult, error) {
	ok, reason, err := s.avail.CanUserRegister(ctx, user, date, slotID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotBookable, reason)
	}

	durations, err := s.avail.AvailableDurations(ctx, date, slotID)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, d := range durations {
		if d == duration {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidDuration
	}

	roster, err := s.avail.Roster(ctx, date, slotID)
	if err != nil {
		return nil, err
	}
	overbooked := roster.WouldOverbook

	slotIDs, err := bookedSlotIDs(slotID, duration)
	if err != nil {
		return nil, err
	}

	rows := make([]Reservation, 0, duration)
	for _, id := range slotIDs {
		slot, _ := timegrid.SlotByID(id)
		rows = append(rows, Reservation{
			SlotID:     id,
			StartMin:   slot.Minutes(),
			Date:       date,
			UserID:     user.ID,
			UserName:   user.Name,
			UserEmail:  user.Email,
			Duration:   duration,
			Overbooked: overbooked,
		})
	}

	if err := s.repo.RegisterBatch(ctx, rows); err != nil {
		return nil, err
	}

	metrics.RecordRegistration(overbooked)
	s.events.Publish(ctx, notify.CollectionReservations)
	logger.Info("reservation created",
		"user_id", user.ID, "date", date.Format(timegrid.DateFmt),
		"slot", slotID, "duration", duration, "overbooked", overbooked)

	return &RegisterResult{SlotIDs: slotIDs, Duration: duration, Overbooked: overbooked}, nil
}

// Unregister removes the user's whole booking anchored at slotID, however
// many slots it spans.
func (s *Service) Unregister(ctx context.Context, userID int, date time.Time, slotID string) (int64, error) {
	res, err := s.repo.GetReservation(ctx, date, slotID, userID)
	if err != nil {
		return 0, err
	}
	if res == nil {
		return 0, ErrNotRegistered
	}

	slotIDs, err := bookedSlotIDs(slotID, res.Duration)
	if err != nil {
		return 0, err
	}

	deleted, err := s.repo.DeleteUserReservations(ctx, date, slotIDs, userID)
	if err != nil {
		return 0, err
	}

	metrics.UnregistrationsTotal.Inc()
	s.events.Publish(ctx, notify.CollectionReservations)
	logger.Info("reservation removed",
		"user_id", userID, "date", date.Format(timegrid.DateFmt),
		"slot", slotID, "rows", deleted)
	return deleted, nil
}

// Invite records pending invitations from a slot owner to their guests.
// Invitations attach to the booking's first slot only.
func (s *Service) Invite(ctx context.Context, user availability.User, date time.Time, slotID string, guests []GuestInput) error {
	if len(guests) == 0 {
		return ErrNoGuests
	}

	res, err := s.repo.GetReservation(ctx, date, slotID, user.ID)
	if err != nil {
		return err
	}
	if res == nil {
		return ErrNotRegistered
	}

	invitations := make([]Invitation, 0, len(guests))
	for _, g := range guests {
		invitations = append(invitations, Invitation{
			SlotID:    slotID,
			Date:      date,
			UserID:    g.UserID,
			UserName:  g.UserName,
			Status:    availability.InvitationPending,
			InvitedBy: user.ID,
		})
	}

	if err := s.repo.CreateInvitations(ctx, invitations); err != nil {
		return err
	}

	for _, g := range guests {
		if g.Email == "" || s.mailer == nil {
			continue
		}
		if err := s.mailer.SendInvitationNotice(ctx, g.Email, g.UserName, user.Name, slotID, date); err != nil {
			logger.Error("failed to queue invitation notice", "guest", g.UserID, "error", err.Error())
		}
	}

	metrics.InvitationsTotal.WithLabelValues("invited").Add(float64(len(guests)))
	s.events.Publish(ctx, notify.CollectionInvitations)
	logger.Info("guests invited",
		"inviter", user.ID, "date", date.Format(timegrid.DateFmt),
		"slot", slotID, "guests", len(guests))
	return nil
}

// Respond accepts or declines the user's pending invitation on a slot.
// Accepting marks it accepted; declining deletes it.
func (s *Service) Respond(ctx context.Context, userID int, date time.Time, slotID string, accept bool) error {
	var (
		affected int64
		err      error
		action   string
	)
	if accept {
		affected, err = s.repo.SetInvitationStatus(ctx, date, slotID, userID, availability.InvitationAccepted)
		action = "accepted"
	} else {
		affected, err = s.repo.DeleteInvitation(ctx, date, slotID, userID)
		action = "declined"
	}
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvitationNotFound
	}

	metrics.InvitationsTotal.WithLabelValues(action).Inc()
	s.events.Publish(ctx, notify.CollectionInvitations)
	logger.Info("invitation "+action,
		"user_id", userID, "date", date.Format(timegrid.DateFmt), "slot", slotID)
	return nil
}

// AdminDeleteReservation removes another member's whole booking. It returns
// the number of rows removed.
func (s *Service) AdminDeleteReservation(ctx context.Context, date time.Time, slotID string, userID int) (int64, error) {
	res, err := s.repo.GetReservation(ctx, date, slotID, userID)
	if err != nil {
		return 0, err
	}
	if res == nil {
		return 0, ErrNotRegistered
	}

	slotIDs, err := bookedSlotIDs(slotID, res.Duration)
	if err != nil {
		return 0, err
	}

	deleted, err := s.repo.DeleteUserReservations(ctx, date, slotIDs, userID)
	if err != nil {
		return 0, err
	}

	s.events.Publish(ctx, notify.CollectionReservations)
	logger.Info("reservation removed by admin",
		"user_id", userID, "date", date.Format(timegrid.DateFmt), "slot", slotID, "rows", deleted)
	return deleted, nil
}

// NotifySlotClosed queues a notice to every member holding a reservation on
// the slot. It runs before the slot's reservations are deleted; mail failures
// are logged, never surfaced.
func (s *Service) NotifySlotClosed(ctx context.Context, date time.Time, slotID string) {
	if s.mailer == nil {
		return
	}

	rows, err := s.repo.GetReservationsForSlot(ctx, date, slotID)
	if err != nil {
		logger.Error("failed to load reservations for closed slot",
			"date", date.Format(timegrid.DateFmt), "slot", slotID, "error", err.Error())
		return
	}

	for _, res := range rows {
		if res.UserEmail == "" {
			continue
		}
		if err := s.mailer.SendSlotClosedNotice(ctx, res.UserEmail, res.UserName, slotID, date); err != nil {
			logger.Error("failed to queue slot closed notice",
				"user_id", res.UserID, "slot", slotID, "error", err.Error())
		}
	}
}

// AdminDeleteInvitation removes another member's invitation.
func (s *Service) AdminDeleteInvitation(ctx context.Context, date time.Time, slotID string, userID int) error {
	affected, err := s.repo.DeleteInvitation(ctx, date, slotID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvitationNotFound
	}

	s.events.Publish(ctx, notify.CollectionInvitations)
	logger.Info("invitation removed by admin",
		"user_id", userID, "date", date.Format(timegrid.DateFmt), "slot", slotID)
	return nil
}
