package booking

import "time"

// Reservation is one occupied base slot. A duration-N booking is N rows
// sharing user and date over consecutive slots, each carrying the booking's
// total duration and the overbooking snapshot taken at registration time.
type Reservation struct {
	ID         int       `db:"id" json:"id"`
	SlotID     string    `db:"slot_id" json:"slot_id"`
	StartMin   int       `db:"start_min" json:"start_min"`
	Date       time.Time `db:"date" json:"date"`
	UserID     int       `db:"user_id" json:"user_id"`
	UserName   string    `db:"user_name" json:"user_name"`
	UserEmail  string    `db:"user_email" json:"-"`
	Duration   int       `db:"duration" json:"duration"`
	Overbooked bool      `db:"overbooked" json:"overbooked"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Invitation is a guest invite anchored at the booking's first slot only.
type Invitation struct {
	ID        int       `db:"id" json:"id"`
	SlotID    string    `db:"slot_id" json:"slot_id"`
	Date      time.Time `db:"date" json:"date"`
	UserID    int       `db:"user_id" json:"user_id"`
	UserName  string    `db:"user_name" json:"user_name"`
	Status    string    `db:"status" json:"status"`
	InvitedBy int       `db:"invited_by" json:"invited_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Date     string `json:"date" binding:"required"`
	Duration int    `json:"duration" binding:"required,min=1,max=8"`
}

type UnregisterRequest struct {
	Date string `json:"date" binding:"required"`
}

type GuestInput struct {
	UserID   int    `json:"user_id" binding:"required"`
	UserName string `json:"user_name" binding:"required"`
	Email    string `json:"email"`
}

type InviteRequest struct {
	Date   string       `json:"date" binding:"required"`
	Guests []GuestInput `json:"guests" binding:"required"`
}

type RespondRequest struct {
	Date   string `json:"date" binding:"required"`
	Accept *bool  `json:"accept" binding:"required"`
}

type AdminDeleteRequest struct {
	Date   string `json:"date" binding:"required"`
	SlotID string `json:"slot_id" binding:"required"`
	UserID int    `json:"user_id" binding:"required"`
}

// RegisterResult reports what a registration wrote.
type RegisterResult struct {
	SlotIDs    []string `json:"slot_ids"`
	Duration   int      `json:"duration"`
	Overbooked bool     `json:"overbooked"`
}
