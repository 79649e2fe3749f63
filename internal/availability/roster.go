package availability

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
)

// Owner is a reservation holder; owners always count as accepted.
type Owner struct {
	UserID   int    `db:"user_id" json:"user_id"`
	Name     string `db:"name" json:"name"`
	Duration int    `db:"duration" json:"duration"`
}

// Guest is an invited participant with the stored invitation status.
type Guest struct {
	UserID    int    `db:"user_id" json:"user_id"`
	Name      string `db:"name" json:"name"`
	Status    string `db:"status" json:"status"`
	InvitedBy int    `db:"invited_by" json:"invited_by"`
}

// Participant is one roster entry, owner or guest.
type Participant struct {
	UserID    int    `json:"user_id"`
	Name      string `json:"name"`
	IsGuest   bool   `json:"is_guest"`
	Status    string `json:"status"`
	InvitedBy int    `json:"invited_by,omitempty"`
	Duration  int    `json:"duration,omitempty"`
}

// Roster is the live participant list of one slot. Overbooked compares the
// current accepted count to capacity; WouldOverbook anticipates one more
// registration. Both are advisory and never block a booking.
type Roster struct {
	Participants  []Participant `json:"participants"`
	AcceptedCount int           `json:"accepted_count"`
	MaxPersons    int           `json:"max_persons"`
	Overbooked    bool          `json:"overbooked"`
	WouldOverbook bool          `json:"-"`
}

// BuildRoster merges owners and guests, owners first. Accepted = every owner
// plus every guest whose invitation was accepted.
func BuildRoster(owners []Owner, guests []Guest, maxPersons int) *Roster {
	participants := make([]Participant, 0, len(owners)+len(guests))
	accepted := 0

	for _, o := range owners {
		participants = append(participants, Participant{
			UserID:   o.UserID,
			Name:     o.Name,
			IsGuest:  false,
			Status:   InvitationAccepted,
			Duration: o.Duration,
		})
		accepted++
	}

	for _, g := range guests {
		participants = append(participants, Participant{
			UserID:    g.UserID,
			Name:      g.Name,
			IsGuest:   true,
			Status:    g.Status,
			InvitedBy: g.InvitedBy,
		})
		if g.Status == InvitationAccepted {
			accepted++
		}
	}

	return &Roster{
		Participants:  participants,
		AcceptedCount: accepted,
		MaxPersons:    maxPersons,
		Overbooked:    accepted > maxPersons,
		WouldOverbook: accepted+1 > maxPersons,
	}
}
