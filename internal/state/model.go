// Package state persists per-user conversation progress between webhook
// events. Each LINE user has at most one Conversation record; the dispatcher
// reads it, applies the event, and writes it back.
package state

import "time"

// Flow identifies which multi-step conversation a user is in.
type Flow string

const (
	// FlowNone means the user is idle; Step must be 0.
	FlowNone Flow = ""

	// FlowNewMember is the four-step registration conversation.
	FlowNewMember Flow = "new_member"

	// FlowLinkAccount is the single-step account linking conversation.
	FlowLinkAccount Flow = "link_account"
)

// Conversation is the stored state for one LINE user.
type Conversation struct {
	UserID     string
	Name       string
	NationalID string
	Phone      string
	Flow       Flow
	Step       int
	ErrCount   int
	Registered bool
	UpdatedAt  time.Time
}

// New returns a fresh idle record for userID with zero-valued fields.
func New(userID string) *Conversation {
	return &Conversation{UserID: userID}
}

// ResetFlow clears the flow position while keeping collected identity fields
// and the registered flag.
func (c *Conversation) ResetFlow() {
	c.Flow = FlowNone
	c.Step = 0
	c.ErrCount = 0
}

// ResetAll returns the record to the state of a first contact.
func (c *Conversation) ResetAll() {
	*c = Conversation{UserID: c.UserID}
}

// Advance moves to the next step and clears the error counter.
func (c *Conversation) Advance() {
	c.Step++
	c.ErrCount = 0
}

// Clone returns a deep copy of the record.
func (c *Conversation) Clone() *Conversation {
	copied := *c
	return &copied
}
