package dispute

import (
	"time"

	"creditflow/letter"
)

// RoundStatus is the lifecycle state of a dispute round.
type RoundStatus string

const (
	StatusDraft         RoundStatus = "draft"
	StatusSent          RoundStatus = "sent"
	StatusInvestigating RoundStatus = "investigating"
	StatusCompleted     RoundStatus = "completed"
)

// roundTransitions is the closed transition table; status only moves forward.
var roundTransitions = map[RoundStatus]RoundStatus{
	StatusDraft:         StatusSent,
	StatusSent:          StatusInvestigating,
	StatusInvestigating: StatusCompleted,
}

// CanAdvance reports whether a round may move from s to next.
func (s RoundStatus) CanAdvance(next RoundStatus) bool {
	return roundTransitions[s] == next
}

// ItemStatus is the lifecycle state of a single disputed tradeline.
type ItemStatus string

const (
	ItemPending       ItemStatus = "pending"
	ItemInvestigating ItemStatus = "investigating"
	// ItemResolved means the bureau removed or corrected the tradeline.
	ItemResolved ItemStatus = "resolved"
	// ItemVerified means the bureau verified the tradeline and kept it.
	ItemVerified ItemStatus = "verified"
)

var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemPending:       {ItemInvestigating, ItemResolved, ItemVerified},
	ItemInvestigating: {ItemResolved, ItemVerified},
}

// CanAdvance reports whether an item may move from s to next.
func (s ItemStatus) CanAdvance(next ItemStatus) bool {
	for _, allowed := range itemTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DeliveryMethod selects how the letters reach the bureaus.
type DeliveryMethod string

const (
	// DeliveryPremium means we mail the letters; the round is born sent.
	DeliveryPremium DeliveryMethod = "premium"
	// DeliverySelf means the user prints and mails letters manually.
	DeliverySelf DeliveryMethod = "self"
)

// planPremium is the users.plan value exempt from the cooldown.
const planPremium = "premium"

const (
	// CooldownDays is the mandatory wait between rounds for non-premium users.
	CooldownDays = 35
	// ResponseWindowDays is the bureau response estimate after mailing.
	ResponseWindowDays = 45
	// MaxItemsPerRound matches the selection store cap.
	MaxItemsPerRound = 5
)

// Round mirrors the dispute_rounds table.
type Round struct {
	ID                    string
	UserID                string
	Status                RoundStatus
	DeliveryMethod        DeliveryMethod
	TrackingNumbers       []string
	SentAt                *time.Time
	EstimatedResponseDate *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Item mirrors the dispute_items table. One selected tradeline produces one
// Item per bureau.
type Item struct {
	ID               string
	RoundID          string
	AccountID        string
	AccountName      string
	CreditorName     string
	Bureau           letter.Bureau
	Reason           string
	Instruction      string
	Status           ItemStatus
	CanDisputeAgain  *time.Time
	ResponseReceived bool
	Outcome          *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SelectedItem is the workflow input: one tradeline the user queued for
// dispute, before the per-bureau fan-out.
type SelectedItem struct {
	AccountID    string
	AccountName  string
	CreditorName string
	Reason       string
	Instruction  string
}

// UserDisputeState is the user row slice the cooldown guard locks.
type UserDisputeState struct {
	ID          string
	FullName    string
	AddressLine *string
	City        *string
	State       *string
	PostalCode  *string
	SSNLast4    *string
	Plan        string
	NextAt      *time.Time
}

// CreateRoundResult bundles the persisted round with its items and the
// per-bureau letters generated for it. Letters are not persisted; the
// generator is pure and they can be re-rendered at any time.
type CreateRoundResult struct {
	Round   Round
	Items   []Item
	Letters map[letter.Bureau]string
}
