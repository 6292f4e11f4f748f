package httpapi

import (
	"time"

	"creditflow/auth"
	"creditflow/dispute"
	"creditflow/letter"
)

type userJSON struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	FullName          string     `json:"full_name"`
	Plan              auth.Plan  `json:"plan"`
	NextDisputeAt     *time.Time `json:"next_dispute_at,omitempty"`
	LastDisputeSentAt *time.Time `json:"last_dispute_sent_at,omitempty"`
	SentWithPremium   bool       `json:"sent_with_premium"`
}

func userView(user auth.User) userJSON {
	return userJSON{
		ID:                user.ID,
		Email:             user.Email,
		FullName:          user.FullName,
		Plan:              user.Plan,
		NextDisputeAt:     user.NextDisputeAt,
		LastDisputeSentAt: user.LastDisputeSentAt,
		SentWithPremium:   user.SentWithPremium,
	}
}

type selectedItemView struct {
	AccountID    string `json:"account_id"`
	AccountName  string `json:"account_name"`
	CreditorName string `json:"creditor_name"`
	Reason       string `json:"reason"`
	Instruction  string `json:"instruction"`
}

func (v selectedItemView) toDomain() dispute.SelectedItem {
	return dispute.SelectedItem{
		AccountID:    v.AccountID,
		AccountName:  v.AccountName,
		CreditorName: v.CreditorName,
		Reason:       v.Reason,
		Instruction:  v.Instruction,
	}
}

type roundView struct {
	ID                    string                 `json:"id"`
	Status                dispute.RoundStatus    `json:"status"`
	DeliveryMethod        dispute.DeliveryMethod `json:"delivery_method"`
	TrackingNumbers       []string               `json:"tracking_numbers"`
	SentAt                *time.Time             `json:"sent_at,omitempty"`
	EstimatedResponseDate *time.Time             `json:"estimated_response_date,omitempty"`
	CreatedAt             time.Time              `json:"created_at"`
}

func newRoundView(round dispute.Round) roundView {
	return roundView{
		ID:                    round.ID,
		Status:                round.Status,
		DeliveryMethod:        round.DeliveryMethod,
		TrackingNumbers:       round.TrackingNumbers,
		SentAt:                round.SentAt,
		EstimatedResponseDate: round.EstimatedResponseDate,
		CreatedAt:             round.CreatedAt,
	}
}

type itemView struct {
	ID               string             `json:"id"`
	RoundID          string             `json:"round_id"`
	AccountID        string             `json:"account_id"`
	AccountName      string             `json:"account_name"`
	CreditorName     string             `json:"creditor_name"`
	Bureau           letter.Bureau      `json:"bureau"`
	Reason           string             `json:"reason"`
	Instruction      string             `json:"instruction"`
	Status           dispute.ItemStatus `json:"status"`
	CanDisputeAgain  *time.Time         `json:"can_dispute_again,omitempty"`
	ResponseReceived bool               `json:"response_received"`
	Outcome          *string            `json:"outcome,omitempty"`
}

func newItemView(item dispute.Item) itemView {
	return itemView{
		ID:               item.ID,
		RoundID:          item.RoundID,
		AccountID:        item.AccountID,
		AccountName:      item.AccountName,
		CreditorName:     item.CreditorName,
		Bureau:           item.Bureau,
		Reason:           item.Reason,
		Instruction:      item.Instruction,
		Status:           item.Status,
		CanDisputeAgain:  item.CanDisputeAgain,
		ResponseReceived: item.ResponseReceived,
		Outcome:          item.Outcome,
	}
}

type createRoundJSON struct {
	Round   roundView                `json:"round"`
	Items   []itemView               `json:"items"`
	Letters map[letter.Bureau]string `json:"letters"`
}

func createRoundView(result dispute.CreateRoundResult) createRoundJSON {
	items := make([]itemView, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, newItemView(item))
	}
	return createRoundJSON{
		Round:   newRoundView(result.Round),
		Items:   items,
		Letters: result.Letters,
	}
}
