package dispute

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"creditflow/letter"
)

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository defines the data access required by the service. Methods taking
// a pgx.Tx participate in the round-creation transaction.
type Repository interface {
	LockUser(ctx context.Context, tx pgx.Tx, userID string) (UserDisputeState, error)
	LatestActiveSentAt(ctx context.Context, tx pgx.Tx, userID string) (*time.Time, error)
	InsertRound(ctx context.Context, tx pgx.Tx, round Round) error
	InsertItems(ctx context.Context, tx pgx.Tx, items []Item) error
	SetUserCooldown(ctx context.Context, tx pgx.Tx, userID string, nextAt, lastSentAt time.Time) error
	GetRoundForUpdate(ctx context.Context, tx pgx.Tx, userID, roundID string) (Round, error)
	UpdateRoundSent(ctx context.Context, tx pgx.Tx, round Round) error
	SetItemsCanDisputeAgain(ctx context.Context, tx pgx.Tx, roundID string, at time.Time) error

	GetRound(ctx context.Context, userID, roundID string) (Round, error)
	ListRounds(ctx context.Context, userID string) ([]Round, error)
	ListItems(ctx context.Context, roundID string) ([]Item, error)
	AdvanceRoundStatus(ctx context.Context, userID, roundID string, from, to RoundStatus) (Round, error)
	GetItem(ctx context.Context, userID, itemID string) (Item, error)
	UpdateItemOutcome(ctx context.Context, userID, itemID string, status ItemStatus, outcome string) (Item, error)
}

// Service owns the dispute round lifecycle.
type Service struct {
	pool        TxBeginner
	repo        Repository
	idGenerator func() string
	now         func() time.Time
}

// CreateRoundParams is the round-creation input.
type CreateRoundParams struct {
	UserID          string
	Items           []SelectedItem
	DeliveryMethod  DeliveryMethod
	TrackingNumbers []string
	Metro2          bool
}

// NewService builds a Service on top of a transaction source and repository.
func NewService(pool TxBeginner, repo Repository) *Service {
	return &Service{
		pool:        pool,
		repo:        repo,
		idGenerator: func() string { return uuid.NewString() },
		now:         time.Now,
	}
}

func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGenerator = gen
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateRound validates the selection, enforces the 35-day cooldown under a
// row lock on the user, and persists the round, its per-bureau items, and the
// user cooldown fields in a single transaction.
func (s *Service) CreateRound(ctx context.Context, params CreateRoundParams) (CreateRoundResult, error) {
	if params.UserID == "" {
		return CreateRoundResult{}, ErrUnauthorized
	}
	if len(params.Items) == 0 {
		return CreateRoundResult{}, ErrNoItems
	}
	if len(params.Items) > MaxItemsPerRound {
		return CreateRoundResult{}, ErrTooManyItems
	}
	for _, item := range params.Items {
		if item.AccountID == "" {
			return CreateRoundResult{}, fmt.Errorf("dispute: item account id required")
		}
		if item.Reason == "" || item.Instruction == "" {
			return CreateRoundResult{}, ErrIncompleteItem
		}
	}
	if params.DeliveryMethod != DeliveryPremium && params.DeliveryMethod != DeliverySelf {
		return CreateRoundResult{}, ErrUnknownDelivery
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return CreateRoundResult{}, fmt.Errorf("dispute: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// The row lock serializes concurrent submissions from the same user, so
	// the cooldown check and the writes below cannot interleave.
	user, err := s.repo.LockUser(ctx, tx, params.UserID)
	if err != nil {
		return CreateRoundResult{}, err
	}

	now := s.now().UTC()

	lastSent, err := s.repo.LatestActiveSentAt(ctx, tx, params.UserID)
	if err != nil {
		return CreateRoundResult{}, err
	}
	if lastSent != nil && user.Plan != planPremium {
		deadline := lastSent.Add(CooldownDays * 24 * time.Hour)
		if now.Before(deadline) {
			return CreateRoundResult{}, &CooldownError{
				DaysLeft: ceilDays(deadline.Sub(now)),
				NextAt:   deadline,
			}
		}
	}

	round := Round{
		ID:              s.idGenerator(),
		UserID:          params.UserID,
		Status:          StatusDraft,
		DeliveryMethod:  params.DeliveryMethod,
		TrackingNumbers: []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var canDisputeAgain *time.Time
	if params.DeliveryMethod == DeliveryPremium {
		sentAt := now
		estimated := now.Add(ResponseWindowDays * 24 * time.Hour)
		again := now.Add(CooldownDays * 24 * time.Hour)

		round.Status = StatusSent
		round.SentAt = &sentAt
		round.EstimatedResponseDate = &estimated
		round.TrackingNumbers = params.TrackingNumbers
		if len(round.TrackingNumbers) == 0 {
			round.TrackingNumbers = s.newTrackingNumbers()
		}
		canDisputeAgain = &again
	}

	if err := s.repo.InsertRound(ctx, tx, round); err != nil {
		return CreateRoundResult{}, err
	}

	items := s.fanOutItems(round.ID, params.Items, canDisputeAgain, now)
	if err := s.repo.InsertItems(ctx, tx, items); err != nil {
		return CreateRoundResult{}, err
	}

	if params.DeliveryMethod == DeliveryPremium {
		nextAt := now.Add(CooldownDays * 24 * time.Hour)
		if err := s.repo.SetUserCooldown(ctx, tx, params.UserID, nextAt, now); err != nil {
			return CreateRoundResult{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return CreateRoundResult{}, fmt.Errorf("dispute: commit round: %w", err)
	}

	return CreateRoundResult{
		Round:   round,
		Items:   items,
		Letters: renderLetters(user, now, params.Items, params.Metro2),
	}, nil
}

// MarkSent moves a self-delivery draft to sent once the user has mailed the
// letters. It never touches the user cooldown fields; the cooldown guard
// derives the wait from the round's sent_at.
func (s *Service) MarkSent(ctx context.Context, userID, roundID string, trackingNumbers []string) (Round, error) {
	if userID == "" {
		return Round{}, ErrUnauthorized
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Round{}, fmt.Errorf("dispute: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	round, err := s.repo.GetRoundForUpdate(ctx, tx, userID, roundID)
	if err != nil {
		return Round{}, err
	}
	if round.Status != StatusDraft {
		return Round{}, ErrBadTransition
	}

	now := s.now().UTC()
	sentAt := now
	estimated := now.Add(ResponseWindowDays * 24 * time.Hour)

	round.Status = StatusSent
	round.SentAt = &sentAt
	round.EstimatedResponseDate = &estimated
	round.UpdatedAt = now
	round.TrackingNumbers = trackingNumbers
	if round.TrackingNumbers == nil {
		round.TrackingNumbers = []string{}
	}

	if err := s.repo.UpdateRoundSent(ctx, tx, round); err != nil {
		return Round{}, err
	}
	if err := s.repo.SetItemsCanDisputeAgain(ctx, tx, round.ID, now.Add(CooldownDays*24*time.Hour)); err != nil {
		return Round{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Round{}, fmt.Errorf("dispute: commit mark sent: %w", err)
	}
	return round, nil
}

// AdvanceRound moves a round forward along sent -> investigating -> completed.
// Draft rounds advance through MarkSent, which also stamps the timestamps.
func (s *Service) AdvanceRound(ctx context.Context, userID, roundID string, next RoundStatus) (Round, error) {
	if userID == "" {
		return Round{}, ErrUnauthorized
	}
	if next != StatusInvestigating && next != StatusCompleted {
		return Round{}, ErrBadTransition
	}

	round, err := s.repo.GetRound(ctx, userID, roundID)
	if err != nil {
		return Round{}, err
	}
	if !round.Status.CanAdvance(next) {
		return Round{}, ErrBadTransition
	}

	return s.repo.AdvanceRoundStatus(ctx, userID, roundID, round.Status, next)
}

// ResolveItem records a bureau response for one item.
func (s *Service) ResolveItem(ctx context.Context, userID, itemID string, status ItemStatus, outcome string) (Item, error) {
	if userID == "" {
		return Item{}, ErrUnauthorized
	}
	if status != ItemResolved && status != ItemVerified {
		return Item{}, ErrBadTransition
	}

	item, err := s.repo.GetItem(ctx, userID, itemID)
	if err != nil {
		return Item{}, err
	}
	if !item.Status.CanAdvance(status) {
		return Item{}, ErrBadTransition
	}

	return s.repo.UpdateItemOutcome(ctx, userID, itemID, status, outcome)
}

// ListRounds returns the user's rounds, newest first.
func (s *Service) ListRounds(ctx context.Context, userID string) ([]Round, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.repo.ListRounds(ctx, userID)
}

// GetRound returns one round with its items.
func (s *Service) GetRound(ctx context.Context, userID, roundID string) (Round, []Item, error) {
	if userID == "" {
		return Round{}, nil, ErrUnauthorized
	}
	round, err := s.repo.GetRound(ctx, userID, roundID)
	if err != nil {
		return Round{}, nil, err
	}
	items, err := s.repo.ListItems(ctx, round.ID)
	if err != nil {
		return Round{}, nil, err
	}
	return round, items, nil
}

func (s *Service) fanOutItems(roundID string, selected []SelectedItem, canDisputeAgain *time.Time, now time.Time) []Item {
	items := make([]Item, 0, len(selected)*len(letter.Bureaus()))
	for _, sel := range selected {
		for _, bureau := range letter.Bureaus() {
			items = append(items, Item{
				ID:              s.idGenerator(),
				RoundID:         roundID,
				AccountID:       sel.AccountID,
				AccountName:     sel.AccountName,
				CreditorName:    sel.CreditorName,
				Bureau:          bureau,
				Reason:          sel.Reason,
				Instruction:     sel.Instruction,
				Status:          ItemPending,
				CanDisputeAgain: canDisputeAgain,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
		}
	}
	return items
}

func (s *Service) newTrackingNumbers() []string {
	numbers := make([]string, 0, len(letter.Bureaus()))
	for range letter.Bureaus() {
		raw := strings.ToUpper(strings.ReplaceAll(s.idGenerator(), "-", ""))
		if len(raw) > 12 {
			raw = raw[:12]
		}
		numbers = append(numbers, "TRK-"+raw)
	}
	return numbers
}

func renderLetters(user UserDisputeState, date time.Time, selected []SelectedItem, metro2 bool) map[letter.Bureau]string {
	identity := letter.Identity{
		FullName:    user.FullName,
		AddressLine: deref(user.AddressLine),
		City:        deref(user.City),
		State:       deref(user.State),
		PostalCode:  deref(user.PostalCode),
		SSNLast4:    deref(user.SSNLast4),
		Date:        date,
	}
	items := make([]letter.Item, 0, len(selected))
	for _, sel := range selected {
		items = append(items, letter.Item{
			AccountID:   sel.AccountID,
			AccountName: sel.AccountName,
			Reason:      sel.Reason,
			Instruction: sel.Instruction,
		})
	}

	letters := make(map[letter.Bureau]string, len(letter.Bureaus()))
	for _, bureau := range letter.Bureaus() {
		if metro2 {
			letters[bureau] = letter.GenerateMetro2(bureau, identity, items)
		} else {
			letters[bureau] = letter.Generate(bureau, identity, items)
		}
	}
	return letters
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
