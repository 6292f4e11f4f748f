package dispute

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const roundColumns = `id, user_id, status::text, delivery_method::text, tracking_numbers,
	sent_at, estimated_response_date, created_at, updated_at`

const itemColumns = `id, round_id, account_id, account_name, creditor_name, bureau::text,
	reason, instruction, status::text, can_dispute_again, response_received, outcome, created_at, updated_at`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed dispute repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// LockUser loads the cooldown-relevant user fields under FOR UPDATE, so
// concurrent round creation for the same user serializes.
func (r *PGRepository) LockUser(ctx context.Context, tx pgx.Tx, userID string) (UserDisputeState, error) {
	const query = `
		SELECT id, full_name, address_line, city, state, postal_code, ssn_last4, plan::text, next_dispute_at
		FROM users
		WHERE id = $1
		FOR UPDATE
	`
	var user UserDisputeState
	err := tx.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.FullName,
		&user.AddressLine,
		&user.City,
		&user.State,
		&user.PostalCode,
		&user.SSNLast4,
		&user.Plan,
		&user.NextAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserDisputeState{}, ErrUnauthorized
		}
		return UserDisputeState{}, fmt.Errorf("dispute: lock user: %w", err)
	}
	return user, nil
}

// LatestActiveSentAt finds the newest sent_at across rounds that left draft.
func (r *PGRepository) LatestActiveSentAt(ctx context.Context, tx pgx.Tx, userID string) (*time.Time, error) {
	const query = `
		SELECT max(sent_at)
		FROM dispute_rounds
		WHERE user_id = $1
		  AND status IN ('sent', 'investigating', 'completed')
	`
	var sentAt *time.Time
	if err := tx.QueryRow(ctx, query, userID).Scan(&sentAt); err != nil {
		return nil, fmt.Errorf("dispute: latest sent_at: %w", err)
	}
	return sentAt, nil
}

func (r *PGRepository) InsertRound(ctx context.Context, tx pgx.Tx, round Round) error {
	const query = `
		INSERT INTO dispute_rounds
			(id, user_id, status, delivery_method, tracking_numbers, sent_at, estimated_response_date, created_at, updated_at)
		VALUES ($1, $2, $3::round_status, $4::delivery_method, $5, $6, $7, $8, $9)
	`
	_, err := tx.Exec(ctx, query,
		round.ID,
		round.UserID,
		round.Status,
		round.DeliveryMethod,
		round.TrackingNumbers,
		round.SentAt,
		round.EstimatedResponseDate,
		round.CreatedAt,
		round.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("dispute: insert round: %w", err)
	}
	return nil
}

func (r *PGRepository) InsertItems(ctx context.Context, tx pgx.Tx, items []Item) error {
	const query = `
		INSERT INTO dispute_items
			(id, round_id, account_id, account_name, creditor_name, bureau, reason, instruction, status, can_dispute_again, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::bureau, $7, $8, $9::item_status, $10, $11, $12)
	`
	for _, item := range items {
		if _, err := tx.Exec(ctx, query,
			item.ID,
			item.RoundID,
			item.AccountID,
			item.AccountName,
			item.CreditorName,
			item.Bureau,
			item.Reason,
			item.Instruction,
			item.Status,
			item.CanDisputeAgain,
			item.CreatedAt,
			item.UpdatedAt,
		); err != nil {
			return fmt.Errorf("dispute: insert item: %w", err)
		}
	}
	return nil
}

func (r *PGRepository) SetUserCooldown(ctx context.Context, tx pgx.Tx, userID string, nextAt, lastSentAt time.Time) error {
	const query = `
		UPDATE users
		SET next_dispute_at = $2,
		    last_dispute_sent_at = $3,
		    sent_with_premium = true,
		    updated_at = now()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, query, userID, nextAt, lastSentAt); err != nil {
		return fmt.Errorf("dispute: set user cooldown: %w", err)
	}
	return nil
}

func (r *PGRepository) GetRoundForUpdate(ctx context.Context, tx pgx.Tx, userID, roundID string) (Round, error) {
	query := `SELECT ` + roundColumns + ` FROM dispute_rounds WHERE id = $1 AND user_id = $2 FOR UPDATE`
	round, err := scanRound(tx.QueryRow(ctx, query, roundID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Round{}, ErrNotFound
		}
		return Round{}, fmt.Errorf("dispute: get round for update: %w", err)
	}
	return round, nil
}

func (r *PGRepository) UpdateRoundSent(ctx context.Context, tx pgx.Tx, round Round) error {
	const query = `
		UPDATE dispute_rounds
		SET status = $3::round_status,
		    tracking_numbers = $4,
		    sent_at = $5,
		    estimated_response_date = $6,
		    updated_at = $7
		WHERE id = $1 AND user_id = $2
	`
	_, err := tx.Exec(ctx, query,
		round.ID,
		round.UserID,
		round.Status,
		round.TrackingNumbers,
		round.SentAt,
		round.EstimatedResponseDate,
		round.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("dispute: update round sent: %w", err)
	}
	return nil
}

func (r *PGRepository) SetItemsCanDisputeAgain(ctx context.Context, tx pgx.Tx, roundID string, at time.Time) error {
	const query = `UPDATE dispute_items SET can_dispute_again = $2, updated_at = now() WHERE round_id = $1`
	if _, err := tx.Exec(ctx, query, roundID, at); err != nil {
		return fmt.Errorf("dispute: set can_dispute_again: %w", err)
	}
	return nil
}

func (r *PGRepository) GetRound(ctx context.Context, userID, roundID string) (Round, error) {
	query := `SELECT ` + roundColumns + ` FROM dispute_rounds WHERE id = $1 AND user_id = $2`
	round, err := scanRound(r.pool.QueryRow(ctx, query, roundID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Round{}, ErrNotFound
		}
		return Round{}, fmt.Errorf("dispute: get round: %w", err)
	}
	return round, nil
}

func (r *PGRepository) ListRounds(ctx context.Context, userID string) ([]Round, error) {
	query := `SELECT ` + roundColumns + ` FROM dispute_rounds WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("dispute: list rounds: %w", err)
	}
	defer rows.Close()

	out := make([]Round, 0, 8)
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("dispute: scan round: %w", err)
		}
		out = append(out, round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dispute: iterate rounds: %w", err)
	}
	return out, nil
}

func (r *PGRepository) ListItems(ctx context.Context, roundID string) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM dispute_items WHERE round_id = $1 ORDER BY account_id, bureau`
	rows, err := r.pool.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("dispute: list items: %w", err)
	}
	defer rows.Close()

	out := make([]Item, 0, 16)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("dispute: scan item: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dispute: iterate items: %w", err)
	}
	return out, nil
}

// AdvanceRoundStatus performs a guarded forward transition. The WHERE clause
// re-checks the current status so a stale read cannot skip a state.
func (r *PGRepository) AdvanceRoundStatus(ctx context.Context, userID, roundID string, from, to RoundStatus) (Round, error) {
	query := `
		UPDATE dispute_rounds
		SET status = $4::round_status, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND status = $3::round_status
		RETURNING ` + roundColumns

	round, err := scanRound(r.pool.QueryRow(ctx, query, roundID, userID, from, to))
	if err == nil {
		return round, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Round{}, fmt.Errorf("dispute: advance round: %w", err)
	}

	const check = `SELECT EXISTS (SELECT 1 FROM dispute_rounds WHERE id = $1 AND user_id = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, check, roundID, userID).Scan(&exists); err != nil {
		return Round{}, fmt.Errorf("dispute: advance round check: %w", err)
	}
	if !exists {
		return Round{}, ErrNotFound
	}
	return Round{}, ErrBadTransition
}

func (r *PGRepository) GetItem(ctx context.Context, userID, itemID string) (Item, error) {
	query := `
		SELECT ` + itemColumnsPrefixed + `
		FROM dispute_items i
		JOIN dispute_rounds r ON r.id = i.round_id
		WHERE i.id = $1 AND r.user_id = $2
	`
	item, err := scanItem(r.pool.QueryRow(ctx, query, itemID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, fmt.Errorf("dispute: get item: %w", err)
	}
	return item, nil
}

func (r *PGRepository) UpdateItemOutcome(ctx context.Context, userID, itemID string, status ItemStatus, outcome string) (Item, error) {
	query := `
		UPDATE dispute_items i
		SET status = $3::item_status,
		    outcome = $4,
		    response_received = true,
		    updated_at = now()
		FROM dispute_rounds r
		WHERE i.id = $1
		  AND i.round_id = r.id
		  AND r.user_id = $2
		RETURNING ` + itemColumnsPrefixed

	item, err := scanItem(r.pool.QueryRow(ctx, query, itemID, userID, status, outcome))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, fmt.Errorf("dispute: update item outcome: %w", err)
	}
	return item, nil
}

const itemColumnsPrefixed = `i.id, i.round_id, i.account_id, i.account_name, i.creditor_name, i.bureau::text,
	i.reason, i.instruction, i.status::text, i.can_dispute_again, i.response_received, i.outcome, i.created_at, i.updated_at`

func scanRound(row pgx.Row) (Round, error) {
	var round Round
	err := row.Scan(
		&round.ID,
		&round.UserID,
		&round.Status,
		&round.DeliveryMethod,
		&round.TrackingNumbers,
		&round.SentAt,
		&round.EstimatedResponseDate,
		&round.CreatedAt,
		&round.UpdatedAt,
	)
	if err != nil {
		return Round{}, err
	}
	return round, nil
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(
		&item.ID,
		&item.RoundID,
		&item.AccountID,
		&item.AccountName,
		&item.CreditorName,
		&item.Bureau,
		&item.Reason,
		&item.Instruction,
		&item.Status,
		&item.CanDisputeAgain,
		&item.ResponseReceived,
		&item.Outcome,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return Item{}, err
	}
	return item, nil
}
