package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-engine/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-engine/pkg/util"
)

// ActionRepository manages action definitions and their audit events.
type ActionRepository interface {
	// ListEnabled returns the enabled actions bound to a trigger. Zero
	// matches is a normal outcome, not an error.
	ListEnabled(ctx context.Context, accountID, companyID string, trigger domain.ActionTrigger) ([]domain.Action, error)

	// CreateEvent inserts a pending audit record for one invocation.
	CreateEvent(ctx context.Context, event *domain.ActionEvent) error

	// CompleteEvent moves an event from pending to a terminal state.
	// Regressing a terminal event is rejected.
	CompleteEvent(ctx context.Context, eventID string, status domain.ActionEventStatus, at time.Time) error
}

type actionRepository struct {
	pool *pgxpool.Pool
}

// NewActionRepository instantiates repository.
func NewActionRepository(pool *pgxpool.Pool) ActionRepository {
	return &actionRepository{pool: pool}
}

func (r *actionRepository) ListEnabled(ctx context.Context, accountID, companyID string, trigger domain.ActionTrigger) ([]domain.Action, error) {
	const query = `
        SELECT id, account_id, company_id, trigger, enabled, prompt, employee_id, created_at
        FROM actions
        WHERE account_id=$1 AND company_id=$2 AND trigger=$3 AND enabled=TRUE`
	rows, err := r.pool.Query(ctx, query, accountID, companyID, trigger)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Action
	for rows.Next() {
		var action domain.Action
		if err := rows.Scan(
			&action.ID,
			&action.AccountID,
			&action.CompanyID,
			&action.Trigger,
			&action.Enabled,
			&action.Prompt,
			&action.EmployeeID,
			&action.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, action)
	}
	return result, rows.Err()
}

func (r *actionRepository) CreateEvent(ctx context.Context, event *domain.ActionEvent) error {
	const query = `
        INSERT INTO action_events (action_id, trigger_data, status)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	if event.Status == "" {
		event.Status = domain.ActionEventPending
	}
	return r.pool.QueryRow(ctx, query,
		event.ActionID,
		event.TriggerData,
		event.Status,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func (r *actionRepository) CompleteEvent(ctx context.Context, eventID string, status domain.ActionEventStatus, at time.Time) error {
	if !status.Terminal() {
		return apperrors.NewValidationError("status must be terminal", map[string]any{"status": status})
	}
	const query = `
        UPDATE action_events SET status=$1, completed_at=$2, updated_at=NOW()
        WHERE id=$3 AND status='pending'`
	cmd, err := r.pool.Exec(ctx, query, status, at, eventID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// Either missing or already terminal; distinguish for the caller.
		const probe = `SELECT status FROM action_events WHERE id=$1`
		var current domain.ActionEventStatus
		if err := r.pool.QueryRow(ctx, probe, eventID).Scan(&current); err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("action event", map[string]any{"id": eventID})
			}
			return err
		}
		return apperrors.NewConflict("action event already completed", map[string]any{
			"id":     eventID,
			"status": current,
		})
	}
	return nil
}
