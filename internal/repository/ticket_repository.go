package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-engine/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// CreateWithMessage creates a ticket with the next sequence number for
	// its (account, company) scope and appends the first message, all in
	// one transaction.
	CreateWithMessage(ctx context.Context, ticket *domain.Ticket, msg *domain.Message) error

	// AppendReply appends a message to an existing ticket and refreshes
	// the ticket's summary fields in one transaction.
	AppendReply(ctx context.Context, ticketID string, msg *domain.Message) error

	// FindTicketIDByMessageID resolves the ticket owning the message with
	// the given RFC message id, scoped to one account and company.
	FindTicketIDByMessageID(ctx context.Context, accountID, companyID, messageID string) (string, error)

	GetByID(ctx context.Context, id string) (*domain.Ticket, error)

	// SaveAISuggestion stores the latest AI suggestion on the ticket.
	SaveAISuggestion(ctx context.Context, ticketID, suggestion string, at time.Time) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) CreateWithMessage(ctx context.Context, ticket *domain.Ticket, msg *domain.Message) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Atomic per-scope sequence; the upsert both seeds and advances it so
	// concurrent creates cannot observe the same number.
	const seqQuery = `
        INSERT INTO ticket_sequences (account_id, company_id, next_number)
        VALUES ($1, $2, 1)
        ON CONFLICT (account_id, company_id)
        DO UPDATE SET next_number = ticket_sequences.next_number + 1
        RETURNING next_number`
	if err := tx.QueryRow(ctx, seqQuery, ticket.AccountID, ticket.CompanyID).Scan(&ticket.TicketNumber); err != nil {
		return err
	}

	const ticketQuery = `
        INSERT INTO tickets (account_id, company_id, subject, from_email, status, ticket_number,
                             last_message, last_message_date, read)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, ticketQuery,
		ticket.AccountID,
		ticket.CompanyID,
		ticket.Subject,
		ticket.FromEmail,
		ticket.Status,
		ticket.TicketNumber,
		ticket.LastMessage,
		ticket.LastMessageDate,
		ticket.Read,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	msg.TicketID = ticket.ID
	if err := insertMessage(ctx, tx, msg); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ticketRepository) AppendReply(ctx context.Context, ticketID string, msg *domain.Message) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	msg.TicketID = ticketID
	if err := insertMessage(ctx, tx, msg); err != nil {
		return err
	}

	const summaryQuery = `
        UPDATE tickets SET last_message=$1, last_message_date=$2, read=FALSE, updated_at=NOW()
        WHERE id=$3`
	cmd, err := tx.Exec(ctx, summaryQuery, msg.Content(), msg.Date, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

func (r *ticketRepository) FindTicketIDByMessageID(ctx context.Context, accountID, companyID, messageID string) (string, error) {
	const query = `
        SELECT m.ticket_id
        FROM messages m
        JOIN tickets t ON t.id = m.ticket_id
        WHERE t.account_id=$1 AND t.company_id=$2 AND m.message_id=$3`
	var ticketID string
	if err := r.pool.QueryRow(ctx, query, accountID, companyID, messageID).Scan(&ticketID); err != nil {
		return "", err
	}
	return ticketID, nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, account_id, company_id, subject, from_email, status, ticket_number,
               last_message, last_message_date, read, ai_on, last_ai_suggestion,
               last_ai_suggestion_at, created_at, updated_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.AccountID,
		&ticket.CompanyID,
		&ticket.Subject,
		&ticket.FromEmail,
		&ticket.Status,
		&ticket.TicketNumber,
		&ticket.LastMessage,
		&ticket.LastMessageDate,
		&ticket.Read,
		&ticket.AIOn,
		&ticket.LastAISuggestion,
		&ticket.LastAISuggestionAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) SaveAISuggestion(ctx context.Context, ticketID, suggestion string, at time.Time) error {
	const query = `
        UPDATE tickets SET last_ai_suggestion=$1, last_ai_suggestion_at=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, suggestion, at, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func insertMessage(ctx context.Context, tx pgx.Tx, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (ticket_id, type, body, html, from_email, message_id, in_reply_to, refs, date, attachments)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at`
	return tx.QueryRow(ctx, query,
		msg.TicketID,
		msg.Type,
		msg.Body,
		msg.HTML,
		msg.FromEmail,
		msg.MessageID,
		msg.InReplyTo,
		msg.References,
		msg.Date,
		msg.Attachments,
	).Scan(&msg.ID, &msg.CreatedAt)
}
