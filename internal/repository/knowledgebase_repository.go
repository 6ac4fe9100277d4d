package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-engine/internal/domain"
)

// KnowledgebaseRepository reads per-company settings.
type KnowledgebaseRepository interface {
	Get(ctx context.Context, accountID, companyID string) (*domain.Knowledgebase, error)
}

type knowledgebaseRepository struct {
	pool *pgxpool.Pool
}

// NewKnowledgebaseRepository instantiates repository.
func NewKnowledgebaseRepository(pool *pgxpool.Pool) KnowledgebaseRepository {
	return &knowledgebaseRepository{pool: pool}
}

func (r *knowledgebaseRepository) Get(ctx context.Context, accountID, companyID string) (*domain.Knowledgebase, error) {
	const query = `
        SELECT account_id, company_id, ai_messages_on, ai_suggestions_on, subdomain
        FROM knowledgebases WHERE account_id=$1 AND company_id=$2`
	var kb domain.Knowledgebase
	if err := r.pool.QueryRow(ctx, query, accountID, companyID).Scan(
		&kb.AccountID,
		&kb.CompanyID,
		&kb.AIMessagesOn,
		&kb.AISuggestionsOn,
		&kb.Subdomain,
	); err != nil {
		return nil, err
	}
	return &kb, nil
}
