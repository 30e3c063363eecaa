package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/futig/concept-interview/internal/entity"
)

type ConceptRepository interface {
	SaveConcepts(ctx context.Context, concepts []entity.AppConcept) error
	ListConceptsByConversation(ctx context.Context, conversationID string) ([]entity.AppConcept, error)
	ListConcepts(ctx context.Context, limit int) ([]entity.AppConcept, error)
}

// ConceptPostgres is the write-once archive of synthesized app concepts.
type ConceptPostgres struct {
	db *pgxpool.Pool
}

func NewConceptPostgres(db *pgxpool.Pool) *ConceptPostgres {
	return &ConceptPostgres{db: db}
}

// SaveConcepts archives the full concept set of a completed interview in one
// batch
func (r *ConceptPostgres) SaveConcepts(ctx context.Context, concepts []entity.AppConcept) error {
	rows := make([][]interface{}, 0, len(concepts))

	for _, c := range concepts {
		conceptID, err := uuid.Parse(c.ID)
		if err != nil {
			return fmt.Errorf("invalid concept ID: %w", err)
		}

		conversationID, err := uuid.Parse(c.ConversationID)
		if err != nil {
			return fmt.Errorf("invalid conversation ID: %w", err)
		}

		features, err := json.Marshal(c.Features)
		if err != nil {
			return fmt.Errorf("marshal key features: %w", err)
		}

		rows = append(rows, []interface{}{
			conceptID,
			conversationID,
			c.Name,
			c.Description,
			features,
			c.CreatedAt,
		})
	}

	_, err := r.db.CopyFrom(
		ctx,
		pgx.Identifier{"app_concepts"},
		[]string{"id", "conversation_id", "name", "description", "key_features", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		ctxzap.Error(ctx, "failed to archive concepts", zap.Error(err))
		return err
	}

	return nil
}

// ListConceptsByConversation retrieves the archived concepts of one interview
func (r *ConceptPostgres) ListConceptsByConversation(ctx context.Context, conversationID string) ([]entity.AppConcept, error) {
	convID, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation ID: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, conversation_id, name, description, key_features, created_at
		FROM app_concepts
		WHERE conversation_id = $1
		ORDER BY created_at, name`,
		convID,
	)
	if err != nil {
		ctxzap.Error(ctx, "failed to list concepts by conversation", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanConcepts(rows)
}

// ListConcepts retrieves the most recently archived concepts
func (r *ConceptPostgres) ListConcepts(ctx context.Context, limit int) ([]entity.AppConcept, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, conversation_id, name, description, key_features, created_at
		FROM app_concepts
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		ctxzap.Error(ctx, "failed to list concepts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanConcepts(rows)
}

func scanConcepts(rows pgx.Rows) ([]entity.AppConcept, error) {
	var concepts []entity.AppConcept

	for rows.Next() {
		var (
			concept     entity.AppConcept
			id, convID  uuid.UUID
			featuresRaw []byte
		)

		if err := rows.Scan(&id, &convID, &concept.Name, &concept.Description, &featuresRaw, &concept.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan concept row: %w", err)
		}

		concept.ID = id.String()
		concept.ConversationID = convID.String()

		if err := json.Unmarshal(featuresRaw, &concept.Features); err != nil {
			return nil, fmt.Errorf("unmarshal key features: %w", err)
		}

		concepts = append(concepts, concept)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return concepts, nil
}
