package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/openfund/grantdesk/internal/models"
	"github.com/pgvector/pgvector-go"
)

func (s *Store) InsertRecommendation(ctx context.Context, r models.Recommendation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO recommendations (organization_id, opportunity_id, fit_score, fit_description, query_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (organization_id, opportunity_id, query_date) DO NOTHING
	`, r.OrganizationID, r.OpportunityID, r.FitScore, r.FitDescription, r.QueryDate)
	return err
}

func (s *Store) ListRecommendations(ctx context.Context, orgID uuid.UUID, limit int) ([]models.Recommendation, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT r.id, r.organization_id, r.opportunity_id, r.fit_score, r.fit_description, r.query_date, %s
		FROM recommendations r
		JOIN opportunities o ON o.id = r.opportunity_id
		WHERE r.organization_id = $1
		ORDER BY r.query_date DESC, r.fit_score DESC
		LIMIT $2
	`, prefixCols("o", selectCols)), orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []models.Recommendation{}
	for rows.Next() {
		var r models.Recommendation
		err := rows.Scan(
			&r.ID, &r.OrganizationID, &r.OpportunityID, &r.FitScore, &r.FitDescription, &r.QueryDate,
			&r.Opportunity.ID, &r.Opportunity.Title, &r.Opportunity.Summary,
			&r.Opportunity.Description, &r.Opportunity.OpportunityNumber,
			&r.Opportunity.AgencyName, &r.Opportunity.AgencyCode, &r.Opportunity.Status,
			&r.Opportunity.FundingFloor, &r.Opportunity.FundingCeiling,
			&r.Opportunity.AwardCount, &r.Opportunity.Currency,
			&r.Opportunity.PostedAt, &r.Opportunity.CloseAt, &r.Opportunity.StateCode,
			&r.Opportunity.Categories, &r.Opportunity.Eligibility,
			&r.Opportunity.ExternalURL, &r.Opportunity.CreatedAt, &r.Opportunity.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// Chats

func (s *Store) CreateChat(ctx context.Context, orgID uuid.UUID, title string) (*models.Chat, error) {
	var chat models.Chat
	err := s.pool.QueryRow(ctx, `
		INSERT INTO chats (organization_id, title)
		VALUES ($1, $2)
		RETURNING id, organization_id, title, created_at
	`, orgID, title).Scan(&chat.ID, &chat.OrganizationID, &chat.Title, &chat.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert failed: %w", err)
	}
	return &chat, nil
}

const getChatSQL = `
	SELECT id, organization_id, title, created_at
	FROM chats
	WHERE id = $1 AND organization_id = $2`

// GetChat returns the chat only when it belongs to the organization.
// Chat history is tenant data, so every replay goes through this check.
func (s *Store) GetChat(ctx context.Context, orgID, chatID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	err := s.pool.QueryRow(ctx, getChatSQL, chatID, orgID).Scan(&chat.ID, &chat.OrganizationID, &chat.Title, &chat.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("not found: %w", err)
	}
	return &chat, nil
}

func (s *Store) AppendChatMessage(ctx context.Context, chatID uuid.UUID, role, content string) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO chat_messages (chat_id, role, content) VALUES ($1, $2, $3)", chatID, role, content)
	return err
}

func (s *Store) ListChatMessages(ctx context.Context, chatID uuid.UUID) ([]models.ChatMessage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, chat_id, role, content, created_at
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY created_at
	`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Knowledge base chunks

type KBChunk struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	DocumentID     *uuid.UUID `json:"document_id"`
	ChunkIndex     int        `json:"chunk_index"`
	Content        string     `json:"content"`
	Similarity     float64    `json:"similarity,omitempty"`
}

func (s *Store) InsertKBChunk(ctx context.Context, orgID uuid.UUID, docID *uuid.UUID, index int, content string, embedding []float32) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kb_chunks (organization_id, document_id, chunk_index, content, embedding)
		VALUES ($1, $2, $3, $4, $5)
	`, orgID, docID, index, content, pgvector.NewVector(embedding))
	return err
}

func (s *Store) DeleteKBChunksForDocument(ctx context.Context, docID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM kb_chunks WHERE document_id = $1", docID)
	return err
}

// SearchKBChunks returns the organization's closest chunks by cosine distance.
func (s *Store) SearchKBChunks(ctx context.Context, orgID uuid.UUID, embedding []float32, limit int) ([]KBChunk, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, organization_id, document_id, chunk_index, content,
		       1 - (embedding <=> $2) AS similarity
		FROM kb_chunks
		WHERE organization_id = $1 AND embedding IS NOT NULL
		ORDER BY embedding <=> $2
		LIMIT $3
	`, orgID, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chunks := []KBChunk{}
	for rows.Next() {
		var c KBChunk
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.DocumentID, &c.ChunkIndex, &c.Content, &c.Similarity); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
