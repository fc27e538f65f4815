package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/david/grantwise/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const proposalCols = `id, user_id, organization_name, project_name, content,
	parsed_guidelines, compliance, tokens_used, model, created_at, updated_at`

func scanProposal(scan func(dest ...interface{}) error) (models.Proposal, error) {
	var p models.Proposal
	var model *string

	err := scan(
		&p.ID, &p.UserID, &p.OrganizationName, &p.ProjectName, &p.Content,
		&p.ParsedGuidelines, &p.Compliance, &p.TokensUsed, &model, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}
	if model != nil {
		p.Model = *model
	}
	return p, nil
}

// SaveProposal inserts a generated proposal and returns it with its
// assigned ID and timestamps.
func (s *Store) SaveProposal(ctx context.Context, p models.Proposal) (models.Proposal, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO proposals (user_id, organization_name, project_name, content,
			parsed_guidelines, compliance, tokens_used, model)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.OrganizationName, p.ProjectName, p.Content,
		nullableJSON(p.ParsedGuidelines), nullableJSON(p.Compliance), p.TokensUsed, p.Model,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, fmt.Errorf("inserting proposal: %w", err)
	}
	return p, nil
}

// UpdateProposalContent replaces the proposal body, typically after a
// refinement pass. The stored compliance report is cleared because it no
// longer describes the new text.
func (s *Store) UpdateProposalContent(ctx context.Context, userID, id uuid.UUID, content string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE proposals
		SET content = $1, compliance = NULL, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, content, id, userID)
	if err != nil {
		return fmt.Errorf("updating proposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetCompliance stores a compliance report against the proposal.
func (s *Store) SetCompliance(ctx context.Context, userID, id uuid.UUID, report json.RawMessage) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE proposals SET compliance = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, report, id, userID)
	if err != nil {
		return fmt.Errorf("storing compliance report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetEmbedding stores the proposal's content embedding for similarity search.
func (s *Store) SetEmbedding(ctx context.Context, userID, id uuid.UUID, embedding []float32) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE proposals SET embedding = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, pgvector.NewVector(embedding), id, userID)
	if err != nil {
		return fmt.Errorf("storing embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetProposal loads one proposal owned by the user.
func (s *Store) GetProposal(ctx context.Context, userID, id uuid.UUID) (models.Proposal, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+proposalCols+" FROM proposals WHERE id = $1 AND user_id = $2", id, userID)
	return scanProposal(row.Scan)
}

// ListProposals returns the user's proposals, newest first.
func (s *Store) ListProposals(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Proposal, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		"SELECT "+proposalCols+" FROM proposals WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}
	defer rows.Close()

	var proposals []models.Proposal
	for rows.Next() {
		p, err := scanProposal(rows.Scan)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// DeleteProposal removes one proposal owned by the user.
func (s *Store) DeleteProposal(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM proposals WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("deleting proposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountProposalsSince counts proposals the user generated at or after the
// cutoff. Used for monthly quota enforcement.
func (s *Store) CountProposalsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM proposals WHERE user_id = $1 AND created_at >= $2",
		userID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting proposals: %w", err)
	}
	return count, nil
}

// SimilarProposal is a past proposal ranked by cosine similarity.
type SimilarProposal struct {
	models.Proposal
	Similarity float64 `json:"similarity"`
}

// SearchSimilar returns the user's past proposals nearest to the query
// embedding, excluding the proposal the query came from. Proposals without
// an embedding are never returned.
func (s *Store) SearchSimilar(ctx context.Context, userID uuid.UUID, embedding []float32, exclude uuid.UUID, limit int) ([]SimilarProposal, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+proposalCols+`, 1 - (embedding <=> $1) AS similarity
		FROM proposals
		WHERE user_id = $2 AND id <> $3 AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $4
	`, pgvector.NewVector(embedding), userID, exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("searching similar proposals: %w", err)
	}
	defer rows.Close()

	var results []SimilarProposal
	for rows.Next() {
		var sp SimilarProposal
		var model *string
		err := rows.Scan(
			&sp.ID, &sp.UserID, &sp.OrganizationName, &sp.ProjectName, &sp.Content,
			&sp.ParsedGuidelines, &sp.Compliance, &sp.TokensUsed, &model, &sp.CreatedAt, &sp.UpdatedAt,
			&sp.Similarity,
		)
		if err != nil {
			return nil, err
		}
		if model != nil {
			sp.Model = *model
		}
		results = append(results, sp)
	}
	return results, rows.Err()
}

// SaveGrant bookmarks a federal grant for the user. The full opportunity is
// stored as a snapshot because it lives upstream, not in our database.
func (s *Store) SaveGrant(ctx context.Context, userID uuid.UUID, grant models.GrantOpportunity) error {
	data, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("encoding grant: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO saved_grants (user_id, grant_id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, grant_id) DO UPDATE SET data = EXCLUDED.data
	`, userID, grant.ID, data)
	return err
}

// UnsaveGrant removes a bookmark.
func (s *Store) UnsaveGrant(ctx context.Context, userID uuid.UUID, grantID string) error {
	_, err := s.pool.Exec(ctx,
		"DELETE FROM saved_grants WHERE user_id = $1 AND grant_id = $2", userID, grantID)
	return err
}

// ListSavedGrants returns the user's bookmarked grants, most recent first.
func (s *Store) ListSavedGrants(ctx context.Context, userID uuid.UUID) ([]models.GrantOpportunity, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT data FROM saved_grants WHERE user_id = $1 ORDER BY saved_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("listing saved grants: %w", err)
	}
	defer rows.Close()

	var grants []models.GrantOpportunity
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var g models.GrantOpportunity
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("decoding saved grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// nullableJSON maps empty payloads to SQL NULL so jsonb columns never hold
// empty strings.
func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
