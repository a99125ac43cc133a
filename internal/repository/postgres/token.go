package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/BackofficeGo/internal/domain"
	"github.com/utafrali/BackofficeGo/pkg/database"
	apperrors "github.com/utafrali/BackofficeGo/pkg/errors"
)

// TokenRepository stores access-token records in PostgreSQL.
type TokenRepository struct {
	db database.DBTX
}

// NewTokenRepository creates a PostgreSQL-backed token repository.
func NewTokenRepository(db database.DBTX) *TokenRepository {
	return &TokenRepository{db: db}
}

const insertTokenQuery = `
	INSERT INTO tokens (id, value, kind, expired, revoked, user_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

const upsertTokenQuery = `
	INSERT INTO tokens (id, value, kind, expired, revoked, user_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (value) DO UPDATE SET expired = EXCLUDED.expired, revoked = EXCLUDED.revoked`

const revokeActiveQuery = `
	UPDATE tokens SET expired = true, revoked = true
	WHERE user_id = $1 AND expired = false AND revoked = false`

func (r *TokenRepository) Save(ctx context.Context, token *domain.Token) error {
	_, err := r.db.Exec(ctx, insertTokenQuery,
		token.ID, token.Value, token.Kind, token.Expired, token.Revoked,
		token.UserID, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// SaveAll upserts a batch of token records in one round trip. Existing
// records (matched by value) get their expired/revoked flags updated.
func (r *TokenRepository) SaveAll(ctx context.Context, tokens []domain.Token) error {
	if len(tokens) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, token := range tokens {
		batch.Queue(upsertTokenQuery,
			token.ID, token.Value, token.Kind, token.Expired, token.Revoked,
			token.UserID, token.CreatedAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for range tokens {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch save tokens: %w", err)
		}
	}
	return nil
}

func (r *TokenRepository) FindByValue(ctx context.Context, value string) (*domain.Token, error) {
	query := `
		SELECT id, value, kind, expired, revoked, user_id, created_at
		FROM tokens WHERE value = $1`

	var token domain.Token
	err := r.db.QueryRow(ctx, query, value).Scan(
		&token.ID, &token.Value, &token.Kind, &token.Expired, &token.Revoked,
		&token.UserID, &token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("token not found")
		}
		return nil, fmt.Errorf("scan token: %w", err)
	}
	return &token, nil
}

// FindAllValidByUserID returns the user's tokens that are neither expired
// nor revoked. Both flags must be false for a record to qualify.
func (r *TokenRepository) FindAllValidByUserID(ctx context.Context, userID string) ([]domain.Token, error) {
	query := `
		SELECT id, value, kind, expired, revoked, user_id, created_at
		FROM tokens
		WHERE user_id = $1 AND expired = false AND revoked = false`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query valid tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.Token
	for rows.Next() {
		var token domain.Token
		err := rows.Scan(
			&token.ID, &token.Value, &token.Kind, &token.Expired, &token.Revoked,
			&token.UserID, &token.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return tokens, nil
}

// RevokeActiveAndSave marks every active token of the user as expired and
// revoked, then inserts the new token. Both statements run in a single
// transaction so a login can never leave the user with zero or two active
// sessions.
func (r *TokenRepository) RevokeActiveAndSave(ctx context.Context, userID string, token *domain.Token) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, revokeActiveQuery, userID); err != nil {
		return fmt.Errorf("revoke active tokens: %w", err)
	}

	_, err = tx.Exec(ctx, insertTokenQuery,
		token.ID, token.Value, token.Kind, token.Expired, token.Revoked,
		token.UserID, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
