package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/account"
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/database"
)

type AccountRepository struct {
	db *database.DB
}

func NewAccountRepository(db *database.DB) account.AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, email, password_hash, full_name, role, status, created_at, updated_at`

func scanAccount(row pgx.Row) (account.Account, error) {
	var acc account.Account
	err := row.Scan(
		&acc.ID,
		&acc.Email,
		&acc.PasswordHash,
		&acc.FullName,
		&acc.Role,
		&acc.Status,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	return acc, err
}

func (r *AccountRepository) Create(ctx context.Context, acc account.Account) (account.Account, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO accounts (id, email, password_hash, full_name, role, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + accountColumns

	created, err := scanAccount(querier.QueryRow(ctx, query,
		acc.ID,
		acc.Email,
		acc.PasswordHash,
		acc.FullName,
		acc.Role,
		acc.Status,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, fmt.Errorf("failed to create account: %w", err)
	}

	return created, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (account.Account, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1`

	acc, err := scanAccount(querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrAccountNotFound
		}
		return account.Account{}, fmt.Errorf("failed to get account by id: %w", err)
	}

	return acc, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE email = $1`

	acc, err := scanAccount(querier.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrAccountNotFound
		}
		return account.Account{}, fmt.Errorf("failed to get account by email: %w", err)
	}

	return acc, nil
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, id string, status account.Status) error {
	querier := GetQuerier(ctx, r.db)

	query := `
		UPDATE accounts
		SET status = $1, updated_at = NOW()
		WHERE id = $2`

	tag, err := querier.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepository) ListIDsByRole(ctx context.Context, role account.Role) ([]string, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		SELECT id
		FROM accounts
		WHERE role = $1 AND status = $2`

	rows, err := querier.Query(ctx, query, role, account.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts by role: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return ids, nil
}
