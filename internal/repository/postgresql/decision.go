package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/employee"
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/database"
)

type DecisionRepository struct {
	db *database.DB
}

func NewDecisionRepository(db *database.DB) employee.DecisionRepository {
	return &DecisionRepository{db: db}
}

func (r *DecisionRepository) Create(ctx context.Context, decision employee.Decision) (employee.Decision, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO profile_decisions (id, profile_id, decider_id, decision, reason, comments)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := querier.QueryRow(ctx, query,
		decision.ID,
		decision.ProfileID,
		decision.DeciderID,
		decision.Decision,
		decision.Reason,
		decision.Comments,
	).Scan(&decision.CreatedAt)
	if err != nil {
		return employee.Decision{}, fmt.Errorf("failed to create profile decision: %w", err)
	}

	return decision, nil
}

func (r *DecisionRepository) ListByProfile(ctx context.Context, profileID string) ([]employee.Decision, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		SELECT d.id, d.profile_id, d.decider_id, d.decision, d.reason, d.comments, d.created_at,
		       a.full_name
		FROM profile_decisions d
		JOIN accounts a ON a.id = d.decider_id
		WHERE d.profile_id = $1
		ORDER BY d.created_at DESC`

	rows, err := querier.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile decisions: %w", err)
	}
	defer rows.Close()

	var decisions []employee.Decision
	for rows.Next() {
		var d employee.Decision
		err := rows.Scan(
			&d.ID,
			&d.ProfileID,
			&d.DeciderID,
			&d.Decision,
			&d.Reason,
			&d.Comments,
			&d.CreatedAt,
			&d.DeciderName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile decision: %w", err)
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profile decisions: %w", err)
	}

	return decisions, nil
}

func (r *DecisionRepository) LatestByProfile(ctx context.Context, profileID string) (*employee.Decision, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		SELECT d.id, d.profile_id, d.decider_id, d.decision, d.reason, d.comments, d.created_at,
		       a.full_name
		FROM profile_decisions d
		JOIN accounts a ON a.id = d.decider_id
		WHERE d.profile_id = $1
		ORDER BY d.created_at DESC
		LIMIT 1`

	var d employee.Decision
	err := querier.QueryRow(ctx, query, profileID).Scan(
		&d.ID,
		&d.ProfileID,
		&d.DeciderID,
		&d.Decision,
		&d.Reason,
		&d.Comments,
		&d.CreatedAt,
		&d.DeciderName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest profile decision: %w", err)
	}

	return &d, nil
}
