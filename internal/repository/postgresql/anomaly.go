package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/anomaly"
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/database"
)

type AnomalyRepository struct {
	db *database.DB
}

func NewAnomalyRepository(db *database.DB) anomaly.AnomalyRepository {
	return &AnomalyRepository{db: db}
}

const anomalyColumns = `
	an.id, an.session_id, an.user_id, an.rule, an.description, an.severity, an.status,
	an.resolved_by, an.resolution_note, an.resolved_at, an.created_at, an.updated_at`

func scanAnomaly(row pgx.Row) (anomaly.Anomaly, error) {
	var a anomaly.Anomaly
	err := row.Scan(
		&a.ID,
		&a.SessionID,
		&a.UserID,
		&a.Rule,
		&a.Description,
		&a.Severity,
		&a.Status,
		&a.ResolvedBy,
		&a.ResolutionNote,
		&a.ResolvedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (r *AnomalyRepository) Create(ctx context.Context, a anomaly.Anomaly) (anomaly.Anomaly, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO anomalies AS an
			(id, session_id, user_id, rule, description, severity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + anomalyColumns

	created, err := scanAnomaly(querier.QueryRow(ctx, query,
		a.ID,
		a.SessionID,
		a.UserID,
		a.Rule,
		a.Description,
		a.Severity,
		a.Status,
	))
	if err != nil {
		return anomaly.Anomaly{}, fmt.Errorf("failed to create anomaly: %w", err)
	}

	return created, nil
}

func (r *AnomalyRepository) GetByID(ctx context.Context, id string) (anomaly.Anomaly, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + anomalyColumns + `
		FROM anomalies an
		WHERE an.id = $1`

	a, err := scanAnomaly(querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return anomaly.Anomaly{}, anomaly.ErrAnomalyNotFound
		}
		return anomaly.Anomaly{}, fmt.Errorf("failed to get anomaly: %w", err)
	}

	return a, nil
}

// UpdateResolution only applies while the anomaly is still open, so racing
// resolvers cannot overwrite each other's verdict.
func (r *AnomalyRepository) UpdateResolution(ctx context.Context, update anomaly.ResolutionUpdate) (anomaly.Anomaly, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		UPDATE anomalies AS an
		SET status = $1,
		    resolved_by = $2,
		    resolution_note = $3,
		    resolved_at = $4,
		    updated_at = NOW()
		WHERE an.id = $5 AND an.status IN ($6, $7)
		RETURNING ` + anomalyColumns

	a, err := scanAnomaly(querier.QueryRow(ctx, query,
		update.Status,
		update.ResolvedBy,
		update.ResolutionNote,
		update.ResolvedAt,
		update.AnomalyID,
		anomaly.StatusPending,
		anomaly.StatusInvestigating,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return anomaly.Anomaly{}, anomaly.ErrInvalidResolutionState
		}
		return anomaly.Anomaly{}, fmt.Errorf("failed to update anomaly resolution: %w", err)
	}

	return a, nil
}

func (r *AnomalyRepository) List(ctx context.Context, filter anomaly.Filter) ([]anomaly.Anomaly, int64, error) {
	querier := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("an.user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("an.status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.Severity != nil {
		conditions = append(conditions, fmt.Sprintf("an.severity = $%d", argIndex))
		args = append(args, *filter.Severity)
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := `SELECT COUNT(*) FROM anomalies an WHERE ` + whereClause
	var total int64
	if err := querier.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count anomalies: %w", err)
	}

	query := `
		SELECT ` + anomalyColumns + `, a.full_name
		FROM anomalies an
		JOIN accounts a ON a.id = an.user_id
		WHERE ` + whereClause + `
		ORDER BY an.created_at DESC
		LIMIT $` + fmt.Sprint(argIndex) + ` OFFSET $` + fmt.Sprint(argIndex+1)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list anomalies: %w", err)
	}
	defer rows.Close()

	var anomalies []anomaly.Anomaly
	for rows.Next() {
		var a anomaly.Anomaly
		err := rows.Scan(
			&a.ID,
			&a.SessionID,
			&a.UserID,
			&a.Rule,
			&a.Description,
			&a.Severity,
			&a.Status,
			&a.ResolvedBy,
			&a.ResolutionNote,
			&a.ResolvedAt,
			&a.CreatedAt,
			&a.UpdatedAt,
			&a.UserName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan anomaly: %w", err)
		}
		anomalies = append(anomalies, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate anomalies: %w", err)
	}

	return anomalies, total, nil
}
