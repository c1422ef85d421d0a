package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/employee"
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/database"
)

type ProfileRepository struct {
	db *database.DB
}

func NewProfileRepository(db *database.DB) employee.ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `
	p.id, p.user_id, p.full_name, p.position, p.department, p.phone,
	p.status, p.rejection_reason, p.submitted_at, p.decided_by, p.decided_at,
	p.created_at, p.updated_at`

func scanProfile(row pgx.Row) (employee.Profile, error) {
	var p employee.Profile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.FullName,
		&p.Position,
		&p.Department,
		&p.Phone,
		&p.Status,
		&p.RejectionReason,
		&p.SubmittedAt,
		&p.DecidedBy,
		&p.DecidedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *ProfileRepository) Create(ctx context.Context, profile employee.Profile) (employee.Profile, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_profiles AS p
			(id, user_id, full_name, position, department, phone, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + profileColumns

	created, err := scanProfile(querier.QueryRow(ctx, query,
		profile.ID,
		profile.UserID,
		profile.FullName,
		profile.Position,
		profile.Department,
		profile.Phone,
		profile.Status,
		profile.SubmittedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return employee.Profile{}, employee.ErrProfileAlreadySubmitted
		}
		return employee.Profile{}, fmt.Errorf("failed to create employee profile: %w", err)
	}

	return created, nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (employee.Profile, error) {
	return r.getBy(ctx, "p.id = $1", id, "")
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (employee.Profile, error) {
	return r.getBy(ctx, "p.user_id = $1", userID, "")
}

// GetByIDForUpdate locks the profile row until the surrounding transaction
// ends. Must be called inside WithTransaction.
func (r *ProfileRepository) GetByIDForUpdate(ctx context.Context, id string) (employee.Profile, error) {
	return r.getBy(ctx, "p.id = $1", id, " FOR UPDATE OF p")
}

func (r *ProfileRepository) getBy(ctx context.Context, where, arg, suffix string) (employee.Profile, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + profileColumns + `
		FROM employee_profiles p
		WHERE ` + where + suffix

	p, err := scanProfile(querier.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Profile{}, employee.ErrProfileNotFound
		}
		return employee.Profile{}, fmt.Errorf("failed to get employee profile: %w", err)
	}

	return p, nil
}

func (r *ProfileRepository) UpdateStatus(ctx context.Context, update employee.StatusUpdate) error {
	querier := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_profiles
		SET status = $1,
		    rejection_reason = $2,
		    decided_by = $3,
		    decided_at = NOW(),
		    updated_at = NOW()
		WHERE id = $4`

	tag, err := querier.Exec(ctx, query,
		update.Status,
		update.RejectionReason,
		update.DecidedBy,
		update.ProfileID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrProfileNotFound
	}

	return nil
}

// Resubmit rewrites profile data and returns it to EN_ATTENTE. The prior
// rejection reason and decider are cleared; decision rows keep the history.
func (r *ProfileRepository) Resubmit(ctx context.Context, profile employee.Profile) (employee.Profile, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_profiles AS p
		SET full_name = $1,
		    position = $2,
		    department = $3,
		    phone = $4,
		    status = $5,
		    rejection_reason = NULL,
		    decided_by = NULL,
		    decided_at = NULL,
		    submitted_at = NOW(),
		    updated_at = NOW()
		WHERE p.id = $6
		RETURNING ` + profileColumns

	updated, err := scanProfile(querier.QueryRow(ctx, query,
		profile.FullName,
		profile.Position,
		profile.Department,
		profile.Phone,
		employee.StatusEnAttente,
		profile.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Profile{}, employee.ErrProfileNotFound
		}
		return employee.Profile{}, fmt.Errorf("failed to resubmit employee profile: %w", err)
	}

	return updated, nil
}

func (r *ProfileRepository) List(ctx context.Context, filter employee.ProfileFilter) ([]employee.Profile, int64, error) {
	querier := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.FullName != nil {
		conditions = append(conditions, fmt.Sprintf("p.full_name ILIKE $%d", argIndex))
		args = append(args, "%"+*filter.FullName+"%")
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := `SELECT COUNT(*) FROM employee_profiles p WHERE ` + whereClause
	var total int64
	if err := querier.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employee profiles: %w", err)
	}

	query := `
		SELECT ` + profileColumns + `, a.email
		FROM employee_profiles p
		JOIN accounts a ON a.id = p.user_id
		WHERE ` + whereClause + `
		ORDER BY p.submitted_at ASC
		LIMIT $` + fmt.Sprint(argIndex) + ` OFFSET $` + fmt.Sprint(argIndex+1)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employee profiles: %w", err)
	}
	defer rows.Close()

	var profiles []employee.Profile
	for rows.Next() {
		var p employee.Profile
		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.FullName,
			&p.Position,
			&p.Department,
			&p.Phone,
			&p.Status,
			&p.RejectionReason,
			&p.SubmittedAt,
			&p.DecidedBy,
			&p.DecidedAt,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.Email,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan employee profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate employee profiles: %w", err)
	}

	return profiles, total, nil
}
