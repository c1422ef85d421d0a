package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/attendance"
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/database"
)

type SessionRepository struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) attendance.SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	s.id, s.user_id, s.date, s.session_type, s.check_in_at, s.check_out_at,
	s.worked_minutes, s.device_fingerprint, s.photo_url,
	s.check_in_latitude, s.check_in_longitude, s.face_verified, s.face_score,
	s.check_out_latitude, s.check_out_longitude, s.created_at, s.updated_at`

func scanSession(row pgx.Row) (attendance.Session, error) {
	var s attendance.Session
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Date,
		&s.SessionType,
		&s.CheckInAt,
		&s.CheckOutAt,
		&s.WorkedMinutes,
		&s.DeviceFingerprint,
		&s.PhotoURL,
		&s.CheckInLatitude,
		&s.CheckInLongitude,
		&s.FaceVerified,
		&s.FaceScore,
		&s.CheckOutLatitude,
		&s.CheckOutLongitude,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

// Create inserts the check-in row. The unique index on
// (user_id, date, session_type) decides races between concurrent check-ins:
// exactly one insert wins, the rest map to ErrAlreadyCheckedIn.
func (r *SessionRepository) Create(ctx context.Context, session attendance.Session) (attendance.Session, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_sessions AS s
			(id, user_id, date, session_type, check_in_at,
			 device_fingerprint, photo_url, check_in_latitude, check_in_longitude,
			 face_verified, face_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + sessionColumns

	created, err := scanSession(querier.QueryRow(ctx, query,
		session.ID,
		session.UserID,
		session.Date,
		session.SessionType,
		session.CheckInAt,
		session.DeviceFingerprint,
		session.PhotoURL,
		session.CheckInLatitude,
		session.CheckInLongitude,
		session.FaceVerified,
		session.FaceScore,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Session{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Session{}, fmt.Errorf("failed to create attendance session: %w", err)
	}

	return created, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (attendance.Session, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions s
		WHERE s.id = $1`

	s, err := scanSession(querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Session{}, attendance.ErrSessionNotFound
		}
		return attendance.Session{}, fmt.Errorf("failed to get attendance session: %w", err)
	}

	return s, nil
}

func (r *SessionRepository) GetByUserDateType(ctx context.Context, userID string, date time.Time, sessionType attendance.SessionType) (*attendance.Session, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions s
		WHERE s.user_id = $1 AND s.date = $2 AND s.session_type = $3`

	s, err := scanSession(querier.QueryRow(ctx, query, userID, date, sessionType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance session: %w", err)
	}

	return &s, nil
}

// Close sets check-out data only while check_out_at is still NULL, so two
// racing check-outs cannot both succeed.
func (r *SessionRepository) Close(ctx context.Context, update attendance.CloseUpdate) (attendance.Session, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_sessions AS s
		SET check_out_at = $1,
		    worked_minutes = $2,
		    check_out_latitude = $3,
		    check_out_longitude = $4,
		    updated_at = NOW()
		WHERE s.id = $5 AND s.check_out_at IS NULL
		RETURNING ` + sessionColumns

	s, err := scanSession(querier.QueryRow(ctx, query,
		update.CheckOutAt,
		update.WorkedMinutes,
		update.CheckOutLatitude,
		update.CheckOutLongitude,
		update.SessionID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Session{}, attendance.ErrNoOpenCheckIn
		}
		return attendance.Session{}, fmt.Errorf("failed to close attendance session: %w", err)
	}

	return s, nil
}

func (r *SessionRepository) GetTodaySessions(ctx context.Context, userID string, date time.Time) (*attendance.Session, *attendance.Session, error) {
	querier := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions s
		WHERE s.user_id = $1 AND s.date = $2`

	rows, err := querier.Query(ctx, query, userID, date)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get today sessions: %w", err)
	}
	defer rows.Close()

	var morning, afternoon *attendance.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan attendance session: %w", err)
		}
		switch s.SessionType {
		case attendance.SessionMorning:
			tmp := s
			morning = &tmp
		case attendance.SessionAfternoon:
			tmp := s
			afternoon = &tmp
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate today sessions: %w", err)
	}

	return morning, afternoon, nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string, filter attendance.MySessionFilter) ([]attendance.Session, int64, error) {
	conditions := []string{"s.user_id = $1"}
	args := []interface{}{userID}
	argIndex := 2

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("s.date >= $%d", argIndex))
		args = append(args, *filter.StartDate)
		argIndex++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("s.date <= $%d", argIndex))
		args = append(args, *filter.EndDate)
		argIndex++
	}

	return r.list(ctx, conditions, args, argIndex, filter.Page, filter.Limit)
}

func (r *SessionRepository) List(ctx context.Context, filter attendance.SessionFilter) ([]attendance.Session, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("s.user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}
	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("s.date = $%d", argIndex))
		args = append(args, *filter.Date)
		argIndex++
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("s.date >= $%d", argIndex))
		args = append(args, *filter.StartDate)
		argIndex++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("s.date <= $%d", argIndex))
		args = append(args, *filter.EndDate)
		argIndex++
	}

	return r.list(ctx, conditions, args, argIndex, filter.Page, filter.Limit)
}

func (r *SessionRepository) list(ctx context.Context, conditions []string, args []interface{}, argIndex, page, limit int) ([]attendance.Session, int64, error) {
	querier := GetQuerier(ctx, r.db)

	whereClause := strings.Join(conditions, " AND ")

	countQuery := `SELECT COUNT(*) FROM attendance_sessions s WHERE ` + whereClause
	var total int64
	if err := querier.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance sessions: %w", err)
	}

	query := `
		SELECT ` + sessionColumns + `, a.full_name
		FROM attendance_sessions s
		JOIN accounts a ON a.id = s.user_id
		WHERE ` + whereClause + `
		ORDER BY s.date DESC, s.session_type ASC
		LIMIT $` + fmt.Sprint(argIndex) + ` OFFSET $` + fmt.Sprint(argIndex+1)

	args = append(args, limit, (page-1)*limit)

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance sessions: %w", err)
	}
	defer rows.Close()

	var sessions []attendance.Session
	for rows.Next() {
		var s attendance.Session
		err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Date,
			&s.SessionType,
			&s.CheckInAt,
			&s.CheckOutAt,
			&s.WorkedMinutes,
			&s.DeviceFingerprint,
			&s.PhotoURL,
			&s.CheckInLatitude,
			&s.CheckInLongitude,
			&s.FaceVerified,
			&s.FaceScore,
			&s.CheckOutLatitude,
			&s.CheckOutLongitude,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.UserName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendance sessions: %w", err)
	}

	return sessions, total, nil
}
