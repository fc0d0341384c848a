package activitylog

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, rec Record) (*Entry, error) {
	var details json.RawMessage
	if rec.Details != nil {
		data, err := json.Marshal(rec.Details)
		if err != nil {
			return nil, err
		}
		details = data
	}

	var userID *string
	if rec.UserID != "" {
		userID = &rec.UserID
	}

	query := `
		INSERT INTO activity_logs (id, user_id, user_name, service, action, details, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, user_name, service, action, details, ip_address, created_at
	`

	var entry Entry
	err := r.db.GetContext(ctx, &entry, query,
		uuid.New().String(), userID, rec.UserName, rec.Service, rec.Action, details, rec.IPAddress)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) (*ListResult, error) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if filters.Service != "" {
		args = append(args, filters.Service)
		where += " AND service = $" + strconv.Itoa(len(args))
	}
	if filters.Action != "" {
		args = append(args, filters.Action)
		where += " AND action = $" + strconv.Itoa(len(args))
	}
	if filters.UserID != "" {
		args = append(args, filters.UserID)
		where += " AND user_id = $" + strconv.Itoa(len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM activity_logs"+where, args...); err != nil {
		return nil, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit)
	limitPos := len(args)
	args = append(args, offset)
	offsetPos := len(args)

	query := `
		SELECT id, user_id, user_name, service, action, details, ip_address, created_at
		FROM activity_logs` + where + `
		ORDER BY created_at DESC
		LIMIT $` + strconv.Itoa(limitPos) + ` OFFSET $` + strconv.Itoa(offsetPos)

	var logs []Entry
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, err
	}

	return &ListResult{Total: total, Logs: logs}, nil
}

