package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stridelog/stridelog/internal/model"
)

var (
	ErrNotFound = errors.New("goal not found")
	ErrConflict = errors.New("goal version conflict")
)

// StorageError wraps a driver failure so callers can distinguish persistence
// outages from domain errors.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// Filter narrows a listing to a status and/or type. Empty fields match all.
type Filter struct {
	Status string
	Type   string
}

// ScanFilter bounds a scan by owner and/or creation time. Zero values are
// unbounded.
type ScanFilter struct {
	OwnerID string
	From    time.Time
	To      time.Time
}

type GoalRepository interface {
	Insert(ctx context.Context, goal *model.Goal) error
	ByID(ctx context.Context, ownerID, goalID string) (*model.Goal, error)
	List(ctx context.Context, ownerID string, filter Filter, offset, limit int) ([]*model.Goal, int, error)
	UpdateAtomic(ctx context.Context, goal *model.Goal, expectedVersion int64) error
	Delete(ctx context.Context, ownerID, goalID string) error
	Scan(ctx context.Context, filter ScanFilter) ([]*model.Goal, error)
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

// goalRow mirrors the goals table: a handful of indexed filter columns plus
// the full record as a JSON document. Writes always replace the whole
// document; version implements the optimistic concurrency check.
type goalRow struct {
	ID        string    `db:"id"`
	OwnerID   string    `db:"owner_id"`
	Status    string    `db:"status"`
	GoalType  string    `db:"goal_type"`
	Category  string    `db:"category"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Version   int64     `db:"version"`
	Doc       []byte    `db:"doc"`
}

func encodeRow(goal *model.Goal) (*goalRow, error) {
	doc, err := json.Marshal(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to encode goal document: %w", err)
	}
	return &goalRow{
		ID:        goal.ID,
		OwnerID:   goal.OwnerID,
		Status:    goal.Status,
		GoalType:  goal.Type,
		Category:  goal.Category,
		CreatedAt: goal.CreatedAt,
		UpdatedAt: goal.UpdatedAt,
		Version:   goal.Version,
		Doc:       doc,
	}, nil
}

func decodeRow(row *goalRow) (*model.Goal, error) {
	goal := &model.Goal{}
	err := json.Unmarshal(row.Doc, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to decode goal document %s: %w", row.ID, err)
	}
	goal.Version = row.Version
	return goal, nil
}

func (r *goalRepository) Insert(ctx context.Context, goal *model.Goal) error {
	goal.Version = 1

	row, err := encodeRow(goal)
	if err != nil {
		return err
	}

	query := `INSERT INTO goals (id, owner_id, status, goal_type, category, created_at, updated_at, version, doc)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.ExecContext(ctx, query,
		row.ID,
		row.OwnerID,
		row.Status,
		row.GoalType,
		row.Category,
		row.CreatedAt,
		row.UpdatedAt,
		row.Version,
		row.Doc,
	)
	if err != nil {
		return storageErr("insert", err)
	}

	return nil
}

func (r *goalRepository) ByID(ctx context.Context, ownerID, goalID string) (*model.Goal, error) {
	row := &goalRow{}
	query := `SELECT * FROM goals WHERE id = $1 AND owner_id = $2`

	err := r.db.GetContext(ctx, row, query, goalID, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get", err)
	}

	return decodeRow(row)
}

func (r *goalRepository) List(ctx context.Context, ownerID string, filter Filter, offset, limit int) ([]*model.Goal, int, error) {
	where := `WHERE owner_id = $1`
	args := []any{ownerID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where += ` AND goal_type = $` + strconv.Itoa(len(args))
	}

	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM goals `+where, args...)
	if err != nil {
		return nil, 0, storageErr("count", err)
	}

	query := fmt.Sprintf(`SELECT * FROM goals %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var rows []goalRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, 0, storageErr("list", err)
	}

	goals := make([]*model.Goal, 0, len(rows))
	for i := range rows {
		goal, err := decodeRow(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		goals = append(goals, goal)
	}

	return goals, total, nil
}

// UpdateAtomic replaces the goal document only if the stored version still
// matches expectedVersion. On success the goal's version is bumped; a lost
// race returns ErrConflict so the caller can retry its single mutation.
func (r *goalRepository) UpdateAtomic(ctx context.Context, goal *model.Goal, expectedVersion int64) error {
	goal.Version = expectedVersion + 1

	row, err := encodeRow(goal)
	if err != nil {
		return err
	}

	query := `UPDATE goals
	          SET status = $1, goal_type = $2, category = $3, updated_at = $4, version = $5, doc = $6
	          WHERE id = $7 AND owner_id = $8 AND version = $9`

	result, err := r.db.ExecContext(ctx, query,
		row.Status,
		row.GoalType,
		row.Category,
		row.UpdatedAt,
		row.Version,
		row.Doc,
		row.ID,
		row.OwnerID,
		expectedVersion,
	)
	if err != nil {
		goal.Version = expectedVersion
		return storageErr("update", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		goal.Version = expectedVersion
		return storageErr("update", err)
	}

	if rows == 0 {
		goal.Version = expectedVersion

		// Distinguish a vanished goal from a lost version race.
		var count int
		err = r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM goals WHERE id = $1 AND owner_id = $2`, row.ID, row.OwnerID)
		if err != nil {
			return storageErr("update", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}

	return nil
}

func (r *goalRepository) Delete(ctx context.Context, ownerID, goalID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND owner_id = $2`, goalID, ownerID)
	if err != nil {
		return storageErr("delete", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr("delete", err)
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Scan streams every goal created inside the filter window, oldest first.
// It is read-only and honors ctx cancellation mid-iteration, so a caller
// deadline aborts long scans cleanly.
func (r *goalRepository) Scan(ctx context.Context, filter ScanFilter) ([]*model.Goal, error) {
	var conds []string
	var args []any

	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conds = append(conds, `owner_id = $`+strconv.Itoa(len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conds = append(conds, `created_at >= $`+strconv.Itoa(len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conds = append(conds, `created_at < $`+strconv.Itoa(len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = ` WHERE ` + strings.Join(conds, ` AND `)
	}

	rows, err := r.db.QueryxContext(ctx, `SELECT * FROM goals`+where+` ORDER BY created_at ASC`, args...)
	if err != nil {
		return nil, storageErr("scan", err)
	}
	defer rows.Close()

	var goals []*model.Goal
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row := goalRow{}
		if err := rows.StructScan(&row); err != nil {
			return nil, storageErr("scan", err)
		}

		goal, err := decodeRow(&row)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("scan", err)
	}

	return goals, nil
}
