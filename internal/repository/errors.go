package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Common repository errors
var (
	// ErrTaskNotFound is returned when a task is not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrTeamNotFound is returned when a team is not found
	ErrTeamNotFound = errors.New("team not found")

	// ErrProfileNotFound is returned when a profile is not found
	ErrProfileNotFound = errors.New("profile not found")

	// ErrAssigneeNotFound is returned when a task names an unknown assignee
	ErrAssigneeNotFound = errors.New("assignee not found")
)

const foreignKeyViolation = "23503"

// taskReferenceError maps a foreign key violation on tasks to the sentinel
// for the missing row. Other errors are returned unchanged.
func taskReferenceError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != foreignKeyViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "tasks_team_id_fkey":
		return ErrTeamNotFound
	case "tasks_assignee_id_fkey":
		return ErrAssigneeNotFound
	case "tasks_created_by_fkey":
		return ErrProfileNotFound
	}
	return err
}
