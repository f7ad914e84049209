package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type memberRow struct {
	ScheduleID string `db:"schedule_id"`
	UserEmail  string `db:"user_email"`
}

// loadMemberLists fetches the ordered users_list of every schedule id from
// the given membership table, keyed by schedule id.
func loadMemberLists(ctx context.Context, db *sqlx.DB, table string, ids []string) (map[string][]string, error) {
	lists := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return lists, nil
	}
	query := fmt.Sprintf("SELECT schedule_id, user_email FROM %s WHERE schedule_id = ANY($1) ORDER BY schedule_id, position", table)
	var rows []memberRow
	if err := db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	for _, row := range rows {
		lists[row.ScheduleID] = append(lists[row.ScheduleID], row.UserEmail)
	}
	return lists, nil
}

// appendMember adds a user to the end of a schedule's users_list.
func appendMember(ctx context.Context, db *sqlx.DB, table, scheduleID, email string) error {
	query := fmt.Sprintf(`INSERT INTO %s (schedule_id, user_email, position)
		SELECT $1, $2, COALESCE(MAX(position) + 1, 0) FROM %s WHERE schedule_id = $1`, table, table)
	if _, err := db.ExecContext(ctx, query, scheduleID, email); err != nil {
		return fmt.Errorf("append member to %s: %w", table, err)
	}
	return nil
}

// removeMember pulls every entry of a user from a schedule's users_list.
func removeMember(ctx context.Context, db *sqlx.DB, table, scheduleID, email string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE schedule_id = $1 AND user_email = $2", table)
	if _, err := db.ExecContext(ctx, query, scheduleID, email); err != nil {
		return fmt.Errorf("remove member from %s: %w", table, err)
	}
	return nil
}
