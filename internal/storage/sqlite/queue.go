package sqlite

import (
	"fmt"

	"github.com/julianstephens/fitlog/internal/outbox"
	"github.com/julianstephens/fitlog/internal/storage"
)

func (s *Store) Enqueue(e outbox.Entry) (int64, error) {
	data, err := outbox.Encode(e.Mutation)
	if err != nil {
		return 0, err
	}
	res, err := s.db.Exec(`
		INSERT INTO sync_queue (table_name, action, data, xp_gained, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(e.Mutation.Table()), string(e.Mutation.Action()), string(data), e.XPGained, formatTime(e.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue %s %s: %w", e.Mutation.Table(), e.Mutation.Action(), err)
	}
	return res.LastInsertId()
}

// PendingEntries returns queued rows in creation order. The autoincrement
// id breaks ties between rows created in the same instant.
func (s *Store) PendingEntries() ([]outbox.Record, error) {
	rows, err := s.db.Query(`
		SELECT id, table_name, action, data, xp_gained, created_at
		FROM sync_queue ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []outbox.Record
	for rows.Next() {
		var (
			r                   outbox.Record
			table, action, data string
			createdAt           string
		)
		if err := rows.Scan(&r.ID, &table, &action, &data, &r.XPGained, &createdAt); err != nil {
			return nil, err
		}
		r.Table = outbox.Table(table)
		r.Action = outbox.Action(action)
		r.Data = []byte(data)
		if r.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) DeleteEntry(id int64) error {
	res, err := s.db.Exec(`DELETE FROM sync_queue WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete queue entry %d: %w", id, err)
	}
	if err := requireRow(res); err != nil {
		return fmt.Errorf("queue entry %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) CountPending() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM sync_queue`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
