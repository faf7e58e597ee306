package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"upnd.org/internal/comms"
)

// Communications returns the communication store backed by this handle.
func (s *Store) Communications() comms.Store { return (*commsStore)(s) }

type commsStore Store

var _ comms.Store = (*commsStore)(nil)

const commColumns = `
	id, message, channel, filter_province, filter_status, status,
	recipient_count, failed_count, created_by, created_at, updated_at`

func scanCommunication(row rowScanner) (comms.Communication, error) {
	var (
		c                                       comms.Communication
		filterProvince, filterStatus, createdBy sql.NullString
	)
	err := row.Scan(
		&c.ID, &c.Message, &c.Channel, &filterProvince, &filterStatus,
		&c.Status, &c.RecipientCount, &c.FailedCount, &createdBy,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return comms.Communication{}, err
	}
	c.Filter.Province = filterProvince.String
	c.Filter.Status = filterStatus.String
	c.CreatedBy = createdBy.String
	return c, nil
}

func (s *commsStore) Create(ctx context.Context, c *comms.Communication, recipients []comms.Recipient) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		insert into communications(`+commColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		c.ID, c.Message, c.Channel,
		nullIfEmpty(c.Filter.Province), nullIfEmpty(c.Filter.Status),
		c.Status, c.RecipientCount, c.FailedCount, nullIfEmpty(c.CreatedBy),
		c.CreatedAt, c.UpdatedAt,
	); err != nil {
		return err
	}
	for _, r := range recipients {
		if _, err := tx.ExecContext(ctx, `
			insert into communication_recipients(communication_id, member_id, destination, state, error)
			values ($1,$2,$3,$4,nullif($5,''))
		`, r.CommunicationID, r.MemberID, r.Destination, r.State, r.Error); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *commsStore) Find(ctx context.Context, id string) (comms.Communication, error) {
	row := s.db.QueryRowContext(ctx, `select `+commColumns+` from communications where id = $1`, id)
	c, err := scanCommunication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return comms.Communication{}, fmt.Errorf("%w: communication %s", comms.ErrNotFound, id)
	}
	return c, err
}

func (s *commsStore) List(ctx context.Context) ([]comms.Communication, error) {
	rows, err := s.db.QueryContext(ctx, `select `+commColumns+` from communications order by created_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []comms.Communication
	for rows.Next() {
		c, err := scanCommunication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *commsStore) Recipients(ctx context.Context, id string) ([]comms.Recipient, error) {
	rows, err := s.db.QueryContext(ctx, `
		select communication_id, member_id, destination, state, coalesce(error, '')
		from communication_recipients
		where communication_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []comms.Recipient
	for rows.Next() {
		var r comms.Recipient
		if err := rows.Scan(&r.CommunicationID, &r.MemberID, &r.Destination, &r.State, &r.Error); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *commsStore) UpdateStatus(ctx context.Context, id string, status comms.Status, failed int, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update communications set status = $2, failed_count = $3, updated_at = $4
		where id = $1
	`, id, status, failed, at)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: communication %s", comms.ErrNotFound, id)
	}
	return nil
}
