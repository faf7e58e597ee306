package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"upnd.org/internal/events"
)

// Events returns the event store backed by this handle.
func (s *Store) Events() events.Store { return (*eventStore)(s) }

type eventStore Store

var _ events.Store = (*eventStore)(nil)

const eventColumns = `
	id, title, description, venue, province, district, starts_at, ends_at,
	status, created_at, updated_at`

func scanEvent(row rowScanner) (events.Event, error) {
	var (
		e                               events.Event
		description, province, district sql.NullString
		endsAt                          sql.NullTime
	)
	err := row.Scan(
		&e.ID, &e.Title, &description, &e.Venue, &province, &district,
		&e.StartsAt, &endsAt, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return events.Event{}, err
	}
	e.Description = description.String
	e.Province = province.String
	e.District = district.String
	if endsAt.Valid {
		e.EndsAt = endsAt.Time
	}
	return e, nil
}

func (s *eventStore) Create(ctx context.Context, e *events.Event) error {
	var endsAt sql.NullTime
	if !e.EndsAt.IsZero() {
		endsAt = sql.NullTime{Time: e.EndsAt, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		insert into events(`+eventColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		e.ID, e.Title, nullIfEmpty(e.Description), e.Venue,
		nullIfEmpty(e.Province), nullIfEmpty(e.District),
		e.StartsAt, endsAt, e.Status, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (s *eventStore) Find(ctx context.Context, id string) (events.Event, error) {
	row := s.db.QueryRowContext(ctx, `select `+eventColumns+` from events where id = $1`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return events.Event{}, fmt.Errorf("%w: event %s", events.ErrNotFound, id)
	}
	return e, err
}

func (s *eventStore) Update(ctx context.Context, e events.Event) error {
	var endsAt sql.NullTime
	if !e.EndsAt.IsZero() {
		endsAt = sql.NullTime{Time: e.EndsAt, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
		update events set
			title = $2, description = $3, venue = $4, province = $5,
			district = $6, starts_at = $7, ends_at = $8, status = $9,
			updated_at = $10
		where id = $1
	`,
		e.ID, e.Title, nullIfEmpty(e.Description), e.Venue,
		nullIfEmpty(e.Province), nullIfEmpty(e.District),
		e.StartsAt, endsAt, e.Status, e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: event %s", events.ErrNotFound, e.ID)
	}
	return nil
}

func (s *eventStore) List(ctx context.Context) ([]events.Event, error) {
	rows, err := s.db.QueryContext(ctx, `select `+eventColumns+` from events order by starts_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []events.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *eventStore) UpsertRSVP(ctx context.Context, r events.RSVP) error {
	_, err := s.db.ExecContext(ctx, `
		insert into event_rsvps(event_id, member_id, response, updated_at)
		values ($1,$2,$3,$4)
		on conflict (event_id, member_id) do update
		set response = excluded.response, updated_at = excluded.updated_at
	`, r.EventID, r.MemberID, r.Response, r.UpdatedAt)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
		return fmt.Errorf("%w: event %s or member %s", events.ErrNotFound, r.EventID, r.MemberID)
	}
	return err
}

func (s *eventStore) ListRSVPs(ctx context.Context, eventID string) ([]events.RSVP, error) {
	rows, err := s.db.QueryContext(ctx, `
		select event_id, member_id, response, updated_at
		from event_rsvps where event_id = $1
		order by updated_at asc
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []events.RSVP
	for rows.Next() {
		var r events.RSVP
		if err := rows.Scan(&r.EventID, &r.MemberID, &r.Response, &r.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
