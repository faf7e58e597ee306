package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"upnd.org/internal/cards"
)

// Cards returns the membership card store backed by this handle.
func (s *Store) Cards() cards.Store { return (*cardStore)(s) }

type cardStore Store

var _ cards.Store = (*cardStore)(nil)

const cardColumns = `id, card_number, member_id, issued_at, expires_at, status`

func scanCard(row rowScanner) (cards.Card, error) {
	var c cards.Card
	err := row.Scan(&c.ID, &c.CardNumber, &c.MemberID, &c.IssuedAt, &c.ExpiresAt, &c.Status)
	return c, err
}

func (s *cardStore) Create(ctx context.Context, c *cards.Card) error {
	_, err := s.db.ExecContext(ctx, `
		insert into membership_cards(`+cardColumns+`)
		values ($1,$2,$3,$4,$5,$6)
	`, c.ID, c.CardNumber, c.MemberID, c.IssuedAt, c.ExpiresAt, c.Status)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
		return fmt.Errorf("%w: member %s", cards.ErrNotFound, c.MemberID)
	}
	return err
}

func (s *cardStore) Find(ctx context.Context, id string) (cards.Card, error) {
	row := s.db.QueryRowContext(ctx, `select `+cardColumns+` from membership_cards where id = $1`, id)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return cards.Card{}, fmt.Errorf("%w: card %s", cards.ErrNotFound, id)
	}
	return c, err
}

func (s *cardStore) ListByMember(ctx context.Context, memberID string) ([]cards.Card, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+cardColumns+` from membership_cards
		where member_id = $1 order by issued_at desc
	`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []cards.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *cardStore) SetStatus(ctx context.Context, id string, status cards.Status) (cards.Card, error) {
	row := s.db.QueryRowContext(ctx, `
		update membership_cards set status = $2
		where id = $1
		returning `+cardColumns+`
	`, id, status)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return cards.Card{}, fmt.Errorf("%w: card %s", cards.ErrNotFound, id)
	}
	return c, err
}

func (s *cardStore) ExpireBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		update membership_cards set status = $1
		where status = $2 and expires_at < $3
	`, cards.StatusExpired, cards.StatusActive, cutoff)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	return int(affected), err
}
