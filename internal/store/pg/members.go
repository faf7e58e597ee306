package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"upnd.org/internal/member"
)

// Members returns the member store backed by this handle.
func (s *Store) Members() member.Store { return (*memberStore)(s) }

type memberStore Store

var _ member.Store = (*memberStore)(nil)

const memberColumns = `
	id, membership_id, full_name, nrc_number, date_of_birth, gender, phone,
	email, province, district, constituency, ward, branch, section,
	address, occupation, status, registered_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (member.Member, error) {
	var (
		m                         member.Member
		gender, email, occupation sql.NullString
	)
	err := row.Scan(
		&m.ID, &m.MembershipID, &m.FullName, &m.NRCNumber, &m.DateOfBirth,
		&gender, &m.Phone, &email,
		&m.Jurisdiction.Province, &m.Jurisdiction.District,
		&m.Jurisdiction.Constituency, &m.Jurisdiction.Ward,
		&m.Jurisdiction.Branch, &m.Jurisdiction.Section,
		&m.Address, &occupation, &m.Status, &m.RegisteredAt, &m.UpdatedAt,
	)
	if err != nil {
		return member.Member{}, err
	}
	m.Gender = gender.String
	m.Email = email.String
	m.Occupation = occupation.String
	return m, nil
}

func (s *memberStore) Create(ctx context.Context, m *member.Member) error {
	_, err := s.db.ExecContext(ctx, `
		insert into members(`+memberColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`,
		m.ID, m.MembershipID, m.FullName, m.NRCNumber, m.DateOfBirth,
		nullIfEmpty(m.Gender), m.Phone, nullIfEmpty(m.Email),
		m.Jurisdiction.Province, m.Jurisdiction.District,
		m.Jurisdiction.Constituency, m.Jurisdiction.Ward,
		m.Jurisdiction.Branch, m.Jurisdiction.Section,
		m.Address, nullIfEmpty(m.Occupation), m.Status, m.RegisteredAt, m.UpdatedAt,
	)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
		return memberConflict(pgErr, m)
	}
	return err
}

// memberConflict maps a unique violation to the column that collided.
// The members table has two unique keys, nrc_number and membership_id.
func memberConflict(pgErr *pgconn.PgError, m *member.Member) error {
	switch {
	case strings.Contains(pgErr.ConstraintName, "membership"):
		return fmt.Errorf("%w: membership id %s already issued", member.ErrConflict, m.MembershipID)
	case strings.Contains(pgErr.ConstraintName, "nrc"):
		return fmt.Errorf("%w: nrc %s already registered", member.ErrConflict, m.NRCNumber)
	default:
		return fmt.Errorf("%w: member %s", member.ErrConflict, m.ID)
	}
}

func (s *memberStore) Find(ctx context.Context, id string) (member.Member, error) {
	row := s.db.QueryRowContext(ctx, `select `+memberColumns+` from members where id = $1`, id)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return member.Member{}, fmt.Errorf("%w: member %s", member.ErrNotFound, id)
	}
	return m, err
}

func (s *memberStore) Update(ctx context.Context, m member.Member) error {
	res, err := s.db.ExecContext(ctx, `
		update members set
			full_name = $2, nrc_number = $3, date_of_birth = $4, gender = $5,
			phone = $6, email = $7, province = $8, district = $9,
			constituency = $10, ward = $11, branch = $12, section = $13,
			address = $14, occupation = $15, status = $16, updated_at = $17
		where id = $1
	`,
		m.ID, m.FullName, m.NRCNumber, m.DateOfBirth, nullIfEmpty(m.Gender),
		m.Phone, nullIfEmpty(m.Email),
		m.Jurisdiction.Province, m.Jurisdiction.District,
		m.Jurisdiction.Constituency, m.Jurisdiction.Ward,
		m.Jurisdiction.Branch, m.Jurisdiction.Section,
		m.Address, nullIfEmpty(m.Occupation), m.Status, m.UpdatedAt,
	)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
		return memberConflict(pgErr, &m)
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: member %s", member.ErrNotFound, m.ID)
	}
	return nil
}

func (s *memberStore) SetStatus(ctx context.Context, id string, status member.Status, at time.Time) (member.Member, error) {
	row := s.db.QueryRowContext(ctx, `
		update members set status = $2, updated_at = $3
		where id = $1
		returning `+memberColumns+`
	`, id, status, at)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return member.Member{}, fmt.Errorf("%w: member %s", member.ErrNotFound, id)
	}
	return m, err
}

func (s *memberStore) List(ctx context.Context) ([]member.Member, error) {
	rows, err := s.db.QueryContext(ctx, `select `+memberColumns+` from members order by registered_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []member.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (s *memberStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from members where id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: member %s", member.ErrNotFound, id)
	}
	return nil
}
