package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"upnd.org/internal/auth"
	"upnd.org/internal/jurisdiction"
)

// Users returns the account store backed by this handle.
func (s *Store) Users() auth.UserStore { return (*userStore)(s) }

// RefreshTokens returns the refresh token store backed by this handle.
func (s *Store) RefreshTokens() auth.RefreshTokenStore { return (*refreshStore)(s) }

var _ auth.Store = (*Store)(nil)

type userStore Store

const userColumns = `
	id, email, password_hash, full_name, role, level, province, district,
	constituency, ward, branch, section, party_position, status,
	created_at, updated_at`

func scanUser(row rowScanner) (*auth.User, error) {
	var (
		u             auth.User
		role, level   string
		partyPosition sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &role, &level,
		&u.Jurisdiction.Province, &u.Jurisdiction.District,
		&u.Jurisdiction.Constituency, &u.Jurisdiction.Ward,
		&u.Jurisdiction.Branch, &u.Jurisdiction.Section,
		&partyPosition, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	u.Level = jurisdiction.Level(level)
	u.PartyPosition = partyPosition.String
	return &u, nil
}

func (s *userStore) Create(ctx context.Context, user *auth.User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users(`+userColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		user.ID, strings.ToLower(user.Email), user.PasswordHash, user.FullName,
		string(user.Role), string(user.Level),
		user.Jurisdiction.Province, user.Jurisdiction.District,
		user.Jurisdiction.Constituency, user.Jurisdiction.Ward,
		user.Jurisdiction.Branch, user.Jurisdiction.Section,
		nullIfEmpty(user.PartyPosition), user.Status,
		user.CreatedAt, user.UpdatedAt,
	)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
		return fmt.Errorf("%w: email %s", auth.ErrConflict, user.Email)
	}
	return err
}

func (s *userStore) Find(ctx context.Context, id string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id = $1`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", auth.ErrNotFound, id)
	}
	return user, err
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email = $1`, strings.ToLower(email))
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: email %s", auth.ErrNotFound, email)
	}
	return user, err
}

func (s *userStore) Update(ctx context.Context, user *auth.User) error {
	res, err := s.db.ExecContext(ctx, `
		update users set
			email = $2, password_hash = $3, full_name = $4, role = $5,
			level = $6, province = $7, district = $8, constituency = $9,
			ward = $10, branch = $11, section = $12, party_position = $13,
			status = $14, updated_at = $15
		where id = $1
	`,
		user.ID, strings.ToLower(user.Email), user.PasswordHash, user.FullName,
		string(user.Role), string(user.Level),
		user.Jurisdiction.Province, user.Jurisdiction.District,
		user.Jurisdiction.Constituency, user.Jurisdiction.Ward,
		user.Jurisdiction.Branch, user.Jurisdiction.Section,
		nullIfEmpty(user.PartyPosition), user.Status, user.UpdatedAt,
	)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
		return fmt.Errorf("%w: email %s", auth.ErrConflict, user.Email)
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: user %s", auth.ErrNotFound, user.ID)
	}
	return nil
}

func (s *userStore) List(ctx context.Context) ([]*auth.User, error) {
	rows, err := s.db.QueryContext(ctx, `select `+userColumns+` from users order by created_at asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*auth.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

type refreshStore Store

func (s *refreshStore) Create(ctx context.Context, token *auth.RefreshToken) error {
	_, err := s.db.ExecContext(ctx, `
		insert into refresh_tokens(id, user_id, token_hash, expires_at, revoked, created_at)
		values ($1,$2,$3,$4,$5,$6)
	`, token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.Revoked, token.CreatedAt)
	return err
}

func (s *refreshStore) Find(ctx context.Context, id string) (*auth.RefreshToken, error) {
	var t auth.RefreshToken
	err := s.db.QueryRowContext(ctx, `
		select id, user_id, token_hash, expires_at, revoked, created_at
		from refresh_tokens where id = $1
	`, id).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: refresh token %s", auth.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *refreshStore) MarkRevoked(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `update refresh_tokens set revoked = true where id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: refresh token %s", auth.ErrNotFound, id)
	}
	return nil
}

func (s *refreshStore) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `update refresh_tokens set revoked = true where user_id = $1`, userID)
	return err
}
