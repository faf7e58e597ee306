package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"upnd.org/internal/discipline"
)

// Discipline returns the case store backed by this handle.
func (s *Store) Discipline() discipline.Store { return (*disciplineStore)(s) }

type disciplineStore Store

var _ discipline.Store = (*disciplineStore)(nil)

const caseColumns = `
	id, member_id, member_name, violation_type, description, severity,
	status, reporting_officer, assigned_officer, actions, evidence, notes,
	reported_at, updated_at`

// Entry lists live as jsonb; appends rewrite the whole column, which is fine
// for the handful of entries a case accumulates.
func scanCase(row rowScanner) (discipline.Case, error) {
	var (
		c                                 discipline.Case
		assigned                          sql.NullString
		actionsRaw, evidenceRaw, notesRaw []byte
	)
	err := row.Scan(
		&c.ID, &c.MemberID, &c.MemberName, &c.ViolationType, &c.Description,
		&c.Severity, &c.Status, &c.ReportingOfficer, &assigned,
		&actionsRaw, &evidenceRaw, &notesRaw, &c.ReportedAt, &c.UpdatedAt,
	)
	if err != nil {
		return discipline.Case{}, err
	}
	c.AssignedOfficer = assigned.String
	if err := decodeEntries(actionsRaw, &c.Actions); err != nil {
		return discipline.Case{}, err
	}
	if err := decodeEntries(evidenceRaw, &c.Evidence); err != nil {
		return discipline.Case{}, err
	}
	if err := decodeEntries(notesRaw, &c.Notes); err != nil {
		return discipline.Case{}, err
	}
	return c, nil
}

func decodeEntries(raw []byte, dst *[]discipline.Entry) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode case entries: %w", err)
	}
	return nil
}

func entriesJSON(entries []discipline.Entry) ([]byte, error) {
	if entries == nil {
		entries = []discipline.Entry{}
	}
	return json.Marshal(entries)
}

func (s *disciplineStore) Create(ctx context.Context, c *discipline.Case) error {
	actions, err := entriesJSON(c.Actions)
	if err != nil {
		return err
	}
	evidence, err := entriesJSON(c.Evidence)
	if err != nil {
		return err
	}
	notes, err := entriesJSON(c.Notes)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into disciplinary_cases(`+caseColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		c.ID, c.MemberID, c.MemberName, c.ViolationType, c.Description,
		c.Severity, c.Status, c.ReportingOfficer, nullIfEmpty(c.AssignedOfficer),
		actions, evidence, notes, c.ReportedAt, c.UpdatedAt,
	)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
		return fmt.Errorf("%w: member %s", discipline.ErrValidation, c.MemberID)
	}
	return err
}

func (s *disciplineStore) Find(ctx context.Context, id string) (discipline.Case, error) {
	row := s.db.QueryRowContext(ctx, `select `+caseColumns+` from disciplinary_cases where id = $1`, id)
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return discipline.Case{}, fmt.Errorf("%w: case %s", discipline.ErrNotFound, id)
	}
	return c, err
}

func (s *disciplineStore) Update(ctx context.Context, c discipline.Case) error {
	actions, err := entriesJSON(c.Actions)
	if err != nil {
		return err
	}
	evidence, err := entriesJSON(c.Evidence)
	if err != nil {
		return err
	}
	notes, err := entriesJSON(c.Notes)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		update disciplinary_cases set
			severity = $2, status = $3, assigned_officer = $4,
			actions = $5, evidence = $6, notes = $7, updated_at = $8
		where id = $1
	`,
		c.ID, c.Severity, c.Status, nullIfEmpty(c.AssignedOfficer),
		actions, evidence, notes, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: case %s", discipline.ErrNotFound, c.ID)
	}
	return nil
}

func (s *disciplineStore) List(ctx context.Context) ([]discipline.Case, error) {
	return s.listWhere(ctx, ``)
}

func (s *disciplineStore) ListByMember(ctx context.Context, memberID string) ([]discipline.Case, error) {
	return s.listWhere(ctx, `where member_id = $1`, memberID)
}

func (s *disciplineStore) listWhere(ctx context.Context, where string, args ...any) ([]discipline.Case, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+caseColumns+` from disciplinary_cases `+where+` order by reported_at desc`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []discipline.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
