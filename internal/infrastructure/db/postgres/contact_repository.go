package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kontakty/contacts-api/internal/core/domain"
	"github.com/kontakty/contacts-api/internal/infrastructure/metrics"
)

// Category and subcategory names are joined in on every read.
const (
	contactColumns = `c.id, c.name, c.last_name, c.email, c.password, c.category_id, cat.name,
       c.sub_category_id, sc.name, c.custom_sub_category, c.phone_number, c.date_of_birth`
	contactJoins = `JOIN categories cat ON cat.id = c.category_id
LEFT JOIN sub_categories sc ON sc.id = c.sub_category_id`
)

// ContactRepository implements ports.ContactRepository using PostgreSQL.
type ContactRepository struct{ db *DB }

// NewContactRepository constructs a contact repository.
func NewContactRepository(db *DB) *ContactRepository { return &ContactRepository{db: db} }

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var c domain.Contact
	if err := row.Scan(&c.ID, &c.Name, &c.LastName, &c.Email, &c.Password, &c.CategoryID, &c.CategoryName,
		&c.SubCategoryID, &c.SubCategoryName, &c.CustomSubCategory, &c.PhoneNumber, &c.DateOfBirth); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContactRepository) query(ctx context.Context, op, q string, args ...any) ([]*domain.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	defer metrics.ObserveStore(storeLabel, op, time.Now())

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]*domain.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// List returns every contact ordered by id.
func (r *ContactRepository) List(ctx context.Context) ([]*domain.Contact, error) {
	q := `SELECT ` + contactColumns + ` FROM contacts c ` + contactJoins + ` ORDER BY c.id`
	return r.query(ctx, "contact_list", q)
}

// Search matches case-sensitive substrings of last name and phone number.
// An empty argument disables its predicate.
func (r *ContactRepository) Search(ctx context.Context, f domain.ContactFilter) ([]*domain.Contact, error) {
	q := `SELECT ` + contactColumns + ` FROM contacts c ` + contactJoins + `
WHERE ($1 = '' OR strpos(c.last_name, $1) > 0)
  AND ($2 = '' OR strpos(c.phone_number, $2) > 0)
ORDER BY c.id`
	return r.query(ctx, "contact_search", q, f.LastName, f.PhoneNumber)
}

// GetByID selects a contact by id.
func (r *ContactRepository) GetByID(ctx context.Context, id int64) (*domain.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	defer metrics.ObserveStore(storeLabel, "contact_get", time.Now())

	q := `SELECT ` + contactColumns + ` FROM contacts c ` + contactJoins + ` WHERE c.id = $1`
	c, err := scanContact(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

// Create inserts a contact and returns the stored row with its new id.
func (r *ContactRepository) Create(ctx context.Context, in *domain.Contact) (*domain.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	defer metrics.ObserveStore(storeLabel, "contact_create", time.Now())

	q := `WITH c AS (
INSERT INTO contacts (name, last_name, email, password, category_id, sub_category_id, custom_sub_category, phone_number, date_of_birth)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING *)
SELECT ` + contactColumns + ` FROM c ` + contactJoins
	c, err := scanContact(r.db.Pool.QueryRow(ctx, q,
		in.Name, in.LastName, in.Email, in.Password, in.CategoryID, in.SubCategoryID,
		in.CustomSubCategory, in.PhoneNumber, in.DateOfBirth))
	switch {
	case err == nil:
		return c, nil
	case isUniqueViolation(err):
		return nil, domain.ErrContactExists
	case isForeignKeyViolation(err):
		return nil, domain.ErrCategoryNotFound
	default:
		return nil, fmt.Errorf("create contact: %w", err)
	}
}

// Update overwrites the fields of u. custom_sub_category is left as stored.
func (r *ContactRepository) Update(ctx context.Context, id int64, u domain.ContactUpdate) (*domain.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	defer metrics.ObserveStore(storeLabel, "contact_update", time.Now())

	q := `WITH c AS (
UPDATE contacts
SET name = $2, last_name = $3, email = $4, password = $5, category_id = $6,
    sub_category_id = $7, phone_number = $8, date_of_birth = $9
WHERE id = $1
RETURNING *)
SELECT ` + contactColumns + ` FROM c ` + contactJoins
	c, err := scanContact(r.db.Pool.QueryRow(ctx, q,
		id, u.Name, u.LastName, u.Email, u.Password, u.CategoryID, u.SubCategoryID, u.PhoneNumber, u.DateOfBirth))
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, domain.ErrContactNotFound
	case isUniqueViolation(err):
		return nil, domain.ErrContactExists
	case isForeignKeyViolation(err):
		return nil, domain.ErrCategoryNotFound
	default:
		return nil, fmt.Errorf("update contact: %w", err)
	}
}

// Delete removes a contact and returns the removed row.
func (r *ContactRepository) Delete(ctx context.Context, id int64) (*domain.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	defer metrics.ObserveStore(storeLabel, "contact_delete", time.Now())

	q := `WITH c AS (DELETE FROM contacts WHERE id = $1 RETURNING *)
SELECT ` + contactColumns + ` FROM c ` + contactJoins
	c, err := scanContact(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("delete contact: %w", err)
	}
	return c, nil
}

// ExistsByEmail reports whether a contact holds exactly this email.
func (r *ContactRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	defer metrics.ObserveStore(storeLabel, "contact_exists", time.Now())

	var ok bool
	if err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM contacts WHERE email = $1)`, email).Scan(&ok); err != nil {
		return false, fmt.Errorf("check contact email: %w", err)
	}
	return ok, nil
}
