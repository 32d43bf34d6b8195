package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kontakty/contacts-api/internal/core/domain"
	"github.com/kontakty/contacts-api/internal/infrastructure/metrics"
)

const categoryQuery = `SELECT cat.id, cat.name, sc.id, sc.name
FROM categories cat
LEFT JOIN sub_categories sc ON sc.category_id = cat.id`

// CategoryRepository implements ports.CategoryRepository using PostgreSQL.
type CategoryRepository struct{ db *DB }

// NewCategoryRepository constructs a category repository.
func NewCategoryRepository(db *DB) *CategoryRepository { return &CategoryRepository{db: db} }

// List returns all categories with their subcategories, ordered by id.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	return r.load(ctx, "category_list", categoryQuery+` ORDER BY cat.id, sc.id`)
}

// GetByID returns a single category with its subcategories.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	out, err := r.load(ctx, "category_get", categoryQuery+` WHERE cat.id = $1 ORDER BY sc.id`, id)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrCategoryNotFound
	}
	return &out[0], nil
}

// load folds the flat LEFT JOIN rows into categories. Rows must arrive
// grouped by category.
func (r *CategoryRepository) load(ctx context.Context, op, q string, args ...any) ([]domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	defer metrics.ObserveStore(storeLabel, op, time.Now())

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]domain.Category, 0)
	for rows.Next() {
		var (
			catID   int64
			catName string
			subID   *int64
			subName *string
		)
		if err := rows.Scan(&catID, &catName, &subID, &subName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if n := len(out); n == 0 || out[n-1].ID != catID {
			out = append(out, domain.Category{ID: catID, Name: catName, SubCategories: []domain.SubCategory{}})
		}
		if subID != nil && subName != nil {
			last := &out[len(out)-1]
			last.SubCategories = append(last.SubCategories, domain.SubCategory{ID: *subID, Name: *subName, CategoryID: catID})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Count returns the number of categories.
func (r *CategoryRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// Create inserts a category and its subcategories in one transaction and
// fills in the assigned ids.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (err error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = fmt.Errorf("commit: %w", e)
		}
	}()

	if err = tx.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, c.Name).Scan(&c.ID); err != nil {
		return fmt.Errorf("insert category %q: %w", c.Name, err)
	}
	for i := range c.SubCategories {
		sub := &c.SubCategories[i]
		sub.CategoryID = c.ID
		if err = tx.QueryRow(ctx, `INSERT INTO sub_categories (name, category_id) VALUES ($1, $2) RETURNING id`,
			sub.Name, c.ID).Scan(&sub.ID); err != nil {
			return fmt.Errorf("insert subcategory %q: %w", sub.Name, err)
		}
	}
	return nil
}
