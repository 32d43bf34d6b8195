package ports

import (
	"context"

	"github.com/kontakty/contacts-api/internal/core/domain"
)

// ContactRepository is the only component allowed to mutate stored contacts.
type ContactRepository interface {
	List(ctx context.Context) ([]*domain.Contact, error)
	Search(ctx context.Context, filter domain.ContactFilter) ([]*domain.Contact, error)
	// GetByID returns domain.ErrContactNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*domain.Contact, error)
	// Create assigns c.ID. A duplicate email yields domain.ErrContactExists.
	Create(ctx context.Context, c *domain.Contact) (*domain.Contact, error)
	// Update overwrites the fields of domain.ContactUpdate and returns the
	// stored row, or domain.ErrContactNotFound.
	Update(ctx context.Context, id int64, u domain.ContactUpdate) (*domain.Contact, error)
	// Delete removes the row and returns it, or domain.ErrContactNotFound.
	Delete(ctx context.Context, id int64) (*domain.Contact, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// CategoryRepository reads and seeds the category taxonomy.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	// GetByID returns domain.ErrCategoryNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	Count(ctx context.Context) (int64, error)
	// Create inserts the category together with its subcategories and fills
	// in the assigned ids.
	Create(ctx context.Context, c *domain.Category) error
}
