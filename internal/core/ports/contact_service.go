package ports

import (
	"context"
	"time"

	"github.com/kontakty/contacts-api/internal/core/domain"
)

// ContactInput is the DTO passed from the transport layer to ContactService
// for both create and update.
type ContactInput struct {
	Name              string
	LastName          string
	Email             string
	Password          string
	CategoryID        int64
	SubCategoryID     *int64
	CustomSubCategory *string
	PhoneNumber       string
	DateOfBirth       time.Time
}

// ContactService defines use-case operations for contacts.
type ContactService interface {
	List(ctx context.Context) ([]*domain.Contact, error)
	Search(ctx context.Context, filter domain.ContactFilter) ([]*domain.Contact, error)
	Get(ctx context.Context, id int64) (*domain.Contact, error)
	Create(ctx context.Context, input ContactInput) (*domain.Contact, error)
	Update(ctx context.Context, id int64, input ContactInput) (*domain.Contact, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryService exposes the category taxonomy to the transport layer.
type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}
