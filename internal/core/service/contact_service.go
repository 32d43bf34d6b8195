package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kontakty/contacts-api/internal/core/domain"
	"github.com/kontakty/contacts-api/internal/core/ports"
	"github.com/kontakty/contacts-api/internal/infrastructure/metrics"
)

type ContactService struct {
	contacts   ports.ContactRepository
	categories ports.CategoryRepository
	logger     zerolog.Logger
}

func NewContactService(contacts ports.ContactRepository, categories ports.CategoryRepository, logger zerolog.Logger) *ContactService {
	return &ContactService{contacts: contacts, categories: categories, logger: logger}
}

func (s *ContactService) List(ctx context.Context) ([]*domain.Contact, error) {
	return s.contacts.List(ctx)
}

func (s *ContactService) Search(ctx context.Context, filter domain.ContactFilter) ([]*domain.Contact, error) {
	if filter.IsEmpty() {
		return s.contacts.List(ctx)
	}
	return s.contacts.Search(ctx, filter)
}

func (s *ContactService) Get(ctx context.Context, id int64) (*domain.Contact, error) {
	return s.contacts.GetByID(ctx, id)
}

// Create stores a new contact. The email pre-check covers the common case;
// concurrent duplicates are rejected by the store and surface as the same
// domain.ErrContactExists.
func (s *ContactService) Create(ctx context.Context, input ports.ContactInput) (_ *domain.Contact, err error) {
	defer func() { recordMutation("create", err) }()

	category, err := s.classify(ctx, input.CategoryID, input.SubCategoryID)
	if err != nil {
		return nil, err
	}

	exists, err := s.contacts.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check contact email: %w", err)
	}
	if exists {
		return nil, domain.ErrContactExists
	}

	contact := &domain.Contact{
		Name:          input.Name,
		LastName:      input.LastName,
		Email:         input.Email,
		Password:      input.Password,
		CategoryID:    input.CategoryID,
		SubCategoryID: input.SubCategoryID,
		PhoneNumber:   input.PhoneNumber,
		DateOfBirth:   input.DateOfBirth,
	}
	if category.Name == domain.CategoryPersonal && input.CustomSubCategory != nil {
		if custom := strings.TrimSpace(*input.CustomSubCategory); custom != "" {
			contact.CustomSubCategory = &custom
		}
	}

	created, err := s.contacts.Create(ctx, contact)
	if err != nil {
		if !errors.Is(err, domain.ErrContactExists) {
			s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to create contact")
		}
		return nil, err
	}

	s.logger.Info().Int64("contact_id", created.ID).Msg("contact created")
	return created, nil
}

// Update overwrites the mutable fields of an existing contact. A different
// contact already holding the new email is reported by the store's unique
// index as domain.ErrContactExists.
func (s *ContactService) Update(ctx context.Context, id int64, input ports.ContactInput) (_ *domain.Contact, err error) {
	defer func() { recordMutation("update", err) }()

	// A missing contact is reported before any problem with the payload.
	if _, err := s.contacts.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.classify(ctx, input.CategoryID, input.SubCategoryID); err != nil {
		return nil, err
	}

	updated, err := s.contacts.Update(ctx, id, domain.ContactUpdate{
		Name:          input.Name,
		LastName:      input.LastName,
		Email:         input.Email,
		Password:      input.Password,
		CategoryID:    input.CategoryID,
		SubCategoryID: input.SubCategoryID,
		PhoneNumber:   input.PhoneNumber,
		DateOfBirth:   input.DateOfBirth,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrContactNotFound) && !errors.Is(err, domain.ErrContactExists) {
			s.logger.Error().Err(err).Int64("contact_id", id).Msg("failed to update contact")
		}
		return nil, err
	}

	s.logger.Info().Int64("contact_id", id).Msg("contact updated")
	return updated, nil
}

func (s *ContactService) Delete(ctx context.Context, id int64) (err error) {
	defer func() { recordMutation("delete", err) }()

	removed, err := s.contacts.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.logger.Info().Int64("contact_id", removed.ID).Str("email", removed.Email).Msg("contact deleted")
	return nil
}

// classify checks the category exists and that the subcategory, when given,
// belongs to it. Business contacts must name a subcategory.
func (s *ContactService) classify(ctx context.Context, categoryID int64, subCategoryID *int64) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			ve := domain.NewValidationError()
			ve.Add("categoryId", fmt.Sprintf("category %d does not exist", categoryID))
			return nil, ve
		}
		return nil, fmt.Errorf("load category: %w", err)
	}

	ve := domain.NewValidationError()
	switch {
	case subCategoryID != nil:
		if _, ok := category.FindSubCategory(*subCategoryID); !ok {
			ve.Add("subCategoryId", fmt.Sprintf("subcategory %d does not belong to category %s", *subCategoryID, category.Name))
		}
	case category.Name == domain.CategoryBusiness:
		ve.Add("subCategoryId", "subcategory is required for business contacts")
	}
	if ve.HasErrors() {
		return nil, ve
	}
	return category, nil
}

func recordMutation(op string, err error) {
	var ve *domain.ValidationError
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrContactExists):
		result = "conflict"
	case errors.Is(err, domain.ErrContactNotFound):
		result = "not_found"
	case errors.As(err, &ve):
		result = "invalid"
	default:
		result = "error"
	}
	metrics.ContactMutationsTotal.WithLabelValues(op, result).Inc()
}
