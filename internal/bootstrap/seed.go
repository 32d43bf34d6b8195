// Package bootstrap prepares the stores on startup: default roles, the
// category taxonomy, and optional sample contacts. Every step is idempotent.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kontakty/contacts-api/internal/core/domain"
	"github.com/kontakty/contacts-api/internal/core/ports"
)

// DefaultCategories is the taxonomy created on an empty store.
var DefaultCategories = []domain.Category{
	{Name: domain.CategoryBusiness, SubCategories: []domain.SubCategory{{Name: "Boss"}, {Name: "Client"}}},
	{Name: domain.CategoryPersonal},
	{Name: domain.CategoryOther},
}

type sampleContact struct {
	contact     domain.Contact
	category    string
	subCategory string
}

func sampleContacts() []sampleContact {
	friends := "Friends"
	return []sampleContact{
		{
			contact: domain.Contact{
				Name:        "Jan",
				LastName:    "Kowalski",
				Email:       "jan.kowalski@example.com",
				Password:    "haslo123",
				PhoneNumber: "123-456-789",
				DateOfBirth: time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
			},
			category:    domain.CategoryBusiness,
			subCategory: "Client",
		},
		{
			contact: domain.Contact{
				Name:              "Anna",
				LastName:          "Nowak",
				Email:             "anna.nowak@example.com",
				Password:          "tajnehaslo",
				CustomSubCategory: &friends,
				PhoneNumber:       "987-654-321",
				DateOfBirth:       time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC),
			},
			category: domain.CategoryPersonal,
		},
	}
}

// Seeder writes the initial data through the repository ports.
type Seeder struct {
	roles      ports.RoleRepository
	categories ports.CategoryRepository
	contacts   ports.ContactRepository
	log        zerolog.Logger
}

func NewSeeder(roles ports.RoleRepository, categories ports.CategoryRepository, contacts ports.ContactRepository, log zerolog.Logger) *Seeder {
	return &Seeder{roles: roles, categories: categories, contacts: contacts, log: log}
}

// Run seeds roles and categories, and the sample contacts when withSamples
// is set.
func (s *Seeder) Run(ctx context.Context, withSamples bool) error {
	if err := s.seedRoles(ctx); err != nil {
		return err
	}
	if err := s.seedCategories(ctx); err != nil {
		return err
	}
	if !withSamples {
		return nil
	}
	return s.seedContacts(ctx)
}

func (s *Seeder) seedRoles(ctx context.Context) error {
	for _, role := range domain.DefaultRoles {
		created, err := s.roles.Ensure(ctx, role)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", role, err)
		}
		if created {
			s.log.Info().Str("role", string(role)).Msg("role created")
		}
	}
	return nil
}

// seedCategories only writes into an empty taxonomy so operator edits
// survive restarts.
func (s *Seeder) seedCategories(ctx context.Context) error {
	n, err := s.categories.Count(ctx)
	if err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if n > 0 {
		return nil
	}

	for _, def := range DefaultCategories {
		cat := def
		cat.SubCategories = append([]domain.SubCategory(nil), def.SubCategories...)
		if err := s.categories.Create(ctx, &cat); err != nil {
			return fmt.Errorf("seed category %s: %w", cat.Name, err)
		}
		s.log.Info().Str("category", cat.Name).Int("subcategories", len(cat.SubCategories)).Msg("category created")
	}
	return nil
}

func (s *Seeder) seedContacts(ctx context.Context) error {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	byName := make(map[string]domain.Category, len(categories))
	for _, c := range categories {
		byName[c.Name] = c
	}

	for _, sample := range sampleContacts() {
		exists, err := s.contacts.ExistsByEmail(ctx, sample.contact.Email)
		if err != nil {
			return fmt.Errorf("check sample contact: %w", err)
		}
		if exists {
			continue
		}

		cat, ok := byName[sample.category]
		if !ok {
			s.log.Warn().Str("category", sample.category).Msg("sample contact skipped, category missing")
			continue
		}
		contact := sample.contact
		contact.CategoryID = cat.ID
		if sample.subCategory != "" {
			sub, ok := findSubCategory(cat, sample.subCategory)
			if !ok {
				s.log.Warn().Str("subcategory", sample.subCategory).Msg("sample contact skipped, subcategory missing")
				continue
			}
			contact.SubCategoryID = &sub.ID
		}

		created, err := s.contacts.Create(ctx, &contact)
		if err != nil {
			return fmt.Errorf("seed contact %s: %w", contact.Email, err)
		}
		s.log.Info().Int64("contact_id", created.ID).Str("email", created.Email).Msg("sample contact created")
	}
	return nil
}

func findSubCategory(c domain.Category, name string) (domain.SubCategory, bool) {
	for _, sub := range c.SubCategories {
		if sub.Name == name {
			return sub, true
		}
	}
	return domain.SubCategory{}, false
}
