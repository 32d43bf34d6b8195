package handler

import (
	"time"

	"github.com/kontakty/contacts-api/internal/core/domain"
	"github.com/kontakty/contacts-api/internal/core/ports"
)

// --- Request → Service input ---

func toContactInput(req contactRequest) (ports.ContactInput, error) {
	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		ve := domain.NewValidationError()
		ve.Add("dateOfBirth", "dateOfBirth must be a date in YYYY-MM-DD format")
		return ports.ContactInput{}, ve
	}
	return ports.ContactInput{
		Name:              req.Name,
		LastName:          req.LastName,
		Email:             req.Email,
		Password:          req.Password,
		CategoryID:        req.CategoryID,
		SubCategoryID:     req.SubCategoryID,
		CustomSubCategory: req.CustomSubCategory,
		PhoneNumber:       req.PhoneNumber,
		DateOfBirth:       dob,
	}, nil
}

// --- Domain → Response ---

func toContactListResponse(c *domain.Contact) contactListResponse {
	return contactListResponse{
		ID:          c.ID,
		Name:        c.Name,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
	}
}

func toContactListResponses(contacts []*domain.Contact) []contactListResponse {
	out := make([]contactListResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, toContactListResponse(c))
	}
	return out
}

func toContactDetailResponse(c *domain.Contact) contactDetailResponse {
	return contactDetailResponse{
		contactListResponse: toContactListResponse(c),
		CategoryID:          c.CategoryID,
		CategoryName:        c.CategoryName,
		SubCategoryID:       c.SubCategoryID,
		SubCategoryName:     c.SubCategoryName,
		CustomSubCategory:   c.CustomSubCategory,
		DateOfBirth:         c.DateOfBirth.Format(dateLayout),
		Password:            c.Password,
	}
}

func toCategoryResponses(categories []domain.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		subs := make([]subCategoryResponse, 0, len(cat.SubCategories))
		for _, s := range cat.SubCategories {
			subs = append(subs, subCategoryResponse{ID: s.ID, Name: s.Name})
		}
		out = append(out, categoryResponse{ID: cat.ID, Name: cat.Name, SubCategories: subs})
	}
	return out
}
