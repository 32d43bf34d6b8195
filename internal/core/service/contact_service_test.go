package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kontakty/contacts-api/internal/core/domain"
	"github.com/kontakty/contacts-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubContactRepo struct {
	byID      map[int64]*domain.Contact
	nextID    int64
	createErr error // if set, Create returns this error
	// raceEmail simulates a concurrent insert: ExistsByEmail misses it but
	// Create hits the unique index.
	raceEmail string
}

func newStubContactRepo() *stubContactRepo {
	return &stubContactRepo{byID: make(map[int64]*domain.Contact), nextID: 1}
}

func cloneContact(c *domain.Contact) *domain.Contact {
	clone := *c
	return &clone
}

func (r *stubContactRepo) sorted() []*domain.Contact {
	out := make([]*domain.Contact, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, cloneContact(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *stubContactRepo) emailTaken(email string, exceptID int64) bool {
	for _, c := range r.byID {
		if c.Email == email && c.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *stubContactRepo) List(_ context.Context) ([]*domain.Contact, error) {
	return r.sorted(), nil
}

func (r *stubContactRepo) Search(_ context.Context, f domain.ContactFilter) ([]*domain.Contact, error) {
	var out []*domain.Contact
	for _, c := range r.sorted() {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubContactRepo) GetByID(_ context.Context, id int64) (*domain.Contact, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	return cloneContact(c), nil
}

func (r *stubContactRepo) Create(_ context.Context, c *domain.Contact) (*domain.Contact, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if c.Email == r.raceEmail || r.emailTaken(c.Email, 0) {
		return nil, domain.ErrContactExists
	}
	stored := cloneContact(c)
	stored.ID = r.nextID
	r.nextID++
	r.byID[stored.ID] = stored
	return cloneContact(stored), nil
}

func (r *stubContactRepo) Update(_ context.Context, id int64, u domain.ContactUpdate) (*domain.Contact, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	if r.emailTaken(u.Email, id) {
		return nil, domain.ErrContactExists
	}
	c.Name = u.Name
	c.LastName = u.LastName
	c.Email = u.Email
	c.Password = u.Password
	c.CategoryID = u.CategoryID
	c.SubCategoryID = u.SubCategoryID
	c.PhoneNumber = u.PhoneNumber
	c.DateOfBirth = u.DateOfBirth
	return cloneContact(c), nil
}

func (r *stubContactRepo) Delete(_ context.Context, id int64) (*domain.Contact, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	delete(r.byID, id)
	return c, nil
}

func (r *stubContactRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return r.emailTaken(email, 0), nil
}

type stubCategoryRepo struct {
	categories []domain.Category
}

// seededCategories mirrors the bootstrap taxonomy.
func seededCategories() *stubCategoryRepo {
	return &stubCategoryRepo{categories: []domain.Category{
		{ID: 1, Name: domain.CategoryBusiness, SubCategories: []domain.SubCategory{
			{ID: 1, Name: "Boss", CategoryID: 1},
			{ID: 2, Name: "Client", CategoryID: 1},
		}},
		{ID: 2, Name: domain.CategoryPersonal},
		{ID: 3, Name: domain.CategoryOther},
	}}
}

func (r *stubCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	return r.categories, nil
}

func (r *stubCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	for _, c := range r.categories {
		if c.ID == id {
			clone := c
			return &clone, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *stubCategoryRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.categories)), nil
}

func (r *stubCategoryRepo) Create(_ context.Context, c *domain.Category) error {
	c.ID = int64(len(r.categories) + 1)
	r.categories = append(r.categories, *c)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

func personalInput(email string) ports.ContactInput {
	return ports.ContactInput{
		Name:        "Anna",
		LastName:    "Nowak",
		Email:       email,
		Password:    "Tajne#123",
		CategoryID:  2,
		PhoneNumber: "987-654-321",
		DateOfBirth: time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func businessInput(email string, sub *int64) ports.ContactInput {
	return ports.ContactInput{
		Name:          "Jan",
		LastName:      "Kowalski",
		Email:         email,
		Password:      "Haslo#123",
		CategoryID:    1,
		SubCategoryID: sub,
		PhoneNumber:   "123-456-789",
		DateOfBirth:   time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newContactSvc(repo *stubContactRepo) *ContactService {
	return NewContactService(repo, seededCategories(), zerolog.Nop())
}

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return ve.Fields
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestContactService_Create_AssignsStableID(t *testing.T) {
	repo := newStubContactRepo()
	svc := newContactSvc(repo)

	created, err := svc.Create(context.Background(), businessInput("jan@example.com", int64Ptr(2)))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected store-assigned id")
	}

	fetched, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if fetched.ID != created.ID || fetched.Email != "jan@example.com" {
		t.Fatalf("unexpected contact: %+v", fetched)
	}
}

func TestContactService_Create_DuplicateEmail(t *testing.T) {
	repo := newStubContactRepo()
	svc := newContactSvc(repo)

	if _, err := svc.Create(context.Background(), personalInput("anna@example.com")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), personalInput("anna@example.com")); !errors.Is(err, domain.ErrContactExists) {
		t.Fatalf("expected ErrContactExists, got %v", err)
	}
	// exact match: a different case is a different email
	if _, err := svc.Create(context.Background(), personalInput("Anna@example.com")); err != nil {
		t.Fatalf("expected case-different email to be accepted, got %v", err)
	}
}

func TestContactService_Create_ConcurrentDuplicateRejectedByStore(t *testing.T) {
	repo := newStubContactRepo()
	repo.raceEmail = "race@example.com"
	svc := newContactSvc(repo)

	if _, err := svc.Create(context.Background(), personalInput("race@example.com")); !errors.Is(err, domain.ErrContactExists) {
		t.Fatalf("expected ErrContactExists, got %v", err)
	}
}

func TestContactService_Create_StoreFailure(t *testing.T) {
	repo := newStubContactRepo()
	repo.createErr = errors.New("connection reset")
	svc := newContactSvc(repo)

	_, err := svc.Create(context.Background(), personalInput("x@example.com"))
	if err == nil || errors.Is(err, domain.ErrContactExists) {
		t.Fatalf("expected raw store error, got %v", err)
	}
}

func TestContactService_Create_CategoryRules(t *testing.T) {
	svc := newContactSvc(newStubContactRepo())
	ctx := context.Background()

	t.Run("unknown category", func(t *testing.T) {
		in := personalInput("a@example.com")
		in.CategoryID = 99
		fields := fieldErrors(t, mustFail(svc.Create(ctx, in)))
		if len(fields["categoryId"]) == 0 {
			t.Fatalf("expected categoryId error, got %v", fields)
		}
	})

	t.Run("business requires subcategory", func(t *testing.T) {
		fields := fieldErrors(t, mustFail(svc.Create(ctx, businessInput("b@example.com", nil))))
		if len(fields["subCategoryId"]) == 0 {
			t.Fatalf("expected subCategoryId error, got %v", fields)
		}
	})

	t.Run("subcategory must belong to category", func(t *testing.T) {
		in := personalInput("c@example.com")
		in.SubCategoryID = int64Ptr(1)
		fields := fieldErrors(t, mustFail(svc.Create(ctx, in)))
		if len(fields["subCategoryId"]) == 0 {
			t.Fatalf("expected subCategoryId error, got %v", fields)
		}
	})
}

func mustFail(_ *domain.Contact, err error) error { return err }

func TestContactService_Create_CustomSubCategoryOnlyForPersonal(t *testing.T) {
	svc := newContactSvc(newStubContactRepo())
	ctx := context.Background()

	personal := personalInput("p@example.com")
	personal.CustomSubCategory = strPtr("  Friends ")
	created, err := svc.Create(ctx, personal)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.CustomSubCategory == nil || *created.CustomSubCategory != "Friends" {
		t.Fatalf("expected trimmed custom subcategory, got %v", created.CustomSubCategory)
	}

	other := personalInput("o@example.com")
	other.CategoryID = 3
	other.CustomSubCategory = strPtr("Gym")
	created, err = svc.Create(ctx, other)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.CustomSubCategory != nil {
		t.Fatalf("expected custom subcategory to be dropped, got %q", *created.CustomSubCategory)
	}
}

// ---------------------------------------------------------------------------
// Update / Delete
// ---------------------------------------------------------------------------

func TestContactService_Update_OverwritesContractFields(t *testing.T) {
	repo := newStubContactRepo()
	svc := newContactSvc(repo)
	ctx := context.Background()

	in := personalInput("anna@example.com")
	in.CustomSubCategory = strPtr("Friends")
	created, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	upd := businessInput("anna.k@example.com", int64Ptr(1))
	upd.CustomSubCategory = strPtr("ignored")
	updated, err := svc.Update(ctx, created.ID, upd)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Email != "anna.k@example.com" || updated.LastName != "Kowalski" || updated.CategoryID != 1 {
		t.Fatalf("fields not overwritten: %+v", updated)
	}
	if updated.SubCategoryID == nil || *updated.SubCategoryID != 1 {
		t.Fatalf("expected subcategory 1, got %v", updated.SubCategoryID)
	}
	if updated.CustomSubCategory == nil || *updated.CustomSubCategory != "Friends" {
		t.Fatalf("custom subcategory is outside the update contract, got %v", updated.CustomSubCategory)
	}
}

func TestContactService_Update_NotFound(t *testing.T) {
	svc := newContactSvc(newStubContactRepo())
	if _, err := svc.Update(context.Background(), 42, personalInput("x@example.com")); !errors.Is(err, domain.ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
}

func TestContactService_Update_MissingContactWinsOverBadCategory(t *testing.T) {
	svc := newContactSvc(newStubContactRepo())

	cases := map[string]ports.ContactInput{
		"unknown category":          func() ports.ContactInput { in := personalInput("x@example.com"); in.CategoryID = 99; return in }(),
		"business without sub":      businessInput("x@example.com", nil),
		"sub from another category": businessInput("x@example.com", int64Ptr(7)),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Update(context.Background(), 42, in); !errors.Is(err, domain.ErrContactNotFound) {
				t.Fatalf("expected ErrContactNotFound, got %v", err)
			}
		})
	}
}

func TestContactService_Update_EmailHeldByAnotherContact(t *testing.T) {
	repo := newStubContactRepo()
	svc := newContactSvc(repo)
	ctx := context.Background()

	first, _ := svc.Create(ctx, personalInput("first@example.com"))
	second, _ := svc.Create(ctx, personalInput("second@example.com"))

	if _, err := svc.Update(ctx, second.ID, personalInput("first@example.com")); !errors.Is(err, domain.ErrContactExists) {
		t.Fatalf("expected ErrContactExists, got %v", err)
	}
	// keeping its own email is fine
	if _, err := svc.Update(ctx, first.ID, personalInput("first@example.com")); err != nil {
		t.Fatalf("expected self-update to succeed, got %v", err)
	}
}

func TestContactService_Delete(t *testing.T) {
	repo := newStubContactRepo()
	svc := newContactSvc(repo)
	ctx := context.Background()

	if err := svc.Delete(ctx, 7); !errors.Is(err, domain.ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}

	created, _ := svc.Create(ctx, personalInput("gone@example.com"))
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, domain.ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound after delete, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

func TestContactService_Search(t *testing.T) {
	repo := newStubContactRepo()
	svc := newContactSvc(repo)
	ctx := context.Background()

	a := businessInput("jan@example.com", int64Ptr(2))
	b := businessInput("ewa@example.com", int64Ptr(1))
	b.LastName = "Kowalczyk"
	b.PhoneNumber = "555-000-111"
	c := personalInput("anna@example.com")
	d := personalInput("kowal@example.com")
	d.LastName = "kowalski"
	for _, in := range []ports.ContactInput{a, b, c, d} {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, _ := svc.Search(ctx, domain.ContactFilter{LastName: "Kowal"})
	if len(got) != 2 {
		t.Fatalf("expected 2 case-sensitive matches, got %d", len(got))
	}

	got, _ = svc.Search(ctx, domain.ContactFilter{LastName: "Kowal", PhoneNumber: "123"})
	if len(got) != 1 || got[0].Email != "jan@example.com" {
		t.Fatalf("expected only jan, got %+v", got)
	}

	got, _ = svc.Search(ctx, domain.ContactFilter{})
	if len(got) != 4 {
		t.Fatalf("expected empty filter to list all, got %d", len(got))
	}
}
