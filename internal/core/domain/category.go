package domain

// Seeded category names. The client relies on Business and Personal to decide
// which subcategory input to show.
const (
	CategoryBusiness = "Business"
	CategoryPersonal = "Personal"
	CategoryOther    = "Other"
)

// Category classifies contacts. SubCategories is populated by the store
// ordered by id.
type Category struct {
	ID            int64
	Name          string
	SubCategories []SubCategory
}

// SubCategory refines a Category; it always belongs to exactly one.
type SubCategory struct {
	ID         int64
	Name       string
	CategoryID int64
}

// FindSubCategory returns the subcategory with the given id if it belongs to c.
func (c Category) FindSubCategory(id int64) (SubCategory, bool) {
	for _, sc := range c.SubCategories {
		if sc.ID == id {
			return sc, true
		}
	}
	return SubCategory{}, false
}
