package handler

// dateLayout is the wire format of dateOfBirth.
const dateLayout = "2006-01-02"

// --- Request / Response types ---

type contactRequest struct {
	Name              string  `json:"name"              validate:"required,max=100"`
	LastName          string  `json:"lastName"          validate:"required,max=100"`
	Email             string  `json:"email"             validate:"required,email"`
	Password          string  `json:"password"          validate:"required,strongpassword"`
	CategoryID        int64   `json:"categoryId"        validate:"required,gt=0"`
	SubCategoryID     *int64  `json:"subCategoryId"     validate:"omitempty,gt=0"`
	CustomSubCategory *string `json:"customSubCategory" validate:"omitempty,max=100"`
	PhoneNumber       string  `json:"phoneNumber"       validate:"omitempty,phone"`
	DateOfBirth       string  `json:"dateOfBirth"       validate:"required,datetime=2006-01-02"`
}

type contactListResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

type contactDetailResponse struct {
	contactListResponse
	CategoryID        int64   `json:"categoryId"`
	CategoryName      string  `json:"categoryName"`
	SubCategoryID     *int64  `json:"subCategoryId,omitempty"`
	SubCategoryName   *string `json:"subCategoryName,omitempty"`
	CustomSubCategory *string `json:"customSubCategory,omitempty"`
	DateOfBirth       string  `json:"dateOfBirth"`
	Password          string  `json:"password"`
}

type subCategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type categoryResponse struct {
	ID            int64                 `json:"id"`
	Name          string                `json:"name"`
	SubCategories []subCategoryResponse `json:"subCategories"`
}
