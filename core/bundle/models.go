package bundle

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/madrasa/core"
)

// Package is a purchasable hour bundle in the catalog.
type Package struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Hours     float64   `json:"hours"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	Active    *bool     `json:"active"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// IsActive treats a missing flag as active; only an explicit false hides the row.
func (p *Package) IsActive() bool {
	return p.Active == nil || *p.Active
}

// Purchase is a bundle of hours granted to a student. Remaining hours are
// always derived, never stored.
type Purchase struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	StudentEmail string    `json:"student_email"`
	Title        string    `json:"title"`
	Hours        float64   `json:"hours"`
	HoursUsed    float64   `json:"hours_used"`
	Price        float64   `json:"price"`
	Category     string    `json:"category"`
	Active       *bool     `json:"active"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (p *Purchase) IsActive() bool {
	return p.Active == nil || *p.Active
}

// Remaining never goes below zero even when usage was over-recorded.
func (p *Purchase) Remaining() float64 {
	if rem := p.Hours - p.HoursUsed; rem > 0 {
		return rem
	}
	return 0
}

// NewPackage contains information needed to add a Package to the catalog.
type NewPackage struct {
	Title    string  `json:"title" validate:"required"`
	Hours    float64 `json:"hours" validate:"required,gt=0"`
	Price    float64 `json:"price" validate:"gte=0"`
	Category string  `json:"category" validate:"omitempty,oneof=tutoring exam"`
	Active   *bool   `json:"active"`
	ImageURL string  `json:"image_url" validate:"omitempty,url"`
}

func (np *NewPackage) Validate(validate *validator.Validate) error {
	np.Title = core.CleanString(np.Title)
	np.Category = core.CleanString(np.Category, true /* lower */)
	return validate.Struct(np)
}

// UpdatePackage defines what information may be provided to modify a Package.
type UpdatePackage struct {
	Title    string  `json:"title"`
	Hours    float64 `json:"hours" validate:"omitempty,gt=0"`
	Price    float64 `json:"price" validate:"gte=0"`
	Category string  `json:"category" validate:"omitempty,oneof=tutoring exam"`
	Active   *bool   `json:"active"`
	ImageURL string  `json:"image_url" validate:"omitempty,url"`
}

func (up *UpdatePackage) Validate(validate *validator.Validate) error {
	up.Title = core.CleanString(up.Title)
	up.Category = core.CleanString(up.Category, true /* lower */)
	return validate.Struct(up)
}

// NewPurchase contains information needed to grant a Purchase to a student.
type NewPurchase struct {
	StudentID    string  `json:"student_id"`
	StudentEmail string  `json:"student_email" validate:"omitempty,email"`
	Title        string  `json:"title" validate:"required"`
	Hours        float64 `json:"hours" validate:"required,gt=0"`
	HoursUsed    float64 `json:"hours_used" validate:"gte=0"`
	Price        float64 `json:"price" validate:"gte=0"`
	Category     string  `json:"category" validate:"omitempty,oneof=tutoring exam"`
	Active       *bool   `json:"active"`
}

func (np *NewPurchase) Validate(validate *validator.Validate) error {
	np.StudentID = core.CleanString(np.StudentID)
	np.StudentEmail = core.CleanString(np.StudentEmail, true /* lower */)
	np.Title = core.CleanString(np.Title)
	np.Category = core.CleanString(np.Category, true /* lower */)
	if err := validate.Struct(np); err != nil {
		return err
	}
	if np.StudentID == "" && np.StudentEmail == "" {
		fldErr := core.FieldError{Field: "student_id", Error: "one of student_id or student_email is required"}
		return core.NewValidationError(nil, fldErr)
	}
	return nil
}

// UpdatePurchase defines what information may be provided to modify a Purchase.
type UpdatePurchase struct {
	Title     string   `json:"title"`
	Hours     *float64 `json:"hours" validate:"omitempty,gt=0"`
	HoursUsed *float64 `json:"hours_used" validate:"omitempty,gte=0"`
	Price     *float64 `json:"price" validate:"omitempty,gte=0"`
	Category  string   `json:"category" validate:"omitempty,oneof=tutoring exam"`
	Active    *bool    `json:"active"`
}

func (up *UpdatePurchase) Validate(validate *validator.Validate) error {
	up.Title = core.CleanString(up.Title)
	up.Category = core.CleanString(up.Category, true /* lower */)
	return validate.Struct(up)
}

// LegacyPurchase mirrors the loosely-typed purchase rows of the historic
// store, where field names drifted over time (hoursPurchased vs hours,
// hoursUsed vs usedHours) and active may be absent.
type LegacyPurchase struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"studentId"`
	StudentEmail   string    `json:"studentEmail"`
	Title          string    `json:"title"`
	HoursPurchased *float64  `json:"hoursPurchased"`
	Hours          *float64  `json:"hours"`
	HoursUsed      *float64  `json:"hoursUsed"`
	UsedHours      *float64  `json:"usedHours"`
	Price          float64   `json:"price"`
	Category       string    `json:"category"`
	Active         *bool     `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Normalize folds the legacy aliases into the one typed shape:
// hoursPurchased wins over hours, hoursUsed wins over usedHours,
// both default to 0 when absent.
func (lp LegacyPurchase) Normalize() Purchase {
	coalesce := func(vals ...*float64) float64 {
		for _, v := range vals {
			if v != nil {
				return *v
			}
		}
		return 0
	}
	return Purchase{
		ID:           lp.ID,
		StudentID:    core.CleanString(lp.StudentID),
		StudentEmail: core.CleanString(lp.StudentEmail, true /* lower */),
		Title:        core.CleanString(lp.Title),
		Hours:        coalesce(lp.HoursPurchased, lp.Hours),
		HoursUsed:    coalesce(lp.HoursUsed, lp.UsedHours),
		Price:        lp.Price,
		Category:     core.CleanString(lp.Category),
		Active:       lp.Active,
		CreatedAt:    lp.CreatedAt.UTC(),
		UpdatedAt:    lp.CreatedAt.UTC(),
	}
}

// PurchaseFilter fetches purchases by exact owner fields.
type PurchaseFilter struct {
	StudentID    string `query:"student_id"`
	StudentEmail string `query:"student_email"`
}

func (pf *PurchaseFilter) Clean() {
	pf.StudentID = core.CleanString(pf.StudentID)
	pf.StudentEmail = core.CleanString(pf.StudentEmail, true /* lower */)
}
