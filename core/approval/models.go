package approval

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/madrasa/core"
)

// Statuses. A reviewed approval is terminal; there is no re-opening.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Actions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Approval is a teacher-approval request. Applicant contact fields are
// snapshotted at request time; later profile edits do not touch them.
type Approval struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Status      string    `json:"status"`
	ReviewedBy  string    `json:"reviewed_by"`
	ReviewedAt  time.Time `json:"reviewed_at"`
	Notes       string    `json:"notes"`
	RequestedAt time.Time `json:"requested_at"` // UTC
}

func (a *Approval) IsReviewed() bool {
	return a.Status == StatusApproved || a.Status == StatusRejected
}

// ReviewApproval defines a review decision on a pending Approval.
type ReviewApproval struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Notes  string `json:"notes"`
}

func (ra *ReviewApproval) Validate(validate *validator.Validate) error {
	ra.Action = core.CleanString(ra.Action, true /* lower */)
	ra.Notes = core.CleanString(ra.Notes)
	return validate.Struct(ra)
}

type QueryFilter struct {
	Status string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
