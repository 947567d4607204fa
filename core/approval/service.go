package approval

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/user"
	wasvc "github.com/trezcool/madrasa/services/whatsapp"
)

var (
	// errors
	ErrNotFound        = errors.New("approval request not found")
	ErrAlreadyReviewed = errors.New("approval request has already been reviewed")

	// WhatsApp outcome messages (Arabic, as sent to applicants)
	approvedMsg = "مرحباً %s! تمت الموافقة على طلبك للانضمام كمعلم في منصة مدرسة. يمكنك الآن تسجيل الدخول والبدء بإدارة دروسك."
	rejectedMsg = "مرحباً %s، نعتذر منك؛ لم تتم الموافقة على طلب انضمامك كمعلم في منصة مدرسة. لمزيد من المعلومات يرجى التواصل معنا."
)

type (
	Repository interface {
		CreateApproval(ctx context.Context, appr Approval) (Approval, error)
		QueryApprovals(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Approval, error)
		GetApproval(ctx context.Context, id string) (Approval, error)
		UpdateApproval(ctx context.Context, appr Approval) (Approval, error)
	}

	// ReviewOutcome carries the reviewed Approval plus the WhatsApp deep link
	// the reviewer can open to notify the applicant.
	ReviewOutcome struct {
		Approval     Approval `json:"approval"`
		WhatsAppLink string   `json:"whatsapp_link,omitempty"`
	}

	Service interface {
		Request(ctx context.Context, usr user.User) (Approval, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Approval, error)
		GetByID(ctx context.Context, id string) (Approval, error)
		Review(ctx context.Context, id string, ra ReviewApproval, reviewer user.User) (ReviewOutcome, error)
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		usrRepo: usrRepo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

// Request snapshots the applicant's contact details into a pending Approval
// and alerts the admin mailbox.
func (svc *service) Request(ctx context.Context, usr user.User) (Approval, error) {
	appr := Approval{
		UserID:      usr.ID,
		FirstName:   usr.FirstName,
		LastName:    usr.LastName,
		Email:       usr.Email,
		PhoneNumber: usr.PhoneNumber,
		Status:      StatusPending,
		RequestedAt: time.Now().UTC(),
	}
	appr, err := svc.repo.CreateApproval(ctx, appr)
	if err != nil {
		return Approval{}, err
	}

	if svc.conf.AdminEmail != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Address: svc.conf.AdminEmail}},
			Subject:      "New teacher approval request",
			TemplateName: "approval-request",
			TemplateData: struct {
				FullName    string
				Email       string
				PhoneNumber string
			}{
				FullName:    usr.FullName(),
				Email:       usr.Email,
				PhoneNumber: usr.PhoneNumber,
			},
		})
	}
	return appr, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Approval, error) {
	return svc.repo.QueryApprovals(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Approval, error) {
	return svc.repo.GetApproval(ctx, id)
}

// Review records the decision on the Approval, then (on approval) promotes the
// applicant to teacher. The two writes are independent: when the promotion
// fails the Approval stays reviewed and the error is returned as-is.
func (svc *service) Review(ctx context.Context, id string, ra ReviewApproval, reviewer user.User) (ReviewOutcome, error) {
	appr, err := svc.repo.GetApproval(ctx, id)
	if err != nil {
		return ReviewOutcome{}, err
	}
	if appr.IsReviewed() {
		return ReviewOutcome{}, core.NewValidationError(ErrAlreadyReviewed)
	}

	appr.Status = StatusRejected
	if ra.Action == ActionApprove {
		appr.Status = StatusApproved
	}
	appr.ReviewedBy = reviewer.ID
	appr.ReviewedAt = time.Now().UTC()
	appr.Notes = ra.Notes

	appr, err = svc.repo.UpdateApproval(ctx, appr)
	if err != nil {
		return ReviewOutcome{}, pkgerrors.Wrap(err, "updating approval")
	}

	if appr.Status == StatusApproved {
		usr, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: appr.UserID})
		if err != nil {
			return ReviewOutcome{Approval: appr}, pkgerrors.Wrap(err, "finding applicant")
		}
		usr.Role = user.RoleTeacher
		usr.Status = user.StatusActive
		usr.UpdatedAt = time.Now().UTC()
		if _, err = svc.usrRepo.UpdateUser(ctx, usr); err != nil {
			return ReviewOutcome{Approval: appr}, pkgerrors.Wrap(err, "promoting applicant")
		}
	}

	svc.notifyApplicant(appr)
	return ReviewOutcome{
		Approval:     appr,
		WhatsAppLink: svc.whatsAppLink(appr),
	}, nil
}

func (svc *service) notifyApplicant(appr Approval) {
	outcome := "rejected"
	if appr.Status == StatusApproved {
		outcome = "approved"
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: appr.FirstName + " " + appr.LastName, Address: appr.Email}},
		Subject:      "Your teacher application",
		TemplateName: "approval-outcome",
		TemplateData: struct {
			FullName string
			Outcome  string
			Notes    string
		}{
			FullName: appr.FirstName + " " + appr.LastName,
			Outcome:  outcome,
			Notes:    appr.Notes,
		},
	})
}

func (svc *service) whatsAppLink(appr Approval) string {
	if appr.PhoneNumber == "" {
		return ""
	}
	msg := rejectedMsg
	if appr.Status == StatusApproved {
		msg = approvedMsg
	}
	return wasvc.Link(appr.PhoneNumber, fmt.Sprintf(msg, appr.FirstName))
}
