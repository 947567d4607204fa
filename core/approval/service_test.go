package approval

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/user"
)

type apprRepoMock struct {
	approvals []Approval
}

var _ Repository = (*apprRepoMock)(nil)

func (r *apprRepoMock) CreateApproval(_ context.Context, appr Approval) (Approval, error) {
	if appr.ID == "" {
		appr.ID = "appr" + strconv.Itoa(len(r.approvals)+1)
	}
	r.approvals = append(r.approvals, appr)
	return appr, nil
}

func (r *apprRepoMock) QueryApprovals(_ context.Context, filter *QueryFilter, _ []core.DBOrdering) ([]Approval, error) {
	res := make([]Approval, 0)
	for _, appr := range r.approvals {
		if filter != nil && filter.Status != "" && appr.Status != filter.Status {
			continue
		}
		res = append(res, appr)
	}
	return res, nil
}

func (r *apprRepoMock) GetApproval(_ context.Context, id string) (Approval, error) {
	for _, appr := range r.approvals {
		if appr.ID == id {
			return appr, nil
		}
	}
	return Approval{}, ErrNotFound
}

func (r *apprRepoMock) UpdateApproval(_ context.Context, appr Approval) (Approval, error) {
	for i := range r.approvals {
		if r.approvals[i].ID == appr.ID {
			r.approvals[i] = appr
			return appr, nil
		}
	}
	return Approval{}, ErrNotFound
}

type usrRepoMock struct {
	users []user.User

	updateErr error // when set, UpdateUser fails with it
}

var _ user.Repository = (*usrRepoMock)(nil)

func (r *usrRepoMock) CheckEmailUniqueness(context.Context, string, ...user.User) error { return nil }
func (r *usrRepoMock) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	r.users = append(r.users, usr)
	return usr, nil
}
func (r *usrRepoMock) QueryUsers(context.Context, *user.QueryFilter, []core.DBOrdering) ([]user.User, error) {
	return append([]user.User(nil), r.users...), nil
}
func (r *usrRepoMock) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	for _, usr := range r.users {
		if (filter.ID != "" && usr.ID == filter.ID) || (filter.Email != "" && usr.Email == filter.Email) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}
func (r *usrRepoMock) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	if r.updateErr != nil {
		return user.User{}, r.updateErr
	}
	for i := range r.users {
		if r.users[i].ID == usr.ID {
			r.users[i] = usr
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}
func (r *usrRepoMock) UpdateOrCreateUser(_ context.Context, usr user.User) (user.User, error) {
	return usr, nil
}
func (r *usrRepoMock) DeleteUsersByID(context.Context, ...string) (int, error) { return 0, nil }

type mailSvcMock struct {
	msgs []*core.EmailMessage
}

func (svc *mailSvcMock) SendMessages(messages ...*core.EmailMessage) {
	svc.msgs = append(svc.msgs, messages...)
}

func TestService_Request(t *testing.T) {
	repo := &apprRepoMock{}
	mailSvc := &mailSvcMock{}
	svc := NewService(repo, &usrRepoMock{}, mailSvc, &core.Config{AdminEmail: "admin@test.cd"})

	applicant := user.User{
		ID:          "u1",
		FirstName:   "Tea",
		LastName:    "Cher",
		Email:       "tea@test.cd",
		PhoneNumber: "+243123456789",
		Role:        user.RolePending,
		Status:      user.StatusPendingApproval,
	}
	appr, err := svc.Request(context.Background(), applicant)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if appr.Status != StatusPending {
		t.Errorf("Request() Status = %q, want %q", appr.Status, StatusPending)
	}
	if appr.Email != applicant.Email || appr.PhoneNumber != applicant.PhoneNumber {
		t.Errorf("Request() did not snapshot contact details: %+v", appr)
	}
	if len(mailSvc.msgs) != 1 {
		t.Fatalf("Request() sent %d emails, want 1", len(mailSvc.msgs))
	}
	if to := mailSvc.msgs[0].To[0].Address; to != "admin@test.cd" {
		t.Errorf("Request() mailed %q, want the admin mailbox", to)
	}
}

func TestService_Request_noAdminEmail(t *testing.T) {
	mailSvc := &mailSvcMock{}
	svc := NewService(&apprRepoMock{}, &usrRepoMock{}, mailSvc, &core.Config{})

	if _, err := svc.Request(context.Background(), user.User{ID: "u1"}); err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if len(mailSvc.msgs) != 0 {
		t.Errorf("Request() sent %d emails, want 0", len(mailSvc.msgs))
	}
}

func TestService_Review(t *testing.T) {
	ctx := context.Background()
	reviewer := user.User{ID: "rev1", Role: user.RoleTeacher}

	newSvc := func(updateErr error) (Service, *apprRepoMock, *usrRepoMock, *mailSvcMock) {
		repo := &apprRepoMock{}
		usrRepo := &usrRepoMock{
			users: []user.User{{
				ID:     "u1",
				Email:  "tea@test.cd",
				Role:   user.RolePending,
				Status: user.StatusPendingApproval,
			}},
			updateErr: updateErr,
		}
		mailSvc := &mailSvcMock{}
		return NewService(repo, usrRepo, mailSvc, &core.Config{}), repo, usrRepo, mailSvc
	}

	request := func(t *testing.T, svc Service, usrRepo *usrRepoMock) Approval {
		t.Helper()
		appr, err := svc.Request(ctx, usrRepo.users[0])
		if err != nil {
			t.Fatalf("Request() error = %v", err)
		}
		return appr
	}

	t.Run("approve promotes the applicant", func(t *testing.T) {
		svc, _, usrRepo, mailSvc := newSvc(nil)
		appr := request(t, svc, usrRepo)

		out, err := svc.Review(ctx, appr.ID, ReviewApproval{Action: ActionApprove, Notes: "welcome"}, reviewer)
		if err != nil {
			t.Fatalf("Review() error = %v", err)
		}
		if out.Approval.Status != StatusApproved {
			t.Errorf("Review() Status = %q, want %q", out.Approval.Status, StatusApproved)
		}
		if out.Approval.ReviewedBy != reviewer.ID {
			t.Errorf("Review() ReviewedBy = %q, want %q", out.Approval.ReviewedBy, reviewer.ID)
		}
		if usr := usrRepo.users[0]; usr.Role != user.RoleTeacher || usr.Status != user.StatusActive {
			t.Errorf("Review() applicant = %q/%q, want teacher/active", usr.Role, usr.Status)
		}
		if len(mailSvc.msgs) != 1 {
			t.Errorf("Review() sent %d outcome emails, want 1", len(mailSvc.msgs))
		}
	})

	t.Run("reject leaves the applicant untouched", func(t *testing.T) {
		svc, _, usrRepo, _ := newSvc(nil)
		appr := request(t, svc, usrRepo)

		out, err := svc.Review(ctx, appr.ID, ReviewApproval{Action: ActionReject}, reviewer)
		if err != nil {
			t.Fatalf("Review() error = %v", err)
		}
		if out.Approval.Status != StatusRejected {
			t.Errorf("Review() Status = %q, want %q", out.Approval.Status, StatusRejected)
		}
		if usr := usrRepo.users[0]; usr.Role != user.RolePending {
			t.Errorf("Review() applicant Role = %q, want %q", usr.Role, user.RolePending)
		}
	})

	t.Run("whatsapp link follows the outcome", func(t *testing.T) {
		svc, _, usrRepo, _ := newSvc(nil)
		usrRepo.users[0].FirstName = "Tea"
		usrRepo.users[0].PhoneNumber = "+243123456789"
		appr := request(t, svc, usrRepo)

		out, err := svc.Review(ctx, appr.ID, ReviewApproval{Action: ActionApprove}, reviewer)
		if err != nil {
			t.Fatalf("Review() error = %v", err)
		}
		if !strings.HasPrefix(out.WhatsAppLink, "https://wa.me/243123456789?text=") {
			t.Errorf("Review() WhatsAppLink = %q, want wa.me link", out.WhatsAppLink)
		}
	})

	t.Run("no phone number, no link", func(t *testing.T) {
		svc, _, usrRepo, _ := newSvc(nil)
		appr := request(t, svc, usrRepo)

		out, err := svc.Review(ctx, appr.ID, ReviewApproval{Action: ActionApprove}, reviewer)
		if err != nil {
			t.Fatalf("Review() error = %v", err)
		}
		if out.WhatsAppLink != "" {
			t.Errorf("Review() WhatsAppLink = %q, want empty", out.WhatsAppLink)
		}
	})

	t.Run("already reviewed", func(t *testing.T) {
		svc, _, usrRepo, _ := newSvc(nil)
		appr := request(t, svc, usrRepo)

		if _, err := svc.Review(ctx, appr.ID, ReviewApproval{Action: ActionReject}, reviewer); err != nil {
			t.Fatalf("Review() error = %v", err)
		}
		_, err := svc.Review(ctx, appr.ID, ReviewApproval{Action: ActionApprove}, reviewer)
		vErr, ok := err.(*core.ValidationError)
		if !ok || vErr.Err != ErrAlreadyReviewed {
			t.Errorf("Review() error = %v, want %v", err, ErrAlreadyReviewed)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc, _, _, _ := newSvc(nil)
		if _, err := svc.Review(ctx, "nope", ReviewApproval{Action: ActionApprove}, reviewer); err != ErrNotFound {
			t.Errorf("Review() error = %v, want %v", err, ErrNotFound)
		}
	})

	t.Run("failed promotion leaves the approval reviewed", func(t *testing.T) {
		boom := errors.New("db down")
		svc, repo, usrRepo, _ := newSvc(boom)
		appr := request(t, svc, usrRepo)

		out, err := svc.Review(ctx, appr.ID, ReviewApproval{Action: ActionApprove}, reviewer)
		if err == nil {
			t.Fatal("Review() error = nil, want error")
		}
		if out.Approval.Status != StatusApproved {
			t.Errorf("Review() partial outcome Status = %q, want %q", out.Approval.Status, StatusApproved)
		}
		// the approval write stuck even though the promotion failed
		stored, err := repo.GetApproval(ctx, appr.ID)
		if err != nil {
			t.Fatalf("GetApproval() error = %v", err)
		}
		if stored.Status != StatusApproved {
			t.Errorf("stored approval Status = %q, want %q", stored.Status, StatusApproved)
		}
		if usr := usrRepo.users[0]; usr.Role != user.RolePending {
			t.Errorf("applicant Role = %q, want unchanged %q", usr.Role, user.RolePending)
		}
	})
}
