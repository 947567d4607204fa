package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/madrasa/core/approval"
	"github.com/trezcool/madrasa/core/user"
	testutil "github.com/trezcool/madrasa/tests"
)

func createApproval(t *testing.T, applicant user.User) approval.Approval {
	t.Helper()
	appr, err := apprRepo.CreateApproval(context.Background(), approval.Approval{
		UserID:      applicant.ID,
		FirstName:   applicant.FirstName,
		LastName:    applicant.LastName,
		Email:       applicant.Email,
		PhoneNumber: applicant.PhoneNumber,
		Status:      approval.StatusPending,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createApproval(): %v", err)
	}
	return appr
}

func Test_approvalApi_query(t *testing.T) {
	testutil.ResetDB(t, db)

	student := testutil.CreateUser(t, usrRepo, "Hero", "Mukendi", "hero@test.cd", "", user.RoleStudent, true)
	teacher := testutil.CreateUser(t, usrRepo, "Head", "Teacher", "head@test.cd", "", user.RoleTeacher, true)
	applicant := testutil.CreateUser(t, usrRepo, "Tea", "Cher", "tea@test.cd", "", user.RolePending, true)
	appr := createApproval(t, applicant)

	teacherToken := getToken(t, teacher)
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/approvals", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher required", path: "/v1/approvals", token: getToken(t, student), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Get all", path: "/v1/approvals", token: teacherToken, wantData: marchallList(t, appr)},
		{name: "status=pending", path: "/v1/approvals?status=pending", token: teacherToken, wantData: marchallList(t, appr)},
		{name: "status=approved (empty)", path: "/v1/approvals?status=approved", token: teacherToken, wantData: empty},
		{name: "Retrieve", path: "/v1/approvals/" + appr.ID, token: teacherToken, wantData: marchallObj(t, appr)},
		{
			name: "Retrieve unknown", path: "/v1/approvals/lol", token: teacherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_approvalApi_review(t *testing.T) {
	testutil.ResetDB(t, db)

	teacher := testutil.CreateUser(t, usrRepo, "Head", "Teacher", "head@test.cd", "", user.RoleTeacher, true)
	applicant := testutil.CreateUser(t, usrRepo, "Tea", "Cher", "tea@test.cd", "", user.RolePending, true)
	applicant.PhoneNumber = "+243999888777"
	if _, err := usrRepo.UpdateUser(context.Background(), applicant); err != nil {
		t.Fatalf("UpdateUser(): %v", err)
	}
	appr := createApproval(t, applicant)
	rejected := createApproval(t, testutil.CreateUser(t, usrRepo, "Re", "Jected", "reject@test.cd", "", user.RolePending, true))

	teacherToken := getToken(t, teacher)

	type extraTest struct {
		wantStatus string
		wantRole   string
		wantLink   bool
	}
	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/approvals/" + appr.ID + "/review",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "invalid action", path: "/v1/approvals/" + appr.ID + "/review", token: teacherToken,
			body:     marchallObj(t, approval.ReviewApproval{Action: "lol"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"action": "action must be one of [approve reject]"}),
		},
		{
			name: "Unknown approval", path: "/v1/approvals/lol/review", token: teacherToken,
			body:     marchallObj(t, approval.ReviewApproval{Action: approval.ActionApprove}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Reject leaves the applicant untouched", path: "/v1/approvals/" + rejected.ID + "/review", token: teacherToken,
			body:     marchallObj(t, approval.ReviewApproval{Action: approval.ActionReject, Notes: "not this time"}),
			wantCode: http.StatusOK,
			extra:    extraTest{wantStatus: approval.StatusRejected, wantRole: user.RolePending},
		},
		{
			name: "Approve promotes the applicant", path: "/v1/approvals/" + appr.ID + "/review", token: teacherToken,
			body:     marchallObj(t, approval.ReviewApproval{Action: approval.ActionApprove, Notes: "welcome"}),
			wantCode: http.StatusOK,
			extra:    extraTest{wantStatus: approval.StatusApproved, wantRole: user.RoleTeacher, wantLink: true},
		},
		{
			name: "Already reviewed", path: "/v1/approvals/" + appr.ID + "/review", token: teacherToken,
			body:     marchallObj(t, approval.ReviewApproval{Action: approval.ActionReject}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "approval request has already been reviewed"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			extra, ok := tt.extra.(extraTest)
			if !ok {
				checkCodeAndData(t, tt, rec)
				return
			}

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
			}
			var outcome approval.ReviewOutcome
			if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
				t.Fatalf("json.Unmarshal() failed! err %v", err)
			}
			if outcome.Approval.Status != extra.wantStatus {
				t.Errorf("failed! Status = %q; want %q", outcome.Approval.Status, extra.wantStatus)
			}
			if outcome.Approval.ReviewedBy != teacher.ID {
				t.Errorf("failed! ReviewedBy = %q; want %q", outcome.Approval.ReviewedBy, teacher.ID)
			}
			if extra.wantLink && !strings.HasPrefix(outcome.WhatsAppLink, "https://wa.me/243999888777?text=") {
				t.Errorf("failed! WhatsAppLink = %q", outcome.WhatsAppLink)
			}

			refreshed, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: outcome.Approval.UserID})
			if err != nil {
				t.Fatalf("GetUser() failed, %v", err)
			}
			if refreshed.Role != extra.wantRole {
				t.Errorf("failed! applicant Role = %q; want %q", refreshed.Role, extra.wantRole)
			}
		})
	}
}
