package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/madrasa/core/opinion"
	"github.com/trezcool/madrasa/core/user"
	testutil "github.com/trezcool/madrasa/tests"
)

func Test_opinionApi(t *testing.T) {
	testutil.ResetDB(t, db)

	student := testutil.CreateUser(t, usrRepo, "Hero", "Mukendi", "hero@test.cd", "", user.RoleStudent, true)
	studentToken := getToken(t, student)

	tests := []httpTest{
		{
			name: "Testimonials wall is public", method: http.MethodGet, path: "/v1/opinions",
			wantCode: http.StatusOK, wantData: marchallList(t, []interface{}{}...),
		},
		{
			name: "Auth required to post", method: http.MethodPost, path: "/v1/opinions",
			body:     marchallObj(t, opinion.NewOpinion{Subject: "Toda", Text: "!"}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "required fields", method: http.MethodPost, path: "/v1/opinions", token: studentToken,
			body:     marchallObj(t, opinion.NewOpinion{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"subject": "this field is required", "text": "this field is required"}),
		},
		{
			name: "Posted", method: http.MethodPost, path: "/v1/opinions", token: studentToken,
			body:     marchallObj(t, opinion.NewOpinion{Subject: "Toda raba", Text: "The lessons are great."}),
			wantCode: http.StatusCreated, extra: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if created, ok := tt.extra.(bool); ok && created {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var op opinion.Opinion
				if err := json.Unmarshal(rec.Body.Bytes(), &op); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if op.StudentName != student.FullName() {
					t.Errorf("failed! StudentName = %q; want %q", op.StudentName, student.FullName())
				}
				if op.Subject != "Toda raba" || op.ID == "" {
					t.Errorf("failed! opinion = %+v", op)
				}

				// the wall now shows it
				wallReq, wallRec := newRequest(http.MethodGet, "/v1/opinions", nil)
				app.ServeHTTP(wallRec, wallReq)
				wallTest := httpTest{wantCode: http.StatusOK, wantData: marchallList(t, op)}
				checkCodeAndData(t, wallTest, wallRec)
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
