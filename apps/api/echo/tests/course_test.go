package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	echoapi "github.com/trezcool/madrasa/apps/api/echo"
	"github.com/trezcool/madrasa/core/course"
	"github.com/trezcool/madrasa/core/user"
	testutil "github.com/trezcool/madrasa/tests"
)

func Test_courseApi_catalog(t *testing.T) {
	testutil.ResetDB(t, db)

	teacher := testutil.CreateUser(t, usrRepo, "Head", "Teacher", "head@test.cd", "", user.RoleTeacher, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "Mukendi", "hero@test.cd", "", user.RoleStudent, true)
	teacherToken := getToken(t, teacher)
	studentToken := getToken(t, student)

	inactive := false
	hebrew := testutil.CreateCourse(t, courseRepo, "Hebrew 101", nil)
	draft := testutil.CreateCourse(t, courseRepo, "Arabic 201", &inactive)

	tests := []httpTest{
		{name: "Auth required", method: http.MethodGet, path: "/v1/courses", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher required to create", method: http.MethodPost, path: "/v1/courses", token: studentToken,
			body:     marchallObj(t, course.NewCourse{Title: "Nope"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", method: http.MethodPost, path: "/v1/courses", token: teacherToken,
			body:     marchallObj(t, course.NewCourse{}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"title": "this field is required"}),
		},
		{
			name: "Student sees active only", method: http.MethodGet, path: "/v1/courses", token: studentToken,
			wantCode: http.StatusOK, wantData: marchallList(t, hebrew),
		},
		{
			name: "Teacher includes drafts", method: http.MethodGet, path: "/v1/courses?include_inactive=true", token: teacherToken,
			wantCode: http.StatusOK, wantData: marchallList(t, draft, hebrew),
		},
		{
			name: "Retrieve", method: http.MethodGet, path: "/v1/courses/" + hebrew.ID, token: studentToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, hebrew),
		},
		{
			name: "Retrieve unknown", method: http.MethodGet, path: "/v1/courses/lol", token: studentToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_lessons(t *testing.T) {
	testutil.ResetDB(t, db)

	teacher := testutil.CreateUser(t, usrRepo, "Head", "Teacher", "head@test.cd", "", user.RoleTeacher, true)
	enrolled := testutil.CreateUser(t, usrRepo, "Hero", "Mukendi", "hero@test.cd", "", user.RoleStudent, true)
	stranger := testutil.CreateUser(t, usrRepo, "Out", "Sider", "out@test.cd", "", user.RoleStudent, true)

	inactive := false
	crs := testutil.CreateCourse(t, courseRepo, "Hebrew 101", nil)
	intro := testutil.CreateLesson(t, courseRepo, crs.ID, "Aleph-Bet", 1, nil)
	draft := testutil.CreateLesson(t, courseRepo, crs.ID, "Vowels", 2, &inactive)
	_ = testutil.CreateEnrollment(t, courseRepo, crs.ID, enrolled.ID, enrolled.Email, course.EnrollmentActive)

	tests := []httpTest{
		{
			name: "Enrolled student sees active lessons", path: "/v1/courses/" + crs.ID + "/lessons", token: getToken(t, enrolled),
			wantCode: http.StatusOK, wantData: marchallList(t, intro),
		},
		{
			name: "Teacher sees drafts too", path: "/v1/courses/" + crs.ID + "/lessons", token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallList(t, intro, draft),
		},
		{
			name: "Unknown course", path: "/v1/courses/lol/lessons", token: getToken(t, enrolled),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// a locked course always says so; it is never served as an empty course
	t.Run("Locked course points to WhatsApp", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/lessons", getToken(t, stranger))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; body %v", rec.Code, rec.Body.String())
		}
		var respData echoapi.LockedCourseResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if respData.Error != course.ErrNotEnrolled.Error() {
			t.Errorf("failed! Error = %q; want %q", respData.Error, course.ErrNotEnrolled.Error())
		}
		if !strings.HasPrefix(respData.WhatsAppLink, "https://wa.me/243123456789?text=") {
			t.Errorf("failed! WhatsAppLink = %q", respData.WhatsAppLink)
		}
		if !strings.Contains(respData.WhatsAppLink, "Hebrew") {
			t.Errorf("failed! WhatsAppLink does not mention the course: %q", respData.WhatsAppLink)
		}
	})
}

func Test_courseApi_enrollments(t *testing.T) {
	testutil.ResetDB(t, db)

	teacher := testutil.CreateUser(t, usrRepo, "Head", "Teacher", "head@test.cd", "", user.RoleTeacher, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "Mukendi", "hero@test.cd", "", user.RoleStudent, true)
	crs := testutil.CreateCourse(t, courseRepo, "Hebrew 101", nil)
	_ = testutil.CreateLesson(t, courseRepo, crs.ID, "Aleph-Bet", 1, nil)

	teacherToken := getToken(t, teacher)
	studentToken := getToken(t, student)
	enrollmentsPath := "/v1/courses/" + crs.ID + "/enrollments"
	lessonsPath := "/v1/courses/" + crs.ID + "/lessons"

	lockedCode := func() int {
		req, rec := newAuthRequest(http.MethodGet, lessonsPath, studentToken)
		app.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := lockedCode(); code != http.StatusForbidden {
		t.Fatalf("failed! code = %v; want %v before the grant", code, http.StatusForbidden)
	}

	t.Run("Teacher required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, enrollmentsPath, studentToken, marchallObj(t, course.GrantEnrollment{StudentID: student.ID}))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Granted", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, enrollmentsPath, teacherToken, marchallObj(t, course.GrantEnrollment{StudentID: student.ID}))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %v", rec.Code, rec.Body.String())
		}
		var enr course.Enrollment
		if err := json.Unmarshal(rec.Body.Bytes(), &enr); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if enr.ID != course.EnrollmentID(student.ID, crs.ID) {
			t.Errorf("failed! ID = %q; want %q", enr.ID, course.EnrollmentID(student.ID, crs.ID))
		}
		if enr.GrantedBy != teacher.ID || enr.Status != course.EnrollmentActive {
			t.Errorf("failed! enrollment = %+v", enr)
		}

		if code := lockedCode(); code != http.StatusOK {
			t.Errorf("failed! code = %v; want %v after the grant", code, http.StatusOK)
		}
	})

	t.Run("Revoked", func(t *testing.T) {
		req, rec := newAuthRequest(
			http.MethodPut, enrollmentsPath+"/"+student.ID, teacherToken,
			marchallObj(t, course.UpdateEnrollment{Status: course.EnrollmentRevoked}),
		)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %v", rec.Code, rec.Body.String())
		}
		if code := lockedCode(); code != http.StatusForbidden {
			t.Errorf("failed! code = %v; want %v after the revocation", code, http.StatusForbidden)
		}
	})

	t.Run("Unknown student cannot be enrolled", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, enrollmentsPath, teacherToken, marchallObj(t, course.GrantEnrollment{StudentID: "lol"}))
		app.ServeHTTP(rec, req)
		if rec.Code == http.StatusCreated {
			t.Errorf("failed! code = %v; want an error", rec.Code)
		}
	})
}
