package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/madrasa/core/booking"
	"github.com/trezcool/madrasa/core/user"
	emailsvc "github.com/trezcool/madrasa/services/email"
	testutil "github.com/trezcool/madrasa/tests"
)

func Test_bookingApi_book(t *testing.T) {
	testutil.ResetDB(t, db)

	teacher := testutil.CreateUser(t, usrRepo, "Head", "Teacher", "head@test.cd", "", user.RoleTeacher, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "Mukendi", "hero@test.cd", "", user.RoleStudent, true)
	studentToken := getToken(t, student)

	slot := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "invalid duration", token: studentToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, booking.NewAppointment{StartsAt: slot, DurationHours: 4}),
			wantData: marchallObj(t, map[string]string{"duration_hours": "duration_hours must be 3 or less"}),
		},
		{
			name: "past slot", token: studentToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, booking.NewAppointment{StartsAt: time.Now().Add(-time.Hour), DurationHours: 1}),
			wantData: marchallObj(t, map[string]string{"starts_at": "appointment time must be in the future"}),
		},
		{
			name: "slot beyond 7 days", token: studentToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, booking.NewAppointment{StartsAt: time.Now().Add(8 * 24 * time.Hour), DurationHours: 1}),
			wantData: marchallObj(t, map[string]string{"starts_at": "appointment time must be within the next 7 days"}),
		},
		{
			name: "booked", token: studentToken, wantCode: http.StatusCreated,
			body: marchallObj(t, booking.NewAppointment{StartsAt: slot, DurationHours: 1.5}),
		},
		{
			name: "duplicate slot", token: studentToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, booking.NewAppointment{StartsAt: slot, DurationHours: 1}),
			wantData: marchallObj(t, map[string]string{"starts_at": "this time slot is already booked"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/appointments"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.SentMessages = nil // reset

			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var appt booking.Appointment
				if err := json.Unmarshal(rec.Body.Bytes(), &appt); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if appt.StudentID != student.ID || appt.TeacherEmail != teacher.Email {
					t.Errorf("failed! StudentID/TeacherEmail = %q/%q", appt.StudentID, appt.TeacherEmail)
				}
				if appt.Status != booking.StatusScheduled {
					t.Errorf("failed! Status = %q; want %q", appt.Status, booking.StatusScheduled)
				}
				if appt.MeetingLink == "" {
					t.Error("failed! empty MeetingLink")
				}
				// both parties get a confirmation email
				if len(emailsvc.SentMessages) != 2 {
					t.Errorf("failed! len(SentMessages) = %d; want 2", len(emailsvc.SentMessages))
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_bookingApi_query(t *testing.T) {
	testutil.ResetDB(t, db)

	teacher := testutil.CreateUser(t, usrRepo, "Head", "Teacher", "head@test.cd", "", user.RoleTeacher, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "Mukendi", "hero@test.cd", "", user.RoleStudent, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "Student", "other@test.cd", "", user.RoleStudent, true)

	now := time.Now().UTC().Truncate(time.Second)
	mine := testutil.CreateAppointment(t, apptRepo, student.ID, now.Add(time.Hour), 1, booking.StatusScheduled)
	theirs := testutil.CreateAppointment(t, apptRepo, other.ID, now.Add(2*time.Hour), 1, booking.StatusScheduled)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/appointments", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Student sees own calendar", path: "/v1/appointments", token: getToken(t, student), wantData: marchallList(t, mine)},
		{
			name: "Student cannot peek at another calendar", path: "/v1/appointments?student_id=" + other.ID,
			token: getToken(t, student), wantData: marchallList(t, mine),
		},
		{name: "Teacher sees all", path: "/v1/appointments", token: getToken(t, teacher), wantData: marchallList(t, mine, theirs)},
		{
			name: "Teacher filters by student", path: "/v1/appointments?student_id=" + other.ID,
			token: getToken(t, teacher), wantData: marchallList(t, theirs),
		},
		{name: "Retrieve own", path: "/v1/appointments/" + mine.ID, token: getToken(t, student), wantData: marchallObj(t, mine)},
		{
			name: "Someone else's appointment is a 404", path: "/v1/appointments/" + theirs.ID, token: getToken(t, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "Teacher retrieves any", path: "/v1/appointments/" + theirs.ID, token: getToken(t, teacher), wantData: marchallObj(t, theirs)},
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

func Test_bookingApi_updateStatus(t *testing.T) {
	testutil.ResetDB(t, db)

	teacher := testutil.CreateUser(t, usrRepo, "Head", "Teacher", "head@test.cd", "", user.RoleTeacher, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "Mukendi", "hero@test.cd", "", user.RoleStudent, true)
	appt := testutil.CreateAppointment(t, apptRepo, student.ID, time.Now().UTC().Add(time.Hour), 1, booking.StatusScheduled)

	teacherToken := getToken(t, teacher)

	tests := []httpTest{
		{
			name: "Teacher required", token: getToken(t, student), wantCode: http.StatusForbidden,
			body:     marchallObj(t, booking.UpdateAppointmentStatus{Status: booking.StatusCompleted}),
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "invalid status", token: teacherToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, booking.UpdateAppointmentStatus{Status: "lol"}),
			wantData: marchallObj(t, map[string]string{"status": "status must be one of [scheduled completed cancelled]"}),
		},
		{
			name: "Completed", token: teacherToken, wantCode: http.StatusOK,
			body:  marchallObj(t, booking.UpdateAppointmentStatus{Status: booking.StatusCompleted}),
			extra: booking.StatusCompleted,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut
		tt.path = "/v1/appointments/" + appt.ID + "/status"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if wantStatus, ok := tt.extra.(string); ok {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var updated booking.Appointment
				if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if updated.Status != wantStatus {
					t.Errorf("failed! Status = %q; want %q", updated.Status, wantStatus)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
