package bundle

import (
	"sort"
	"time"

	"github.com/trezcool/madrasa/core/booking"
	"github.com/trezcool/madrasa/core/user"
)

// Summary aggregates a student's hours across their active purchases.
// Remaining is clamped at the total level: a single over-used bundle cannot
// drag the balance negative.
type Summary struct {
	PurchasedHours float64 `json:"purchased_hours"`
	UsedHours      float64 `json:"used_hours"`
	RemainingHours float64 `json:"remaining_hours"`
	PercentUsed    float64 `json:"percent_used"`
}

// Summarize folds purchases with active != false into a Summary.
// Zero purchases yield an all-zero Summary, never NaN.
func Summarize(purchases []Purchase) Summary {
	var s Summary
	for i := range purchases {
		p := &purchases[i]
		if !p.IsActive() {
			continue
		}
		s.PurchasedHours += p.Hours
		s.UsedHours += p.HoursUsed
	}
	return s.finalize()
}

func (s Summary) finalize() Summary {
	s.RemainingHours = s.PurchasedHours - s.UsedHours
	if s.RemainingHours < 0 {
		s.RemainingHours = 0
	}
	if s.PurchasedHours > 0 {
		s.PercentUsed = s.UsedHours / s.PurchasedHours * 100
	}
	return s
}

// MergeByID unions purchase result sets by document id, later sets winning on
// collisions. Merging a set with itself is a no-op.
func MergeByID(sets ...[]Purchase) []Purchase {
	byID := make(map[string]Purchase)
	order := make([]string, 0)
	for _, set := range sets {
		for _, p := range set {
			if _, seen := byID[p.ID]; !seen {
				order = append(order, p.ID)
			}
			byID[p.ID] = p
		}
	}
	merged := make([]Purchase, 0, len(order))
	for _, id := range order {
		merged = append(merged, byID[id])
	}
	return merged
}

// OverviewRow is one teacher-dashboard line per student.
type OverviewRow struct {
	StudentID    string     `json:"student_id"`
	StudentName  string     `json:"student_name"`
	StudentEmail string     `json:"student_email"`
	Summary
	NextLesson *time.Time `json:"next_lesson"`
}

// BuildOverview assembles the teacher dashboard: one row per student, hour
// totals from their purchases plus the duration of each completed
// appointment, and the earliest future scheduled appointment as next lesson.
// Hours recorded on a purchase AND marked completed on an appointment count
// twice; the historic books kept both and so do we.
func BuildOverview(students []user.User, purchases []Purchase, appointments []booking.Appointment, now time.Time) []OverviewRow {
	rows := make([]OverviewRow, 0, len(students))

	for _, stu := range students {
		if !stu.IsStudent() {
			continue
		}

		var byID, byEmail []Purchase
		for _, p := range purchases {
			switch {
			case p.StudentID != "" && p.StudentID == stu.ID:
				byID = append(byID, p)
			case p.StudentEmail != "" && p.StudentEmail == stu.Email:
				byEmail = append(byEmail, p)
			}
		}

		var s Summary
		for _, p := range MergeByID(byID, byEmail) {
			if !p.IsActive() {
				continue
			}
			s.PurchasedHours += p.Hours
			s.UsedHours += p.HoursUsed
		}

		row := OverviewRow{
			StudentID:    stu.ID,
			StudentName:  stu.FullName(),
			StudentEmail: stu.Email,
		}
		for i := range appointments {
			appt := &appointments[i]
			if appt.StudentID != stu.ID {
				continue
			}
			if appt.Status == booking.StatusCompleted {
				s.UsedHours += appt.DurationHours
			}
			if appt.Status == booking.StatusScheduled && appt.StartsAt.After(now) {
				if row.NextLesson == nil || appt.StartsAt.Before(*row.NextLesson) {
					startsAt := appt.StartsAt
					row.NextLesson = &startsAt
				}
			}
		}
		row.Summary = s.finalize()
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].StudentName < rows[j].StudentName })
	return rows
}
