package bundle

import (
	"encoding/json"
	"testing"
	"time"
)

func floatPtr(f float64) *float64 { return &f }

func TestLegacyPurchase_Normalize(t *testing.T) {
	createdAt := time.Date(2023, 4, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		lp            LegacyPurchase
		wantHours     float64
		wantHoursUsed float64
	}{
		{
			name:          "hoursPurchased wins over hours",
			lp:            LegacyPurchase{HoursPurchased: floatPtr(10), Hours: floatPtr(8)},
			wantHours:     10,
			wantHoursUsed: 0,
		},
		{
			name:          "hours alone",
			lp:            LegacyPurchase{Hours: floatPtr(8)},
			wantHours:     8,
			wantHoursUsed: 0,
		},
		{
			name:          "hoursUsed wins over usedHours",
			lp:            LegacyPurchase{HoursUsed: floatPtr(3), UsedHours: floatPtr(5)},
			wantHoursUsed: 3,
		},
		{
			name:          "usedHours alone",
			lp:            LegacyPurchase{UsedHours: floatPtr(5)},
			wantHoursUsed: 5,
		},
		{
			name: "all aliases absent",
			lp:   LegacyPurchase{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.lp.Normalize()
			if got.Hours != tt.wantHours {
				t.Errorf("Normalize() Hours = %v; want %v", got.Hours, tt.wantHours)
			}
			if got.HoursUsed != tt.wantHoursUsed {
				t.Errorf("Normalize() HoursUsed = %v; want %v", got.HoursUsed, tt.wantHoursUsed)
			}
		})
	}

	t.Run("owner fields and timestamps", func(t *testing.T) {
		lp := LegacyPurchase{
			ID:           "abc123",
			StudentID:    " usr1 ",
			StudentEmail: " Hero@Test.CD ",
			Title:        " Starter ",
			CreatedAt:    createdAt,
		}
		got := lp.Normalize()
		if got.ID != "abc123" || got.StudentID != "usr1" || got.StudentEmail != "hero@test.cd" || got.Title != "Starter" {
			t.Errorf("Normalize() = %+v", got)
		}
		if !got.CreatedAt.Equal(createdAt) || !got.UpdatedAt.Equal(createdAt) {
			t.Errorf("Normalize() CreatedAt/UpdatedAt = %v/%v; want %v", got.CreatedAt, got.UpdatedAt, createdAt)
		}
	})

	t.Run("decodes historic rows", func(t *testing.T) {
		raw := `{"id":"p1","studentEmail":"hero@test.cd","title":"Starter","hoursPurchased":10,"usedHours":4}`
		var lp LegacyPurchase
		if err := json.Unmarshal([]byte(raw), &lp); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		got := lp.Normalize()
		if got.Hours != 10 || got.HoursUsed != 4 {
			t.Errorf("Normalize() Hours/HoursUsed = %v/%v; want 10/4", got.Hours, got.HoursUsed)
		}
	})
}

func TestPurchase_Remaining(t *testing.T) {
	tests := []struct {
		name string
		p    Purchase
		want float64
	}{
		{name: "partially used", p: Purchase{Hours: 10, HoursUsed: 4}, want: 6},
		{name: "exhausted", p: Purchase{Hours: 10, HoursUsed: 10}, want: 0},
		{name: "over-recorded usage clamps to zero", p: Purchase{Hours: 5, HoursUsed: 7}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Remaining(); got != tt.want {
				t.Errorf("Remaining() = %v; want %v", got, tt.want)
			}
		})
	}
}
