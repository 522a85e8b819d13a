package course

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testCourse(freq string, start, end time.Time, times ...string) *Course {
	return &Course{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		MedicineID:    uuid.New(),
		Name:          "vitamin d",
		TimesADay:     len(times),
		TimesOfTaking: times,
		StartDate:     start,
		EndDate:       end,
		Status:        StatusPlanned,
		Frequency:     freq,
	}
}

func TestExpand_DailyCount(t *testing.T) {
	c := testCourse(FrequencyDaily, date(2025, 1, 1), date(2025, 1, 3), "08:00", "20:00")
	now := date(2024, 12, 1)

	intakes := Generator{}.Expand(c, time.UTC, now)

	if len(intakes) != 6 {
		t.Fatalf("expected 6 intakes, got %d", len(intakes))
	}
	want := []time.Time{
		time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 2, 20, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 3, 20, 0, 0, 0, time.UTC),
	}
	for i, in := range intakes {
		if !in.ScheduledTime.Equal(want[i]) {
			t.Errorf("intake %d: expected %s, got %s", i, want[i], in.ScheduledTime)
		}
		if in.CourseID != c.ID || in.UserID != c.UserID {
			t.Errorf("intake %d: wrong ownership", i)
		}
	}
}

func TestExpand_MissedClassification(t *testing.T) {
	c := testCourse(FrequencyDaily, date(2025, 1, 1), date(2025, 1, 3), "08:00", "20:00")
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	intakes := Generator{}.Expand(c, time.UTC, now)

	if len(intakes) != 6 {
		t.Fatalf("expected 6 intakes, got %d", len(intakes))
	}
	for i, in := range intakes {
		want := IntakeScheduled
		if i < 2 {
			want = IntakeMissed
		}
		if in.Status != want {
			t.Errorf("intake %d (%s): expected %s, got %s", i, in.ScheduledTime, want, in.Status)
		}
	}
}

func TestExpand_Weekly(t *testing.T) {
	// 2025-01-01 is a Wednesday; the range holds three Wednesdays.
	c := testCourse(FrequencyWeekly, date(2025, 1, 1), date(2025, 1, 20), "09:00")
	intakes := Generator{}.Expand(c, time.UTC, date(2024, 12, 1))

	if len(intakes) != 3 {
		t.Fatalf("expected 3 intakes, got %d", len(intakes))
	}
	for _, in := range intakes {
		if in.ScheduledTime.Weekday() != time.Wednesday {
			t.Errorf("expected Wednesday, got %s", in.ScheduledTime.Weekday())
		}
	}
}

func TestExpand_MonthlySkipsShortMonths(t *testing.T) {
	// Day 31 exists in Jan, Mar, May but not Feb or Apr.
	c := testCourse(FrequencyMonthly, date(2025, 1, 31), date(2025, 5, 31), "09:00")
	intakes := Generator{}.Expand(c, time.UTC, date(2024, 12, 1))

	if len(intakes) != 3 {
		t.Fatalf("expected 3 intakes (Feb and Apr skipped), got %d", len(intakes))
	}
	wantMonths := []time.Month{time.January, time.March, time.May}
	for i, in := range intakes {
		if in.ScheduledTime.Month() != wantMonths[i] || in.ScheduledTime.Day() != 31 {
			t.Errorf("intake %d: expected day 31 of %s, got %s", i, wantMonths[i], in.ScheduledTime)
		}
	}
}

func TestExpand_HonorsUserZone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// Winter: Berlin is UTC+1, so 08:00 local is 07:00 UTC.
	c := testCourse(FrequencyDaily, date(2025, 1, 1), date(2025, 1, 1), "08:00")
	intakes := Generator{}.Expand(c, berlin, date(2024, 12, 1))

	if len(intakes) != 1 {
		t.Fatalf("expected 1 intake, got %d", len(intakes))
	}
	want := time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)
	if !intakes[0].ScheduledTime.Equal(want) {
		t.Errorf("expected %s, got %s", want, intakes[0].ScheduledTime)
	}
	if intakes[0].ScheduledTime.Location() != time.UTC {
		t.Error("expected scheduled time stored in UTC")
	}
}

func TestExpand_EmptyTimesYieldsNothing(t *testing.T) {
	c := testCourse(FrequencyDaily, date(2025, 1, 1), date(2025, 1, 3))
	if intakes := (Generator{}).Expand(c, time.UTC, date(2024, 12, 1)); len(intakes) != 0 {
		t.Errorf("expected no intakes, got %d", len(intakes))
	}
}

func TestExpand_Deterministic(t *testing.T) {
	c := testCourse(FrequencyDaily, date(2025, 1, 1), date(2025, 1, 5), "08:00", "14:00", "20:00")
	now := date(2025, 1, 3)

	a := Generator{}.Expand(c, time.UTC, now)
	b := Generator{}.Expand(c, time.UTC, now)

	if len(a) != len(b) {
		t.Fatalf("expansion not deterministic: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].ScheduledTime.Equal(b[i].ScheduledTime) || a[i].Status != b[i].Status {
			t.Errorf("intake %d differs between runs", i)
		}
	}
}
