package filter

import (
	"testing"
	"time"

	"github.com/vipteryx/centretracker/internal/schedule"
)

func sampleResult() *schedule.Result {
	now := time.Date(2024, time.February, 20, 8, 0, 0, 0, time.UTC)
	return schedule.NewResult([]schedule.Day{
		{Date: "2024-02-23", DayOfWeek: "Friday", Sessions: []schedule.Session{
			{Name: "Lane Swim", Time: "6:00am - 9:00am", Location: "Main Pool"},
			{Name: "Aquafit", Time: "10:00am - 11:00am", Location: "Teach Pool"},
		}},
		{Date: "2024-02-24", DayOfWeek: "Saturday", Sessions: []schedule.Session{
			{Name: "Public Swim", Time: "1:00pm - 3:00pm", Location: "Main Pool"},
		}},
		{Date: "2024-02-25", DayOfWeek: "Sunday", Sessions: []schedule.Session{
			{Name: "Lane Swim", Time: "8:00am - 10:00am", Location: "Main Pool"},
		}},
		{Date: "next week", Sessions: []schedule.Session{
			{Name: "Lane Swim"},
		}},
	}, now)
}

func TestFilter_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{"new filter", NewFilter(), true},
		{"with date from", &Filter{DateFrom: "2024-02-23"}, false},
		{"with names", &Filter{Names: []string{"swim"}}, false},
		{"with locations", &Filter{Locations: []string{"pool"}}, false},
		{"weekends only", &Filter{WeekendsOnly: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name      string
		filter    *Filter
		wantDates []string
		wantCount int
	}{
		{
			name:      "empty filter keeps everything",
			filter:    NewFilter(),
			wantDates: []string{"2024-02-23", "2024-02-24", "2024-02-25", "next week"},
			wantCount: 5,
		},
		{
			name:      "name substring, case-insensitive",
			filter:    &Filter{Names: []string{"LANE"}},
			wantDates: []string{"2024-02-23", "2024-02-25", "next week"},
			wantCount: 3,
		},
		{
			name:      "location",
			filter:    &Filter{Locations: []string{"teach"}},
			wantDates: []string{"2024-02-23"},
			wantCount: 1,
		},
		{
			name:      "weekends only keeps unresolved days",
			filter:    &Filter{WeekendsOnly: true},
			wantDates: []string{"2024-02-24", "2024-02-25", "next week"},
			wantCount: 3,
		},
		{
			name:      "date range is inclusive",
			filter:    &Filter{DateFrom: "2024-02-24", DateTo: "2024-02-24"},
			wantDates: []string{"2024-02-24", "next week"},
			wantCount: 2,
		},
		{
			name:      "combined criteria",
			filter:    &Filter{Names: []string{"swim"}, WeekendsOnly: true, DateTo: "2024-02-24"},
			wantDates: []string{"2024-02-24", "next week"},
			wantCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.filter.Apply(sampleResult())

			var dates []string
			for _, d := range result.Days {
				dates = append(dates, d.Date)
			}
			if len(dates) != len(tt.wantDates) {
				t.Fatalf("got dates %v, want %v", dates, tt.wantDates)
			}
			for i := range dates {
				if dates[i] != tt.wantDates[i] {
					t.Errorf("day %d = %s, want %s", i, dates[i], tt.wantDates[i])
				}
			}
			if result.SessionCount() != tt.wantCount {
				t.Errorf("SessionCount() = %d, want %d", result.SessionCount(), tt.wantCount)
			}
		})
	}
}

func TestFilter_ApplyRecomputesWeekRange(t *testing.T) {
	original := sampleResult()
	result := (&Filter{WeekendsOnly: true}).Apply(original)

	if result.WeekRange.Start == nil || *result.WeekRange.Start != "2024-02-24" {
		t.Errorf("WeekRange.Start = %v, want 2024-02-24", result.WeekRange.Start)
	}
	if result.WeekRange.End == nil || *result.WeekRange.End != "2024-02-25" {
		t.Errorf("WeekRange.End = %v, want 2024-02-25", result.WeekRange.End)
	}
	if result.LastUpdated != original.LastUpdated {
		t.Errorf("LastUpdated changed: %s", result.LastUpdated)
	}
	if len(original.Days[0].Sessions) != 2 {
		t.Error("Apply must not modify its input")
	}
}

func TestFilter_ApplyNoMatches(t *testing.T) {
	result := (&Filter{Names: []string{"diving"}}).Apply(sampleResult())

	if !result.IsEmpty() {
		t.Errorf("expected no days, got %d", len(result.Days))
	}
	if result.Days == nil {
		t.Error("Days should be an empty slice, not nil")
	}
	if result.WeekRange.Start != nil {
		t.Error("expected null week range")
	}
}

func TestFilter_String(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   string
	}{
		{"empty", NewFilter(), "No active filters"},
		{"weekends", &Filter{WeekendsOnly: true}, "Weekends only"},
		{
			"all",
			&Filter{DateFrom: "2024-02-26", DateTo: "2024-03-03", Names: []string{"lane swim", "aquafit"}, Locations: []string{"main"}, WeekendsOnly: true},
			"From: 2024-02-26 | To: 2024-03-03 | Activities: lane swim, aquafit | Locations: main | Weekends only",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilter_Clone(t *testing.T) {
	original := &Filter{DateFrom: "2024-02-26", Names: []string{"swim"}, Locations: []string{"pool"}}
	clone := original.Clone()

	clone.Names[0] = "dive"
	clone.Locations = append(clone.Locations, "gym")
	clone.DateFrom = ""

	if original.Names[0] != "swim" {
		t.Error("modifying clone names affected original")
	}
	if len(original.Locations) != 1 {
		t.Error("modifying clone locations affected original")
	}
	if original.DateFrom != "2024-02-26" {
		t.Error("modifying clone date affected original")
	}
}
