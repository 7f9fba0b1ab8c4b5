package schedule

import (
	"testing"
)

func day(date string, names ...string) Day {
	d := Day{Date: date, DayOfWeek: Weekday(date)}
	for _, n := range names {
		d.Sessions = append(d.Sessions, Session{Name: n, Time: "10:00am - 11:00am"})
	}
	return d
}

func TestDiff(t *testing.T) {
	previous := &Result{Days: []Day{
		day("2024-02-23", "Lane Swim", "Aquafit"),
		day("2024-02-24", "Public Swim"),
	}}
	current := &Result{Days: []Day{
		day("2024-02-23", "Lane Swim"),
		day("2024-02-24", "Public Swim", "Lessons"),
		day("2024-02-25", "Family Swim"),
	}}

	diff := Diff(previous, current)

	if !diff.HasChanges() {
		t.Fatal("HasChanges() = false, want true")
	}
	if len(diff.Added) != 2 {
		t.Fatalf("Added = %d, want 2", len(diff.Added))
	}
	if diff.Added[0].Session.Name != "Lessons" || diff.Added[0].Date != "2024-02-24" {
		t.Errorf("Added[0] = %+v, want Lessons on 2024-02-24", diff.Added[0])
	}
	if diff.Added[1].Session.Name != "Family Swim" || diff.Added[1].DayOfWeek != "Sunday" {
		t.Errorf("Added[1] = %+v, want Family Swim on Sunday", diff.Added[1])
	}
	if len(diff.Removed) != 1 || diff.Removed[0].Session.Name != "Aquafit" {
		t.Errorf("Removed = %+v, want only Aquafit", diff.Removed)
	}
}

func TestDiff_NilPrevious(t *testing.T) {
	current := &Result{Days: []Day{day("2024-02-23", "Lane Swim", "Aquafit")}}

	diff := Diff(nil, current)
	if len(diff.Added) != 2 {
		t.Errorf("Added = %d, want 2", len(diff.Added))
	}
	if len(diff.Removed) != 0 {
		t.Errorf("Removed = %d, want 0", len(diff.Removed))
	}
}

func TestDiff_Unchanged(t *testing.T) {
	r := &Result{Days: []Day{day("2024-02-23", "Lane Swim")}}
	if Diff(r, r).HasChanges() {
		t.Error("HasChanges() = true for identical results")
	}
}

func TestSessionKey_Stable(t *testing.T) {
	s := Session{Name: "Lane Swim", Time: "10:00am - 11:00am", Location: "Pool"}
	a := SessionKey("2024-02-23", s)
	b := SessionKey("2024-02-23", s)
	if a != b {
		t.Errorf("SessionKey not deterministic: %s != %s", a, b)
	}
	if a == SessionKey("2024-02-24", s) {
		t.Error("SessionKey should depend on the date")
	}
	s.Status = "Full"
	if a != SessionKey("2024-02-23", s) {
		t.Error("SessionKey should ignore status")
	}
}
