package scraper

import (
	"reflect"
	"testing"

	"github.com/vipteryx/centretracker/internal/schedule"
)

func TestMarkupStrategy(t *testing.T) {
	snap := &Snapshot{HTML: loadFixture(t, "weekly_schedule.html")}

	m, ok := (&MarkupStrategy{}).Attempt(snap)
	if !ok {
		t.Fatal("expected markup records")
	}
	if m.Strategy != "markup" || m.Origin != "document" {
		t.Errorf("match = %s from %s, want markup from document", m.Strategy, m.Origin)
	}

	// The footer's opening hours sit under <body>, which holds every header, so they are dropped
	want := []schedule.Record{
		{"name": "Lane Swim", "time": "6:00 am - 9:00 am", "date": "Monday, February 26"},
		{"name": "Aquafit", "time": "10:00 am - 11:00 am", "date": "Monday, February 26"},
		{"name": "Public Swim", "time": "1:30 pm – 3:00 pm", "date": "Tuesday, February 27"},
	}
	if !reflect.DeepEqual(m.Records, want) {
		t.Errorf("records = %v, want %v", m.Records, want)
	}
}

func TestMarkupStrategyAssociation(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []schedule.Record
	}{
		{
			name: "header and time share a row",
			html: `<body><div><p>Sat Mar 2</p><p>Swim Lessons <b>9:00am-9:45am</b></p></div></body>`,
			want: []schedule.Record{{"name": "Swim Lessons", "time": "9:00am-9:45am", "date": "Sat Mar 2"}},
		},
		{
			name: "name from grandparent",
			html: `<body><div><h4>Wed Feb 28</h4><div><span>Diving</span><div><em>7:15 pm - 8:00 pm</em></div></div></div></body>`,
			want: []schedule.Record{{"name": "Diving", "time": "7:15 pm - 8:00 pm", "date": "Wed Feb 28"}},
		},
		{
			name: "ambiguous ancestor",
			html: `<body><table><tr><th>Mon Feb 26</th><th>Tue Feb 27</th></tr>
				<tr><td>Lane Swim 6:00 am - 9:00 am</td><td>Aquafit 10:00 am - 11:00 am</td></tr></table></body>`,
			want: nil,
		},
		{
			name: "long text is not a leaf",
			html: `<body><div><h3>Thu Feb 29</h3><p>` + longText() + ` 6:00 am - 9:00 am</p></div></body>`,
			want: nil,
		},
		{
			name: "scripts are ignored",
			html: `<body><h3>Fri Mar 1</h3><script>var s = "Lap 6:00 am - 7:00 am";</script></body>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := (&MarkupStrategy{}).Attempt(&Snapshot{HTML: tt.html})
			if tt.want == nil {
				if ok {
					t.Errorf("expected no records, got %v", m.Records)
				}
				return
			}
			if !ok {
				t.Fatal("expected markup records")
			}
			if !reflect.DeepEqual(m.Records, tt.want) {
				t.Errorf("records = %v, want %v", m.Records, tt.want)
			}
		})
	}
}

func TestMarkupStrategyEmptyHTML(t *testing.T) {
	if _, ok := (&MarkupStrategy{}).Attempt(&Snapshot{}); ok {
		t.Error("expected no records from an empty snapshot")
	}
}

func longText() string {
	text := ""
	for len(text) <= MaxLeafText {
		text += "Please arrive ten minutes early. "
	}
	return text
}
