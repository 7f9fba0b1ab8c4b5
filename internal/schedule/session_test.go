package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSession(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   Session
	}{
		{
			name: "start and end timestamps",
			record: Record{
				"name":      "Lane Swim",
				"startTime": "2024-02-23T10:00:00",
				"endTime":   "2024-02-23T11:00:00",
			},
			want: Session{Name: "Lane Swim", Time: "10:00am - 11:00am"},
		},
		{
			name: "alias priority prefers activity_name",
			record: Record{
				"title":         "Generic Title",
				"activity_name": "  Aquafit\n Deep ",
				"start_time":    "2024-02-23T18:30:00",
			},
			want: Session{Name: "Aquafit Deep", Time: "6:30pm"},
		},
		{
			name: "blank alias falls through to the next one",
			record: Record{
				"activityName": "   ",
				"name":         "Public Swim",
			},
			want: Session{Name: "Public Swim"},
		},
		{
			name: "human readable time passes through",
			record: Record{
				"name": "Lessons",
				"time": "9:00 am -  9:45 am",
			},
			want: Session{Name: "Lessons", Time: "9:00 am - 9:45 am"},
		},
		{
			name: "end without start has no time",
			record: Record{
				"name":    "Sauna",
				"endTime": "2024-02-23T11:00:00",
			},
			want: Session{Name: "Sauna"},
		},
		{
			name: "location and status",
			record: Record{
				"name":          "Lane Swim",
				"facility_name": "Britannia Pool",
				"availability":  "Full",
				"room":          "ignored",
			},
			want: Session{Name: "Lane Swim", Location: "Britannia Pool", Status: "Full"},
		},
		{
			name: "blank optional fields are omitted",
			record: Record{
				"name":     "Lane Swim",
				"location": " \t",
				"status":   "",
			},
			want: Session{Name: "Lane Swim"},
		},
		{
			name: "numbers are stringified and objects ignored",
			record: Record{
				"title":    map[string]any{"en": "Swim"},
				"name":     nil,
				"room":     json.Number("204"),
				"location": []any{"a"},
			},
			want: Session{Location: "204"},
		},
		{
			name:   "no name alias yields empty name",
			record: Record{"id": 7, "date": "2024-02-23"},
			want:   Session{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSession(tt.record))
		})
	}
}

func TestSessionJSONOmitsUnobservedFields(t *testing.T) {
	data, err := json.Marshal(Session{Name: "Lane Swim"})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"name":"Lane Swim"}`, string(data))

	data, err = json.Marshal(Session{})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"name":""}`, string(data))
}
