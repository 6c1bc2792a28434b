package memory

import "testing"

func TestNormalizeToolContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "no identifiers passes through",
			content: `{"status": "active", "expiry": "15/03/2027"}`,
			want:    `{"status": "active", "expiry": "15/03/2027"}`,
		},
		{
			name:    "plain text passes through",
			content: "Error: vehicle not found",
			want:    "Error: vehicle not found",
		},
		{
			name:    "single booking extracted",
			content: `{"booking_id": 7, "car_id": 2, "name": "Priya", "start_date": "10/09/2026", "end_date": "10/09/2026", "status": "confirmed", "notes": "brake check"}`,
			want:    `[{"booking_id":7,"car_id":2,"end_date":"10/09/2026","name":"Priya","start_date":"10/09/2026"}]`,
		},
		{
			name: "multiple bookings paired positionally",
			content: `[{"booking_id": 1, "name": "A", "start_date": "01/01/2026"},` +
				` {"booking_id": 2, "name": "B", "start_date": "02/01/2026"}]`,
			want: `[{"booking_id":1,"name":"A","start_date":"01/01/2026"},{"booking_id":2,"name":"B","start_date":"02/01/2026"}]`,
		},
		{
			name:    "partial fields kept sparse",
			content: `{"car_id": 9, "model": "Nexon"}`,
			want:    `[{"car_id":9}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeToolContent(tt.content)
			if got != tt.want {
				t.Errorf("NormalizeToolContent:\n got %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeToolContentIdempotent(t *testing.T) {
	content := `{"booking_id": 7, "car_id": 2, "name": "Priya", "start_date": "10/09/2026", "end_date": "11/09/2026"}`

	once := NormalizeToolContent(content)
	twice := NormalizeToolContent(once)
	if once != twice {
		t.Errorf("not idempotent:\n once %q\ntwice %q", once, twice)
	}
}
