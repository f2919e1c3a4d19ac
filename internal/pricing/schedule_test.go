package pricing

import "testing"

func TestNewScheduleValidatesExpression(t *testing.T) {
	if _, err := NewSchedule(nil, "not a cron"); err == nil {
		t.Fatal("want error for invalid expression")
	}
	if _, err := NewSchedule(nil, "0 */6 * * *"); err != nil {
		t.Fatalf("valid expression rejected: %v", err)
	}
}
