package index

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/eargollo/indexer/internal/logging"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{42 * time.Second, "42s"},
		{2 * time.Minute, "2m"},
		{2*time.Minute + 5*time.Second, "2m5s"},
		{3 * time.Hour, "3h"},
		{3*time.Hour + 20*time.Minute, "3h20m"},
		{-5 * time.Second, "5s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatETA(t *testing.T) {
	now := time.Date(2026, 5, 4, 23, 0, 0, 0, time.UTC)
	if got := formatETA(now.Add(30*time.Minute), now); got != "23:30:00" {
		t.Errorf("same day ETA = %q", got)
	}
	if got := formatETA(now.Add(2*time.Hour), now); got != "May  5 01:00:00" {
		t.Errorf("next day ETA = %q", got)
	}
}

func TestProgress_logsAtIntervalAndEnd(t *testing.T) {
	var buf bytes.Buffer
	l, err := logging.New("info", "text", &buf)
	if err != nil {
		t.Fatal(err)
	}
	p := newProgress(l, progressLogInterval+1)
	for i := 0; i < progressLogInterval-1; i++ {
		p.step()
	}
	if buf.Len() != 0 {
		t.Fatalf("logged before interval: %q", buf.String())
	}
	p.step()
	if !strings.Contains(buf.String(), "progress: 50/51 files") {
		t.Errorf("interval line missing: %q", buf.String())
	}
	p.step()
	if !strings.Contains(buf.String(), "51/51 files (100.0%) | done in") {
		t.Errorf("final line missing: %q", buf.String())
	}
}

func TestProgress_messageIncludesETAMidRun(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p := &progress{total: 100, done: 25, start: start, now: func() time.Time { return start.Add(time.Minute) }}
	got := p.message()
	want := "progress: 25/100 files (25.0%) | elapsed 1m | remaining ~3m | ETA ~12:04:00"
	if got != want {
		t.Errorf("message() = %q, want %q", got, want)
	}
}
