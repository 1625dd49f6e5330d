package index

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const progressLogInterval = 50 // log "N/M files" every this many files

type progress struct {
	log   logrus.FieldLogger
	total int64
	done  int64
	start time.Time
	now   func() time.Time
}

func newProgress(log logrus.FieldLogger, total int64) *progress {
	return &progress{log: log, total: total, start: time.Now(), now: time.Now}
}

// step counts one finished file and logs every progressLogInterval files and
// at the end. Mid-run lines carry elapsed time, remaining time and ETA
// extrapolated from the rate so far.
func (p *progress) step() {
	if p.total <= 0 {
		return
	}
	p.done++
	if p.done%progressLogInterval != 0 && p.done != p.total {
		return
	}
	if msg := p.message(); msg != "" {
		p.log.Info(msg)
	}
}

func (p *progress) message() string {
	n := p.done
	if n > p.total {
		n = p.total
	}
	pct := float64(100) * float64(n) / float64(p.total)
	msg := fmt.Sprintf("progress: %d/%d files (%.1f%%)", n, p.total, pct)
	now := p.now()
	elapsed := now.Sub(p.start)
	if n >= p.total {
		return msg + fmt.Sprintf(" | done in %s", formatDuration(elapsed))
	}
	if n <= 0 || elapsed <= time.Second {
		return msg
	}
	remaining := time.Duration(float64(elapsed) * float64(p.total-n) / float64(n))
	if remaining < 0 {
		remaining = 0
	}
	return msg + fmt.Sprintf(" | elapsed %s | remaining ~%s | ETA ~%s",
		formatDuration(elapsed), formatDuration(remaining), formatETA(now.Add(remaining), now))
}

// formatETA returns "15:04:05" when t is on the same day as now, otherwise
// "Jan 2 15:04:05" so past-midnight ETAs are not read as earlier today.
func formatETA(t, now time.Time) string {
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04:05")
	}
	return t.Format("Jan _2 15:04:05")
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%dm", h, m)
}
