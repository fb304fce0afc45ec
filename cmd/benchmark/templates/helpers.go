package templates

import (
	"strconv"
	"strings"
	"time"
)

// Row is one benchmark run as the report shows it.
type Row struct {
	Name        string
	Nodes       int
	Subscribers int
	Deliveries  int
	Avg         time.Duration
	P75         time.Duration
	P99         time.Duration
	Max         time.Duration
}

// latency rounds d so the markdown columns stay narrow.
func latency(d time.Duration) string {
	switch {
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond).String()
	case d >= time.Microsecond:
		return d.Round(10 * time.Nanosecond).String()
	}
	return d.String()
}

// separator is a markdown header separator for count columns.
func separator(count int) string {
	var sb strings.Builder
	sb.WriteString("|")
	for i := 0; i < count; i++ {
		sb.WriteString(" --- |")
	}
	return sb.String()
}

func count(n int) string {
	return strconv.Itoa(n)
}
