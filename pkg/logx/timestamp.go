package logx

import (
	"strconv"
	"strings"
	"time"
)

// DefaultTimestampTemplate is a Go time layout with two extra slots:
// {tzname} and {tzoffset}.
const DefaultTimestampTemplate = "[2006-01-02 15:04:05{tzname}{tzoffset}]"

const (
	slotTZName   = "{tzname}"
	slotTZOffset = "{tzoffset}"
)

// Timestamp renders the prefix of every log line.
//
// The zero value renders UTC with DefaultTimestampTemplate.
type Timestamp struct {
	Local    bool
	Template string
	// Location overrides time.Local in local mode.
	Location *time.Location
}

// FormatTimestamp formats the current instant. A nil useUTC means UTC and a
// nil template means DefaultTimestampTemplate.
func FormatTimestamp(useUTC *bool, template *string) string {
	ts := Timestamp{}
	if useUTC != nil {
		ts.Local = !*useUTC
	}
	if template != nil {
		ts.Template = *template
	}
	return ts.Format(time.Now())
}

func (ts Timestamp) Format(now time.Time) string {
	tmpl := ts.Template
	if tmpl == "" {
		tmpl = DefaultTimestampTemplate
	}

	var (
		t      time.Time
		tzName string
		offset string
	)
	if !ts.Local {
		t = now.UTC()
		tzName = "UTC"
		offset = "+0000"
	} else {
		loc := ts.Location
		if loc == nil {
			loc = time.Local
		}
		t = now.In(loc)
		name, west := standardZone(t)
		tzName = name

		// Coarse: compares hours of day only. Kept as-is, the output format is
		// relied upon by existing log consumers.
		sign := "+"
		if now.UTC().Hour() > t.Hour() {
			sign = "-"
		}
		offset = sign + zfill(strconv.Itoa(floorDiv(west, 36)), 4)
	}

	out := render(t, tmpl, tzName, offset)
	return strings.ToUpper(strings.TrimSpace(out)) + " "
}

// standardZone returns the standard-time abbreviation of t's location and
// its offset in seconds west of UTC.
func standardZone(t time.Time) (string, int) {
	loc := t.Location()
	jan := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, loc)
	jul := time.Date(t.Year(), time.July, 1, 0, 0, 0, 0, loc)
	janName, janOff := jan.Zone()
	julName, julOff := jul.Zone()
	if julOff < janOff {
		return julName, -julOff
	}
	return janName, -janOff
}

func render(t time.Time, tmpl, tzName, offset string) string {
	var b strings.Builder
	for tmpl != "" {
		i := strings.IndexByte(tmpl, '{')
		if i < 0 {
			b.WriteString(t.Format(tmpl))
			break
		}
		if i > 0 {
			b.WriteString(t.Format(tmpl[:i]))
		}
		rest := tmpl[i:]
		switch {
		case strings.HasPrefix(rest, slotTZName):
			b.WriteString(tzName)
			tmpl = rest[len(slotTZName):]
		case strings.HasPrefix(rest, slotTZOffset):
			b.WriteString(offset)
			tmpl = rest[len(slotTZOffset):]
		default:
			b.WriteByte('{')
			tmpl = rest[1:]
		}
	}
	return b.String()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// zfill pads s with zeros to width, keeping a leading sign in front.
func zfill(s string, width int) string {
	if len(s) >= width {
		return s
	}
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	return sign + strings.Repeat("0", width-len(sign)-len(s)) + s
}
