package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timestampPattern accepts SubRip (HH:MM:SS,mmm) and WebVTT (HH:MM:SS.mmm,
// MM:SS.mmm) timestamps.
var timestampPattern = regexp.MustCompile(`^(?:(\d+):)?(\d{1,2}):(\d{1,2})(?:([,.])(\d{1,3}))?$`)

const arrow = "-->"

// TimeRange is a parsed time range line.
type TimeRange struct {
	Start    time.Duration
	End      time.Duration
	Sep      byte   // fractional separator used by the source, ',' or '.'
	Settings string // trailing cue settings (WebVTT position, align, ...)
}

// ParseTimestamp parses a single timestamp into a duration.
func ParseTimestamp(s string) (time.Duration, byte, error) {
	m := timestampPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrTimestamp, s)
	}

	var hours, minutes, seconds, millis int
	if m[1] != "" {
		hours, _ = strconv.Atoi(m[1])
	}
	minutes, _ = strconv.Atoi(m[2])
	seconds, _ = strconv.Atoi(m[3])
	if minutes > 59 || seconds > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrTimestamp, s)
	}

	sep := byte(',')
	if m[4] != "" {
		sep = m[4][0]
		// "5" means 500ms, "05" means 50ms
		frac := m[5] + strings.Repeat("0", 3-len(m[5]))
		millis, _ = strconv.Atoi(frac)
	}

	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
	return d, sep, nil
}

// FormatTimestamp renders d as HH:MM:SS<sep>mmm. Negative durations clamp to zero.
func FormatTimestamp(d time.Duration, sep byte) string {
	if d < 0 {
		d = 0
	}
	if sep == 0 {
		sep = ','
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d%c%03d",
		ms/3_600_000, (ms/60_000)%60, (ms/1000)%60, sep, ms%1000)
}

// ParseTimeRange parses "start --> end [settings]".
func ParseTimeRange(line string) (TimeRange, error) {
	left, right, ok := strings.Cut(line, arrow)
	if !ok {
		return TimeRange{}, fmt.Errorf("%w: missing %q in %q", ErrTimestamp, arrow, line)
	}

	start, sep, err := ParseTimestamp(left)
	if err != nil {
		return TimeRange{}, err
	}

	fields := strings.Fields(right)
	if len(fields) == 0 {
		return TimeRange{}, fmt.Errorf("%w: missing end in %q", ErrTimestamp, line)
	}
	end, _, err := ParseTimestamp(fields[0])
	if err != nil {
		return TimeRange{}, err
	}

	return TimeRange{
		Start:    start,
		End:      end,
		Sep:      sep,
		Settings: strings.Join(fields[1:], " "),
	}, nil
}

// String renders the range with the separator it was parsed with.
func (tr TimeRange) String() string {
	s := FormatTimestamp(tr.Start, tr.Sep) + " " + arrow + " " + FormatTimestamp(tr.End, tr.Sep)
	if tr.Settings != "" {
		s += " " + tr.Settings
	}
	return s
}

// IsTimeRange reports whether line looks like a time range line.
func IsTimeRange(line string) bool {
	_, err := ParseTimeRange(line)
	return err == nil
}
