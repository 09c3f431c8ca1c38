package challengeservice

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ReleaseTimeParser turns admin input such as "tomorrow at 9am" or an RFC3339
// timestamp into a UTC release time.
type ReleaseTimeParser struct {
	TimezoneMap map[string]string
	parser      *when.Parser
}

// NewReleaseTimeParser creates a parser with the US timezone abbreviations.
func NewReleaseTimeParser() *ReleaseTimeParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &ReleaseTimeParser{
		TimezoneMap: map[string]string{
			"UTC": "UTC",
			"PST": "America/Los_Angeles",
			"PDT": "America/Los_Angeles",
			"MST": "America/Denver",
			"MDT": "America/Denver",
			"CST": "America/Chicago",
			"CDT": "America/Chicago",
			"EST": "America/New_York",
			"EDT": "America/New_York",
		},
		parser: w,
	}
}

// Location resolves an abbreviation or IANA name; empty means UTC.
func (p *ReleaseTimeParser) Location(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	name, ok := p.TimezoneMap[strings.ToUpper(tz)]
	if !ok {
		name = tz
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrReleaseTime, tz)
	}
	return loc, nil
}

// Parse returns the release time for input relative to now. The result must
// be strictly after now.
func (p *ReleaseTimeParser) Parse(input, tz string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrReleaseTime)
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return p.future(t.UTC(), now)
	}

	loc, err := p.Location(tz)
	if err != nil {
		return time.Time{}, err
	}

	normalized := strings.ToLower(input)
	normalized = strings.ReplaceAll(normalized, "today ", "today at ")

	r, err := p.parser.Parse(normalized, now.In(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrReleaseTime, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: could not recognize %q", ErrReleaseTime, input)
	}
	return p.future(r.Time.In(time.UTC).Truncate(time.Minute), now)
}

func (p *ReleaseTimeParser) future(t, now time.Time) (time.Time, error) {
	if !t.After(now) {
		return time.Time{}, fmt.Errorf("%w: %s is not in the future", ErrReleaseTime, t.Format(time.RFC3339))
	}
	return t, nil
}
