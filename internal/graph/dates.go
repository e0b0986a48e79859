package graph

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// dateParser resolves natural-language or partial claim dates as a fallback
// once strict ISO-8601 parsing fails. Built once; `when` parsers are safe for
// concurrent use after Add-ing their rule sets.
var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseClaimDate normalizes a caller-supplied claim date to UTC RFC3339.
// It tries strict ISO-8601 first (naive timestamps are treated as UTC, per
// I10), then a natural-language fallback. Unlike the source implementation,
// which silently substitutes the current time on any parse failure, this
// rejects unparsable input with a *ValueError* so ingestion bugs surface
// instead of being swallowed.
func parseClaimDate(raw string) (string, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}

	result, err := dateParser.Parse(raw, time.Now().UTC())
	if err == nil && result != nil {
		return result.Time.UTC().Format(time.RFC3339), nil
	}

	return "", &ValueError{Message: fmt.Sprintf("unparsable claim_date %q", raw)}
}
