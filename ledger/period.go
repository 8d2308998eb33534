package ledger

import "time"

// =============================================================================
// PERIOD - Calendar month a ledger belongs to
// =============================================================================

// PeriodKey identifies the ledger of one calendar month, e.g. "October 2026".
// A ledger belongs to exactly one period; a new month starts a fresh ledger.
type PeriodKey string

// PeriodLayout formats a time as a period key.
const PeriodLayout = "January 2006"

// PeriodFor returns the period key of the month containing t.
func PeriodFor(t time.Time) PeriodKey {
	return PeriodKey(t.Format(PeriodLayout))
}

// ParsePeriod validates a period key such as "March 2025".
func ParsePeriod(s string) (PeriodKey, error) {
	t, err := time.Parse(PeriodLayout, s)
	if err != nil {
		return "", err
	}
	return PeriodFor(t), nil
}

// StorageKey returns the key the period's record is stored under.
func (k PeriodKey) StorageKey() string {
	return "points-" + string(k)
}

func (k PeriodKey) String() string {
	return string(k)
}
