package ledger

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// =============================================================================
// CSV EXPORT
// =============================================================================

// ContentTypeCSV is the MIME type of an export.
const ContentTypeCSV = "text/csv"

// csvHeader is the first row of every export.
var csvHeader = []string{"Date", "Description", "Points", "Total"}

// Export is a rendered report ready to hand to a client.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportFilename returns the download name for a period's report.
func ExportFilename(key PeriodKey) string {
	return "points-" + string(key) + ".csv"
}

// RenderCSV renders entries as a report with a running total.
//
// The total starts at BasePoints and accumulates each delta in ledger
// order. It is computed from the entries alone, not from the live balance.
// Fields containing a comma, quote or newline are quoted.
func RenderCSV(entries []Entry) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}

	total := BasePoints
	for _, e := range entries {
		total += e.Delta
		row := []string{
			e.Date,
			e.Description,
			strconv.Itoa(e.Delta),
			strconv.Itoa(total),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// NewExport renders the entries of a period as a downloadable report.
func NewExport(key PeriodKey, entries []Entry) (Export, error) {
	body, err := RenderCSV(entries)
	if err != nil {
		return Export{}, err
	}
	return Export{
		Filename:    ExportFilename(key),
		ContentType: ContentTypeCSV,
		Body:        []byte(body),
	}, nil
}
