/*
record.go - Wire format of a persisted period

FORMAT:
  {
    "points": 103,
    "history": [
      {"description": "Late", "points": -2, "date": "3/4/2025", "isPositive": false},
      {"description": "Positive feedback", "points": 5, "date": "3/5/2025", "isPositive": true}
    ]
  }

  isPositive is written for readers of the raw record. It is ignored when
  decoding: the value is always derived from points.

DECODING:
  Anything that is not valid JSON of this shape is ErrMalformedRecord.
  A record whose "points" disagrees with its history is repaired by
  recomputing the balance from the history.
*/
package ledger

import (
	"encoding/json"
	"fmt"
)

// Record is the persisted form of a State.
type Record struct {
	Points  *int          `json:"points"`
	History []RecordEntry `json:"history"`
}

// RecordEntry is the persisted form of an Entry.
type RecordEntry struct {
	Description string `json:"description"`
	Points      int    `json:"points"`
	Date        string `json:"date"`
	IsPositive  bool   `json:"isPositive"`
}

// EncodeRecord serializes a state to its persisted JSON form.
func EncodeRecord(s State) ([]byte, error) {
	balance := s.Balance
	rec := Record{Points: &balance, History: make([]RecordEntry, 0, len(s.Entries))}
	for _, e := range s.Entries {
		rec.History = append(rec.History, RecordEntry{
			Description: e.Description,
			Points:      e.Delta,
			Date:        e.Date,
			IsPositive:  e.IsPositive(),
		})
	}
	return json.Marshal(rec)
}

// DecodeRecord parses a persisted record.
//
// The returned bool is false when the stored balance had drifted from the
// history and was recomputed.
func DecodeRecord(data []byte) (State, bool, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return State{}, false, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if rec.Points == nil {
		return State{}, false, fmt.Errorf("%w: missing points", ErrMalformedRecord)
	}

	s := State{Balance: *rec.Points, Entries: make([]Entry, 0, len(rec.History))}
	for _, re := range rec.History {
		s.Entries = append(s.Entries, Entry{
			Description: re.Description,
			Delta:       re.Points,
			Date:        re.Date,
		})
	}

	if expected := s.ExpectedBalance(); expected != s.Balance {
		s.Balance = expected
		return s, false, nil
	}
	return s, true, nil
}
