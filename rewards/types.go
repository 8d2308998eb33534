/*
Package rewards provides the point catalogs and grading rules of the
incentive program.

PURPOSE:
  Static reference data and the rules that turn an event into a point
  delta. Nothing here holds state; the ledger package records the results.

CATALOGS:
  Deductions: negative point events (late, absence, disruption, ...)
  Bonuses:    positive point events (grade at target, positive feedback)
  Subjects:   per-subject grade thresholds {min, target}

ENTRY TYPES:
  deduction: pick a catalog deduction
  bonus:     pick a catalog bonus
  grade:     evaluate a subject grade against its thresholds
  custom:    free description and point value

EXAMPLE:
  cat := rewards.DefaultCatalog()
  eval := rewards.NewEvaluator(cat)

  res, err := eval.Evaluate("Math", 54)
  // res.Delta == -4, res.Description == "Math grade: 54 (Below minimum)"

SEE ALSO:
  - catalog.go: The default tables
  - grade.go: Grade evaluation
  - factory/catalog.go: Loading catalogs from files
*/
package rewards

import "fmt"

// =============================================================================
// ENTRY TYPES
// =============================================================================

// EntryType is how a collaborator builds a new entry.
type EntryType string

const (
	EntryDeduction EntryType = "deduction"
	EntryBonus     EntryType = "bonus"
	EntryGrade     EntryType = "grade"
	EntryCustom    EntryType = "custom"
)

// EntryTypes lists the entry types in display order.
var EntryTypes = []EntryType{EntryDeduction, EntryBonus, EntryGrade, EntryCustom}

// =============================================================================
// CATALOG ITEMS
// =============================================================================

// Category fixes the sign of an item's points.
type Category string

const (
	CategoryDeduction Category = "deduction"
	CategoryBonus     Category = "bonus"
)

// Item is a labelled point value from a catalog.
type Item struct {
	Label    string   `json:"label" yaml:"label" toml:"label"`
	Points   int      `json:"points" yaml:"points" toml:"points"`
	Category Category `json:"-" yaml:"-" toml:"-"`
}

// Validate checks the sign of the points matches the category.
func (i Item) Validate() error {
	if i.Label == "" {
		return fmt.Errorf("%w: item has no label", ErrInvalidCatalog)
	}
	switch i.Category {
	case CategoryDeduction:
		if i.Points >= 0 {
			return fmt.Errorf("%w: deduction %q must be negative, got %d", ErrInvalidCatalog, i.Label, i.Points)
		}
	case CategoryBonus:
		if i.Points <= 0 {
			return fmt.Errorf("%w: bonus %q must be positive, got %d", ErrInvalidCatalog, i.Label, i.Points)
		}
	default:
		return fmt.Errorf("%w: item %q has unknown category %q", ErrInvalidCatalog, i.Label, i.Category)
	}
	return nil
}

// =============================================================================
// GRADE THRESHOLDS
// =============================================================================

// Threshold is the grade expectation of one subject.
type Threshold struct {
	Subject string `json:"subject" yaml:"subject" toml:"subject"`
	Min     int    `json:"min" yaml:"min" toml:"min"`
	Target  int    `json:"target" yaml:"target" toml:"target"`
}

// Validate checks min <= target.
func (t Threshold) Validate() error {
	if t.Subject == "" {
		return fmt.Errorf("%w: threshold has no subject", ErrInvalidCatalog)
	}
	if t.Min > t.Target {
		return fmt.Errorf("%w: %s min %d is above target %d", ErrInvalidCatalog, t.Subject, t.Min, t.Target)
	}
	return nil
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog bundles the reference tables. Slices keep display order.
type Catalog struct {
	Subjects   []Threshold
	Deductions []Item
	Bonuses    []Item
}

// Threshold returns the expectation for a subject.
func (c Catalog) Threshold(subject string) (Threshold, bool) {
	for _, t := range c.Subjects {
		if t.Subject == subject {
			return t, true
		}
	}
	return Threshold{}, false
}

// Item finds a deduction or bonus by label.
func (c Catalog) Item(category Category, label string) (Item, error) {
	var items []Item
	switch category {
	case CategoryDeduction:
		items = c.Deductions
	case CategoryBonus:
		items = c.Bonuses
	}
	for _, it := range items {
		if it.Label == label {
			return it, nil
		}
	}
	return Item{}, &UnknownItemError{Category: category, Label: label}
}

// Items returns deductions followed by bonuses, the point-values view.
func (c Catalog) Items() []Item {
	out := make([]Item, 0, len(c.Deductions)+len(c.Bonuses))
	out = append(out, c.Deductions...)
	return append(out, c.Bonuses...)
}

// Validate checks every table entry and rejects duplicates.
func (c Catalog) Validate() error {
	seen := make(map[string]bool)
	for _, t := range c.Subjects {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen["s:"+t.Subject] {
			return fmt.Errorf("%w: duplicate subject %q", ErrInvalidCatalog, t.Subject)
		}
		seen["s:"+t.Subject] = true
	}
	for _, it := range c.Items() {
		if err := it.Validate(); err != nil {
			return err
		}
		k := string(it.Category) + ":" + it.Label
		if seen[k] {
			return fmt.Errorf("%w: duplicate %s %q", ErrInvalidCatalog, it.Category, it.Label)
		}
		seen[k] = true
	}
	return nil
}
