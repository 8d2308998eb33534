package rewards

import "strconv"

// =============================================================================
// GRADE EVALUATION
// =============================================================================

// Grade flags appended to the entry description.
const (
	FlagBelowMinimum = "Below minimum"
	FlagMetTarget    = "Met target"
)

// Evaluation is the entry a grade produces.
type Evaluation struct {
	Delta       int
	Description string
}

// Evaluator scores grades against a catalog's thresholds.
type Evaluator struct {
	catalog Catalog
}

// NewEvaluator creates an evaluator over the catalog's subjects.
func NewEvaluator(c Catalog) *Evaluator {
	return &Evaluator{catalog: c}
}

// Evaluate maps a subject grade to a point delta.
//
// The checks run in order: grade < min costs BelowMinimumPoints, otherwise
// grade >= target earns MetTargetPoints, otherwise the delta is 0. A grade
// equal to min is never penalized; a grade equal to target always earns
// the bonus.
func (e *Evaluator) Evaluate(subject string, grade float64) (Evaluation, error) {
	t, ok := e.catalog.Threshold(subject)
	if !ok {
		return Evaluation{}, &UnknownSubjectError{Subject: subject}
	}

	desc := subject + " grade: " + strconv.FormatFloat(grade, 'f', -1, 64)
	switch {
	case grade < float64(t.Min):
		return Evaluation{Delta: BelowMinimumPoints, Description: desc + " (" + FlagBelowMinimum + ")"}, nil
	case grade >= float64(t.Target):
		return Evaluation{Delta: MetTargetPoints, Description: desc + " (" + FlagMetTarget + ")"}, nil
	default:
		return Evaluation{Delta: 0, Description: desc}, nil
	}
}

// Catalog returns the catalog the evaluator reads.
func (e *Evaluator) Catalog() Catalog {
	return e.catalog
}
