/*
catalog.go - Default reference tables

PURPOSE:
  The tables the program ships with. Points and thresholds are fixed at
  startup; they can be replaced from a file (see factory/) but never edited
  while running.

TABLES:
  Subjects (min-target):
    Math 55-65, English 75-85, Israeli Culture 65-80, Activity Class 75-85,
    Mishnah 65-75, Literature 60-70, Hebrew Language 75-85, Science 70-80,
    Torah 65-75, History 75-85

  Deductions: Late -2, Absence -3, Disruption -3, Homework not done -3,
              Below minimum grade -4, Negative teacher call -5

  Bonuses:    Grade at/above target +5, Positive feedback +5
*/
package rewards

// Grade rule point values.
const (
	BelowMinimumPoints = -4
	MetTargetPoints    = 5
)

// DefaultCatalog returns the built-in tables in display order.
func DefaultCatalog() Catalog {
	return Catalog{
		Subjects: []Threshold{
			{Subject: "Math", Min: 55, Target: 65},
			{Subject: "English", Min: 75, Target: 85},
			{Subject: "Israeli Culture", Min: 65, Target: 80},
			{Subject: "Activity Class", Min: 75, Target: 85},
			{Subject: "Mishnah", Min: 65, Target: 75},
			{Subject: "Literature", Min: 60, Target: 70},
			{Subject: "Hebrew Language", Min: 75, Target: 85},
			{Subject: "Science", Min: 70, Target: 80},
			{Subject: "Torah", Min: 65, Target: 75},
			{Subject: "History", Min: 75, Target: 85},
		},
		Deductions: []Item{
			deduction("Late", -2),
			deduction("Absence", -3),
			deduction("Disruption", -3),
			deduction("Homework not done", -3),
			deduction("Below minimum grade", BelowMinimumPoints),
			deduction("Negative teacher call", -5),
		},
		Bonuses: []Item{
			bonus("Grade at/above target", MetTargetPoints),
			bonus("Positive feedback", 5),
		},
	}
}

func deduction(label string, points int) Item {
	return Item{Label: label, Points: points, Category: CategoryDeduction}
}

func bonus(label string, points int) Item {
	return Item{Label: label, Points: points, Category: CategoryBonus}
}
