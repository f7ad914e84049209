package models

// Plan is a membership pricing tier.
type Plan struct {
	ID             string  `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	Price          float64 `db:"price" json:"price"`
	Description    string  `db:"description" json:"description"`
	ClassesPerWeek int     `db:"classes_per_week" json:"classes_per_week"`
}
