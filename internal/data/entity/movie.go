package entity

// Movie is a catalog read model. The core only needs the title (for conflict
// messages) and the duration (to derive screening intervals).
type Movie struct {
	Base
	Title             string `db:"title"`
	DurationInMinutes int    `db:"duration_in_minutes"`
}
