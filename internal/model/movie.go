package model

type Movie struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	ReleaseDate Date   `db:"release_date" json:"release_date"`
	Image       string `db:"image" json:"image"` // Filename in the uploads store
}

// MovieChanges holds the columns an update touches. Nil fields keep their stored value.
type MovieChanges struct {
	Name        *string
	ReleaseDate *Date
	Image       *string
}
