package models

// TitleGenre is the join row between a title and one of its genres; the
// composite primary key keeps each pair unique.
type TitleGenre struct {
	TitleID int64 `json:"title_id" gorm:"primaryKey"`
	GenreID int64 `json:"genre_id" gorm:"primaryKey;index"`
}

func (TitleGenre) TableName() string {
	return "genre_titles"
}
