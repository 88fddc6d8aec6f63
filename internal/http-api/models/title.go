package models

type Title struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"size:256;not null"`
	Year        int    `json:"year" gorm:"not null"`
	Description string `json:"description" gorm:"type:text;not null;default:''"`
	CategoryID  int64  `json:"category_id" gorm:"not null;index"`

	// Rating is the mean review score, selected by the repository on every
	// read. It has no column.
	Rating *float64 `json:"rating" gorm:"->;-:migration"`

	// associations
	Category Category `json:"category" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT;"`
	Genres   []Genre  `json:"genre" gorm:"many2many:genre_titles;"`
}

func (Title) TableName() string {
	return "titles"
}
