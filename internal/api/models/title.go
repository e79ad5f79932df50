package models

import "gorm.io/gorm"

type Title struct {
	ID          uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"size:256;not null"`
	Year        int    `json:"year" gorm:"not null;index"`
	Description string `json:"description" gorm:"type:text;not null;default:''"`
	CategoryID  *uint  `json:"-" gorm:"index"`

	// associations
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genre,omitempty" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}

// explicit join model so cascades can address it directly
type TitleGenre struct {
	TitleID uint `gorm:"primaryKey"`
	GenreID uint `gorm:"primaryKey"`
}

func (TitleGenre) TableName() string {
	return "title_genres"
}

// SetupJoinTables registers TitleGenre as the join model of Title.Genres.
// Must run before migrating or querying titles.
func SetupJoinTables(db *gorm.DB) error {
	return db.SetupJoinTable(&Title{}, "Genres", &TitleGenre{})
}
