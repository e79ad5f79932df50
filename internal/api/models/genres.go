package models

type Genre struct {
	ID uint `json:"id" gorm:"primaryKey;autoIncrement"`
	Taxon
}

func (Genre) TableName() string {
	return "genres"
}

type Category struct {
	ID uint `json:"id" gorm:"primaryKey;autoIncrement"`
	Taxon
}

func (Category) TableName() string {
	return "categories"
}
