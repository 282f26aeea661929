// models/book.go
package models

import "time"

const BookTable = "lib_books"
const CategoryTable = "lib_categories"

type Category struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Book struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	ISBN       string    `gorm:"column:isbn;size:13;uniqueIndex;not null" json:"isbn"`
	Title      string    `gorm:"size:200;index;not null" json:"title"`
	Author     string    `gorm:"size:100;index;not null" json:"author"`
	CategoryID *string   `gorm:"type:uuid;index" json:"categoryId,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	// 馆藏数与在馆数：0 <= available <= total
	TotalCopies     int `gorm:"not null;default:1" json:"totalCopies"`
	AvailableCopies int `gorm:"not null;default:1" json:"availableCopies"`

	PublicationYear *int   `json:"publicationYear,omitempty"`
	Description     string `gorm:"type:text" json:"description,omitempty"`

	IsActive  bool      `gorm:"not null;default:true;index" json:"isActive"` // soft delete
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Category) TableName() string { return CategoryTable }
func (Book) TableName() string     { return BookTable }
