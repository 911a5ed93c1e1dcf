package model

import "github.com/Astemirdum/bookshelf/api/internal/filter"

type Book struct {
	ID     int64   `json:"id" db:"id"`
	Title  string  `json:"title" db:"title"`
	Author string  `json:"author" db:"author"`
	Pages  int     `json:"pages" db:"pages"`
	Rating float64 `json:"rating" db:"rating"`
	Price  float64 `json:"price" db:"price"`
}

var BookFilters = filter.Set{
	filter.Int("id", "gt=0"),
	filter.String("title", "min=1,max=100").Like("max=100"),
	filter.String("author", "min=1,max=100").Like("max=100"),
	filter.Int("pages", "gt=0").Range("gt=0"),
	filter.Float("rating", "gte=0,lte=5").Range("gt=0,lte=5"),
	filter.Float("price", "gte=0").Range("gt=0"),
}

// BookCreate requires every field; ID is optional and otherwise generated.
type BookCreate struct {
	ID     *int64   `json:"id" validate:"omitempty,gt=0"`
	Title  string   `json:"title" validate:"required,min=1,max=100"`
	Author string   `json:"author" validate:"required,min=1,max=100"`
	Pages  *int     `json:"pages" validate:"required,gt=0"`
	Rating *float64 `json:"rating" validate:"required,gt=0,lte=5"`
	Price  *float64 `json:"price" validate:"required,gte=0"`
}

func (b BookCreate) InsertMap() map[string]any {
	m := map[string]any{
		"title":  b.Title,
		"author": b.Author,
		"pages":  *b.Pages,
		"rating": *b.Rating,
		"price":  *b.Price,
	}
	if b.ID != nil {
		m["id"] = *b.ID
	}
	return m
}

// BookUpdate carries only the fields to change; nil means untouched.
type BookUpdate struct {
	Title  *string  `json:"title" validate:"omitempty,min=1,max=100"`
	Author *string  `json:"author" validate:"omitempty,min=1,max=100"`
	Pages  *int     `json:"pages" validate:"omitempty,gt=0"`
	Rating *float64 `json:"rating" validate:"omitempty,gt=0,lte=5"`
	Price  *float64 `json:"price" validate:"omitempty,gte=0"`
}

func (b BookUpdate) SetMap() map[string]any {
	m := make(map[string]any, 5)
	if b.Title != nil {
		m["title"] = *b.Title
	}
	if b.Author != nil {
		m["author"] = *b.Author
	}
	if b.Pages != nil {
		m["pages"] = *b.Pages
	}
	if b.Rating != nil {
		m["rating"] = *b.Rating
	}
	if b.Price != nil {
		m["price"] = *b.Price
	}
	return m
}
