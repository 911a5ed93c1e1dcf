package model

const (
	DefaultLimit = 100
	DefaultPage  = 1
	TokenType    = "bearer"
)

type Page struct {
	Limit int `json:"limit" validate:"gt=0"`
	Page  int `json:"page" validate:"gt=0"`
}

type ListResponse[T any] struct {
	Items      []T `json:"items"`
	TotalPages int `json:"total_pages"`
}

type Health struct {
	Status string `json:"status"`
}
