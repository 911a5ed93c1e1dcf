package service

import (
	"github.com/Astemirdum/bookshelf/api/internal/events"
	"github.com/Astemirdum/bookshelf/api/internal/model"
	"go.uber.org/zap"
)

type BookRepository = Repository[model.Book, model.BookCreate, model.BookUpdate]

type Books struct {
	resource[model.Book, model.BookCreate, model.BookUpdate]
}

func NewBooks(repo BookRepository, pub events.Publisher, log *zap.Logger) *Books {
	return &Books{
		resource: newResource[model.Book, model.BookCreate, model.BookUpdate](
			"book", repo, pub, log,
			func(b model.Book) int64 { return b.ID },
		),
	}
}
