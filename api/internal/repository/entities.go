package repository

import (
	"github.com/Astemirdum/bookshelf/api/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	booksTableName = `books`
	usersTableName = `users`
)

type (
	Books = Repository[model.Book, model.Book, model.BookCreate, model.BookUpdate]
	Users = Repository[model.UserRow, model.User, model.UserCreate, model.UserUpdate]
)

func NewBooks(db *pgxpool.Pool, log *zap.Logger) *Books {
	return New[model.Book, model.Book, model.BookCreate, model.BookUpdate](
		db, log, booksTableName,
		[]string{"id", "title", "author", "pages", "rating", "price"},
		model.BookFilters,
		func(b model.Book) model.Book { return b },
	)
}

func NewUsers(db *pgxpool.Pool, log *zap.Logger) *Users {
	return New[model.UserRow, model.User, model.UserCreate, model.UserUpdate](
		db, log, usersTableName,
		[]string{"id", "username", "email", "password", "role"},
		model.UserFilters,
		model.UserRow.User,
	)
}
