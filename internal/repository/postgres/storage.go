package postgres

import (
	"github.com/nkiryanov/contactbook/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) *Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{DB: s.db}
}

func (s *Storage) Contact() repository.ContactRepo {
	return &ContactRepo{DB: s.db}
}
