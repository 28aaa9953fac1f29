package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateUser  = errors.New("user already exists")
	ErrDuplicateSweet = errors.New("sweet with this name already exists")
	ErrOutOfStock     = errors.New("sweet is out of stock")
)

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}
