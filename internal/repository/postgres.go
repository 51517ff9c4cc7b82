package repository

import (
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"studynotes/internal/model"
)

// ErrNotFound is returned when a record is absent or not owned by the
// caller. Ownership mismatches map to the same error so handlers never
// leak record existence.
var ErrNotFound = errors.New("record not found")

// Connect opens the PostgreSQL database and migrates the schema
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Note{},
		&model.Quiz{},
		&model.Question{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
