package main

import (
	"log/slog"

	"github.com/aquilax/campusmap/campus"
	"github.com/aquilax/campusmap/database"
)

// seedSpaces fills an empty space table with the default campus spaces.
func seedSpaces(db database.Database, logger *slog.Logger) error {
	spaces, err := db.GetSpaces()
	if err != nil {
		return err
	}
	if len(spaces) > 0 {
		return nil
	}
	for _, s := range campus.DefaultSpaces() {
		s := s.Clone()
		if _, err := db.AddSpace(&s); err != nil {
			return err
		}
	}
	logger.Info("seeded default spaces", "count", len(campus.DefaultSpaces()))
	return nil
}
