package models

import "gorm.io/gorm"

// DefaultCategories are the global categories (user_id NULL) every user sees.
var DefaultCategories = []string{
	"Food",
	"Transport",
	"Entertainment",
	"Utilites",
	"Eucation",
	"Household",
	"Electronics",
	"Family",
	"Personal Care",
	"Other",
}

// MissingDefaults returns the default categories absent from existing.
func MissingDefaults(existing []string) []Category {
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}
	var missing []Category
	for _, n := range DefaultCategories {
		if !have[n] {
			missing = append(missing, Category{Name: n})
		}
	}
	return missing
}

// SeedGlobalCategories inserts the missing global defaults and reports how many were added.
func SeedGlobalCategories(db *gorm.DB) (int, error) {
	var existing []string
	if err := db.Model(&Category{}).Where("user_id IS NULL").Pluck("name", &existing).Error; err != nil {
		return 0, err
	}
	missing := MissingDefaults(existing)
	if len(missing) == 0 {
		return 0, nil
	}
	if err := db.Create(&missing).Error; err != nil {
		return 0, err
	}
	return len(missing), nil
}
