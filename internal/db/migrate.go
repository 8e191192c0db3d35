package db

import (
	"github.com/arhambuilds/storefront-backend/internal/app/model"
	"github.com/arhambuilds/storefront-backend/internal/catalog"
	"github.com/arhambuilds/storefront-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	if err := DB.AutoMigrate(&model.Product{}); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// Seed loads the compiled-in catalog into the products table. Existing rows
// are updated in place so a redeploy refreshes the catalog; the table is
// read-only for the rest of the process lifetime.
func Seed() error {
	return SeedCatalog(catalog.Products())
}

func SeedCatalog(products []model.Product) error {
	logger.Info("Seeding catalog...", map[string]interface{}{
		"products": len(products),
	})

	for i := range products {
		if err := DB.Save(&products[i]).Error; err != nil {
			logger.Error("Failed to seed product", err, map[string]interface{}{
				"product_id": products[i].ID,
				"slug":       products[i].Slug,
			})
			return err
		}
	}

	logger.Info("Catalog seeded successfully")
	return nil
}
