package repository

import (
	"github.com/arhambuilds/storefront-backend/internal/app/model"
	"github.com/arhambuilds/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Category string
	Search   string
}

// ProductRepository reads the seeded catalog. There is no write path after
// boot; the catalog is immutable for the process lifetime.
type ProductRepository interface {
	FindAll() ([]model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	FindByID(id string) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	Categories() ([]string, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Order("created_at ASC, id ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to fetch products", err)
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	query := r.db.Model(&model.Product{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var products []model.Product
	if err := query.Order("created_at ASC, id ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to fetch products with filter", err, map[string]interface{}{
			"category": filter.Category,
			"search":   filter.Search,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindByID(id string) (*model.Product, error) {
	var product model.Product
	if err := r.db.Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	var product model.Product
	if err := r.db.Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Categories() ([]string, error) {
	var categories []string
	err := r.db.Model(&model.Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		logger.Error("Failed to fetch categories", err)
		return nil, err
	}
	return categories, nil
}
