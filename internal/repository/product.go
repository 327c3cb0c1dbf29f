package repository

import (
	"context"
	"errors"

	"github.com/novayshop/shopbot/internal/apperrors"
	"github.com/novayshop/shopbot/internal/models"
	"gorm.io/gorm"
)

// Catalog seeded on first run. Zero-price rows are the custom-spend
// placeholder categories.
var defaultProducts = []models.Product{
	{Title: "FICHES (Custom Spend)", PriceEURCents: 0},
	{Title: "CC (Custom Spend)", PriceEURCents: 0},
	{Title: "FORMA ALLO", PriceEURCents: 19900, DeliveryText: "Formation ALLO (contenu à définir)"},
	{Title: "FORMA IPHONE", PriceEURCents: 24900, DeliveryText: "Formation iPhone (contenu à définir)"},
	{Title: "FORMA REFUND", PriceEURCents: 29900, DeliveryText: "Formation Refund (contenu à définir)"},
	{Title: "FORMA LUXE", PriceEURCents: 39900, DeliveryText: "Formation Luxe (contenu à définir)"},
}

func (r *Repository) SeedDefaults(ctx context.Context) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return apperrors.Storage("count products", err)
	}
	if count > 0 {
		return nil
	}

	r.logger.Info("📦 Seeding default catalog...")
	for _, product := range defaultProducts {
		p := product
		if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
			return apperrors.Storage("seed products", err)
		}
	}
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Storage("get product", err)
	}
	return &product, nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Order("id ASC").Find(&products).Error
	if err != nil {
		return nil, apperrors.Storage("list products", err)
	}
	return products, nil
}

// GetOrCreateCustomProduct resolves the zero-price placeholder row for a
// custom-spend category, creating it the first time the category is used.
// The unique index on title makes the create race-safe.
func (r *Repository) GetOrCreateCustomProduct(ctx context.Context, title string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where(models.Product{Title: title}).
		Attrs(models.Product{PriceEURCents: 0}).
		FirstOrCreate(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the create race; the row exists now.
			if ferr := r.db.WithContext(ctx).First(&product, "title = ?", title).Error; ferr == nil {
				return &product, nil
			}
		}
		return nil, apperrors.Storage("get or create custom product", err)
	}
	return &product, nil
}
