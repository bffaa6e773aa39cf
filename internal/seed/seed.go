package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/printpower/storefront/internal/catalog/domain"
	causedomain "github.com/printpower/storefront/internal/cause/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type seedCause struct {
	name        string
	description string
	tags        []string
}

type seedProduct struct {
	name           string
	description    string
	category       string
	price          string
	donationAmount string
	imageURL       string
	sizes          []string
}

var defaultCauses = []seedCause{
	{"education", "School supplies, scholarships, and learning programs.", []string{"schools", "literacy"}},
	{"healthcare", "Community clinics and preventive care access.", []string{"clinics", "wellness"}},
	{"environment", "Reforestation and clean waterway projects.", []string{"climate", "conservation"}},
	{"community", "Local shelters, food banks, and mutual aid.", []string{"shelter", "food"}},
}

var defaultProducts = []seedProduct{
	{"Custom Print T-Shirt", "Premium quality cotton t-shirt with custom print options", "Apparel", "29.99", "5.00", "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=400&h=400&fit=crop", []string{"XS", "S", "M", "L", "XL", "XXL"}},
	{"Branded Mug Set", "Set of 2 ceramic mugs with your custom design", "Drinkware", "24.99", "3.00", "https://images.unsplash.com/photo-1514228742587-6b1558fcca3d?w=400&h=400&fit=crop", []string{"Standard"}},
	{"Eco Tote Bag", "Sustainable canvas tote bag perfect for daily use", "Accessories", "19.99", "4.00", "https://images.unsplash.com/photo-1590874103328-eac38a683ce7?w=400&h=400&fit=crop", []string{"One Size"}},
	{"Custom Notebook", "A5 hardcover notebook with personalized cover design", "Stationery", "15.99", "2.00", "https://images.unsplash.com/photo-1517842645767-c639042777db?w=400&h=400&fit=crop", []string{"A5"}},
	{"Water Bottle", "Insulated stainless steel water bottle", "Drinkware", "22.99", "3.00", "https://images.unsplash.com/photo-1602143407151-7111542de6e8?w=400&h=400&fit=crop", []string{"750ml"}},
	{"Phone Case", "Durable custom-printed phone case", "Accessories", "18.99", "2.00", "https://images.unsplash.com/photo-1601784551446-20c9e07cdbdb?w=400&h=400&fit=crop", []string{"iPhone", "Samsung", "Google Pixel"}},
}

// EnsureDefaults seeds the starter causes and catalog so a fresh
// install has a working storefront. Existing rows are left alone.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCauses(ctx, tx, node); err != nil {
			return err
		}
		return ensureProducts(ctx, tx, node)
	})
}

func ensureCauses(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	now := time.Now().UTC()
	for _, c := range defaultCauses {
		var existing causedomain.Cause
		err := tx.WithContext(ctx).
			Where("name = ?", c.name).
			Limit(1).
			Find(&existing).Error
		if err != nil {
			return err
		}
		if existing.ID != 0 {
			continue
		}

		cause := causedomain.Cause{
			ID:          node.Generate(),
			Name:        c.name,
			Description: c.description,
			Tags:        datatypes.NewJSONSlice(c.tags),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.WithContext(ctx).Create(&cause).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureProducts(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&catalogdomain.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, p := range defaultProducts {
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return err
		}
		donation, err := decimal.NewFromString(p.donationAmount)
		if err != nil {
			return err
		}

		product := catalogdomain.Product{
			ID:             node.Generate(),
			Name:           p.name,
			Description:    p.description,
			Category:       p.category,
			Price:          price,
			DonationAmount: donation,
			ImageURL:       p.imageURL,
			Sizes:          datatypes.NewJSONSlice(p.sizes),
			Active:         true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.WithContext(ctx).Create(&product).Error; err != nil {
			return err
		}
	}
	return nil
}
