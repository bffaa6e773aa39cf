package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/printpower/storefront/internal/catalog/domain"
	"github.com/printpower/storefront/internal/catalog/repository"
	"github.com/printpower/storefront/internal/migration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupCatalog(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.Run(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:   db,
		Log:  zaptest.NewLogger(t),
		Repo: repository.Provide(),
	})
	return svc, db, node
}

func seedProduct(t *testing.T, db *gorm.DB, node *snowflake.Node, name, category string, active bool) *domain.Product {
	t.Helper()
	product := &domain.Product{
		ID:             node.Generate(),
		Name:           name,
		Category:       category,
		Price:          decimal.RequireFromString("19.99"),
		DonationAmount: decimal.RequireFromString("2.00"),
		Active:         active,
	}
	require.NoError(t, db.Create(product).Error)
	if !active {
		// GORM drops a zero-valued Active on insert because the column
		// has default:true, so inactive rows need an explicit update.
		require.NoError(t, db.Model(product).UpdateColumn("active", false).Error)
	}
	return product
}

func TestListReturnsOnlyActiveProducts(t *testing.T) {
	svc, db, node := setupCatalog(t)
	seedProduct(t, db, node, "Tote Bag", "accessories", true)
	seedProduct(t, db, node, "Notebook", "stationery", true)
	seedProduct(t, db, node, "Retired Mug", "drinkware", false)

	resp, err := svc.List(context.Background(), domain.ListProductRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Products, 2)
	assert.Equal(t, "Notebook", resp.Products[0].Name)
	assert.Equal(t, "Tote Bag", resp.Products[1].Name)
}

func TestListFiltersByCategory(t *testing.T) {
	svc, db, node := setupCatalog(t)
	seedProduct(t, db, node, "Tote Bag", "accessories", true)
	seedProduct(t, db, node, "Notebook", "stationery", true)

	resp, err := svc.List(context.Background(), domain.ListProductRequest{Category: "stationery"})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Notebook", resp.Products[0].Name)
}

func TestGetProduct(t *testing.T) {
	svc, db, node := setupCatalog(t)
	active := seedProduct(t, db, node, "Tote Bag", "accessories", true)
	retired := seedProduct(t, db, node, "Retired Mug", "drinkware", false)

	got, err := svc.Get(context.Background(), domain.GetProductRequest{ID: active.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "Tote Bag", got.Name)
	assert.Equal(t, "19.99", got.Price.StringFixed(2))

	_, err = svc.Get(context.Background(), domain.GetProductRequest{ID: retired.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), domain.GetProductRequest{ID: node.Generate().String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), domain.GetProductRequest{ID: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
