package service

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/printpower/storefront/internal/catalog/domain"
	catalogrepository "github.com/printpower/storefront/internal/catalog/repository"
	causedomain "github.com/printpower/storefront/internal/cause/domain"
	causerepository "github.com/printpower/storefront/internal/cause/repository"
	"github.com/printpower/storefront/internal/clock"
	"github.com/printpower/storefront/internal/config"
	donationdomain "github.com/printpower/storefront/internal/donation/domain"
	"github.com/printpower/storefront/internal/donation/feed"
	donationrepository "github.com/printpower/storefront/internal/donation/repository"
	donationservice "github.com/printpower/storefront/internal/donation/service"
	"github.com/printpower/storefront/internal/events"
	"github.com/printpower/storefront/internal/migration"
	"github.com/printpower/storefront/internal/order/domain"
	"github.com/printpower/storefront/internal/order/repository"
	"github.com/printpower/storefront/internal/usercontext"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type checkoutFixture struct {
	svc     domain.Service
	db      *gorm.DB
	node    *snowflake.Node
	tshirt  *catalogdomain.Product
	sticker *catalogdomain.Product
}

func setupCheckout(t *testing.T) *checkoutFixture {
	t.Helper()

	// Checkout queries the pool while its transaction holds a connection;
	// a plain ":memory:" DSN gives that second connection an empty database.
	// The database name keeps tests in this package isolated from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.Run(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	fake := clock.NewFakeClock(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))

	donations := donationservice.New(donationservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     fake,
		Repo:      donationrepository.Provide(),
		CauseRepo: causerepository.Provide(),
		Outbox:    events.NewOutbox(node),
		Hub:       feed.NewHub(),
	})

	cfg := &config.Config{}
	cfg.CheckDrop.Threshold = decimal.NewFromInt(777)

	svc := New(Params{
		Config:      cfg,
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       fake,
		Repo:        repository.Provide(),
		CatalogRepo: catalogrepository.Provide(),
		Donations:   donations,
	})

	require.NoError(t, db.Create(&causedomain.Cause{
		ID:          node.Generate(),
		Name:        "education",
		Description: "education programs",
	}).Error)

	tshirt := &catalogdomain.Product{
		ID:             node.Generate(),
		Name:           "Purpose T-Shirt",
		Category:       "apparel",
		Price:          decimal.RequireFromString("29.99"),
		DonationAmount: decimal.RequireFromString("5.00"),
		Sizes:          []string{"S", "M", "L"},
		Active:         true,
	}
	sticker := &catalogdomain.Product{
		ID:             node.Generate(),
		Name:           "Sticker Pack",
		Category:       "accessories",
		Price:          decimal.RequireFromString("4.99"),
		DonationAmount: decimal.RequireFromString("0.00"),
		Active:         true,
	}
	require.NoError(t, db.Create(tshirt).Error)
	require.NoError(t, db.Create(sticker).Error)

	return &checkoutFixture{svc: svc, db: db, node: node, tshirt: tshirt, sticker: sticker}
}

func (f *checkoutFixture) userCtx() context.Context {
	return usercontext.WithUserID(context.Background(), f.node.Generate())
}

func validShipping() domain.ShippingInfo {
	return domain.ShippingInfo{
		Name:       "Alice Smith",
		Line1:      "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}
}

func TestCheckoutPricesFromCatalog(t *testing.T) {
	f := setupCheckout(t)

	resp, err := f.svc.Checkout(f.userCtx(), domain.CheckoutRequest{
		Items: []domain.CheckoutItem{
			{ProductID: f.tshirt.ID.String(), Size: "M", Quantity: 2},
			{ProductID: f.sticker.ID.String(), Quantity: 1},
		},
		PaymentMethod: "credit_card",
		Cause:         "education",
		Shipping:      validShipping(),
	})
	require.NoError(t, err)

	order := resp.Order
	assert.Equal(t, "64.97", order.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", order.TotalDonation.StringFixed(2))
	assert.Equal(t, "74.97", order.Total.StringFixed(2))
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Len(t, order.Items, 2)
	assert.False(t, resp.CheckDropTriggered)

	assert.Regexp(t, regexp.MustCompile(`^ORD-\d+-[A-Z0-9]{9}$`), order.OrderNumber)
}

func TestCheckoutCreatesDonationInSameTransaction(t *testing.T) {
	f := setupCheckout(t)

	resp, err := f.svc.Checkout(f.userCtx(), domain.CheckoutRequest{
		Items:         []domain.CheckoutItem{{ProductID: f.tshirt.ID.String(), Size: "S", Quantity: 1}},
		PaymentMethod: "paypal",
		Cause:         "education",
		Shipping:      validShipping(),
	})
	require.NoError(t, err)

	var donations []donationdomain.Donation
	require.NoError(t, f.db.Find(&donations).Error)
	require.Len(t, donations, 1)

	assert.Equal(t, "5.00", donations[0].Amount.StringFixed(2))
	assert.Equal(t, "education", donations[0].Cause)
	require.NotNil(t, donations[0].OrderID)
	assert.Equal(t, resp.Order.ID, *donations[0].OrderID)

	var outbox []events.StoreEvent
	require.NoError(t, f.db.Find(&outbox).Error)
	require.Len(t, outbox, 1)
	assert.Equal(t, events.EventDonationCreated, outbox[0].EventType)
}

func TestCheckoutWithoutDonationSkipsDonationRow(t *testing.T) {
	f := setupCheckout(t)

	resp, err := f.svc.Checkout(f.userCtx(), domain.CheckoutRequest{
		Items:         []domain.CheckoutItem{{ProductID: f.sticker.ID.String(), Quantity: 3}},
		PaymentMethod: "credit_card",
		Shipping:      validShipping(),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", resp.Order.TotalDonation.StringFixed(2))

	var count int64
	require.NoError(t, f.db.Model(&donationdomain.Donation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCheckoutRequiresCauseWhenDonating(t *testing.T) {
	f := setupCheckout(t)

	_, err := f.svc.Checkout(f.userCtx(), domain.CheckoutRequest{
		Items:         []domain.CheckoutItem{{ProductID: f.tshirt.ID.String(), Size: "M", Quantity: 1}},
		PaymentMethod: "credit_card",
		Shipping:      validShipping(),
	})
	assert.ErrorIs(t, err, domain.ErrCauseRequired)
}

func TestCheckoutFlagsCheckDropThreshold(t *testing.T) {
	f := setupCheckout(t)

	// 156 shirts donate $780, crossing the $777 threshold.
	resp, err := f.svc.Checkout(f.userCtx(), domain.CheckoutRequest{
		Items:         []domain.CheckoutItem{{ProductID: f.tshirt.ID.String(), Size: "L", Quantity: 156}},
		PaymentMethod: "bank_transfer",
		Cause:         "education",
		Shipping:      validShipping(),
	})
	require.NoError(t, err)
	assert.True(t, resp.CheckDropTriggered)
}

func TestCheckoutValidation(t *testing.T) {
	f := setupCheckout(t)
	ctx := f.userCtx()

	base := domain.CheckoutRequest{
		Items:         []domain.CheckoutItem{{ProductID: f.tshirt.ID.String(), Size: "M", Quantity: 1}},
		PaymentMethod: "credit_card",
		Cause:         "education",
		Shipping:      validShipping(),
	}

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := f.svc.Checkout(context.Background(), base)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("empty cart", func(t *testing.T) {
		req := base
		req.Items = nil
		_, err := f.svc.Checkout(ctx, req)
		assert.ErrorIs(t, err, domain.ErrEmptyCart)
	})

	t.Run("missing shipping", func(t *testing.T) {
		req := base
		req.Shipping.PostalCode = ""
		_, err := f.svc.Checkout(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidShipping)
	})

	t.Run("unknown product", func(t *testing.T) {
		req := base
		req.Items = []domain.CheckoutItem{{ProductID: f.node.Generate().String(), Quantity: 1}}
		_, err := f.svc.Checkout(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidProduct)
	})

	t.Run("unknown size", func(t *testing.T) {
		req := base
		req.Items = []domain.CheckoutItem{{ProductID: f.tshirt.ID.String(), Size: "XXXL", Quantity: 1}}
		_, err := f.svc.Checkout(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidProduct)
	})

	t.Run("zero quantity", func(t *testing.T) {
		req := base
		req.Items = []domain.CheckoutItem{{ProductID: f.tshirt.ID.String(), Size: "M", Quantity: 0}}
		_, err := f.svc.Checkout(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	})
}

func TestGetOrderIsOwnerScoped(t *testing.T) {
	f := setupCheckout(t)
	owner := f.userCtx()

	resp, err := f.svc.Checkout(owner, domain.CheckoutRequest{
		Items:         []domain.CheckoutItem{{ProductID: f.sticker.ID.String(), Quantity: 1}},
		PaymentMethod: "credit_card",
		Shipping:      validShipping(),
	})
	require.NoError(t, err)

	got, err := f.svc.Get(owner, domain.GetOrderRequest{ID: resp.Order.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, resp.Order.OrderNumber, got.OrderNumber)
	assert.Len(t, got.Items, 1)

	_, err = f.svc.Get(f.userCtx(), domain.GetOrderRequest{ID: resp.Order.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
