package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	catalogdomain "github.com/printpower/storefront/internal/catalog/domain"
	"github.com/printpower/storefront/internal/clock"
	"github.com/printpower/storefront/internal/config"
	donationdomain "github.com/printpower/storefront/internal/donation/domain"
	"github.com/printpower/storefront/internal/order/domain"
	"github.com/printpower/storefront/internal/usercontext"
	"github.com/printpower/storefront/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxItemQuantity = 100

type Params struct {
	fx.In

	Config      *config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	CatalogRepo catalogdomain.Repository
	Donations   donationdomain.OrderWriter
}

type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	catalogRepo catalogdomain.Repository
	donations   donationdomain.OrderWriter
}

func New(p Params) domain.Service {
	return &Service{
		cfg:         p.Config,
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
		donations:   p.Donations,
	}
}

// Checkout prices the cart from the catalog, never from client-supplied
// amounts, and commits the order, its items, and any donation row in a
// single transaction. The donation feed and quote automation observe the
// donation only after the transaction commits.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.CheckoutResponse{}, domain.ErrUnauthenticated
	}

	if len(req.Items) == 0 {
		return domain.CheckoutResponse{}, domain.ErrEmptyCart
	}
	if err := validateShipping(req.Shipping); err != nil {
		return domain.CheckoutResponse{}, err
	}
	method := donationdomain.PaymentMethod(strings.TrimSpace(req.PaymentMethod))
	if !method.Valid() {
		return domain.CheckoutResponse{}, donationdomain.ErrInvalidPaymentMethod
	}

	products, err := s.loadProducts(ctx, req.Items)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	now := s.clock.Now()
	order := domain.Order{
		ID:            s.genID.Generate(),
		OrderNumber:   newOrderNumber(now),
		UserID:        userID,
		Status:        domain.StatusPending,
		PaymentMethod: method,
		CauseName:     strings.ToLower(strings.TrimSpace(req.Cause)),

		ShippingName:       strings.TrimSpace(req.Shipping.Name),
		ShippingLine1:      strings.TrimSpace(req.Shipping.Line1),
		ShippingLine2:      strings.TrimSpace(req.Shipping.Line2),
		ShippingCity:       strings.TrimSpace(req.Shipping.City),
		ShippingState:      strings.TrimSpace(req.Shipping.State),
		ShippingPostalCode: strings.TrimSpace(req.Shipping.PostalCode),
		ShippingCountry:    strings.TrimSpace(req.Shipping.Country),

		CreatedAt: now,
	}

	subtotal := decimal.Zero
	totalDonation := decimal.Zero
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity <= 0 || line.Quantity > maxItemQuantity {
			return domain.CheckoutResponse{}, domain.ErrInvalidQuantity
		}
		product := products[line.ProductID]
		if product == nil {
			return domain.CheckoutResponse{}, domain.ErrInvalidProduct
		}
		if line.Size != "" && !hasSize(product, line.Size) {
			return domain.CheckoutResponse{}, domain.ErrInvalidProduct
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		subtotal = subtotal.Add(product.Price.Mul(qty))
		totalDonation = totalDonation.Add(product.DonationAmount.Mul(qty))

		items = append(items, domain.OrderItem{
			ID:             s.genID.Generate(),
			OrderID:        order.ID,
			ProductID:      product.ID,
			ProductName:    product.Name,
			ProductImage:   product.ImageURL,
			Size:           line.Size,
			Quantity:       line.Quantity,
			Price:          product.Price,
			DonationAmount: product.DonationAmount,
		})
	}

	order.Subtotal = subtotal
	order.TotalDonation = totalDonation
	order.Total = subtotal.Add(totalDonation)

	if totalDonation.IsPositive() && order.CauseName == "" {
		return domain.CheckoutResponse{}, domain.ErrCauseRequired
	}

	var donation donationdomain.Donation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &order); err != nil {
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}
		if !totalDonation.IsPositive() {
			return nil
		}

		var err error
		donation, err = s.donations.CreateForOrder(ctx, tx, order.ID, donationdomain.CreateDonationRequest{
			DonorName:     order.ShippingName,
			Amount:        totalDonation.StringFixed(2),
			Cause:         order.CauseName,
			PaymentMethod: string(method),
		})
		return err
	})
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	if donation.ID != 0 {
		s.donations.Announce(ctx, donation)
	}

	order.Items = items
	triggered := totalDonation.GreaterThanOrEqual(s.cfg.CheckDrop.Threshold)

	s.log.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.Total.StringFixed(2)),
		zap.String("total_donation", totalDonation.StringFixed(2)),
		zap.Bool("check_drop", triggered),
	)

	return domain.CheckoutResponse{Order: order, CheckDropTriggered: triggered}, nil
}

func (s *Service) loadProducts(ctx context.Context, lines []domain.CheckoutItem) (map[string]*catalogdomain.Product, error) {
	ids := make([]snowflake.ID, 0, len(lines))
	for _, line := range lines {
		id, err := snowflake.ParseString(strings.TrimSpace(line.ProductID))
		if err != nil {
			return nil, domain.ErrInvalidProduct
		}
		ids = append(ids, id)
	}

	rows, err := s.catalogRepo.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	products := make(map[string]*catalogdomain.Product, len(rows))
	for _, row := range rows {
		if row == nil || !row.Active {
			continue
		}
		products[row.ID.String()] = row
	}
	return products, nil
}

func (s *Service) List(ctx context.Context, req domain.ListOrderRequest) (domain.ListOrderResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ListOrderResponse{}, domain.ErrUnauthenticated
	}

	size := req.PageSize
	if size <= 0 {
		size = 50
	}

	items, err := s.repo.ListByUser(ctx, s.db, userID, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(size),
	})
	if err != nil {
		return domain.ListOrderResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, size, func(o *domain.Order) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        o.ID.String(),
			CreatedAt: o.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > int(size) {
		items = items[:size]
	}

	orders := make([]domain.Order, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orders = append(orders, *item)
	}

	return domain.ListOrderResponse{PageInfo: *pageInfo, Orders: orders}, nil
}

func (s *Service) Get(ctx context.Context, req domain.GetOrderRequest) (domain.Order, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Order{}, domain.ErrUnauthenticated
	}

	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Order{}, domain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil || order.UserID != userID {
		return domain.Order{}, domain.ErrNotFound
	}
	return *order, nil
}

func validateShipping(info domain.ShippingInfo) error {
	for _, field := range []string{info.Name, info.Line1, info.City, info.PostalCode, info.Country} {
		if strings.TrimSpace(field) == "" {
			return domain.ErrInvalidShipping
		}
	}
	return nil
}

func hasSize(product *catalogdomain.Product, size string) bool {
	if len(product.Sizes) == 0 {
		return true
	}
	for _, s := range product.Sizes {
		if strings.EqualFold(s, size) {
			return true
		}
	}
	return false
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:9]
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}
