package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/printpower/storefront/internal/order/domain"
)

type checkoutItemRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type checkoutShippingRequest struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type checkoutRequest struct {
	Items         []checkoutItemRequest   `json:"items"`
	PaymentMethod string                  `json:"payment_method"`
	Cause         string                  `json:"cause"`
	Shipping      checkoutShippingRequest `json:"shipping"`
}

func (s *Server) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items := make([]orderdomain.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orderdomain.CheckoutItem{
			ProductID: strings.TrimSpace(item.ProductID),
			Size:      strings.TrimSpace(item.Size),
			Quantity:  item.Quantity,
		})
	}

	resp, err := s.orderSvc.Checkout(c.Request.Context(), orderdomain.CheckoutRequest{
		Items:         items,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Cause:         strings.TrimSpace(req.Cause),
		Shipping: orderdomain.ShippingInfo{
			Name:       strings.TrimSpace(req.Shipping.Name),
			Line1:      strings.TrimSpace(req.Shipping.Line1),
			Line2:      strings.TrimSpace(req.Shipping.Line2),
			City:       strings.TrimSpace(req.Shipping.City),
			State:      strings.TrimSpace(req.Shipping.State),
			PostalCode: strings.TrimSpace(req.Shipping.PostalCode),
			Country:    strings.TrimSpace(req.Shipping.Country),
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOrders(c *gin.Context) {
	var query struct {
		PageToken string `form:"page_token"`
		PageSize  int32  `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListOrderRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrder(c *gin.Context) {
	order, err := s.orderSvc.Get(c.Request.Context(), orderdomain.GetOrderRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}
