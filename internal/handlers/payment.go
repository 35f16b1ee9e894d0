package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/velmark/storefront/internal/gateway"
	"github.com/velmark/storefront/internal/logging"
	mwauth "github.com/velmark/storefront/internal/middleware/auth"
	"github.com/velmark/storefront/internal/models"
	"github.com/velmark/storefront/internal/mykafka"
)

type PaymentHandler struct {
	DB       *gorm.DB
	Gateway  gateway.Gateway
	Producer *mykafka.Producer
}

// CartProduct is the client-side product snapshot as it sits in the cart.
type CartProduct struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

func (h *PaymentHandler) ClientToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment_client_token")

	token, err := h.Gateway.ClientToken(ctx)
	if err != nil {
		l.Error("client_token_failed", "status", 500, "reason", "gateway_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "gateway error")
	}

	return c.JSON(http.StatusOK, echo.Map{"clientToken": token})
}

// Payment charges the nonce for the cart total and persists the order in
// one handler. The charge and the insert are not one transaction; a
// gateway success followed by a failed insert is a known window.
func (h *PaymentHandler) Payment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment_charge")

	userID := mwauth.UserID(c)

	var req struct {
		Cart  []CartProduct `json:"cart"`
		Nonce string        `json:"nonce"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("payment_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Nonce == "" {
		l.Warn("payment_failed", "status", 400, "reason", "missing_nonce")
		return echo.NewHTTPError(http.StatusBadRequest, "nonce is required")
	}
	if len(req.Cart) == 0 {
		l.Warn("payment_failed", "status", 400, "reason", "empty_cart")
		return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
	}

	var total float64
	for _, p := range req.Cart {
		total += p.Price
	}

	result, err := h.Gateway.Sale(ctx, total, req.Nonce)
	if err != nil {
		l.Error("payment_failed", "status", 500, "reason", "gateway_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "payment failed")
	}

	items := make([]models.OrderProduct, 0, len(req.Cart))
	for _, p := range req.Cart {
		items = append(items, models.OrderProduct{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
		})
	}

	order := models.Order{
		BuyerID: userID,
		Items:   items,
		Status:  models.StatusNotProcess,
		Payment: models.PaymentResult{
			Success:       result.Success,
			TransactionID: result.TransactionID,
			Amount:        total,
		},
	}
	if err := h.DB.WithContext(ctx).Create(&order).Error; err != nil {
		l.Error("payment_failed", "status", 500, "reason", "db_error",
			"transaction_id", result.TransactionID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publishEvent(c, h.Producer, "order_events", fmt.Sprint(order.ID), map[string]any{
		"type":    "order_created",
		"orderID": order.ID,
		"userID":  userID,
		"total":   total,
	})

	l.Info("payment_success", "order_id", order.ID, "total", total)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
