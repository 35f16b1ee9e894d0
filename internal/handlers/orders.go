package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/velmark/storefront/internal/logging"
	mwauth "github.com/velmark/storefront/internal/middleware/auth"
	"github.com/velmark/storefront/internal/models"
	"github.com/velmark/storefront/internal/mykafka"
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *OrderHandler) ListOwnOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders_list_own")

	userID := mwauth.UserID(c)

	var orders []models.Order
	err := h.DB.WithContext(ctx).
		Preload("Items.Product").
		Preload("Buyer").
		Where("buyer_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		l.Error("orders_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListAllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders_list_all")

	var orders []models.Order
	err := h.DB.WithContext(ctx).
		Preload("Items.Product").
		Preload("Buyer").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		l.Error("orders_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, orders)
}

// SetOrderStatus overwrites the status with whatever the admin sent. The
// known set and the (permissive) transition rule live in models; values
// outside the set are stored anyway and only logged.
func (h *OrderHandler) SetOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders_set_status")

	orderID, err := strconv.Atoi(c.Param("orderId"))
	if err != nil || orderID <= 0 {
		l.Warn("set_status_failed", "status", 400, "reason", "invalid_order_id")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("set_status_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var order models.Order
	if err := h.DB.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("set_status_failed", "status", 404, "reason", "order_not_found", "order_id", orderID)
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		l.Error("set_status_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	newStatus := models.OrderStatus(req.Status)
	if !newStatus.Known() {
		l.Warn("unknown_order_status", "order_id", order.ID, "status", req.Status)
	}
	if !models.CanTransition(order.Status, newStatus) {
		l.Warn("set_status_failed", "status", 409, "reason", "transition_rejected",
			"from", order.Status, "to", newStatus)
		return echo.NewHTTPError(http.StatusConflict, "transition not allowed")
	}

	if err := h.DB.WithContext(ctx).Model(&order).Update("status", newStatus).Error; err != nil {
		l.Error("set_status_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var updated models.Order
	err = h.DB.WithContext(ctx).
		Preload("Items.Product").
		Preload("Buyer").
		First(&updated, order.ID).Error
	if err != nil {
		l.Error("set_status_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publishEvent(c, h.Producer, "order_events", fmt.Sprint(updated.ID), map[string]any{
		"type":    "order_status_changed",
		"orderID": updated.ID,
		"status":  string(updated.Status),
	})

	l.Info("set_status_success", "order_id", updated.ID, "new_status", updated.Status)
	return c.JSON(http.StatusOK, updated)
}
