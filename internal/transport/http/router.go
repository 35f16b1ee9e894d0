package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/velmark/storefront/internal/handlers"
	mwauth "github.com/velmark/storefront/internal/middleware/auth"
)

type Deps struct {
	Guard           *mwauth.Guard
	AuthHandler     *handlers.AuthHandler
	OrderHandler    *handlers.OrderHandler
	PaymentHandler  *handlers.PaymentHandler
	ProductHandler  *handlers.ProductHandler
	CategoryHandler *handlers.CategoryHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/forgot-password", d.AuthHandler.ForgotPassword)
	auth.PUT("/profile", d.AuthHandler.UpdateProfile, d.Guard.RequireSignIn)
	auth.GET("/user-auth", d.AuthHandler.UserAuth, d.Guard.RequireSignIn)
	auth.GET("/admin-auth", d.AuthHandler.AdminAuth, d.Guard.RequireSignIn, d.Guard.RequireAdmin)

	auth.GET("/orders", d.OrderHandler.ListOwnOrders, d.Guard.RequireSignIn)
	auth.GET("/all-orders", d.OrderHandler.ListAllOrders, d.Guard.RequireSignIn, d.Guard.RequireAdmin)
	auth.PUT("/order-status/:orderId", d.OrderHandler.SetOrderStatus, d.Guard.RequireSignIn, d.Guard.RequireAdmin)

	product := v1.Group("/product")
	product.GET("/braintree/token", d.PaymentHandler.ClientToken)
	product.POST("/braintree/payment", d.PaymentHandler.Payment, d.Guard.RequireSignIn)

	product.GET("", d.ProductHandler.GetProducts)
	product.GET("/:id", d.ProductHandler.GetProduct)
	product.GET("/search/:keyword", d.SearchHandler.Search)
	product.POST("", d.ProductHandler.CreateProduct, d.Guard.RequireSignIn, d.Guard.RequireAdmin)
	product.PUT("/:id", d.ProductHandler.UpdateProduct, d.Guard.RequireSignIn, d.Guard.RequireAdmin)
	product.DELETE("/:id", d.ProductHandler.DeleteProduct, d.Guard.RequireSignIn, d.Guard.RequireAdmin)

	category := v1.Group("/category")
	category.GET("", d.CategoryHandler.GetCategories)
	category.POST("", d.CategoryHandler.CreateCategory, d.Guard.RequireSignIn, d.Guard.RequireAdmin)
	category.PUT("/:id", d.CategoryHandler.UpdateCategory, d.Guard.RequireSignIn, d.Guard.RequireAdmin)
	category.DELETE("/:id", d.CategoryHandler.DeleteCategory, d.Guard.RequireSignIn, d.Guard.RequireAdmin)
}
