package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avagyan/atelier_orders/internal/handlers"
	authmw "github.com/avagyan/atelier_orders/internal/middleware/auth"
)

type Deps struct {
	DB           *gorm.DB
	AuthHandler  *handlers.AuthHandler
	OrderHandler *handlers.OrderHandler
	JWTSecret    []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)

	profile := auth.Group("", authmw.RequireLogin(d.JWTSecret))
	profile.GET("/profile", d.AuthHandler.Profile)
	profile.PUT("/update-profile", d.AuthHandler.UpdateProfile)

	orders := api.Group("/orders", authmw.RequireLogin(d.JWTSecret))
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.ListOrders)
}
