package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mvshop/multivendor-shop/internal/handlers"
	"github.com/mvshop/multivendor-shop/internal/jwtmiddleware"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	UploadHandler  *handlers.UploadHandler
	SearchHandler  *handlers.SearchHandler

	JWTSecret   []byte
	EnforceAuth bool
	UploadDir   string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })

	e.Static("/images", d.UploadDir)

	e.POST("/upload", d.UploadHandler.Upload)
	e.POST("/signup", d.AuthHandler.Signup)
	e.POST("/login", d.AuthHandler.Login)
	e.GET("/allproducts", d.ProductHandler.AllProducts)

	// The original contract never checks the token; the seller gate is opt-in.
	var addMW []echo.MiddlewareFunc
	if d.EnforceAuth {
		addMW = append(addMW, jwtmiddleware.RequireRole(d.JWTSecret, "seller"))
	}
	e.POST("/addproduct", d.ProductHandler.AddProduct, addMW...)

	if d.SearchHandler != nil {
		e.GET("/search", d.SearchHandler.Handler)
	}
}
