package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mvshop/multivendor-shop/internal/models"
	"github.com/mvshop/multivendor-shop/internal/mykafka"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

func (h *ProductHandler) publish(c echo.Context, event map[string]interface{}) {
	if h.Producer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ProductHandler) indexProduct(c echo.Context, product models.Product) {
	if h.ES == nil {
		return
	}

	body, err := json.Marshal(product)
	if err != nil {
		c.Logger().Errorf("ES index error: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.ES.Index(
		h.Index,
		bytes.NewReader(body),
		h.ES.Index.WithDocumentID(strconv.Itoa(product.ID)),
		h.ES.Index.WithContext(ctx),
	)
	if err != nil {
		c.Logger().Errorf("ES index error: %v", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		c.Logger().Errorf("ES index error: %s", res.Status())
	}
}

func (h *ProductHandler) AddProduct(c echo.Context) error {
	var req struct {
		Name        string   `json:"name"`
		Image       string   `json:"image"`
		Category    string   `json:"category"`
		NewPrice    *float64 `json:"new_price"`
		OldPrice    *float64 `json:"old_price"`
		SellerEmail string   `json:"sellerEmail"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "errors": err.Error()})
	}

	if req.Name == "" || req.Image == "" || req.Category == "" || req.NewPrice == nil || req.OldPrice == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "errors": "missing required product fields"})
	}

	// The public id keeps the original numbering scheme: running maximum plus
	// one, starting at 1. Read-then-write, no isolation; concurrent calls can
	// collide the same way the original did.
	var maxID int64
	if err := h.DB.Model(&models.Product{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	product := models.Product{
		ID:          int(maxID) + 1,
		Name:        req.Name,
		Image:       req.Image,
		Category:    req.Category,
		NewPrice:    *req.NewPrice,
		OldPrice:    *req.OldPrice,
		SellerEmail: req.SellerEmail,
		Date:        time.Now(),
		Available:   true,
	}

	if err := h.DB.Create(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	h.publish(c, map[string]interface{}{
		"type":        "product_created",
		"productID":   product.ID,
		"name":        product.Name,
		"sellerEmail": product.SellerEmail,
	})
	h.indexProduct(c, product)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "name": product.Name})
}

func (h *ProductHandler) AllProducts(c echo.Context) error {
	products := []models.Product{}
	if err := h.DB.Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, products)
}
