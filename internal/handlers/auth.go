package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mvshop/multivendor-shop/internal/hash"
	"github.com/mvshop/multivendor-shop/internal/models"
	"github.com/mvshop/multivendor-shop/internal/mykafka"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	Producer  *mykafka.Producer
}

// SignToken issues the credential the storefront stores after signup/login.
// The claim shape {user:{id,role}} is load-bearing: existing clients decode it.
func SignToken(secret []byte, userID uint, role string) (string, error) {
	claims := jwt.MapClaims{
		"user": map[string]interface{}{
			"id":   userID,
			"role": role,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	if h.Producer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "errors": err.Error()})
	}

	var existing models.User
	err := h.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "errors": "Email already exists"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	role := req.Role
	if role == "" {
		role = "customer"
	}

	user := models.User{
		Name:       req.Username,
		Email:      req.Email,
		Password:   hashed,
		Role:       role,
		IsApproved: false,
		Date:       time.Now(),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		// Lost uniqueness races end up here via the unique index on email.
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "errors": "Email already exists"})
	}

	token, err := SignToken(h.JWTSecret, user.ID, user.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]interface{}{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
		"role":   user.Role,
	})

	return c.JSON(http.StatusOK, echo.Map{"success": true, "token": token})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "errors": err.Error()})
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"success": false, "errors": "Wrong Email Id"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	if !hash.CheckPassword(user.Password, req.Password) {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "errors": "Wrong Password"})
	}

	token, err := SignToken(h.JWTSecret, user.ID, user.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]interface{}{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{"success": true, "token": token, "role": user.Role})
}
