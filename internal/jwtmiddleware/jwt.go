package jwtmiddleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Claims is the decoded form of the token payload {user:{id,role}} that the
// storefront clients already carry around.
type Claims struct {
	UserID uint
	Role   string
}

func ParseToken(raw string, secret []byte) (*Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}

	user, ok := mapClaims["user"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("token missing user claim")
	}

	id, ok := user["id"].(float64)
	if !ok {
		return nil, fmt.Errorf("token missing user id")
	}
	role, ok := user["role"].(string)
	if !ok {
		return nil, fmt.Errorf("token missing user role")
	}

	return &Claims{UserID: uint(id), Role: role}, nil
}

// RequireRole verifies the bearer token and checks its role. The original
// backend never verified tokens, so this middleware is only wired in when
// enforcement is switched on.
func RequireRole(secret []byte, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "errors": "Please authenticate using a valid token"})
			}

			claims, err := ParseToken(raw, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "errors": "Please authenticate using a valid token"})
			}
			if claims.Role != role {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "errors": fmt.Sprintf("Requires %s role", role)})
			}

			c.Set("user", claims)
			return next(c)
		}
	}
}
