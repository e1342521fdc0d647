package httpserver

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mvshop/multivendor-shop/internal/handlers"
	"github.com/mvshop/multivendor-shop/internal/models"
)

var testSecret = []byte("test_secret")

func newTestServer(t *testing.T, enforceAuth bool) (*echo.Echo, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}))

	uploadDir := t.TempDir()

	e := echo.New()
	Register(e, &Deps{
		DB:             db,
		AuthHandler:    &handlers.AuthHandler{DB: db, JWTSecret: testSecret},
		ProductHandler: &handlers.ProductHandler{DB: db},
		UploadHandler:  &handlers.UploadHandler{Dir: uploadDir, PublicURL: "http://localhost:4000"},
		JWTSecret:      testSecret,
		EnforceAuth:    enforceAuth,
		UploadDir:      uploadDir,
	})
	return e, db
}

func doJSON(e *echo.Echo, method, path string, payload interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// Walks the storefront's whole happy path through the real routes.
func TestSignupLoginAddProductListFlow(t *testing.T) {
	e, _ := newTestServer(t, false)

	rec := doJSON(e, http.MethodPost, "/signup", map[string]string{
		"username": "a", "email": "a@x.com", "password": "p",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var signupResp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signupResp))
	require.Equal(t, true, signupResp["success"])
	require.NotEmpty(t, signupResp["token"])

	rec = doJSON(e, http.MethodPost, "/login", map[string]string{
		"email": "a@x.com", "password": "p",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var loginResp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResp))
	require.Equal(t, true, loginResp["success"])
	require.Equal(t, "customer", loginResp["role"])
	require.NotEmpty(t, loginResp["token"])

	rec = doJSON(e, http.MethodPost, "/addproduct", map[string]interface{}{
		"name": "Shirt", "image": "u", "category": "men",
		"new_price": 500, "old_price": 700, "sellerEmail": "a@x.com",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var addResp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &addResp))
	require.Equal(t, true, addResp["success"])
	require.Equal(t, "Shirt", addResp["name"])

	rec = doJSON(e, http.MethodGet, "/allproducts", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	require.Equal(t, 1, products[0].ID)
	require.Equal(t, "Shirt", products[0].Name)
	require.Equal(t, float64(500), products[0].NewPrice)
	require.True(t, products[0].Available)
}

func TestAddProductUncheckedByDefault(t *testing.T) {
	e, _ := newTestServer(t, false)

	// No Authorization header at all: the original contract never verifies
	// tokens, so this must succeed.
	rec := doJSON(e, http.MethodPost, "/addproduct", map[string]interface{}{
		"name": "Shirt", "image": "u", "category": "men",
		"new_price": 500, "old_price": 700, "sellerEmail": "a@x.com",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAddProductEnforcedRequiresSeller(t *testing.T) {
	e, _ := newTestServer(t, true)

	payload := map[string]interface{}{
		"name": "Shirt", "image": "u", "category": "men",
		"new_price": 500, "old_price": 700, "sellerEmail": "s@x.com",
	}

	rec := doJSON(e, http.MethodPost, "/addproduct", payload, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/signup", map[string]string{
		"username": "s", "email": "s@x.com", "password": "p", "role": "seller",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var signupResp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signupResp))
	token := signupResp["token"].(string)

	rec = doJSON(e, http.MethodPost, "/addproduct", payload, map[string]string{
		echo.HeaderAuthorization: "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadAndFetchImage(t *testing.T) {
	e, _ := newTestServer(t, false)

	content := []byte("fake png bytes")
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile(handlers.UploadFieldName, "shirt.png")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, float64(1), resp["success"])

	imageURL, ok := resp["image_url"].(string)
	require.True(t, ok)
	path := strings.TrimPrefix(imageURL, "http://localhost:4000")
	require.True(t, strings.HasPrefix(path, "/images/"), imageURL)

	fetch := httptest.NewRequest(http.MethodGet, path, nil)
	fetchRec := httptest.NewRecorder()
	e.ServeHTTP(fetchRec, fetch)
	require.Equal(t, http.StatusOK, fetchRec.Code)
	require.Equal(t, content, fetchRec.Body.Bytes(), "served image must be byte-identical to the upload")
}

func TestHealthLive(t *testing.T) {
	e, _ := newTestServer(t, false)

	rec := doJSON(e, http.MethodGet, "/health/live", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
