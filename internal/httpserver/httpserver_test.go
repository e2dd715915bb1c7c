package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/modern_shop/internal/events"
	"github.com/Skotchmaster/modern_shop/internal/models"
	"github.com/Skotchmaster/modern_shop/internal/service"
	"github.com/Skotchmaster/modern_shop/internal/tokens"
	"github.com/Skotchmaster/modern_shop/internal/transport"
	"github.com/Skotchmaster/modern_shop/pkg/db"
	"github.com/Skotchmaster/modern_shop/pkg/logging"
)

type testApp struct {
	e  *echo.Echo
	db *db.Handle
}

func newTestApp(t *testing.T, staticDir, templatesDir string) *testApp {
	t.Helper()

	h, err := db.Open(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	require.NoError(t, h.Migrate(context.Background(), models.All()...))

	if staticDir == "" {
		staticDir = filepath.Join(t.TempDir(), "missing")
	}

	iss := tokens.NewIssuer([]byte("test-jwt-secret"), 15*time.Minute)
	e := New(&Deps{
		DB:     h,
		Logger: logging.NewWithWriter(io.Discard, "error"),
		UserHandler: &UserHTTP{
			Svc:    &service.UserService{Events: events.Noop{}},
			Tokens: iss,
		},
		ProductHandler:   &ProductHTTP{Svc: &service.ProductService{Events: events.Noop{}}},
		Auth:             NewAuth(iss),
		CORSAllowOrigins: []string{"*"},
		PermissiveCORS:   true,
		StaticDir:        staticDir,
		TemplatesDir:     templatesDir,
	})
	return &testApp{e: e, db: h}
}

func (a *testApp) do(t *testing.T, method, target, body string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func TestCreateUser_Success(t *testing.T) {
	app := newTestApp(t, "", "")

	rec := app.do(t, http.MethodPost, "/api/users/", `{"email":"alice@example.com","password":"s3cret"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.NotZero(t, body["id"])
	assert.Equal(t, "alice@example.com", body["email"])
	assert.NotEmpty(t, body["created_at"])
	assert.NotEmpty(t, body["updated_at"])
	assert.NotContains(t, body, "password")
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	app := newTestApp(t, "", "")
	payload := `{"email":"dup@example.com","password":"pw"}`

	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/users", payload).Code)

	rec := app.do(t, http.MethodPost, "/api/users", payload)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "email already registered", decode(t, rec)["detail"])

	var n int64
	require.NoError(t, app.db.DB.Model(&models.User{}).Where("email = ?", "dup@example.com").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestCreateUser_BadInput(t *testing.T) {
	app := newTestApp(t, "", "")

	rec := app.do(t, http.MethodPost, "/api/users", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/users", `{"email":"not-an-email","password":"pw"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec), "detail")
}

func TestCreateUser_EmptyPassword(t *testing.T) {
	app := newTestApp(t, "", "")

	rec := app.do(t, http.MethodPost, "/api/users", `{"email":"e@example.com","password":""}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "e@example.com", decode(t, rec)["email"])

	rec = app.do(t, http.MethodPost, "/api/users", `{"email":"long@example.com","password":"`+strings.Repeat("p", 90)+`"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestLoginAndMe(t *testing.T) {
	app := newTestApp(t, "", "")
	require.Equal(t, http.StatusCreated,
		app.do(t, http.MethodPost, "/api/users", `{"email":"bob@example.com","password":"pw"}`).Code)

	rec := app.do(t, http.MethodPost, "/api/users/login", `{"email":"bob@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/users/login", `{"email":"bob@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tok transport.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	assert.Equal(t, "bearer", tok.TokenType)
	require.NotEmpty(t, tok.AccessToken)

	rec = app.do(t, http.MethodGet, "/api/users/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/users/me", "", echo.HeaderAuthorization, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/users/me", "", echo.HeaderAuthorization, "Bearer "+tok.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "bob@example.com", decode(t, rec)["email"])
}

func TestProducts_CreateAndList(t *testing.T) {
	app := newTestApp(t, "", "")

	rec := app.do(t, http.MethodGet, "/api/products/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = app.do(t, http.MethodPost, "/api/products/",
		`{"name":"Widget","description":"A widget","price":500,"image_url":"http://x/y.png","stock":10}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.NotZero(t, created["id"])

	rec = app.do(t, http.MethodGet, "/api/products/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []transport.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Widget", list[0].Name)
	assert.Equal(t, int64(500), list[0].Price)
	assert.Equal(t, uint(created["id"].(float64)), list[0].ID)
}

func TestProducts_CreateRequiresEveryField(t *testing.T) {
	app := newTestApp(t, "", "")

	for _, body := range []string{
		`{}`,
		`{"name":null,"description":"d","price":1,"image_url":"u","stock":1}`,
		`{"name":"n","description":"d","price":1,"image_url":"u"}`,
	} {
		rec := app.do(t, http.MethodPost, "/api/products", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
		assert.Contains(t, decode(t, rec), "detail")
	}

	rec := app.do(t, http.MethodPost, "/api/products", `{"name":"n","description":"d","price":"cheap","image_url":"u","stock":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/products", "")
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestProducts_Pagination(t *testing.T) {
	app := newTestApp(t, "", "")
	for _, name := range []string{"a", "b", "c"} {
		require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/products",
			`{"name":"`+name+`","description":"","price":1,"image_url":"","stock":1}`).Code)
	}

	rec := app.do(t, http.MethodGet, "/api/products?page=2&size=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []transport.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].Name)
}

func TestProducts_GetAndSearch(t *testing.T) {
	app := newTestApp(t, "", "")
	rec := app.do(t, http.MethodPost, "/api/products", `{"name":"Blue Lamp","description":"desk lamp","price":-3,"image_url":"","stock":-1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := int(decode(t, rec)["id"].(float64))

	rec = app.do(t, http.MethodGet, "/api/products/"+strconv.Itoa(id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Blue Lamp", decode(t, rec)["name"])

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/products/999", "").Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/api/products/abc", "").Code)

	rec = app.do(t, http.MethodGet, "/api/products/search?q=LAMP", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res transport.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, int64(1), res.Total)
	require.Len(t, res.Products, 1)

	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/api/products/search", "").Code)
}

func TestCartsAndOrders_NotImplemented(t *testing.T) {
	app := newTestApp(t, "", "")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/carts"},
		{http.MethodPost, "/api/carts/1/items"},
		{http.MethodGet, "/api/orders/"},
		{http.MethodDelete, "/api/orders/5"},
	} {
		rec := app.do(t, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotImplemented, rec.Code, tc.path)
		assert.JSONEq(t, `{"detail":"not implemented"}`, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, "", "")

	rec := app.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/health/ready", "").Code)

	require.NoError(t, app.db.Close())

	rec = app.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, http.StatusServiceUnavailable, app.do(t, http.MethodGet, "/health/ready", "").Code)
}

func TestCORS_ReflectsOrigin(t *testing.T) {
	app := newTestApp(t, "", "")

	rec := app.do(t, http.MethodGet, "/health", "", echo.HeaderOrigin, "http://frontend.test")
	assert.Equal(t, "http://frontend.test", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}

func TestUnknownAPIRoute_NoFrontend(t *testing.T) {
	app := newTestApp(t, "", "")

	rec := app.do(t, http.MethodGet, "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, rec.Body.String())
}

func writeFrontend(t *testing.T) (staticDir, templatesDir string) {
	t.Helper()
	base := t.TempDir()
	staticDir = filepath.Join(base, "static")
	templatesDir = filepath.Join(base, "templates")
	require.NoError(t, os.MkdirAll(filepath.Join(staticDir, "assets"), 0o755))
	require.NoError(t, os.MkdirAll(templatesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "assets", "app.js"), []byte("console.log(1)"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "secret.txt"), []byte("top secret"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(templatesDir, "index.html"),
		[]byte(`<html><body><div id="root" data-path="{{.Path}}"></div></body></html>`), 0o644))
	return staticDir, templatesDir
}

func TestSPAFallback(t *testing.T) {
	staticDir, templatesDir := writeFrontend(t)
	app := newTestApp(t, staticDir, templatesDir)

	rec := app.do(t, http.MethodGet, "/shop/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div id="root" data-path="/shop/cart">`)

	rec = app.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="root"`)

	rec = app.do(t, http.MethodGet, "/assets/app.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	rec = app.do(t, http.MethodGet, "/static/assets/app.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/apiary", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSPA_ResolveStaysInsideRoot(t *testing.T) {
	staticDir, _ := writeFrontend(t)
	spa := &SPA{StaticDir: staticDir}

	_, ok := spa.resolve("../secret.txt")
	assert.False(t, ok)

	_, ok = spa.resolve("assets")
	assert.False(t, ok, "directories are not served")

	p, ok := spa.resolve("assets/app.js")
	require.True(t, ok)
	assert.Equal(t, "app.js", filepath.Base(p))
}

func TestHTTPErrorHandler_HidesInternalErrors(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	HTTPErrorHandler(assert.AnError, c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal Server Error"}`, rec.Body.String())
}

func TestCorsConfig_WildcardOnlyWhenPermissive(t *testing.T) {
	l := logging.NewWithWriter(io.Discard, "error")

	cfg := corsConfig(l, []string{"https://shop.test"}, false)
	assert.False(t, cfg.UnsafeWildcardOriginWithAllowCredentials)
	assert.True(t, cfg.AllowCredentials)

	cfg = corsConfig(l, []string{"*"}, true)
	assert.True(t, cfg.UnsafeWildcardOriginWithAllowCredentials)
}
