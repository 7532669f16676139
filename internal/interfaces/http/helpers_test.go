package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/catalog"
	"github.com/jhoicas/almacen-api/internal/application/delivery"
	"github.com/jhoicas/almacen-api/internal/application/importer"
	"github.com/jhoicas/almacen-api/internal/application/purchasing"
	"github.com/jhoicas/almacen-api/internal/application/reports"
	"github.com/jhoicas/almacen-api/internal/application/services"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/internal/infrastructure/metrics"
	"github.com/jhoicas/almacen-api/internal/infrastructure/xlsx"
	apphttp "github.com/jhoicas/almacen-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/almacen-api/pkg/jwt"
)

// testEnv API completa sobre el store en memoria.
type testEnv struct {
	app     *fiber.App
	store   *memory.Store
	metrics *metrics.Metrics
	authUC  *auth.UseCase
	admin   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	now := func() time.Time { return time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC) }
	store := memory.NewStore()
	repos := store.Repos()
	engine := stock.NewEngine()
	recorder := audit.NewRecorder(now)
	m := metrics.New("test")

	authUC := auth.NewUseCase(repos.Users, repos.Categories, auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
	}, now)

	app := fiber.New()
	app.Use(m.Middleware())
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:       authUC,
		CatalogUC:    catalog.NewUseCase(store, repos, engine, recorder, now),
		PurchasingUC: purchasing.NewUseCase(store, repos, engine, recorder, now),
		DeliveryUC:   delivery.NewUseCase(store, repos, engine, recorder, nil, m, now),
		ServicesUC:   services.NewUseCase(store, repos, recorder, now, 60),
		ReportsUC: reports.NewUseCase(repos, reports.Config{
			LowStockThreshold: 10, OrderExpiryWindowDays: 120,
		}, now, xlsx.NewExporter()),
		AuditUC: audit.NewUseCase(repos.Audit),
		Importer: importer.New(store, engine, recorder, nil, now, importer.Options{
			Mode: importer.ModeStrict, SentinelPrice: decimal.NewFromInt(1),
		}),
		ImportReaders: apphttp.ImportReaders{Orders: xlsx.ReadOrderRows, Deliveries: xlsx.ReadDeliveryRows},
		JWTSecret:     testJWTSecret,
	})

	return &testEnv{app: app, store: store, metrics: m, authUC: authUC, admin: token(t, entity.RoleAdmin, "")}
}

// token genera un Bearer token para el rol y rubro indicados.
func token(t *testing.T, role, categoryID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, categoryID, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (e *testEnv) do(t *testing.T, method, path, auth string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) upload(t *testing.T, path, auth string, file []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "planilla.xlsx")
	require.NoError(t, err)
	_, err = part.Write(file)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", auth)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// decode lee el cuerpo JSON de la respuesta y la cierra.
func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// create hace POST y exige 201; devuelve el id creado.
func (e *testEnv) create(t *testing.T, path string, body any) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, path, e.admin, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[map[string]any](t, resp)
	return out["id"].(string)
}

// seedOrder crea rubro, bien y una OC con un renglón; devuelve (rubro, bien, orden).
func (e *testEnv) seedOrder(t *testing.T, category, good, number string, qty int, price string) (string, string, string) {
	t.Helper()
	categoryID := e.create(t, "/api/categories", map[string]any{"name": category})
	goodID := e.create(t, "/api/goods", map[string]any{"name": good, "category_id": categoryID})
	orderID := e.create(t, "/api/orders", map[string]any{
		"number":      number,
		"start_date":  "2025-01-01",
		"supplier":    "CORRALÓN SUR",
		"category_id": categoryID,
		"lines": []map[string]any{
			{"good_id": goodID, "quantity": qty, "unit_price": price, "line_number": 1},
		},
	})
	return categoryID, goodID, orderID
}
