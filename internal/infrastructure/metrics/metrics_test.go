package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/domain"
)

func TestMiddleware_CuentaPorRuta(t *testing.T) {
	m := New("test")
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/goods/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/metrics", m.Handler())

	for _, id := range []string{"a", "b"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/goods/"+id, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/goods/:id", "204")))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "test_http_requests_total")
}

func TestDeliveryLineRejected(t *testing.T) {
	m := New("test")
	m.DeliveryLineRejected(domain.CodeAvailableExceeded)
	m.DeliveryLineRejected(domain.CodeAvailableExceeded)
	m.DeliveryLineRejected(domain.CodeOrderRequired)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.DeliveryLinesRejected.WithLabelValues(domain.CodeAvailableExceeded)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DeliveryLinesRejected.WithLabelValues(domain.CodeOrderRequired)))
}
