package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareAndHandler(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `techkr_http_request_duration_seconds_count{method="GET",path="/ping",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMethodLabelsSurviveMixedTraffic(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Post("/mixed", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })
	app.Get("/mixed", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Delete("/mixed", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/metrics", Handler())

	for i := 0; i < 3; i++ {
		for _, method := range []string{"POST", "GET", "DELETE"} {
			resp, err := app.Test(httptest.NewRequest(method, "/mixed", nil))
			require.NoError(t, err)
			resp.Body.Close()
		}
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `techkr_http_request_duration_seconds_count{method="POST",path="/mixed",status="201"} 3`)
	assert.Contains(t, string(body), `techkr_http_request_duration_seconds_count{method="GET",path="/mixed",status="200"} 3`)
	assert.Contains(t, string(body), `techkr_http_request_duration_seconds_count{method="DELETE",path="/mixed",status="204"} 3`)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(PaymentsProcessed.WithLabelValues("card"))
	PaymentsProcessed.WithLabelValues("card").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PaymentsProcessed.WithLabelValues("card")))

	before = testutil.ToFloat64(MoneyMoved.WithLabelValues("tip"))
	MoneyMoved.WithLabelValues("tip").Add(2.5)
	assert.InDelta(t, before+2.5, testutil.ToFloat64(MoneyMoved.WithLabelValues("tip")), 1e-9)
}
