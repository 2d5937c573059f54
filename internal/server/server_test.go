package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/config"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/events"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/server"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/gateway"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/storage"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/testkit"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/utils"
)

type testApp struct {
	t      *testing.T
	app    *fiber.App
	events *events.Recorder
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	rec := &events.Recorder{}
	app := server.New(server.Deps{
		Config: config.Config{
			JWTSecret:     "test-secret",
			JWTExpiresMin: 60,
			CORSOrigins:   "http://localhost:3000",
		},
		DB:      testkit.OpenDB(t),
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Events:  rec,
		Gateway: gateway.NewSimulator("sandbox"),
		Disk:    storage.NewLocal(t.TempDir(), "http://test/uploads"),
	})
	return &testApp{t: t, app: app, events: rec}
}

type reply struct {
	Status int
	Body   map[string]any
	Token  string
}

func (a *testApp) send(req *http.Request, token string) reply {
	a.t.Helper()

	if token != "" {
		req.AddCookie(&http.Cookie{Name: utils.CookieName, Value: token})
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	r := reply{Status: resp.StatusCode, Body: map[string]any{}}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(raw, &r.Body), string(raw))
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == utils.CookieName {
			r.Token = ck.Value
		}
	}
	return r
}

func (a *testApp) do(method, path string, body any, token string) reply {
	a.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req, token)
}

func obj(t *testing.T, m map[string]any, key string) map[string]any {
	t.Helper()
	v, ok := m[key].(map[string]any)
	require.Truef(t, ok, "%q is not an object: %v", key, m)
	return v
}

func registerClient(a *testApp) (token, profileID string) {
	a.t.Helper()
	r := a.do(http.MethodPost, "/api/auth/register/client", map[string]any{
		"email":       "Ada@Acme.ng",
		"password":    "supersecret",
		"name":        "Ada Obi",
		"companyName": "Acme",
		"country":     "Nigeria",
	}, "")
	require.Equal(a.t, http.StatusCreated, r.Status, r.Body)
	require.NotEmpty(a.t, r.Token)
	return r.Token, obj(a.t, r.Body, "user")["profileId"].(string)
}

func registerTalent(a *testApp) (token, profileID string) {
	a.t.Helper()
	r := a.do(http.MethodPost, "/api/auth/register/talent", map[string]any{
		"email":           "tunde@dev.ng",
		"password":        "supersecret",
		"fullName":        "Tunde Bello",
		"phoneNumber":     "08031234567",
		"state":           "lagos",
		"skills":          "react, go",
		"yearsExperience": "3",
		"hourlyRate":      25,
	}, "")
	require.Equal(a.t, http.StatusCreated, r.Status, r.Body)
	require.NotEmpty(a.t, r.Token)
	return r.Token, obj(a.t, r.Body, "user")["profileId"].(string)
}

func TestHireAndPayFlow(t *testing.T) {
	a := newTestApp(t)
	clientTok, clientID := registerClient(a)
	talentTok, talentID := registerTalent(a)

	r := a.do(http.MethodGet, "/api/auth/session", nil, talentTok)
	require.Equal(t, http.StatusOK, r.Status)
	user := obj(t, r.Body, "user")
	assert.Equal(t, "TALENT", user["userType"])
	assert.Equal(t, "Lagos", obj(t, user, "talent")["state"])

	r = a.do(http.MethodPost, "/api/jobs", map[string]any{
		"clientId":       clientID,
		"title":          "Payments dashboard",
		"description":    "React dashboard over our REST API",
		"requiredSkills": []string{"react"},
		"hourlyRate":     20,
	}, clientTok)
	require.Equal(t, http.StatusCreated, r.Status, r.Body)
	jobID := obj(t, r.Body, "job")["id"].(string)

	r = a.do(http.MethodGet, "/api/jobs", nil, "")
	require.Equal(t, http.StatusOK, r.Status)
	require.Len(t, r.Body["jobs"], 1)

	r = a.do(http.MethodPost, "/api/jobs/"+jobID+"/apply", map[string]any{
		"talentId":     talentID,
		"proposedRate": 22,
		"coverLetter":  "Shipped three of these",
	}, talentTok)
	require.Equal(t, http.StatusCreated, r.Status, r.Body)
	assert.Equal(t, "PENDING", obj(t, r.Body, "application")["status"])

	r = a.do(http.MethodPost, "/api/jobs/"+jobID+"/apply", map[string]any{
		"talentId":     talentID,
		"proposedRate": 22,
	}, talentTok)
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, false, r.Body["success"])

	r = a.do(http.MethodGet, "/api/jobs/"+jobID+"/apply", nil, "")
	require.Equal(t, http.StatusOK, r.Status)
	require.Len(t, r.Body["applications"], 1)

	r = a.do(http.MethodPost, "/api/contracts", map[string]any{
		"jobId":      jobID,
		"talentId":   talentID,
		"clientId":   clientID,
		"agreedRate": 22,
	}, clientTok)
	require.Equal(t, http.StatusCreated, r.Status, r.Body)
	contractID := obj(t, r.Body, "contract")["id"].(string)

	r = a.do(http.MethodPost, "/api/contracts/"+contractID+"/hours", map[string]any{"hours": 5}, talentTok)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	assert.EqualValues(t, 5, obj(t, r.Body, "contract")["hoursWorked"])

	r = a.do(http.MethodPost, "/api/payments", map[string]any{
		"contractId":    contractID,
		"amount":        100,
		"tip":           10,
		"paymentMethod": "CARD",
	}, clientTok)
	require.Equal(t, http.StatusCreated, r.Status, r.Body)
	payment := obj(t, r.Body, "payment")
	assert.Equal(t, "card", payment["paymentMethod"])
	assert.True(t, strings.HasPrefix(payment["transactionRef"].(string), "TXN-"))
	breakdown := obj(t, r.Body, "breakdown")
	assert.EqualValues(t, 15, breakdown["commission"])
	assert.EqualValues(t, 95, breakdown["talentReceives"])
	assert.EqualValues(t, 110, breakdown["clientPays"])

	r = a.do(http.MethodPost, "/api/payments/tip", map[string]any{
		"paymentId": payment["id"],
		"tip":       5,
	}, clientTok)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	assert.EqualValues(t, 15, obj(t, r.Body, "payment")["tip"])
	assert.EqualValues(t, 115, obj(t, r.Body, "payment")["totalPaid"])

	r = a.do(http.MethodPost, "/api/contracts/"+contractID+"/complete", nil, clientTok)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	assert.Equal(t, "COMPLETED", obj(t, r.Body, "contract")["status"])

	r = a.do(http.MethodPost, "/api/contracts/"+contractID+"/review", map[string]any{
		"rating":  5,
		"comment": "Great work",
	}, clientTok)
	require.Equal(t, http.StatusCreated, r.Status, r.Body)

	r = a.do(http.MethodGet, "/api/contracts/"+contractID, nil, talentTok)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	require.Len(t, obj(t, r.Body, "contract")["payments"], 1)

	r = a.do(http.MethodGet, "/api/talents/"+talentID, nil, "")
	require.Equal(t, http.StatusOK, r.Status)
	talent := obj(t, r.Body, "talent")
	assert.EqualValues(t, 100, talent["totalEarnings"])
	assert.EqualValues(t, 5, talent["averageRating"])

	r = a.do(http.MethodGet, "/api/talents/"+talentID+"/dashboard", nil, talentTok)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	r = a.do(http.MethodGet, "/api/clients/"+clientID+"/dashboard", nil, clientTok)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	r = a.do(http.MethodGet, "/api/clients/"+clientID+"/dashboard", nil, talentTok)
	assert.Equal(t, http.StatusForbidden, r.Status)

	assert.Equal(t, []string{
		events.JobPosted,
		events.ApplicationSubmitted,
		events.ContractCreated,
		events.PaymentProcessed,
		events.PaymentTipped,
		events.ContractCompleted,
	}, a.events.Keys())
}

func TestAuthErrors(t *testing.T) {
	a := newTestApp(t)
	clientTok, _ := registerClient(a)
	talentTok, _ := registerTalent(a)

	r := a.do(http.MethodPost, "/api/auth/register/talent", map[string]any{
		"email":       "bad@dev.ng",
		"password":    "supersecret",
		"fullName":    "Bad Phone",
		"phoneNumber": "12345",
		"state":       "Lagos",
	}, "")
	require.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, false, r.Body["success"])
	assert.Contains(t, obj(t, r.Body, "errors"), "phoneNumber")

	r = a.do(http.MethodPost, "/api/auth/register/client", map[string]any{
		"email":    "ada@acme.ng",
		"password": "supersecret",
		"name":     "Again",
		"country":  "Nigeria",
	}, "")
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Contains(t, r.Body["error"], "already")

	r = a.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "ada@acme.ng", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, r.Status)

	r = a.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "ADA@acme.ng", "password": "supersecret"}, "")
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	assert.NotEmpty(t, r.Token)

	r = a.do(http.MethodPost, "/api/jobs", map[string]any{"title": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, r.Status)
	assert.Equal(t, "Authentication required", r.Body["error"])

	r = a.do(http.MethodPost, "/api/jobs", map[string]any{"title": "x"}, talentTok)
	assert.Equal(t, http.StatusForbidden, r.Status)

	r = a.do(http.MethodGet, "/api/auth/session", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, r.Status)

	r = a.do(http.MethodGet, "/api/auth/session", nil, clientTok)
	assert.Equal(t, http.StatusOK, r.Status)

	r = a.do(http.MethodPost, "/api/auth/logout", nil, clientTok)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Empty(t, r.Token)
}

func TestNotFoundAndPublicRoutes(t *testing.T) {
	a := newTestApp(t)

	r := a.do(http.MethodGet, "/api/jobs/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusNotFound, r.Status)
	assert.Equal(t, "Job not found", r.Body["error"])

	r = a.do(http.MethodGet, "/api/talents/00000000-0000-0000-0000-000000000000", nil, "")
	assert.Equal(t, http.StatusNotFound, r.Status)

	r = a.do(http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, r.Status)
	assert.Equal(t, false, r.Body["success"])

	r = a.do(http.MethodGet, "/api/meta/states", nil, "")
	require.Equal(t, http.StatusOK, r.Status)
	assert.Len(t, r.Body["states"], len(utils.NigerianStates))

	r = a.do(http.MethodGet, "/api/payments/channels", nil, "")
	require.Equal(t, http.StatusOK, r.Status)
	assert.Len(t, r.Body["channels"], 4)

	r = a.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, true, r.Body["success"])

	r = a.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, r.Status)
}

func TestResumeUpload(t *testing.T) {
	a := newTestApp(t)
	talentTok, talentID := registerTalent(a)

	upload := func(filename string) reply {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("resume", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 resume"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/talents/"+talentID+"/resume", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return a.send(req, talentTok)
	}

	r := upload("cv.exe")
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Contains(t, obj(t, r.Body, "errors"), "resume")

	r = upload("cv.pdf")
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	url := obj(t, r.Body, "talent")["resumeUrl"].(string)
	assert.True(t, strings.HasPrefix(url, "http://test/uploads/resumes/"+talentID+"/"), url)
	assert.True(t, strings.HasSuffix(url, ".pdf"), url)
}

func TestTalentSearchHidesPrivateFields(t *testing.T) {
	a := newTestApp(t)
	_, talentID := registerTalent(a)

	r := a.do(http.MethodGet, "/api/talents", nil, "")
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	list, ok := r.Body["talents"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)

	card := list[0].(map[string]any)
	assert.Equal(t, talentID, card["id"])
	assert.Equal(t, "Tunde Bello", card["fullName"])
	assert.Equal(t, "Lagos", card["state"])
	assert.EqualValues(t, 25, card["hourlyRate"])
	assert.Contains(t, card, "bio")
	assert.Contains(t, card, "portfolioUrl")
	for _, private := range []string{"phoneNumber", "totalEarnings", "userId", "resumeUrl"} {
		assert.NotContains(t, card, private)
	}
}

func TestMetricsAfterMixedTraffic(t *testing.T) {
	a := newTestApp(t)
	clientTok, clientID := registerClient(a)
	registerTalent(a)

	for i := 0; i < 3; i++ {
		a.do(http.MethodGet, "/api/jobs", nil, "")
		a.do(http.MethodPost, "/api/jobs", map[string]any{
			"clientId":    clientID,
			"title":       "Landing page",
			"description": "Static landing page",
			"hourlyRate":  15,
		}, clientTok)
		a.do(http.MethodDelete, "/api/jobs/00000000-0000-0000-0000-000000000000", nil, clientTok)
		a.do(http.MethodPut, "/api/clients/"+clientID, map[string]any{"industry": "Fintech"}, clientTok)
	}

	r := a.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, r.Status)
}
