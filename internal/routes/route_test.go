package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gatepass/internal/config"
	"github.com/joshua-takyi/gatepass/internal/container"
	"github.com/joshua-takyi/gatepass/internal/models"
	"github.com/joshua-takyi/gatepass/internal/payment"
	"github.com/joshua-takyi/gatepass/internal/tickets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiResponse struct {
	Success bool            `json:"success"`
	Status  string          `json:"status"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	verifier *payment.Verifier
	links    *tickets.LinkSigner
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payment.Order{
			ID: "order_1", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created",
		})
	}))
	t.Cleanup(gateway.Close)

	cfg := &config.Config{
		Environment:        "test",
		StoreDriver:        config.StoreMemory,
		PaymentKeySecret:   "gateway-secret",
		PaymentKeyID:       "key_id",
		PaymentBaseURL:     gateway.URL,
		Currency:           "INR",
		JWTSecret:          "jwt-secret",
		JWTKeyID:           "admin-1",
		AdminUsername:      "gate",
		AdminPassword:      "open-sesame",
		AdminTokenTTL:      time.Hour,
		EventName:          "Gatepass Live",
		PublicBaseURL:      "http://tickets.test",
		TicketLinkSecret:   "link-secret",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		ServiceName:        "gatepass-test",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := container.NewContainer(cfg, logger, models.NewMemoryRepo())
	require.NoError(t, err)

	verifier, err := payment.NewVerifier(cfg.PaymentKeySecret)
	require.NoError(t, err)

	return &testServer{
		t:        t,
		router:   SetupRoutes(c),
		verifier: verifier,
		links:    tickets.NewLinkSigner(cfg.TicketLinkSecret),
	}
}

func (s *testServer) do(method, path string, body any, token string) (*httptest.ResponseRecorder, apiResponse) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Header().Get("Content-Type") != "application/pdf" {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

func (s *testServer) confirmation(orderID, paymentID string) map[string]any {
	return map[string]any{
		"order_id":           orderID,
		"payment_id":         paymentID,
		"signature":          s.verifier.Sign(orderID, paymentID),
		"fullName":           "Asha Rao",
		"email":              "asha@example.com",
		"phone":              "9999999999",
		"selectedTicketType": "day-pass",
		"quantity":           2,
		"totalAmount":        398,
	}
}

func (s *testServer) login() string {
	s.t.Helper()
	w, resp := s.do(http.MethodPost, "/api/v1/admin/login", map[string]string{"username": "gate", "password": "open-sesame"}, "")
	require.Equal(s.t, http.StatusOK, w.Code)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(s.t, data.Token)
	return data.Token
}

func TestHealthAndPrices(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := s.do(http.MethodGet, "/api/v1/prices", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var p models.Pricing
	require.NoError(t, json.Unmarshal(resp.Data, &p))
	assert.Equal(t, 199.0, p.DayPass)
	assert.Equal(t, 699.0, p.SeasonPass)
}

func TestCreateOrder(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(http.MethodPost, "/api/v1/payment/create-order", map[string]any{"amount": 398}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var order payment.Order
	require.NoError(t, json.Unmarshal(resp.Data, &order))
	assert.Equal(t, "order_1", order.ID)
	assert.Equal(t, int64(39800), order.Amount)
	assert.Equal(t, "INR", order.Currency)

	w, resp = s.do(http.MethodPost, "/api/v1/payment/create-order", map[string]any{"amount": -3}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.StatusInvalidRequest, resp.Status)
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t)

	// order_1 / pay_1: two day passes for 398
	w, resp := s.do(http.MethodPost, "/api/v1/payment/verify-payment", s.confirmation("order_1", "pay_1"), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.StatusSuccess, resp.Status)

	var result struct {
		Booking   models.Booking `json:"booking"`
		TicketURL string         `json:"ticketUrl"`
		Replayed  bool           `json:"replayed"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, "DP-0001", result.Booking.SerialNumber)
	assert.Equal(t, "pay_1", result.Booking.PaymentID)
	assert.Equal(t, models.DayPass.Label, result.Booking.TicketType)
	assert.Equal(t, 398.0, result.Booking.TotalAmount)
	assert.False(t, result.Replayed)

	// resubmission answers with the same booking
	w, resp = s.do(http.MethodPost, "/api/v1/payment/verify-payment", s.confirmation("order_1", "pay_1"), "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.True(t, result.Replayed)
	assert.Equal(t, "DP-0001", result.Booking.SerialNumber)

	// forged signature
	forged := s.confirmation("order_2", "pay_2")
	forged["signature"] = s.verifier.Sign("order_2", "pay_other")
	w, resp = s.do(http.MethodPost, "/api/v1/payment/verify-payment", forged, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.StatusFailed, resp.Status)

	// conflicting resubmission
	changed := s.confirmation("order_1", "pay_1")
	changed["quantity"] = 3
	w, resp = s.do(http.MethodPost, "/api/v1/payment/verify-payment", changed, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.StatusConflict, resp.Status)

	// public download through the signed link
	u, err := url.Parse(result.TicketURL)
	require.NoError(t, err)
	w, _ = s.do(http.MethodGet, u.RequestURI(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Ticket_DP-0001.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w, resp = s.do(http.MethodGet, "/api/v1/tickets/DP-0001/download", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, models.StatusUnauthorized, resp.Status)

	w, resp = s.do(http.MethodGet, "/api/v1/tickets/DP-0404/download?token="+s.links.Token("DP-0404"), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.StatusNotFound, resp.Status)
}

func TestVerifyPaymentValidation(t *testing.T) {
	s := newTestServer(t)

	body := s.confirmation("order_1", "pay_1")
	body["quantity"] = 0
	w, resp := s.do(http.MethodPost, "/api/v1/payment/verify-payment", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.StatusInvalidRequest, resp.Status)

	underpaid := s.confirmation("order_1", "pay_1")
	underpaid["quantity"] = 50
	underpaid["totalAmount"] = 1
	w, resp = s.do(http.MethodPost, "/api/v1/payment/verify-payment", underpaid, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.StatusInvalidRequest, resp.Status)

	w, resp = s.do(http.MethodPost, "/api/v1/payment/verify-payment", "not an object", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.StatusInvalidRequest, resp.Status)
}

func TestAdminRequiresToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/v1/admin/bookings", "/api/v1/admin/tickets/DP-0001/download"} {
		w, resp := s.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, models.StatusUnauthorized, resp.Status, path)
	}
	w, _ := s.do(http.MethodPut, "/api/v1/admin/prices", map[string]any{"dayPass": 1, "seasonPass": 2}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodDelete, "/api/v1/admin/bookings", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp := s.do(http.MethodPost, "/api/v1/admin/login", map[string]string{"username": "gate", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, models.StatusUnauthorized, resp.Status)
}

func TestAdminFlow(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(http.MethodPost, "/api/v1/payment/verify-payment", s.confirmation("order_1", "pay_1"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	token := s.login()

	w, resp := s.do(http.MethodGet, "/api/v1/admin/bookings", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var dash struct {
		TotalBookings  int              `json:"totalBookings"`
		TotalRevenue   float64          `json:"totalRevenue"`
		DayPassRevenue float64          `json:"dayPassRevenue"`
		Bookings       []models.Booking `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &dash))
	assert.Equal(t, 1, dash.TotalBookings)
	assert.Equal(t, 398.0, dash.DayPassRevenue)
	require.Len(t, dash.Bookings, 1)

	// gate scans
	payload, err := tickets.EncodePayload(tickets.PayloadFor(&dash.Bookings[0]))
	require.NoError(t, err)
	w, resp = s.do(http.MethodPost, "/api/v1/admin/verify-qr", map[string]string{"qrData": payload}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusValid, resp.Status)
	assert.True(t, resp.Success)

	w, resp = s.do(http.MethodPost, "/api/v1/admin/verify-qr",
		map[string]string{"qrData": `{"serialNumber":"DP-0001","paymentId":"pay_forged"}`}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusInvalid, resp.Status)
	assert.False(t, resp.Success)

	w, resp = s.do(http.MethodPost, "/api/v1/admin/verify-qr", map[string]string{"qrData": `{"paymentId":"x"}`}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.StatusInvalidRequest, resp.Status)

	// admin download needs no link token
	w, _ = s.do(http.MethodGet, "/api/v1/admin/tickets/DP-0001/download", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	// prices
	w, resp = s.do(http.MethodPut, "/api/v1/admin/prices", map[string]any{"dayPass": 0, "seasonPass": 500}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.StatusInvalidRequest, resp.Status)

	w, _ = s.do(http.MethodPut, "/api/v1/admin/prices", map[string]any{"dayPass": 249, "seasonPass": "799"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	_, resp = s.do(http.MethodGet, "/api/v1/prices", nil, "")
	var p models.Pricing
	require.NoError(t, json.Unmarshal(resp.Data, &p))
	assert.Equal(t, 249.0, p.DayPass)
	assert.Equal(t, 799.0, p.SeasonPass)

	// purge
	w, resp = s.do(http.MethodDelete, "/api/v1/admin/bookings", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":1}`, string(resp.Data))
}
