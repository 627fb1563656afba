package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loan-engine/internal/auth"
	"loan-engine/internal/config"
	"loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/payment"
	"loan-engine/internal/domain/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

const testSecret = "router-test-secret"

type stubLoans struct {
	loan.Service
	seen auth.Actor
}

func (s *stubLoans) ListLoans(_ context.Context, actor auth.Actor) ([]*loan.Loan, error) {
	s.seen = actor
	return []*loan.Loan{{ID: 1, Status: loan.StatusActive}}, nil
}

type stubPayments struct{ payment.Service }

type stubProducts struct{ product.Service }

func (stubProducts) GetProduct(_ context.Context, id int64) (*product.Product, error) {
	return &product.Product{ID: id, Name: "SME"}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Auth: config.AuthConfig{Enabled: true, JWTSecret: testSecret, TokenTTL: time.Hour},
		},
		Metrics: config.MetricsConfig{Path: "/metrics"},
		Loan:    config.LoanConfig{DefaultPaymentFrequency: "monthly"},
	}
}

func newTestRouter(t *testing.T, ping func(context.Context) error) (http.Handler, *stubLoans) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	loans := &stubLoans{}
	router := SetupRouter(ctx, Dependencies{
		Loans:    loans,
		Payments: stubPayments{},
		Products: stubProducts{},
		Ping:     ping,
	}, testConfig(), logger)
	return router, loans
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	router, _ = newTestRouter(t, func(context.Context) error { return errors.New("db down") })
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	for _, path := range []string{"/loans", "/payments", "/loan-products"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestLoanRoutesDispatchWithActor(t *testing.T) {
	router, loans := newTestRouter(t, nil)

	token, _, err := auth.IssueToken(testSecret, auth.Actor{ID: 5, Role: auth.RoleManager}, time.Hour, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/loans", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, auth.Actor{ID: 5, Role: auth.RoleManager}, loans.seen)

	var body []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body, 1)
}

func TestProductRouteParams(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	token, _, err := auth.IssueToken(testSecret, auth.Actor{ID: 9, Role: auth.RoleClient}, time.Hour, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/loan-products/3", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "3", body["id"])
}

func TestSwaggerRedirect(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger", nil))

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/swagger/index.html", rec.Header().Get("Location"))
}
