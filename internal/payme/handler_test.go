package payme

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"exampay/internal/config"
	"exampay/internal/infrastructure/metrics"
	"exampay/internal/model"
)

// Prometheus collectors register globally, so the package shares one
// instance across tests.
var (
	testMetrics     *metrics.WebhookMetrics
	testMetricsOnce sync.Once
)

func webhookMetrics() *metrics.WebhookMetrics {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.NewWebhookMetrics()
	})
	return testMetrics
}

type webhookFixture struct {
	router *gin.Engine
	txns   *fakeTxnStore
	orders *fakeOrderStore
	ents   *mockEntitlements
	cfg    config.PaymeConfig
}

func newWebhookFixture(orders ...*model.Order) *webhookFixture {
	gin.SetMode(gin.TestMode)

	cfg := config.PaymeConfig{MerchantID: "Paycom", MerchantKey: "secret-key"}
	txns := newFakeTxnStore()
	orderStore := newFakeOrderStore(orders...)
	ents := new(mockEntitlements)

	merchant := NewMerchantService(cfg, txns, orderStore, ents, newFakeLocker())
	h := NewHandler(cfg, merchant, webhookMetrics())

	router := gin.New()
	router.POST("/payme/endpoint", h.Endpoint)

	return &webhookFixture{router: router, txns: txns, orders: orderStore, ents: ents, cfg: cfg}
}

func (f *webhookFixture) call(t *testing.T, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/payme/endpoint", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", basicHeader(f.cfg.MerchantID, f.cfg.MerchantKey))
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *webhookFixture) rpc(t *testing.T, id int64, method string, params interface{}) map[string]json.RawMessage {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"method": method,
		"params": params,
		"id":     id,
	})
	require.NoError(t, err)

	w := f.call(t, string(body), true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, resp map[string]json.RawMessage) int {
	t.Helper()
	require.Contains(t, resp, "error")
	var e struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(resp["error"], &e))
	return e.Code
}

func TestEndpointRejectsBadCredentials(t *testing.T) {
	f := newWebhookFixture(testOrder(1, 4990000, model.OrderStatusCreated))

	body := `{"method":"CreateTransaction","params":{"id":"payme-1","time":1700000000000,"amount":4990000,"account":{"order_id":"1"}},"id":1}`
	w := f.call(t, body, false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, CodeUnauthorized, errorCode(t, resp))

	// Auth runs before dispatch: nothing may have been written.
	stored, err := f.txns.GetByPaymeID(context.Background(), "payme-1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestEndpointUnknownMethod(t *testing.T) {
	f := newWebhookFixture()

	resp := f.rpc(t, 7, "GetStatement", map[string]interface{}{})
	assert.Equal(t, CodeMethodNotFound, errorCode(t, resp))

	// Error responses still carry the request id and an explicit null result.
	var id int64
	require.NoError(t, json.Unmarshal(resp["id"], &id))
	assert.Equal(t, int64(7), id)
	assert.Equal(t, "null", string(resp["result"]))
}

func TestEndpointMalformedJSON(t *testing.T) {
	f := newWebhookFixture()

	w := f.call(t, `{"method": "CreateTransaction", `, true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, CodeParseError, errorCode(t, resp))
}

func TestEndpointBusinessErrorIsHTTP200(t *testing.T) {
	f := newWebhookFixture()

	resp := f.rpc(t, 1, "CheckPerformTransaction", map[string]interface{}{
		"amount":  4990000,
		"account": map[string]string{"order_id": "999"},
	})
	assert.Equal(t, CodeOrderNotFound, errorCode(t, resp))
}

// Full lifecycle over HTTP: create, perform, cancel, check, asserting the
// wire shapes the gateway parses, including explicit nulls.
func TestEndpointTransactionLifecycle(t *testing.T) {
	f := newWebhookFixture(testOrder(1, 4990000, model.OrderStatusCreated))
	f.ents.On("Grant", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.ents.On("Revoke", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	createParams := map[string]interface{}{
		"id":      "payme-1",
		"time":    1700000000000,
		"amount":  4990000,
		"account": map[string]string{"order_id": "1"},
	}

	resp := f.rpc(t, 1, "CreateTransaction", createParams)
	require.NotContains(t, resp, "error")
	var created CreateResult
	require.NoError(t, json.Unmarshal(resp["result"], &created))
	assert.Equal(t, model.TxStateCreated, created.State)
	assert.Equal(t, int64(1700000000000), created.CreateTime)

	// Check before perform: perform_time, cancel_time and reason must be
	// literal nulls, not omitted.
	resp = f.rpc(t, 2, "CheckTransaction", map[string]string{"id": "payme-1"})
	var rawCheck map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(resp["result"], &rawCheck))
	assert.Equal(t, "null", string(rawCheck["perform_time"]))
	assert.Equal(t, "null", string(rawCheck["cancel_time"]))
	assert.Equal(t, "null", string(rawCheck["reason"]))

	resp = f.rpc(t, 3, "PerformTransaction", map[string]string{"id": "payme-1"})
	require.NotContains(t, resp, "error")
	var performed PerformResult
	require.NoError(t, json.Unmarshal(resp["result"], &performed))
	assert.Equal(t, model.TxStatePerformed, performed.State)
	assert.Equal(t, created.Transaction, performed.Transaction)

	// Gateway retry of the perform.
	resp = f.rpc(t, 4, "PerformTransaction", map[string]string{"id": "payme-1"})
	var replayed PerformResult
	require.NoError(t, json.Unmarshal(resp["result"], &replayed))
	assert.Equal(t, performed.PerformTime, replayed.PerformTime)
	f.ents.AssertNumberOfCalls(t, "Grant", 1)

	resp = f.rpc(t, 5, "CancelTransaction", map[string]interface{}{"id": "payme-1", "reason": 5})
	var cancelled CancelResult
	require.NoError(t, json.Unmarshal(resp["result"], &cancelled))
	assert.Equal(t, model.TxStateCancelledAfterPerform, cancelled.State)
	f.ents.AssertNumberOfCalls(t, "Revoke", 1)

	resp = f.rpc(t, 6, "CheckTransaction", map[string]string{"id": "payme-1"})
	var checked CheckResult
	require.NoError(t, json.Unmarshal(resp["result"], &checked))
	assert.Equal(t, model.TxStateCancelledAfterPerform, checked.State)
	require.NotNil(t, checked.Reason)
	assert.Equal(t, 5, *checked.Reason)
}
