package rtdn_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muscleai/entitlement/pkg/quota"
	"github.com/muscleai/entitlement/pkg/rtdn"
)

func newTestHandler(ledger rtdn.SubscriptionLedger) *rtdn.Handler {
	return rtdn.NewHandler(rtdn.NewProcessor(ledger))
}

func postWebhook(t *testing.T, h http.Handler, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/rtdn", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandler_ServeHTTP(t *testing.T) {
	t.Parallel()

	t.Run("valid notification", func(t *testing.T) {
		t.Parallel()

		ledger := &recordingLedger{}
		rec := postWebhook(t, newTestHandler(ledger),
			pubSubWrap(t, directNotification(t, rtdn.TypeRenewed, "tok-1", "muscleai.pro.monthly")))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeResponse(t, rec)["success"])
		assert.Equal(t, []string{"renewed(muscleai.pro.monthly):tok-1"}, ledger.calls)
	})

	t.Run("test notification returns 200", func(t *testing.T) {
		t.Parallel()

		ledger := &recordingLedger{}
		rec := postWebhook(t, newTestHandler(ledger),
			[]byte(`{"version":"1.0","packageName":"com.muscleai.app","testNotification":{"version":"1.0"}}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, ledger.calls)
	})

	t.Run("one-time product notification returns 200", func(t *testing.T) {
		t.Parallel()

		ledger := &recordingLedger{}
		rec := postWebhook(t, newTestHandler(ledger),
			pubSubWrap(t, []byte(`{"version":"1.0","packageName":"com.muscleai.app","eventTimeMillis":"1","oneTimeProductNotification":{"version":"1.0","notificationType":1,"purchaseToken":"tok-otp","sku":"muscleai.booster"}}`)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeResponse(t, rec)["success"])
		assert.Empty(t, ledger.calls)
	})

	t.Run("malformed payload returns 400 with zero writes", func(t *testing.T) {
		t.Parallel()

		ledger := &recordingLedger{}
		rec := postWebhook(t, newTestHandler(ledger), []byte("not json at all"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, false, decodeResponse(t, rec)["success"])
		assert.Empty(t, ledger.calls, "a rejected payload must not touch the ledger")
	})

	t.Run("unknown token still returns 200", func(t *testing.T) {
		t.Parallel()

		ledger := &recordingLedger{err: quota.ErrUnknownPurchaseToken}
		rec := postWebhook(t, newTestHandler(ledger),
			directNotification(t, rtdn.TypeCanceled, "never-seen", "muscleai.pro.monthly"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeResponse(t, rec)["success"])
	})

	t.Run("backend failure returns 500", func(t *testing.T) {
		t.Parallel()

		ledger := &recordingLedger{err: quota.ErrBackendUnavailable}
		rec := postWebhook(t, newTestHandler(ledger),
			directNotification(t, rtdn.TypeExpired, "tok-1", "muscleai.pro.monthly"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, false, decodeResponse(t, rec)["success"])
	})

	t.Run("non-post is rejected", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/rtdn", nil)
		rec := httptest.NewRecorder()
		newTestHandler(&recordingLedger{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	})
}
