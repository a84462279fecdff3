package rest

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"psylink/config"
	"psylink/internal/service"
)

type fakePaymentService struct {
	confirmedAppointmentID int64
	confirmedPaymentID     string
	confirmCalls           int
}

func (f *fakePaymentService) CreateCheckoutSession(ctx context.Context, appointmentID, patientID int64) (string, error) {
	return "", nil
}

func (f *fakePaymentService) ConfirmPayment(ctx context.Context, appointmentID int64, paymentID string) error {
	f.confirmCalls++
	f.confirmedAppointmentID = appointmentID
	f.confirmedPaymentID = paymentID
	return nil
}

const webhookTestSecret = "whsec_test_secret"

func newWebhookTestRouter(payment *fakePaymentService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Stripe: config.StripeConfig{WebhookSecret: webhookTestSecret},
	}
	h := NewHandler(&service.Services{Payment: payment}, zap.NewNop(), cfg, nil)

	router := gin.New()
	router.POST("/api/v1/payments/stripe/webhook", h.stripeWebhook)
	return router
}

func checkoutCompletedPayload() []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","api_version":%q,"type":"checkout.session.completed","data":{"object":{"id":"cs_test_1","client_reference_id":"5"}}}`,
		stripe.APIVersion,
	))
}

func signedHeader(payload []byte, secret string, at time.Time) string {
	signature := webhook.ComputeSignature(at, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(signature))
}

func TestStripeWebhookRejectsMissingSignature(t *testing.T) {
	payment := &fakePaymentService{}
	router := newWebhookTestRouter(payment)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/stripe/webhook", bytes.NewReader(checkoutCompletedPayload()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, payment.confirmCalls, "unsigned event must not confirm a payment")
}

func TestStripeWebhookRejectsForgedSignature(t *testing.T) {
	payment := &fakePaymentService{}
	router := newWebhookTestRouter(payment)

	payload := checkoutCompletedPayload()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signedHeader(payload, "whsec_wrong_secret", time.Now()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, payment.confirmCalls, "forged signature must not confirm a payment")
}

func TestStripeWebhookConfirmsSignedEvent(t *testing.T) {
	payment := &fakePaymentService{}
	router := newWebhookTestRouter(payment)

	payload := checkoutCompletedPayload()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signedHeader(payload, webhookTestSecret, time.Now()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, payment.confirmCalls)
	assert.Equal(t, int64(5), payment.confirmedAppointmentID)
	assert.Equal(t, "cs_test_1", payment.confirmedPaymentID)
}

func TestStripeWebhookIgnoresOtherEventTypes(t *testing.T) {
	payment := &fakePaymentService{}
	router := newWebhookTestRouter(payment)

	payload := []byte(fmt.Sprintf(
		`{"id":"evt_2","api_version":%q,"type":"payment_intent.created","data":{"object":{"id":"pi_1"}}}`,
		stripe.APIVersion,
	))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signedHeader(payload, webhookTestSecret, time.Now()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, payment.confirmCalls)
}
