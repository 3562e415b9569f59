package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thobbytosin/flowva-server/pkg/logger"
)

func newTestMailer(t *testing.T, handler http.HandlerFunc) (*ResendMailer, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log, err := logger.New("error")
	require.NoError(t, err)

	return NewResendMailer("test-api-key", "Flowva <no-reply@flowva.app>", log).WithBaseURL(server.URL), server
}

func TestSendVerificationCode(t *testing.T) {
	var captured sendRequest
	var gotAuth string

	mailer, _ := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"msg_1"}`))
	})

	err := mailer.SendVerificationCode(context.Background(), "ada@example.com", "123456")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-api-key", gotAuth)
	assert.Equal(t, "Flowva <no-reply@flowva.app>", captured.From)
	assert.Equal(t, []string{"ada@example.com"}, captured.To)
	assert.Equal(t, "Account Verification", captured.Subject)
	assert.Contains(t, captured.HTML, "123456")
}

func TestSendWelcome(t *testing.T) {
	var captured sendRequest

	mailer, _ := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, mailer.SendWelcome(context.Background(), "a@b.com"))
	assert.Equal(t, "Welcome Message", captured.Subject)
	assert.Equal(t, []string{"a@b.com"}, captured.To)
}

func TestSendPasswordResetCarriesResetValue(t *testing.T) {
	var captured sendRequest

	mailer, _ := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, mailer.SendPasswordReset(context.Background(), "a@b.com", "reset-value"))
	assert.Equal(t, "Password Reset", captured.Subject)
	assert.Contains(t, captured.HTML, "reset-value")
}

func TestProviderRejectionIsAnError(t *testing.T) {
	mailer, _ := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid from address"}`))
	})

	err := mailer.SendWelcome(context.Background(), "a@b.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "invalid from address")
}

func TestUnreachableProviderIsAnError(t *testing.T) {
	mailer, server := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	err := mailer.SendWelcome(context.Background(), "a@b.com")
	assert.Error(t, err)
}
