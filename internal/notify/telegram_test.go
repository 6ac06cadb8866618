package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tlatoani315/estudiar-ipn/internal/config"
)

func newTestNotifier(t *testing.T, handler http.HandlerFunc) *TelegramNotifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	notifier, err := NewTelegramNotifier(
		config.TelegramConfig{Token: "123:abc", ChatID: "42", APIURL: server.URL},
		WithMaxRetryAttempts(2),
		WithRetryDelay(time.Millisecond),
	)
	require.NoError(t, err)
	return notifier
}

func writeJSON(w http.ResponseWriter, status int, body sendMessageResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestTelegramNotifier_Send(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int32
		wantErr   string
	}{
		{name: "delivered", statuses: []int{http.StatusOK}, wantCalls: 1},
		{name: "server error is retried", statuses: []int{http.StatusBadGateway, http.StatusOK}, wantCalls: 2},
		{name: "rate limit is retried", statuses: []int{http.StatusTooManyRequests, http.StatusOK}, wantCalls: 2},
		{
			name:      "bad request is not retried",
			statuses:  []int{http.StatusBadRequest},
			wantCalls: 1,
			wantErr:   "status code 400: Bad Request: chat not found",
		},
		{
			name:      "gives up after retries",
			statuses:  []int{http.StatusInternalServerError, http.StatusInternalServerError, http.StatusInternalServerError},
			wantCalls: 3,
			wantErr:   "status code 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			notifier := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
				i := calls.Add(1) - 1
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)

				var body sendMessageRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, sendMessageRequest{ChatID: "42", Text: "hello"}, body)

				status := tt.statuses[i]
				if status == http.StatusOK {
					writeJSON(w, status, sendMessageResponse{OK: true})
					return
				}
				writeJSON(w, status, sendMessageResponse{Description: "Bad Request: chat not found"})
			})

			err := notifier.Send(context.Background(), "hello")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestNewTelegramNotifier_RequiresCredentials(t *testing.T) {
	_, err := NewTelegramNotifier(config.TelegramConfig{APIURL: "https://api.telegram.org"})
	assert.ErrorContains(t, err, "TELEGRAM_TOKEN")
}
