package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

func newInferenceServer(t *testing.T, status int, body string, seen *classifyRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLLMClassifier_DecodesAction(t *testing.T) {
	// Arrange
	var seen classifyRequest
	server := newInferenceServer(t, http.StatusOK, `{"action":"REMOVE_STOCK","itemName":"Classic Cola","quantity":3}`, &seen)
	classifier := NewLLMClassifier(LLMConfig{Endpoint: server.URL, APIKey: "secret", Model: "test-model", Timeout: time.Second})
	inventory := []models.ItemSnapshot{{Name: "Classic Cola", Stock: 12}}

	// Act
	action, err := classifier.Classify(context.Background(), "remove 3 cola", inventory)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.RemoveStock{ItemName: "Classic Cola", Quantity: 3}, action)
	assert.Equal(t, "remove 3 cola", seen.Command)
	assert.Equal(t, "test-model", seen.Model)
	assert.Equal(t, inventory, seen.Inventory)
	assert.NotEmpty(t, seen.Prompt)
}

func TestLLMClassifier_IncompleteAnswerIsUnknown(t *testing.T) {
	server := newInferenceServer(t, http.StatusOK, `{"action":"ADD_STOCK","itemName":"Classic Cola"}`, nil)
	classifier := NewLLMClassifier(LLMConfig{Endpoint: server.URL, APIKey: "secret", Timeout: time.Second})

	action, err := classifier.Classify(context.Background(), "add cola", nil)

	require.NoError(t, err)
	assert.Equal(t, models.MissingFields("item name or quantity"), action)
}

func TestLLMClassifier_MalformedAnswerIsUnknown(t *testing.T) {
	server := newInferenceServer(t, http.StatusOK, `I am not JSON`, nil)
	classifier := NewLLMClassifier(LLMConfig{Endpoint: server.URL, APIKey: "secret", Timeout: time.Second})

	action, err := classifier.Classify(context.Background(), "hello", nil)

	require.NoError(t, err)
	assert.IsType(t, models.Unknown{}, action)
}

func TestLLMClassifier_ErrorStatusIsSystemError(t *testing.T) {
	server := newInferenceServer(t, http.StatusServiceUnavailable, `{"error":"overloaded"}`, nil)
	classifier := NewLLMClassifier(LLMConfig{Endpoint: server.URL, APIKey: "secret", Timeout: time.Second})

	action, err := classifier.Classify(context.Background(), "remove 3 cola", nil)

	require.Error(t, err)
	assert.Nil(t, action)
	assert.True(t, models.IsSystemError(err))
	assert.Equal(t, models.ErrorCodeClassifierError, models.GetErrorCode(err))
}

func TestLLMClassifier_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)
	classifier := NewLLMClassifier(LLMConfig{Endpoint: server.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := classifier.Classify(ctx, "remove 3 cola", nil)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
