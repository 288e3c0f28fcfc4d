package greenapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Send(t *testing.T) {
	var got sendRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"idMessage":"3EB0C767D097B7C7C030"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "1101", "secret")
	err := c.Send(context.Background(), "+628111", "hello")

	require.NoError(t, err)
	assert.Equal(t, "/waInstance1101/sendMessage/secret", path)
	assert.Equal(t, "628111@c.us", got.ChatID)
	assert.Equal(t, "hello", got.Message)
}

func TestClient_SendNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "1101", "secret")
	err := c.Send(context.Background(), "628111", "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_SendMissingMessageID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "1101", "secret")
	err := c.Send(context.Background(), "628111", "hello")

	assert.Error(t, err)
}

func TestChatIDConversions(t *testing.T) {
	assert.Equal(t, "628111@c.us", ChatIDFromPhone("628111"))
	assert.Equal(t, "628111@c.us", ChatIDFromPhone("628111@c.us"))

	phone, ok := PhoneFromChatID("628111@c.us")
	assert.True(t, ok)
	assert.Equal(t, "628111", phone)

	_, ok = PhoneFromChatID("120363043968066561@g.us")
	assert.False(t, ok)
}
