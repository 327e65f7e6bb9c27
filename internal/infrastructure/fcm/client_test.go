package fcm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/madadgarapp/listings-api/internal/application/push"
	"github.com/madadgarapp/listings-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(&config.Config{
		FCMEndpoint:  srv.URL,
		FCMServerKey: "test-server-key",
	})
	require.NoError(t, err)
	return c
}

func baseMessage() push.Message {
	return push.Message{
		Title:     "New Food Available",
		Body:      "Bread has been shared in Downtown",
		ChannelID: "madadgar_notifications",
		Sound:     "default",
		Priority:  "high",
		Data:      map[string]string{"item_id": "item-1", "type": "new_listing"},
	}
}

func TestNewClient_RequiresServerKey(t *testing.T) {
	_, err := NewClient(&config.Config{FCMEndpoint: "https://fcm.googleapis.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FCM_SERVER_KEY")
}

func TestSend_Success(t *testing.T) {
	var got map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/fcm/send", r.URL.Path)
		assert.Equal(t, "key=test-server-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": 1, "failure": 0})
	})

	err := c.Send(context.Background(), "tok-abc", baseMessage())
	require.NoError(t, err)

	assert.Equal(t, "tok-abc", got["to"])
	notif := got["notification"].(map[string]interface{})
	assert.Equal(t, "New Food Available", notif["title"])
	assert.Equal(t, "ic_notification", notif["icon"])
	assert.Equal(t, "OPEN_APP", notif["click_action"])
	android := got["android"].(map[string]interface{})["notification"].(map[string]interface{})
	assert.Equal(t, "madadgar_notifications", android["channel_id"])
	assert.Equal(t, "high", android["priority"])
	aps := got["apns"].(map[string]interface{})["payload"].(map[string]interface{})["aps"].(map[string]interface{})
	assert.Equal(t, float64(1), aps["badge"])
	data := got["data"].(map[string]interface{})
	assert.Equal(t, "item-1", data["item_id"])
}

func TestSend_UpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": 0,
			"failure": 1,
			"results": []map[string]interface{}{{"error": "NotRegistered"}},
		})
	})

	err := c.Send(context.Background(), "tok-stale", baseMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NotRegistered")
}

func TestSend_UnknownError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{})
	})

	err := c.Send(context.Background(), "tok-abc", baseMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown FCM error")
}
