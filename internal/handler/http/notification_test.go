package http

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationHandler_ValidationNotifiesEmployee(t *testing.T) {
	s := newTestServer(t)
	emp := s.hire(t, "EMP-001", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))
	c := consolidateJuly(t, s, emp.ID)

	status, env := s.do(t, http.MethodPost, "/api/v1/consolidations/"+c.ID+"/validate", &s.admin, nil)
	require.Equal(t, http.StatusOK, status, env.Error)

	unread := func() int {
		status, env := s.do(t, http.MethodGet, "/api/v1/notifications/unread-count", &emp, nil)
		require.Equal(t, http.StatusOK, status)
		var count notification.UnreadCountResponse
		decodeData(t, env, &count)
		return count.UnreadCount
	}
	require.Eventually(t, func() bool { return unread() == 1 }, 2*time.Second, 20*time.Millisecond)

	status, env = s.do(t, http.MethodGet, "/api/v1/notifications", &emp, nil)
	require.Equal(t, http.StatusOK, status)
	var list notification.NotificationListResponse
	decodeData(t, env, &list)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, notification.TypeConsolidationValidated, list.Notifications[0].Type)
	assert.Equal(t, c.ID, list.Notifications[0].Data["consolidation_id"])

	status, env = s.do(t, http.MethodPost, "/api/v1/notifications/read", &emp, map[string][]string{
		"notification_ids": {list.Notifications[0].ID},
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, 0, unread())

	// the admin is not the recipient
	status, env = s.do(t, http.MethodGet, "/api/v1/notifications", &s.admin, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &list)
	assert.Empty(t, list.Notifications)
}

func TestNotificationHandler_MarkAsRead_Rejections(t *testing.T) {
	s := newTestServer(t)
	emp := s.hire(t, "EMP-001", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))

	status, _ := s.do(t, http.MethodPost, "/api/v1/notifications/read", &emp, map[string][]string{
		"notification_ids": {},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/notifications/read", &emp, map[string][]string{
		"notification_ids": {"not-a-uuid"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestNotificationHandler_SSEToken(t *testing.T) {
	s := newTestServer(t)
	emp := s.hire(t, "EMP-001", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))

	status, env := s.do(t, http.MethodGet, "/api/v1/notifications/sse-token", &emp, nil)
	require.Equal(t, http.StatusOK, status)

	var token notification.SSETokenResponse
	decodeData(t, env, &token)
	assert.Positive(t, token.ExpiresIn)

	actor, err := s.jwt.ValidateSSEToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, emp.ID, actor.ID)

	// an SSE token is not an access token
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotificationHandler_Stream(t *testing.T) {
	s := newTestServer(t)
	emp := s.hire(t, "EMP-001", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))
	c := consolidateJuly(t, s, emp.ID)

	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	t.Run("rejects an invalid token", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/notifications/stream?token=garbage")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	token, _, err := s.jwt.GenerateSSEToken(emp)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/notifications/stream?token="+token, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		for strings.TrimSpace(line) == "" {
			line, err = reader.ReadString('\n')
			require.NoError(t, err)
		}
		return strings.TrimSpace(line)
	}
	assert.Equal(t, "event: connected", readEvent())

	status, env := s.do(t, http.MethodPost, "/api/v1/consolidations/"+c.ID+"/validate", &s.admin, nil)
	require.Equal(t, http.StatusOK, status, env.Error)

	// skip the data line of the connected event
	assert.True(t, strings.HasPrefix(readEvent(), "data: "))
	assert.Equal(t, "event: notification", readEvent())
	data := readEvent()
	assert.Contains(t, data, string(notification.TypeConsolidationValidated))
	assert.Contains(t, data, c.ID)
}
