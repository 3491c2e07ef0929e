package notification

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/config"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/estate-attendance-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg config.NotificationConfig) (notification.Service, *memory.NotificationRepository, *sse.Hub) {
	t.Helper()
	repo := memory.NewNotificationRepository(memory.NewStore())
	hub := sse.NewHub()
	svc := NewNotificationService(repo, hub, cfg)
	t.Cleanup(svc.Stop)
	return svc, repo, hub
}

func TestQueueNotification_PersistsAndPushes(t *testing.T) {
	ctx := context.Background()
	svc, _, hub := newTestService(t, config.NotificationConfig{BatchSize: 1, FlushInterval: time.Hour, WorkerCount: 1})

	events, cancel := hub.Subscribe("w1")
	defer cancel()

	require.NoError(t, svc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: "w1",
		Type:        notification.TypePermitApproved,
		Title:       "Permit approved",
		Message:     "ok",
	}))

	select {
	case ev := <-events:
		assert.Equal(t, Event, ev.Event)
		resp, ok := ev.Data.(notification.NotificationResponse)
		require.True(t, ok)
		assert.Equal(t, "Permit approved", resp.Title)
		assert.NotEmpty(t, resp.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not pushed")
	}

	list, err := svc.GetNotifications(ctx, "w1", 1, 20, false)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 1, list.UnreadCount)
}

func TestQueueNotification_SkipsEmptyRecipient(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t, config.NotificationConfig{})

	require.NoError(t, svc.QueueNotification(ctx, notification.CreateNotificationRequest{Title: "nobody"}))
	svc.Stop()

	count, err := repo.GetUnreadCount(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStop_FlushesPendingBatch(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t, config.NotificationConfig{BatchSize: 100, FlushInterval: time.Hour, WorkerCount: 2})

	reqs := make([]notification.CreateNotificationRequest, 5)
	for i := range reqs {
		reqs[i] = notification.CreateNotificationRequest{RecipientID: "sup", Type: notification.TypePermitSubmitted, Title: "t"}
	}
	require.NoError(t, svc.QueueBulkNotification(ctx, reqs))

	svc.Stop()
	svc.Stop()

	count, err := repo.GetUnreadCount(ctx, "sup")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestQueueNotification_FullQueueInsertsDirectly(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewNotificationRepository(memory.NewStore())
	// no workers drain this queue
	s := &service{
		repo:   repo,
		now:    time.Now,
		queue:  make(chan notification.CreateNotificationRequest, 1),
		stopCh: make(chan struct{}),
	}

	require.NoError(t, s.QueueNotification(ctx, notification.CreateNotificationRequest{RecipientID: "w1", Title: "queued"}))
	require.NoError(t, s.QueueNotification(ctx, notification.CreateNotificationRequest{RecipientID: "w1", Title: "direct"}))

	items, total, err := repo.GetByRecipient(ctx, "w1", 1, 10, false)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "direct", items[0].Title)
}

func TestGetNotifications_PagingAndMarkAllAsRead(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t, config.NotificationConfig{})

	for i := 0; i < 25; i++ {
		require.NoError(t, repo.Create(ctx, &notification.Notification{RecipientID: "w1", Title: "n", CreatedAt: time.Now()}))
	}

	page, err := svc.GetNotifications(ctx, "w1", 0, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Len(t, page.Notifications, 20)
	assert.Equal(t, 25, page.Total)

	page, err = svc.GetNotifications(ctx, "w1", 2, 20, false)
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 5)

	require.NoError(t, svc.MarkAllAsRead(ctx, "w1"))

	page, err = svc.GetNotifications(ctx, "w1", 1, 20, true)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 0, page.UnreadCount)
}
