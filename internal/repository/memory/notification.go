package memory

import (
	"context"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/notification"
)

type notificationRow = notification.Notification

type NotificationRepository struct {
	store *Store
}

var _ notification.Repository = (*NotificationRepository)(nil)

func NewNotificationRepository(store *Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

func (r *NotificationRepository) CreateBatch(_ context.Context, items []*notification.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, n := range items {
		if n.ID == "" {
			n.ID = r.store.nextID("notification")
		}
		r.store.notifications = append(r.store.notifications, *n)
	}
	return nil
}

// GetByRecipient pages newest first.
func (r *NotificationRepository) GetByRecipient(_ context.Context, recipientID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*notification.Notification
	for i := len(r.store.notifications) - 1; i >= 0; i-- {
		n := r.store.notifications[i]
		if n.RecipientID != recipientID || (unreadOnly && n.IsRead) {
			continue
		}
		matched = append(matched, &n)
	}

	total := len(matched)
	start := (page - 1) * pageSize
	if start >= total {
		return []*notification.Notification{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *NotificationRepository) GetUnreadCount(_ context.Context, recipientID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, n := range r.store.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) MarkAllAsRead(_ context.Context, recipientID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.store.now()
	for i := range r.store.notifications {
		n := &r.store.notifications[i]
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}
