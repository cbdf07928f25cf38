package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/notification"
	"github.com/google/uuid"
)

type notificationRepository struct {
	store *Store
}

func NewNotificationRepository(store *Store) notification.Repository {
	return &notificationRepository{store: store}
}

func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

func (r *notificationRepository) CreateBatch(_ context.Context, notifications []*notification.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	for _, n := range notifications {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		r.store.notifications = append(r.store.notifications, *n)
	}
	return nil
}

func (r *notificationRepository) GetByRecipient(_ context.Context, recipientID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*notification.Notification
	for i := range r.store.notifications {
		n := r.store.notifications[i]
		if n.RecipientID != recipientID || (unreadOnly && n.IsRead) {
			continue
		}
		matched = append(matched, &n)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	offset := (page - 1) * pageSize
	if offset >= total {
		return []*notification.Notification{}, total, nil
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *notificationRepository) GetUnreadCount(_ context.Context, recipientID string) (int, error) {
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

func (r *notificationRepository) MarkAsRead(_ context.Context, ids []string, recipientID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	now := time.Now()
	for i := range r.store.notifications {
		n := &r.store.notifications[i]
		if wanted[n.ID] && n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	for i := range r.store.notifications {
		n := &r.store.notifications[i]
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}
