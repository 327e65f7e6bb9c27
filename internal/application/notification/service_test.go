package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/madadgarapp/listings-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockNotificationStore struct{ mock.Mock }

func (m *mockNotificationStore) BatchPut(ctx context.Context, rows []domain.Notification) error {
	return m.Called(ctx, rows).Error(0)
}
func (m *mockNotificationStore) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNotificationStore) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	if rows, _ := args.Get(0).([]domain.Notification); rows != nil {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNotificationStore) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	if rows, _ := args.Get(0).([]domain.Notification); rows != nil {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNotificationStore) MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNotificationStore) Delete(ctx context.Context, notificationID string) error {
	return m.Called(ctx, notificationID).Error(0)
}

type mockDeviceSource struct{ mock.Mock }

func (m *mockDeviceSource) ListActiveUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if ids, _ := args.Get(0).([]string); ids != nil {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockProfileSource struct{ mock.Mock }

func (m *mockProfileSource) ListUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if ids, _ := args.Get(0).([]string); ids != nil {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func newService(ns *mockNotificationStore, ds *mockDeviceSource, ps *mockProfileSource) Service {
	return NewService(ServiceDeps{
		NotificationRepo: ns,
		DeviceRepo:       ds,
		UserRepo:         ps,
	})
}

// --- ResolveRecipients ---

func TestResolveRecipients_UnionExcludesActor(t *testing.T) {
	ds := &mockDeviceSource{}
	ds.On("ListActiveUserIDs", mock.Anything).Return([]string{"u2", "u3"}, nil)
	ps := &mockProfileSource{}
	ps.On("ListUserIDs", mock.Anything).Return([]string{"u1", "u3", "u4"}, nil)

	svc := newService(&mockNotificationStore{}, ds, ps)
	got, err := svc.ResolveRecipients(context.Background(), "u1")

	require.NoError(t, err)
	// Device users first, then profile users, first occurrence wins.
	assert.Equal(t, []string{"u2", "u3", "u4"}, got)
}

func TestResolveRecipients_ActorMatchIsTrimmedAndCaseInsensitive(t *testing.T) {
	ds := &mockDeviceSource{}
	ds.On("ListActiveUserIDs", mock.Anything).Return([]string{"User-9", "u2"}, nil)
	ps := &mockProfileSource{}
	ps.On("ListUserIDs", mock.Anything).Return([]string{}, nil)

	svc := newService(&mockNotificationStore{}, ds, ps)
	got, err := svc.ResolveRecipients(context.Background(), "  user-9 ")

	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, got)
}

func TestResolveRecipients_EmptyActorExcludesNobody(t *testing.T) {
	ds := &mockDeviceSource{}
	ds.On("ListActiveUserIDs", mock.Anything).Return([]string{"u1"}, nil)
	ps := &mockProfileSource{}
	ps.On("ListUserIDs", mock.Anything).Return([]string{"u2"}, nil)

	svc := newService(&mockNotificationStore{}, ds, ps)
	got, err := svc.ResolveRecipients(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, got)
}

func TestResolveRecipients_FailedSourceContributesNothing(t *testing.T) {
	ds := &mockDeviceSource{}
	ds.On("ListActiveUserIDs", mock.Anything).Return(nil, errors.New("scan throttled"))
	ps := &mockProfileSource{}
	ps.On("ListUserIDs", mock.Anything).Return([]string{"u5"}, nil)

	svc := newService(&mockNotificationStore{}, ds, ps)
	got, err := svc.ResolveRecipients(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, []string{"u5"}, got)
}

// --- CreateForRecipients ---

func TestCreateForRecipients_EmptyIsNoOp(t *testing.T) {
	ns := &mockNotificationStore{}
	svc := newService(ns, &mockDeviceSource{}, &mockProfileSource{})

	rows, err := svc.CreateForRecipients(context.Background(), nil, domain.NotificationTypeNewListing, "t", "b", nil)

	require.NoError(t, err)
	assert.Nil(t, rows)
	ns.AssertNotCalled(t, "BatchPut", mock.Anything, mock.Anything)
}

func TestCreateForRecipients_OneRowPerRecipient(t *testing.T) {
	var written []domain.Notification
	ns := &mockNotificationStore{}
	ns.On("BatchPut", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		written = args.Get(1).([]domain.Notification)
	}).Return(nil)

	svc := newService(ns, &mockDeviceSource{}, &mockProfileSource{})
	payload := map[string]string{
		domain.PayloadKeyItemID:   "item-1",
		domain.PayloadKeyCategory: "Food",
		domain.PayloadKeyTitle:    "Bread",
		domain.PayloadKeyLocation: "Downtown",
	}
	rows, err := svc.CreateForRecipients(context.Background(), []string{"u1", "u2"},
		domain.NotificationTypeNewListing, "New Food Available", "Bread has been shared in Downtown", payload)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Len(t, written, 2)
	assert.Equal(t, "u1", written[0].UserID)
	assert.Equal(t, "u2", written[1].UserID)
	assert.NotEqual(t, written[0].NotificationID, written[1].NotificationID)
	for _, n := range written {
		assert.Equal(t, domain.NotificationTypeNewListing, n.Type)
		assert.False(t, n.IsRead)
		assert.Equal(t, "Bread", n.Payload[domain.PayloadKeyTitle])
		assert.Equal(t, "Downtown", n.Payload[domain.PayloadKeyLocation])
	}
}

// --- MarkRead / Delete ownership ---

func TestMarkRead_OwnerOnly(t *testing.T) {
	ns := &mockNotificationStore{}
	ns.On("Get", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "u1"}, nil)

	svc := newService(ns, &mockDeviceSource{}, &mockProfileSource{})
	_, err := svc.MarkRead(context.Background(), "n1", "u2")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	ns.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
}

func TestMarkRead_PersistsFlag(t *testing.T) {
	ns := &mockNotificationStore{}
	ns.On("Get", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "u1"}, nil)
	ns.On("MarkRead", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "u1", IsRead: true}, nil)

	svc := newService(ns, &mockDeviceSource{}, &mockProfileSource{})
	got, err := svc.MarkRead(context.Background(), "n1", "u1")

	require.NoError(t, err)
	assert.True(t, got.IsRead)
	ns.AssertExpectations(t)
}

func TestDelete_OwnerOnly(t *testing.T) {
	ns := &mockNotificationStore{}
	ns.On("Get", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "u1"}, nil)

	svc := newService(ns, &mockDeviceSource{}, &mockProfileSource{})
	err := svc.Delete(context.Background(), "n1", "u2")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	ns.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUnreadCount(t *testing.T) {
	ns := &mockNotificationStore{}
	ns.On("ListUnread", mock.Anything, "u1").Return([]domain.Notification{{}, {}, {}}, nil)

	svc := newService(ns, &mockDeviceSource{}, &mockProfileSource{})
	n, err := svc.UnreadCount(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
