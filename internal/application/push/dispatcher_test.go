package push

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

type mockTokenStore struct{ mock.Mock }

func (m *mockTokenStore) ListActiveByUsers(ctx context.Context, userIDs []string) ([]domain.DeviceToken, error) {
	args := m.Called(ctx, userIDs)
	if rows, _ := args.Get(0).([]domain.DeviceToken); rows != nil {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLogStore struct{ mock.Mock }

func (m *mockLogStore) Put(ctx context.Context, l *domain.SendLog) error {
	return m.Called(ctx, l).Error(0)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Send(ctx context.Context, token string, msg Message) error {
	return m.Called(ctx, token, msg).Error(0)
}

func newDispatcher(ts *mockTokenStore, ls *mockLogStore, gw *mockGateway) Dispatcher {
	return NewDispatcher(Deps{
		TokenRepo: ts,
		LogRepo:   ls,
		Gateway:   gw,
		ChannelID: "madadgar_notifications",
	})
}

func tokenRow(userID, token string) domain.DeviceToken {
	return domain.DeviceToken{UserID: userID, DeviceToken: token, Platform: domain.PlatformAndroid, IsActive: true}
}

// --- tests ---

func TestDispatch_MissingFields(t *testing.T) {
	gw := &mockGateway{}
	svc := newDispatcher(&mockTokenStore{}, &mockLogStore{}, gw)

	cases := []DispatchRequest{
		{Title: "t", Body: "b"},
		{UserIDs: []string{"u1"}, Body: "b"},
		{UserIDs: []string{"u1"}, Title: "t"},
	}
	for _, req := range cases {
		_, err := svc.Dispatch(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrBadRequest))
	}
	gw.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_NoActiveTokens(t *testing.T) {
	ts := &mockTokenStore{}
	ts.On("ListActiveByUsers", mock.Anything, []string{"u1"}).Return([]domain.DeviceToken{}, nil)
	gw := &mockGateway{}

	svc := newDispatcher(ts, &mockLogStore{}, gw)
	res, err := svc.Dispatch(context.Background(), DispatchRequest{
		UserIDs: []string{"u1"}, Title: "t", Body: "b",
	})

	require.NoError(t, err)
	assert.Equal(t, "No active device tokens found", res.Message)
	assert.Zero(t, res.SentCount)
	assert.Zero(t, res.FailedCount)
	assert.Empty(t, res.Details)
	gw.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_TokenLookupFailureDegradesToEmpty(t *testing.T) {
	ts := &mockTokenStore{}
	ts.On("ListActiveByUsers", mock.Anything, []string{"u1"}).Return(nil, errors.New("dynamo unavailable"))
	gw := &mockGateway{}

	svc := newDispatcher(ts, &mockLogStore{}, gw)
	res, err := svc.Dispatch(context.Background(), DispatchRequest{
		UserIDs: []string{"u1"}, Title: "t", Body: "b",
	})

	require.NoError(t, err)
	assert.Equal(t, "No active device tokens found", res.Message)
	gw.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_PartialFailure(t *testing.T) {
	ts := &mockTokenStore{}
	ts.On("ListActiveByUsers", mock.Anything, []string{"u1", "u2"}).Return([]domain.DeviceToken{
		tokenRow("u1", "tok-aaa"),
		tokenRow("u1", "tok-bbb"),
		tokenRow("u2", "tok-ccc"),
	}, nil)

	gw := &mockGateway{}
	gw.On("Send", mock.Anything, "tok-aaa", mock.Anything).Return(nil)
	gw.On("Send", mock.Anything, "tok-bbb", mock.Anything).Return(errors.New("NotRegistered"))
	gw.On("Send", mock.Anything, "tok-ccc", mock.Anything).Return(nil)

	ls := &mockLogStore{}
	ls.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newDispatcher(ts, ls, gw)
	res, err := svc.Dispatch(context.Background(), DispatchRequest{
		UserIDs: []string{"u1", "u2"}, Title: "t", Body: "b", Type: domain.NotificationTypeNewListing,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, res.SentCount)
	assert.Equal(t, 1, res.FailedCount)
	assert.Equal(t, "Push notifications processed: 2 sent, 1 failed", res.Message)
	require.Len(t, res.Details, 3)
	assert.True(t, res.Details[0].Success)
	assert.False(t, res.Details[1].Success)
	assert.Equal(t, "NotRegistered", res.Details[1].Error)
	assert.Equal(t, "tok-bbb", res.Details[1].Token)
	gw.AssertExpectations(t)
	ls.AssertExpectations(t)
}

func TestDispatch_DataCarriesTypeAndRecipient(t *testing.T) {
	ts := &mockTokenStore{}
	ts.On("ListActiveByUsers", mock.Anything, []string{"u9"}).Return([]domain.DeviceToken{
		tokenRow("u9", "tok-xyz"),
	}, nil)

	var got Message
	gw := &mockGateway{}
	gw.On("Send", mock.Anything, "tok-xyz", mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(2).(Message)
	}).Return(nil)

	ls := &mockLogStore{}
	ls.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newDispatcher(ts, ls, gw)
	_, err := svc.Dispatch(context.Background(), DispatchRequest{
		UserIDs: []string{"u9"},
		Title:   "New Food Available",
		Body:    "Bread has been shared in Downtown",
		Type:    domain.NotificationTypeNewListing,
		Data: map[string]string{
			domain.PayloadKeyItemID:   "item-1",
			domain.PayloadKeyCategory: "Food",
			domain.PayloadKeyLocation: "Downtown",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "madadgar_notifications", got.ChannelID)
	assert.Equal(t, "high", got.Priority)
	assert.Equal(t, domain.NotificationTypeNewListing, got.Data["type"])
	assert.Equal(t, "u9", got.Data["user_id"])
	assert.Equal(t, "item-1", got.Data[domain.PayloadKeyItemID])
	assert.Equal(t, "Food", got.Data[domain.PayloadKeyCategory])
}

func TestDispatch_LogWriteFailureDoesNotChangeResult(t *testing.T) {
	ts := &mockTokenStore{}
	ts.On("ListActiveByUsers", mock.Anything, []string{"u1"}).Return([]domain.DeviceToken{
		tokenRow("u1", "tok-aaa"),
	}, nil)

	gw := &mockGateway{}
	gw.On("Send", mock.Anything, "tok-aaa", mock.Anything).Return(nil)

	ls := &mockLogStore{}
	ls.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamo unavailable"))

	svc := newDispatcher(ts, ls, gw)
	res, err := svc.Dispatch(context.Background(), DispatchRequest{
		UserIDs: []string{"u1"}, Title: "t", Body: "b",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, res.SentCount)
	assert.Zero(t, res.FailedCount)
	ls.AssertExpectations(t)
}

func TestDispatch_LoggedTokensArePrefixed(t *testing.T) {
	long := "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	ts := &mockTokenStore{}
	ts.On("ListActiveByUsers", mock.Anything, []string{"u1"}).Return([]domain.DeviceToken{
		tokenRow("u1", long),
	}, nil)

	gw := &mockGateway{}
	gw.On("Send", mock.Anything, long, mock.Anything).Return(nil)

	var logged *domain.SendLog
	ls := &mockLogStore{}
	ls.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		logged = args.Get(1).(*domain.SendLog)
	}).Return(nil)

	svc := newDispatcher(ts, ls, gw)
	res, err := svc.Dispatch(context.Background(), DispatchRequest{
		UserIDs: []string{"u1"}, Title: "t", Body: "b",
	})

	require.NoError(t, err)
	require.NotNil(t, logged)
	require.Len(t, logged.Results, 1)
	assert.Equal(t, long[:20], logged.Results[0].Token)
	// The caller still sees the full token.
	assert.Equal(t, long, res.Details[0].Token)
	assert.Equal(t, 1, logged.SuccessCount)
	assert.Equal(t, 0, logged.FailureCount)
}
