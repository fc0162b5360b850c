package purchases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockGateway is a mock implementation of Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Offerings(ctx context.Context, userID string) (*Offering, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Offering), args.Error(1)
}

func (m *MockGateway) Purchase(ctx context.Context, userID, packageID string) (*CustomerInfo, error) {
	args := m.Called(ctx, userID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CustomerInfo), args.Error(1)
}

func (m *MockGateway) Restore(ctx context.Context, userID string) (*CustomerInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CustomerInfo), args.Error(1)
}

func (m *MockGateway) CustomerInfo(ctx context.Context, userID string) (*CustomerInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CustomerInfo), args.Error(1)
}

func TestNew_ModeSelection(t *testing.T) {
	assert.Equal(t, ModeMock, New(nil, "premium", zap.NewNop()).Mode())
	assert.Equal(t, ModeLive, New(new(MockGateway), "premium", zap.NewNop()).Mode())
	assert.Equal(t, ModeUnconfigured, Unconfigured(zap.NewNop()).Mode())
}

func TestMockMode_FullPaywallFlow(t *testing.T) {
	svc := New(nil, "premium", zap.NewNop())
	ctx := context.Background()

	assert.Nil(t, svc.GetOfferings(ctx), "mock mode has nothing to sell")

	info, err := svc.Purchase(ctx, "monthly")
	require.NoError(t, err)
	assert.True(t, info.HasEntitlement("premium"))

	restored, err := svc.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, restored.HasEntitlement("premium"))

	assert.Equal(t, StatusInactive, svc.CheckStatus(ctx))
}

func TestUnconfigured_FailsClosed(t *testing.T) {
	svc := Unconfigured(zap.NewNop())
	ctx := context.Background()

	assert.Nil(t, svc.GetOfferings(ctx))
	assert.Equal(t, StatusUnknown, svc.CheckStatus(ctx))

	_, err := svc.Purchase(ctx, "monthly")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = svc.Restore(ctx)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestLiveMode_StatusFromEntitlements(t *testing.T) {
	gw := new(MockGateway)
	svc := New(gw, "premium", zap.NewNop())

	gw.On("CustomerInfo", mock.Anything, svc.UserID()).
		Return(&CustomerInfo{ActiveEntitlements: []string{"premium"}}, nil).Once()
	assert.Equal(t, StatusActive, svc.CheckStatus(context.Background()))

	gw.On("CustomerInfo", mock.Anything, svc.UserID()).
		Return(&CustomerInfo{}, nil).Once()
	assert.Equal(t, StatusInactive, svc.CheckStatus(context.Background()))

	gw.AssertExpectations(t)
}

func TestLiveMode_BackendFailureIsUnknownNotFatal(t *testing.T) {
	gw := new(MockGateway)
	svc := New(gw, "premium", zap.NewNop())

	gw.On("CustomerInfo", mock.Anything, svc.UserID()).
		Return(nil, errors.New("connection refused"))
	gw.On("Offerings", mock.Anything, svc.UserID()).
		Return(nil, errors.New("connection refused"))

	assert.Equal(t, StatusUnknown, svc.CheckStatus(context.Background()))
	assert.Nil(t, svc.GetOfferings(context.Background()))
}

func TestLiveMode_PurchasePassesThrough(t *testing.T) {
	gw := new(MockGateway)
	svc := New(gw, "premium", zap.NewNop())

	gw.On("Purchase", mock.Anything, svc.UserID(), "monthly").
		Return(&CustomerInfo{ActiveEntitlements: []string{"premium"}}, nil)

	info, err := svc.Purchase(context.Background(), "monthly")
	require.NoError(t, err)
	assert.True(t, info.HasEntitlement("premium"))
	gw.AssertExpectations(t)
}
