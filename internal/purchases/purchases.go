// Package purchases is the subscription collaborator. It is an external
// capability the rest of the app must never depend on: event logging and
// statistics stay fully functional when this service is unconfigured or the
// billing backend is unreachable.
package purchases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mode says how the service talks to the billing backend. It is carried in
// the instance, not in package state; callers construct the service
// explicitly and inject it where needed.
type Mode int

const (
	// ModeUnconfigured is the zero value: no backend, every operation
	// fails closed.
	ModeUnconfigured Mode = iota
	// ModeMock simulates the backend: no offerings, purchases and
	// restores succeed, subscription stays inactive.
	ModeMock
	// ModeLive talks to the real billing backend through a Gateway.
	ModeLive
)

func (m Mode) String() string {
	switch m {
	case ModeMock:
		return "mock"
	case ModeLive:
		return "live"
	default:
		return "unconfigured"
	}
}

// Status is the subscription state as far as the service can tell.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	// StatusUnknown means the backend could not be consulted.
	StatusUnknown Status = "unknown"
)

// Package is one purchasable unit inside an offering.
type Package struct {
	Identifier  string `json:"identifier"`
	ProductID   string `json:"product_id"`
	PriceString string `json:"price_string"`
}

// Offering is the current set of subscription packages to present.
type Offering struct {
	Identifier string    `json:"identifier"`
	Packages   []Package `json:"packages"`
}

// CustomerInfo reports which entitlements the current app user holds.
type CustomerInfo struct {
	ActiveEntitlements []string `json:"active_entitlements"`
}

// HasEntitlement reports whether the named entitlement is active.
func (c *CustomerInfo) HasEntitlement(name string) bool {
	if c == nil {
		return false
	}
	for _, e := range c.ActiveEntitlements {
		if e == name {
			return true
		}
	}
	return false
}

// Gateway is the transport to the billing backend.
type Gateway interface {
	Offerings(ctx context.Context, userID string) (*Offering, error)
	Purchase(ctx context.Context, userID, packageID string) (*CustomerInfo, error)
	Restore(ctx context.Context, userID string) (*CustomerInfo, error)
	CustomerInfo(ctx context.Context, userID string) (*CustomerInfo, error)
}

// ErrNotConfigured is returned by mutating operations when the service has
// no backend to talk to.
var ErrNotConfigured = errors.New("purchases service not configured")

// Service exposes the subscription operations the paywall needs. The zero
// value is unusable; construct with New.
type Service struct {
	mode        Mode
	gateway     Gateway
	entitlement string
	userID      string
	log         *zap.Logger
}

// New creates a purchases service. A nil gateway or empty apiKey selects
// mock mode; otherwise the service runs live against the given gateway.
// The anonymous app-user id identifies this install to the backend.
func New(gateway Gateway, entitlement string, log *zap.Logger) *Service {
	s := &Service{
		mode:        ModeMock,
		gateway:     gateway,
		entitlement: entitlement,
		userID:      uuid.NewString(),
		log:         log,
	}
	if gateway != nil {
		s.mode = ModeLive
	}
	return s
}

// Unconfigured returns a service that fails closed everywhere. Useful as an
// explicit placeholder during boot.
func Unconfigured(log *zap.Logger) *Service {
	return &Service{mode: ModeUnconfigured, log: log}
}

// Mode reports how the service was configured.
func (s *Service) Mode() Mode {
	return s.mode
}

// UserID returns the anonymous app-user id handed to the backend.
func (s *Service) UserID() string {
	return s.userID
}

// GetOfferings returns the current offering, or nil when there is nothing to
// present. Mock and unconfigured modes have no offerings; live-mode backend
// failures are logged and also yield nil, so the paywall renders its empty
// state rather than erroring.
func (s *Service) GetOfferings(ctx context.Context) *Offering {
	switch s.mode {
	case ModeLive:
		offering, err := s.gateway.Offerings(ctx, s.userID)
		if err != nil {
			s.log.Error("failed to fetch offerings", zap.Error(err))
			return nil
		}
		return offering
	default:
		return nil
	}
}

// Purchase buys the given package. Mock mode simulates success with an
// active entitlement so the paywall flow can be exercised end to end.
func (s *Service) Purchase(ctx context.Context, packageID string) (*CustomerInfo, error) {
	switch s.mode {
	case ModeMock:
		s.log.Info("mock mode: simulating successful purchase",
			zap.String("package", packageID))
		return &CustomerInfo{ActiveEntitlements: []string{s.entitlement}}, nil
	case ModeLive:
		info, err := s.gateway.Purchase(ctx, s.userID, packageID)
		if err != nil {
			s.log.Error("purchase failed", zap.Error(err),
				zap.String("package", packageID))
			return nil, err
		}
		return info, nil
	default:
		return nil, ErrNotConfigured
	}
}

// Restore re-syncs previous purchases from the backend.
func (s *Service) Restore(ctx context.Context) (*CustomerInfo, error) {
	switch s.mode {
	case ModeMock:
		s.log.Info("mock mode: no purchases to restore")
		return &CustomerInfo{}, nil
	case ModeLive:
		info, err := s.gateway.Restore(ctx, s.userID)
		if err != nil {
			s.log.Error("restore failed", zap.Error(err))
			return nil, err
		}
		return info, nil
	default:
		return nil, ErrNotConfigured
	}
}

// CheckStatus reports the subscription state. Unknown means the backend
// could not be consulted; callers decide whether unknown unlocks the gate.
func (s *Service) CheckStatus(ctx context.Context) Status {
	switch s.mode {
	case ModeMock:
		return StatusInactive
	case ModeLive:
		info, err := s.gateway.CustomerInfo(ctx, s.userID)
		if err != nil {
			s.log.Error("failed to check subscription status", zap.Error(err))
			return StatusUnknown
		}
		if info.HasEntitlement(s.entitlement) {
			return StatusActive
		}
		return StatusInactive
	default:
		return StatusUnknown
	}
}
