package overriding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/demand-forecast-api/infrastructure/repository/mocks"
	"github.com/vfg2006/demand-forecast-api/internal/config"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
	"github.com/vfg2006/demand-forecast-api/pkg/metrics"
	"go.uber.org/mock/gomock"
)

func floatPtr(v float64) *float64 { return &v }

func newTestService(t *testing.T) (*Service, *mocks.MockOverrideEventRepository, *fakeClock, *metrics.Registry) {
	t.Helper()

	ctrl := gomock.NewController(t)
	eventRepo := mocks.NewMockOverrideEventRepository(ctrl)
	registry := metrics.NewRegistry()
	clock := newFakeClock()

	cfg := &config.Config{Override: config.Override{
		DefaultValidDays: 7,
		MaxValidDays:     14,
		DefaultReason:    domain.DefaultOverrideReason,
	}}

	svc := NewService(eventRepo, validator.New(), cfg, registry, WithClock(clock.Now))
	return svc, eventRepo, clock, registry
}

func TestServiceSetOverride(t *testing.T) {
	svc, eventRepo, clock, registry := newTestService(t)

	eventRepo.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.OverrideEvent) error {
			assert.Equal(t, domain.OverrideActionSet, event.Action)
			assert.Equal(t, "gerente@loja.com", event.Actor)
			assert.Equal(t, 1.2, event.Multiplier)
			assert.NotEmpty(t, event.ID)
			return nil
		})

	entry, err := svc.SetOverride(context.Background(), &domain.SetOverrideRequest{
		ProductID:  "P1",
		LocationID: "L1",
		Multiplier: 1.2,
	}, "gerente@loja.com")
	require.NoError(t, err)

	assert.Equal(t, clock.Now().Add(7*24*time.Hour), entry.ExpiresAt)
	assert.Equal(t, domain.DefaultOverrideReason, entry.Reason)

	resp := svc.Resolve(context.Background(), "P1", "L1", 100)
	assert.InDelta(t, 120.0, resp.Prediction, 1e-9)
	assert.Equal(t, string(StatusApplied), resp.OverrideStatus)

	assert.Equal(t, 1.0, testutil.ToFloat64(registry.OverridesSet))
	assert.Equal(t, 1.0, testutil.ToFloat64(registry.OverridesApplied))
	assert.Equal(t, 1.0, testutil.ToFloat64(registry.ActiveOverrides))
}

func TestServiceSetOverrideInvalido(t *testing.T) {
	tests := []struct {
		name string
		req  *domain.SetOverrideRequest
	}{
		{"payload nulo", nil},
		{"sem produto", &domain.SetOverrideRequest{LocationID: "L1", Multiplier: 1.2}},
		{"multiplicador zero", &domain.SetOverrideRequest{ProductID: "P1", LocationID: "L1", Multiplier: 0}},
		{"multiplicador negativo", &domain.SetOverrideRequest{ProductID: "P1", LocationID: "L1", Multiplier: -2}},
		{"validade zero explícita", &domain.SetOverrideRequest{ProductID: "P1", LocationID: "L1", Multiplier: 1.1, ValidDays: floatPtr(0)}},
		{"validade negativa", &domain.SetOverrideRequest{ProductID: "P1", LocationID: "L1", Multiplier: 1.1, ValidDays: floatPtr(-1)}},
		{"validade acima do máximo", &domain.SetOverrideRequest{ProductID: "P1", LocationID: "L1", Multiplier: 1.1, ValidDays: floatPtr(30)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, registry := newTestService(t)

			entry, err := svc.SetOverride(context.Background(), tt.req, "gerente")

			assert.Nil(t, entry)
			assert.True(t, errors.Is(err, ErrInvalidOverride))
			assert.Empty(t, svc.ListActive())
			assert.Equal(t, 1.0, testutil.ToFloat64(registry.OverridesRejected))
		})
	}
}

func TestServiceResolveVencidoGravaEvento(t *testing.T) {
	svc, eventRepo, clock, registry := newTestService(t)

	gomock.InOrder(
		eventRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil),
		eventRepo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, event *domain.OverrideEvent) error {
				assert.Equal(t, domain.OverrideActionExpired, event.Action)
				assert.Equal(t, SystemActor, event.Actor)
				return errors.New("banco indisponível")
			}),
	)

	_, err := svc.SetOverride(context.Background(), &domain.SetOverrideRequest{
		ProductID: "P1", LocationID: "L1", Multiplier: 1.5, ValidDays: floatPtr(1),
	}, "gerente")
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)

	// falha na auditoria não afeta a previsão
	resp := svc.Resolve(context.Background(), "P1", "L1", 100)
	assert.Equal(t, 100.0, resp.Prediction)
	assert.Equal(t, string(StatusExpired), resp.OverrideStatus)
	svc.Wait()

	resp = svc.Resolve(context.Background(), "P1", "L1", 100)
	assert.Equal(t, string(StatusNone), resp.OverrideStatus)

	assert.Equal(t, 1.0, testutil.ToFloat64(registry.OverridesExpired.WithLabelValues(metrics.ExpiredOnResolve)))
	assert.Equal(t, 0.0, testutil.ToFloat64(registry.ActiveOverrides))
}

func TestServiceResolveNaoAguardaAuditoria(t *testing.T) {
	svc, eventRepo, clock, _ := newTestService(t)

	release := make(chan struct{})
	gomock.InOrder(
		eventRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil),
		eventRepo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, *domain.OverrideEvent) error {
				<-release
				return nil
			}),
	)

	_, err := svc.SetOverride(context.Background(), &domain.SetOverrideRequest{
		ProductID: "P1", LocationID: "L1", Multiplier: 1.5, ValidDays: floatPtr(1),
	}, "gerente")
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)

	done := make(chan *domain.EffectivePredictionResponse, 1)
	go func() {
		done <- svc.Resolve(context.Background(), "P1", "L1", 100)
	}()

	select {
	case resp := <-done:
		assert.Equal(t, 100.0, resp.Prediction)
		assert.Equal(t, string(StatusExpired), resp.OverrideStatus)
	case <-time.After(time.Second):
		t.Fatal("Resolve bloqueado pela gravação do evento de vencimento")
	}

	close(release)
	svc.Wait()
}

func TestServiceSetOverrideValidadePadrao(t *testing.T) {
	svc, eventRepo, clock, _ := newTestService(t)
	eventRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	entry, err := svc.SetOverride(context.Background(), &domain.SetOverrideRequest{
		ProductID: "P1", LocationID: "L1", Multiplier: 1.1,
	}, "gerente")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(7*24*time.Hour), entry.ExpiresAt)

	entry, err = svc.SetOverride(context.Background(), &domain.SetOverrideRequest{
		ProductID: "P1", LocationID: "L1", Multiplier: 1.1, ValidDays: floatPtr(0.5),
	}, "gerente")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(12*time.Hour), entry.ExpiresAt)
}

func TestServiceSweep(t *testing.T) {
	svc, eventRepo, clock, registry := newTestService(t)

	eventRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	eventRepo.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.OverrideEvent) error {
			assert.Equal(t, domain.OverrideActionSwept, event.Action)
			assert.Equal(t, "P1", event.ProductID)
			return nil
		})

	_, err := svc.SetOverride(context.Background(), &domain.SetOverrideRequest{
		ProductID: "P1", LocationID: "L1", Multiplier: 1.5, ValidDays: floatPtr(1),
	}, "gerente")
	require.NoError(t, err)
	_, err = svc.SetOverride(context.Background(), &domain.SetOverrideRequest{
		ProductID: "P2", LocationID: "L1", Multiplier: 0.8, ValidDays: floatPtr(10),
	}, "gerente")
	require.NoError(t, err)

	clock.Advance(48 * time.Hour)

	removed := svc.Sweep(context.Background())
	require.Len(t, removed, 1)
	assert.Equal(t, "P1", removed[0].ProductID)

	active := svc.ListActive()
	require.Len(t, active, 1)
	assert.Equal(t, "P2", active[0].ProductID)

	assert.Equal(t, 1.0, testutil.ToFloat64(registry.OverridesExpired.WithLabelValues(metrics.ExpiredOnSweep)))
}

func TestServiceListEvents(t *testing.T) {
	svc, eventRepo, _, _ := newTestService(t)
	key := domain.OverrideKey{ProductID: "P1"}

	eventRepo.EXPECT().ListByKey(gomock.Any(), key, 20).Return([]domain.OverrideEvent{{ID: "e1"}}, nil)
	events, err := svc.ListEvents(context.Background(), key, 20)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	eventRepo.EXPECT().ListByKey(gomock.Any(), key, 20).Return(nil, errors.New("timeout"))
	_, err = svc.ListEvents(context.Background(), key, 20)
	var overrideErr *OverrideError
	require.True(t, errors.As(err, &overrideErr))
	assert.Equal(t, "SRV_002", overrideErr.Code)
}
