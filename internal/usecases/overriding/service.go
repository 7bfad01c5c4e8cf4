package overriding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/demand-forecast-api/infrastructure/repository"
	"github.com/vfg2006/demand-forecast-api/internal/config"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
	"github.com/vfg2006/demand-forecast-api/pkg/apiErrors"
	"github.com/vfg2006/demand-forecast-api/pkg/metrics"
	"github.com/vfg2006/demand-forecast-api/pkg/utils"
)

const (
	auditTimeout = 5 * time.Second

	// Actor registrado para remoções feitas pelo próprio sistema
	SystemActor = "system"
)

type Overrider interface {
	SetOverride(ctx context.Context, req *domain.SetOverrideRequest, actor string) (*domain.OverrideEntry, error)
	Resolve(ctx context.Context, productID, locationID string, base float64) *domain.EffectivePredictionResponse
	ListActive() []domain.OverrideEntry
	Sweep(ctx context.Context) []domain.OverrideEntry
	ListEvents(ctx context.Context, key domain.OverrideKey, limit int) ([]domain.OverrideEvent, error)
}

type Service struct {
	ledger    *Ledger
	eventRepo repository.OverrideEventRepository
	validate  *validator.Validate
	cfg       config.Override
	metrics   *metrics.Registry
	now       func() time.Time

	pendingAudits sync.WaitGroup
}

// NewService cria o serviço e o ledger. opts são repassadas ao ledger (ex.: WithClock em testes).
func NewService(
	eventRepo repository.OverrideEventRepository,
	validate *validator.Validate,
	cfg *config.Config,
	registry *metrics.Registry,
	opts ...Option,
) *Service {
	s := &Service{
		eventRepo: eventRepo,
		validate:  validate,
		cfg:       cfg.Override,
		metrics:   registry,
	}

	s.ledger = NewLedger(append(opts, WithExpiryHook(s.onResolveExpired))...)
	s.now = s.ledger.now

	return s
}

// SetOverride valida o payload, aplica os limites de validade configurados e grava no ledger
func (s *Service) SetOverride(ctx context.Context, req *domain.SetOverrideRequest, actor string) (*domain.OverrideEntry, error) {
	if err := s.validateRequest(req); err != nil {
		s.metrics.OverridesRejected.Inc()
		return nil, err
	}

	validDays := s.cfg.DefaultValidDays
	if req.ValidDays != nil {
		validDays = *req.ValidDays
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = s.cfg.DefaultReason
	}

	entry, err := s.ledger.SetOverride(req.ProductID, req.LocationID, req.Multiplier, utils.DaysToDuration(validDays), reason)
	if err != nil {
		s.metrics.OverridesRejected.Inc()
		return nil, err
	}

	s.metrics.OverridesSet.Inc()
	s.metrics.ActiveOverrides.Set(float64(s.ledger.Len()))

	logrus.WithFields(logrus.Fields{
		"product_id":  entry.ProductID,
		"location_id": entry.LocationID,
		"multiplier":  entry.Multiplier,
		"expires_at":  entry.ExpiresAt.Format(time.RFC3339),
		"actor":       actor,
	}).Info("Ajuste manual registrado")

	s.audit(ctx, entry, domain.OverrideActionSet, actor)

	return &entry, nil
}

func (s *Service) validateRequest(req *domain.SetOverrideRequest) error {
	if req == nil {
		return newInvalidOverrideError("", "", "payload vazio")
	}

	if err := s.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := make([]string, 0, len(validationErrs))
			for _, fe := range validationErrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
			}
			return newInvalidOverrideError(req.ProductID, req.LocationID, "campos inválidos: "+strings.Join(fields, ", "))
		}
		return newInvalidOverrideError(req.ProductID, req.LocationID, err.Error())
	}

	if req.ValidDays != nil && *req.ValidDays > s.cfg.MaxValidDays {
		return newInvalidOverrideError(req.ProductID, req.LocationID,
			fmt.Sprintf("validade máxima é de %v dias, recebido %v", s.cfg.MaxValidDays, *req.ValidDays))
	}

	return nil
}

// Resolve aplica o ajuste ativo à previsão do modelo. Nunca falha.
func (s *Service) Resolve(ctx context.Context, productID, locationID string, base float64) *domain.EffectivePredictionResponse {
	prediction, status := s.ledger.ResolveWithStatus(productID, locationID, base)
	if status == StatusApplied {
		s.metrics.OverridesApplied.Inc()
	}

	return &domain.EffectivePredictionResponse{
		ProductID:      productID,
		LocationID:     locationID,
		BasePrediction: base,
		Prediction:     prediction,
		OverrideStatus: string(status),
	}
}

func (s *Service) ListActive() []domain.OverrideEntry {
	return s.ledger.Active()
}

// Sweep remove os ajustes vencidos que não foram consultados desde o vencimento
func (s *Service) Sweep(ctx context.Context) []domain.OverrideEntry {
	removed := s.ledger.Sweep()

	s.metrics.OverridesExpired.WithLabelValues(metrics.ExpiredOnSweep).Add(float64(len(removed)))
	s.metrics.ActiveOverrides.Set(float64(s.ledger.Len()))

	for _, entry := range removed {
		s.audit(ctx, entry, domain.OverrideActionSwept, SystemActor)
	}

	if len(removed) > 0 {
		logrus.WithField("removed", len(removed)).Info("Ajustes manuais vencidos removidos pela varredura")
	}

	return removed
}

func (s *Service) ListEvents(ctx context.Context, key domain.OverrideKey, limit int) ([]domain.OverrideEvent, error) {
	events, err := s.eventRepo.ListByKey(ctx, key, limit)
	if err != nil {
		return nil, &OverrideError{
			Err:        err,
			Code:       apiErrors.ErrDatabaseOperation,
			ProductID:  key.ProductID,
			LocationID: key.LocationID,
		}
	}
	return events, nil
}

// onResolveExpired é chamado pelo ledger fora do lock quando Resolve remove um ajuste vencido.
// A gravação do evento roda em background para não atrasar a previsão.
func (s *Service) onResolveExpired(entry domain.OverrideEntry) {
	s.metrics.OverridesExpired.WithLabelValues(metrics.ExpiredOnResolve).Inc()
	s.metrics.ActiveOverrides.Set(float64(s.ledger.Len()))

	logrus.WithFields(logrus.Fields{
		"product_id":  entry.ProductID,
		"location_id": entry.LocationID,
		"expires_at":  entry.ExpiresAt.Format(time.RFC3339),
	}).Info("Ajuste manual vencido removido na consulta")

	s.pendingAudits.Add(1)
	go func() {
		defer s.pendingAudits.Done()

		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		s.audit(ctx, entry, domain.OverrideActionExpired, SystemActor)
	}()
}

// Wait aguarda as auditorias de vencimento ainda em background
func (s *Service) Wait() {
	s.pendingAudits.Wait()
}

// audit grava o evento no histórico. Falhas são apenas registradas em log.
func (s *Service) audit(ctx context.Context, entry domain.OverrideEntry, action domain.OverrideAction, actor string) {
	if s.eventRepo == nil {
		return
	}

	id, err := utils.GenerateID()
	if err != nil {
		logrus.WithError(err).Warn("Erro ao gerar id do evento de ajuste")
		return
	}

	event := &domain.OverrideEvent{
		ID:         id,
		ProductID:  entry.ProductID,
		LocationID: entry.LocationID,
		Action:     action,
		Multiplier: entry.Multiplier,
		Reason:     entry.Reason,
		Actor:      actor,
		ExpiresAt:  entry.ExpiresAt,
		OccurredAt: s.now(),
	}

	if err := s.eventRepo.Save(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"product_id":  entry.ProductID,
			"location_id": entry.LocationID,
			"action":      action,
		}).Warn("Erro ao gravar evento de ajuste manual")
	}
}
