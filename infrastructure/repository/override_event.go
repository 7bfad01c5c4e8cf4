package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/vfg2006/demand-forecast-api/infrastructure/database/postgres"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
)

const (
	overrideEventsTable = "override_events"

	defaultOverrideEventsLimit = 100
)

// OverrideEventRepository guarda o histórico de ajustes manuais usado no re-treino do modelo
type OverrideEventRepository interface {
	Save(ctx context.Context, event *domain.OverrideEvent) error
	ListByKey(ctx context.Context, key domain.OverrideKey, limit int) ([]domain.OverrideEvent, error)
}

type overrideEventRepository struct {
	conn *postgres.Connection
}

func NewOverrideEventRepository(conn *postgres.Connection) OverrideEventRepository {
	return &overrideEventRepository{
		conn: conn,
	}
}

func (r *overrideEventRepository) Save(ctx context.Context, event *domain.OverrideEvent) error {
	query, args, err := squirrel.
		Insert(overrideEventsTable).
		Columns("id", "product_id", "location_id", "action", "multiplier", "reason", "actor",
			"expires_at", "occurred_at").
		Values(event.ID, event.ProductID, event.LocationID, string(event.Action), event.Multiplier,
			event.Reason, event.Actor, event.ExpiresAt, event.OccurredAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return wrapPQError(err, "erro ao salvar evento de ajuste")
	}

	return nil
}

// ListByKey lista os eventos mais recentes primeiro. Campos vazios da chave não filtram.
func (r *overrideEventRepository) ListByKey(ctx context.Context, key domain.OverrideKey, limit int) ([]domain.OverrideEvent, error) {
	if limit <= 0 {
		limit = defaultOverrideEventsLimit
	}

	builder := squirrel.
		Select("id", "product_id", "location_id", "action", "multiplier", "reason", "actor",
			"expires_at", "occurred_at").
		From(overrideEventsTable).
		OrderBy("occurred_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if key.ProductID != "" {
		builder = builder.Where(squirrel.Eq{"product_id": key.ProductID})
	}
	if key.LocationID != "" {
		builder = builder.Where(squirrel.Eq{"location_id": key.LocationID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar eventos de ajuste")
	}
	defer rows.Close()

	events := make([]domain.OverrideEvent, 0)
	for rows.Next() {
		var event domain.OverrideEvent
		var action string
		if err := rows.Scan(
			&event.ID,
			&event.ProductID,
			&event.LocationID,
			&action,
			&event.Multiplier,
			&event.Reason,
			&event.Actor,
			&event.ExpiresAt,
			&event.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear evento de ajuste: %w", err)
		}
		event.Action = domain.OverrideAction(action)
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return events, nil
}
