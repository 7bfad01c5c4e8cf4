package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/vfg2006/demand-forecast-api/infrastructure/database/postgres"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	reconciliationRunsTable = "reconciliation_runs"
	trainingExamplesTable   = "training_examples"

	trainingExampleBatchSize = 500
)

type TrainingDatasetRepository interface {
	SaveRun(ctx context.Context, run *domain.ReconciliationRun, examples []domain.TrainingExample) error
	GetLatestRun(ctx context.Context) (*domain.ReconciliationRun, error)
}

type trainingDatasetRepository struct {
	conn *postgres.Connection
}

func NewTrainingDatasetRepository(conn *postgres.Connection) TrainingDatasetRepository {
	return &trainingDatasetRepository{
		conn: conn,
	}
}

// SaveRun grava o resumo da execução e todos os exemplos de treino na mesma transação.
// Exemplos de execuções anteriores para o mesmo período são substituídos.
func (r *trainingDatasetRepository) SaveRun(ctx context.Context, run *domain.ReconciliationRun, examples []domain.TrainingExample) error {
	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		runQuery, runArgs, err := squirrel.
			Insert(reconciliationRunsTable).
			Columns("id", "period_start", "period_end", "record_count", "stockout_count",
				"imputed_count", "conversion_rate", "started_at", "finished_at").
			Values(run.ID, run.PeriodStart.Format(time.DateOnly), run.PeriodEnd.Format(time.DateOnly),
				run.RecordCount, run.StockoutCount, run.ImputedCount, run.ConversionRate,
				run.StartedAt, run.FinishedAt).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, runQuery, runArgs...); err != nil {
			return wrapPQError(err, "erro ao salvar execução de reconciliação")
		}

		deleteQuery, deleteArgs, err := squirrel.
			Delete(trainingExamplesTable).
			Where(squirrel.GtOrEq{"date": run.PeriodStart.Format(time.DateOnly)}).
			Where(squirrel.LtOrEq{"date": run.PeriodEnd.Format(time.DateOnly)}).
			Where(squirrel.NotEq{"run_id": run.ID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
			return wrapPQError(err, "erro ao remover exemplos anteriores")
		}

		for start := 0; start < len(examples); start += trainingExampleBatchSize {
			end := min(start+trainingExampleBatchSize, len(examples))

			query, args, err := buildInsertExamplesQuery(examples[start:end])
			if err != nil {
				return err
			}

			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return wrapPQError(err, "erro ao salvar exemplos de treino")
			}
		}

		return nil
	})
}

func buildInsertExamplesQuery(examples []domain.TrainingExample) (string, []any, error) {
	builder := squirrel.
		Insert(trainingExamplesTable).
		Columns("run_id", "date", "product_id", "location_id", "quantity_sold", "is_stockout",
			"traffic", "demand", "imputed", "features").
		PlaceholderFormat(squirrel.Dollar)

	for _, example := range examples {
		featuresJSON, err := json.Marshal(example.Features)
		if err != nil {
			return "", nil, fmt.Errorf("erro ao serializar features para JSON: %w", err)
		}

		d := example.Demand
		builder = builder.Values(
			example.RunID,
			d.Date.Format(time.DateOnly),
			d.ProductID,
			d.LocationID,
			d.QuantitySold,
			d.IsStockout,
			example.Traffic,
			d.Demand,
			d.Imputed,
			featuresJSON,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("erro ao construir a query: %w", err)
	}
	return query, args, nil
}

func (r *trainingDatasetRepository) GetLatestRun(ctx context.Context) (*domain.ReconciliationRun, error) {
	query, args, err := squirrel.
		Select("id", "period_start", "period_end", "record_count", "stockout_count",
			"imputed_count", "conversion_rate", "started_at", "finished_at").
		From(reconciliationRunsTable).
		OrderBy("finished_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	run := &domain.ReconciliationRun{}
	err = r.conn.QueryRowContext(ctx, query, args...).Scan(
		&run.ID,
		&run.PeriodStart,
		&run.PeriodEnd,
		&run.RecordCount,
		&run.StockoutCount,
		&run.ImputedCount,
		&run.ConversionRate,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "erro ao buscar última execução")
	}

	return run, nil
}

func wrapPQError(err error, msg string) error {
	if pqErr, ok := err.(*pq.Error); ok {
		return errors.Wrapf(err, "%s (código: %s)", msg, pqErr.Code)
	}
	return errors.Wrap(err, msg)
}
