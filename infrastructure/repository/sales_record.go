package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/vfg2006/demand-forecast-api/infrastructure/database/postgres"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
)

const (
	salesRecordsTable = "sales_records"

	// Tamanho máximo de cada INSERT em lote (65535 parâmetros / 6 colunas)
	salesRecordBatchSize = 1000
)

type SalesRecordRepository interface {
	ListByPeriod(ctx context.Context, filters *domain.SalesFilters) ([]domain.SalesRecord, error)
	SaveBatch(ctx context.Context, records []domain.SalesRecord) error
}

type salesRecordRepository struct {
	conn *postgres.Connection
}

func NewSalesRecordRepository(conn *postgres.Connection) SalesRecordRepository {
	return &salesRecordRepository{
		conn: conn,
	}
}

// ListByPeriod retorna os registros ordenados por data, produto e loja. A ordem é estável
// entre execuções para que a reconciliação seja determinística.
func (r *salesRecordRepository) ListByPeriod(ctx context.Context, filters *domain.SalesFilters) ([]domain.SalesRecord, error) {
	query, args, err := buildListSalesQuery(filters)
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao executar a query de vendas")
	}
	defer rows.Close()

	records := make([]domain.SalesRecord, 0)
	for rows.Next() {
		var record domain.SalesRecord
		if err := rows.Scan(
			&record.ID,
			&record.Date,
			&record.ProductID,
			&record.LocationID,
			&record.QuantitySold,
			&record.IsStockout,
			&record.Traffic,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear registro de vendas: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return records, nil
}

func buildListSalesQuery(filters *domain.SalesFilters) (string, []any, error) {
	builder := squirrel.
		Select("id", "date", "product_id", "location_id", "quantity_sold", "is_stockout", "traffic").
		From(salesRecordsTable).
		OrderBy("date ASC", "product_id ASC", "location_id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if filters != nil {
		if filters.StartDate != nil {
			builder = builder.Where(squirrel.GtOrEq{"date": filters.StartDate.Format(time.DateOnly)})
		}
		if filters.EndDate != nil {
			builder = builder.Where(squirrel.LtOrEq{"date": filters.EndDate.Format(time.DateOnly)})
		}
		if filters.ProductID != "" {
			builder = builder.Where(squirrel.Eq{"product_id": filters.ProductID})
		}
		if filters.LocationID != "" {
			builder = builder.Where(squirrel.Eq{"location_id": filters.LocationID})
		}
	}

	return builder.ToSql()
}

// SaveBatch grava (ou atualiza) registros de vendas em lotes dentro de uma transação
func (r *salesRecordRepository) SaveBatch(ctx context.Context, records []domain.SalesRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(records); start += salesRecordBatchSize {
			end := min(start+salesRecordBatchSize, len(records))

			query, args, err := buildInsertSalesQuery(records[start:end])
			if err != nil {
				return fmt.Errorf("erro ao construir a query: %w", err)
			}

			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				if pqErr, ok := err.(*pq.Error); ok {
					return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
				}
				return fmt.Errorf("erro ao executar a query: %w", err)
			}
		}
		return nil
	})
}

func buildInsertSalesQuery(records []domain.SalesRecord) (string, []any, error) {
	builder := squirrel.
		Insert(salesRecordsTable).
		Columns("date", "product_id", "location_id", "quantity_sold", "is_stockout", "traffic").
		Suffix(`
			ON CONFLICT (date, product_id, location_id) DO UPDATE SET
				quantity_sold = EXCLUDED.quantity_sold,
				is_stockout = EXCLUDED.is_stockout,
				traffic = EXCLUDED.traffic
		`).
		PlaceholderFormat(squirrel.Dollar)

	for _, record := range records {
		builder = builder.Values(
			record.Date.Format(time.DateOnly),
			record.ProductID,
			record.LocationID,
			record.QuantitySold,
			record.IsStockout,
			record.Traffic,
		)
	}

	return builder.ToSql()
}
