package store

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"github.com/jmoiron/sqlx"

	"orderflow/domain"
)

// PostgresStore альтернативное хранилище заказов в базе данных,
// включается переменной окружения STORE=postgres
type PostgresStore struct {
	db *sqlx.DB
}

// row модель для маппинга данных из базы в домен (domain.Order)
type row struct {
	OrderUID string       `db:"order_uid"`
	Data     domain.Order `db:"data"`
}

func NewPostgresStore(ctx context.Context, db *sqlx.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// migrate имитирует миграции в приложение, обычно это делается через файлы миграции
// в директории ./migrations
func (s *PostgresStore) migrate(ctx context.Context) error {
	const query = `create table if not exists public.order
(
    order_uid varchar(64) primary key not null,
    data      jsonb default '{}'::jsonb not null
);

create unique index if not exists uq_order_uid
    on public.order (order_uid);`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return err
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, order *domain.Order) (int64, error) {
	const query = `INSERT INTO public.order (order_uid, data) VALUES (:id,:data)`
	result, err := s.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":   order.OrderUID,
		"data": order,
	})

	if err != nil {
		return 0, err
	}

	// получаем сколько строк изменилось/добавилось
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return affected, nil
}

func (s *PostgresStore) Get(ctx context.Context, uid string) (domain.Order, error) {
	r := row{}
	// выбираем только jsonb поле data, т.к. идентификатор уже содержится внутри этой структуры
	err := s.db.GetContext(ctx, &r, "SELECT data FROM public.order WHERE order_uid=$1", uid)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	return r.Data, nil
}

func (s *PostgresStore) Update(ctx context.Context, order *domain.Order) error {
	const query = `UPDATE public.order SET data=:data WHERE order_uid=:id`
	result, err := s.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":   order.OrderUID,
		"data": order,
	})
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, uid string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM public.order WHERE order_uid=$1", uid)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order

	rows, err := s.db.QueryxContext(ctx, "SELECT data FROM public.order")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		r := row{}
		err = rows.StructScan(&r)
		if err != nil {
			return nil, err
		}
		orders = append(orders, r.Data)
	}

	return orders, rows.Err()
}

// Append вставляет пачку заказов одной транзакцией, используется импортом файлов
func (s *PostgresStore) Append(ctx context.Context, orders []domain.Order) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}

	const query = `INSERT INTO public.order (order_uid, data) VALUES (:id,:data)`
	var total int64
	for i := range orders {
		result, err := tx.NamedExecContext(ctx, query, map[string]interface{}{
			"id":   orders[i].OrderUID,
			"data": orders[i],
		})
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		total += affected
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}
