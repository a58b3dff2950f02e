package store

import (
	"context"
	"errors"

	"orderflow/domain"
)

var (
	// ErrNotFound заказ с таким идентификатором отсутствует в хранилище
	ErrNotFound = errors.New("order not found")
	// ErrDuplicate заказ с таким идентификатором уже существует
	ErrDuplicate = errors.New("order already exists")
)

// Store контракт хранилища заказов, реализации: CSV файл (по умолчанию) и Postgres
type Store interface {
	Create(ctx context.Context, order *domain.Order) (int64, error)
	Get(ctx context.Context, uid string) (domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, uid string) error
	List(ctx context.Context) ([]domain.Order, error)
	// Append добавляет сразу пачку заказов, используется импортом файлов
	Append(ctx context.Context, orders []domain.Order) (int64, error)
}
