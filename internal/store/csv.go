package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"orderflow/domain"
	"orderflow/internal/export"
)

// CSVStore хранит заказы в плоском CSV файле.
// Единица хранения это весь файл целиком: на каждое чтение файл разбирается
// заново, на каждую мутацию переписывается полностью. Для таблицы в пару
// тысяч строк этого более чем достаточно
type CSVStore struct {
	path string

	// защищает файл от одновременных мутаций внутри процесса,
	// межпроцессных блокировок нет сознательно
	mu sync.Mutex
}

func NewCSVStore(ctx context.Context, path string) (*CSVStore, error) {
	s := &CSVStore{path: path}
	if err := s.init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// init создает файл с одними заголовками, если его еще нет,
// аналог миграции в конструкторе у базы данных
func (s *CSVStore) init(_ context.Context) error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat csv file: %w", err)
	}
	if err := os.WriteFile(s.path, export.TemplateCSV(), 0o644); err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	return nil
}

func (s *CSVStore) Create(ctx context.Context, order *domain.Order) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load()
	if err != nil {
		return 0, err
	}
	for _, o := range orders {
		if o.OrderUID == order.OrderUID {
			return 0, ErrDuplicate
		}
	}

	orders = append(orders, *order)
	if err = s.flush(orders); err != nil {
		return 0, err
	}
	return 1, nil
}

func (s *CSVStore) Get(_ context.Context, uid string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load()
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range orders {
		if o.OrderUID == uid {
			return o, nil
		}
	}
	return domain.Order{}, ErrNotFound
}

func (s *CSVStore) Update(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load()
	if err != nil {
		return err
	}
	for i, o := range orders {
		if o.OrderUID == order.OrderUID {
			orders[i] = *order
			return s.flush(orders)
		}
	}
	return ErrNotFound
}

func (s *CSVStore) Delete(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load()
	if err != nil {
		return err
	}
	for i, o := range orders {
		if o.OrderUID == uid {
			orders = append(orders[:i], orders[i+1:]...)
			return s.flush(orders)
		}
	}
	return ErrNotFound
}

func (s *CSVStore) List(_ context.Context) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *CSVStore) Append(_ context.Context, orders []domain.Order) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load()
	if err != nil {
		return 0, err
	}
	existing = append(existing, orders...)
	if err = s.flush(existing); err != nil {
		return 0, err
	}
	return int64(len(orders)), nil
}

func (s *CSVStore) load() ([]domain.Order, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	orders, err := export.DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}

	for i := range orders {
		// в старых файлах колонки даты может не быть заполнено,
		// недостающие даты считаем сегодняшними
		if orders[i].Date.IsZero() {
			orders[i].Date = domain.Today()
		}
		if orders[i].OrderUID == "" {
			orders[i].Normalize()
		}
	}

	return orders, nil
}

// flush переписывает весь файл заново
func (s *CSVStore) flush(orders []domain.Order) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to rewrite csv file: %w", err)
	}

	if err = export.EncodeCSV(f, orders); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", s.path, err)
	}

	return f.Close()
}
