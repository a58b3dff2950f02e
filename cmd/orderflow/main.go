package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"orderflow/domain"
	"orderflow/internal/server"
	"orderflow/internal/store"
	"orderflow/pkg/cache"
	natsLocal "orderflow/pkg/nats"
)

// OrderStore чтобы не завязываться на конкретной реализации
// объявляем интерфейс по работе с заказами тут
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) (int64, error)
}

func main() {
	if err := Main(); err != nil {
		log.Fatal(err)
	}
}

// Main небольшая функция обертка для точки входа main, чтобы было удобнее обрабатывать ошибки
func Main() error {
	// создаем основной контекст жизненного цикла приложения
	ctx, cancel := context.WithCancel(context.Background())

	// как только мы получим команду Ctrl+C мы завершим контекст и все зависимые от данного контекста компоненты также
	// автоматически отменятся или завершатся.
	// также у нас есть функции defer с Close() методами, которые закрывают все активные ресурсы
	defer cancel()

	// получаем данные из переменных сред/окружения
	// примеры можно посмотреть в .env.example файле проекта
	_ = godotenv.Load()

	// хранилище по умолчанию это CSV файл, STORE=postgres переключает на базу
	repo, closeStore, err := buildStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	// нужно, чтобы можно было выйти из приложения по команде
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	// Nats опционален: таблица заказов должна работать и без очереди,
	// поэтому без NATS_URL просто не поднимаем этот компонент
	var natsClient *natsLocal.Client
	subject := envOr("NATS_SUBJECT", "orders")
	if url := os.Getenv("NATS_URL"); url != "" {
		natsClient, err = natsLocal.New(url)
		if err != nil {
			return err
		}

		defer func() {
			// тут мы очищаем ненужные нам данные, подписчиков и т.п., обрываем соединение с Nats
			_ = natsClient.Close()
		}()

		// подписываемся на топик в Nats в отдельной горутине, чтобы ничего не блокировать
		go func() {
			err = natsClient.Subscribe(subject, func(msg *nats.Msg) {
				if err = handleEvent(ctx, repo, msg.Data); err != nil {
					log.Println(err)
				}
			})
			if err != nil {
				log.Printf("failed to subscribe to nats: %s\n", err)

				// завершаем работу приложения принудительно, т.к. подключенный,
				// но не работающий компонент очереди хуже отключенного
				sig <- syscall.SIGINT
			}
		}()
	}

	// слушаем tcp интерфейс
	ln, err := net.Listen(fiber.NetworkTCP4, envOr("HTTP_ADDRESS", ":3000"))
	if err != nil {
		return fmt.Errorf("failed to get http listener: %w", err)
	}

	// запускаем сервер в отдельной горутине
	go func() {
		handler := server.NewHandler(repo, cache.NewInMemory(), natsClient, subject)

		engine := html.New("./templates", ".html")
		// нумерация строк в таблице начинается с единицы
		engine.AddFunc("add", func(a, b int) int { return a + b })

		app := fiber.New(fiber.Config{
			Views:        engine,
			ServerHeader: "Order Flow",
		})

		handler.MountRoutes(app)

		if err = app.Listener(ln); err != nil {
			log.Printf("failed to start http server: %s\n", err)
			sig <- syscall.SIGINT
		}
	}()

	// на данном этапе main горутина не блокируется и мы спокойно дожидаемся
	// пользовательского завершения приложения через Stop, Ctrl+C
	// или когда может возникнуть ошибка выше тогда мы сами посылаем сигнал на завершение
	<-sig

	return nil
}

// buildStore выбирает реализацию хранилища по переменным окружения
func buildStore(ctx context.Context) (server.OrderStore, func(), error) {
	if os.Getenv("STORE") != "postgres" {
		s, err := store.NewCSVStore(ctx, envOr("ORDERS_FILE", "orders.csv"))
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}

	o := opt{
		host: os.Getenv("PG_HOST"),
		user: os.Getenv("PG_USER"),
		pass: os.Getenv("PG_PASS"),
		port: os.Getenv("PG_PORT"),
		name: os.Getenv("PG_NAME"),
	}

	// подключаемся к базе данных Postgres
	db, err := sqlx.Open("postgres", o.ConnectionString())
	if err != nil {
		return nil, nil, err
	}

	// тут можно настроить параметры подключения к базе
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	s, err := store.NewPostgresStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return s, func() { _ = db.Close() }, nil
}

func handleEvent(ctx context.Context, repo OrderStore, data []byte) error {
	request := &domain.Order{}
	if err := json.Unmarshal(data, request); err != nil {
		return fmt.Errorf("failed to unmarshal input json: %w", err)
	}

	request.Normalize()
	if err := request.Validate(); err != nil {
		return fmt.Errorf("refused to save invalid order: %w", err)
	}

	_, err := repo.Create(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
