package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/groow-platform/returns-service/internal/cache"
	"github.com/groow-platform/returns-service/internal/db"
	"github.com/groow-platform/returns-service/internal/kafka"
	"github.com/groow-platform/returns-service/internal/logger"
	"github.com/groow-platform/returns-service/internal/payment"
	"github.com/groow-platform/returns-service/internal/repository/postgresql"
	"github.com/groow-platform/returns-service/internal/returns"
	"github.com/groow-platform/returns-service/internal/server"
	"github.com/groow-platform/returns-service/internal/storage"
)

const (
	defaultPort     = "9000"
	defaultDataFile = "returns_data.json"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db.LoadEnv()
	zlog := logger.New()
	defer zlog.Sync()

	producer := newProducer(zlog)
	defer producer.Close()

	store, userRepo, publisher := newStorage(ctx, zlog, producer)

	gateway := newGateway(zlog)

	returnCache := cache.NewReturnCache(store)
	if err := returnCache.LoadInitialData(ctx); err != nil {
		zlog.Warn("failed to warm return cache", zap.Error(err))
	}

	service := returns.NewService(store, gateway, returnCache, zlog)

	seedAdmin(ctx, zlog, userRepo)

	auditManager := server.NewAuditManager(2, 5, 2*time.Second, producer)
	srv := server.New(service, userRepo, auditManager)

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gCtx, port)
	})
	if publisher != nil {
		g.Go(func() error {
			publisher.Run(gCtx)
			return nil
		})
	}
	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		return srv.Shutdown(shutdownCtx)
	})

	zlog.Info("returns service started", zap.String("port", port))

	if err := g.Wait(); err != nil {
		zlog.Fatal("service terminated", zap.Error(err))
	}
	zlog.Info("service gracefully stopped")
}

// newStorage picks the backing store from RMA_STORAGE. Postgres is the
// default; "file" keeps everything in a local JSON file and runs without
// the outbox publisher.
func newStorage(ctx context.Context, zlog *zap.Logger, producer kafka.Producer) (returns.Store, server.UserRepo, *kafka.Publisher) {
	if strings.EqualFold(os.Getenv("RMA_STORAGE"), "file") {
		path := os.Getenv("RMA_DATA_FILE")
		if path == "" {
			path = defaultDataFile
		}
		fs, err := storage.NewFileStorage(path)
		if err != nil {
			zlog.Fatal("failed to open file storage", zap.Error(err))
		}
		zlog.Info("using file storage", zap.String("path", path))
		return fs, noopUserRepo{}, nil
	}

	database, err := db.NewDb(ctx)
	if err != nil {
		zlog.Fatal("database init error", zap.Error(err))
	}

	returnRepo := postgresql.NewReturnRequestRepo(database)
	inspectionRepo := postgresql.NewInspectionRepo(database)
	refundRepo := postgresql.NewRefundRepo(database)
	historyRepo := postgresql.NewHistoryRepo(database)
	outboxRepo := postgresql.NewOutboxTaskRepo()
	userRepo := postgresql.NewUserRepo(database)

	store := storage.NewPostgresStorage(database, returnRepo, inspectionRepo, refundRepo, historyRepo, outboxRepo)

	publisher := kafka.NewPublisher(database, outboxRepo, producer, kafka.PublisherConfig{
		PollInterval: time.Second,
		BatchSize:    50,
		MaxAttempts:  5,
	})

	return store, userRepo, publisher
}

func newProducer(zlog *zap.Logger) kafka.Producer {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		zlog.Info("KAFKA_BROKERS not set, events go to stdout")
		return kafka.NewConsoleProducer()
	}
	zlog.Info("using kafka producer", zap.String("brokers", brokers))
	return kafka.NewKafkaProducer(strings.Split(brokers, ","))
}

func newGateway(zlog *zap.Logger) payment.Gateway {
	url := os.Getenv("PAYMENT_GATEWAY_URL")
	if url == "" {
		zlog.Info("PAYMENT_GATEWAY_URL not set, refunds go to stdout")
		return payment.NewConsoleGateway()
	}
	zlog.Info("using http payment gateway", zap.String("url", url))
	return payment.NewHTTPGateway(url, 10*time.Second)
}

func seedAdmin(ctx context.Context, zlog *zap.Logger, userRepo server.UserRepo) {
	creator, ok := userRepo.(interface {
		CreateUser(ctx context.Context, username, password string) error
	})
	if !ok {
		return
	}

	username := os.Getenv("ADMIN_USER")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		log.Println("ADMIN_USER/ADMIN_PASSWORD not set, skipping admin seed")
		return
	}
	if err := creator.CreateUser(ctx, username, password); err != nil {
		zlog.Warn("failed to seed admin user", zap.Error(err))
	}
}

// noopUserRepo accepts any credentials. File storage mode is for local
// development only.
type noopUserRepo struct{}

func (noopUserRepo) ValidateUser(ctx context.Context, username, password string) (bool, error) {
	return true, nil
}
