package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dhoini/Loyalty-microservice/config"
	"github.com/Dhoini/Loyalty-microservice/internal/api/rest"
	"github.com/Dhoini/Loyalty-microservice/internal/kafka"
	"github.com/Dhoini/Loyalty-microservice/internal/kafka/producer"
	"github.com/Dhoini/Loyalty-microservice/internal/metrics"
	"github.com/Dhoini/Loyalty-microservice/internal/repository"
	"github.com/Dhoini/Loyalty-microservice/internal/repository/postgres"
	"github.com/Dhoini/Loyalty-microservice/internal/service"
	"github.com/Dhoini/Loyalty-microservice/pkg/clock"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

var log *logger.Logger

func init() {
	// Загружаем переменные окружения; отсутствие .env не ошибка
	_ = godotenv.Load()

	// Инициализация логгера
	logLevel := logger.INFO
	if os.Getenv("DEBUG") == "true" {
		logLevel = logger.DEBUG
	}
	log = logger.New(logLevel)
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	// Создаем контекст с возможностью отмены
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализация Prometheus
	promRegistry := prometheus.NewRegistry()
	loyaltyMetrics := metrics.NewLoyaltyMetrics(promRegistry, log)
	systemMetrics := metrics.NewSystemMetrics(promRegistry, log)

	// Запускаем сбор системных метрик
	systemMetrics.StartRecording(15 * time.Second)
	defer systemMetrics.Stop()

	// Подключение к базе данных
	dbPool, err := postgres.NewConnection(ctx, cfg.Database.GetDSN(), log)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	// Репозитории
	clientRepo := postgres.NewPostgresClientRepository(dbPool, log)
	purchaseRepo := postgres.NewPostgresPurchaseRepository(dbPool, log)
	couponRepo := postgres.NewPostgresCouponRepository(dbPool, log)

	// Кеширование записей клиентов в Redis
	cache, err := repository.NewRedisCacheRepository(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis: %v", err)
	}
	defer cache.Close()

	cachedClientRepo := repository.NewCachedClientRepository(clientRepo, cache, log)

	// Инициализация Kafka продюсера
	loyaltyProducer := producer.NewNoopLoyaltyProducer()
	if cfg.Kafka.Enabled {
		kafkaConfig := kafka.NewConfig(cfg.Kafka.Brokers)
		saramaConfig := kafka.NewSaramaConfig(kafkaConfig, log)

		kafkaProducer, err := sarama.NewSyncProducer(kafkaConfig.Brokers, saramaConfig)
		if err != nil {
			log.Fatal("Failed to create Kafka producer: %v", err)
		}

		loyaltyProducer = producer.NewKafkaLoyaltyProducer(kafkaProducer, log)
	}
	defer loyaltyProducer.Close()

	// Сервисы
	systemClock := clock.System()
	clientService := service.NewClientService(cachedClientRepo, log)
	loyaltyService := service.NewLoyaltyService(
		cachedClientRepo, purchaseRepo, couponRepo,
		loyaltyProducer, loyaltyMetrics, systemClock, log,
	)
	dashboardService := service.NewDashboardService(
		cachedClientRepo, purchaseRepo, couponRepo, systemClock, log,
	)

	// Установка режима Gin
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Настройка маршрутизатора
	router := rest.SetupRouter(log, promRegistry, clientService, loyaltyService, dashboardService)

	// Создание и запуск HTTP сервера
	server := rest.NewServer(router, cfg, log)

	// Запуск сервера в горутине
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server error: %v", err)
		}
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutdown signal received")

	// Graceful shutdown с таймаутом
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
