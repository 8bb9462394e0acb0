package rest

import (
	"github.com/Dhoini/Loyalty-microservice/internal/api/rest/handlers"
	"github.com/Dhoini/Loyalty-microservice/internal/api/rest/middleware"
	"github.com/Dhoini/Loyalty-microservice/internal/service"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter настраивает маршрутизатор Gin с маршрутами и middleware
func SetupRouter(
	log *logger.Logger,
	registry *prometheus.Registry,
	clientService service.ClientService,
	loyaltyService service.LoyaltyService,
	dashboardService service.DashboardService,
) *gin.Engine {
	r := gin.New()

	// Подключение middleware
	r.Use(middleware.RequestLogger(log))
	r.Use(gin.Recovery())

	// Endpoint для проверки работоспособности сервиса
	r.GET("/health", handlers.HealthCheck)

	// Prometheus метрики
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Инициализация обработчиков
	clientHandler := handlers.NewClientHandler(clientService, log)
	purchaseHandler := handlers.NewPurchaseHandler(loyaltyService, log)
	couponHandler := handlers.NewCouponHandler(loyaltyService, dashboardService, log)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, log)

	v1 := r.Group("/api/v1")
	{
		// Клиенты
		clients := v1.Group("/clients")
		{
			clients.GET("", clientHandler.GetClients)
			clients.GET("/search", clientHandler.SearchClients)
			clients.GET("/:cpf", clientHandler.GetClient)
			clients.POST("", clientHandler.CreateClient)
			clients.PUT("/:cpf", clientHandler.UpdateClient)
			clients.GET("/:cpf/purchases", purchaseHandler.GetClientPurchases)
			clients.GET("/:cpf/coupons", couponHandler.GetClientCoupons)
		}

		// Покупки
		purchases := v1.Group("/purchases")
		{
			purchases.GET("", purchaseHandler.GetPurchases)
			purchases.POST("", purchaseHandler.RecordPurchase)
		}

		// Купоны
		coupons := v1.Group("/coupons")
		{
			coupons.GET("", couponHandler.GetCoupons)
			coupons.POST("/:id/redeem", couponHandler.RedeemCoupon)
		}

		// Админ-панель
		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("", dashboardHandler.GetOverview)
			dashboard.GET("/coupons/weekly", dashboardHandler.GetWeeklyCoupons)
			dashboard.GET("/coupons/monthly", dashboardHandler.GetMonthlyCoupons)
		}
	}

	return r
}
