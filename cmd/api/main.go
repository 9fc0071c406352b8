package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "governance/api/swagger" // swagger docs
	"governance/internal/cache"
	"governance/internal/config"
	"governance/internal/database"
	"governance/internal/handler"
	"governance/internal/logger"
	"governance/internal/metrics"
	"governance/internal/middleware"
	"governance/internal/model"
	"governance/internal/notification"
	"governance/internal/repository"
	"governance/internal/repository/memory"
	"governance/internal/service"
	"governance/internal/websocket"
	"governance/pkg/apperror"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Compliance Governance API
// @version         1.0
// @description     Versioned compliance items with review, resubmission and active-version control.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// stores bundles the repositories of one storage driver.
type stores struct {
	tx          repository.TransactionManager
	compliances repository.ComplianceRepository
	approvals   repository.ApprovalRepository
	policies    repository.PolicyRepository
	users       repository.UserRepository
	audit       repository.AuditRepository
}

func openStores(cfg *config.Config, log *zap.Logger) (stores, error) {
	if cfg.Store.Driver == "memory" {
		log.Warn("using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return stores{
			tx:          memory.NewTxManager(store),
			compliances: memory.NewComplianceRepository(store),
			approvals:   memory.NewApprovalRepository(store),
			policies:    memory.NewPolicyRepository(store),
			users:       memory.NewUserRepository(store),
			audit:       memory.NewAuditRepository(store),
		}, nil
	}

	db, err := database.NewConnection(cfg.Database.DSN(), database.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, log)
	if err != nil {
		return stores{}, fmt.Errorf("database connection failed: %w", err)
	}
	log.Info("connected to PostgreSQL", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Name))

	return stores{
		tx: repository.NewTransactionManager(db, repository.TxOptions{
			Timeout:     cfg.Store.Timeout,
			LockTimeout: cfg.Store.LockTimeout,
			MaxRetries:  cfg.Store.MaxRetries,
		}),
		compliances: repository.NewComplianceRepository(db),
		approvals:   repository.NewApprovalRepository(db),
		policies:    repository.NewPolicyRepository(db),
		users:       repository.NewUserRepository(db),
		audit:       repository.NewAuditRepository(db),
	}, nil
}

// notificationChannels always includes the websocket hub; email and kafka
// join when configured.
func notificationChannels(cfg *config.Config, hub *websocket.Hub, log *zap.Logger) ([]notification.Channel, func()) {
	channels := []notification.Channel{notification.NewHubChannel(hub)}
	cleanup := func() {}

	if cfg.SMTP.Enabled() {
		dialer := notification.NewSMTPDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
		channels = append(channels, notification.NewEmailChannel(dialer, cfg.SMTP.From))
		log.Info("email notifications enabled", zap.String("smtp_host", cfg.SMTP.Host))
	}
	if cfg.Kafka.Enabled() {
		kc := notification.NewKafkaChannel(notification.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		channels = append(channels, kc)
		cleanup = func() {
			if err := kc.Close(); err != nil {
				log.Warn("kafka writer close failed", zap.Error(err))
			}
		}
		log.Info("kafka notifications enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	return channels, cleanup
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}

	var userCache service.RecipientCache
	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// The directory still works from the database alone
			log.Warn("redis unavailable, user cache disabled", zap.Error(err))
		} else {
			defer func() { _ = client.Close() }()
			userCache = cache.NewUserCache(client, cfg.Redis.UserTTL)
		}
	}

	secret := []byte(cfg.JWTSecret)
	userService := service.NewUserService(st.users, userCache, secret, log)
	if err := bootstrapAdmin(ctx, cfg.BootstrapAdmin, userService, log); err != nil {
		return err
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log)
	go wsHub.Run(ctx)

	channels, closeChannels := notificationChannels(cfg, wsHub, log)
	defer closeChannels()
	dispatcher := notification.NewDispatcher(userService, channels, notification.Options{
		Workers:   cfg.Notify.Workers,
		QueueSize: cfg.Notify.QueueSize,
		Timeout:   cfg.Notify.Timeout,
	}, log, m)
	dispatcher.Start()
	defer dispatcher.Close()

	deps := service.WorkflowDeps{
		Tx:          st.tx,
		Compliances: st.compliances,
		Approvals:   st.approvals,
		Policies:    st.policies,
		Audit:       st.audit,
		Notifier:    dispatcher,
		Log:         log,
		Metrics:     m,
	}
	approvalWorkflow := service.NewApprovalWorkflow(deps)
	complianceService := service.NewComplianceService(deps, approvalWorkflow)
	activeVersions := service.NewActiveVersionController(deps)
	policyService := service.NewPolicyService(deps, st.users)
	auditService := service.NewAuditService(st.audit)

	auth := middleware.NewAuth(secret)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, secret)
	})

	root := router.Group("")
	handler.NewUserHandler(userService, auth, log).RegisterRoutes(root)
	handler.NewPolicyHandler(policyService, auth, log).RegisterRoutes(root)
	handler.NewComplianceHandler(complianceService, activeVersions, auth, log).RegisterRoutes(root)
	handler.NewApprovalHandler(approvalWorkflow, activeVersions, auth, log).RegisterRoutes(root)
	handler.NewAuditHandler(auditService, auth, log).RegisterRoutes(root)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func bootstrapAdmin(ctx context.Context, admin config.BootstrapAdmin, users service.UserService, log *zap.Logger) error {
	if admin.Username == "" || admin.Password == "" {
		return nil
	}
	_, err := users.CreateUser(ctx, service.CreateUserRequest{
		Username: admin.Username,
		FullName: "Administrator",
		Email:    admin.Email,
		Password: admin.Password,
		Role:     model.RoleAdmin,
	})
	switch {
	case err == nil:
		log.Info("bootstrap admin created", zap.String("username", admin.Username))
	case apperror.Is(err, apperror.CodeConflict):
		log.Debug("bootstrap admin already exists", zap.String("username", admin.Username))
	default:
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	return nil
}
