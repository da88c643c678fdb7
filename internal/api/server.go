package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jabbarSoomro/project-management/internal/api/auth"
	"github.com/jabbarSoomro/project-management/internal/api/middleware"
	"github.com/jabbarSoomro/project-management/internal/config"
	"github.com/jabbarSoomro/project-management/internal/model"
	"github.com/jabbarSoomro/project-management/internal/pkg/metrics"
	"github.com/jabbarSoomro/project-management/internal/pkg/notifyqueue"
	"github.com/jabbarSoomro/project-management/internal/pkg/ratelimit"
	"github.com/jabbarSoomro/project-management/internal/service"
	"github.com/jabbarSoomro/project-management/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Server 封装了 API 服务所需的依赖和路由处理。
//
// 它持有数据库连接、Redis 客户端、业务服务以及 Gin 路由引擎。
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *gorm.DB
	rdb      *redis.Client
	router   *gin.Engine
	auth     *auth.Handler
	projects ProjectManager
	tasks    TaskManager
}

// ProjectManager 项目业务逻辑的消费端接口。
type ProjectManager interface {
	CreateProject(ctx context.Context, ownerID uint, in service.CreateProjectInput) (*model.Project, error)
	GetProjectWithTasks(ctx context.Context, id uint) (*model.Project, error)
	ListOwnerProjects(ctx context.Context, ownerID uint, page, perPage int) (*store.ProjectPage, error)
}

// TaskManager 任务业务逻辑的消费端接口。
type TaskManager interface {
	CreateTask(ctx context.Context, projectID uint, in service.CreateTaskInput) (*model.Task, error)
	GetTaskWithRelations(ctx context.Context, id uint) (*model.Task, error)
}

// NewServer 初始化 API 服务器。
//
// 它负责：
// 1. 连接 MySQL 数据库并执行自动迁移
// 2. 连接 Redis
// 3. 初始化业务服务与通知生产者
// 4. 初始化 Gin 路由引擎
//
// 参数:
//
//	ctx: 上下文
//	cfg: 配置对象
//	logger: 日志记录器
//
// 返回值:
//
//	*Server: 初始化完成的服务器实例
//	error: 初始化失败返回错误
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent), // 关闭GORM调试日志
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.User{}, &model.Project{}, &model.Task{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	projectStore := store.NewGormProjectStore(db)
	taskStore := store.NewGormTaskStore(db)
	userStore := store.NewGormUserStore(db)

	producer := notifyqueue.NewProducer(rdb, logger, cfg.App.NotifyQueueStream)

	projectSvc := service.NewProjectService(projectStore, logger, cfg.App.DefaultPageSize, cfg.App.MaxPageSize)
	taskSvc := service.NewTaskService(taskStore, projectStore, userStore, producer, logger)
	authSvc := service.NewAuthService(userStore, logger, cfg.Security.JWTSecret, 24*time.Hour)

	// 初始化 Prometheus 指标
	metrics.InitMetrics(cfg.App.WorkerPoolSize)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		rdb:      rdb,
		router:   r,
		auth:     auth.NewHandler(authSvc, logger),
		projects: projectSvc,
		tasks:    taskSvc,
	}
	s.registerRoutes()
	return s, nil
}

// Run 启动 HTTP 服务器并开始监听请求。
func (s *Server) Run() error {
	s.logger.Info("api server listening", slog.String("addr", s.cfg.App.HTTPAddr))
	return s.router.Run(s.cfg.App.HTTPAddr)
}

// Router 返回 HTTP 路由处理器。
func (s *Server) Router() http.Handler {
	return s.router
}

// Close 关闭数据库与缓存连接。
func (s *Server) Close() error {
	var firstErr error
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			firstErr = err
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			if closeErr := sqlDB.Close(); closeErr != nil {
				if firstErr == nil {
					firstErr = closeErr
				}
			}
		}
	}
	return firstErr
}

// registerRoutes 注册所有的 API 路由。
func (s *Server) registerRoutes() {
	// Prometheus metrics 端点
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/healthz", s.handleHealthz)

	// 注册/登录走限流，防止撞库
	limiter := ratelimit.NewRedisRateLimiter(s.rdb, "taskhub:ratelimit:auth:", s.cfg.App.RateLimit, s.cfg.App.RateBurst)
	guarded := s.router.Group("/")
	guarded.Use(middleware.RateLimit(limiter, s.logger))
	guarded.POST("/register", s.auth.Register)
	guarded.POST("/login", s.auth.Login)

	authed := s.router.Group("/")
	authed.Use(middleware.AuthMiddleware(s.cfg.Security.JWTSecret))
	authed.GET("/projects", s.handleListProjects)
	authed.POST("/projects", s.handleCreateProject)
	authed.GET("/projects/:id", s.handleGetProject)
	authed.POST("/projects/:id/tasks", s.handleCreateTask)
	authed.GET("/tasks/:id", s.handleGetTask)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil || s.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	var one int
	if err := s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getUserID(c *gin.Context) uint {
	return c.GetUint("userID")
}
