package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "attendance-http-service/docs"
	"attendance-http-service/internal/app/controllers"
	"attendance-http-service/internal/app/middleware"
	"attendance-http-service/internal/domain/services/container"
	"attendance-http-service/internal/infrastructure/config"
	"attendance-http-service/internal/infrastructure/database"
)

// SetupRouter 初始化并返回配置好的路由和服务容器
func SetupRouter(pool *database.ConnectionPool, cfg *config.Config) (*gin.Engine, *container.ServiceContainer) {
	r := gin.Default()

	// CORS：看板前端和设备都跨域访问
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 创建服务容器
	serviceContainer := container.NewServiceContainer(pool.GetDB(), cfg)
	// 初始化认证中间件
	middleware.InitAuthMiddleware(cfg, pool.GetDB())
	// Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerRoutes(r, pool, serviceContainer)
	return r, serviceContainer
}

// registerRoutes 配置所有API路由
func registerRoutes(r *gin.Engine, pool *database.ConnectionPool, container *container.ServiceContainer) {
	api := r.Group("/api")
	registerPublicRoutes(api, pool, container)
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由（设备和探活接口不走JWT）
func registerPublicRoutes(api *gin.RouterGroup, pool *database.ConnectionPool, container *container.ServiceContainer) {
	// IP限流 - 每秒10个请求，最多突发20个
	api.Use(middleware.IPRateLimiter(10, 20))

	// 健康检查路由
	health := controllers.NewHealthCheckController(pool)
	api.GET("/ping", health.Ping)
	api.GET("/health", health.Health)

	// 认证路由
	api.POST("/auth/login", controllers.HandleAuthFunc(container, "login"))

	// ESP32设备路由：设备在内网，不带JWT
	esp32Group := api.Group("/esp32")
	esp32Group.POST("/register", controllers.HandleDeviceFunc(container, "registerDevice"))
	esp32Group.GET("/status", controllers.HandleDeviceFunc(container, "getDeviceStatus"))
	esp32Group.GET("/enrollment/:fingerprint_id", controllers.HandleDeviceFunc(container, "checkEnrollment"))

	// 打卡路由：指纹打卡来自设备，手动打卡来自一体机看板
	attendanceGroup := api.Group("/attendance")
	attendanceGroup.Use(middleware.PathRateLimiter(20, 40))
	attendanceGroup.POST("/add", controllers.HandleAttendanceFunc(container, "addAttendance"))
	attendanceGroup.POST("/fingerprint", controllers.HandleAttendanceFunc(container, "fingerprintAttendance"))

	// 设备录入完成回调
	api.POST("/employees/enroll-callback", controllers.HandleEmployeeFunc(container, "enrollCallback"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(api *gin.RouterGroup, container *container.ServiceContainer) {
	auth := api.Group("/")
	auth.Use(middleware.AuthenticateAdmin())
	// 每秒30个请求，最多突发50个
	auth.Use(middleware.IPRateLimiter(30, 50))

	// 员工路由
	employeeGroup := auth.Group("/employees")
	employeeGroup.GET("", controllers.HandleEmployeeFunc(container, "getEmployees"))
	employeeGroup.GET("/:id", controllers.HandleEmployeeFunc(container, "getEmployee"))
	employeeGroup.POST("", controllers.HandleEmployeeFunc(container, "createEmployee"))
	employeeGroup.PUT("/:id", controllers.HandleEmployeeFunc(container, "updateEmployee"))
	employeeGroup.DELETE("/:id", controllers.HandleEmployeeFunc(container, "deleteEmployee"))
	// 录入要等设备交互，单独收紧限流
	employeeGroup.POST("/:id/enroll", middleware.PathRateLimiter(1, 2), controllers.HandleEmployeeFunc(container, "enrollFingerprint"))

	// 考勤查询与管理路由
	attendanceGroup := auth.Group("/attendance")
	attendanceGroup.GET("/today", controllers.HandleAttendanceFunc(container, "getTodayAttendance"))
	attendanceGroup.GET("/employee/:id", controllers.HandleAttendanceFunc(container, "getEmployeeAttendance"))
	attendanceGroup.GET("/all", controllers.HandleAttendanceFunc(container, "getAllAttendance"))
	attendanceGroup.DELETE("/today", controllers.HandleAttendanceFunc(container, "deleteTodayAttendance"))
	attendanceGroup.DELETE("/all", controllers.HandleAttendanceFunc(container, "deleteAllAttendance"))
	attendanceGroup.DELETE("/unenrolled", controllers.HandleAttendanceFunc(container, "deleteUnenrolledAttendance"))

	// 设备管理路由
	auth.POST("/esp32/wipe", controllers.HandleDeviceFunc(container, "wipeDevice"))
}
