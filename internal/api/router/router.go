package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Markishime/smart-ecolock-sub003/config"
	"github.com/Markishime/smart-ecolock-sub003/internal/api/handler"
	"github.com/Markishime/smart-ecolock-sub003/internal/api/middleware"
	"github.com/Markishime/smart-ecolock-sub003/pkg/jwt"
	"github.com/Markishime/smart-ecolock-sub003/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, verifier *jwt.Verifier, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 信号入口（设备端点，无操作员认证；传输层 API Key 由网关负责）
		signals := v1.Group("/signals")
		signals.Use(middleware.RateLimit(rdb, 120, time.Minute))
		{
			signals.POST("/rfid", h.Signal.IngestRFIDTap)
			signals.POST("/weight", h.Signal.IngestWeightSignal)
		}

		// 只读查询与实时订阅（教师端大屏，无需认证）
		v1.GET("/attendance", h.Attendance.ListAttendance)
		v1.GET("/attendance/stream", h.Stream.StreamAttendance)
		v1.GET("/seats", h.Seat.ListSeats)
		v1.GET("/seats/stream", h.Stream.StreamSeats)
		v1.GET("/summary", h.Summary.GetSummary)

		// 参考目录（只读）
		v1.GET("/students", h.Directory.ListStudents)
		v1.GET("/sections", h.Directory.ListSections)
		v1.GET("/subjects", h.Directory.ListSubjects)
		v1.GET("/rooms", h.Directory.ListRooms)

		// 需要操作员认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(verifier))
		{
			// 手动建档 / 改判 / 删除
			authorized.POST("/attendance", h.Attendance.CreateAttendance)
			authorized.PUT("/attendance/:id", h.Attendance.EditAttendance)
			authorized.DELETE("/attendance/:id", h.Attendance.DeleteAttendance)
			authorized.POST("/attendance/finalize", middleware.RoleAuth("admin"), h.Attendance.FinalizeAttendance)

			// 座位管理
			authorized.PUT("/seats/:id/assign", h.Seat.AssignSeat)
			authorized.POST("/seats/reset", h.Seat.ResetRoom)

			// 课表导入与汇总导出
			authorized.POST("/schedules/import", middleware.RoleAuth("admin"), h.Schedule.ImportSchedules)
			authorized.GET("/export/summary", h.Export.ExportSummary)
		}
	}

	return r
}
