package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Markishime/smart-ecolock-sub003/internal/service"
	"github.com/Markishime/smart-ecolock-sub003/pkg/response"
)

// ScheduleHandler 课表导入 HTTP 处理器
type ScheduleHandler struct {
	loaderSvc service.ScheduleLoaderService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(loaderSvc service.ScheduleLoaderService) *ScheduleHandler {
	return &ScheduleHandler{loaderSvc: loaderSvc}
}

// ImportSchedules 从 ICS 文件导入课表
// POST /api/v1/schedules/import
// multipart/form-data, field="file"
func (h *ScheduleHandler) ImportSchedules(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 15000, "请上传 ICS 文件")
		return
	}
	defer file.Close()

	resp, err := h.loaderSvc.ImportICS(c.Request.Context(), file)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, resp)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrICSInvalid):
		response.BadRequest(c, 15001, "ICS 格式解析失败")
	case errors.Is(err, service.ErrICSEmpty):
		response.BadRequest(c, 15002, "ICS 中没有可导入的课表条目")
	default:
		response.InternalError(c)
	}
}
