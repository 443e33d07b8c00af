package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Markishime/smart-ecolock-sub003/internal/service"
	"github.com/Markishime/smart-ecolock-sub003/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSummary 导出班级考勤汇总表
// GET /api/v1/export/summary?section_id=xxx
func (h *ExportHandler) ExportSummary(c *gin.Context) {
	sectionID := c.Query("section_id")
	if sectionID == "" {
		response.BadRequest(c, 10001, "section_id 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportSectionSummary(c.Request.Context(), sectionID, time.Now())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, 16001, "班级不存在")
	case errors.Is(err, service.ErrExportNoRecords):
		response.NotFound(c, 16002, "该班级暂无考勤记录")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
