package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Markishime/smart-ecolock-sub003/internal/dto"
	"github.com/Markishime/smart-ecolock-sub003/internal/service"
	"github.com/Markishime/smart-ecolock-sub003/pkg/response"
)

// SummaryHandler 考勤汇总 HTTP 处理器
type SummaryHandler struct {
	summarySvc service.SummaryService
}

// NewSummaryHandler 创建 SummaryHandler
func NewSummaryHandler(summarySvc service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summarySvc: summarySvc}
}

// GetSummary 查询学生在某班级的周/月汇总
// GET /api/v1/summary?student_id=&section_id=
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	var req dto.SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	summary, err := h.summarySvc.Summarize(c.Request.Context(), req.StudentID, req.SectionID, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.NotFound(c, 12001, "学生不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, summary)
}
