package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Markishime/smart-ecolock-sub003/internal/service"
	"github.com/Markishime/smart-ecolock-sub003/pkg/response"
)

// DirectoryHandler 参考目录只读 HTTP 处理器
// 学生/班级/科目/教室归外部系统维护，这里仅暴露只读查询
type DirectoryHandler struct {
	directorySvc service.DirectoryService
}

// NewDirectoryHandler 创建 DirectoryHandler
func NewDirectoryHandler(directorySvc service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directorySvc: directorySvc}
}

// ListStudents 学生目录
// GET /api/v1/students
func (h *DirectoryHandler) ListStudents(c *gin.Context) {
	students, err := h.directorySvc.ListStudents(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": students})
}

// ListSections 班级目录
// GET /api/v1/sections
func (h *DirectoryHandler) ListSections(c *gin.Context) {
	sections, err := h.directorySvc.ListSections(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": sections})
}

// ListSubjects 科目目录
// GET /api/v1/subjects
func (h *DirectoryHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.directorySvc.ListSubjects(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": subjects})
}

// ListRooms 教室目录
// GET /api/v1/rooms
func (h *DirectoryHandler) ListRooms(c *gin.Context) {
	rooms, err := h.directorySvc.ListRooms(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": rooms})
}
