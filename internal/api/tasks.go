package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jabbarSoomro/project-management/internal/service"
)

// createTaskRequest 创建任务的请求参数。
type createTaskRequest struct {
	Title          string `json:"title"`
	Deadline       string `json:"deadline"` // "2006-01-02"
	AssignedUserID uint   `json:"assigned_user_id"`
	Status         string `json:"status"`
}

// handleCreateTask 在项目下创建任务并调度指派通知。
//
// POST /projects/:id/tasks
func (s *Server) handleCreateTask(c *gin.Context) {
	projectID, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}

	in := service.CreateTaskInput{
		Title:          req.Title,
		AssignedUserID: req.AssignedUserID,
		Status:         req.Status,
	}
	if req.Deadline != "" {
		d, err := time.Parse(dateLayout, req.Deadline)
		if err != nil {
			respondValidationError(c, &service.ValidationError{Fields: map[string]string{
				"deadline": "The deadline is not a valid date.",
			}})
			return
		}
		in.Deadline = d
	}

	task, err := s.tasks.CreateTask(c.Request.Context(), projectID, in)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
			return
		}
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			respondValidationError(c, verr)
			return
		}
		s.logger.Error("create task failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	// 回读任务以带上被指派用户信息
	created, err := s.tasks.GetTaskWithRelations(c.Request.Context(), task.ID)
	if err != nil || created == nil {
		created = task
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"data":    toTaskResource(created),
	})
}

// handleGetTask 返回任务详情。
//
// GET /tasks/:id
func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return
	}

	task, err := s.tasks.GetTaskWithRelations(c.Request.Context(), id)
	if err != nil {
		s.logger.Error("get task failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toTaskResource(task)})
}
