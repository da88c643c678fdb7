package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jabbarSoomro/project-management/internal/service"
)

// createProjectRequest 创建项目的请求参数。
type createProjectRequest struct {
	Title     string `json:"title"`
	Client    string `json:"client"`
	StartDate string `json:"start_date"` // "2006-01-02"
	EndDate   string `json:"end_date"`   // "2006-01-02"
	Status    string `json:"status"`
}

// handleCreateProject 处理创建项目的请求。
//
// POST /projects
//
// Owner 取自认证身份，请求体里传 user_id 不生效。
func (s *Server) handleCreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}

	in := service.CreateProjectInput{
		Title:  req.Title,
		Client: req.Client,
		Status: req.Status,
	}

	fields := map[string]string{}
	if req.StartDate != "" {
		d, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			fields["start_date"] = "The start date is not a valid date."
		} else {
			in.StartDate = d
		}
	}
	if req.EndDate != "" {
		d, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			fields["end_date"] = "The end date is not a valid date."
		} else {
			in.EndDate = d
		}
	}
	if len(fields) > 0 {
		respondValidationError(c, &service.ValidationError{Fields: fields})
		return
	}

	project, err := s.projects.CreateProject(c.Request.Context(), getUserID(c), in)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			respondValidationError(c, verr)
			return
		}
		s.logger.Error("create project failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully",
		"data":    toProjectResource(project, false),
	})
}

// handleListProjects 分页列出当前用户的项目。
//
// GET /projects?page=1&per_page=10
func (s *Server) handleListProjects(c *gin.Context) {
	page := parseQueryInt(c, "page", 1)
	perPage := parseQueryInt(c, "per_page", 0) // 0 表示使用默认值

	result, err := s.projects.ListOwnerProjects(c.Request.Context(), getUserID(c), page, perPage)
	if err != nil {
		s.logger.Error("list projects failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	data := make([]projectResource, 0, len(result.Projects))
	for i := range result.Projects {
		data = append(data, toProjectResource(&result.Projects[i], false))
	}

	c.JSON(http.StatusOK, gin.H{
		"data": data,
		"meta": paginationMeta{
			CurrentPage: result.CurrentPage,
			LastPage:    result.LastPage,
			PerPage:     result.PerPage,
			Total:       result.Total,
		},
	})
}

// handleGetProject 返回项目详情及其任务列表。
//
// GET /projects/:id
func (s *Server) handleGetProject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
		return
	}

	project, err := s.projects.GetProjectWithTasks(c.Request.Context(), id)
	if err != nil {
		s.logger.Error("get project failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toProjectResource(project, true)})
}

// parseIDParam 解析路径参数 :id。
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseQueryInt 解析查询参数中的整数值。
func parseQueryInt(c *gin.Context, key string, def int) int {
	val := c.Query(key)
	if val == "" {
		return def
	}
	iv, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return iv
}
