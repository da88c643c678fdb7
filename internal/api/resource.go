package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jabbarSoomro/project-management/internal/model"
	"github.com/jabbarSoomro/project-management/internal/service"
)

const dateLayout = "2006-01-02"

// userResource 响应里嵌套的用户信息。
type userResource struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// taskResource 任务的响应形态。
type taskResource struct {
	ID           uint          `json:"id"`
	ProjectID    uint          `json:"project_id"`
	Title        string        `json:"title"`
	Deadline     string        `json:"deadline"`
	Status       string        `json:"status"`
	AssignedUser *userResource `json:"assigned_user,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// projectResource 项目的响应形态。
type projectResource struct {
	ID        uint           `json:"id"`
	Title     string         `json:"title"`
	Client    string         `json:"client"`
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Status    string         `json:"status"`
	UserID    uint           `json:"user_id"`
	Tasks     []taskResource `json:"tasks,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// paginationMeta 分页元信息。
type paginationMeta struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

func toTaskResource(t *model.Task) taskResource {
	res := taskResource{
		ID:        t.ID,
		ProjectID: t.ProjectID,
		Title:     t.Title,
		Deadline:  t.Deadline.Format(dateLayout),
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.AssignedUser.ID != 0 {
		res.AssignedUser = &userResource{
			ID:    t.AssignedUser.ID,
			Name:  t.AssignedUser.Name,
			Email: t.AssignedUser.Email,
		}
	}
	return res
}

func toProjectResource(p *model.Project, withTasks bool) projectResource {
	res := projectResource{
		ID:        p.ID,
		Title:     p.Title,
		Client:    p.Client,
		StartDate: p.StartDate.Format(dateLayout),
		EndDate:   p.EndDate.Format(dateLayout),
		Status:    string(p.Status),
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if withTasks {
		res.Tasks = make([]taskResource, 0, len(p.Tasks))
		for i := range p.Tasks {
			res.Tasks = append(res.Tasks, toTaskResource(&p.Tasks[i]))
		}
	}
	return res
}

// respondValidationError 返回 422 与字段级错误信息。
func respondValidationError(c *gin.Context, verr *service.ValidationError) {
	errs := make(map[string][]string, len(verr.Fields))
	for field, msg := range verr.Fields {
		errs[field] = []string{msg}
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"message": "The given data was invalid.",
		"errors":  errs,
	})
}
