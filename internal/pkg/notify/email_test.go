package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/jabbarSoomro/project-management/internal/model"
)

func TestBuildTaskAssignedBody(t *testing.T) {
	task := &model.Task{
		ID:       1,
		Title:    "Wireframes",
		Deadline: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:   model.TaskStatusPending,
		Project: model.Project{
			Title: "Redesign",
		},
		AssignedUser: model.User{
			Name:  "Dana",
			Email: "dana@example.com",
		},
	}

	body := buildTaskAssignedBody(task)

	for _, want := range []string{
		"Hello Dana",
		"Wireframes",
		"Redesign",
		"February 01, 2025",
		"pending",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}
