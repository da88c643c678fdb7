package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jabbarSoomro/project-management/internal/config"
	"github.com/jabbarSoomro/project-management/internal/model"

	"gopkg.in/gomail.v2"
)

// EmailNotifier 实现邮件通知。
type EmailNotifier struct {
	cfg    *config.EmailConfig
	logger *slog.Logger
}

// NewEmailNotifier 创建一个新的邮件通知器。
func NewEmailNotifier(cfg *config.EmailConfig, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		logger: logger,
	}
}

// SendTaskAssigned 发送任务指派邮件。
//
// 收件人取自 task.AssignedUser.Email，邮件内容包含任务标题、
// 所属项目标题、格式化的截止日期与任务状态。
func (n *EmailNotifier) SendTaskAssigned(ctx context.Context, task *model.Task) error {
	if n.cfg.SMTPHost == "" || n.cfg.SMTPUser == "" || n.cfg.FromEmail == "" {
		n.logger.Warn("email config missing, skip notification")
		return nil
	}

	toEmail := strings.TrimSpace(task.AssignedUser.Email)
	if toEmail == "" {
		n.logger.Warn("email recipient empty, skip notification",
			slog.Uint64("task_id", uint64(task.ID)))
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.FromEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "New Task Assigned: "+task.Title)
	m.SetBody("text/html", buildTaskAssignedBody(task))

	d := gomail.NewDialer(n.cfg.SMTPHost, n.cfg.SMTPPort, n.cfg.SMTPUser, n.cfg.SMTPPass)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("assignment email sent",
		slog.String("to", toEmail),
		slog.Uint64("task_id", uint64(task.ID)))
	return nil
}

func buildTaskAssignedBody(task *model.Task) string {
	template := `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8" />
<style>
  body { font-family: Arial, sans-serif; background: #f6f7fb; color: #1f2937; }
  .card { max-width: 600px; margin: 24px auto; background: #ffffff; border-radius: 12px; overflow: hidden; border: 1px solid #e5e7eb; }
  .header { background: #0f172a; color: #ffffff; padding: 16px 20px; font-size: 16px; font-weight: bold; }
  .content { padding: 20px; }
  .content li { margin-bottom: 6px; }
  .footer { margin-top: 20px; font-size: 12px; color: #6b7280; }
</style>
</head>
<body>
  <div class="card">
    <div class="header">New Task Assigned</div>
    <div class="content">
      <p>Hello %s,</p>
      <p>You have been assigned a new task:</p>
      <ul>
        <li><strong>Title:</strong> %s</li>
        <li><strong>Project:</strong> %s</li>
        <li><strong>Deadline:</strong> %s</li>
        <li><strong>Status:</strong> %s</li>
      </ul>
      <div class="footer">Please login to the system to view more details.</div>
    </div>
  </div>
</body>
</html>`

	return fmt.Sprintf(template,
		task.AssignedUser.Name,
		task.Title,
		task.Project.Title,
		task.Deadline.Format("January 02, 2006"),
		task.Status)
}
