package api

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jabbarSoomro/project-management/internal/model"
)

// SeedDemoData 初始化演示数据。
//
// 创建一个演示用户和一个示例项目，便于本地联调。
// 已存在时不重复创建。
func (s *Server) SeedDemoData(ctx context.Context) error {
	const demoEmail = "demo@taskhub.local"

	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", demoEmail).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
		if hashErr != nil {
			return hashErr
		}
		user = model.User{
			Name:     "Demo User",
			Email:    demoEmail,
			Password: string(hash),
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return err
		}
	}

	var project model.Project
	projErr := s.db.WithContext(ctx).
		Where("user_id = ? AND title = ?", user.ID, "Onboarding Project").
		First(&project).Error
	if projErr != nil && !errors.Is(projErr, gorm.ErrRecordNotFound) {
		return projErr
	}
	if errors.Is(projErr, gorm.ErrRecordNotFound) {
		now := time.Now()
		project = model.Project{
			Title:     "Onboarding Project",
			Client:    "Internal",
			StartDate: now,
			EndDate:   now.AddDate(0, 1, 0),
			Status:    model.ProjectStatusInProgress,
			UserID:    user.ID,
		}
		if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
			return err
		}
	}

	return nil
}
