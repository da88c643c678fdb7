package model

import "time"

// User 表示系统用户。
type User struct {
	ID        uint      `gorm:"primaryKey"`                    // 用户 ID
	Name      string    `gorm:"not null;size:255"`             // 显示名称
	Email     string    `gorm:"type:varchar(191);uniqueIndex"` // 邮箱（唯一）
	Password  string    `gorm:"not null"`                      // bcrypt 哈希
	CreatedAt time.Time // 注册时间

	Projects []Project `gorm:"foreignKey:UserID"`
}
