package model

import (
	"time"

	baseModel "github.com/Christentimmy/CasaRanche-Backend/pkg/model"
)

// GhostProgression 匿名等级进度
type GhostProgression struct {
	Level     GhostLevel `gorm:"size:1;default:'A'" json:"level"`
	PostsMade int64      `gorm:"default:0" json:"postsMade"`
}

// AccountStatus 账号状态
type AccountStatus struct {
	IsActive  bool   `gorm:"default:true" json:"isActive"`
	IsBanned  bool   `gorm:"default:false" json:"isBanned"`
	BanReason string `json:"banReason,omitempty"`
}

// Stats 用户发帖统计，只允许原子自增
type Stats struct {
	PostCount       int64 `gorm:"default:0" json:"postCount"`
	GhostPostCount  int64 `gorm:"default:0" json:"ghostPostCount"`
	ConfessionCount int64 `gorm:"default:0" json:"confessionCount"`
}

// User 发帖流程读取的用户投影
type User struct {
	baseModel.BaseModel
	Username    string     `gorm:"uniqueIndex;size:64" json:"username"`
	AnonymousID string     `gorm:"uniqueIndex;size:64" json:"anonymousId"`
	IsVerified  bool       `gorm:"default:false" json:"isVerified"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`

	GhostProgression GhostProgression `gorm:"embedded;embeddedPrefix:ghost_" json:"ghostProgression"`
	AccountStatus    AccountStatus    `gorm:"embedded;embeddedPrefix:status_" json:"accountStatus"`
	Stats            Stats            `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
}

// Capabilities 当前匿名等级解锁的发帖能力
func (u *User) Capabilities() Capabilities {
	return CapabilitiesFor(u.GhostProgression.Level)
}
