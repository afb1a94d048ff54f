package model

import (
	"time"

	baseModel "github.com/Christentimmy/CasaRanche-Backend/pkg/model"
)

// MemberRole 群组成员角色
type MemberRole string

const (
	RoleOwner     MemberRole = "owner"
	RoleAdmin     MemberRole = "admin"
	RoleModerator MemberRole = "moderator"
	RoleMember    MemberRole = "member"
)

// Visibility 群组可见性
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
	VisibilitySecret  Visibility = "secret"
)

// Group 群组
type Group struct {
	baseModel.BaseModel
	Name        string     `gorm:"size:120;not null" json:"name"`
	Description string     `json:"description,omitempty"`
	OwnerID     string     `gorm:"type:uuid;index" json:"ownerId"`
	Visibility  Visibility `gorm:"size:16;default:'public'" json:"visibility"`

	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

// GroupMember 群组成员
type GroupMember struct {
	GroupID  string     `gorm:"type:uuid;primaryKey" json:"groupId"`
	UserID   string     `gorm:"type:uuid;primaryKey" json:"userId"`
	Role     MemberRole `gorm:"size:16;default:'member'" json:"role"`
	JoinedAt time.Time  `json:"joinedAt"`
}

// HasMember 判断用户是否是群组成员
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
