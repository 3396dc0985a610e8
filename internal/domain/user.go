package domain

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDirector Role = "director"
	RoleUser     Role = "user"
)

// BotUser 表示一个绑定了员工名字的机器人用户
// EmployeeName 必须与花名册中的名字完全一致（区分大小写）
type BotUser struct {
	UserID       int64     `json:"userID"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	EmployeeName string    `json:"employeeName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSettings 为用户的提醒设置
// DailyRemindTime 为 "HH:MM"，为 nil 表示不开启每日提醒
type UserSettings struct {
	UserID           int64   `json:"userID"`
	RemindBeforeHour bool    `json:"remindBeforeHour"`
	DailyRemindTime  *string `json:"dailyRemindTime"`
}

// AccessRecord 表示访问名单中的一条记录
type AccessRecord struct {
	UserID    int64     `json:"userID"`
	Username  string    `json:"username"`
	GrantedBy int64     `json:"grantedBy"`
	GrantedAt time.Time `json:"grantedAt"`
	IsActive  bool      `json:"isActive"`
}

// Director 表示一名运维负责人（访问名单之外的特权角色）
type Director struct {
	UserID   int64     `json:"userID"`
	Username string    `json:"username"`
	AddedBy  int64     `json:"addedBy"`
	AddedAt  time.Time `json:"addedAt"`
}

// ReminderTarget 是后台提醒扫描需要的用户视图
type ReminderTarget struct {
	UserID           int64
	Email            string
	EmployeeName     string
	RemindBeforeHour bool
	DailyRemindTime  *string
}
