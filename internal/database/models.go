package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Name         string  `gorm:"size:255"`
	Email        string  `gorm:"uniqueIndex;size:255"`
	PasswordHash string  `gorm:"size:255" json:"-"`
	Boards       []Board `gorm:"constraint:OnDelete:CASCADE"`
}

// Board 表示用户自建的求职看板。
// UserID 在创建时写入，之后不再变更。
type Board struct {
	gorm.Model
	Name   string `gorm:"size:255"`
	UserID uint   `gorm:"index"`
	User   User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Job 表示一条求职申请记录。
// UserID 冗余自所属 Board 的拥有者，用于免 JOIN 的归属校验；
// 创建后两者不会再被重新核对。
type Job struct {
	gorm.Model
	Company            string `gorm:"size:255"`
	Title              string `gorm:"size:255"`
	Status             string `gorm:"size:64"`
	Date               time.Time
	Notes              string         `gorm:"type:text"`
	Source             string         `gorm:"size:255"`
	Resume             string         `gorm:"size:512"`
	CoverLetter        string         `gorm:"size:512"`
	InterviewProcess   string         `gorm:"type:text"`
	InterviewQuestions string         `gorm:"type:text"`
	URL                string         `gorm:"size:512"`
	Attachments        datatypes.JSON `gorm:"type:jsonb"` // [{name, path}] 的描述符列表
	BoardID            uint           `gorm:"index"`
	UserID             uint           `gorm:"index"`
}

// Attachment 描述 Job 挂载的单个文件（对象存储中的 key）。
type Attachment struct {
	Name string `json:"name"`
	Path string `json:"path"`
}
