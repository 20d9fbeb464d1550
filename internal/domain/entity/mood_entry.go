package entity

import "time"

// MoodEntry 一次推荐请求的情绪记录
type MoodEntry struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      string    `json:"user_id" gorm:"type:varchar(128);index"`
	Mood        string    `json:"mood" gorm:"type:varchar(32);not null"`
	Intention   string    `json:"intention" gorm:"type:varchar(16);not null"`
	Reason      string    `json:"reason,omitempty" gorm:"type:varchar(255)"`
	TargetMood  string    `json:"target_mood" gorm:"type:varchar(32)"`
	ResultCount int       `json:"result_count"`
	Fallback    bool      `json:"fallback"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// TableName 指定表名
func (MoodEntry) TableName() string {
	return "mood_entries"
}
