package entity

import "time"

// FeedAction 推荐流中的用户操作
type FeedAction string

const (
	FeedActionStart      FeedAction = "start"
	FeedActionReject     FeedAction = "reject"
	FeedActionAccept     FeedAction = "accept"
	FeedActionWatchedOn  FeedAction = "watched_on"
	FeedActionWatchedOff FeedAction = "watched_off"
)

// FeedEvent 推荐流反馈事件
type FeedEvent struct {
	ID          string     `json:"id" gorm:"type:uuid;primaryKey"`
	FeedID      string     `json:"feed_id" gorm:"type:uuid;index"`
	UserID      string     `json:"user_id" gorm:"type:varchar(128);index"`
	MovieID     int64      `json:"movie_id"`
	Action      FeedAction `json:"action" gorm:"type:varchar(16);not null"`
	Mood        string     `json:"mood,omitempty" gorm:"type:varchar(32)"`
	Replenished bool       `json:"replenished"`
	AddedID     int64      `json:"added_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
}

// TableName 指定表名
func (FeedEvent) TableName() string {
	return "feed_events"
}
