package entity

import "time"

// SavedMovie 用户收藏的影片
type SavedMovie struct {
	ID              int64     `json:"-" gorm:"primaryKey"`
	UserID          string    `json:"user_id" gorm:"type:varchar(128);not null;uniqueIndex:idx_saved_user_movie"`
	MovieID         int64     `json:"movie_id" gorm:"not null;uniqueIndex:idx_saved_user_movie"`
	Title           string    `json:"title" gorm:"type:varchar(512)"`
	PosterPath      string    `json:"poster_path,omitempty" gorm:"type:varchar(255)"`
	Overview        string    `json:"overview,omitempty" gorm:"type:text"`
	ReleaseDate     string    `json:"release_date,omitempty" gorm:"type:varchar(10)"`
	MoodWhenSaved   string    `json:"mood_when_saved,omitempty" gorm:"type:varchar(32)"`
	ReasonWhenSaved string    `json:"reason_when_saved,omitempty" gorm:"type:varchar(255)"`
	CreatedAt       time.Time `json:"saved_at" gorm:"autoCreateTime;index"`
}

// TableName 指定表名
func (SavedMovie) TableName() string {
	return "saved_movies"
}

// NewSavedMovie 从展示项创建收藏记录
func NewSavedMovie(userID string, item MovieItem, mood, reason string) *SavedMovie {
	return &SavedMovie{
		UserID:          userID,
		MovieID:         item.ID,
		Title:           item.Title,
		PosterPath:      item.PosterPath,
		Overview:        item.Overview,
		ReleaseDate:     item.ReleaseDate,
		MoodWhenSaved:   mood,
		ReasonWhenSaved: reason,
		CreatedAt:       time.Now(),
	}
}
