// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/lib/pq"
)

// Movie 片库中的影片，导入阶段写入
type Movie struct {
	ID          int64          `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Title       string         `json:"title" gorm:"type:varchar(512);not null"`
	Overview    string         `json:"overview,omitempty" gorm:"type:text"`
	ReleaseDate string         `json:"release_date,omitempty" gorm:"type:varchar(10)"`
	PosterPath  string         `json:"poster_path,omitempty" gorm:"type:varchar(255)"`
	GenreIDs    pq.Int64Array  `json:"genre_ids" gorm:"type:integer[]"`
	Keywords    pq.StringArray `json:"keywords,omitempty" gorm:"type:text[]"`
	VoteAverage float64        `json:"vote_average"`
	VoteCount   int            `json:"vote_count"`
	Popularity  float64        `json:"popularity"`
	// Embedding 情绪向量，[高能量愉悦, 高能量不悦, 低能量愉悦, 低能量不悦]
	Embedding pq.Float64Array `json:"embedding" gorm:"type:double precision[]"`
	Mood      string          `json:"mood" gorm:"type:varchar(32);index"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Movie) TableName() string {
	return "movies"
}

// Baseline 片库自带的基础字段
type Baseline struct {
	Title       string   `json:"title"`
	Overview    string   `json:"overview,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	PosterPath  string   `json:"poster_path,omitempty"`
	VoteAverage float64  `json:"vote_average"`
	VoteCount   int      `json:"vote_count"`
	Popularity  float64  `json:"popularity"`
	Keywords    []string `json:"-"`
}

// Baseline 提取基础字段
func (m *Movie) Baseline() Baseline {
	return Baseline{
		Title:       m.Title,
		Overview:    m.Overview,
		ReleaseDate: m.ReleaseDate,
		PosterPath:  m.PosterPath,
		VoteAverage: m.VoteAverage,
		VoteCount:   m.VoteCount,
		Popularity:  m.Popularity,
		Keywords:    []string(m.Keywords),
	}
}

// Candidate 相似度检索候选
type Candidate struct {
	MovieID int64    `json:"id"`
	Score   float64  `json:"similarity"`
	Base    Baseline `json:"baseline"`
}
