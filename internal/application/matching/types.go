package matching

import (
	"time"

	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/mood"
)

// Attempt 补位检索的一档 (阈值, 数量)
type Attempt struct {
	Threshold float64
	Count     int
}

// Config 检索参数
type Config struct {
	FallbackThreshold float64
	SearchTimeout     time.Duration
	ThemeBoost        float64
	ThemeBoostMax     float64
	ReplenishAttempts []Attempt
}

// DefaultConfig 默认检索参数
func DefaultConfig() Config {
	return Config{
		FallbackThreshold: 0.1,
		SearchTimeout:     3 * time.Second,
		ThemeBoost:        0.05,
		ThemeBoostMax:     0.15,
		ReplenishAttempts: []Attempt{
			{Threshold: 0.3, Count: 20},
			{Threshold: 0.1, Count: 50},
			{Threshold: 0.05, Count: 100},
		},
	}
}

// Request 主检索输入
type Request struct {
	Vector      mood.Vector
	ThemeTags   []string
	Threshold   float64
	Limit       int
	ExcludedIDs []int64
}

// Result 主检索输出，Candidates 为空表示兜底后仍无匹配
type Result struct {
	Candidates []entity.Candidate
	Fallback   bool
}
