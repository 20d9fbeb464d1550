package dto

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mudi-match-api/internal/application/feed"
	"mudi-match-api/internal/application/recommend"
	"mudi-match-api/internal/domain/entity"
	apperrors "mudi-match-api/pkg/errors"
)

// RecommendationQuery GET /v1/movies/recommendations 的 query 参数
type RecommendationQuery struct {
	Mood      string
	Intention string
	Reason    string
	Limit     *int
	Threshold *float64
	Exclude   []int64
	Region    string
}

// BindRecommendationQuery 解析 query，数值格式错误按字段报参数错误；取值范围由推荐服务校验
func BindRecommendationQuery(c *gin.Context) (*RecommendationQuery, error) {
	q := &RecommendationQuery{
		Mood:      c.Query("mood"),
		Intention: c.Query("intention"),
		Reason:    c.Query("reason"),
		Region:    c.Query("region"),
	}
	if raw, ok := c.GetQuery("limit"); ok {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.NewValidation("limit", "limit must be an integer")
		}
		q.Limit = &v
	}
	if raw, ok := c.GetQuery("threshold"); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperrors.NewValidation("threshold", "threshold must be a number")
		}
		q.Threshold = &v
	}
	exclude, err := ParseIDList("exclude", c.Query("exclude"))
	if err != nil {
		return nil, err
	}
	q.Exclude = exclude
	return q, nil
}

// ToRequest 转换为推荐请求
func (q *RecommendationQuery) ToRequest(userID string) recommend.Request {
	return recommend.Request{
		UserID:      userID,
		Mood:        q.Mood,
		Intention:   q.Intention,
		Reason:      q.Reason,
		Limit:       q.Limit,
		Threshold:   q.Threshold,
		ExcludedIDs: q.Exclude,
		Region:      q.Region,
	}
}

// StartFeedRequest POST /v1/feeds 请求体
type StartFeedRequest struct {
	Mood      string   `json:"mood" binding:"required"`
	Intention string   `json:"intention"`
	Reason    string   `json:"reason"`
	Limit     *int     `json:"limit"`
	Threshold *float64 `json:"threshold"`
	Exclude   []int64  `json:"exclude"`
	Region    string   `json:"region"`
}

// ToRequest 转换为推荐请求
func (r *StartFeedRequest) ToRequest(userID string) recommend.Request {
	return recommend.Request{
		UserID:      userID,
		Mood:        r.Mood,
		Intention:   r.Intention,
		Reason:      r.Reason,
		Limit:       r.Limit,
		Threshold:   r.Threshold,
		ExcludedIDs: r.Exclude,
		Region:      r.Region,
	}
}

// QueryInfo 实际使用的查询参数
type QueryInfo struct {
	Mood       string   `json:"mood"`
	Intention  string   `json:"intention"`
	Reason     string   `json:"reason,omitempty"`
	TargetMood string   `json:"target_mood"`
	ThemeTags  []string `json:"theme_tags,omitempty"`
	Limit      int      `json:"limit,omitempty"`
	Threshold  float64  `json:"threshold,omitempty"`
	Region     string   `json:"region"`
}

// RecommendationResponse 无状态推荐响应
type RecommendationResponse struct {
	Query    QueryInfo          `json:"query"`
	Fallback bool               `json:"fallback"`
	Count    int                `json:"count"`
	Items    []entity.MovieItem `json:"items"`
}

// ToRecommendationResponse 转换推荐结果
func ToRecommendationResponse(r *recommend.Result) *RecommendationResponse {
	return &RecommendationResponse{
		Query: QueryInfo{
			Mood:       string(r.Query.Mood),
			Intention:  string(r.Query.Intention),
			Reason:     r.Query.Reason,
			TargetMood: string(r.Query.TargetMood),
			ThemeTags:  r.Query.ThemeTags,
			Limit:      r.Limit,
			Threshold:  r.Threshold,
			Region:     r.Region,
		},
		Fallback: r.Fallback,
		Count:    len(r.Items),
		Items:    r.Items,
	}
}

// FeedResponse 推荐流当前状态
type FeedResponse struct {
	FeedID    string             `json:"feed_id"`
	Query     QueryInfo          `json:"query"`
	Items     []entity.MovieItem `json:"items"`
	Rejected  int                `json:"rejected"`
	Accepted  int                `json:"accepted"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// ToFeedResponse 转换推荐流状态
func ToFeedResponse(s *feed.State) *FeedResponse {
	items := s.Displayed
	if items == nil {
		items = []entity.MovieItem{}
	}
	return &FeedResponse{
		FeedID: s.FeedID,
		Query: QueryInfo{
			Mood:       string(s.Mood),
			Intention:  string(s.Intention),
			Reason:     s.Reason,
			TargetMood: string(s.TargetMood),
			ThemeTags:  s.ThemeTags,
			Region:     s.Region,
		},
		Items:     items,
		Rejected:  len(s.Rejected),
		Accepted:  len(s.Accepted),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
