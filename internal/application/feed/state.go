// Package feed 维护推荐流会话：展示、拒绝、收藏、已看，以及单条补位
package feed

import (
	"slices"
	"time"

	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/mood"
	apperrors "mudi-match-api/pkg/errors"
)

// State 单个推荐流的会话状态
// Rejected 与 Accepted 在会话内只增不减；已看记录跨会话保存，不在这里
// Version 每次写入加一，会话存储据此拒绝基于旧版本的写入
type State struct {
	FeedID     string             `json:"feed_id"`
	Version    int64              `json:"version"`
	UserID     string             `json:"user_id"`
	Mood       mood.Label         `json:"mood"`
	Intention  mood.Intention     `json:"intention"`
	Reason     string             `json:"reason,omitempty"`
	TargetMood mood.Label         `json:"target_mood"`
	Vector     mood.Vector        `json:"vector"`
	ThemeTags  []string           `json:"theme_tags,omitempty"`
	Region     string             `json:"region"`
	Displayed  []entity.MovieItem `json:"displayed"`
	Rejected   []int64            `json:"rejected"`
	Accepted   []int64            `json:"accepted"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Clone 深拷贝，纯函数都在副本上修改
func (s *State) Clone() *State {
	cp := *s
	cp.ThemeTags = slices.Clone(s.ThemeTags)
	cp.Displayed = slices.Clone(s.Displayed)
	cp.Rejected = slices.Clone(s.Rejected)
	cp.Accepted = slices.Clone(s.Accepted)
	return &cp
}

// DisplayedIDs 当前展示的影片 ID，保持展示顺序
func (s *State) DisplayedIDs() []int64 {
	out := make([]int64, len(s.Displayed))
	for i, it := range s.Displayed {
		out[i] = it.ID
	}
	return out
}

// IsDisplayed 影片是否正在展示
func (s *State) IsDisplayed(id int64) bool {
	return s.indexOf(id) >= 0
}

// ExclusionIDs 补位检索的排除集合：展示中 ∪ 已拒绝 ∪ 已收藏
// 已看不在其中，已看影片仍可再次出现
func (s *State) ExclusionIDs() []int64 {
	out := make([]int64, 0, len(s.Displayed)+len(s.Rejected)+len(s.Accepted))
	seen := make(map[int64]struct{}, cap(out))
	add := func(id int64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, it := range s.Displayed {
		add(it.ID)
	}
	for _, id := range s.Rejected {
		add(id)
	}
	for _, id := range s.Accepted {
		add(id)
	}
	return out
}

// Excludes 影片是否处于排除集合
func (s *State) Excludes(id int64) bool {
	return s.IsDisplayed(id) || slices.Contains(s.Rejected, id) || slices.Contains(s.Accepted, id)
}

func (s *State) indexOf(id int64) int {
	return slices.IndexFunc(s.Displayed, func(it entity.MovieItem) bool { return it.ID == id })
}

// Reject 将影片从展示移入已拒绝
func Reject(s *State, id int64) (*State, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, apperrors.ErrItemNotDisplayed
	}
	next := s.Clone()
	next.Displayed = slices.Delete(next.Displayed, idx, idx+1)
	if !slices.Contains(next.Rejected, id) {
		next.Rejected = append(next.Rejected, id)
	}
	return next, nil
}

// Accept 将影片从展示移入已收藏，返回被收藏的展示项
func Accept(s *State, id int64) (*State, entity.MovieItem, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, entity.MovieItem{}, apperrors.ErrItemNotDisplayed
	}
	item := s.Displayed[idx]
	next := s.Clone()
	next.Displayed = slices.Delete(next.Displayed, idx, idx+1)
	if !slices.Contains(next.Accepted, id) {
		next.Accepted = append(next.Accepted, id)
	}
	return next, item, nil
}

// Append 追加补位得到的影片；已在排除集合中的影片不会加入
func Append(s *State, item entity.MovieItem) (*State, bool) {
	if s.Excludes(item.ID) {
		return s, false
	}
	next := s.Clone()
	next.Displayed = append(next.Displayed, item)
	return next, true
}

// ToggleWatched 切换已看；返回新的已看集合与切换后的状态
func ToggleWatched(watched []int64, id int64) ([]int64, bool) {
	if idx := slices.Index(watched, id); idx >= 0 {
		return slices.Delete(slices.Clone(watched), idx, idx+1), false
	}
	return append(slices.Clone(watched), id), true
}
