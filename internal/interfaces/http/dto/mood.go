package dto

import "mudi-match-api/internal/domain/mood"

// MoodResponse 单个情绪的参考数据
type MoodResponse struct {
	Label       string   `json:"label"`
	Quadrant    string   `json:"quadrant"`
	Pleasant    bool     `json:"pleasant"`
	HighEnergy  bool     `json:"high_energy"`
	ShiftTarget string   `json:"shift_target"`
	Reasons     []string `json:"reasons"`
}

// ToMoodListResponse 全部情绪，按固定顺序
func ToMoodListResponse() []MoodResponse {
	out := make([]MoodResponse, 0, len(mood.Labels))
	for _, l := range mood.Labels {
		q := l.Quadrant()
		out = append(out, MoodResponse{
			Label:       string(l),
			Quadrant:    q.String(),
			Pleasant:    q.Pleasant(),
			HighEnergy:  q.HighEnergy(),
			ShiftTarget: string(mood.ShiftTarget(l)),
			Reasons:     mood.ReasonsFor(l),
		})
	}
	return out
}
