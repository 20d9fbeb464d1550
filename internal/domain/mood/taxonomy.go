// Package mood 定义情绪分类、影片情绪向量与查询向量构造
//
// 向量分量顺序固定为 [高能量愉悦, 高能量不悦, 低能量愉悦, 低能量不悦]。
package mood

import (
	"fmt"
	"strings"
)

// Dim 情绪向量维度
const Dim = 4

// Vector 情绪向量，每个象限一个分量
type Vector [Dim]float64

// Sum 分量之和
func (v Vector) Sum() float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}

// Argmax 返回最大分量的下标，相等时取靠前的
func (v Vector) Argmax() int {
	idx := 0
	for i := 1; i < Dim; i++ {
		if v[i] > v[idx] {
			idx = i
		}
	}
	return idx
}

// Float32s 转为向量库使用的 float32 切片
func (v Vector) Float32s() []float32 {
	out := make([]float32, Dim)
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// Quadrant 能量 × 愉悦度象限
type Quadrant int

const (
	HighEnergyPleasant Quadrant = iota
	HighEnergyUnpleasant
	LowEnergyPleasant
	LowEnergyUnpleasant
)

var quadrantNames = [...]string{
	"high-energy-pleasant",
	"high-energy-unpleasant",
	"low-energy-pleasant",
	"low-energy-unpleasant",
}

func (q Quadrant) String() string {
	if q < 0 || int(q) >= len(quadrantNames) {
		return "unknown"
	}
	return quadrantNames[q]
}

// Pleasant 是否为愉悦象限
func (q Quadrant) Pleasant() bool {
	return q == HighEnergyPleasant || q == LowEnergyPleasant
}

// HighEnergy 是否为高能量象限
func (q Quadrant) HighEnergy() bool {
	return q == HighEnergyPleasant || q == HighEnergyUnpleasant
}

// Label 具体情绪
type Label string

const (
	Excited   Label = "excited"
	Happy     Label = "happy"
	Energetic Label = "energetic"

	Angry    Label = "angry"
	Anxious  Label = "anxious"
	Stressed Label = "stressed"

	Calm    Label = "calm"
	Content Label = "content"
	Relaxed Label = "relaxed"

	Sad   Label = "sad"
	Tired Label = "tired"
	Bored Label = "bored"
)

// Labels 全部 12 种情绪，按象限排列
var Labels = []Label{
	Excited, Happy, Energetic,
	Angry, Anxious, Stressed,
	Calm, Content, Relaxed,
	Sad, Tired, Bored,
}

var labelQuadrant = map[Label]Quadrant{
	Excited:   HighEnergyPleasant,
	Happy:     HighEnergyPleasant,
	Energetic: HighEnergyPleasant,
	Angry:     HighEnergyUnpleasant,
	Anxious:   HighEnergyUnpleasant,
	Stressed:  HighEnergyUnpleasant,
	Calm:      LowEnergyPleasant,
	Content:   LowEnergyPleasant,
	Relaxed:   LowEnergyPleasant,
	Sad:       LowEnergyUnpleasant,
	Tired:     LowEnergyUnpleasant,
	Bored:     LowEnergyUnpleasant,
}

// canonicalVectors 手工调校的查询向量，分量和为 1，本象限分量为 0.7
var canonicalVectors = map[Label]Vector{
	Excited:   {0.70, 0.15, 0.10, 0.05},
	Happy:     {0.70, 0.05, 0.20, 0.05},
	Energetic: {0.70, 0.20, 0.05, 0.05},
	Angry:     {0.15, 0.70, 0.00, 0.15},
	Anxious:   {0.05, 0.70, 0.05, 0.20},
	Stressed:  {0.10, 0.70, 0.05, 0.15},
	Calm:      {0.05, 0.05, 0.70, 0.20},
	Content:   {0.20, 0.00, 0.70, 0.10},
	Relaxed:   {0.10, 0.05, 0.70, 0.15},
	Sad:       {0.00, 0.15, 0.15, 0.70},
	Tired:     {0.05, 0.05, 0.20, 0.70},
	Bored:     {0.10, 0.10, 0.10, 0.70},
}

// ParseLabel 解析情绪名称，大小写不敏感
func ParseLabel(s string) (Label, bool) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	_, ok := labelQuadrant[l]
	return l, ok
}

// Valid 是否为已知情绪
func (l Label) Valid() bool {
	_, ok := labelQuadrant[l]
	return ok
}

// Quadrant 返回情绪所在象限，未知情绪会 panic
func (l Label) Quadrant() Quadrant {
	q, ok := labelQuadrant[l]
	if !ok {
		panic(fmt.Sprintf("mood: unknown label %q", l))
	}
	return q
}

// CanonicalVector 返回情绪的查询向量
// 每个情绪都必须有定义，缺失属于配置错误，直接 panic
func CanonicalVector(l Label) Vector {
	v, ok := canonicalVectors[l]
	if !ok {
		panic(fmt.Sprintf("mood: no canonical vector for %q", l))
	}
	return v
}

// LabelsIn 返回象限内的情绪
func LabelsIn(q Quadrant) []Label {
	out := make([]Label, 0, 3)
	for _, l := range Labels {
		if labelQuadrant[l] == q {
			out = append(out, l)
		}
	}
	return out
}
