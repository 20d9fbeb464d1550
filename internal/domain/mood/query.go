package mood

import "strings"

// Intention 用户意图：停留在当前情绪或转向更积极的情绪
type Intention string

const (
	Sit   Intention = "sit"
	Shift Intention = "shift"
)

// ParseIntention 解析意图，空串视为 sit
func ParseIntention(s string) (Intention, bool) {
	switch Intention(strings.ToLower(strings.TrimSpace(s))) {
	case "", Sit:
		return Sit, true
	case Shift:
		return Shift, true
	default:
		return "", false
	}
}

// shiftMap 每种情绪的转向目标
var shiftMap = map[Label]Label{
	Angry:    Energetic,
	Anxious:  Calm,
	Stressed: Relaxed,
	Sad:      Happy,
	Tired:    Content,
	Bored:    Excited,

	Excited:   Excited,
	Happy:     Happy,
	Energetic: Energetic,
	Calm:      Calm,
	Content:   Happy,
	Relaxed:   Calm,
}

// ShiftTarget 返回转向目标情绪
func ShiftTarget(l Label) Label {
	t, ok := shiftMap[l]
	if !ok {
		panic("mood: no shift target for " + string(l))
	}
	return t
}

// Query 一次检索所需的查询向量与主题
type Query struct {
	Mood       Label
	Intention  Intention
	Reason     string
	TargetMood Label
	Vector     Vector
	ThemeTags  []string
}

// BuildQuery 根据情绪、意图和原因构造查询
// sit 使用当前情绪的向量且没有主题；shift 使用目标情绪的向量并按原因取主题
func BuildQuery(l Label, intention Intention, reason string) Query {
	q := Query{
		Mood:      l,
		Intention: intention,
		Reason:    reason,
	}
	if intention == Shift {
		q.TargetMood = ShiftTarget(l)
		q.ThemeTags = ThemesFor(reason)
	} else {
		q.Intention = Sit
		q.TargetMood = l
	}
	q.Vector = CanonicalVector(q.TargetMood)
	return q
}
