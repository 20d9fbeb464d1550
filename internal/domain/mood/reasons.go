package mood

import "strings"

// DefaultThemeKey 未识别原因时使用的主题键
const DefaultThemeKey = "default"

// reasonsByMood 每种情绪下供选择的原因
var reasonsByMood = map[Label][]string{
	Excited: {
		"Upcoming event or opportunity",
		"New adventure or travel plans",
		"Anticipating a special occasion",
		"Starting something new and challenging",
		"Breakthrough or discovery",
		"Romantic anticipation or attraction",
	},
	Happy: {
		"Recent accomplishment or success",
		"Positive social interaction",
		"Receiving good news",
		"Feeling appreciated or loved",
		"Beautiful weather or environment",
		"Spontaneous joy or gratitude",
	},
	Energetic: {
		"Good physical health and vitality",
		"Productive morning routine",
		"Exercise or physical activity",
		"Caffeine or natural energy boost",
		"Motivated by clear goals",
		"Feeling physically strong and capable",
	},
	Angry: {
		"Feeling treated unfairly",
		"Boundaries being violated",
		"Feeling disrespected or dismissed",
		"Blocked goals or thwarted plans",
		"Witnessing wrongdoing",
		"Betrayal or broken trust",
	},
	Anxious: {
		"Uncertainty about the future",
		"Important upcoming decision",
		"Fear of failure or judgment",
		"Health or safety concerns",
		"Social performance pressure",
		"Financial or security worries",
	},
	Stressed: {
		"Multiple competing deadlines",
		"Overwhelming workload",
		"Time pressure and rushing",
		"Juggling too many responsibilities",
		"Difficult decision-making",
		"Pressure to meet expectations",
	},
	Calm: {
		"Meditation or mindfulness practice",
		"Resolved conflict or problem",
		"Peaceful natural environment",
		"Sense of safety and security",
		"Deep breathing or relaxation",
		"Spiritual or philosophical reflection",
	},
	Content: {
		"Acceptance of current circumstances",
		"Gratitude for what you have",
		"Feeling fulfilled in relationships",
		"Pride in personal progress",
		"Simple pleasures and comforts",
		"Alignment with personal values",
	},
	Relaxed: {
		"End of a stressful period",
		"Comfortable physical environment",
		"Quality rest or leisure time",
		"Massage or physical relief",
		"Vacation or break from routine",
		"Letting go of control or worry",
	},
	Sad: {
		"Loss or grief",
		"Disappointment in outcomes",
		"Feeling misunderstood or alone",
		"Nostalgia or missing someone",
		"Empathy for others' suffering",
		"Unmet emotional needs",
	},
	Tired: {
		"Physical or mental exhaustion",
		"Poor sleep quality or insomnia",
		"Emotional burnout",
		"Chronic stress effects",
		"Overcommitment and depletion",
		"Seasonal energy changes",
	},
	Bored: {
		"Lack of mental stimulation",
		"Repetitive routine or monotony",
		"Underutilization of skills",
		"Absence of meaningful challenges",
		"Social isolation or understimulation",
		"Lack of purpose or direction",
	},
}

// reasonThemes 原因到主题关键词，键为小写
var reasonThemes = map[string][]string{
	"feeling treated unfairly":          {"justice", "empowerment", "vindication"},
	"injustice or unfair treatment":     {"justice", "empowerment", "vindication"},
	"boundaries being violated":         {"self-respect", "courage", "independence"},
	"feeling disrespected or dismissed": {"recognition", "underdog", "triumph"},
	"blocked goals or thwarted plans":   {"perseverance", "comeback", "determination"},
	"witnessing wrongdoing":             {"justice", "redemption", "heroism"},
	"betrayal or broken trust":          {"loyalty", "friendship", "redemption"},

	"uncertainty about the future":  {"hope", "new beginnings", "optimism"},
	"important upcoming decision":   {"courage", "coming of age", "self-discovery"},
	"fear of failure or judgment":   {"underdog", "perseverance", "acceptance"},
	"health or safety concerns":     {"resilience", "hope", "healing"},
	"social performance pressure":   {"friendship", "acceptance", "confidence"},
	"financial or security worries": {"heist", "rags to riches", "optimism"},

	"multiple competing deadlines":       {"escapism", "road trip", "vacation"},
	"overwhelming workload":              {"escapism", "nature", "slice of life"},
	"time pressure and rushing":          {"slow cinema", "nature", "mindfulness"},
	"juggling too many responsibilities": {"family", "simplicity", "escapism"},
	"difficult decision-making":          {"self-discovery", "wisdom", "journey"},
	"pressure to meet expectations":      {"self-acceptance", "freedom", "rebellion"},

	"loss or grief":                        {"healing", "hope", "friendship"},
	"disappointment in outcomes":           {"second chance", "comeback", "optimism"},
	"feeling misunderstood or alone":       {"friendship", "belonging", "found family"},
	"nostalgia or missing someone":         {"reunion", "friendship", "coming of age"},
	"empathy for others' suffering":        {"kindness", "hope", "community"},
	"unmet emotional needs":                {"love", "romance", "belonging"},
	"physical or mental exhaustion":        {"comfort", "feel-good", "gentle humor"},
	"poor sleep quality or insomnia":       {"comfort", "whimsy", "dream"},
	"emotional burnout":                    {"renewal", "nature", "simplicity"},
	"chronic stress effects":               {"relaxation", "feel-good", "vacation"},
	"overcommitment and depletion":         {"self-care", "simplicity", "slice of life"},
	"seasonal energy changes":              {"summer", "sunshine", "road trip"},
	"lack of mental stimulation":           {"puzzle", "heist", "twist"},
	"repetitive routine or monotony":       {"adventure", "travel", "spontaneity"},
	"underutilization of skills":           {"mentor", "sports", "competition"},
	"absence of meaningful challenges":     {"quest", "competition", "survival"},
	"social isolation or understimulation": {"friendship", "ensemble cast", "party"},
	"lack of purpose or direction":         {"self-discovery", "journey", "inspiration"},

	DefaultThemeKey: {"hope", "friendship", "feel-good"},
}

// ThemesFor 返回原因对应的主题关键词，未识别的原因退回默认列表
func ThemesFor(reason string) []string {
	themes, ok := reasonThemes[strings.ToLower(strings.TrimSpace(reason))]
	if !ok {
		themes = reasonThemes[DefaultThemeKey]
	}
	out := make([]string, len(themes))
	copy(out, themes)
	return out
}

// ReasonsFor 返回情绪下可选的原因列表
func ReasonsFor(l Label) []string {
	rs := reasonsByMood[l]
	out := make([]string, len(rs))
	copy(out, rs)
	return out
}
