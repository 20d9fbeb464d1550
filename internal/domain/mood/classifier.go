package mood

// 覆盖率保底：每 coveragePeriod 个影片中，下标落在 coverageSlot 的一部
// 直接分配给规则分类产出偏少的情绪，按轮次依次轮换
const (
	coveragePeriod = 12
	coverageSlot   = 7
)

// coverageRotation 规则分类产出偏少的情绪
var coverageRotation = []Label{Bored, Tired, Anxious, Content}

// ClassifyItem 为导入阶段的影片确定主情绪
// 结果只取决于 (vector, genreIDs, itemIndex)，同样的输入总是得到同样的情绪
func ClassifyItem(v Vector, genreIDs []int, itemIndex int) Label {
	if l, ok := coverageLabel(itemIndex); ok {
		return l
	}
	return classifyByRules(v, newGenreSet(genreIDs))
}

// coverageLabel 保底轮换，与相似度规则相互独立
func coverageLabel(itemIndex int) (Label, bool) {
	if itemIndex < 0 || itemIndex%coveragePeriod != coverageSlot {
		return "", false
	}
	round := itemIndex / coveragePeriod
	return coverageRotation[round%len(coverageRotation)], true
}

func classifyByRules(v Vector, g genreSet) Label {
	if v == Uniform {
		return Calm
	}

	switch Quadrant(v.Argmax()) {
	case HighEnergyPleasant:
		return classifyHighPleasant(v, g)
	case HighEnergyUnpleasant:
		return classifyHighUnpleasant(v, g)
	case LowEnergyPleasant:
		return classifyLowPleasant(v, g)
	default:
		return classifyLowUnpleasant(v, g)
	}
}

func classifyHighPleasant(v Vector, g genreSet) Label {
	switch {
	case g.hasAny(GenreComedy, GenreFamily, GenreRomance) && v[1] < 0.2:
		return Happy
	case v[1] >= 0.2 || g.has(GenreAction):
		return Energetic
	case v[2] >= 0.25:
		return Happy
	default:
		return Excited
	}
}

func classifyHighUnpleasant(v Vector, g genreSet) Label {
	switch {
	case g.hasAny(GenreHorror, GenreMystery):
		return Anxious
	case g.hasAny(GenreWar, GenreCrime):
		return Angry
	case v[0] >= 0.2:
		return Stressed
	case v[3] >= 0.2:
		return Anxious
	default:
		return Stressed
	}
}

func classifyLowPleasant(v Vector, g genreSet) Label {
	switch {
	case g.hasAny(GenreDocumentary, GenreHistory):
		return Calm
	case v[0] >= 0.25:
		return Content
	case g.has(GenreFantasy):
		return Relaxed
	case v[3] >= 0.15:
		return Calm
	default:
		return Relaxed
	}
}

func classifyLowUnpleasant(v Vector, g genreSet) Label {
	switch {
	case g.has(GenreDrama) && g.hasAny(GenreHistory, GenreWar, GenreCrime):
		return Sad
	case v[1] >= 0.2:
		return Sad
	case v[2] >= 0.25:
		return Tired
	case g.hasAny(GenreWestern, GenreMystery):
		return Bored
	default:
		return Sad
	}
}

type genreSet map[int]struct{}

func newGenreSet(ids []int) genreSet {
	s := make(genreSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s genreSet) has(id int) bool {
	_, ok := s[id]
	return ok
}

func (s genreSet) hasAny(ids ...int) bool {
	for _, id := range ids {
		if s.has(id) {
			return true
		}
	}
	return false
}
