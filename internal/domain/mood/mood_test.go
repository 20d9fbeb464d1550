package mood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalVector(t *testing.T) {
	t.Run("分量和固定且主分量落在本象限", func(t *testing.T) {
		for _, l := range Labels {
			v := CanonicalVector(l)
			assert.InDelta(t, 1.0, v.Sum(), 1e-9, "mood %s", l)
			assert.Equal(t, l.Quadrant(), Quadrant(v.Argmax()), "mood %s", l)
			for _, x := range v {
				assert.GreaterOrEqual(t, x, 0.0)
			}
		}
	})

	t.Run("每个象限三种情绪", func(t *testing.T) {
		require.Len(t, Labels, 12)
		for q := HighEnergyPleasant; q <= LowEnergyUnpleasant; q++ {
			assert.Len(t, LabelsIn(q), 3, q.String())
		}
	})

	t.Run("未知情绪属于配置错误", func(t *testing.T) {
		assert.Panics(t, func() { CanonicalVector(Label("nostalgic")) })
	})
}

func TestParseLabel(t *testing.T) {
	l, ok := ParseLabel("  Calm ")
	assert.True(t, ok)
	assert.Equal(t, Calm, l)

	_, ok = ParseLabel("hangry")
	assert.False(t, ok)
}

func TestEmbedItem(t *testing.T) {
	t.Run("分量非负且和为 1", func(t *testing.T) {
		cases := [][]int{
			{GenreAction},
			{GenreDrama, GenreHistory},
			{GenreComedy, GenreHorror, GenreDocumentary},
			{GenreAction, GenreAdventure, GenreSciFi, GenreFantasy},
			{GenreWestern, GenreDrama, 999999},
		}
		for _, ids := range cases {
			v := EmbedItem(ids)
			assert.InDelta(t, 1.0, v.Sum(), 1e-9, "genres %v", ids)
			for _, x := range v {
				assert.GreaterOrEqual(t, x, 0.0)
			}
		}
	})

	t.Run("空类型或全部未映射返回中性向量", func(t *testing.T) {
		assert.Equal(t, Uniform, EmbedItem(nil))
		assert.Equal(t, Uniform, EmbedItem([]int{}))
		assert.Equal(t, Uniform, EmbedItem([]int{1, 2, 3}))
	})

	t.Run("零贡献类型视为中性", func(t *testing.T) {
		// Western 愉悦度为 0，没有象限贡献
		assert.Equal(t, Uniform, EmbedItem([]int{GenreWestern}))
	})

	t.Run("单一类型落在对应象限", func(t *testing.T) {
		assert.Equal(t, int(HighEnergyPleasant), EmbedItem([]int{GenreComedy}).Argmax())
		assert.Equal(t, int(HighEnergyUnpleasant), EmbedItem([]int{GenreHorror}).Argmax())
		assert.Equal(t, int(LowEnergyPleasant), EmbedItem([]int{GenreDocumentary}).Argmax())
		assert.Equal(t, int(LowEnergyUnpleasant), EmbedItem([]int{GenreDrama}).Argmax())
	})
}

func TestClassifyItem(t *testing.T) {
	t.Run("保底轮换覆盖偏少的情绪", func(t *testing.T) {
		v := EmbedItem([]int{GenreComedy})
		got := []Label{
			ClassifyItem(v, []int{GenreComedy}, coverageSlot),
			ClassifyItem(v, []int{GenreComedy}, coverageSlot+coveragePeriod),
			ClassifyItem(v, []int{GenreComedy}, coverageSlot+2*coveragePeriod),
			ClassifyItem(v, []int{GenreComedy}, coverageSlot+3*coveragePeriod),
			ClassifyItem(v, []int{GenreComedy}, coverageSlot+4*coveragePeriod),
		}
		assert.Equal(t, []Label{Bored, Tired, Anxious, Content, Bored}, got)
	})

	t.Run("剧情加历史偏向 sad", func(t *testing.T) {
		ids := []int{GenreDrama, GenreHistory}
		assert.Equal(t, Sad, ClassifyItem(EmbedItem(ids), ids, 0))
	})

	t.Run("规则分类", func(t *testing.T) {
		cases := []struct {
			ids  []int
			want Label
		}{
			{[]int{GenreComedy}, Happy},
			{[]int{GenreAction}, Energetic},
			{[]int{GenreHorror}, Anxious},
			{[]int{GenreCrime}, Angry},
			{[]int{GenreDocumentary}, Calm},
			{[]int{GenreFantasy}, Relaxed},
			{[]int{GenreDrama}, Sad},
			{nil, Calm},
		}
		for _, c := range cases {
			assert.Equal(t, c.want, ClassifyItem(EmbedItem(c.ids), c.ids, 0), "genres %v", c.ids)
		}
	})

	t.Run("结果确定且合法", func(t *testing.T) {
		ids := []int{GenreThriller, GenreMystery, GenreDrama}
		v := EmbedItem(ids)
		for i := 0; i < 48; i++ {
			first := ClassifyItem(v, ids, i)
			assert.True(t, first.Valid())
			assert.Equal(t, first, ClassifyItem(v, ids, i))
		}
	})

	t.Run("每种保底情绪都有覆盖", func(t *testing.T) {
		seen := map[Label]bool{}
		v := EmbedItem([]int{GenreAction})
		for i := 0; i < 100; i++ {
			seen[ClassifyItem(v, []int{GenreAction}, i)] = true
		}
		for _, l := range coverageRotation {
			assert.True(t, seen[l], "missing %s", l)
		}
	})
}

func TestBuildQuery(t *testing.T) {
	t.Run("sit 使用当前情绪且无主题", func(t *testing.T) {
		q := BuildQuery(Calm, Sit, "Peaceful natural environment")
		assert.Equal(t, Calm, q.TargetMood)
		assert.Equal(t, CanonicalVector(Calm), q.Vector)
		assert.Empty(t, q.ThemeTags)
	})

	t.Run("angry 转向 energetic 并取正义主题", func(t *testing.T) {
		q := BuildQuery(Angry, Shift, "Feeling treated unfairly")
		assert.Equal(t, Energetic, q.TargetMood)
		assert.Equal(t, CanonicalVector(Energetic), q.Vector)
		assert.NotEqual(t, CanonicalVector(Angry), q.Vector)
		assert.Equal(t, []string{"justice", "empowerment", "vindication"}, q.ThemeTags)
	})

	t.Run("shift 从不指向不悦情绪", func(t *testing.T) {
		for _, l := range Labels {
			q := BuildQuery(l, Shift, "")
			assert.True(t, q.TargetMood.Quadrant().Pleasant(), "mood %s -> %s", l, q.TargetMood)
		}
	})

	t.Run("未知原因使用默认主题", func(t *testing.T) {
		q := BuildQuery(Sad, Shift, "my cat knocked over my coffee")
		assert.Equal(t, Happy, q.TargetMood)
		assert.Equal(t, ThemesFor(DefaultThemeKey), q.ThemeTags)
	})

	t.Run("返回的主题是副本", func(t *testing.T) {
		tags := ThemesFor("Feeling treated unfairly")
		tags[0] = "mutated"
		assert.Equal(t, "justice", ThemesFor("Feeling treated unfairly")[0])
	})
}

func TestParseIntention(t *testing.T) {
	i, ok := ParseIntention("")
	assert.True(t, ok)
	assert.Equal(t, Sit, i)

	i, ok = ParseIntention("SHIFT")
	assert.True(t, ok)
	assert.Equal(t, Shift, i)

	_, ok = ParseIntention("escape")
	assert.False(t, ok)
}

func TestReasonsFor(t *testing.T) {
	for _, l := range Labels {
		assert.Len(t, ReasonsFor(l), 6, string(l))
	}
	assert.Contains(t, ReasonsFor(Angry), "Feeling treated unfairly")
}
