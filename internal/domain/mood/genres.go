package mood

// Genre TMDb 类型及其能量/愉悦度评分，评分范围 [-1, 1]
type Genre struct {
	ID           int
	Name         string
	Energy       float64
	Pleasantness float64
}

// TMDb 类型 ID
const (
	GenreAction      = 28
	GenreAdventure   = 12
	GenreComedy      = 35
	GenreFamily      = 10751
	GenreMusic       = 10402
	GenreRomance     = 10749
	GenreSciFi       = 878
	GenreCrime       = 80
	GenreHorror      = 27
	GenreThriller    = 53
	GenreWar         = 10752
	GenreAnimation   = 16
	GenreDocumentary = 99
	GenreFantasy     = 14
	GenreHistory     = 36
	GenreMystery     = 9648
	GenreDrama       = 18
	GenreWestern     = 37
)

var genres = []Genre{
	{GenreAction, "Action", 0.9, 0.5},
	{GenreAdventure, "Adventure", 0.8, 0.7},
	{GenreComedy, "Comedy", 0.6, 0.9},
	{GenreFamily, "Family", 0.4, 1.0},
	{GenreMusic, "Music", 0.7, 0.8},
	{GenreRomance, "Romance", 0.3, 0.9},
	{GenreSciFi, "Science Fiction", 0.7, 0.4},
	{GenreCrime, "Crime", 0.7, -0.6},
	{GenreHorror, "Horror", 0.8, -1.0},
	{GenreThriller, "Thriller", 0.8, -0.5},
	{GenreWar, "War", 0.9, -0.8},
	{GenreAnimation, "Animation", 0.2, 0.6},
	{GenreDocumentary, "Documentary", -0.5, 0.3},
	{GenreFantasy, "Fantasy", -0.2, 0.5},
	{GenreHistory, "History", -0.7, 0.1},
	{GenreMystery, "Mystery", -0.3, -0.2},
	{GenreDrama, "Drama", -0.6, -0.4},
	{GenreWestern, "Western", -0.4, 0.0},
}

// genreContributions 类型 ID 到四象限贡献向量，初始化后只读
var genreContributions = buildContributions(genres)

func buildContributions(gs []Genre) map[int]Vector {
	m := make(map[int]Vector, len(gs))
	for _, g := range gs {
		m[g.ID] = g.Contribution()
	}
	return m
}

// Contribution 将能量/愉悦度评分投影到四个象限
func (g Genre) Contribution() Vector {
	hi, lo := pos(g.Energy), pos(-g.Energy)
	pl, un := pos(g.Pleasantness), pos(-g.Pleasantness)
	return Vector{hi * pl, hi * un, lo * pl, lo * un}
}

func pos(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}
