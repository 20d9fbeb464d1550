package milvus

import (
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"mudi-match-api/internal/domain/mood"
)

const (
	// CollectionMovieMoods 影片情绪向量集合
	CollectionMovieMoods = "movie_moods"

	// VectorDimension 情绪向量维度
	VectorDimension = mood.Dim

	fieldMovieID     = "movie_id"
	fieldVector      = "vector"
	fieldMood        = "mood"
	fieldTitle       = "title"
	fieldOverview    = "overview"
	fieldReleaseDate = "release_date"
	fieldPosterPath  = "poster_path"
	fieldKeywords    = "keywords"
	fieldVoteAverage = "vote_average"
	fieldVoteCount   = "vote_count"
	fieldPopularity  = "popularity"

	maxOverviewLen = 8192
	maxKeywordsLen = 4096
	keywordSep     = "|"
)

var outputFields = []string{
	fieldMood, fieldTitle, fieldOverview, fieldReleaseDate, fieldPosterPath,
	fieldKeywords, fieldVoteAverage, fieldVoteCount, fieldPopularity,
}

func varChar(name string, maxLen int) *entity.Field {
	return &entity.Field{
		Name:       name,
		DataType:   entity.FieldTypeVarChar,
		TypeParams: map[string]string{"max_length": strconv.Itoa(maxLen)},
	}
}

// MovieMoodsSchema 影片情绪向量 Collection Schema
// 基础字段随向量一起存储，检索结果无需回查数据库
func MovieMoodsSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: CollectionMovieMoods,
		Description:    "Movie mood vectors for similarity matching",
		Fields: []*entity.Field{
			{
				Name:       fieldMovieID,
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     false,
			},
			{
				Name:       fieldVector,
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": strconv.Itoa(VectorDimension)},
			},
			varChar(fieldMood, 32),
			varChar(fieldTitle, 512),
			varChar(fieldOverview, maxOverviewLen),
			varChar(fieldReleaseDate, 16),
			varChar(fieldPosterPath, 255),
			varChar(fieldKeywords, maxKeywordsLen),
			{Name: fieldVoteAverage, DataType: entity.FieldTypeDouble},
			{Name: fieldVoteCount, DataType: entity.FieldTypeInt64},
			{Name: fieldPopularity, DataType: entity.FieldTypeDouble},
		},
	}
}
