package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册需要调用方身份的 v1 路由
func RegisterV1Routes(v1 *gin.RouterGroup, h Handlers) {
	if h.Recommendation != nil {
		v1.GET("/movies/recommendations", h.Recommendation.Recommend)
	}

	if h.Feed != nil {
		feeds := v1.Group("/feeds")
		{
			feeds.POST("", h.Feed.Start)
			feeds.GET("/:fid", h.Feed.Get)
			feeds.POST("/:fid/items/:mid/reject", h.Feed.Reject)
			feeds.POST("/:fid/items/:mid/accept", h.Feed.Accept)
			feeds.POST("/:fid/items/:mid/watched", h.Feed.ToggleWatched)
		}
	}

	if h.Saved != nil {
		saved := v1.Group("/saved")
		{
			saved.GET("", h.Saved.List)
			saved.DELETE("/:mid", h.Saved.Delete)
		}
	}

	if h.Watched != nil {
		v1.GET("/watched", h.Watched.List)
	}
}
