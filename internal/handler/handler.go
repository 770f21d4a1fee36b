package handler

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/socialwall/interaction-service/internal/model"
	"github.com/socialwall/interaction-service/internal/service"
	"github.com/spf13/viper"
)

type Handler struct {
	services *service.Service
}

func New(services *service.Service) *Handler {
	return &Handler{
		services: services,
	}
}

func (h *Handler) InitRoutes() *gin.Engine {
	r := gin.New()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{viper.GetString("client.origin")},
		AllowMethods:     []string{"POST", "GET", "DELETE"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	v1 := r.Group("/api/v1")
	{
		posts := v1.Group("/posts")
		{
			posts.POST("", h.authMiddleware, h.postsCreate)
			posts.GET("", h.postsGetGlobalFeed)
			posts.GET("/author/:userID", h.postsGetAuthorFeed)

			post := posts.Group("/:postID")
			{
				post.POST("/like", h.authMiddleware, h.postsToggleLike)
				post.POST("/comments", h.authMiddleware, h.postsAddComment)
				post.POST("/share", h.postsShare)
				post.DELETE("", h.authMiddleware, h.postsDelete)
			}
		}
	}

	return r
}

func (h *Handler) getUserFromRequest(c *gin.Context) *model.User {
	userReq, _ := c.Get("user")

	user, ok := userReq.(model.User)
	if !ok {
		return nil
	}

	return &user
}
