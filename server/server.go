package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/rostsocial/rost/feed"
	"github.com/rostsocial/rost/server/resolver"
)

const (
	// DefaultSessionTTL bounds how long a feed session stays registered after
	// it was opened, clients reopen one when it expires.
	DefaultSessionTTL = 2 * time.Hour

	ErrorInvalidInput     = 40001
	ErrorUnauthenticated  = 40102
	ErrorForbidden        = 40301
	ErrorNotFound         = 40401
	ErrorInternal         = 50001
	ErrorUpstreamFetching = 50201
)

// Server binds the resolver and the feed sessions to http routes.
type Server struct {
	Resolver   *resolver.Resolver
	Sessions   *feed.Sessions
	SessionTTL time.Duration

	// ctx bounds the lifetime of every feed session opened through the server.
	ctx context.Context
}

func NewServer(ctx context.Context, r *resolver.Resolver, sessions *feed.Sessions) *Server {
	return &Server{
		Resolver:   r,
		Sessions:   sessions,
		SessionTTL: DefaultSessionTTL,
		ctx:        ctx,
	}
}

// AddRoutes registers every route on rg. Authentication middlewares are
// expected to be installed by the caller.
func (s *Server) AddRoutes(rg gin.IRouter) {
	// The post segment is a slug for reads and an id for engagement writes.
	posts := rg.Group("/posts")
	posts.GET("", s.ListPosts)
	posts.POST("", s.CreatePost)
	posts.GET("/:post", s.GetPost)
	posts.GET("/:post/comments", s.ListComments)
	posts.POST("/:post/like", s.ToggleLike)
	posts.POST("/:post/bookmark", s.ToggleBookmark)

	rg.POST("/comments", s.AddComment)
	rg.GET("/bookmarks", s.ListBookmarks)

	rg.PUT("/follows/:userId", s.Follow)
	rg.DELETE("/follows/:userId", s.Unfollow)

	rg.GET("/profiles", s.SearchProfiles)
	rg.GET("/profiles/:handle", s.GetProfile)

	rg.GET("/categories", s.ListCategories)
	rg.GET("/tags", s.ListTags)
	rg.GET("/stats", s.LiveStats)

	rg.GET("/feed", s.EphemeralFeed)
	sessions := rg.Group("/feed/sessions")
	sessions.POST("", s.OpenFeedSession)
	sessions.GET("/:id", s.GetFeedSession)
	sessions.DELETE("/:id", s.CloseFeedSession)
	sessions.POST("/:id/refresh", s.RefreshFeedSession)
	sessions.POST("/:id/latest", s.ShowLatest)
	sessions.PUT("/:id/filter", s.SetFeedFilter)

	rg.GET("/subscription", s.Subscription)

	rg.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}

// errorCode maps an error returned by the resolver or the feed package to a
// http status and the code written in the body.
func errorCode(err error) (int, int) {
	switch {
	case errors.Is(err, resolver.ErrInvalidInput):
		return http.StatusBadRequest, ErrorInvalidInput
	case errors.Is(err, resolver.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorUnauthenticated
	case errors.Is(err, feed.ErrSessionForbidden):
		return http.StatusForbidden, ErrorForbidden
	case errors.Is(err, resolver.ErrNotFound), errors.Is(err, feed.ErrSessionNotFound):
		return http.StatusNotFound, ErrorNotFound
	}
	return http.StatusInternalServerError, ErrorInternal
}

func abortWithError(c *gin.Context, err error) {
	status, code := errorCode(err)
	if status == http.StatusInternalServerError {
		c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"code": code,
		"msg":  err.Error(),
	})
}
