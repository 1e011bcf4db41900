package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/rostsocial/rost/model"
	"github.com/rostsocial/rost/server/middlewares"
	"github.com/rostsocial/rost/server/resolver"
)

func (s *Server) ListPosts(c *gin.Context) {
	posts, err := s.Resolver.Posts(c.Request.Context(), c.Query("search"), c.Query("tag"), c.Query("category"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) GetPost(c *gin.Context) {
	post, err := s.Resolver.PostBySlug(c.Request.Context(), c.Param("post"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) CreatePost(c *gin.Context) {
	var input model.NewPostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, errors.Wrap(resolver.ErrInvalidInput, err.Error()))
		return
	}
	post, err := s.Resolver.CreatePost(c.Request.Context(), input, middlewares.ViewerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (s *Server) ListComments(c *gin.Context) {
	comments, err := s.Resolver.Comments(c.Request.Context(), c.Param("post"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (s *Server) AddComment(c *gin.Context) {
	var input model.NewCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, errors.Wrap(resolver.ErrInvalidInput, err.Error()))
		return
	}
	comment, err := s.Resolver.AddComment(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) ToggleLike(c *gin.Context) {
	state, err := s.Resolver.ToggleLike(c.Request.Context(), c.Param("post"), middlewares.ViewerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) ToggleBookmark(c *gin.Context) {
	postID := c.Param("post")
	saved, err := s.Resolver.ToggleBookmark(c.Request.Context(), postID, middlewares.ViewerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"postId": postID, "bookmarked": saved})
}

func (s *Server) ListBookmarks(c *gin.Context) {
	posts, err := s.Resolver.Bookmarks(c.Request.Context(), middlewares.ViewerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) Follow(c *gin.Context) {
	if err := s.Resolver.Follow(c.Request.Context(), c.Param("userId"), middlewares.ViewerID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) Unfollow(c *gin.Context) {
	if err := s.Resolver.Unfollow(c.Request.Context(), c.Param("userId"), middlewares.ViewerID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) GetProfile(c *gin.Context) {
	profile, err := s.Resolver.ProfileByHandle(c.Request.Context(), c.Param("handle"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) SearchProfiles(c *gin.Context) {
	profiles, err := s.Resolver.SearchProfiles(c.Request.Context(), c.Query("q"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (s *Server) ListCategories(c *gin.Context) {
	categories, err := s.Resolver.Categories(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) ListTags(c *gin.Context) {
	tags, err := s.Resolver.Tags(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (s *Server) LiveStats(c *gin.Context) {
	stats, err := s.Resolver.LiveStats(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
