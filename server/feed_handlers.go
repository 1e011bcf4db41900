package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rostsocial/rost/feed"
	"github.com/rostsocial/rost/server/middlewares"
	"github.com/rostsocial/rost/server/resolver"
	. "github.com/rostsocial/rost/utils/log"
)

func viewerOf(c *gin.Context) feed.Viewer {
	return feed.Viewer{ID: middlewares.ViewerID(c)}
}

func filterFromQuery(c *gin.Context) feed.Filter {
	return feed.Filter{
		Category: c.Query("category"),
		Tags:     c.QueryArray("tag"),
		Search:   c.Query("search"),
	}
}

// refreshFailed writes a 502, the session (if any) keeps what it displayed.
func refreshFailed(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
		"code": ErrorUpstreamFetching,
		"msg":  err.Error(),
	})
}

func (s *Server) writeView(c *gin.Context, status int, session *feed.Session) {
	view, err := session.View(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(status, view)
}

// EphemeralFeed ranks the latest posts once, without keeping a session.
func (s *Server) EphemeralFeed(c *gin.Context) {
	session := s.Sessions.Ephemeral(viewerOf(c))
	session.SetFilter(filterFromQuery(c))
	if _, err := session.Refresh(c.Request.Context()); err != nil {
		refreshFailed(c, err)
		return
	}
	s.writeView(c, http.StatusOK, session)
}

// OpenFeedSession registers a session for the viewer and fills it with the
// latest posts. The session expires after SessionTTL or when closed.
func (s *Server) OpenFeedSession(c *gin.Context) {
	var filter feed.Filter
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&filter); err != nil {
			abortWithError(c, errors.Wrap(resolver.ErrInvalidInput, err.Error()))
			return
		}
	}

	session := s.Sessions.OpenWithTTL(s.ctx, viewerOf(c), s.SessionTTL)
	session.SetFilter(filter)

	if _, err := session.Refresh(c.Request.Context()); err != nil {
		s.Sessions.Close(session.ID())
		refreshFailed(c, err)
		return
	}
	Log.WithFields(logrus.Fields{"session": session.ID(), "viewer": session.Viewer().ID}).
		Debug("feed session opened")
	s.writeView(c, http.StatusCreated, session)
}

func (s *Server) session(c *gin.Context) (*feed.Session, bool) {
	session, err := s.Sessions.Get(c.Param("id"), viewerOf(c))
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	return session, true
}

func (s *Server) GetFeedSession(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	s.writeView(c, http.StatusOK, session)
}

func (s *Server) CloseFeedSession(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	s.Sessions.Close(session.ID())
	c.Status(http.StatusNoContent)
}

// RefreshFeedSession pulls the latest posts on demand, for clients that don't
// keep a subscription open. New posts are held, not shown.
func (s *Server) RefreshFeedSession(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	if _, err := session.Refresh(c.Request.Context()); err != nil {
		refreshFailed(c, err)
		return
	}
	s.writeView(c, http.StatusOK, session)
}

func (s *Server) ShowLatest(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	session.ShowLatest()
	s.writeView(c, http.StatusOK, session)
}

func (s *Server) SetFeedFilter(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var filter feed.Filter
	if err := c.ShouldBindJSON(&filter); err != nil {
		abortWithError(c, errors.Wrap(resolver.ErrInvalidInput, err.Error()))
		return
	}
	session.SetFilter(filter)
	s.writeView(c, http.StatusOK, session)
}
