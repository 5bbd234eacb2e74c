// Package apitest provides an in-process fake of the remote accountability
// API for tests. It mirrors the backend's route shapes, keeps mutable
// in-memory state, records every request it sees, and can be scripted to
// answer a route with a queue of status codes (429→200, repeated 429, 401,
// 5xx, ...) to exercise the transport client's classification and retry
// behavior.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/avelis/go-accountability-sync/internal/domain"
)

// Server wraps an httptest.Server running the fake API.
type Server struct {
	// URL is the base URL tests hand to the transport client.
	URL string

	ts *httptest.Server

	mu         sync.Mutex
	commitment domain.Commitment
	stats      domain.Stats
	feedback   string
	scripted   map[string][]int
	hits       map[string]int
	lastAuth   string
	nextID     int64
}

// New starts the fake API and registers its shutdown with t.Cleanup.
func New(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		scripted: make(map[string][]int),
		hits:     make(map[string]int),
		feedback: "Keep shipping.",
		nextID:   100,
	}

	r := gin.New()
	r.Use(s.record())

	r.GET("/commitments/:user/today", s.getToday)
	r.GET("/commitments/:user/stats", s.getStats)
	r.GET("/commitments/:user/pending", s.getToday)
	r.GET("/commitments/:user/reminder-needed", func(c *gin.Context) {
		c.JSON(http.StatusOK, domain.Reminder{ReminderNeeded: false})
	})
	r.POST("/commitments/:id/review", s.postReview)

	r.POST("/checkins/:user", s.postCheckin)
	r.GET("/checkins/:user", func(c *gin.Context) { c.JSON(http.StatusOK, []domain.Checkin{}) })
	r.PATCH("/checkins/:id/evening", s.postReview)

	r.GET("/dashboard/:user", s.getDashboard)
	r.GET("/advice/:user", func(c *gin.Context) { c.JSON(http.StatusOK, []domain.Advice{}) })
	r.POST("/chat/:user", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"response": "noted"})
	})

	r.POST("/users", func(c *gin.Context) { c.JSON(http.StatusOK, domain.User{GithubUsername: "u"}) })
	r.GET("/users/:user", func(c *gin.Context) {
		c.JSON(http.StatusOK, domain.User{GithubUsername: c.Param("user")})
	})
	r.PATCH("/users/:user/complete-onboarding", func(c *gin.Context) {
		c.JSON(http.StatusOK, domain.User{GithubUsername: c.Param("user"), OnboardingCompleted: true})
	})

	r.POST("/goals/:user", s.newID)
	r.GET("/goals/:user", func(c *gin.Context) { c.JSON(http.StatusOK, []domain.Goal{}) })
	r.GET("/goals/:user/dashboard", s.getDashboard)
	r.GET("/goals/:user/:id", func(c *gin.Context) { c.JSON(http.StatusOK, domain.Goal{ID: 1}) })
	r.PATCH("/goals/:user/:id", func(c *gin.Context) { c.JSON(http.StatusOK, domain.Goal{ID: 1}) })
	r.POST("/goals/:user/:id/progress", s.newID)
	r.PATCH("/goals/:user/:id/tasks/:task", func(c *gin.Context) { c.JSON(http.StatusOK, domain.GoalTask{ID: 1}) })

	r.POST("/life-decisions/:user", s.newID)
	r.GET("/life-decisions/:user", func(c *gin.Context) { c.JSON(http.StatusOK, []domain.LifeDecision{}) })
	r.GET("/life-decisions/:user/:id", func(c *gin.Context) { c.JSON(http.StatusOK, domain.LifeDecision{ID: 1}) })
	r.POST("/life-decisions/:user/:id/reanalyze", func(c *gin.Context) { c.JSON(http.StatusOK, domain.LifeDecision{ID: 1}) })

	s.ts = httptest.NewServer(r)
	s.URL = s.ts.URL
	t.Cleanup(s.ts.Close)
	return s
}

// record counts hits, captures the Authorization header, and plays back any
// scripted status for the route before the normal handler runs. A scripted
// 200 pops the queue entry and falls through to the handler.
func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Method + " " + c.Request.URL.Path

		s.mu.Lock()
		s.hits[key]++
		s.lastAuth = c.GetHeader("Authorization")
		var status int
		if q := s.scripted[key]; len(q) > 0 {
			status = q[0]
			s.scripted[key] = q[1:]
		}
		s.mu.Unlock()

		if status != 0 && status != http.StatusOK {
			c.AbortWithStatusJSON(status, gin.H{"detail": http.StatusText(status)})
			return
		}
		c.Next()
	}
}

// Script enqueues status codes for the next requests to method+path.
func (s *Server) Script(method, path string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.scripted[key] = append(s.scripted[key], statuses...)
}

// Hits returns how many requests reached method+path, scripted or not.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// LastAuth returns the Authorization header of the most recent request.
func (s *Server) LastAuth() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth
}

// SetCommitment replaces the commitment served by the "today" endpoint.
func (s *Server) SetCommitment(c domain.Commitment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitment = c
}

// SetStats replaces the stats aggregate.
func (s *Server) SetStats(st domain.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = st
}

// SetFeedback sets the text returned for submitted reviews.
func (s *Server) SetFeedback(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = text
}

// ---- handlers ----

func (s *Server) getToday(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.commitment)
}

func (s *Server) getStats(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.stats)
}

func (s *Server) getDashboard(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, domain.DashboardSummary{Commitment: &s.commitment, Stats: &s.stats})
}

// postCheckin establishes today's commitment from the submitted payload.
func (s *Server) postCheckin(c *gin.Context) {
	var req struct {
		EnergyLevel  int    `json:"energy_level"`
		AvoidingWhat string `json:"avoiding_what"`
		Commitment   string `json:"commitment"`
		Mood         string `json:"mood"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid check-in payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.commitment = domain.Commitment{
		HasCommitment: true,
		CheckinID:     s.nextID,
		Text:          req.Commitment,
		EnergyLevel:   req.EnergyLevel,
		AvoidingWhat:  req.AvoidingWhat,
	}
	c.JSON(http.StatusOK, gin.H{"id": s.nextID})
}

// postReview records the review outcome on today's commitment and returns
// the canned feedback text.
func (s *Server) postReview(c *gin.Context) {
	var req struct {
		Shipped bool    `json:"shipped"`
		Excuse  *string `json:"excuse"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid review payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	shipped := req.Shipped
	s.commitment.Shipped = &shipped
	if req.Excuse != nil {
		s.commitment.Excuse = *req.Excuse
	}
	c.JSON(http.StatusOK, domain.ReviewFeedback{Feedback: s.feedback})
}

func (s *Server) newID(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.JSON(http.StatusOK, gin.H{"id": s.nextID})
}
