package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/graph"
	"github.com/smallnest/collabwalk/render"
	"github.com/smallnest/collabwalk/report"
	"github.com/smallnest/collabwalk/store"
	"github.com/smallnest/collabwalk/walk"
)

// WalkResponse is the body of /api/walk and /api/walks/:id.
type WalkResponse struct {
	ID          string              `json:"id"`
	Seed        string              `json:"seed"`
	ReleaseType catalog.ReleaseType `json:"release_type"`
	Steps       int                 `json:"steps"`
	QueryLimit  int                 `json:"query_limit"`
	Path        []string            `json:"path"`
	Elements    render.Elements     `json:"elements"`
	Report      *report.Report      `json:"report"`
	ReportHTML  string              `json:"report_html"`
	Timestamp   time.Time           `json:"timestamp"`
}

// WalkSummary is one entry of /api/walks.
type WalkSummary struct {
	ID             string              `json:"id"`
	Seed           string              `json:"seed"`
	ReleaseType    catalog.ReleaseType `json:"release_type"`
	Steps          int                 `json:"steps"`
	Artists        int                 `json:"artists"`
	Collaborations int                 `json:"collaborations"`
	Timestamp      time.Time           `json:"timestamp"`
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSeeds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"seeds":        s.opts.Seeds,
		"default":      s.opts.Defaults.Seed,
		"steps":        s.opts.Defaults.Steps,
		"query_limit":  s.opts.Defaults.QueryLimit,
		"release_type": s.opts.Defaults.ReleaseType,
		"max_steps":    s.opts.MaxSteps,
	})
}

func (s *Server) handleStylesheet(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"layout": render.Layout,
		"style":  render.Stylesheet(),
	})
}

// parseRequest reads walk parameters from the query string, falling back to
// the server defaults.
func (s *Server) parseRequest(c *gin.Context) (walk.Request, error) {
	req := s.opts.Defaults

	if artist := strings.TrimSpace(c.Query("artist")); artist != "" {
		req.Seed = artist
	}
	if v := c.Query("steps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("%w: steps %q is not a number", walk.ErrInvalidRequest, v)
		}
		req.Steps = n
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("%w: limit %q is not a number", walk.ErrInvalidRequest, v)
		}
		req.QueryLimit = n
	}
	if v := c.Query("type"); v != "" {
		rt, err := catalog.ParseReleaseType(v)
		if err != nil {
			return req, fmt.Errorf("%w: %v", walk.ErrInvalidRequest, err)
		}
		req.ReleaseType = rt
	}
	if req.Steps > s.opts.MaxSteps {
		return req, fmt.Errorf("%w: steps must be at most %d, got %d", walk.ErrInvalidRequest, s.opts.MaxSteps, req.Steps)
	}
	return req, req.Validate()
}

func (s *Server) handleWalk(c *gin.Context) {
	req, err := s.parseRequest(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	session := sessionID(c)
	if !s.sessions.acquire(session) {
		abortWithError(c, http.StatusConflict, errors.New("a walk is already running for this session"))
		return
	}
	defer s.sessions.release(session)

	s.metrics.WalksInFlight.Inc()
	defer s.metrics.WalksInFlight.Dec()

	walker := walk.New(s.client,
		walk.WithRandom(s.opts.NewRandom()),
		walk.WithMarket(s.opts.Market),
		walk.WithLogger(s.logger),
		walk.WithListener(s.metrics),
	)
	result, err := walker.Walk(c.Request.Context(), req)
	if err != nil {
		s.logger.Warn("dashboard: walk from %q failed: %v", req.Seed, err)
		abortWithError(c, statusFor(err), err)
		return
	}

	record := store.NewWalkRecord(req, s.opts.Market, result)
	if err := s.store.Save(c.Request.Context(), record); err != nil {
		s.logger.Error("dashboard: failed to save walk %s: %v", record.ID, err)
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, buildResponse(record, result.Graph))
}

func (s *Server) handleListWalks(c *gin.Context) {
	records, err := s.store.List(c.Request.Context(), c.Query("artist"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	summaries := make([]WalkSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, WalkSummary{
			ID:             r.ID,
			Seed:           r.Seed,
			ReleaseType:    r.ReleaseType,
			Steps:          len(r.Path),
			Artists:        len(r.Snapshot.Artists),
			Collaborations: len(r.Snapshot.Collaborations),
			Timestamp:      r.Timestamp,
		})
	}
	c.JSON(http.StatusOK, gin.H{"walks": summaries})
}

func (s *Server) handleGetWalk(c *gin.Context) {
	id := c.Param("id")
	if err := store.ValidateID(id); err != nil {
		abortWithError(c, http.StatusNotFound, err)
		return
	}

	record, err := s.store.Load(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	g, err := record.Graph()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, buildResponse(record, g))
}

func (s *Server) handleDeleteWalk(c *gin.Context) {
	id := c.Param("id")
	if err := store.ValidateID(id); err != nil {
		abortWithError(c, http.StatusNotFound, err)
		return
	}
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

func buildResponse(record *store.WalkRecord, g *graph.Graph) WalkResponse {
	rep := report.Build("Collaboration walk from "+record.Seed, g, record.Path, record.ReleaseType)
	return WalkResponse{
		ID:          record.ID,
		Seed:        record.Seed,
		ReleaseType: record.ReleaseType,
		Steps:       record.Steps,
		QueryLimit:  record.QueryLimit,
		Path:        record.Path,
		Elements:    render.Render(g, record.Path),
		Report:      rep,
		ReportHTML:  rep.HTML(),
		Timestamp:   record.Timestamp,
	}
}
