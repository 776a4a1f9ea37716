package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/factlens/internal/alert"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/stats"
)

type analyzeRequest struct {
	Content string `json:"content"`
	URL     string `json:"url"`
}

type analyzeResponse struct {
	Result             *model.AnalysisResult  `json:"result"`
	SourceVerification *model.SourceInsights  `json:"sourceVerification,omitempty"`
	Keywords           []string               `json:"keywords"`
	TriggeredAlerts    []model.TriggeredAlert `json:"triggeredAlerts,omitempty"`
	Warnings           []string               `json:"warnings,omitempty"`
}

func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if !bind(c, &req) {
		return
	}

	outcome, err := s.analyzer.Run(c.Request.Context(), model.Submission{
		Content: req.Content,
		URL:     req.URL,
		UserID:  userID(c),
	})
	if outcome == nil {
		var invalid *model.InvalidInputError
		if errors.As(err, &invalid) {
			s.fail(c, err)
			return
		}
		// the only other failure before scoring is fetching the URL
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	resp := analyzeResponse{
		Result:             outcome.Result,
		SourceVerification: outcome.Insights,
		Keywords:           outcome.Keywords,
		TriggeredAlerts:    outcome.Triggered,
	}
	if err != nil {
		resp.Warnings = append(resp.Warnings, "analysis was not saved: "+err.Error())
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listAnalyses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	var (
		records []model.AnalysisRecord
		err     error
	)
	if q := c.Query("q"); q != "" {
		records, err = s.store.SearchAnalyses(c.Request.Context(), userID(c), q, limit)
	} else {
		records, err = s.store.RecentAnalyses(c.Request.Context(), userID(c), limit)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (s *Server) getAnalysis(c *gin.Context) {
	record, err := s.store.GetAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

// Bookmarks

type bookmarkRequest struct {
	AnalysisID string   `json:"analysisId" binding:"required"`
	Tags       []string `json:"tags"`
	Notes      string   `json:"notes"`
}

func (s *Server) listBookmarks(c *gin.Context) {
	bookmarks, err := s.store.ListBookmarks(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bookmarks})
}

func (s *Server) addBookmark(c *gin.Context) {
	var req bookmarkRequest
	if !bind(c, &req) {
		return
	}

	bookmark := &model.Bookmark{
		UserID:     userID(c),
		AnalysisID: req.AnalysisID,
		Tags:       req.Tags,
		Notes:      req.Notes,
	}
	if err := s.store.AddBookmark(c.Request.Context(), bookmark); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": bookmark})
}

func (s *Server) removeBookmark(c *gin.Context) {
	if err := s.store.RemoveBookmark(c.Request.Context(), userID(c), c.Param("analysisId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Alerts

type alertRequest struct {
	Keywords  []string        `json:"keywords" binding:"required"`
	AlertType model.AlertType `json:"alertType" binding:"required"`
	IsActive  *bool           `json:"isActive"`
}

func (r alertRequest) rule(userID string) model.AlertRule {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return model.AlertRule{
		UserID:    userID,
		Keywords:  r.Keywords,
		AlertType: r.AlertType,
		IsActive:  active,
	}
}

func (s *Server) listAlerts(c *gin.Context) {
	rules, err := s.store.ListAlerts(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rules})
}

func (s *Server) createAlert(c *gin.Context) {
	var req alertRequest
	if !bind(c, &req) {
		return
	}

	rule := req.rule(userID(c))
	if err := alert.Validate(rule); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.store.CreateAlert(c.Request.Context(), &rule); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": rule})
}

func (s *Server) updateAlert(c *gin.Context) {
	var req alertRequest
	if !bind(c, &req) {
		return
	}

	rule := req.rule(userID(c))
	rule.ID = c.Param("id")
	if err := alert.Validate(rule); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.store.UpdateAlert(c.Request.Context(), &rule); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rule})
}

func (s *Server) deleteAlert(c *gin.Context) {
	if err := s.store.DeleteAlert(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listTriggered(c *gin.Context) {
	unread, _ := strconv.ParseBool(c.Query("unread"))
	alerts, err := s.store.ListTriggeredAlerts(c.Request.Context(), userID(c), unread)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": alerts})
}

type markReadRequest struct {
	Read *bool `json:"read"`
}

func (s *Server) markRead(c *gin.Context) {
	var req markReadRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}

	read := true
	if req.Read != nil {
		read = *req.Read
	}
	if err := s.store.MarkAlertRead(c.Request.Context(), userID(c), c.Param("id"), read); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Statistics and reports

func (s *Server) dashboard(c *gin.Context) {
	dashboard, err := stats.Dashboard(c.Request.Context(), s.store, userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dashboard})
}

type reportRequest struct {
	ReportType string    `json:"reportType"`
	Start      time.Time `json:"dateRangeStart" binding:"required"`
	End        time.Time `json:"dateRangeEnd" binding:"required"`
}

func (s *Server) listReports(c *gin.Context) {
	reports, err := s.store.ListReports(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reports})
}

func (s *Server) createReport(c *gin.Context) {
	var req reportRequest
	if !bind(c, &req) {
		return
	}
	if !req.End.After(req.Start) {
		s.fail(c, &model.InvalidInputError{Reason: "dateRangeEnd must be after dateRangeStart"})
		return
	}

	reportType := req.ReportType
	switch reportType {
	case "":
		reportType = model.ReportCustom
	case model.ReportDaily, model.ReportWeekly, model.ReportCustom:
	default:
		s.fail(c, &model.InvalidInputError{Reason: "unknown report type " + reportType})
		return
	}

	report, err := stats.BuildReport(c.Request.Context(), s.store, userID(c), reportType, req.Start.UTC(), req.End.UTC())
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.store.SaveReport(c.Request.Context(), report); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": report})
}

// Profiles

type profileRequest struct {
	DisplayName string                 `json:"displayName"`
	AvatarURL   string                 `json:"avatarUrl"`
	Preferences map[string]interface{} `json:"preferences"`
}

func (s *Server) getProfile(c *gin.Context) {
	profile, err := s.store.GetProfile(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (s *Server) upsertProfile(c *gin.Context) {
	var req profileRequest
	if !bind(c, &req) {
		return
	}

	profile := &model.Profile{
		UserID:      userID(c),
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Preferences: req.Preferences,
	}
	if err := s.store.UpsertProfile(c.Request.Context(), profile); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (s *Server) profileStats(c *gin.Context) {
	counts, err := s.store.ProfileStats(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": counts})
}

// Publishers

func (s *Server) publisher(c *gin.Context) {
	profile := s.table.Lookup(c.Param("domain"))
	if profile.Domain == "" {
		s.fail(c, &model.InvalidInputError{Reason: "invalid domain"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":     profile,
		"insights": s.table.Insights(profile, nil, nil),
	})
}

// bind decodes the JSON body and writes a 400 on failure
func bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}
