package server

import (
	"bytes"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cloudwarden/pkg/findings"
	"cloudwarden/pkg/reports"
)

// selection reads the type filter from the query string. With no filter
// parameters at all every type is selected; once the form was applied an
// absent type list means nothing is selected.
func (s *Server) selection(c *gin.Context) findings.TypeSet {
	types := c.QueryArray("type")
	if len(types) == 0 && c.Query("applied") == "" {
		return s.report.DistinctTypes()
	}
	return findings.NewTypeSet(types...)
}

func (s *Server) empty() bool { return s.report == nil }

func (s *Server) respondWithError(c *gin.Context, code int, message string, err error) {
	fields := []zap.Field{
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
		_ = c.Error(err)
	}
	s.logger.Error(message, fields...)
	c.JSON(code, gin.H{"error": message})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) dashboard(c *gin.Context) {
	var buf bytes.Buffer
	if s.empty() {
		if err := reports.RenderEmptyHTML(&buf, s.opts.Title, s.warning); err != nil {
			s.respondWithError(c, http.StatusInternalServerError, "Failed to render dashboard", err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
		return
	}

	view, err := reports.BuildDashboardView(s.opts.Title, s.report, s.selection(c), s.renderer)
	if err != nil {
		s.respondWithError(c, http.StatusInternalServerError, "Failed to build dashboard", err)
		return
	}
	view.ExportFileName = s.opts.ExportFileName

	if err := reports.RenderHTML(&buf, view); err != nil {
		s.respondWithError(c, http.StatusInternalServerError, "Failed to render dashboard", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) noFindings(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": s.warning})
}

func (s *Server) listTypes(c *gin.Context) {
	if s.empty() {
		s.noFindings(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"types": s.report.Types()})
}

func (s *Server) listFindings(c *gin.Context) {
	if s.empty() {
		s.noFindings(c)
		return
	}
	c.JSON(http.StatusOK, findings.ToExportable(s.report.FilterByTypes(s.selection(c))))
}

func (s *Server) summary(c *gin.Context) {
	if s.empty() {
		s.noFindings(c)
		return
	}
	filtered := s.report.FilterByTypes(s.selection(c))
	c.JSON(http.StatusOK, gin.H{
		"total":          len(filtered),
		"affected_users": findings.DistinctUserCount(filtered),
		"counts":         findings.CountByType(filtered),
	})
}

func (s *Server) download(c *gin.Context) {
	if s.empty() {
		s.noFindings(c)
		return
	}
	data, err := findings.MarshalExport(s.report.FilterByTypes(s.selection(c)))
	if err != nil {
		s.respondWithError(c, http.StatusInternalServerError, "Failed to export findings", err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": s.opts.ExportFileName}))
	c.Data(http.StatusOK, "application/json", data)
}
