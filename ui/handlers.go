package ui

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"csvdash/domain/core"
	"csvdash/domain/dataset"
	domainsession "csvdash/domain/session"
	"csvdash/internal/dashboard"
	"csvdash/internal/errors"
	"csvdash/ui/templates/fragments"

	"github.com/gin-gonic/gin"
)

// multipart overhead allowed on top of the file size limit
const formOverhead = 1 << 20

// page is the data handed to index.html
type page struct {
	Title       string
	View        *dashboard.View
	Loaded      bool
	Accept      string
	MaxUploadMB int64
	Footer      interface{}
}

// handleIndex renders the full dashboard for the current session
func (s *Server) handleIndex(c *gin.Context) {
	ctx := c.Request.Context()
	state, err := s.sessions.Update(ctx, sessionID(c), func(st domainsession.State) (domainsession.State, error) {
		return st.Touch(time.Now()), nil
	})
	if err != nil {
		s.respondError(c, errors.Wrap(err, "failed to load session"))
		return
	}

	view, err := s.renderer.Render(ctx, state)
	if err != nil {
		s.respondError(c, errors.Wrap(err, "failed to render dashboard"))
		return
	}

	s.renderTemplate(c, fragments.Page, page{
		Title:       "Data Analysis Dashboard",
		View:        view,
		Loaded:      view.Phase == domainsession.PhaseFileLoaded,
		Accept:      strings.Join(s.processor.AcceptedExtensions(), ","),
		MaxUploadMB: s.config.Upload.MaxBytes / (1024 * 1024),
		Footer:      footerHTML,
	})
}

// handleUpload parses the uploaded file and replaces the session's table.
// A failed upload keeps the previous table and only sets the error notice.
func (s *Server) handleUpload(c *gin.Context) {
	ctx := c.Request.Context()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.Upload.MaxBytes+formOverhead)

	upload, cleanup, formErr := s.readUpload(c)
	defer cleanup()

	_, err := s.sessions.Update(ctx, sessionID(c), func(st domainsession.State) (domainsession.State, error) {
		now := time.Now()
		if formErr != nil {
			return st.WithUploadError(formErr, now), nil
		}

		table, err := s.processor.ProcessUpload(ctx, upload)
		if err != nil {
			s.logger.Warn("Upload of %s rejected: %v", upload.Filename, err)
			return st.WithUploadError(err, now), nil
		}
		s.logger.Info("Session %s loaded %s", st.ID, upload.Filename)
		return st.WithTable(table, upload.Filename, now), nil
	})
	if err != nil {
		s.respondError(c, errors.Wrap(err, "failed to update session"))
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// readUpload extracts the "file" form field. The returned cleanup must always
// be called.
func (s *Server) readUpload(c *gin.Context) (*dataset.Upload, func(), error) {
	noop := func() {}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, noop, errors.DataParseError(core.NewParseError(
				"file exceeds the %dMB limit", s.config.Upload.MaxBytes/(1024*1024)))
		}
		if stderrors.Is(err, http.ErrMissingFile) || stderrors.Is(err, http.ErrNotMultipart) {
			return nil, noop, errors.InvalidInput("no file uploaded")
		}
		return nil, noop, errors.DataParseError(core.NewParseError("failed to read upload form: %v", err))
	}

	upload := &dataset.Upload{
		Filename: filepath.Base(header.Filename),
		Size:     header.Size,
		File:     file,
	}
	return upload, func() { file.Close() }, nil
}

// handleControls applies the sidebar checkboxes and selectors
func (s *Server) handleControls(c *gin.Context) {
	toggles := domainsession.Toggles{
		Info:  c.PostForm("show_info") != "",
		Shape: c.PostForm("show_shape") != "",
		Nulls: c.PostForm("show_nulls") != "",
	}
	selection := domainsession.Selection{
		Categorical: c.PostForm("categorical"),
		Numerical:   c.PostForm("numerical"),
	}

	_, err := s.sessions.Update(c.Request.Context(), sessionID(c), func(st domainsession.State) (domainsession.State, error) {
		return st.WithControls(toggles, selection, time.Now()), nil
	})
	if err != nil {
		s.respondError(c, errors.Wrap(err, "failed to update session"))
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// handleExport downloads the reports of the loaded table as a workbook
func (s *Server) handleExport(c *gin.Context) {
	state, err := s.sessions.Get(c.Request.Context(), sessionID(c))
	if err != nil && !core.IsNotFoundError(err) {
		s.respondError(c, errors.Wrap(err, "failed to load session"))
		return
	}
	if state.Table == nil {
		s.respondError(c, errors.Conflict("no file loaded; upload a CSV file first"))
		return
	}

	var buf bytes.Buffer
	if err := s.exporter.Write(&buf, state.Table); err != nil {
		s.respondError(c, errors.Wrap(err, "failed to export report"))
		return
	}

	name := strings.TrimSuffix(state.FileName, filepath.Ext(state.FileName)) + "_report.xlsx"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// handleHealth reports liveness
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

// respondError writes err as JSON with a status derived from its code
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeDataParse, errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
