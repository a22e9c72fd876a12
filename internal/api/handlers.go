package api

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"filedeck/internal/browser"
	"filedeck/internal/errors"
	"filedeck/internal/log"
	"filedeck/internal/preview"

	"github.com/gin-gonic/gin"
)

type entryResponse struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	Size     int64  `json:"size"`
	Selected bool   `json:"selected"`
}

type viewResponse struct {
	ID          string          `json:"id"`
	Path        string          `json:"path"`
	Depth       int             `json:"depth"`
	State       string          `json:"state"`
	DisplayMode string          `json:"display_mode"`
	Entries     []entryResponse `json:"entries"`
	Error       string          `json:"error,omitempty"`
}

func renderView(id string, sess *session) viewResponse {
	view := sess.top().Snapshot()
	resp := viewResponse{
		ID:          id,
		Path:        view.Path,
		Depth:       len(sess.stack),
		State:       view.State.String(),
		DisplayMode: string(view.Mode),
		Entries:     make([]entryResponse, 0, len(view.Entries)),
	}
	for _, e := range view.Entries {
		resp.Entries = append(resp.Entries, entryResponse{
			Name:     e.Name(),
			Path:     e.Path,
			Kind:     e.Kind.String(),
			Size:     e.Size,
			Selected: view.IsSelected(e),
		})
	}
	if view.Err != nil {
		resp.Error = view.Err.Error()
	}
	return resp
}

// statusFor maps error kinds to HTTP status codes.
func statusFor(err error) int {
	switch errors.KindOf(err) {
	case errors.NameInvalid:
		return http.StatusBadRequest
	case errors.AlreadyExists:
		return http.StatusConflict
	case errors.NotListed:
		return http.StatusNotFound
	case errors.InvalidOperation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.LogWithError(err).Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "kind": errors.KindOf(err).String()})
}

func (s *Server) CreateSession(c *gin.Context) {
	id, sess := s.newSession()
	sess.mu.Lock()
	defer sess.mu.Unlock()
	c.JSON(http.StatusCreated, renderView(id, sess))
}

func (s *Server) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, renderView(c.Param("id"), sessionFrom(c)))
}

func (s *Server) CloseSession(c *gin.Context) {
	s.remove(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (s *Server) Refresh(c *gin.Context) {
	sess := sessionFrom(c)
	if err := sess.top().Refresh(); err != nil {
		log.LogWithError(err).Warn("refresh failed")
	}
	c.JSON(http.StatusOK, renderView(c.Param("id"), sess))
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

// Open taps the named entry: it enters a directory, describes an image, or
// toggles the selection in edit mode.
func (s *Server) Open(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := sessionFrom(c)
	ctrl := sess.top()
	e, ok := ctrl.Lookup(req.Name)
	if !ok {
		abortWithError(c, errors.NewFileError("entry not in listing", req.Name, errors.NotListed, nil))
		return
	}

	res, err := ctrl.Tap(e)
	if err != nil {
		abortWithError(c, err)
		return
	}

	switch res.Action {
	case browser.ActionOpenDirectory:
		sess.stack = append(sess.stack, res.Child)
		c.JSON(http.StatusOK, gin.H{"action": "open", "view": renderView(c.Param("id"), sess)})
	case browser.ActionPreviewImage:
		c.JSON(http.StatusOK, gin.H{"action": "preview", "entry": res.Entry.Name(), "url": "/api/sessions/" + c.Param("id") + "/images/" + res.Entry.Name()})
	case browser.ActionToggle:
		c.JSON(http.StatusOK, gin.H{"action": "toggle", "selected": res.Selected, "view": renderView(c.Param("id"), sess)})
	}
}

func (s *Server) Back(c *gin.Context) {
	sess := sessionFrom(c)
	if len(sess.stack) == 1 {
		abortWithError(c, errors.NewOperationError("already at root", "back", nil))
		return
	}
	sess.stack = sess.stack[:len(sess.stack)-1]
	if err := sess.top().Refresh(); err != nil {
		log.LogWithError(err).Warn("refresh after back failed")
	}
	c.JSON(http.StatusOK, renderView(c.Param("id"), sess))
}

type editRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) SetEditMode(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := sessionFrom(c)
	if req.Enabled {
		sess.top().EnterEditMode()
	} else {
		sess.top().CancelEditMode()
	}
	c.JSON(http.StatusOK, renderView(c.Param("id"), sess))
}

func (s *Server) CreateDirectory(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := sessionFrom(c)
	if err := sess.top().CreateDirectory(req.Name); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, renderView(c.Param("id"), sess))
}

// UploadImage imports the multipart field "file" into the open directory.
func (s *Server) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := fh.Open()
	if err != nil {
		abortWithError(c, errors.IOError("open upload", fh.Filename, err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		abortWithError(c, errors.IOError("read upload", fh.Filename, err))
		return
	}

	// withSession holds the session lock for the whole request, so the
	// controller's single-import guard is always free here.
	sess := sessionFrom(c)
	if _, err := sess.top().ImportImage(data, fh.Filename); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, renderView(c.Param("id"), sess))
}

func (s *Server) imageEntry(c *gin.Context) (*browser.Controller, browser.Entry, bool) {
	ctrl := sessionFrom(c).top()
	e, ok := ctrl.Lookup(c.Param("name"))
	if !ok {
		abortWithError(c, errors.NewFileError("entry not in listing", c.Param("name"), errors.NotListed, nil))
		return nil, browser.Entry{}, false
	}
	return ctrl, e, true
}

func (s *Server) GetImage(c *gin.Context) {
	ctrl, e, ok := s.imageEntry(c)
	if !ok {
		return
	}
	data, err := ctrl.ReadImage(e)
	if err != nil {
		abortWithError(c, err)
		return
	}
	contentType := mime.TypeByExtension(filepath.Ext(e.Name()))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	c.Data(http.StatusOK, contentType, data)
}

func (s *Server) GetImageInfo(c *gin.Context) {
	ctrl, e, ok := s.imageEntry(c)
	if !ok {
		return
	}
	data, err := ctrl.ReadImage(e)
	if err != nil {
		abortWithError(c, err)
		return
	}
	info, err := preview.Describe(data)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "bytes": info.Bytes})
		return
	}
	c.JSON(http.StatusOK, info)
}

type failureResponse struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

func (s *Server) DeleteSelection(c *gin.Context) {
	sess := sessionFrom(c)
	report, err := sess.top().DeleteSelected()
	if report == nil {
		abortWithError(c, err)
		return
	}

	deleted := make([]string, 0, len(report.Deleted))
	for _, e := range report.Deleted {
		deleted = append(deleted, e.Name())
	}
	failures := make([]failureResponse, 0, len(report.Failures))
	for _, f := range report.Failures {
		failures = append(failures, failureResponse{Name: f.Entry.Name(), Error: f.Err.Error()})
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{
		"deleted":  deleted,
		"failures": failures,
		"view":     renderView(c.Param("id"), sess),
	})
}

func (s *Server) GetDisplay(c *gin.Context) {
	mode := browser.List
	if s.deps.Preferences != nil {
		mode = s.deps.Preferences.DisplayMode()
	}
	c.JSON(http.StatusOK, gin.H{"display_mode": mode})
}

func (s *Server) ToggleDisplay(c *gin.Context) {
	if s.deps.Preferences == nil {
		abortWithError(c, errors.NewOperationError("no preference store", "toggle display mode", nil))
		return
	}
	s.displayMu.Lock()
	mode, err := s.deps.Preferences.ToggleDisplayMode()
	s.displayMu.Unlock()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"display_mode": mode})
}
