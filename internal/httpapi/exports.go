package httpapi

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"haccpcore/internal/export"
)

type exportRequest struct {
	Period  export.Period   `json:"period"`
	Formats []export.Format `json:"formats"`
}

func (h *handlers) createExport(c *gin.Context) {
	var req exportRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	for _, f := range req.Formats {
		if f != export.FormatText && f != export.FormatCSV {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown format " + string(f)})
			return
		}
	}
	if _, err := export.WindowFor(req.Period, time.Now()); err != nil {
		badRequest(c, err)
		return
	}
	results, err := h.exporter.Export(c.Request.Context(), req.Period, req.Formats...)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, results)
}

func (h *handlers) listExports(c *gin.Context) {
	infos, err := h.exporter.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, infos)
}

// previewExport renders a report without archiving it.
func (h *handlers) previewExport(c *gin.Context) {
	window, err := export.WindowFor(export.Period(c.Query("period")), time.Now())
	if err != nil {
		badRequest(c, err)
		return
	}
	format := export.Format(c.DefaultQuery("format", string(export.FormatText)))
	var buf bytes.Buffer
	if err := export.Write(&buf, format, export.Build(h.svc.Snapshot(), window)); err != nil {
		badRequest(c, err)
		return
	}
	contentType := "text/plain; charset=utf-8"
	if format == export.FormatCSV {
		contentType = "text/csv"
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
