package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"haccpcore/internal/core"
)

func parseTimeQuery(c *gin.Context, name string) (time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC3339: %w", name, err)
	}
	return t, nil
}

func (h *handlers) listMonitoringLogs(c *gin.Context) {
	since, err := parseTimeQuery(c, "since")
	if err != nil {
		badRequest(c, err)
		return
	}
	until, err := parseTimeQuery(c, "until")
	if err != nil {
		badRequest(c, err)
		return
	}
	logs := h.svc.ListMonitoringLogs(c.Request.Context(), core.MonitoringFilter{
		CCPID:  c.Query("ccpId"),
		PlanID: c.Query("planId"),
		Since:  since,
		Until:  until,
	})
	c.JSON(http.StatusOK, logs)
}

func (h *handlers) getMonitoringLog(c *gin.Context) {
	l, err := h.svc.GetMonitoringLog(c.Request.Context(), c.Param("logId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *handlers) addMonitoringLog(c *gin.Context) {
	var req core.MonitoringInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.MonitoredBy = author(c, req.MonitoredBy)
	if req.MonitoredBy == "" {
		badRequest(c, errors.New("monitoredBy is required"))
		return
	}
	outcome, err := h.svc.AddMonitoringLog(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, outcome)
}

type verifyRequest struct {
	VerifiedBy string `json:"verifiedBy"`
}

func (h *handlers) verifyMonitoringLog(c *gin.Context) {
	var req verifyRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.svc.VerifyMonitoringLog(c.Request.Context(), c.Param("logId"), author(c, req.VerifiedBy))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *handlers) listCorrectiveActions(c *gin.Context) {
	status := core.CorrectiveStatusFilter(c.DefaultQuery("status", string(core.CorrectiveAll)))
	switch status {
	case core.CorrectiveAll, core.CorrectivePending, core.CorrectiveVerified, core.CorrectiveOpen:
	default:
		badRequest(c, fmt.Errorf("unknown status filter %q", status))
		return
	}
	c.JSON(http.StatusOK, h.svc.ListCorrectiveActions(c.Request.Context(), core.CorrectiveFilter{
		PlanID: c.Query("planId"),
		CCPID:  c.Query("ccpId"),
		Status: status,
	}))
}

func (h *handlers) getCorrectiveAction(c *gin.Context) {
	l, err := h.svc.GetCorrectiveAction(c.Request.Context(), c.Param("actionId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *handlers) addCorrectiveAction(c *gin.Context) {
	var req core.CorrectiveActionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.TakenBy = author(c, req.TakenBy)
	l, err := h.svc.AddCorrectiveActionLog(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *handlers) verifyCorrectiveAction(c *gin.Context) {
	var req verifyRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.svc.VerifyCorrectiveAction(c.Request.Context(), c.Param("actionId"), author(c, req.VerifiedBy))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

type followUpRequest struct {
	CompletedBy string `json:"completedBy"`
	Description string `json:"description"`
}

func (h *handlers) completeFollowUp(c *gin.Context) {
	var req followUpRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.svc.CompleteFollowUp(c.Request.Context(), c.Param("actionId"), author(c, req.CompletedBy), req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// bindOptionalJSON decodes the body when one is present. An empty body,
// chunked or not, leaves dst untouched.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
