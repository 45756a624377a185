package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"haccpcore/internal/core"
	"haccpcore/pkg/domain"
)

func queryBool(c *gin.Context, name string) (bool, error) {
	v := c.Query(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", name, err)
	}
	return b, nil
}

func (h *handlers) listEquipment(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListEquipment(c.Request.Context()))
}

func (h *handlers) getEquipment(c *gin.Context) {
	eq, err := h.svc.GetEquipment(c.Request.Context(), c.Param("equipmentId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, eq)
}

func (h *handlers) addEquipment(c *gin.Context) {
	var req domain.Equipment
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	eq, err := h.svc.AddEquipment(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, eq)
}

func (h *handlers) updateEquipment(c *gin.Context) {
	var req domain.Equipment
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.ID = c.Param("equipmentId")
	eq, err := h.svc.UpdateEquipment(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, eq)
}

func (h *handlers) deleteEquipment(c *gin.Context) {
	if err := h.svc.DeleteEquipment(c.Request.Context(), c.Param("equipmentId")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listTemperatureLogs(c *gin.Context) {
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
	outOfRange, err := queryBool(c, "outOfRange")
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.ListTemperatureLogs(c.Request.Context(), core.TemperatureFilter{
		EquipmentID:    c.Query("equipmentId"),
		OutOfRangeOnly: outOfRange,
		Since:          since,
		Until:          until,
	}))
}

func (h *handlers) addTemperatureLog(c *gin.Context) {
	var req core.TemperatureInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.RecordedBy = author(c, req.RecordedBy)
	outcome, err := h.svc.AddTemperatureLog(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, outcome)
}

func (h *handlers) listAlerts(c *gin.Context) {
	unread, err := queryBool(c, "unread")
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.ListAlerts(c.Request.Context(), core.AlertFilter{
		UnreadOnly: unread,
		Type:       domain.AlertType(c.Query("type")),
	}))
}

func (h *handlers) markAlertRead(c *gin.Context) {
	alert, err := h.svc.MarkAlertRead(c.Request.Context(), c.Param("alertId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (h *handlers) clearAlert(c *gin.Context) {
	if err := h.svc.ClearAlert(c.Request.Context(), c.Param("alertId")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listCoolingLogs(c *gin.Context) {
	active, err := queryBool(c, "active")
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.ListCoolingLogs(c.Request.Context(), core.CoolingFilter{
		ActiveOnly: active,
		CCPID:      c.Query("ccpId"),
	}))
}

func (h *handlers) getCoolingLog(c *gin.Context) {
	l, err := h.svc.GetCoolingLog(c.Request.Context(), c.Param("coolingId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *handlers) startCoolingLog(c *gin.Context) {
	var req core.CoolingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.StartedBy = author(c, req.StartedBy)
	l, err := h.svc.StartCoolingLog(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

type coolingReadingRequest struct {
	Temperature *float64 `json:"temperature"`
}

func (h *handlers) addCoolingReading(c *gin.Context) {
	var req coolingReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Temperature == nil {
		badRequest(c, errors.New("temperature is required"))
		return
	}
	outcome, err := h.svc.AddCoolingReading(c.Request.Context(), c.Param("coolingId"), *req.Temperature)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, outcome)
}

func (h *handlers) completeCoolingLog(c *gin.Context) {
	l, err := h.svc.CompleteCoolingLog(c.Request.Context(), c.Param("coolingId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *handlers) listChecklists(c *gin.Context) {
	on, err := parseTimeQuery(c, "date")
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.ListChecklists(c.Request.Context(), core.ChecklistFilter{
		Type: domain.ChecklistType(c.Query("type")),
		On:   on,
	}))
}

func (h *handlers) getChecklist(c *gin.Context) {
	cl, err := h.svc.GetChecklist(c.Request.Context(), c.Param("checklistId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (h *handlers) addChecklist(c *gin.Context) {
	var req core.ChecklistInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cl, err := h.svc.AddChecklist(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

type checklistItemRequest struct {
	Text string `json:"text"`
}

func (h *handlers) addChecklistItem(c *gin.Context) {
	var req checklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cl, err := h.svc.AddChecklistItem(c.Request.Context(), c.Param("checklistId"), req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

func (h *handlers) updateChecklistItem(c *gin.Context) {
	var req core.ChecklistItemUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Completed {
		req.CompletedBy = author(c, req.CompletedBy)
	}
	cl, err := h.svc.UpdateChecklistItem(c.Request.Context(), c.Param("checklistId"), c.Param("itemId"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (h *handlers) listSanitationTasks(c *gin.Context) {
	tasks, err := h.svc.ListSanitationTasks(c.Request.Context(), core.SanitationDueFilter(c.Query("due")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *handlers) getSanitationTask(c *gin.Context) {
	task, err := h.svc.GetSanitationTask(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handlers) addSanitationTask(c *gin.Context) {
	var req domain.SanitationTask
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.svc.AddSanitationTask(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *handlers) updateSanitationTask(c *gin.Context) {
	var req domain.SanitationTask
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.ID = c.Param("taskId")
	task, err := h.svc.UpdateSanitationTask(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handlers) deleteSanitationTask(c *gin.Context) {
	if err := h.svc.DeleteSanitationTask(c.Request.Context(), c.Param("taskId")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) completeSanitationTask(c *gin.Context) {
	var req core.SanitationCompletion
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	req.CompletedBy = author(c, req.CompletedBy)
	log, err := h.svc.CompleteSanitationTask(c.Request.Context(), c.Param("taskId"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

func (h *handlers) listSanitationLogs(c *gin.Context) {
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
	c.JSON(http.StatusOK, h.svc.ListSanitationLogs(c.Request.Context(), core.SanitationLogFilter{
		TaskID: c.Query("taskId"),
		Since:  since,
		Until:  until,
	}))
}

func (h *handlers) dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Dashboard(c.Request.Context()))
}
