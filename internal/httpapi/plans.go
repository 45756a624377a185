package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"haccpcore/internal/core"
	"haccpcore/pkg/domain"
)

func (h *handlers) listTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Templates())
}

func (h *handlers) getTemplate(c *gin.Context) {
	id := c.Param("id")
	for _, t := range h.svc.Templates() {
		if t.ID == id {
			c.JSON(http.StatusOK, t)
			return
		}
	}
	h.fail(c, domain.ErrNotFound{Entity: domain.EntityTemplate, ID: id})
}

func (h *handlers) listPlans(c *gin.Context) {
	active, _ := strconv.ParseBool(c.Query("active"))
	c.JSON(http.StatusOK, h.svc.ListPlans(c.Request.Context(), core.PlanFilter{ActiveOnly: active}))
}

func (h *handlers) getPlan(c *gin.Context) {
	plan, err := h.svc.GetPlan(c.Request.Context(), c.Param("planId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *handlers) createPlan(c *gin.Context) {
	var req domain.HACCPPlan
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.svc.CreatePlan(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

type fromTemplateRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
	Name       string `json:"name"`
}

func (h *handlers) createPlanFromTemplate(c *gin.Context) {
	var req fromTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.svc.CreatePlanFromTemplate(c.Request.Context(), req.TemplateID, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *handlers) updatePlan(c *gin.Context) {
	var req domain.HACCPPlan
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.ID = c.Param("planId")
	plan, err := h.svc.UpdatePlan(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *handlers) deletePlan(c *gin.Context) {
	if err := h.svc.DeletePlan(c.Request.Context(), c.Param("planId")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) planStatus(c *gin.Context) {
	status, err := h.svc.PlanStatus(c.Request.Context(), c.Param("planId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *handlers) addHazard(c *gin.Context) {
	var req domain.Hazard
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	hazard, err := h.svc.AddHazardToPlan(c.Request.Context(), c.Param("planId"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, hazard)
}

func (h *handlers) updateHazard(c *gin.Context) {
	var req domain.Hazard
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.ID = c.Param("hazardId")
	hazard, err := h.svc.UpdateHazard(c.Request.Context(), c.Param("planId"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, hazard)
}

func (h *handlers) deleteHazard(c *gin.Context) {
	if err := h.svc.DeleteHazard(c.Request.Context(), c.Param("planId"), c.Param("hazardId")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) addCCP(c *gin.Context) {
	var req domain.CriticalControlPoint
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ccp, err := h.svc.AddCCPToPlan(c.Request.Context(), c.Param("planId"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ccp)
}

func (h *handlers) updateCCP(c *gin.Context) {
	var req domain.CriticalControlPoint
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.ID = c.Param("ccpId")
	ccp, err := h.svc.UpdateCCP(c.Request.Context(), c.Param("planId"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ccp)
}

func (h *handlers) deleteCCP(c *gin.Context) {
	if err := h.svc.DeleteCCP(c.Request.Context(), c.Param("planId"), c.Param("ccpId")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
