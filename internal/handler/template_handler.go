package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"physiotrack/backend/internal/middleware"
	"physiotrack/backend/internal/service"
)

type TemplateHandler struct {
	templateService *service.TemplateService
}

type createTemplateRequest struct {
	Name      string                  `json:"name"`
	Exercises []service.ExerciseInput `json:"exercises"`
}

func NewTemplateHandler(templateService *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

func (h *TemplateHandler) List(c *gin.Context) {
	templates, apiErr := h.templateService.List(c.Request.Context(), middleware.UserID(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	tmpl, apiErr := h.templateService.Create(c.Request.Context(), middleware.UserID(c), req.Name, req.Exercises)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": tmpl})
}

func (h *TemplateHandler) Get(c *gin.Context) {
	tmpl, apiErr := h.templateService.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tmpl})
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	if apiErr := h.templateService.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}
