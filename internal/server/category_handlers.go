package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager/internal/apperr"
	"task-manager/internal/service"
)

func (s *Server) handleListCategories(c *gin.Context) {
	user := mustUser(c)

	categories, err := s.categories.List(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	user := mustUser(c)

	var input service.CategoryCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validationf("request body must be valid JSON"))
		return
	}

	category, err := s.categories.Create(c.Request.Context(), user.ID, input)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "category created",
		"category": category,
	})
}

func (s *Server) handleUpdateCategory(c *gin.Context) {
	user := mustUser(c)
	categoryID, ok := idParam(c)
	if !ok {
		fail(c, apperr.NotFound("category not found"))
		return
	}

	var input service.CategoryUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validationf("request body must be valid JSON"))
		return
	}

	category, err := s.categories.Update(c.Request.Context(), user.ID, categoryID, input)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "category updated",
		"category": category,
	})
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	user := mustUser(c)
	categoryID, ok := idParam(c)
	if !ok {
		fail(c, apperr.NotFound("category not found"))
		return
	}

	if err := s.categories.Delete(c.Request.Context(), user.ID, categoryID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}

func (s *Server) handleCategoryTasks(c *gin.Context) {
	user := mustUser(c)
	categoryID, ok := idParam(c)
	if !ok {
		fail(c, apperr.NotFound("category not found"))
		return
	}

	category, tasks, err := s.categories.Tasks(c.Request.Context(), user.ID, categoryID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"tasks":    tasks,
	})
}
