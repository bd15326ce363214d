package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"task-manager/internal/apperr"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

func (s *Server) handleListTasks(c *gin.Context) {
	user := mustUser(c)

	filter := repository.TaskFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			fail(c, apperr.Validationf("category_id must be a number"))
			return
		}
		categoryID := uint(id)
		filter.CategoryID = &categoryID
	}

	tasks, err := s.tasks.List(c.Request.Context(), user.ID, filter)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	user := mustUser(c)

	var input service.TaskCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validationf("request body must be valid JSON"))
		return
	}

	task, err := s.tasks.Create(c.Request.Context(), user.ID, input)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "task created",
		"task":    task,
	})
}

func (s *Server) handleGetTask(c *gin.Context) {
	user := mustUser(c)
	taskID, ok := idParam(c)
	if !ok {
		fail(c, apperr.NotFound("task not found"))
		return
	}

	task, err := s.tasks.Get(c.Request.Context(), user.ID, taskID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	user := mustUser(c)
	taskID, ok := idParam(c)
	if !ok {
		fail(c, apperr.NotFound("task not found"))
		return
	}

	var input service.TaskUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validationf("request body must be valid JSON"))
		return
	}

	task, err := s.tasks.Update(c.Request.Context(), user.ID, taskID, input)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "task updated",
		"task":    task,
	})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	user := mustUser(c)
	taskID, ok := idParam(c)
	if !ok {
		fail(c, apperr.NotFound("task not found"))
		return
	}

	if err := s.tasks.Delete(c.Request.Context(), user.ID, taskID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

func (s *Server) handleTaskStats(c *gin.Context) {
	user := mustUser(c)

	stats, err := s.tasks.Stats(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// idParam parses the :id path segment. A non-numeric id behaves like a
// missing resource, matching the routing of the rest of the API.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
