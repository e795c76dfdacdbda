package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/practice_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/practice_ledger_app/internal/dto"
)

type groupHandler struct {
	groups portssvc.GroupSvc
}

func registerGroupRoutes(rg *gin.RouterGroup, gs portssvc.GroupSvc) {
	h := &groupHandler{groups: gs}

	groups := rg.Group("/groups")
	{
		groups.POST("", h.createGroup)
		groups.GET("", h.listGroups)
		groups.GET("/:groupID", h.getGroup)
		groups.PUT("/:groupID", h.updateGroup)
	}
}

func (h *groupHandler) createGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}
	group, err := h.groups.CreateGroup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "create group")
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *groupHandler) listGroups(c *gin.Context) {
	var params dto.ListGroupsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "query parameters")
		return
	}
	groups, err := h.groups.ListGroups(c.Request.Context(), params.IncludeArchived)
	if err != nil {
		respondError(c, err, "list groups")
		return
	}
	c.JSON(http.StatusOK, dto.ListGroupsResponse{Groups: groups})
}

func (h *groupHandler) getGroup(c *gin.Context) {
	group, err := h.groups.GetGroup(c.Request.Context(), c.Param("groupID"))
	if err != nil {
		respondError(c, err, "retrieve group")
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *groupHandler) updateGroup(c *gin.Context) {
	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}
	group, err := h.groups.UpdateGroup(c.Request.Context(), c.Param("groupID"), req)
	if err != nil {
		respondError(c, err, "update group")
		return
	}
	c.JSON(http.StatusOK, group)
}
