package controllers

import (
	"fmt"
	"net/http"

	"github.com/CUknot/social_backend/middleware"
	"github.com/CUknot/social_backend/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultGroupPageSize = 10

type GroupController struct {
	groups   *services.GroupService
	messages *services.MessageService
	log      logrus.FieldLogger
}

func NewGroupController(groups *services.GroupService, messages *services.MessageService, log logrus.FieldLogger) *GroupController {
	return &GroupController{groups: groups, messages: messages, log: log}
}

type CreateGroupInput struct {
	Name        string `json:"name" binding:"required,notblank,max=100" example:"Book club"`
	Description string `json:"description" example:"Monthly reads"`
	MemberIDs   []uint `json:"member_ids"`
}

// Create godoc
// @Summary Create a group
// @Description The creator becomes an admin member
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group body CreateGroupInput true "Group"
// @Success 201 {object} models.Group
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /api/groups/create [post]
func (gc *GroupController) Create(c *gin.Context) {
	var input CreateGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := gc.groups.Create(c.Request.Context(), middleware.CurrentUser(c), input.Name, input.Description, input.MemberIDs)
	if err != nil {
		respondError(c, gc.log, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// AddMembers godoc
// @Summary Add members to a group
// @Description Only the owner or an admin member may add members. Role defaults to member.
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group_id path int true "Group ID"
// @Param members body []services.MemberInput true "Members"
// @Success 200 {object} map[string]interface{} "Members added"
// @Failure 403 {object} map[string]string "Not authorized"
// @Failure 404 {object} map[string]string "Group not found"
// @Router /api/groups/{group_id}/members [post]
func (gc *GroupController) AddMembers(c *gin.Context) {
	groupID, ok := idParam(c, "group_id")
	if !ok {
		return
	}
	var input []services.MemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	added, err := gc.groups.AddMembers(c.Request.Context(), groupID, middleware.CurrentUser(c), input)
	if err != nil {
		respondError(c, gc.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d members added to the group.", added),
		"added":   added,
	})
}

// Messages godoc
// @Summary Group chat history
// @Description Messages in the order they were sent
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param group_id path int true "Group ID"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(50)
// @Success 200 {array} models.GroupMessage
// @Failure 403 {object} map[string]string "Not a group member"
// @Router /api/groups/{group_id}/messages [get]
func (gc *GroupController) Messages(c *gin.Context) {
	groupID, ok := idParam(c, "group_id")
	if !ok {
		return
	}
	page, ok := pageQuery(c, gc.log, services.DefaultPageSize)
	if !ok {
		return
	}

	messages, err := gc.messages.GroupHistory(c.Request.Context(), groupID, middleware.CurrentUser(c).ID, page)
	if err != nil {
		respondError(c, gc.log, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// MyGroups godoc
// @Summary Groups of the current user
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(10)
// @Success 200 {array} services.GroupSummary
// @Router /api/groups/my-groups [get]
func (gc *GroupController) MyGroups(c *gin.Context) {
	page, ok := pageQuery(c, gc.log, defaultGroupPageSize)
	if !ok {
		return
	}

	groups, err := gc.groups.MyGroups(c.Request.Context(), middleware.CurrentUser(c).ID, page)
	if err != nil {
		respondError(c, gc.log, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}
