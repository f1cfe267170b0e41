package controller

import (
	"fmt"
	"messenger_backend/internal/model"
	"messenger_backend/internal/service"
	"messenger_backend/internal/util"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// UserController 处理用户资料与好友关系相关的HTTP请求
type UserController struct {
	UserService       *service.UserService
	FriendshipService *service.FriendshipService
	StorageService    *service.StorageService
}

// SendFriendRequestRequest 发送好友申请请求
type SendFriendRequestRequest struct {
	ReceiverID uint   `json:"receiverId" binding:"required" example:"2"`
	Message    string `json:"message" example:"我是王小明"`
}

func NewUserController(userService *service.UserService, friendshipService *service.FriendshipService, storageService *service.StorageService) *UserController {
	return &UserController{
		UserService:       userService,
		FriendshipService: friendshipService,
		StorageService:    storageService,
	}
}

// GetProfile godoc
// @Summary 获取个人资料
// @Description 返回当前用户的资料及好友 ID 列表
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.Profile} "成功"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/users/profile [get]
func (ctrl *UserController) GetProfile(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c, "access denied")
		return
	}

	profile, err := ctrl.UserService.GetProfile(claims.UserID)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, profile)
}

// UploadProfilePicture godoc
// @Summary 上传头像
// @Description 上传图片并无条件覆盖当前用户的头像引用
// @Tags 用户
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "头像图片"
// @Success 200 {object} util.Response{data=service.Profile} "成功"
// @Failure 400 {object} util.Response "文件缺失或类型不支持"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/users/profile-picture [post]
func (ctrl *UserController) UploadProfilePicture(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c, "access denied")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		util.BadRequest(c, "文件不能为空")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{"image/"})
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	// MIME 嗅探消耗了前512字节，重新打开
	src.Close()
	src, err = file.Open()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer src.Close()

	filename := fmt.Sprintf("avatars/%d-%s-%s",
		claims.UserID,
		time.Now().Format("20060102150405"),
		strings.ReplaceAll(file.Filename, " ", "-"))

	url, err := ctrl.StorageService.Upload(c.Request.Context(), filename, src, file.Size, mimeType)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	profile, err := ctrl.UserService.UpdateAvatar(claims.UserID, url)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, profile)
}

// SendFriendRequest godoc
// @Summary 发送好友申请
// @Description 向指定用户发起好友申请
// @Tags 好友
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   request body SendFriendRequestRequest true "好友申请"
// @Success 201 {object} util.Response{data=model.FriendRequest} "已创建"
// @Failure 400 {object} util.Response "自我申请或重复申请"
// @Failure 404 {object} util.Response "目标用户不存在"
// @Router /api/users/friend-request [post]
func (ctrl *UserController) SendFriendRequest(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c, "access denied")
		return
	}

	var req SendFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	fr, err := ctrl.FriendshipService.SendFriendRequest(claims.UserID, req.ReceiverID, req.Message)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Created(c, fr)
}

// GetPendingRequests godoc
// @Summary 待处理好友申请列表
// @Description 返回发给当前用户且未处理的申请，附带申请者公开信息
// @Tags 好友
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.FriendRequestInfo} "成功"
// @Router /api/users/friend-requests [get]
func (ctrl *UserController) GetPendingRequests(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c, "access denied")
		return
	}

	reqs, err := ctrl.FriendshipService.GetPendingRequests(claims.UserID)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	if reqs == nil {
		reqs = []model.FriendRequestInfo{}
	}
	util.Success(c, reqs)
}

// AcceptFriendRequest godoc
// @Summary 接受好友申请
// @Description 只有申请的接收者可以接受；重复接受同一申请是无操作
// @Tags 好友
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "申请ID"
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "非申请接收者"
// @Failure 404 {object} util.Response "申请不存在"
// @Router /api/users/friend-request/{id}/accept [post]
func (ctrl *UserController) AcceptFriendRequest(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c, "access denied")
		return
	}

	if err := ctrl.FriendshipService.AcceptFriendRequest(c.Param("id"), claims.UserID); err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, nil)
}

// DeclineFriendRequest godoc
// @Summary 拒绝好友申请
// @Description 只有申请的接收者可以拒绝
// @Tags 好友
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "申请ID"
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "非申请接收者"
// @Failure 404 {object} util.Response "申请不存在"
// @Router /api/users/friend-request/{id}/decline [post]
func (ctrl *UserController) DeclineFriendRequest(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c, "access denied")
		return
	}

	if err := ctrl.FriendshipService.DeclineFriendRequest(c.Param("id"), claims.UserID); err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, nil)
}
