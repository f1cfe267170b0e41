package controller

import (
	"fmt"
	"messenger_backend/internal/config"
	"messenger_backend/internal/model"
	"messenger_backend/internal/service"
	"messenger_backend/internal/util"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// MessageController 处理消息持久化、会话查询与广播通道接入
type MessageController struct {
	MessageService *service.MessageService
	Hub            *service.RelayHub
	StorageService *service.StorageService
	Config         *config.Config
}

// SendMessageRequest 发送消息请求，content 与 mediaUrl 至少一个非空
type SendMessageRequest struct {
	ReceiverID uint   `json:"receiverId" binding:"required" example:"2"`
	Content    string `json:"content" example:"你好"`
	MediaURL   string `json:"mediaUrl" example:"/uploads/media/1-xxx.png"`
}

func NewMessageController(messageService *service.MessageService, hub *service.RelayHub, storageService *service.StorageService, cfg *config.Config) *MessageController {
	return &MessageController{
		MessageService: messageService,
		Hub:            hub,
		StorageService: storageService,
		Config:         cfg,
	}
}

// HandleWS godoc
// @Summary 接入广播通道
// @Description 建立 WebSocket 连接；此后发布的每个事件都会原样转发给所有在线连接（含发布者），不按接收者过滤
// @Tags 消息
// @Security ApiKeyAuth
// @Param   token query string true "JWT Token"
// @Success 101 {string} string "Switching Protocols"
// @Router /api/messages/ws [get]
func (ctrl *MessageController) HandleWS(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c, "access denied")
		return
	}
	service.ServeRelay(ctrl.Hub, c.Writer, c.Request, claims.UserID)
}

// SendMessage godoc
// @Summary 发送消息
// @Description 持久化一条定向消息，发送者取自令牌，时间戳由服务端生成；与广播通道相互独立
// @Tags 消息
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   request body SendMessageRequest true "消息内容"
// @Success 201 {object} util.Response "已创建"
// @Failure 400 {object} util.Response "内容与媒体均为空"
// @Failure 404 {object} util.Response "接收者不存在"
// @Router /api/messages [post]
func (ctrl *MessageController) SendMessage(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c, "access denied")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	if _, err := ctrl.MessageService.SendMessage(claims.UserID, req.ReceiverID, req.Content, req.MediaURL); err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Created(c, nil)
}

// GetConversation godoc
// @Summary 获取会话历史
// @Description 返回当前用户与指定用户之间的全部消息，按创建时间升序，附带双方公开信息
// @Tags 消息
// @Produce  json
// @Security ApiKeyAuth
// @Param   otherUserId path int true "对方用户ID"
// @Success 200 {object} util.Response{data=[]model.DirectMessageInfo} "成功"
// @Router /api/messages/{otherUserId} [get]
func (ctrl *MessageController) GetConversation(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c, "access denied")
		return
	}

	otherID := util.MustParseUint(c.Param("otherUserId"))
	if otherID == 0 {
		util.BadRequest(c, "无效的用户ID")
		return
	}

	msgs, err := ctrl.MessageService.GetConversation(claims.UserID, otherID)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	if msgs == nil {
		msgs = []model.DirectMessageInfo{}
	}
	util.Success(c, msgs)
}

// UploadMedia godoc
// @Summary 上传消息媒体
// @Description 上传图片或视频到 blob 存储，返回可作为消息 mediaUrl 的引用；视频附带探测信息和缩略图
// @Tags 消息
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "媒体文件"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "文件缺失或类型不支持"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/messages/media [post]
func (ctrl *MessageController) UploadMedia(c *gin.Context) {
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
	mimeType, err := util.ValidateMimeType(src, []string{"image/", "video/", "audio/"})
	src.Close()
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	filename := fmt.Sprintf("media/%d-%s-%s",
		claims.UserID,
		time.Now().Format("20060102150405"),
		strings.ReplaceAll(file.Filename, " ", "-"))

	src, err = file.Open()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer src.Close()

	url, err := ctrl.StorageService.Upload(c.Request.Context(), filename, src, file.Size, mimeType)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	resp := gin.H{"url": url, "mimeType": mimeType}

	// 视频走本地存储时附带元信息和首帧缩略图
	if util.IsVideo(mimeType) && ctrl.Config.Storage.Type == "local" {
		videoPath := filepath.Join(ctrl.Config.Storage.LocalPath, filename)
		if info, err := util.ProbeVideo(videoPath); err == nil {
			resp["duration"] = info.Duration
			resp["width"] = info.Width
			resp["height"] = info.Height
		}

		thumbName := strings.TrimSuffix(filename, filepath.Ext(filename)) + "_thumb.jpg"
		thumbPath := filepath.Join(ctrl.Config.Storage.LocalPath, thumbName)
		if err := util.GenerateThumbnail(videoPath, thumbPath, "00:00:01"); err == nil {
			if _, err := os.Stat(thumbPath); err == nil {
				resp["thumbnailUrl"] = ctrl.StorageService.GetURL(thumbName)
			}
		}
	}

	util.Success(c, resp)
}
