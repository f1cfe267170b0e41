package controller

import (
	"errors"
	"messenger_backend/internal/model"
	"messenger_backend/internal/service"
	"messenger_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required" example:"王小明"`
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required,min=6" example:"secret123"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// Register godoc
// @Summary 注册
// @Description 创建新用户账号
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   request body RegisterRequest true "注册请求"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response "参数错误或邮箱已注册"
// @Router /api/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := ctrl.AuthService.Register(user); err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.BadRequest(c, err.Error())
			return
		}
		util.LogInternalError(c, err)
		return
	}

	util.Created(c, user.Public())
}

// Login godoc
// @Summary 登录
// @Description 验证邮箱密码并签发身份令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   request body LoginRequest true "登录请求"
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response "凭证无效"
// @Router /api/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	token, err := ctrl.AuthService.Login(req.Email, req.Password)
	if err != nil {
		util.Unauthorized(c, "invalid credentials")
		return
	}

	util.Success(c, gin.H{"token": token})
}
