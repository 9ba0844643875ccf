package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"farm-market-api/internal/service"
	resp "farm-market-api/internal/transport/http/response"
)

type AuthHandler struct {
	users *service.UserService
}

func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type registerIn struct {
	Username string     `json:"username" binding:"required"`
	Email    string     `json:"email" binding:"required,email"`
	Password string     `json:"password" binding:"required"`
	Gender   string     `json:"gender"`
	Address  string     `json:"address"`
	BOD      *time.Time `json:"bod"`
}

// POST /users/register
func (h *AuthHandler) Register(c *gin.Context) {
	var in registerIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Message(c, http.StatusBadRequest, err.Error())
		return
	}
	_, err := h.users.Register(service.RegisterInput{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		Gender:    in.Gender,
		Address:   in.Address,
		BirthDate: in.BOD,
	})
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Message(c, http.StatusCreated, "User registered successfully")
}

type loginIn struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Message(c, http.StatusBadRequest, err.Error())
		return
	}
	tok, u, err := h.users.Login(in.Email, in.Password)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok, "user": u})
}

// GET /users/me  (Bearer)
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.users.Me(c.GetString("userId"))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type profileIn struct {
	Username string     `json:"username"`
	Gender   string     `json:"gender"`
	Address  string     `json:"address"`
	BOD      *time.Time `json:"bod"`
	Profile  string     `json:"profile"`
}

// PUT /users/profile  (Bearer)
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var in profileIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Message(c, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.users.UpdateProfile(c.GetString("userId"), service.ProfileInput{
		Username:  in.Username,
		Gender:    in.Gender,
		Address:   in.Address,
		BirthDate: in.BOD,
		Profile:   in.Profile,
	})
	if err != nil {
		resp.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": u})
}
