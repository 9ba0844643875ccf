package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"farm-market-api/internal/domain"
	"farm-market-api/internal/service"
	resp "farm-market-api/internal/transport/http/response"
)

type MarketHandler struct {
	svc *service.MarketService
}

func NewMarketHandler(svc *service.MarketService) *MarketHandler {
	return &MarketHandler{svc: svc}
}

// POST /market  (multipart, Bearer)
func (h *MarketHandler) Create(c *gin.Context) {
	fields := formFields(c)
	img, err := formImage(c)
	if err != nil {
		failUpload(c, err)
		return
	}
	post, err := h.svc.Create(c.Request.Context(), principal(c), fields, img)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Market post created", "post": post})
}

// GET /market  (public)
func (h *MarketHandler) List(c *gin.Context) {
	posts, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if posts == nil {
		posts = []domain.MarketPost{}
	}
	resp.JSON(c, http.StatusOK, posts)
}

// GET /market/:id  (public)
func (h *MarketHandler) Get(c *gin.Context) {
	post, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.JSON(c, http.StatusOK, post)
}

// PUT /market/:id  (multipart, Bearer)
// 不带新文件时图片取表单里的 existingImage；两者都缺就清空旧图。
func (h *MarketHandler) Update(c *gin.Context) {
	fields := formFields(c)
	fields.Image = c.PostForm("existingImage")
	img, err := formImage(c)
	if err != nil {
		failUpload(c, err)
		return
	}
	post, err := h.svc.Update(c.Request.Context(), principal(c), c.Param("id"), fields, img)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post updated", "post": post})
}

// DELETE /market/:id  (Bearer)
func (h *MarketHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	resp.Message(c, http.StatusOK, "Post deleted successfully")
}

func (h *MarketHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		resp.Message(c, http.StatusNotFound, "Post not found")
		return
	}
	resp.Fail(c, err)
}

func failUpload(c *gin.Context, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		resp.Message(c, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	resp.Message(c, http.StatusBadRequest, "invalid image upload")
}

func principal(c *gin.Context) service.Principal {
	return service.Principal{ID: c.GetString("userId"), Role: c.GetString("role")}
}

// formFields 读 multipart 文本字段；price 宽松转型，转不动就 0
func formFields(c *gin.Context) domain.MarketFields {
	price, _ := strconv.ParseFloat(c.PostForm("price"), 64)
	return domain.MarketFields{
		ProductName:       c.PostForm("productName"),
		Description:       c.PostForm("description"),
		Price:             price,
		Location:          c.PostForm("location"),
		AvailableQuantity: c.PostForm("availableQuantity"),
		ContactNumber:     c.PostForm("contactNumber"),
	}
}

// formImage 把上传文件整个读进内存，交给对象存储层做流式上传
func formImage(c *gin.Context) (*service.ImageUpload, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, err
		}
		// 缺 image 字段或整个请求没有文件段，都当作未带图
		return nil, nil
	}
	data, ct, err := readAll(fh)
	if err != nil {
		return nil, err
	}
	return &service.ImageUpload{Filename: fh.Filename, ContentType: ct, Data: data}, nil
}

func readAll(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return data, ct, nil
}
