// Package marketclient talks to the market REST surface the same way the
// mobile app's thunks do: multipart writes with a bearer token, public reads.
package marketclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"farm-market-api/internal/domain"
)

type Client struct {
	base  string
	token string
	hc    *http.Client
}

func New(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), token: token, hc: hc}
}

// Image 随表单提交的图片
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Fields 市场帖子的可编辑字段
type Fields struct {
	ProductName       string
	Description       string
	Price             float64
	Location          string
	AvailableQuantity string
	ContactNumber     string
}

type postEnvelope struct {
	Message string            `json:"message"`
	Post    domain.MarketPost `json:"post"`
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (c *Client) FetchPosts(ctx context.Context) ([]domain.MarketPost, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/market", nil)
	if err != nil {
		return nil, err
	}
	var posts []domain.MarketPost
	if err := c.do(req, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, f Fields, img *Image) (*domain.MarketPost, error) {
	body, ct, err := encodeForm(f, "", img)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/market", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", ct)
	var env postEnvelope
	if err := c.do(req, &env); err != nil {
		return nil, err
	}
	return &env.Post, nil
}

// UpdatePost existingImage 原样回传才能保住旧图，两者都不带时服务端会清空
func (c *Client) UpdatePost(ctx context.Context, id string, f Fields, existingImage string, img *Image) (*domain.MarketPost, error) {
	body, ct, err := encodeForm(f, existingImage, img)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.base+"/market/"+id, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", ct)
	var env postEnvelope
	if err := c.do(req, &env); err != nil {
		return nil, err
	}
	return &env.Post, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base+"/market/"+id, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode >= 400 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(b, &e)
		return &apiError{Status: res.StatusCode, Message: e.Message}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(b, out)
}

func encodeForm(f Fields, existingImage string, img *Image) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("productName", f.ProductName)
	_ = w.WriteField("description", f.Description)
	_ = w.WriteField("price", strconv.FormatFloat(f.Price, 'f', -1, 64))
	_ = w.WriteField("location", f.Location)
	_ = w.WriteField("availableQuantity", f.AvailableQuantity)
	_ = w.WriteField("contactNumber", f.ContactNumber)
	if existingImage != "" {
		_ = w.WriteField("existingImage", existingImage)
	}
	if img != nil {
		fw, err := w.CreateFormFile("image", img.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(img.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
