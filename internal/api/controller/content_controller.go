package controller

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bassista/go_sole/internal/apperr"
	"github.com/bassista/go_sole/internal/client"
	"github.com/bassista/go_sole/internal/model"
	"github.com/bassista/go_sole/internal/resource"
	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20

// NewBannerController serves /api/admin/banners.
func NewBannerController(api *resource.BannerAPI, m Mutator) *CrudController[model.Banner, resource.BannerInput] {
	return &CrudController[model.Banner, resource.BannerInput]{
		Service:   api,
		Mutator:   m,
		Tag:       resource.TagBanners,
		Component: "banner-controller",
		Bind:      bindBanner,
	}
}

// NewNewsController serves /api/admin/news.
func NewNewsController(api *resource.NewsAPI, m Mutator) *CrudController[model.News, resource.NewsInput] {
	return &CrudController[model.News, resource.NewsInput]{
		Service:   api,
		Mutator:   m,
		Tag:       resource.TagNews,
		Component: "news-controller",
		Bind:      bindNews,
	}
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func bindBanner(c *gin.Context) (resource.BannerInput, error) {
	var in resource.BannerInput
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&in); err != nil {
			return in, apperr.ValidationErr("invalid payload", nil)
		}
		return in, nil
	}

	in.Title = c.PostForm("title")
	in.Subtitle = c.PostForm("subtitle")
	in.Link = c.PostForm("link")
	if raw := c.PostForm("position"); raw != "" {
		pos, err := strconv.Atoi(raw)
		if err != nil {
			return in, apperr.ValidationErr("position must be a number", map[string]string{"position": "number"})
		}
		in.Position = pos
	}
	if raw := c.PostForm("status"); raw != "" {
		status, err := model.DecodeBannerStatus(raw)
		if err != nil {
			return in, apperr.ValidationErr(err.Error(), map[string]string{"status": "bool"})
		}
		in.Status = status
	}
	img, err := formImage(c)
	if err != nil {
		return in, err
	}
	in.Image = img
	return in, nil
}

func bindNews(c *gin.Context) (resource.NewsInput, error) {
	var in resource.NewsInput
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&in); err != nil {
			return in, apperr.ValidationErr("invalid payload", nil)
		}
		return in, nil
	}

	in.Title = c.PostForm("title")
	in.Summary = c.PostForm("summary")
	in.Content = c.PostForm("content")
	in.Author = c.PostForm("author")
	in.Published, _ = strconv.ParseBool(c.PostForm("published"))
	img, err := formImage(c)
	if err != nil {
		return in, err
	}
	in.Image = img
	return in, nil
}

// formImage reads the optional "image" upload.
func formImage(c *gin.Context) (*client.File, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.ValidationErr("invalid image upload", map[string]string{"image": "file"})
	}
	if fh.Size > maxImageSize {
		return nil, apperr.ValidationErr("image is larger than 5 MB", map[string]string{"image": "max"})
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperr.ValidationErr("invalid image upload", map[string]string{"image": "file"})
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperr.ValidationErr("invalid image upload", map[string]string{"image": "file"})
	}
	return &client.File{
		Field:       "image",
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
