package resource

import (
	"context"
	"strconv"

	"github.com/bassista/go_sole/internal/client"
	"github.com/bassista/go_sole/internal/model"
)

var (
	bannersEndpoint = client.Endpoint{Path: "banners", Envelope: client.EnvelopeNone}
	newsEndpoint    = client.Endpoint{Path: "news", Envelope: client.EnvelopeData}
)

// BannerInput is the banner form. With an image it is sent as multipart
// and the status travels as "true"/"false".
type BannerInput struct {
	Title    string       `json:"title" validate:"required,max=120"`
	Subtitle string       `json:"subtitle,omitempty"`
	Link     string       `json:"link,omitempty" validate:"omitempty,uri"`
	Position int          `json:"position" validate:"gte=0"`
	Status   bool         `json:"status"`
	Image    *client.File `json:"-"`
}

func (in BannerInput) FormFields() map[string]string {
	return map[string]string{
		"title":    in.Title,
		"subtitle": in.Subtitle,
		"link":     in.Link,
		"position": strconv.Itoa(in.Position),
		"status":   model.EncodeBannerStatus(in.Status),
	}
}

func (in BannerInput) FormFiles() []client.File {
	if in.Image == nil {
		return nil
	}
	f := *in.Image
	f.Field = "image"
	return []client.File{f}
}

// NewsInput is the blog post form.
type NewsInput struct {
	Title     string       `json:"title" validate:"required,max=200"`
	Summary   string       `json:"summary,omitempty"`
	Content   string       `json:"content" validate:"required"`
	Author    string       `json:"author,omitempty"`
	Published bool         `json:"published"`
	Image     *client.File `json:"-"`
}

func (in NewsInput) FormFields() map[string]string {
	return map[string]string{
		"title":     in.Title,
		"summary":   in.Summary,
		"content":   in.Content,
		"author":    in.Author,
		"published": strconv.FormatBool(in.Published),
	}
}

func (in NewsInput) FormFiles() []client.File {
	if in.Image == nil {
		return nil
	}
	f := *in.Image
	f.Field = "image"
	return []client.File{f}
}

// BannerAPI covers /banners.
type BannerAPI struct{ c *client.Client }

func (a *BannerAPI) List(ctx context.Context) ([]model.Banner, error) {
	return client.FetchList[model.Banner](ctx, a.c, bannersEndpoint, nil)
}

func (a *BannerAPI) Create(ctx context.Context, in BannerInput) (model.Banner, error) {
	return client.Create[model.Banner](ctx, a.c, bannersEndpoint, in)
}

func (a *BannerAPI) Update(ctx context.Context, id string, in BannerInput) (model.Banner, error) {
	return client.Update[model.Banner](ctx, a.c, bannersEndpoint, id, in)
}

func (a *BannerAPI) Delete(ctx context.Context, id string) error {
	return client.Delete(ctx, a.c, bannersEndpoint, id)
}

// NewsAPI covers /news.
type NewsAPI struct{ c *client.Client }

func (a *NewsAPI) List(ctx context.Context) ([]model.News, error) {
	posts, err := client.FetchList[model.News](ctx, a.c, newsEndpoint, nil)
	for i := range posts {
		posts[i].ApplyDefaults()
	}
	return posts, err
}

func (a *NewsAPI) Get(ctx context.Context, id string) (model.News, error) {
	n, err := client.FetchByID[model.News](ctx, a.c, newsEndpoint, id)
	if err == nil {
		n.ApplyDefaults()
	}
	return n, err
}

func (a *NewsAPI) Create(ctx context.Context, in NewsInput) (model.News, error) {
	return client.Create[model.News](ctx, a.c, newsEndpoint, in)
}

func (a *NewsAPI) Update(ctx context.Context, id string, in NewsInput) (model.News, error) {
	return client.Update[model.News](ctx, a.c, newsEndpoint, id, in)
}

func (a *NewsAPI) Delete(ctx context.Context, id string) error {
	return client.Delete(ctx, a.c, newsEndpoint, id)
}
