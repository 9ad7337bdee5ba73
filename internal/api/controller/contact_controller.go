package controller

import (
	"context"
	"net/http"

	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/model"
	"github.com/bassista/go_sole/internal/resource"
	"github.com/gin-gonic/gin"
)

const contactComponent = "contact-controller"

// ContactController serves the contact inbox. With a sample source set the
// list is generated locally instead of read from the API.
type ContactController struct {
	api    *resource.ContactAPI
	m      Mutator
	sample func(context.Context) ([]model.Contact, error)
}

func NewContactController(api *resource.ContactAPI, m Mutator, sample func(context.Context) ([]model.Contact, error)) *ContactController {
	return &ContactController{api: api, m: m, sample: sample}
}

// Register mounts the contact routes.
func (cc *ContactController) Register(rg *gin.RouterGroup) {
	rg.GET("/contacts", cc.List)
	rg.PUT("/contacts/:id/handled", cc.MarkHandled)
	rg.DELETE("/contacts/:id", cc.Delete)
}

func (cc *ContactController) List(c *gin.Context) {
	fetch := cc.api.List
	if cc.sample != nil {
		fetch = cc.sample
	}
	serveQuery(c, cc.m.Store, contactComponent, cache.Tag(resource.TagContacts), fetch)
}

func (cc *ContactController) MarkHandled(c *gin.Context) {
	id := c.Param("id")
	runMutation(c, cc.m, contactComponent, http.StatusOK, func(ctx context.Context) (model.Contact, error) {
		return cc.api.MarkHandled(ctx, id)
	}, cache.Tag(resource.TagContacts))
}

func (cc *ContactController) Delete(c *gin.Context) {
	id := c.Param("id")
	runMutation(c, cc.m, contactComponent, http.StatusNoContent, discard(func(ctx context.Context) error {
		return cc.api.Delete(ctx, id)
	}), cache.Tag(resource.TagContacts))
}
