package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/layout"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/schema"
)

// FormsHandler exposes the back-office definition lifecycle.
type FormsHandler struct {
	forms    *forms.Service
	renderer *render.Renderer
	preview  *render.Preview
	cache    *render.Cache
}

func NewFormsHandler(formSvc *forms.Service, renderer *render.Renderer, preview *render.Preview, cache *render.Cache) *FormsHandler {
	return &FormsHandler{forms: formSvc, renderer: renderer, preview: preview, cache: cache}
}

func (h *FormsHandler) RegisterRoutes(api *echo.Group) {
	api.POST("/forms", h.CreateDraft)
	api.GET("/forms", h.List)
	api.GET("/forms/:id", h.Get)
	api.PUT("/forms/:id", h.UpdateDraft)
	api.DELETE("/forms/:id", h.DeleteDraft)

	api.POST("/forms/:id/publish", h.Publish)
	api.POST("/forms/:id/archive", h.Archive)
	api.POST("/forms/:id/activate", h.Activate)
	api.POST("/forms/:id/deactivate", h.Deactivate)
	api.POST("/forms/:id/default", h.SetDefault)
	api.POST("/forms/:id/versions", h.NewVersion)

	api.GET("/forms/:id/translations", h.Translations)
	api.PUT("/forms/:id/translations/:lang", h.PutTranslation)
	api.DELETE("/forms/:id/translations/:lang", h.DeleteTranslation)

	api.GET("/forms/:id/preview", h.Preview)
	api.GET("/forms/:id/problems", h.Problems)
}

func (h *FormsHandler) CreateDraft(c echo.Context) error {
	var file forms.DefinitionFile
	if err := c.Bind(&file); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	payload, err := file.CreateInput()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	def, err := h.forms.CreateDraft(c.Request().Context(), payload)
	if err != nil {
		return formsError(err)
	}
	bundles, err := file.Bundles()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	for lang, bundle := range bundles {
		if _, err := h.forms.AddTranslation(c.Request().Context(), def.ID, lang, bundle); err != nil {
			return formsError(err)
		}
	}
	return c.JSON(http.StatusCreated, def)
}

func (h *FormsHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	if status := c.QueryParam("status"); status != "" {
		items, err := h.forms.ByStatus(ctx, forms.Status(status))
		if err != nil {
			return formsError(err)
		}
		return c.JSON(http.StatusOK, items)
	}
	if category := c.QueryParam("category"); category != "" {
		items, err := h.forms.ByCategory(ctx, forms.ParseCategory(category))
		if err != nil {
			return formsError(err)
		}
		return c.JSON(http.StatusOK, items)
	}
	items, err := h.forms.AllPublished(ctx)
	if err != nil {
		return formsError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *FormsHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	def, err := h.forms.ByID(c.Request().Context(), id)
	if err != nil {
		return formsError(err)
	}
	return c.JSON(http.StatusOK, def)
}

type updateRequest struct {
	Name     string            `json:"name,omitempty"`
	Schema   *schema.Document  `json:"schema,omitempty"`
	Layout   *layout.Layout    `json:"layout,omitempty"`
	Mappings map[string]string `json:"mappings,omitempty"`
}

func (h *FormsHandler) UpdateDraft(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in := forms.UpdateInput{
		Name:     req.Name,
		Layout:   req.Layout,
		Mappings: req.Mappings,
	}
	if req.Schema != nil {
		in.Schema = *req.Schema
	}
	def, err := h.forms.UpdateDraft(c.Request().Context(), id, in)
	if err != nil {
		return formsError(err)
	}
	h.cache.Invalidate(id)
	return c.JSON(http.StatusOK, def)
}

func (h *FormsHandler) DeleteDraft(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.forms.DeleteDraft(c.Request().Context(), id); err != nil {
		return formsError(err)
	}
	h.cache.Invalidate(id)
	return c.NoContent(http.StatusNoContent)
}

type publishRequest struct {
	PublishedBy string `json:"publishedBy"`
	Activate    bool   `json:"activate"`
}

func (h *FormsHandler) Publish(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req publishRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	def, err := h.forms.Publish(c.Request().Context(), id, req.PublishedBy, req.Activate)
	if err != nil {
		return formsError(err)
	}
	h.cache.Invalidate(id)
	return c.JSON(http.StatusOK, def)
}

func (h *FormsHandler) Archive(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	def, err := h.forms.Archive(c.Request().Context(), id)
	if err != nil {
		return formsError(err)
	}
	h.cache.Invalidate(id)
	return c.JSON(http.StatusOK, def)
}

func (h *FormsHandler) Activate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	deactivate := c.QueryParam("exclusive") != "false"
	def, err := h.forms.Activate(c.Request().Context(), id, deactivate)
	if err != nil {
		return formsError(err)
	}
	return c.JSON(http.StatusOK, def)
}

func (h *FormsHandler) Deactivate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	def, err := h.forms.Deactivate(c.Request().Context(), id)
	if err != nil {
		return formsError(err)
	}
	return c.JSON(http.StatusOK, def)
}

func (h *FormsHandler) SetDefault(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	def, err := h.forms.SetDefault(c.Request().Context(), id)
	if err != nil {
		return formsError(err)
	}
	return c.JSON(http.StatusOK, def)
}

func (h *FormsHandler) NewVersion(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	def, err := h.forms.NewDraftVersion(c.Request().Context(), id)
	if err != nil {
		return formsError(err)
	}
	return c.JSON(http.StatusCreated, def)
}

func (h *FormsHandler) Translations(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	items, err := h.forms.Translations(c.Request().Context(), id)
	if err != nil {
		return formsError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *FormsHandler) PutTranslation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	lang, err := i18n.ParseLanguage(c.Param("lang"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var bundle i18n.Bundle
	if err := c.Bind(&bundle); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	tr, err := h.forms.AddTranslation(ctx, id, lang, bundle)
	var conflict *forms.ConflictError
	if errors.As(err, &conflict) {
		tr, err = h.forms.UpdateTranslation(ctx, id, lang, bundle)
	}
	if err != nil {
		return formsError(err)
	}
	h.cache.Invalidate(id)
	return c.JSON(http.StatusOK, tr)
}

func (h *FormsHandler) DeleteTranslation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	lang, err := i18n.ParseLanguage(c.Param("lang"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.forms.RemoveTranslation(c.Request().Context(), id, lang); err != nil {
		return formsError(err)
	}
	h.cache.Invalidate(id)
	return c.NoContent(http.StatusNoContent)
}

func (h *FormsHandler) Preview(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	def, err := h.forms.ByID(ctx, id)
	if err != nil {
		return formsError(err)
	}
	lang := i18n.English
	if raw := c.QueryParam("lang"); raw != "" {
		if lang, err = i18n.ParseLanguage(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	bundle, err := h.forms.BundleOrEmpty(ctx, id, lang)
	if err != nil {
		return formsError(err)
	}
	doc, err := h.preview.Document(render.Input{
		Definition: def,
		Language:   lang,
		Bundle:     bundle,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.HTML(http.StatusOK, doc)
}

// Problems runs the definition health check used before publishing.
func (h *FormsHandler) Problems(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	def, err := h.forms.ByID(c.Request().Context(), id)
	if err != nil {
		return formsError(err)
	}
	problems := h.renderer.CheckDefinition(def)
	return c.JSON(http.StatusOK, map[string]any{
		"formId":   def.ID,
		"problems": problems,
	})
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
