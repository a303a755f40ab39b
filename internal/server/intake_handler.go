package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/render"
)

// DocumentSealer is the slice of document.Service the handler needs.
// It keeps the sealing pipeline swappable in tests.
type DocumentSealer interface {
	Render(ctx context.Context, submissionID uuid.UUID) (*intake.Submission, error)
}

// IntakeHandler serves the patient-facing form pages and the
// submission lifecycle.
type IntakeHandler struct {
	intake  *intake.Service
	forms   *forms.Service
	sealer  DocumentSealer
	preview *render.Preview
	cache   *render.Cache
}

func NewIntakeHandler(intakeSvc *intake.Service, formSvc *forms.Service, preview *render.Preview, sealer DocumentSealer, cache *render.Cache) *IntakeHandler {
	return &IntakeHandler{
		intake:  intakeSvc,
		forms:   formSvc,
		preview: preview,
		sealer:  sealer,
		cache:   cache,
	}
}

func (h *IntakeHandler) RegisterRoutes(api *echo.Group, pages *echo.Group) {
	pages.GET("/intake/:category", h.FormPage)

	api.POST("/submissions", h.Submit)
	api.GET("/submissions/:id", h.Submission)
	api.POST("/submissions/:id/document", h.SealDocument)
	api.GET("/submissions/:id/signatures", h.Signatures)

	api.GET("/patients/:id", h.Patient)
	api.GET("/patients/:id/submissions", h.PatientSubmissions)
	api.GET("/patients/:id/signatures", h.PatientSignatures)
}

// FormPage renders the active form for a category as a standalone page.
func (h *IntakeHandler) FormPage(c echo.Context) error {
	ctx := c.Request().Context()
	category := forms.ParseCategory(c.Param("category"))
	def, err := h.forms.ActiveForCategory(ctx, category)
	if err != nil {
		return formsError(err)
	}
	lang := i18n.English
	if raw := c.QueryParam("lang"); raw != "" {
		if lang, err = i18n.ParseLanguage(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	if doc, ok := h.cache.Get(def.ID, lang); ok {
		return c.HTML(http.StatusOK, doc)
	}
	bundle, err := h.forms.BundleOrEmpty(ctx, def.ID, lang)
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
	h.cache.Put(def.ID, lang, doc)
	return c.HTML(http.StatusOK, doc)
}

type submitResponse struct {
	SubmissionID   string              `json:"submissionId"`
	PatientID      string              `json:"patientId"`
	PatientCreated bool                `json:"patientCreated"`
	Status         intake.Status       `json:"status"`
	Signatures     int                 `json:"signatures"`
	Errors         map[string][]string `json:"errors,omitempty"`
	GlobalErrors   []string            `json:"globalErrors,omitempty"`
}

func (h *IntakeHandler) Submit(c echo.Context) error {
	var req intake.SubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	receipt, err := h.intake.Submit(c.Request().Context(), req)
	if err != nil {
		return intakeError(err)
	}
	if receipt.Validation != nil && !receipt.Validation.Valid() {
		return c.JSON(http.StatusUnprocessableEntity, submitResponse{
			Errors:       receipt.Validation.FieldErrors(),
			GlobalErrors: receipt.Validation.GlobalErrors(),
		})
	}
	return c.JSON(http.StatusCreated, submitResponse{
		SubmissionID:   receipt.Submission.ID.String(),
		PatientID:      receipt.Patient.ID.String(),
		PatientCreated: receipt.PatientCreated,
		Status:         receipt.Submission.Status,
		Signatures:     len(receipt.Signatures),
	})
}

func (h *IntakeHandler) Submission(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sub, err := h.intake.Submission(c.Request().Context(), id)
	if err != nil {
		return intakeError(err)
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *IntakeHandler) SealDocument(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sub, err := h.sealer.Render(c.Request().Context(), id)
	if err != nil {
		return intakeError(err)
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *IntakeHandler) Signatures(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sigs, err := h.intake.SubmissionSignatures(c.Request().Context(), id)
	if err != nil {
		return intakeError(err)
	}
	return c.JSON(http.StatusOK, sigs)
}

func (h *IntakeHandler) Patient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	patient, err := h.intake.Patient(c.Request().Context(), id)
	if err != nil {
		return intakeError(err)
	}
	return c.JSON(http.StatusOK, patient)
}

func (h *IntakeHandler) PatientSubmissions(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	subs, err := h.intake.PatientSubmissions(c.Request().Context(), id)
	if err != nil {
		return intakeError(err)
	}
	return c.JSON(http.StatusOK, subs)
}

// PatientSignatures lists signatures within a window around a reference
// time, defaulting to now.
func (h *IntakeHandler) PatientSignatures(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	at := time.Now()
	if raw := c.QueryParam("at"); raw != "" {
		if at, err = time.Parse(time.RFC3339, raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid at timestamp, want RFC 3339")
		}
	}
	window := 15 * time.Minute
	if raw := c.QueryParam("window"); raw != "" {
		if window, err = time.ParseDuration(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid window duration")
		}
	}
	sigs, err := h.intake.SignaturesAround(c.Request().Context(), id, at, window)
	if err != nil {
		return intakeError(err)
	}
	return c.JSON(http.StatusOK, sigs)
}
