package handlers

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"alfredoptarigan/ats-resume-analyzer/internal/models"
	"alfredoptarigan/ats-resume-analyzer/internal/services"
)

// OwnerResolver returns the owner scope for a request. It never widens access
// beyond the caller's own records.
type OwnerResolver func(c *fiber.Ctx) models.OwnerScope

// AnonymousScope is used by the stateless API: it only sees records created
// without a user.
func AnonymousScope(*fiber.Ctx) models.OwnerScope { return models.AnonymousOwner() }

// SessionOwner scopes to the user id stored by RequireLogin.
func SessionOwner(c *fiber.Ctx) models.OwnerScope {
	id, ok := c.Locals(userIDKey).(uint)
	if !ok || id == 0 {
		return models.AnonymousOwner()
	}
	return models.UserOwner(id)
}

type AnalysisHandler struct {
	analyzer services.Analyzer
	history  services.HistoryService
	catalog  *services.PromptCatalog
	owner    OwnerResolver
}

func NewAnalysisHandler(
	analyzer services.Analyzer,
	history services.HistoryService,
	catalog *services.PromptCatalog,
	owner OwnerResolver,
) *AnalysisHandler {
	if owner == nil {
		owner = AnonymousScope
	}
	return &AnalysisHandler{
		analyzer: analyzer,
		history:  history,
		catalog:  catalog,
		owner:    owner,
	}
}

// Register mounts the analysis routes on r, each behind the given middleware.
func (h *AnalysisHandler) Register(r fiber.Router, middleware ...fiber.Handler) {
	with := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, middleware...), handler)
	}

	r.Post("/analyze", with(h.HandleAnalyze)...)
	r.Get("/analyses", with(h.HandleList)...)
	r.Get("/analyses/similar", with(h.HandleSimilar)...)
	r.Get("/analyses/:id", with(h.HandleGet)...)
	r.Delete("/analyses/:id", with(h.HandleDelete)...)
	r.Get("/stats", with(h.HandleStats)...)
	r.Get("/prompts", with(h.HandlePrompts)...)
}

// HandleAnalyze handles POST /analyze
func (h *AnalysisHandler) HandleAnalyze(c *fiber.Ctx) error {
	req := services.SubmissionRequest{
		JobDescription: c.FormValue("job_description"),
		AnalysisType:   c.FormValue("analysis_type"),
		OwnerID:        h.owner(c).UserID(),
	}

	fileHeader, err := c.FormFile("resume_file")
	if err != nil && !errors.Is(err, fasthttp.ErrMissingFile) && !errors.Is(err, fasthttp.ErrNoMultipartForm) {
		return failure(c, fiber.StatusBadRequest, "failed to parse multipart form")
	}
	if fileHeader != nil {
		req.Document = &services.UploadedDocument{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			Open: func() (io.ReadCloser, error) {
				f, err := fileHeader.Open()
				if err != nil {
					return nil, err
				}
				return f, nil
			},
		}
	}

	result, err := h.analyzer.Submit(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.AnalyzeResponse{
		Success: true,
		Result:  result.Text,
	})
}

// HandleList handles GET /analyses
func (h *AnalysisHandler) HandleList(c *fiber.Ctx) error {
	analyses, err := h.history.List(c.UserContext(), c.QueryInt("limit", 0), h.owner(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.AnalysisListResponse{
		Success:  true,
		Analyses: analyses,
	})
}

// HandleSimilar handles GET /analyses/similar
func (h *AnalysisHandler) HandleSimilar(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return failure(c, fiber.StatusBadRequest, "Query parameter q is required")
	}

	analyses, err := h.history.Similar(c.UserContext(), query, c.QueryInt("limit", 5), h.owner(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.AnalysisListResponse{
		Success:  true,
		Analyses: analyses,
	})
}

// HandleGet handles GET /analyses/:id
func (h *AnalysisHandler) HandleGet(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return failure(c, fiber.StatusBadRequest, "Invalid analysis ID format")
	}

	analysis, err := h.history.Get(c.UserContext(), uint(id), h.owner(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.AnalysisResponse{
		Success:  true,
		Analysis: analysis,
	})
}

// HandleDelete handles DELETE /analyses/:id
func (h *AnalysisHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return failure(c, fiber.StatusBadRequest, "Invalid analysis ID format")
	}

	if err := h.history.Delete(c.UserContext(), uint(id), h.owner(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Analysis deleted",
	})
}

// HandleStats handles GET /stats
func (h *AnalysisHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.history.Stats(c.UserContext(), h.owner(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.StatsResponse{
		Success: true,
		Stats:   stats,
	})
}

// HandlePrompts handles GET /prompts
func (h *AnalysisHandler) HandlePrompts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":        true,
		"analysis_types": h.catalog.Keys(),
	})
}
