package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/david/rfq-pilot/internal/ai"
	"github.com/david/rfq-pilot/internal/analyze"
	"github.com/david/rfq-pilot/internal/auth"
	"github.com/david/rfq-pilot/internal/checklist"
	"github.com/david/rfq-pilot/internal/config"
	"github.com/david/rfq-pilot/internal/db"
	"github.com/david/rfq-pilot/internal/decision"
	"github.com/david/rfq-pilot/internal/extract"
	"github.com/david/rfq-pilot/internal/models"
	"github.com/david/rfq-pilot/internal/supply"
)

const maxUploadBytes = 20 * 1024 * 1024

type Server struct {
	Store       *db.Store
	AuthService *auth.Service
	Echo        *echo.Echo
	DB          *pgxpool.Pool
	AI          *ai.OllamaClient
	Advisor     *ai.Advisor
	Reviewer    *ai.Reviewer
	Fetcher     *extract.Fetcher
	Sessions    *checklist.Store
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(pool *pgxpool.Pool, cfg config.Config) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:4200"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret"},
	}))

	aiClient := ai.NewOllamaClient(cfg.Ollama.Host, cfg.Ollama.EmbedModel, cfg.Ollama.GenModel)

	s := &Server{
		DB:          pool,
		Store:       db.NewStore(pool),
		AuthService: auth.NewService(pool),
		Echo:        e,
		AI:          aiClient,
		Advisor:     ai.NewAdvisor(aiClient, cfg.AdvisoryTimeout),
		Reviewer:    ai.NewReviewer(aiClient, cfg.AdvisoryTimeout),
		Fetcher:     extract.NewFetcher(),
		Sessions:    checklist.NewStore(cfg.SessionTTL),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	// Auth Routes
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	// Protected Routes
	protected := api.Group("")
	protected.Use(auth.Middleware)
	protected.POST("/analyze", s.handleAnalyze)
	protected.POST("/analyze/url", s.handleAnalyzeURL)
	protected.GET("/analyses", s.handleListAnalyses)
	protected.GET("/analyses/:id", s.handleGetAnalysis)
	protected.POST("/sessions/:id/answers", s.handleSubmitAnswer)
	protected.GET("/sessions/:id", s.handleGetSession)
	protected.DELETE("/sessions/:id", s.handleCancelSession)
	protected.POST("/suppliers/validate", s.handleValidateSupplier)

	// Admin Routes (archive maintenance)
	admin := api.Group("")
	admin.Use(s.adminMiddleware)
	admin.DELETE("/analyses/:id", s.handleDeleteAnalysis)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrUserExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

// analyzeOptions are the per-request switches shared by the upload and URL
// handlers.
type analyzeOptions struct {
	withAdvisor   bool
	authoritative bool
}

func parseAnalyzeOptions(c echo.Context) analyzeOptions {
	return analyzeOptions{
		withAdvisor:   c.QueryParam("advisor") == "true" || c.FormValue("advisor") == "true",
		authoritative: c.QueryParam("mode") == "authoritative" || c.FormValue("mode") == "authoritative",
	}
}

// handleAnalyze accepts a multipart document upload or a raw "text" form
// field and runs the full pipeline.
func (s *Server) handleAnalyze(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	filename, text, err := s.documentText(c)
	if err != nil {
		if errors.Is(err, extract.ErrExtractionUnavailable) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return s.runAnalysis(c, userID, filename, "", text, parseAnalyzeOptions(c))
}

// handleAnalyzeURL fetches a remote document, extracts its text and runs the
// same pipeline as handleAnalyze.
func (s *Server) handleAnalyzeURL(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := c.Bind(&req); err != nil || req.URL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url is required"})
	}

	body, contentType, err := s.Fetcher.Fetch(req.URL)
	if err != nil {
		if errors.Is(err, extract.ErrForbiddenHost) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	filename := req.URL
	if strings.Contains(contentType, "pdf") {
		filename += ".pdf"
	}
	text, err := extract.Text(filename, body)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	return s.runAnalysis(c, userID, filename, req.URL, text, parseAnalyzeOptions(c))
}

// documentText resolves the request body to raw solicitation text.
func (s *Server) documentText(c echo.Context) (string, string, error) {
	if file, err := c.FormFile("document"); err == nil {
		if file.Size > maxUploadBytes {
			return "", "", fmt.Errorf("document exceeds %d byte limit", maxUploadBytes)
		}
		src, err := file.Open()
		if err != nil {
			return "", "", fmt.Errorf("open upload: %w", err)
		}
		defer src.Close()

		content, err := io.ReadAll(io.LimitReader(src, maxUploadBytes))
		if err != nil {
			return "", "", fmt.Errorf("read upload: %w", err)
		}

		text, err := extract.Text(file.Filename, content)
		if err != nil {
			return "", "", err
		}
		return file.Filename, text, nil
	}

	if text := c.FormValue("text"); strings.TrimSpace(text) != "" {
		return "inline-text", text, nil
	}
	return "", "", errors.New("provide a document upload or a text field")
}

func (s *Server) runAnalysis(c echo.Context, userID uuid.UUID, filename, sourceURL, text string, opts analyzeOptions) error {
	ctx := c.Request().Context()

	if opts.authoritative {
		return s.runAuthoritative(c, ctx, userID, filename, text)
	}

	result := analyze.Analyze(text)
	engine := decision.FromAnalysis(result)

	var advisory *decision.Advisory
	var advisoryErr string
	if opts.withAdvisor {
		adv, err := s.Advisor.Review(ctx, decision.BuildContext(engine))
		if err != nil {
			// advisory degradation: the deterministic result stands
			log.Printf("advisory skipped: %v", err)
			advisoryErr = "advisory skipped"
		} else {
			advisory = adv
		}
	}

	fused := decision.Merge(engine, advisory)

	response := map[string]any{
		"analysis": result,
		"decision": fused,
	}
	if advisoryErr != "" {
		response["advisory_status"] = advisoryErr
	}

	reviewSummary, reviewItems := checklist.Review(result, uuid.NewString()[:8])
	response["review"] = map[string]any{
		"summary":   reviewSummary,
		"checklist": reviewItems,
	}

	if fused.FinalDecision == decision.Hold {
		items := checklist.FromEngine(fused.FinalDecision, engine.Flags)
		if len(items) > 0 {
			session, err := s.Sessions.Create(userID.String(), filename, reviewSummary, items)
			if err == nil {
				response["hold_resolution"] = map[string]any{
					"session_id": session.ID,
					"checklist":  items,
					"first":      items[0],
					"total":      len(items),
				}
			}
		}
	}

	s.archive(ctx, &models.RFQAnalysis{
		Filename:       filename,
		SourceURL:      sourceURL,
		RFQNumber:      result.Snapshot.RFQNumber,
		NSN:            result.Snapshot.NSN,
		Quantity:       result.Snapshot.Quantity,
		Score:          result.WinProbability.Score,
		Recommendation: result.WinProbability.Recommendation,
		FinalDecision:  fused.FinalDecision,
		Reason:         fused.Reason,
		Result:         result,
		Advisory:       fused.Advisory,
	}, text)

	return c.JSON(http.StatusOK, response)
}

func (s *Server) runAuthoritative(c echo.Context, ctx context.Context, userID uuid.UUID, filename, text string) error {
	payload, raw, err := s.Reviewer.Review(ctx, text)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	response := map[string]any{
		"mode":     "authoritative",
		"decision": payload.Decision,
		"result":   raw,
	}

	if payload.Decision == decision.Hold {
		// A checklist supplied in the payload wins over regeneration.
		var items []checklist.Item
		if provided, ok := raw["hold_resolution_checklist"].([]any); ok {
			items = checklist.NormalizeItems(provided)
		}
		if len(items) == 0 {
			items = checklist.FromPayload(payload)
		}
		if len(items) > 0 {
			session, err := s.Sessions.Create(userID.String(), filename, "Hold resolution for "+filename, items)
			if err == nil {
				response["hold_resolution"] = map[string]any{
					"session_id": session.ID,
					"checklist":  items,
				}
			}
		}
	}

	return c.JSON(http.StatusOK, response)
}

// archive persists the run; failures are logged, not surfaced, so a storage
// hiccup never loses an analysis the caller already paid for.
func (s *Server) archive(ctx context.Context, a *models.RFQAnalysis, text string) {
	var embedding []float32
	embedCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if vec, err := s.AI.GenerateEmbedding(embedCtx, snippet(text, 2000)); err == nil {
		embedding = vec
	} else {
		log.Printf("embedding skipped: %v", err)
	}

	if err := s.Store.SaveAnalysis(ctx, a, embedding); err != nil {
		log.Printf("failed to archive analysis for %s: %v", a.Filename, err)
	}
}

func snippet(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max]
}

func (s *Server) handleListAnalyses(c echo.Context) error {
	params := db.ListParams{
		Query:    c.QueryParam("q"),
		Decision: strings.ToUpper(c.QueryParam("decision")),
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Offset = n
		}
	}

	// Semantic ranking is best-effort: without an embedding the query
	// still works as a plain text filter.
	if params.Query != "" {
		embedCtx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
		defer cancel()
		if vec, err := s.AI.GenerateEmbedding(embedCtx, params.Query); err == nil {
			params.QueryEmbedding = vec
		}
	}

	result, err := s.Store.ListAnalyses(c.Request().Context(), params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetAnalysis(c echo.Context) error {
	a, err := s.Store.GetAnalysis(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, a)
}

func (s *Server) handleSubmitAnswer(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req struct {
		ItemID string `json:"item_id"`
		Answer *bool  `json:"answer"`
	}
	if err := c.Bind(&req); err != nil || req.ItemID == "" || req.Answer == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "item_id and answer are required"})
	}

	step, err := s.Sessions.SubmitAnswer(c.Param("id"), userID.String(), req.ItemID, *req.Answer)
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, step)
}

func (s *Server) handleGetSession(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	view, err := s.Sessions.Get(c.Param("id"), userID.String())
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleCancelSession(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	if err := s.Sessions.Cancel(c.Param("id"), userID.String()); err != nil {
		return sessionError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func sessionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, checklist.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, checklist.ErrNotSessionOwner):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, checklist.ErrUnknownItem):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (s *Server) handleDeleteAnalysis(c echo.Context) error {
	if err := s.Store.DeleteAnalysis(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleValidateSupplier(c echo.Context) error {
	var req struct {
		RFQ      map[string]any  `json:"rfq"`
		Supplier supply.Supplier `json:"supplier"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.RFQ == nil {
		req.RFQ = map[string]any{}
	}
	return c.JSON(http.StatusOK, supply.ValidateSupplier(req.RFQ, req.Supplier))
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		// Check X-Admin-Secret header or Bearer token
		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func adminSecret() (string, error) {
	adminSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if secret != "" {
			adminSecretRuntime = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
		log.Print("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}

	return adminSecretRuntime, nil
}
