package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/david/grantwise/internal/auth"
	"github.com/david/grantwise/internal/billing"
	"github.com/david/grantwise/internal/export"
	"github.com/david/grantwise/internal/grants"
	"github.com/david/grantwise/internal/guidelines"
	"github.com/david/grantwise/internal/models"
)

const maxUploadSize = 10 << 20 // 10MB

// Auth

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	var errs []string
	errs = append(errs, validateEmail(req.Email)...)
	errs = append(errs, validatePassword(req.Password)...)
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"errors": errs})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

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
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

// Guidelines

type guidelinesRequest struct {
	Guidelines string `json:"guidelines"`
}

func (s *Server) handleParseGuidelines(c echo.Context) error {
	var req guidelinesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if errs := validateGuidelinesText(req.Guidelines); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"errors": errs})
	}

	return c.JSON(http.StatusOK, guidelines.Parse(req.Guidelines))
}

func (s *Server) handleParseGuidelinesPDF(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "PDF file is required"})
	}
	if fileHeader.Size > maxUploadSize {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "File exceeds 10MB limit"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unable to read uploaded file"})
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unable to read uploaded file"})
	}
	if len(content) > maxUploadSize {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "File exceeds 10MB limit"})
	}

	parsed, err := guidelines.ParsePDF(content)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "Unable to extract text from PDF"})
	}
	return c.JSON(http.StatusOK, parsed)
}

type fetchGuidelinesRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleFetchGuidelines(c echo.Context) error {
	var req fetchGuidelinesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := validateFetchURL(req.URL); err != nil {
		return err
	}

	parsed, err := s.Fetcher.FetchAndParse(req.URL)
	if err != nil {
		c.Logger().Errorf("Failed to fetch guidelines from %s: %v", req.URL, err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Unable to fetch guidelines page"})
	}
	return c.JSON(http.StatusOK, parsed)
}

// Compliance

type complianceRequest struct {
	Proposal   string `json:"proposal"`
	Guidelines string `json:"guidelines"`
}

type complianceResponse struct {
	Parsed guidelines.Parsed `json:"parsed"`
	Report guidelines.Report `json:"report"`
}

func (s *Server) handleCheckCompliance(c echo.Context) error {
	var req complianceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(req.Proposal) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Proposal text is required"})
	}

	parsed := guidelines.Parse(req.Guidelines)
	report := guidelines.CheckCompliance(req.Proposal, parsed)
	return c.JSON(http.StatusOK, complianceResponse{Parsed: parsed, Report: report})
}

func (s *Server) handleCheckStoredCompliance(c echo.Context) error {
	userID, proposalID, err := s.ownerAndID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	proposal, err := s.Store.GetProposal(ctx, userID, proposalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Proposal not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load proposal"})
	}

	var parsed guidelines.Parsed
	if len(proposal.ParsedGuidelines) > 0 {
		if err := json.Unmarshal(proposal.ParsedGuidelines, &parsed); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Stored guidelines are unreadable"})
		}
	}

	report := guidelines.CheckCompliance(proposal.Content, parsed)

	reportJSON, err := json.Marshal(report)
	if err == nil {
		if err := s.Store.SetCompliance(ctx, userID, proposalID, reportJSON); err != nil {
			c.Logger().Errorf("Failed to store compliance report: %v", err)
		}
	}

	return c.JSON(http.StatusOK, complianceResponse{Parsed: parsed, Report: report})
}

// Proposals

func (s *Server) handleGenerateProposal(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	ctx := c.Request().Context()

	var project models.ProjectDescription
	if err := c.Bind(&project); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if errs := validateProject(project); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"errors": errs})
	}

	user, err := s.AuthService.GetUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	now := s.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	used, err := s.Store.CountProposalsSince(ctx, userID, monthStart)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to check quota"})
	}
	if billing.QuotaExceeded(user.Plan, used) {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "Monthly proposal limit reached. Upgrade your plan to generate more proposals.",
		})
	}

	result, err := s.Generator.GenerateProposal(ctx, project)
	if err != nil {
		c.Logger().Errorf("Proposal generation failed: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Failed to generate proposal. Please try again."})
	}

	report := guidelines.CheckCompliance(result.Proposal, result.ParsedGuidelines)

	parsedJSON, _ := json.Marshal(result.ParsedGuidelines)
	reportJSON, _ := json.Marshal(report)

	saved, err := s.Store.SaveProposal(ctx, models.Proposal{
		UserID:           userID,
		OrganizationName: project.OrganizationName,
		ProjectName:      project.ProjectName,
		Content:          result.Proposal,
		ParsedGuidelines: parsedJSON,
		Compliance:       reportJSON,
		TokensUsed:       result.TokensUsed,
		Model:            result.Model,
	})
	if err != nil {
		c.Logger().Errorf("Failed to save proposal: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save proposal"})
	}

	// Embedding failures only degrade similarity search, never generation.
	if vec, err := s.Embedder.GenerateEmbedding(ctx, result.Proposal); err != nil {
		c.Logger().Errorf("Failed to embed proposal %s: %v", saved.ID, err)
	} else if err := s.Store.SetEmbedding(ctx, userID, saved.ID, vec); err != nil {
		c.Logger().Errorf("Failed to store embedding for %s: %v", saved.ID, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"proposal":   saved,
		"compliance": report,
		"metadata": map[string]interface{}{
			"tokensUsed":  result.TokensUsed,
			"model":       result.Model,
			"generatedAt": result.GeneratedAt,
		},
	})
}

type voiceRequest struct {
	Samples string `json:"samples"`
}

func (s *Server) handleAnalyzeVoice(c echo.Context) error {
	var req voiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(req.Samples) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Past proposal samples are required"})
	}
	if len(req.Samples) > maxVoiceSampleLength {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Samples exceed the 10000 character limit"})
	}

	analysis, err := s.Generator.AnalyzeVoice(c.Request().Context(), req.Samples)
	if err != nil {
		c.Logger().Errorf("Voice analysis failed: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Failed to analyze organization voice"})
	}
	return c.JSON(http.StatusOK, analysis)
}

func (s *Server) handleListProposals(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	limit := 20
	offset := 0
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		offset = o
	}

	proposals, err := s.Store.ListProposals(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list proposals"})
	}
	if proposals == nil {
		proposals = []models.Proposal{}
	}
	return c.JSON(http.StatusOK, proposals)
}

func (s *Server) handleGetProposal(c echo.Context) error {
	userID, proposalID, err := s.ownerAndID(c)
	if err != nil {
		return err
	}

	proposal, err := s.Store.GetProposal(c.Request().Context(), userID, proposalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Proposal not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load proposal"})
	}
	return c.JSON(http.StatusOK, proposal)
}

func (s *Server) handleDeleteProposal(c echo.Context) error {
	userID, proposalID, err := s.ownerAndID(c)
	if err != nil {
		return err
	}

	err = s.Store.DeleteProposal(c.Request().Context(), userID, proposalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Proposal not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete proposal"})
	}
	return c.NoContent(http.StatusNoContent)
}

type refineRequest struct {
	Instruction string `json:"instruction"`
}

func (s *Server) handleRefineProposal(c echo.Context) error {
	userID, proposalID, err := s.ownerAndID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var req refineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(req.Instruction) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Refinement instruction is required"})
	}

	proposal, err := s.Store.GetProposal(ctx, userID, proposalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Proposal not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load proposal"})
	}

	refined, err := s.Generator.Refine(ctx, proposal.Content, req.Instruction)
	if err != nil {
		c.Logger().Errorf("Refinement failed: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Failed to refine proposal"})
	}

	if err := s.Store.UpdateProposalContent(ctx, userID, proposalID, refined); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store refined proposal"})
	}

	return c.JSON(http.StatusOK, map[string]string{"proposal": refined})
}

func (s *Server) handleSimilarProposals(c echo.Context) error {
	userID, proposalID, err := s.ownerAndID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	proposal, err := s.Store.GetProposal(ctx, userID, proposalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Proposal not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load proposal"})
	}

	vec, err := s.Embedder.GenerateEmbedding(ctx, proposal.Content)
	if err != nil {
		c.Logger().Errorf("Failed to embed query proposal: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Similarity search is unavailable"})
	}

	similar, err := s.Store.SearchSimilar(ctx, userID, vec, proposalID, 5)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to search similar proposals"})
	}
	return c.JSON(http.StatusOK, similar)
}

func (s *Server) handleExportProposal(c echo.Context) error {
	userID, proposalID, err := s.ownerAndID(c)
	if err != nil {
		return err
	}

	proposal, err := s.Store.GetProposal(c.Request().Context(), userID, proposalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Proposal not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load proposal"})
	}

	meta := export.Metadata{
		OrganizationName: proposal.OrganizationName,
		ProjectName:      proposal.ProjectName,
	}

	var file export.File
	switch c.QueryParam("format") {
	case "", "txt":
		file = export.TextFile(proposal.Content, meta, s.Now())
	case "html":
		file = export.HTMLFile(proposal.Content, meta, s.Now())
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unsupported format; use txt or html"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", file.Filename))
	return c.Blob(http.StatusOK, file.MIMEType, file.Content)
}

// Grants

func (s *Server) handleSearchGrants(c echo.Context) error {
	keyword := strings.TrimSpace(c.QueryParam("keyword"))
	if keyword == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "keyword is required"})
	}

	rows := 25
	if r, err := strconv.Atoi(c.QueryParam("rows")); err == nil && r > 0 && r <= 100 {
		rows = r
	}
	start := 0
	if v, err := strconv.Atoi(c.QueryParam("start")); err == nil && v >= 0 {
		start = v
	}

	results, total, err := s.Grants.Search(c.Request().Context(), grants.SearchCriteria{
		Keyword:           keyword,
		OppStatuses:       "forecasted|posted",
		Eligibilities:     c.QueryParam("eligibility"),
		FundingCategories: c.QueryParam("category"),
		SortBy:            "openDate|desc",
		Rows:              rows,
		StartRecordNum:    start,
	})
	if err != nil {
		c.Logger().Errorf("Grants search failed: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Failed to search grants. Please try again."})
	}
	if results == nil {
		results = []models.GrantOpportunity{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"grants": results,
		"total":  total,
	})
}

func (s *Server) handleGetGrant(c echo.Context) error {
	details, err := s.Grants.FetchDetails(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Failed to fetch grant details"})
	}
	return c.JSON(http.StatusOK, details)
}

func (s *Server) handleMatchGrants(c echo.Context) error {
	var project models.ProjectDescription
	if err := c.Bind(&project); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	matches, err := s.Matcher.FindMatching(c.Request().Context(), project)
	if err != nil {
		c.Logger().Errorf("Grant matching failed: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Failed to find matching grants"})
	}
	if matches == nil {
		matches = []models.MatchResult{}
	}
	return c.JSON(http.StatusOK, matches)
}

// Saved grants

func (s *Server) handleSaveGrant(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var grant models.GrantOpportunity
	if err := c.Bind(&grant); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if grant.ID == "" || grant.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Grant id and title are required"})
	}

	if err := s.Store.SaveGrant(c.Request().Context(), userID, grant); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save grant"})
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) handleUnsaveGrant(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	if err := s.Store.UnsaveGrant(c.Request().Context(), userID, c.Param("id")); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to unsave grant"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "unsaved"})
}

func (s *Server) handleListSavedGrants(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	saved, err := s.Store.ListSavedGrants(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch saved grants"})
	}
	if saved == nil {
		saved = []models.GrantOpportunity{}
	}
	return c.JSON(http.StatusOK, saved)
}

// Account

func (s *Server) handleGetAccount(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	ctx := c.Request().Context()

	user, err := s.AuthService.GetUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	plan, _ := billing.PlanByName(user.Plan)

	now := s.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	used, err := s.Store.CountProposalsSince(ctx, userID, monthStart)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load usage"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":               user,
		"plan":               plan,
		"proposalsThisMonth": used,
	})
}

type changePlanRequest struct {
	Plan string `json:"plan"`
}

func (s *Server) handleChangePlan(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req changePlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	plan, ok := billing.PlanByName(req.Plan)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown plan"})
	}

	if err := s.AuthService.ChangePlan(c.Request().Context(), userID, plan.Name); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to change plan"})
	}
	return c.JSON(http.StatusOK, map[string]string{"plan": plan.Name})
}

// ownerAndID resolves the authenticated user and the :id path parameter.
// The returned error, when non-nil, is an HTTPError ready to bubble up.
func (s *Server) ownerAndID(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid proposal ID")
	}
	return userID, proposalID, nil
}
