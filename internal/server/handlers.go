package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/config"
	"github.com/vanshika/wormsim/internal/domain"
	"github.com/vanshika/wormsim/internal/service"
	"github.com/vanshika/wormsim/internal/simulation"
)

const maxTrialsPerRequest = 10000

// APIOptions controls how requests become runs.
type APIOptions struct {
	// Defaults fill request fields the client leaves out.
	Defaults config.SimulationConfig
	Record   bool

	// NetworkDir confines networkPath file references. Empty rejects them.
	NetworkDir string

	// MaxRounds replaces an unbounded or larger round cap.
	MaxRounds  int
	RunTimeout time.Duration
}

// APIHandlers exposes HTTP handlers for the simulation API.
type APIHandlers struct {
	logger  *slog.Logger
	service *service.SimulationService
	opts    APIOptions
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc *service.SimulationService, opts APIOptions) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		service: svc,
		opts:    opts,
	}
}

// APIOptionsFromConfig takes the request defaults and run guards from cfg.
func APIOptionsFromConfig(cfg config.Config) APIOptions {
	return APIOptions{
		Defaults:   cfg.Simulation,
		Record:     cfg.Store.Record,
		NetworkDir: cfg.HTTP.NetworkDir,
		MaxRounds:  cfg.HTTP.MaxRounds,
		RunTimeout: cfg.HTTP.RunTimeout,
	}
}

type simulationRequest struct {
	NetworkPath            string     `json:"networkPath"`
	Edges                  [][]string `json:"edges"`
	InfectionProbability   *float64   `json:"infectionProbability"`
	FirstInfected          *string    `json:"firstInfected"`
	Inoculator             *string    `json:"inoculator"`
	InoculationProbability *float64   `json:"inoculationProbability"`
	Seed                   int64      `json:"seed"`
	MaxRounds              *int       `json:"maxRounds"`
	Record                 *bool      `json:"record"`
}

type trialsRequest struct {
	simulationRequest
	Trials         int  `json:"trials"`
	Workers        int  `json:"workers"`
	IncludeResults bool `json:"includeResults"`
}

type runsResponse struct {
	Items []domain.RunRecord `json:"items"`
}

type errorResponse struct {
	Error  string             `json:"error"`
	Run    *domain.RunRecord  `json:"run,omitempty"`
	Result *simulation.Result `json:"result,omitempty"`
}

func (h *APIHandlers) handleSimulations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload simulationRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ref, cfg, err := payload.toRun(h.opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	record := h.opts.Record
	if payload.Record != nil {
		record = *payload.Record
	}

	ctx, cancel := h.runContext(r.Context())
	defer cancel()
	resp, err := h.service.Simulate(ctx, service.SimulateRequest{
		Network: ref,
		Config:  cfg,
		Seed:    payload.Seed,
		Record:  record,
	})
	if err != nil {
		status := statusFor(err)
		h.logger.Warn("simulation failed", "error", err, "status", status, "network", ref.String())
		body := errorResponse{Error: err.Error()}
		if resp.Result.Mode != "" {
			body.Run = &resp.Run
			body.Result = &resp.Result
		}
		respondJSON(w, status, body)
		return
	}

	status := http.StatusOK
	if resp.Run.ID != "" {
		status = http.StatusCreated
		w.Header().Set("Location", "/runs/"+resp.Run.ID)
	}
	respondJSON(w, status, resp)
}

func (h *APIHandlers) handleTrials(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload trialsRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Trials < 0 || payload.Trials > maxTrialsPerRequest {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("trials must be between 1 and %d", maxTrialsPerRequest))
		return
	}
	ref, cfg, err := payload.toRun(h.opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.runContext(r.Context())
	defer cancel()
	summary, err := h.service.Trials(ctx, service.TrialsRequest{
		Network: ref,
		Config:  cfg,
		Options: simulation.TrialOptions{
			Trials:   payload.Trials,
			Workers:  payload.Workers,
			BaseSeed: payload.Seed,
		},
	})
	var taskErr *domain.TaskError
	if err != nil && !errors.As(err, &taskErr) {
		status := statusFor(err)
		h.logger.Warn("trials failed", "error", err, "status", status, "network", ref.String())
		writeError(w, status, err.Error())
		return
	}
	if !payload.IncludeResults {
		summary.Results = nil
	}

	response := map[string]any{"summary": summary}
	if taskErr != nil {
		failures := make([]string, 0, len(taskErr.Errors))
		for _, e := range taskErr.Errors {
			failures = append(failures, e.Error())
		}
		response["failures"] = failures
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *APIHandlers) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 0)
	runs, err := h.service.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		writeError(w, statusFor(err), "failed to list runs")
		return
	}
	if runs == nil {
		runs = []domain.RunRecord{}
	}
	respondJSON(w, http.StatusOK, runsResponse{Items: runs})
}

func (h *APIHandlers) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/runs/"), "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	run, err := h.service.GetRun(r.Context(), id)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("failed to fetch run", "error", err, "runId", id)
		}
		writeError(w, status, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, run)
}

func (h *APIHandlers) runContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.opts.RunTimeout > 0 {
		return context.WithTimeout(parent, h.opts.RunTimeout)
	}
	return context.WithCancel(parent)
}

func (req simulationRequest) toRun(opts APIOptions) (service.NetworkRef, simulation.Config, error) {
	defaults := opts.Defaults
	var ref service.NetworkRef
	switch {
	case req.NetworkPath != "" && len(req.Edges) > 0:
		return ref, simulation.Config{}, errors.New("networkPath and edges are mutually exclusive")
	case len(req.Edges) > 0:
		ref.Edges = make([]domain.Edge, 0, len(req.Edges))
		for i, row := range req.Edges {
			if len(row) != 2 {
				return ref, simulation.Config{}, errors.Errorf("edge %d: expected 2 fields, got %d", i, len(row))
			}
			ref.Edges = append(ref.Edges, domain.Edge{Source: row[0], Target: row[1]})
		}
	case req.NetworkPath != "":
		ref = service.ParseNetworkRef(req.NetworkPath)
		if ref.Path != "" {
			path, err := confinePath(opts.NetworkDir, ref.Path)
			if err != nil {
				return ref, simulation.Config{}, err
			}
			ref.Path = path
		}
	case defaults.Network != "":
		ref = service.ParseNetworkRef(defaults.Network)
	default:
		return ref, simulation.Config{}, errors.New("networkPath or edges is required")
	}

	cfg := defaults.SimulationRun()
	if req.InfectionProbability != nil {
		cfg.InfectionProb = *req.InfectionProbability
	}
	if req.FirstInfected != nil {
		cfg.PatientZero = *req.FirstInfected
	}
	if req.Inoculator != nil {
		cfg.Inoculator = *req.Inoculator
	}
	if req.InoculationProbability != nil {
		cfg.InoculationProb = *req.InoculationProbability
	}
	if req.MaxRounds != nil {
		cfg.MaxRounds = *req.MaxRounds
	}
	if opts.MaxRounds > 0 && (cfg.MaxRounds == 0 || cfg.MaxRounds > opts.MaxRounds) {
		cfg.MaxRounds = opts.MaxRounds
	}
	return ref, cfg, nil
}

// confinePath resolves a client-supplied edge-list name inside dir.
func confinePath(dir, name string) (string, error) {
	if dir == "" {
		return "", errors.Wrap(domain.ErrConfiguration, "file networks are not served; send edges or a neo4j: reference")
	}
	if !filepath.IsLocal(name) {
		return "", errors.Wrapf(domain.ErrConfiguration, "network path %q must stay inside the network directory", name)
	}
	return filepath.Join(dir, name), nil
}

// statusFor maps domain failures onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfiguration),
		errors.Is(err, domain.ErrInputFormat),
		errors.Is(err, domain.ErrUnknownNode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStagnation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	v, err := strconv.Atoi(value)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
