package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/skysar/sarplan/internal/assess"
	"github.com/skysar/sarplan/internal/config"
	"github.com/skysar/sarplan/internal/geo"
	"github.com/skysar/sarplan/internal/planner"
	"github.com/skysar/sarplan/internal/render"
	"github.com/skysar/sarplan/internal/storage/sqlite"
	"github.com/skysar/sarplan/internal/websocket"
	"github.com/skysar/sarplan/pkg/logger"
)

// Handler contains the API handlers
type Handler struct {
	plannerService *planner.Service
	config         *config.Config
	logger         *logger.Logger
	wsServer       *websocket.Server
	planStorage    *sqlite.PlanStorage
}

// NewHandler creates a new API handler
func NewHandler(plannerService *planner.Service, config *config.Config, logger *logger.Logger, wsServer *websocket.Server, planStorage *sqlite.PlanStorage) *Handler {
	return &Handler{
		plannerService: plannerService,
		config:         config,
		logger:         logger.Named("api-handler"),
		wsServer:       wsServer,
		planStorage:    planStorage,
	}
}

// PlanRequest is the payload for creating a search plan
type PlanRequest struct {
	LastKnown  geo.Position              `json:"last_known"`
	Kinematics planner.Kinematics        `json:"kinematics"`
	Weather    planner.WeatherConditions `json:"weather"`
	Fuel       planner.FuelState         `json:"fuel"`
	Time       *time.Time                `json:"time,omitempty"`
	Assets     []AssetRequest            `json:"assets,omitempty"`
}

// AssetRequest overrides the configured fleet for a single request
type AssetRequest struct {
	Name         string  `json:"name"`
	SweepWidthKm float64 `json:"sweep_width_km"`
	SpeedKmh     float64 `json:"speed_kmh"`
}

// PlanResponse is the response returned after generating a plan
type PlanResponse struct {
	ID        int64                  `json:"id"`
	CreatedAt time.Time              `json:"created_at"`
	Plan      *planner.Plan          `json:"plan"`
	Resources assess.SearchResources `json:"resources"`
	Risk      assess.RiskAssessment  `json:"risk"`
	Artifacts map[string]string      `json:"artifacts,omitempty"`
}

// CreatePlan generates a search plan from a crash scenario
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("Failed to decode plan request", logger.Error(err))
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	input := planner.Input{
		LastKnown:  req.LastKnown,
		Kinematics: req.Kinematics,
		Weather:    req.Weather,
		Fuel:       req.Fuel,
	}
	if req.Time != nil {
		input.Time = *req.Time
	}

	var assets []planner.Asset
	for _, a := range req.Assets {
		assets = append(assets, planner.Asset{
			Name:         a.Name,
			SweepWidthKm: a.SweepWidthKm,
			SpeedKmh:     a.SpeedKmh,
		})
	}

	plan, err := h.plannerService.Plan(input, assets)
	if err != nil {
		h.broadcastPlanFailed(err)
		switch {
		case errors.Is(err, planner.ErrInvalidGeometry):
			WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, planner.ErrConfiguration):
			WriteError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.Error("Plan generation failed", logger.Error(err))
			WriteError(w, http.StatusInternalServerError, "plan generation failed")
		}
		return
	}

	resources := assess.CalculateResources(plan.Area, h.resourceRubric())
	risk := assess.AssessRisk(plan.Input.Weather, h.riskRubric())

	rec := &sqlite.PlanRecord{
		CreatedAt:      time.Now().UTC(),
		CenterLat:      plan.Area.Center.Latitude,
		CenterLon:      plan.Area.Center.Longitude,
		RadiusKm:       plan.Area.RadiusKm,
		EnduranceHours: plan.Range.EnduranceHours,
		DriftKm:        plan.DriftKm,
		RiskLevel:      string(risk.Level),
		Helicopters:    resources.Helicopters,
		GroundTeams:    resources.GroundTeams,
		Drones:         resources.Drones,
		EstimatedHours: resources.EstimatedHours,
		CellCount:      len(plan.Grid.Cells),
		WaypointCount:  waypointCount(plan),
		Plan:           plan,
	}

	id, err := h.planStorage.SavePlan(rec)
	if err != nil {
		h.logger.Error("Failed to archive plan", logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to archive plan")
		return
	}
	rec.ID = id

	artifacts, err := h.writeArtifacts(id, plan)
	if err != nil {
		// The plan itself is archived, so a failed artifact write is not fatal
		h.logger.Warn("Failed to write plan artifacts", logger.Error(err), logger.Int64("id", id))
	}

	h.wsServer.Broadcast(&websocket.Message{
		Type: websocket.MessageTypePlanCreated,
		Data: map[string]any{
			"id":              id,
			"center_lat":      rec.CenterLat,
			"center_lon":      rec.CenterLon,
			"radius_km":       rec.RadiusKm,
			"endurance_hours": rec.EnduranceHours,
			"risk_level":      rec.RiskLevel,
		},
	})

	h.logger.Info("Generated search plan",
		logger.Int64("id", id),
		logger.Float64("radius_km", rec.RadiusKm),
		logger.Int("cells", rec.CellCount))

	WriteJSON(w, http.StatusCreated, PlanResponse{
		ID:        id,
		CreatedAt: rec.CreatedAt,
		Plan:      plan,
		Resources: resources,
		Risk:      risk,
		Artifacts: artifacts,
	})
}

// writeArtifacts renders the plan's map document and heatmap into the output
// directory served under /files/
func (h *Handler) writeArtifacts(id int64, plan *planner.Plan) (map[string]string, error) {
	dir := h.config.Output.Dir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	geojsonName := fmt.Sprintf("plan_%d.geojson", id)
	geojson, err := json.MarshalIndent(render.GeoJSON(plan), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GeoJSON: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, geojsonName), geojson, 0644); err != nil {
		return nil, fmt.Errorf("failed to write GeoJSON: %w", err)
	}

	heatmapName := fmt.Sprintf("plan_%d_heatmap.png", id)
	png, err := render.HeatmapPNG(plan.Grid)
	if err != nil {
		return nil, fmt.Errorf("failed to render heatmap: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, heatmapName), png, 0644); err != nil {
		return nil, fmt.Errorf("failed to write heatmap: %w", err)
	}

	return map[string]string{
		"geojson": "/files/" + geojsonName,
		"heatmap": "/files/" + heatmapName,
	}, nil
}

// GetPlans returns recent plan summaries
func (h *Handler) GetPlans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit: %s", v))
			return
		}
		limit = n
	}

	plans, err := h.planStorage.GetPlans(limit)
	if err != nil {
		h.logger.Error("Failed to list plans", logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to list plans")
		return
	}

	response := map[string]interface{}{
		"count": len(plans),
		"plans": plans,
	}
	WriteJSON(w, http.StatusOK, response)
}

// GetPlan returns a single archived plan with its full document
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	rec := h.loadPlan(w, r)
	if rec == nil {
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

// GetPlanGeoJSON returns the rendered GeoJSON for an archived plan
func (h *Handler) GetPlanGeoJSON(w http.ResponseWriter, r *http.Request) {
	rec := h.loadPlan(w, r)
	if rec == nil {
		return
	}
	WriteJSON(w, http.StatusOK, render.GeoJSON(rec.Plan))
}

// GetPlanReport returns the plain-text briefing for an archived plan
func (h *Handler) GetPlanReport(w http.ResponseWriter, r *http.Request) {
	rec := h.loadPlan(w, r)
	if rec == nil {
		return
	}

	resources := assess.CalculateResources(rec.Plan.Area, h.resourceRubric())
	risk := assess.AssessRisk(rec.Plan.Input.Weather, h.riskRubric())

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(render.Report(rec.Plan, resources, risk)))
}

// GetPlanHeatmap returns the probability grid rendered as a PNG
func (h *Handler) GetPlanHeatmap(w http.ResponseWriter, r *http.Request) {
	rec := h.loadPlan(w, r)
	if rec == nil {
		return
	}

	png, err := render.HeatmapPNG(rec.Plan.Grid)
	if err != nil {
		h.logger.Error("Failed to render heatmap", logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to render heatmap")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// GetHealth returns the health status of the API
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":     "ok",
		"ws_clients": h.wsServer.ClientCount(),
	}
	WriteJSON(w, http.StatusOK, response)
}

// GetConfig returns the public configuration
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	// Create a sanitized config with only public values
	publicConfig := map[string]interface{}{
		"planner": map[string]interface{}{
			"burn_rate_kg_per_hour": h.config.Planner.BurnRateKgPerHour,
			"uncertainty_fraction":  h.config.Planner.UncertaintyFraction,
			"min_radius_km":         h.config.Planner.MinRadiusKm,
			"drift_cap_fraction":    h.config.Planner.DriftCapFraction,
			"cell_size_km":          h.config.Planner.CellSizeKm,
			"directional_bias":      h.config.Planner.DirectionalBias,
			"magnetic_headings":     h.config.Planner.MagneticHeadings,
		},
		"assets": h.config.Assets,
		"risk": map[string]interface{}{
			"high_wind_kt":       h.config.Risk.HighWindKt,
			"low_visibility_km":  h.config.Risk.LowVisibilityKm,
			"heavy_precip_mm_hr": h.config.Risk.HeavyPrecipMmHr,
		},
	}
	WriteJSON(w, http.StatusOK, publicConfig)
}

// HandleMessage implements websocket.MessageHandler for client requests
func (h *Handler) HandleMessage(client *websocket.Client, messageType string, data map[string]any) error {
	switch messageType {
	case websocket.MessageTypePlansRequest:
		plans, err := h.planStorage.GetPlans(0)
		if err != nil {
			return fmt.Errorf("failed to list plans: %w", err)
		}
		client.SendMessage(&websocket.Message{
			Type: websocket.MessageTypePlansList,
			Data: map[string]any{
				"count": len(plans),
				"plans": plans,
			},
		})
		return nil
	default:
		return fmt.Errorf("unknown message type: %s", messageType)
	}
}

// loadPlan parses the plan ID from the URL and fetches the record, writing
// the error response itself when the plan cannot be served
func (h *Handler) loadPlan(w http.ResponseWriter, r *http.Request) *sqlite.PlanRecord {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid plan ID: %s", idStr))
		return nil
	}

	rec, err := h.planStorage.GetPlan(id)
	if err != nil {
		h.logger.Error("Failed to load plan", logger.Error(err), logger.Int64("id", id))
		WriteError(w, http.StatusInternalServerError, "failed to load plan")
		return nil
	}
	if rec == nil || rec.Plan == nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("plan %d not found", id))
		return nil
	}
	return rec
}

func (h *Handler) broadcastPlanFailed(planErr error) {
	h.wsServer.Broadcast(&websocket.Message{
		Type: websocket.MessageTypePlanFailed,
		Data: map[string]any{
			"error": planErr.Error(),
		},
	})
}

func (h *Handler) resourceRubric() assess.ResourceRubric {
	return assess.ResourceRubric{
		HelicopterAreaKm2:   h.config.Resources.HelicopterAreaKm2,
		GroundTeamAreaKm2:   h.config.Resources.GroundTeamAreaKm2,
		DroneAreaKm2:        h.config.Resources.DroneAreaKm2,
		MinHelicopters:      h.config.Resources.MinHelicopters,
		MinGroundTeams:      h.config.Resources.MinGroundTeams,
		MinDrones:           h.config.Resources.MinDrones,
		HelicopterRateKm2Hr: h.config.Resources.HelicopterRateKm2Hr,
		GroundTeamRateKm2Hr: h.config.Resources.GroundTeamRateKm2Hr,
		DroneRateKm2Hr:      h.config.Resources.DroneRateKm2Hr,
	}
}

func (h *Handler) riskRubric() assess.RiskRubric {
	return assess.RiskRubric{
		HighWindKt:      h.config.Risk.HighWindKt,
		LowVisibilityKm: h.config.Risk.LowVisibilityKm,
		HeavyPrecipMmHr: h.config.Risk.HeavyPrecipMmHr,
	}
}

func waypointCount(plan *planner.Plan) int {
	n := 0
	for _, p := range plan.Patterns {
		n += len(p.Waypoints)
	}
	return n
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
