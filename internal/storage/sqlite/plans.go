package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/skysar/sarplan/internal/planner"
	"github.com/skysar/sarplan/pkg/logger"
	_ "modernc.org/sqlite"
)

// PlanRecord represents an archived search plan in the database
type PlanRecord struct {
	ID             int64         `json:"id"`
	CreatedAt      time.Time     `json:"created_at"`
	CenterLat      float64       `json:"center_lat"`
	CenterLon      float64       `json:"center_lon"`
	RadiusKm       float64       `json:"radius_km"`
	EnduranceHours float64       `json:"endurance_hours"`
	DriftKm        float64       `json:"drift_km"`
	RiskLevel      string        `json:"risk_level"`
	Helicopters    int           `json:"helicopters"`
	GroundTeams    int           `json:"ground_teams"`
	Drones         int           `json:"drones"`
	EstimatedHours float64       `json:"estimated_hours"`
	CellCount      int           `json:"cell_count"`
	WaypointCount  int           `json:"waypoint_count"`
	Plan           *planner.Plan `json:"plan,omitempty"`
}

// PlanStorage is a SQLite-based archive of generated search plans
type PlanStorage struct {
	db            *sql.DB
	logger        *logger.Logger
	maxPlansInAPI int
}

// NewPlanStorage creates a new SQLite-based plan archive
func NewPlanStorage(dbPath string, maxPlansInAPI int, log *logger.Logger) (*PlanStorage, error) {
	storageLogger := log.Named("sqlite")

	storageLogger.Info("Initializing SQLite storage",
		logger.String("path", dbPath))

	// Open the database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool limits
	db.SetMaxOpenConns(1) // SQLite only supports one writer at a time
	db.SetMaxIdleConns(1)

	// Set pragmas for better performance and concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Create tables if they don't exist
	if err := initDatabase(db, storageLogger); err != nil {
		db.Close()
		return nil, err
	}

	return &PlanStorage{
		db:            db,
		logger:        storageLogger,
		maxPlansInAPI: maxPlansInAPI,
	}, nil
}

// Close closes the database connection
func (s *PlanStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// initDatabase initializes the database schema
func initDatabase(db *sql.DB, log *logger.Logger) error {
	log.Info("Initializing database schema")

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS plans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			center_lat REAL,
			center_lon REAL,
			radius_km REAL,
			endurance_hours REAL,
			drift_km REAL,
			risk_level TEXT,
			helicopters INTEGER,
			ground_teams INTEGER,
			drones INTEGER,
			estimated_hours REAL,
			cell_count INTEGER,
			waypoint_count INTEGER,
			plan_json TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create plans table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_plans_created_at ON plans(created_at)`)
	if err != nil {
		return fmt.Errorf("failed to create plans index: %w", err)
	}

	return nil
}

// SavePlan archives a generated plan and returns its assigned ID. The
// archive is write-once: the planning pipeline never reads it back.
func (s *PlanStorage) SavePlan(rec *PlanRecord) (int64, error) {
	planJSON, err := json.Marshal(rec.Plan)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal plan: %w", err)
	}

	result, err := s.db.Exec(`
		INSERT INTO plans (
			created_at, center_lat, center_lon, radius_km, endurance_hours,
			drift_km, risk_level, helicopters, ground_teams, drones,
			estimated_hours, cell_count, waypoint_count, plan_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.CenterLat, rec.CenterLon, rec.RadiusKm, rec.EnduranceHours,
		rec.DriftKm, rec.RiskLevel, rec.Helicopters, rec.GroundTeams,
		rec.Drones, rec.EstimatedHours, rec.CellCount, rec.WaypointCount,
		string(planJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert plan: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get plan ID: %w", err)
	}

	s.logger.Debug("Archived search plan",
		logger.Int64("id", id),
		logger.Float64("radius_km", rec.RadiusKm))

	return id, nil
}

// GetPlan retrieves a single archived plan by ID, including the full plan
// document
func (s *PlanStorage) GetPlan(id int64) (*PlanRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, created_at, center_lat, center_lon, radius_km,
			endurance_hours, drift_km, risk_level, helicopters, ground_teams,
			drones, estimated_hours, cell_count, waypoint_count, plan_json
		FROM plans WHERE id = ?`, id)

	rec, planJSON, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query plan %d: %w", id, err)
	}

	if planJSON != "" {
		var plan planner.Plan
		if err := json.Unmarshal([]byte(planJSON), &plan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan %d: %w", id, err)
		}
		rec.Plan = &plan
	}
	return rec, nil
}

// GetPlans retrieves recent plan summaries, newest first, without the full
// plan documents. A limit of 0 or above the configured maximum falls back to
// the configured maximum.
func (s *PlanStorage) GetPlans(limit int) ([]*PlanRecord, error) {
	if limit <= 0 || limit > s.maxPlansInAPI {
		limit = s.maxPlansInAPI
	}
	rows, err := s.db.Query(`
		SELECT id, created_at, center_lat, center_lon, radius_km,
			endurance_hours, drift_km, risk_level, helicopters, ground_teams,
			drones, estimated_hours, cell_count, waypoint_count, ''
		FROM plans ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var records []*PlanRecord
	for rows.Next() {
		rec, _, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plan rows: %w", err)
	}

	return records, nil
}

// scanner covers both sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPlan(row scanner) (*PlanRecord, string, error) {
	var rec PlanRecord
	var createdAt string
	var planJSON string

	err := row.Scan(&rec.ID, &createdAt, &rec.CenterLat, &rec.CenterLon,
		&rec.RadiusKm, &rec.EnduranceHours, &rec.DriftKm, &rec.RiskLevel,
		&rec.Helicopters, &rec.GroundTeams, &rec.Drones, &rec.EstimatedHours,
		&rec.CellCount, &rec.WaypointCount, &planJSON)
	if err != nil {
		return nil, "", err
	}

	// CURRENT_TIMESTAMP rows come back in SQLite's datetime format
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = t
	} else if t, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
		rec.CreatedAt = t.UTC()
	}

	return &rec, planJSON, nil
}
