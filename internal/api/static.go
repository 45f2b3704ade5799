package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/skysar/sarplan/pkg/logger"
)

// StaticFileHandler serves rendered plan artifacts (GeoJSON, heatmaps) from
// the output directory without caching
type StaticFileHandler struct {
	outputDir string
	logger    *logger.Logger
}

// NewStaticFileHandler creates a new artifact file handler
func NewStaticFileHandler(outputDir string, logger *logger.Logger) *StaticFileHandler {
	return &StaticFileHandler{
		outputDir: outputDir,
		logger:    logger.Named("static-handler"),
	}
}

// ServeHTTP serves artifact files
func (h *StaticFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Clean the path to prevent directory traversal attacks
	path := filepath.Clean(r.URL.Path)
	path = strings.TrimPrefix(path, "/")
	if path == "" || path == "." {
		http.NotFound(w, r)
		return
	}

	fullPath := filepath.Join(h.outputDir, path)

	// Ensure the file is within the output directory (security check)
	absOutputDir, err := filepath.Abs(h.outputDir)
	if err != nil {
		h.logger.Error("Failed to get absolute path for output directory", logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		h.logger.Error("Failed to get absolute path for requested file", logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !strings.HasPrefix(absFullPath, absOutputDir) {
		h.logger.Warn("Attempted directory traversal attack",
			logger.String("requested_path", path),
			logger.String("full_path", absFullPath))
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	fileInfo, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			h.logger.Debug("Artifact not found", logger.String("path", fullPath))
			http.NotFound(w, r)
			return
		}
		h.logger.Error("Failed to stat file", logger.Error(err), logger.String("path", fullPath))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Don't serve directory listings
	if fileInfo.IsDir() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	// Artifacts are regenerated per plan, so disable caching
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	h.logger.Debug("Serving artifact",
		logger.String("requested_path", r.URL.Path),
		logger.String("file_path", fullPath))

	http.ServeFile(w, r, fullPath)
}
