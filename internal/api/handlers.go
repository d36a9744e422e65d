package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/urban-guardian/urban-guardian-api/internal/insights"
	"github.com/urban-guardian/urban-guardian-api/internal/landcover"
	"github.com/urban-guardian/urban-guardian-api/internal/landsat"
	"github.com/urban-guardian/urban-guardian-api/internal/notification"
	"github.com/urban-guardian/urban-guardian-api/internal/pipeline"
	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "urban-guardian-api",
		"status":  "running",
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) legend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, landcover.Legend())
}

// parseFloatField reads the first non-empty form field among names;
// extra names are accepted aliases.
func parseFloatField(r *http.Request, fallback float64, names ...string) (float64, error) {
	v, err := parseOptionalFloat(r, names...)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return fallback, nil
	}
	return *v, nil
}

func parseOptionalFloat(r *http.Request, names ...string) (*float64, error) {
	for _, name := range names {
		raw := r.FormValue(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q", name, raw)
		}
		return &v, nil
	}
	return nil, nil
}

func parseIntField(r *http.Request, name string, fallback int) (int, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", name, raw)
	}
	return v, nil
}

func saveUpload(file multipart.File, header *multipart.FileHeader, dir string) (string, error) {
	name := strings.ToLower(header.Filename)
	if !strings.HasSuffix(name, ".tif") && !strings.HasSuffix(name, ".tiff") {
		return "", fmt.Errorf("file %s is not a GeoTIFF (.tif/.tiff)", header.Filename)
	}
	path := filepath.Join(dir, filepath.Base(header.Filename))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error saving upload: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		return "", fmt.Errorf("error saving upload: %w", err)
	}
	return path, nil
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart request: %v", err))
		return
	}

	tmpDir, err := os.MkdirTemp("", "uhi-analysis-")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error creating working directory")
		return
	}
	defer os.RemoveAll(tmpDir)

	paths := make(map[landsat.Band]string, len(landsat.AnalysisBands))
	for _, band := range landsat.AnalysisBands {
		file, header, err := r.FormFile(string(band))
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("missing band file %s", band))
			return
		}
		path, err := saveUpload(file, header, tmpDir)
		file.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		paths[band] = path
	}

	ml, err := parseFloatField(r, 0, "ml", "ml_coefficient")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	al, err := parseFloatField(r, 0, "al", "al_coefficient")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hotspotStd, err := parseOptionalFloat(r, "hotspot_std")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	minClusterSize, err := parseIntField(r, "min_cluster_size", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	maxPoints, err := parseIntField(r, "max_points", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	grids := make(map[landsat.Band]*raster.Grid, len(paths))
	var mu sync.Mutex
	var group errgroup.Group
	for band, path := range paths {
		band, path := band, path
		group.Go(func() error {
			scene, err := landsat.Open(path)
			if err != nil {
				return err
			}
			defer scene.Close()
			grid, err := scene.ReadGrid()
			if err != nil {
				return err
			}
			mu.Lock()
			grids[band] = grid
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	refScene, err := landsat.Open(paths[landsat.BandTIRS1])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer refScene.Close()

	input := pipeline.Input{
		Blue:  grids[landsat.BandBlue],
		Green: grids[landsat.BandGreen],
		Red:   grids[landsat.BandRed],
		NIR:   grids[landsat.BandNIR],
		SWIR1: grids[landsat.BandSWIR1],
		SWIR2: grids[landsat.BandSWIR2],
		TIRS1: grids[landsat.BandTIRS1],
	}
	if toLatLon, err := refScene.PixelToLatLon(); err == nil {
		input.ToLatLon = toLatLon
	}
	if md, err := refScene.Metadata(); err == nil {
		input.Metadata = &md
	}

	opts := pipeline.Options{
		ML:               ml,
		AL:               al,
		HotspotStd:       hotspotStd,
		MinClusterSize:   minClusterSize,
		MaxHeatmapPoints: maxPoints,
		PixelResolutionM: refScene.PixelResolutionM(0),
	}

	result, err := pipeline.Run(input, opts)
	if err != nil {
		var shapeErr *raster.ShapeError
		if errors.As(err, &shapeErr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if notifyErr := notification.SendErrorNotification(err.Error()); notifyErr != nil {
			log.Printf("failed to send error notification: %v", notifyErr)
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if result.Insights.SeverityValue >= int(insights.SeveritySevere) && result.UHI.UHIIntensity != nil {
		go func() {
			if err := notification.SendHeatAlert(result.JobID, result.Insights.Severity, *result.UHI.UHIIntensity); err != nil {
				log.Printf("failed to send heat alert: %v", err)
			}
		}()
	}

	if err := s.jobs.Set(result.JobID, result); err != nil {
		log.Printf("failed to store job %s: %v", result.JobID, err)
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) job(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid job id %q", id))
		return
	}
	result, ok := s.jobs.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("job %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, result)
}
