package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"html/template"
	"image"
	"net/http"
	"strconv"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/pipeline"
	"github.com/nvr-ai/go-detect/report"
)

// detectResponse is the JSON body of a successful detection.
type detectResponse struct {
	RunID        string          `json:"run_id"`
	Model        models.Name     `json:"model"`
	Threshold    float32         `json:"threshold"`
	Empty        bool            `json:"empty"`
	Records      []report.Record `json:"records"`
	Summary      report.Summary  `json:"summary"`
	Hints        []string        `json:"hints,omitempty"`
	ElapsedMS    int64           `json:"elapsed_ms"`
	AnnotatedPNG string          `json:"annotated_png"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type modelResponse struct {
	models.Spec
	Default bool `json:"default"`
}

// pageData feeds templates/index.html.
type pageData struct {
	Models     []models.Spec
	Model      models.Name
	Threshold  float32
	Guide      []models.GuideSection
	Error      string
	Result     *resultView
	Recommends [2]float32
}

type resultView struct {
	Original  template.URL
	Annotated template.URL
	Records   []report.Record
	Summary   report.Summary
	Hints     []string
	Empty     bool
	ElapsedMS int64
}

func (s *Server) page(model models.Name, threshold float32) pageData {
	return pageData{
		Models:     models.Registry,
		Model:      model,
		Threshold:  threshold,
		Guide:      models.Guide(),
		Recommends: models.RecommendedConfidence,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, s.page(s.opts.DefaultModel, s.opts.DefaultThreshold))
}

func (s *Server) handleDetectPage(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseUpload(w, r)
	data := s.page(req.Model, req.Threshold)
	if data.Model == "" {
		data = s.page(s.opts.DefaultModel, s.opts.DefaultThreshold)
	}
	if err != nil {
		data.Error = err.Error()
		s.render(w, statusFor(err), data)
		return
	}

	result, err := s.runner.Run(r.Context(), req)
	if err != nil {
		data.Error = err.Error()
		s.render(w, statusFor(err), data)
		return
	}

	original, err := dataURL(result.Original)
	if err != nil {
		s.renderError(w, err)
		return
	}
	annotated, err := dataURL(result.Annotated)
	if err != nil {
		s.renderError(w, err)
		return
	}
	data.Result = &resultView{
		Original:  original,
		Annotated: annotated,
		Records:   result.Records,
		Summary:   result.Summary,
		Hints:     result.Hints,
		Empty:     result.Empty(),
		ElapsedMS: result.Elapsed.Milliseconds(),
	}
	s.render(w, http.StatusOK, data)
}

func (s *Server) handleDetectAPI(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.runner.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp, err := newDetectResponse(result)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	resp := make([]modelResponse, len(models.Registry))
	for i, spec := range models.Registry {
		resp[i] = modelResponse{Spec: spec, Default: spec.Name == s.opts.DefaultModel}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "history is disabled"})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	runs, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleHistoryRecords(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "history is disabled"})
		return
	}

	records, err := s.history.Records(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.opts.Profiler == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "stats are disabled"})
		return
	}
	s.writeJSON(w, http.StatusOK, s.opts.Profiler.Stats())
}

func newDetectResponse(result *pipeline.Result) (*detectResponse, error) {
	var buf bytes.Buffer
	if err := images.Encode(&buf, result.Annotated, images.FormatPNG); err != nil {
		return nil, err
	}
	return &detectResponse{
		RunID:        result.RunID.String(),
		Model:        result.Model,
		Threshold:    result.Threshold,
		Empty:        result.Empty(),
		Records:      result.Records,
		Summary:      result.Summary,
		Hints:        result.Hints,
		ElapsedMS:    result.Elapsed.Milliseconds(),
		AnnotatedPNG: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// dataURL encodes img as an inline PNG for the result page.
func dataURL(img image.Image) (template.URL, error) {
	var buf bytes.Buffer
	if err := images.Encode(&buf, img, images.FormatPNG); err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.renderError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	s.log.WithError(err).Error("failed to render page")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).Error("request failed")
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("failed to write response")
	}
}
