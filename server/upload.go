package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/pipeline"
)

var (
	errBadUpload = errors.New("invalid upload")
	errTooLarge  = errors.New("upload too large")
)

// imageField is the multipart field carrying the uploaded file.
const imageField = "image"

// parseUpload reads the model, threshold and image from a multipart form.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (pipeline.Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return pipeline.Request{}, errors.Wrapf(errTooLarge, "limit is %d bytes", maxErr.Limit)
		}
		return pipeline.Request{}, errors.Wrap(errBadUpload, err.Error())
	}

	req, err := s.parseSettings(r.FormValue("model"), r.FormValue("threshold"))
	if err != nil {
		return pipeline.Request{}, err
	}

	file, header, err := r.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return pipeline.Request{}, pipeline.ErrNoImage
		}
		return pipeline.Request{}, errors.Wrap(errBadUpload, err.Error())
	}
	defer file.Close()

	if _, err := images.FormatFromPath(header.Filename); err != nil {
		return pipeline.Request{}, errors.Wrapf(errBadUpload, "%s: accepted types are %s",
			err, strings.Join(images.Extensions, ", "))
	}

	img, _, err := images.Decode(file)
	if err != nil {
		return pipeline.Request{}, errors.Wrap(errBadUpload, err.Error())
	}
	req.Image = img
	return req, nil
}

// parseSettings applies defaults to the model and threshold form values.
func (s *Server) parseSettings(model, threshold string) (pipeline.Request, error) {
	req := pipeline.Request{
		Model:     s.opts.DefaultModel,
		Threshold: s.opts.DefaultThreshold,
	}
	if model != "" {
		req.Model = models.Name(model)
	}
	if threshold != "" {
		v, err := strconv.ParseFloat(threshold, 32)
		if err != nil {
			return req, errors.Wrapf(pipeline.ErrInvalidThreshold, "%q", threshold)
		}
		req.Threshold = float32(v)
	}
	return req, nil
}

func formatThreshold(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', 2, 32)
}
