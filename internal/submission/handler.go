package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"prophecyorb/internal/submission/model"
	"prophecyorb/internal/submission/repository"
	"prophecyorb/internal/submission/service"
	"prophecyorb/internal/upload"
	"prophecyorb/pkg/logger"
	"prophecyorb/web"
)

type SubmissionHandler struct {
	Service *service.SubmissionService
	Uploads *upload.Store
}

func NewSubmissionHandler(service *service.SubmissionService, uploads *upload.Store) *SubmissionHandler {
	return &SubmissionHandler{Service: service, Uploads: uploads}
}

// InputPage serves the creation form on / and /input.
func (h *SubmissionHandler) InputPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/input" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := web.Render(w, "input.html", nil); err != nil {
		logger.Sugar.Errorf("Failed to render input page: %v", err)
	}
}

// OrbPage serves the viewing page along with the current vision count.
func (h *SubmissionHandler) OrbPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	total, err := h.Service.Count()
	if err != nil {
		logger.Sugar.Errorf("Failed to count submissions for orb page: %v", err)
		http.Error(w, "The orb is clouded", http.StatusInternalServerError)
		return
	}

	data := struct{ TotalSubmissions int }{TotalSubmissions: total}
	if err := web.Render(w, "orb.html", data); err != nil {
		logger.Sugar.Errorf("Failed to render orb page: %v", err)
	}
}

// Submit accepts a multipart form carrying text, a canvas drawing as a data
// URL, or an uploaded image file.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Bound the whole request; the validator enforces the precise image cap.
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(upload.MaxUploadBytes + 1<<20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid submission form")
		return
	}

	textContent := r.FormValue("text_content")
	canvasData := r.FormValue("canvas_data")
	hasCanvas := canvasData != "" && canvasData != "null"

	file, _, fileErr := r.FormFile("doodle_file")
	hasFile := fileErr == nil
	if hasFile {
		defer file.Close()
	} else if !errors.Is(fileErr, http.ErrMissingFile) {
		writeError(w, http.StatusBadRequest, "Invalid submission form")
		return
	}

	if hasCanvas && hasFile {
		writeError(w, http.StatusBadRequest, "Cannot submit both drawing and file upload. Choose one.")
		return
	}

	var doodleFilename string
	var err error
	switch {
	case hasCanvas:
		doodleFilename, err = h.Uploads.SaveDataURL(canvasData)
	case hasFile:
		var raw []byte
		raw, err = io.ReadAll(io.LimitReader(file, upload.MaxUploadBytes+1))
		if err == nil {
			doodleFilename, err = h.Uploads.Save(raw)
		}
	}
	if err != nil {
		if upload.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Sugar.Errorf("Failed to store uploaded doodle: %v", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	id, err := h.Service.Submit(textContent, doodleFilename)
	if err != nil {
		if errors.Is(err, service.ErrNothingToSubmit) {
			writeError(w, http.StatusBadRequest, "Must provide either text or image")
			return
		}
		logger.Sugar.Errorf("Failed to save submission: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save submission")
		return
	}

	writeJSON(w, http.StatusOK, model.SubmitResponse{
		Success:      true,
		Message:      "received",
		SubmissionID: id,
	})
}

// Scry returns one random prior prophecy. An empty orb is not an error.
func (h *SubmissionHandler) Scry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	submission, err := h.Service.Scry()
	if err != nil {
		if errors.Is(err, repository.ErrEmptyOrb) {
			writeJSON(w, http.StatusOK, model.ScryResponse{
				Success: false,
				Message: "The orb is empty... no visions to see",
			})
			return
		}
		logger.Sugar.Errorf("Failed to scry: %v", err)
		writeError(w, http.StatusInternalServerError, "The orb refuses to reveal its secrets")
		return
	}

	writeJSON(w, http.StatusOK, model.ScryResponse{Success: true, Submission: submission})
}

// Stats reports the total number of stored prophecies.
func (h *SubmissionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	total, err := h.Service.Count()
	if err != nil {
		logger.Sugar.Errorf("Failed to read stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Cannot read orb statistics")
		return
	}

	writeJSON(w, http.StatusOK, model.StatsResponse{TotalSubmissions: total})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.ErrorResponse{Error: message})
}
