package httpapi

import (
	"errors"
	"net/http"

	"github.com/olegrjumin/techprint/internal/logging"
	"github.com/olegrjumin/techprint/internal/scanner"
)

const (
	msgMissingURL       = "URL parameter is required."
	msgMethodNotAllowed = "Method not allowed. Use GET."
	msgScanFailed       = "Failed to fetch or analyze the URL. Please check if the URL is correct and accessible."
)

type errorResponse struct {
	Error string `json:"error"`
}

// scanHandler handles GET /api/scan?url=<target>
func scanHandler(logger *logging.Logger, svc ScanService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllowed})
			return
		}

		targetURL := r.URL.Query().Get("url")
		if targetURL == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgMissingURL})
			return
		}

		result, err := svc.Scan(r.Context(), targetURL)
		if err != nil {
			if errors.Is(err, scanner.ErrMissingURL) {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgMissingURL})
				return
			}

			logger.Error("Error scanning URL",
				"url", targetURL,
				"request_id", RequestID(r.Context()),
				"error", err,
			)
			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Error: msgScanFailed + " (" + err.Error() + ")",
			})
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
