package controllers

import (
	"errors"
	"net/http"

	"zoblogs/internal/models"
	"zoblogs/internal/providers"
	"zoblogs/internal/services"
)

type uploadResponse struct {
	Cid string `json:"cid"`
}

// UploadController pins plain post documents without minting a coin.
type UploadController struct {
	logger providers.Logger
	legacy services.LegacyServiceInterface
}

func NewUploadController(logger providers.Logger, legacy services.LegacyServiceInterface) *UploadController {
	return &UploadController{
		logger: logger,
		legacy: legacy,
	}
}

func (uc *UploadController) Upload(w http.ResponseWriter, r *http.Request) {
	var doc models.PostDocument
	if err := decodeBody(w, r, maxRequestBodySize, &doc); err != nil {
		writeError(w, http.StatusBadRequest, "Title and content are required")
		return
	}

	cid, err := uc.legacy.Upload(r.Context(), doc)
	switch {
	case errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, "Title and content are required")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to upload to IPFS")
	default:
		writeJSON(w, http.StatusOK, uploadResponse{Cid: cid})
	}
}
