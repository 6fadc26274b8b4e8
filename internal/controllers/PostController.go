package controllers

import (
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"zoblogs/internal/metadata"
	"zoblogs/internal/models"
	"zoblogs/internal/providers"
	"zoblogs/internal/services"
)

// Posts may carry an inline featured image.
const maxWriteBodySize = 10 << 20

type imagePayload struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

type writeRequest struct {
	Title   string        `json:"title"`
	Content string        `json:"content"`
	Author  string        `json:"author"`
	Image   *imagePayload `json:"image,omitempty"`
}

type writeResponse struct {
	*services.CreatePostResult
	Warning string `json:"warning,omitempty"`
}

type legacyPostResponse struct {
	Cid     string `json:"cid"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type userPostsResponse struct {
	Address string                `json:"address"`
	Posts   []models.PlatformPost `json:"posts"`
}

type PostController struct {
	logger providers.Logger
	posts  services.PostServiceInterface
	reader services.ReaderServiceInterface
	legacy services.LegacyServiceInterface
}

func NewPostController(logger providers.Logger, posts services.PostServiceInterface, reader services.ReaderServiceInterface, legacy services.LegacyServiceInterface) *PostController {
	return &PostController{
		logger: logger,
		posts:  posts,
		reader: reader,
		legacy: legacy,
	}
}

func (pc *PostController) Write(w http.ResponseWriter, r *http.Request) {
	var payload writeRequest
	if err := decodeBody(w, r, maxWriteBodySize, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	in := services.CreatePostInput{
		Title:   payload.Title,
		Content: payload.Content,
		Author:  payload.Author,
	}
	if payload.Image != nil && len(payload.Image.Data) > 0 {
		in.Image = &metadata.Image{
			Name:        payload.Image.Name,
			ContentType: payload.Image.ContentType,
			Data:        payload.Image.Data,
		}
	}

	result, err := pc.posts.CreatePost(r.Context(), in)
	if err != nil && errors.Is(err, services.ErrRegistryWrite) && result != nil {
		writeJSON(w, http.StatusCreated, writeResponse{CreatePostResult: result, Warning: services.ErrRegistryWrite.Error()})
		return
	}
	if err != nil {
		writeServiceError(w, pc.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, writeResponse{CreatePostResult: result})
}

// Show serves a coin post when id is an address and a legacy document
// otherwise.
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if common.IsHexAddress(id) {
		details, err := pc.reader.FetchPostDetails(r.Context(), id)
		if err != nil {
			writeServiceError(w, pc.logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, details)
		return
	}

	doc, err := pc.legacy.GetPost(r.Context(), id)
	if err != nil {
		writeServiceError(w, pc.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, legacyPostResponse{Cid: id, Title: doc.Title, Content: doc.Content})
}

func (pc *PostController) UserPosts(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")

	posts, err := pc.reader.FetchUserPosts(r.Context(), address)
	if err != nil {
		writeServiceError(w, pc.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userPostsResponse{Address: address, Posts: posts})
}
