package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/opensourceavatars/avatar-site/internal/arweave"
	"github.com/opensourceavatars/avatar-site/internal/metrics"
	"github.com/opensourceavatars/avatar-site/internal/models"
	"github.com/opensourceavatars/avatar-site/internal/storage"
	"github.com/rs/zerolog"
)

type Handler struct {
	store   storage.Store
	gateway string
	logger  zerolog.Logger
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PaginationResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	// TotalCount is set by listings that count their rows, even when zero.
	TotalCount *int        `json:"total_count,omitempty"`
}

func NewHandler(store storage.Store, gateway string, logger zerolog.Logger) *Handler {
	return &Handler{
		store:   store,
		gateway: gateway,
		logger:  logger.With().Str("component", "gallery").Logger(),
	}
}

func (h *Handler) ListAvatars(c *gin.Context) {
	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	avatars, err := h.store.ListAvatars(c.Request.Context(), limit, offset)
	if err != nil {
		h.fail(c, err, "Failed to fetch avatars")
		return
	}

	total, err := h.store.CountAvatars(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to count avatars")
		return
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:       h.views(avatars),
		Page:       page,
		Limit:      limit,
		TotalCount: &total,
	})
}

func (h *Handler) GetAvatar(c *gin.Context) {
	avatar, ok := h.lookupAvatar(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.view(avatar))
}

func (h *Handler) SearchAvatars(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Search query is required"})
		return
	}

	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	avatars, err := h.store.SearchAvatars(c.Request.Context(), query, limit, offset)
	if err != nil {
		h.fail(c, err, "Failed to search avatars")
		return
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  h.views(avatars),
		Page:  page,
		Limit: limit,
	})
}

// DownloadAvatar counts the download and redirects to the model file on the
// Arweave gateway.
func (h *Handler) DownloadAvatar(c *gin.Context) {
	avatar, ok := h.lookupAvatar(c)
	if !ok {
		return
	}

	target := arweave.URL(h.gateway, avatar.ModelTxID)
	if target == "" {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Avatar has no model file"})
		return
	}

	if err := h.store.IncrementDownloads(c.Request.Context(), avatar.ID); err != nil && !errors.Is(err, storage.ErrAvatarNotFound) {
		h.logger.Warn().Err(err).Str("avatar_id", avatar.ID.String()).Msg("Failed to count download")
	}
	metrics.AvatarDownloadsTotal.Inc()

	c.Redirect(http.StatusFound, target)
}

func (h *Handler) ListCollections(c *gin.Context) {
	collections, err := h.store.ListCollections(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch collections")
		return
	}

	if collections == nil {
		collections = []*models.Collection{}
	}

	c.JSON(http.StatusOK, collections)
}

func (h *Handler) GetCollection(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid collection ID"})
		return
	}

	collection, err := h.store.GetCollection(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to fetch collection")
		return
	}

	if collection == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Collection not found"})
		return
	}

	c.JSON(http.StatusOK, collection)
}

func (h *Handler) GetAvatarsByCollection(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid collection ID"})
		return
	}

	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	avatars, err := h.store.GetAvatarsByCollection(c.Request.Context(), collectionID, limit, offset)
	if err != nil {
		h.fail(c, err, "Failed to fetch avatars")
		return
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  h.views(avatars),
		Page:  page,
		Limit: limit,
	})
}

func (h *Handler) lookupAvatar(c *gin.Context) (*models.Avatar, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid avatar ID"})
		return nil, false
	}

	avatar, err := h.store.GetAvatar(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to fetch avatar")
		return nil, false
	}

	if avatar == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Avatar not found"})
		return nil, false
	}

	return avatar, true
}

func (h *Handler) view(a *models.Avatar) models.AvatarView {
	return models.AvatarView{
		Avatar:       a,
		ModelURL:     arweave.URL(h.gateway, a.ModelTxID),
		ThumbnailURL: arweave.URL(h.gateway, a.ThumbnailTxID),
	}
}

func (h *Handler) views(avatars []*models.Avatar) []models.AvatarView {
	out := make([]models.AvatarView, 0, len(avatars))
	for _, a := range avatars {
		out = append(out, h.view(a))
	}
	return out
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	h.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msg})
}

// Utility functions
func getPaginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	return page, limit
}
