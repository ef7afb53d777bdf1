package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/monotes/monotes/internal/common"
	"github.com/monotes/monotes/internal/logging"
	"github.com/monotes/monotes/internal/server/models"
	"github.com/monotes/monotes/internal/server/services"
)

// UserService is the authentication surface the handlers need.
type UserService interface {
	Register(ctx context.Context, userName, password string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// NoteService is the note surface the handlers need.
type NoteService interface {
	Upsert(ctx context.Context, userID, noteID, content string, updatedAt int64) (*models.Note, error)
	Fetch(ctx context.Context, userID, noteID string) (*models.Note, error)
	List(ctx context.Context, userID string) ([]models.Note, error)
	Search(ctx context.Context, userID, q string) ([]models.Note, error)
	Update(ctx context.Context, userID, noteID, content string, updatedAt int64) (*models.Note, error)
	SoftDelete(ctx context.Context, userID, noteID string) error
}

// Handler carries the services behind the HTTP routes.
type Handler struct {
	users UserService
	notes NoteService
	log   logging.Logger
}

func NewHandler(users UserService, notes NoteService, log logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop()
	}
	return &Handler{users: users, notes: notes, log: log}
}

type credentialsRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"userId"`
}

// noteDTO is the wire shape of a note record.
type noteDTO struct {
	NoteID    string `json:"noteId"`
	Content   string `json:"content"`
	UpdatedAt int64  `json:"updatedAt"`
}

func toDTO(n *models.Note) noteDTO {
	return noteDTO{NoteID: n.NoteID, Content: n.Content, UpdatedAt: n.UpdatedAt}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", common.ErrValidation)
	}
	return nil
}

func (h *Handler) HandlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.UserName == "" || req.Password == "" {
		writeError(w, fmt.Errorf("%w: username and password are required", common.ErrValidation))
		return
	}

	u, err := h.users.Register(r.Context(), req.UserName, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.log.Info(r.Context(), "user registered", "user", u.ID)
	writeJSON(w, http.StatusCreated, map[string]string{"userId": u.ID})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pair, err := h.users.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       pair.UserID,
	})
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pair, err := h.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       pair.UserID,
	})
}

func (h *Handler) HandleUpsertNote(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req noteDTO
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	n, err := h.notes.Upsert(r.Context(), userID, chi.URLParam(r, "id"), req.Content, req.UpdatedAt)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"recordId": n.ID})
}

// HandleFetchNote returns null for absent and soft-deleted records, and for
// anonymous callers. The note either exists for this owner or it does not;
// there is no error case for a missing record.
func (h *Handler) HandleFetchNote(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	n, err := h.notes.Fetch(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if n == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(n))
}

func (h *Handler) listResponse(w http.ResponseWriter, list []models.Note, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]noteDTO, 0, len(list))
	for i := range list {
		out = append(out, toDTO(&list[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusOK, []noteDTO{})
		return
	}
	list, err := h.notes.List(r.Context(), userID)
	h.listResponse(w, list, err)
}

func (h *Handler) HandleSearchNotes(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusOK, []noteDTO{})
		return
	}
	list, err := h.notes.Search(r.Context(), userID, r.URL.Query().Get("q"))
	h.listResponse(w, list, err)
}

func (h *Handler) HandleUpdateNote(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req noteDTO
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	n, err := h.notes.Update(r.Context(), userID, chi.URLParam(r, "id"), req.Content, req.UpdatedAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(n))
}

func (h *Handler) HandleSoftDeleteNote(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	if err := h.notes.SoftDelete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
