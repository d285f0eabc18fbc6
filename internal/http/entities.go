package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"astro-admin-go/internal/models"
	"astro-admin-go/internal/pagination"
	"astro-admin-go/internal/services"
	"astro-admin-go/internal/store"

	"github.com/go-chi/chi/v5"
)

const maxPayloadBytes = 1 << 20

func (s *Server) State(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.Store.Snapshot())
}

func (s *Server) SliceState(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.Store.Handle(chi.URLParam(r, "slice"))
	if !ok {
		WriteError(w, http.StatusNotFound, "Unknown collection "+chi.URLParam(r, "slice"))
		return
	}
	WriteJSON(w, http.StatusOK, handle.Snapshot())
}

// Refresh reloads the first page of the requested slices, all when none
// are named.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	names := r.URL.Query()["slice"]
	for _, name := range names {
		if _, ok := s.Store.Handle(name); !ok {
			WriteError(w, http.StatusNotFound, "Unknown collection "+name)
			return
		}
	}
	params := models.ListParams{Page: 1, PageSize: s.Config.DefaultPageSize}
	if err := s.Store.Refresh(r.Context(), params, names...); err != nil {
		writeFailure(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, s.Store.Snapshot())
}

func (s *Server) ListEntities(w http.ResponseWriter, r *http.Request) {
	params := models.ParseListParams(r.URL.Query(), s.Config.DefaultPageSize)
	params.Search = services.CleanSearchTerm(params.Search)
	s.dispatch(w, r, http.StatusOK, store.Action{Op: store.OpList, Params: params})
}

func (s *Server) GetEntity(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, http.StatusOK, store.Action{Op: store.OpGet, ID: chi.URLParam(r, "id")})
}

func (s *Server) CreateEntity(w http.ResponseWriter, r *http.Request) {
	s.dispatchWithBody(w, r, http.StatusCreated, store.OpCreate)
}

func (s *Server) UpdateEntity(w http.ResponseWriter, r *http.Request) {
	s.dispatchWithBody(w, r, http.StatusOK, store.OpUpdate)
}

func (s *Server) PatchEntity(w http.ResponseWriter, r *http.Request) {
	s.dispatchWithBody(w, r, http.StatusOK, store.OpPatch)
}

func (s *Server) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, http.StatusOK, store.Action{Op: store.OpDelete, ID: chi.URLParam(r, "id")})
}

func (s *Server) dispatchWithBody(w http.ResponseWriter, r *http.Request, status int, op store.Op) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		WriteError(w, http.StatusRequestEntityTooLarge, "Payload too large")
		return
	}
	if !json.Valid(raw) {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	s.dispatch(w, r, status, store.Action{Op: op, ID: chi.URLParam(r, "id"), Payload: raw})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, status int, action store.Action) {
	name := chi.URLParam(r, "slice")
	if name == services.SliceArticles && action.Op == store.OpCreate {
		prepared, err := s.prepareArticle(action.Payload)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		action.Payload = prepared
	}
	state, err := s.Store.Dispatch(r.Context(), name, action)
	if err != nil {
		writeFailure(w, err)
		return
	}
	WriteJSON(w, status, state)
}

// prepareArticle fills in slug and status the way the editor does before
// the payload is validated.
func (s *Server) prepareArticle(raw json.RawMessage) (json.RawMessage, error) {
	var article models.Article
	if err := json.Unmarshal(raw, &article); err != nil {
		return nil, err
	}
	article = services.PrepareArticle(article, s.Catalogue.Articles.View().Items)
	return json.Marshal(article)
}

func (s *Server) UploadThumbnail(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r)
	if !services.CanManage(user, services.SliceArticles) {
		WriteError(w, http.StatusForbidden, "Not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxThumbnailBytes+maxPayloadBytes)
	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "File is larger than 5 MB.")
			return
		}
		WriteError(w, http.StatusBadRequest, "Missing thumbnail file")
		return
	}
	defer file.Close()
	result, err := s.Media.UploadThumbnail(r.Context(), chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		writeFailure(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

type PaginationResponse struct {
	Current int               `json:"current"`
	Total   int               `json:"total"`
	Items   []pagination.Item `json:"items"`
}

func (s *Server) Pagination(w http.ResponseWriter, r *http.Request) {
	total := parseInt(r.URL.Query().Get("total"), 0)
	current := pagination.Clamp(parseInt(r.URL.Query().Get("current"), 1), total)
	items := pagination.Window(current, total)
	if items == nil {
		items = []pagination.Item{}
	}
	WriteJSON(w, http.StatusOK, PaginationResponse{Current: current, Total: total, Items: items})
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
