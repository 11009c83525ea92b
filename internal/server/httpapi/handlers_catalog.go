package httpapi

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/avolkov/wardrobe/internal/common"
	"github.com/avolkov/wardrobe/internal/server/models"
)

func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.ListSections(r.Context(), sessionUser(r).Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*models.Section{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateSection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.catalog.CreateSection(r.Context(), sessionUser(r).Email, req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusCreated, fmt.Sprintf("Section %q added.", req.Name))
}

func (s *Server) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.catalog.DeleteSection(r.Context(), sessionUser(r).Email, name); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusOK, fmt.Sprintf("Section %q deleted.", name))
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SectionName string `json:"sectionName"`
		Category    string `json:"category"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.catalog.AddCategory(r.Context(), sessionUser(r).Email, req.SectionName, req.Category); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusCreated, fmt.Sprintf("Category %q added.", req.Category))
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	section, err := pathParam(r, "section")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	category, err := pathParam(r, "category")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.catalog.RemoveCategory(r.Context(), sessionUser(r).Email, section, category); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusOK, fmt.Sprintf("Category %q deleted.", category))
}

func (s *Server) handleListDresses(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.ListDresses(r.Context(), sessionUser(r).Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*models.Dress{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUploadDress(w http.ResponseWriter, r *http.Request) {
	body, size, contentType, err := imageFromRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer body.Close()

	name := r.FormValue("name")
	section := r.FormValue("section")
	category := r.FormValue("category")
	if name == "" || section == "" || category == "" {
		s.writeError(w, r, fmt.Errorf("%w: name, section and category are required", common.ErrorValidation))
		return
	}

	dress, err := s.catalog.UploadDress(r.Context(), sessionUser(r).Email, name, section, category, body, size, contentType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Dress added.",
		"dress":   dress,
	})
}

func (s *Server) handleUpdateDress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string   `json:"name"`
		Section  string   `json:"section"`
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	dress, err := s.catalog.UpdateDress(r.Context(), chi.URLParam(r, "id"), sessionUser(r).Email, req.Name, req.Section, req.Category, req.Tags)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Dress updated.",
		"dress":   dress,
	})
}

func (s *Server) handleDeleteDress(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteDress(r.Context(), chi.URLParam(r, "id"), sessionUser(r).Email); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusOK, "Dress deleted.")
}

func (s *Server) handleToggleFavourite(w http.ResponseWriter, r *http.Request) {
	isFavorite, err := s.catalog.ToggleFavourite(r.Context(), chi.URLParam(r, "id"), sessionUser(r).Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"isFavorite": isFavorite,
	})
}

func (s *Server) handleListFavourites(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.ListFavourites(r.Context(), sessionUser(r).Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*models.Dress{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.Search(r.Context(), sessionUser(r).Email, r.URL.Query().Get("query"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.catalog.Stats(r.Context(), sessionUser(r).Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	backup, err := s.catalog.Backup(r.Context(), sessionUser(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="wardrobe-backup.json"`)
	s.writeJSON(w, http.StatusOK, backup)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sections []*models.Section `json:"sections"`
		Dresses  []*models.Dress   `json:"dresses"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	addedSections, addedDresses, err := s.catalog.Restore(r.Context(), sessionUser(r).Email, req.Sections, req.Dresses)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Backup restored.",
		"addedSections": addedSections,
		"addedDresses":  addedDresses,
	})
}

func (s *Server) handleResetDefaults(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.ResetDefaults(r.Context(), sessionUser(r).Email); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusOK, "Wardrobe reset to defaults.")
}

// handleFeedback serves both the public route and the authenticated one; a
// session, when present, supplies the default sender name.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	name := req.Name
	if name == "" {
		if user := sessionUser(r); user != nil {
			name = user.Name
		}
	}

	if err := s.catalog.SubmitFeedback(r.Context(), name, req.Message); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusCreated, "Thanks for the feedback!")
}

// pathParam returns the decoded URL parameter; names and categories may
// contain spaces or slashes.
func pathParam(r *http.Request, key string) (string, error) {
	raw := chi.URLParam(r, key)
	value, err := url.PathUnescape(raw)
	if err != nil || value == "" {
		return "", fmt.Errorf("%w: missing %s", common.ErrorValidation, key)
	}
	return value, nil
}
