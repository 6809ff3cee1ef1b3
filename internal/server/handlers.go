package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/yomitori/internal/export"
	"github.com/hyperjump/yomitori/internal/extract"
	"github.com/hyperjump/yomitori/internal/models"
	"github.com/hyperjump/yomitori/internal/prompt"
)

// maxUploadBytes bounds one multipart extraction request.
const maxUploadBytes = 64 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"model_configured": s.model != nil,
		"provider":         s.config.Vision.Provider,
	}
	if s.model != nil {
		resp["model"] = s.model.Name()
	} else if s.modelErr != nil {
		resp["configuration_error"] = s.modelErr.Error()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// settingsFromForm snapshots the processing toggles sent with an extraction
// request.
func settingsFromForm(r *http.Request) models.ExtractionSettings {
	formBool := func(key string) bool {
		v := r.FormValue(key)
		return v == "true" || v == "1"
	}
	lang := r.FormValue("target_language")
	if lang == "" {
		lang = prompt.SameAsOriginal
	}
	mode := r.FormValue("ocr_mode")
	if mode == "" {
		mode = prompt.ModeLegal
	}
	return models.ExtractionSettings{
		TargetLanguage:      lang,
		OCRMode:             mode,
		PreserveFormatting:  formBool("preserve_formatting"),
		FixGrammar:          formBool("fix_grammar"),
		IncludeConfidence:   formBool("include_confidence"),
		SeparatePages:       formBool("separate_pages"),
		IncludeImagesInDocx: formBool("include_images_in_docx"),
	}
}

func buildPrompt(settings models.ExtractionSettings) string {
	return prompt.Build(prompt.Options{
		Mode:               settings.OCRMode,
		TargetLanguage:     settings.TargetLanguage,
		PreserveFormatting: settings.PreserveFormatting,
		FixGrammar:         settings.FixGrammar,
		IncludeConfidence:  settings.IncludeConfidence,
	})
}

func readUpload(fh *multipart.FileHeader) (extract.File, error) {
	f, err := fh.Open()
	if err != nil {
		return extract.File{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return extract.File{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return extract.File{
		Name:     fh.Filename,
		Data:     data,
		MIMEType: fh.Header.Get("Content-Type"),
	}, nil
}

func (s *Server) handleExtractAll(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		s.respondError(w, http.StatusServiceUnavailable, s.configErrorMessage())
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	uploads := r.MultipartForm.File["images"]
	if len(uploads) == 0 {
		s.respondError(w, http.StatusBadRequest, "no images uploaded")
		return
	}

	files := make([]extract.File, 0, len(uploads))
	for _, fh := range uploads {
		f, err := readUpload(fh)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		files = append(files, f)
	}

	settings := settingsFromForm(r)
	sess := s.session(r)

	items, skips, err := s.extractor.ExtractAll(r.Context(), files, buildPrompt(settings))
	// Reprocessing replaces the session's accumulated items wholesale, even
	// when the batch fails partway: whatever succeeded before the failure is
	// retained.
	s.sessions.ReplaceItems(sess.Token, items)

	if err != nil {
		s.logger.Error("batch extraction failed", zap.Error(err))
		s.respondJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error": err.Error(),
			"items": items,
			"skips": skips,
		})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"skips": skips,
	})
}

func (s *Server) handleExtractOne(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		s.respondError(w, http.StatusServiceUnavailable, s.configErrorMessage())
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	fhs := r.MultipartForm.File["image"]
	if len(fhs) == 0 {
		s.respondError(w, http.StatusBadRequest, "no image uploaded")
		return
	}
	file, err := readUpload(fhs[0])
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings := settingsFromForm(r)
	item, err := s.extractor.ExtractOne(r.Context(), file, buildPrompt(settings))
	if err != nil {
		s.logger.Error("extraction failed", zap.String("file", file.Name), zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	if item == nil {
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"item":    nil,
			"warning": fmt.Sprintf("no text detected in %s", file.Name),
		})
		return
	}
	s.sessions.AppendItems(s.session(r).Token, []models.ExtractionItem{*item})
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"item": item})
}

func (s *Server) configErrorMessage() string {
	if s.modelErr != nil {
		return s.modelErr.Error()
	}
	return "vision model is not configured"
}

func (s *Server) handleSessionItems(w http.ResponseWriter, r *http.Request) {
	items := s.sessions.Items(s.session(r).Token)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

type editItemRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleEditItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid item index")
		return
	}
	var req editItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !s.sessions.UpdateItemText(s.session(r).Token, index, req.Text) {
		s.respondError(w, http.StatusNotFound, "no such item")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(s.session(r).Token)
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

type saveDocumentRequest struct {
	Name     string                    `json:"name"`
	Settings models.ExtractionSettings `json:"settings"`
}

func (s *Server) handleSaveDocument(w http.ResponseWriter, r *http.Request) {
	var req saveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "document name is required")
		return
	}
	sess := s.session(r)
	items := s.sessions.Items(sess.Token)
	if len(items) == 0 {
		s.respondError(w, http.StatusBadRequest, "no extraction results to save")
		return
	}

	texts := make([]string, len(items))
	names := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
		names[i] = item.SourceName
	}

	id, err := s.store.SaveDocument(r.Context(), sess.UserID, req.Name, texts, names, req.Settings)
	if err != nil {
		s.logger.Error("save document failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to save document")
		return
	}

	if s.index != nil {
		doc := &models.SavedDocument{ID: id, OwnerID: sess.UserID, Name: req.Name, Texts: texts, Names: names}
		if err := s.index.IndexDocument(r.Context(), doc); err != nil {
			// Search lags behind the store; the save itself succeeded.
			s.logger.Warn("index saved document failed", zap.String("id", id), zap.Error(err))
		}
	}

	s.respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListDocuments(r.Context(), s.session(r).UserID)
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []*models.SavedDocument{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (s *Server) handleSearchDocuments(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		s.respondError(w, http.StatusNotImplemented, "search not enabled")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	sess := s.session(r)
	hits, err := s.index.Search(r.Context(), sess.UserID, query, limit)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	docs := make([]*models.SavedDocument, 0, len(hits))
	for _, hit := range hits {
		doc, err := s.store.GetDocument(r.Context(), sess.UserID, hit.ID)
		if err != nil {
			// Index may be stale relative to the store.
			s.logger.Debug("search hit not in store", zap.String("id", hit.ID))
			continue
		}
		docs = append(docs, doc)
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := s.store.DeleteDocument(r.Context(), s.session(r).UserID, id)
	if err != nil {
		s.logger.Error("delete document failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if deleted && s.index != nil {
		if err := s.index.DeleteDocument(r.Context(), id); err != nil {
			s.logger.Warn("deindex document failed", zap.String("id", id), zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

type exportRequest struct {
	Name       string                    `json:"name"`
	Settings   models.ExtractionSettings `json:"settings"`
	Formatting *models.FormattingConfig  `json:"formatting,omitempty"`
}

func (s *Server) handleExportSession(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		req.Name = "extracted_text"
	}
	items := s.sessions.Items(s.session(r).Token)
	if len(items) == 0 {
		s.respondError(w, http.StatusBadRequest, "no extraction results to export")
		return
	}

	formatting := s.defaultFormatting()
	if req.Formatting != nil {
		formatting = *req.Formatting
	} else {
		formatting.SeparatePages = req.Settings.SeparatePages
		formatting.IncludeImages = req.Settings.IncludeImagesInDocx
		formatting.PreserveOriginalFormatting = req.Settings.PreserveFormatting
	}

	s.writeArtifact(w, format, req.Name, items, req.Settings, formatting)
}

func (s *Server) handleExportSaved(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := chi.URLParam(r, "format")

	doc, err := s.store.GetDocument(r.Context(), s.session(r).UserID, id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	items, err := export.PairItems(doc.Texts, doc.Names)
	if err != nil {
		s.logger.Error("saved document is inconsistent", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	formatting := s.defaultFormatting()
	formatting.SeparatePages = doc.Settings.SeparatePages
	formatting.PreserveOriginalFormatting = doc.Settings.PreserveFormatting
	// Image payloads are not persisted, so saved-document exports never embed
	// images regardless of the stored setting.
	formatting.IncludeImages = false

	s.writeArtifact(w, format, doc.Name, items, doc.Settings, formatting)
}

func (s *Server) writeArtifact(w http.ResponseWriter, format, name string, items []models.ExtractionItem, settings models.ExtractionSettings, formatting models.FormattingConfig) {
	switch format {
	case "docx":
		data, err := s.assembler.AssembleDocx(name, items, settings, formatting)
		if err != nil {
			s.logger.Error("docx export failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeDownload(w, name+".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", data)
	case "text", "txt":
		out := s.assembler.AssembleText(name, items, settings)
		s.writeDownload(w, name+".txt", "text/plain; charset=utf-8", []byte(out))
	case "xlsx":
		data, err := s.assembler.AssembleXlsx(name, items, settings)
		if err != nil {
			s.logger.Error("xlsx export failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeDownload(w, name+".xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unsupported export format: %s", format))
	}
}

func (s *Server) writeDownload(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		s.logger.Error("write download", zap.Error(err))
	}
}
