package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wamunyima3/CloudScribe/internal/api/middleware"
	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/core/rbac"
)

type WordHandler struct {
	words ports.WordService
	table *rbac.Table
}

func NewWordHandler(words ports.WordService, table *rbac.Table) *WordHandler {
	return &WordHandler{words: words, table: table}
}

// Search lists dictionary entries. Unapproved entries are included only for
// callers allowed to approve them.
//
// @Summary      Search words
// @Tags         words
// @Produce      json
// @Param        q           query  string  false  "Word or translation fragment"
// @Param        language    query  string  false  "Language code"
// @Param        tag         query  string  false  "Tag"
// @Param        difficulty  query  int     false  "Difficulty 1-5"
// @Param        page        query  int     false  "Page"
// @Param        limit       query  int     false  "Page size"
// @Success      200  {object}  pageResponse{data=[]domain.Word}
// @Router       /words/search [get]
func (h *WordHandler) Search(c echo.Context) error {
	var req searchWordsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	f := ports.WordFilter{
		Query:        req.Query,
		LanguageCode: req.LanguageCode,
		Tag:          req.Tag,
		Difficulty:   req.Difficulty,
		PageRequest:  domain.PageRequest{Page: req.Page, Limit: req.Limit}.Normalize(),
	}
	if id, ok := middleware.IdentityFrom(c); ok {
		f.IncludeUnapproved = h.table.HasPermission(id.Role, domain.PermWordApprove)
	}

	words, total, err := h.words.Search(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return successPage(c, http.StatusOK, nonNil(words), f.PageRequest, total)
}

// Get returns one word. Unapproved words are visible to their contributor
// and to approvers only.
//
// @Summary      Get word
// @Tags         words
// @Produce      json
// @Param        id   path      string  true  "Word ID"
// @Success      200  {object}  dataResponse{data=domain.Word}
// @Failure      404  {object}  ErrorResponse
// @Router       /words/{id} [get]
func (h *WordHandler) Get(c echo.Context) error {
	w, err := h.words.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !w.Approved {
		id, _ := middleware.IdentityFrom(c)
		if !h.table.SeesUnpublished(id, w.AddedByID, domain.PermWordApprove) {
			return domain.ErrWordNotFound
		}
	}
	return success(c, http.StatusOK, w)
}

// Create adds a word with optional translations.
//
// @Summary      Create word
// @Tags         words
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createWordRequest  true  "Word"
// @Success      201   {object}  dataResponse{data=domain.Word}
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /words [post]
func (h *WordHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req createWordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	w, err := h.words.Create(c.Request().Context(), id, toCreateWordInput(req))
	if err != nil {
		return err
	}
	middleware.SetAuditEntity(c, w.ID)
	return success(c, http.StatusCreated, w)
}

// Update edits a word. Owner or ADMIN only.
//
// @Summary      Update word
// @Tags         words
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Word ID"
// @Param        body  body      updateWordRequest  true  "Changes"
// @Success      200   {object}  dataResponse{data=domain.Word}
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /words/{id} [put]
func (h *WordHandler) Update(c echo.Context) error {
	var req updateWordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	w, err := h.words.Update(c.Request().Context(), c.Param("id"), toUpdateWordInput(req))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, w)
}

// Delete removes a word. Owner or ADMIN only.
//
// @Summary      Delete word
// @Tags         words
// @Security     BearerAuth
// @Param        id   path  string  true  "Word ID"
// @Success      200  {object}  dataResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /words/{id} [delete]
func (h *WordHandler) Delete(c echo.Context) error {
	if err := h.words.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return successMessage(c, http.StatusOK, "Word deleted", nil)
}

// Approve publishes a word and notifies its contributor.
//
// @Summary      Approve word
// @Tags         words
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Word ID"
// @Success      200  {object}  dataResponse{data=domain.Word}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /words/{id}/approve [post]
func (h *WordHandler) Approve(c echo.Context) error {
	w, err := h.words.Approve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, w)
}

// AddTranslation suggests a translation and notifies the word's owner.
//
// @Summary      Add translation
// @Tags         words
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Word ID"
// @Param        body  body      translationRequest  true  "Translation"
// @Success      201   {object}  dataResponse{data=domain.Word}
// @Failure      404   {object}  ErrorResponse
// @Router       /words/{id}/translations [post]
func (h *WordHandler) AddTranslation(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req translationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	w, err := h.words.AddTranslation(c.Request().Context(), id, c.Param("id"), ports.TranslationInput{
		Text:         req.Text,
		LanguageCode: req.LanguageCode,
	})
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, w)
}

// UpdateTranslation edits a translation. Its author or ADMIN only.
//
// @Summary      Update translation
// @Tags         words
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Word ID"
// @Param        tid   path      string                    true  "Translation ID"
// @Param        body  body      updateTranslationRequest  true  "Text"
// @Success      200   {object}  dataResponse{data=domain.Word}
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /words/{id}/translations/{tid} [put]
func (h *WordHandler) UpdateTranslation(c echo.Context) error {
	var req updateTranslationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	w, err := h.words.UpdateTranslation(c.Request().Context(), c.Param("id"), c.Param("tid"), req.Text)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, w)
}

// VerifyTranslation marks a translation as verified.
//
// @Summary      Verify translation
// @Tags         words
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Word ID"
// @Param        tid  path      string  true  "Translation ID"
// @Success      200  {object}  dataResponse{data=domain.Word}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /words/{id}/translations/{tid}/verify [post]
func (h *WordHandler) VerifyTranslation(c echo.Context) error {
	w, err := h.words.VerifyTranslation(c.Request().Context(), c.Param("id"), c.Param("tid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, w)
}

// Owner resolves the contributor of the word in the :id path parameter.
func (h *WordHandler) Owner(c echo.Context) (string, error) {
	return h.words.Owner(c.Request().Context(), c.Param("id"))
}

// TranslationAuthor resolves the author of the :tid translation of word :id.
func (h *WordHandler) TranslationAuthor(c echo.Context) (string, error) {
	return h.words.TranslationAuthor(c.Request().Context(), c.Param("id"), c.Param("tid"))
}
