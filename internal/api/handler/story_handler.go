package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wamunyima3/CloudScribe/internal/api/middleware"
	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/core/rbac"
)

type StoryHandler struct {
	stories ports.StoryService
	table   *rbac.Table
}

func NewStoryHandler(stories ports.StoryService, table *rbac.Table) *StoryHandler {
	return &StoryHandler{stories: stories, table: table}
}

// Search lists stories. Callers who cannot moderate only see approved stories,
// except when listing their own.
//
// @Summary      Search stories
// @Tags         stories
// @Produce      json
// @Param        q         query  string  false  "Title or content fragment"
// @Param        language  query  string  false  "Language code"
// @Param        type      query  string  false  "STORY, PROVERB, POEM or SONG"
// @Param        status    query  string  false  "PENDING, APPROVED or REJECTED"
// @Param        tag       query  string  false  "Tag"
// @Param        user_id   query  string  false  "Author ID"
// @Param        sort      query  string  false  "newest, oldest, title or ratings"
// @Param        page      query  int     false  "Page"
// @Param        limit     query  int     false  "Page size"
// @Success      200  {object}  pageResponse{data=[]storyResponse}
// @Router       /stories/search [get]
func (h *StoryHandler) Search(c echo.Context) error {
	var req searchStoriesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	f := ports.StoryFilter{
		Query:        req.Query,
		LanguageCode: req.LanguageCode,
		Type:         domain.StoryType(req.Type),
		Status:       domain.StoryStatus(req.Status),
		Tag:          req.Tag,
		UserID:       req.UserID,
		Sort:         ports.StorySort(req.Sort),
		PageRequest:  domain.PageRequest{Page: req.Page, Limit: req.Limit}.Normalize(),
	}
	if !h.seesUnpublished(c, f.UserID) {
		f.Status = domain.StoryApproved
	}

	stories, total, err := h.stories.Search(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return successPage(c, http.StatusOK, toStoryResponses(stories), f.PageRequest, total)
}

func (h *StoryHandler) seesUnpublished(c echo.Context, authorFilter string) bool {
	id, _ := middleware.IdentityFrom(c)
	return h.table.SeesUnpublished(id, authorFilter, domain.PermStoryModerate)
}

// Get returns one story.
//
// @Summary      Get story
// @Tags         stories
// @Produce      json
// @Param        id   path      string  true  "Story ID"
// @Success      200  {object}  dataResponse{data=storyResponse}
// @Failure      404  {object}  ErrorResponse
// @Router       /stories/{id} [get]
func (h *StoryHandler) Get(c echo.Context) error {
	s, err := h.stories.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if s.Status != domain.StoryApproved && !h.seesUnpublished(c, s.UserID) {
		return domain.ErrStoryNotFound
	}
	return success(c, http.StatusOK, toStoryResponse(s))
}

// Create submits a story for moderation.
//
// @Summary      Create story
// @Tags         stories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createStoryRequest  true  "Story"
// @Success      201   {object}  dataResponse{data=storyResponse}
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /stories [post]
func (h *StoryHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req createStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := h.stories.Create(c.Request().Context(), id, toCreateStoryInput(req))
	if err != nil {
		return err
	}
	middleware.SetAuditEntity(c, s.ID)
	return success(c, http.StatusCreated, toStoryResponse(s))
}

// Update edits a story. Author or ADMIN only.
//
// @Summary      Update story
// @Tags         stories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Story ID"
// @Param        body  body      updateStoryRequest  true  "Changes"
// @Success      200   {object}  dataResponse{data=storyResponse}
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /stories/{id} [put]
func (h *StoryHandler) Update(c echo.Context) error {
	var req updateStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := h.stories.Update(c.Request().Context(), c.Param("id"), toUpdateStoryInput(req))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, toStoryResponse(s))
}

// Delete removes a story. Author or ADMIN only.
//
// @Summary      Delete story
// @Tags         stories
// @Security     BearerAuth
// @Param        id   path  string  true  "Story ID"
// @Success      200  {object}  dataResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /stories/{id} [delete]
func (h *StoryHandler) Delete(c echo.Context) error {
	if err := h.stories.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return successMessage(c, http.StatusOK, "Story deleted", nil)
}

// Moderate approves or rejects a story.
//
// @Summary      Moderate story
// @Tags         stories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Story ID"
// @Param        body  body      moderateStoryRequest  true  "Decision"
// @Success      200   {object}  dataResponse{data=storyResponse}
// @Failure      403   {object}  ErrorResponse
// @Router       /stories/{id}/moderate [post]
func (h *StoryHandler) Moderate(c echo.Context) error {
	var req moderateStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := h.stories.Moderate(c.Request().Context(), c.Param("id"), domain.StoryStatus(req.Status), req.Reason)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, toStoryResponse(s))
}

// AddComment posts a comment and notifies the author.
//
// @Summary      Comment on story
// @Tags         stories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Story ID"
// @Param        body  body      commentRequest  true  "Comment"
// @Success      201   {object}  dataResponse{data=storyResponse}
// @Failure      404   {object}  ErrorResponse
// @Router       /stories/{id}/comments [post]
func (h *StoryHandler) AddComment(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := h.stories.AddComment(c.Request().Context(), id, c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, toStoryResponse(s))
}

// DeleteComment removes a comment. Its author or ADMIN only.
//
// @Summary      Delete comment
// @Tags         stories
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Story ID"
// @Param        cid  path      string  true  "Comment ID"
// @Success      200  {object}  dataResponse{data=storyResponse}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /stories/{id}/comments/{cid} [delete]
func (h *StoryHandler) DeleteComment(c echo.Context) error {
	s, err := h.stories.DeleteComment(c.Request().Context(), c.Param("id"), c.Param("cid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, toStoryResponse(s))
}

// Rate scores a story from 1 to 5. Rating again replaces the earlier score.
//
// @Summary      Rate story
// @Tags         stories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Story ID"
// @Param        body  body      rateRequest  true  "Rating"
// @Success      200   {object}  dataResponse{data=storyResponse}
// @Failure      400   {object}  ErrorResponse
// @Router       /stories/{id}/rate [post]
func (h *StoryHandler) Rate(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req rateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := h.stories.Rate(c.Request().Context(), id, c.Param("id"), req.Value)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, toStoryResponse(s))
}

// Owner resolves the author of the story in the :id path parameter.
func (h *StoryHandler) Owner(c echo.Context) (string, error) {
	return h.stories.Owner(c.Request().Context(), c.Param("id"))
}

// CommentAuthor resolves the author of comment :cid on story :id.
func (h *StoryHandler) CommentAuthor(c echo.Context) (string, error) {
	return h.stories.CommentAuthor(c.Request().Context(), c.Param("id"), c.Param("cid"))
}
