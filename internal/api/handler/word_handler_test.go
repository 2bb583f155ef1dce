package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/wamunyima3/CloudScribe/internal/api/middleware"
	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/core/rbac"
)

type stubWordService struct {
	ports.WordService

	lastFilter ports.WordFilter
	words      []*domain.Word
}

func (s *stubWordService) Search(_ context.Context, f ports.WordFilter) ([]*domain.Word, int64, error) {
	s.lastFilter = f
	return s.words, int64(len(s.words)), nil
}

func (s *stubWordService) Get(_ context.Context, id string) (*domain.Word, error) {
	for _, w := range s.words {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, domain.ErrWordNotFound
}

func TestWordHandler_Get_UnapprovedHidden(t *testing.T) {
	stub := &stubWordService{words: []*domain.Word{{ID: "w1", Original: "mwana", AddedByID: "owner"}}}
	cases := []struct {
		name    string
		id      *domain.Identity
		visible bool
	}{
		{"anonymous", nil, false},
		{"other user", &domain.Identity{UserID: "u1", Role: domain.RoleUser}, false},
		{"other contributor", &domain.Identity{UserID: "u2", Role: domain.RoleContributor}, false},
		{"contributor", &domain.Identity{UserID: "owner", Role: domain.RoleContributor}, true},
		{"curator", &domain.Identity{UserID: "u3", Role: domain.RoleCurator}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewWordHandler(stub, rbac.DefaultTable())
			c, _ := jsonRequest(newTestEcho(), http.MethodGet, "/api/words/w1", "")
			c.SetParamNames("id")
			c.SetParamValues("w1")
			if tc.id != nil {
				c.Set(middleware.IdentityKey, *tc.id)
			}
			err := h.Get(c)
			if tc.visible && err != nil {
				t.Fatalf("expected word, got %v", err)
			}
			if !tc.visible && !errors.Is(err, domain.ErrWordNotFound) {
				t.Fatalf("expected ErrWordNotFound, got %v", err)
			}
		})
	}
}

func TestWordHandler_Get_ApprovedIsPublic(t *testing.T) {
	stub := &stubWordService{words: []*domain.Word{{ID: "w1", Original: "mwana", Approved: true}}}
	h := NewWordHandler(stub, rbac.DefaultTable())
	c, rec := jsonRequest(newTestEcho(), http.MethodGet, "/api/words/w1", "")
	c.SetParamNames("id")
	c.SetParamValues("w1")
	if err := h.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestWordHandler_Search_UnapprovedOnlyForApprovers(t *testing.T) {
	cases := []struct {
		name string
		id   *domain.Identity
		want bool
	}{
		{"anonymous", nil, false},
		{"contributor", &domain.Identity{UserID: "u1", Role: domain.RoleContributor}, false},
		{"curator", &domain.Identity{UserID: "u2", Role: domain.RoleCurator}, true},
		{"admin", &domain.Identity{UserID: "u3", Role: domain.RoleAdmin}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			stub := &stubWordService{}
			h := NewWordHandler(stub, rbac.DefaultTable())

			c, rec := jsonRequest(e, http.MethodGet, "/api/words/search?q=mwana&language=bem&page=2&limit=5", "")
			if tc.id != nil {
				c.Set(middleware.IdentityKey, *tc.id)
			}
			if err := h.Search(c); err != nil {
				t.Fatalf("search: %v", err)
			}
			if stub.lastFilter.IncludeUnapproved != tc.want {
				t.Fatalf("IncludeUnapproved = %v, want %v", stub.lastFilter.IncludeUnapproved, tc.want)
			}
			if stub.lastFilter.Query != "mwana" || stub.lastFilter.LanguageCode != "bem" || stub.lastFilter.Page != 2 || stub.lastFilter.Limit != 5 {
				t.Fatalf("filter not bound: %+v", stub.lastFilter)
			}
			resp := decode(t, rec)
			if _, ok := resp["pagination"].(map[string]any); !ok {
				t.Fatalf("expected pagination, got %+v", resp)
			}
			if data, ok := resp["data"].([]any); !ok || len(data) != 0 {
				t.Fatalf("expected empty list, got %+v", resp["data"])
			}
		})
	}
}

func TestWordHandler_Search_DefaultsPage(t *testing.T) {
	e := newTestEcho()
	stub := &stubWordService{}
	h := NewWordHandler(stub, rbac.DefaultTable())

	c, _ := jsonRequest(e, http.MethodGet, "/api/words/search", "")
	if err := h.Search(c); err != nil {
		t.Fatalf("search: %v", err)
	}
	if stub.lastFilter.Page != 1 || stub.lastFilter.Limit != domain.DefaultPageLimit {
		t.Fatalf("expected default paging, got %+v", stub.lastFilter.PageRequest)
	}
}

func TestWordHandler_Search_RejectsBadDifficulty(t *testing.T) {
	e := newTestEcho()
	h := NewWordHandler(&stubWordService{}, rbac.DefaultTable())

	c, _ := jsonRequest(e, http.MethodGet, "/api/words/search?difficulty=9", "")
	if err := h.Search(c); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
