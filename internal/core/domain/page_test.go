package domain

import "testing"

func TestPageRequest_Normalize(t *testing.T) {
	p := PageRequest{Page: 0, Limit: 500}.Normalize()
	if p.Page != 1 || p.Limit != MaxPageLimit {
		t.Fatalf("unexpected normalize result: %+v", p)
	}
	p = PageRequest{}.Normalize()
	if p.Limit != DefaultPageLimit {
		t.Fatalf("expected default limit, got %d", p.Limit)
	}
	if got := (PageRequest{Page: 3, Limit: 10}).Skip(); got != 20 {
		t.Fatalf("expected skip 20, got %d", got)
	}
}

func TestNewPagination(t *testing.T) {
	pg := NewPagination(PageRequest{Page: 2, Limit: 10}, 25)
	if pg.TotalPages != 3 || !pg.HasNext || !pg.HasPrev {
		t.Fatalf("unexpected pagination: %+v", pg)
	}
	pg = NewPagination(PageRequest{Page: 1, Limit: 10}, 0)
	if pg.TotalPages != 0 || pg.HasNext || pg.HasPrev {
		t.Fatalf("unexpected empty pagination: %+v", pg)
	}
}
