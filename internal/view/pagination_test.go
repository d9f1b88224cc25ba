package view

import (
	"math"
	"testing"
)

func TestPageRequestNormalize(t *testing.T) {
	req := PageRequest{}.Normalize()
	if req.Page != DefaultPage || req.Limit != DefaultLimit {
		t.Fatalf("defaults not applied: %+v", req)
	}

	req = PageRequest{Page: -3, Limit: 0}.Normalize()
	if req.Page != DefaultPage || req.Limit != DefaultLimit {
		t.Fatalf("out-of-range values should fall back: %+v", req)
	}

	req = PageRequest{Page: 4, Limit: 25}.Normalize()
	if req.Page != 4 || req.Limit != 25 {
		t.Fatalf("valid values changed: %+v", req)
	}
	if req.Skip() != 75 {
		t.Fatalf("skip: got %d want 75", req.Skip())
	}
}

func TestPageRequestNormalizeClampsCeilings(t *testing.T) {
	req := PageRequest{Page: math.MaxInt64, Limit: math.MaxInt64}.Normalize()
	if req.Page != MaxPage || req.Limit != MaxLimit {
		t.Fatalf("ceilings not applied: %+v", req)
	}
	if skip := req.Skip(); skip < 0 {
		t.Fatalf("skip must never go negative: %d", skip)
	}

	req = PageRequest{Page: MaxPage, Limit: MaxLimit}.Normalize()
	if req.Page != MaxPage || req.Limit != MaxLimit {
		t.Fatalf("values at the ceiling changed: %+v", req)
	}
}

func TestNewPageHasMore(t *testing.T) {
	req := PageRequest{Page: 1, Limit: 10}.Normalize()

	exactly := make([]int, 10)
	page := NewPage(exactly, req)
	if page.HasMore || len(page.Data) != 10 {
		t.Fatalf("exactly limit records must not report more: %+v", page)
	}

	overfetched := make([]int, 11)
	page = NewPage(overfetched, req)
	if !page.HasMore || len(page.Data) != 10 {
		t.Fatalf("limit+1 records must trim and report more: %+v", page)
	}
}

func TestNewPageEmptyIsSuccess(t *testing.T) {
	page := NewPage[int](nil, PageRequest{Page: 3, Limit: 10}.Normalize())
	if page.Data == nil {
		t.Fatal("data must never be nil")
	}
	if len(page.Data) != 0 || page.HasMore || page.Page != 3 {
		t.Fatalf("unexpected empty page: %+v", page)
	}
}

func TestMapPage(t *testing.T) {
	in := Page[int]{Data: []int{1, 2, 3}, Page: 2, Limit: 3, HasMore: true}
	out := MapPage(in, func(v int) int { return v * 10 })
	if out.Page != 2 || out.Limit != 3 || !out.HasMore {
		t.Fatalf("envelope not preserved: %+v", out)
	}
	if out.Data[0] != 10 || out.Data[2] != 30 {
		t.Fatalf("conversion wrong: %+v", out.Data)
	}
}
