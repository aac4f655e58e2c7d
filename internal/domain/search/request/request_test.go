package request

import (
	"errors"
	"testing"

	"github.com/factlens/factlens/internal/domain"
)

func TestNew_Defaults(t *testing.T) {
	req, err := New("climate", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Page() != DefaultPage {
		t.Errorf("page = %d, want %d", req.Page(), DefaultPage)
	}
	if req.PageSize() != DefaultPageSize {
		t.Errorf("page_size = %d, want %d", req.PageSize(), DefaultPageSize)
	}
	if req.Query() != "climate" {
		t.Errorf("query = %q, want climate", req.Query())
	}
}

func TestNew_EmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		if _, err := New(q, 1, 10); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("query %q: expected ErrInvalidQuery, got %v", q, err)
		}
	}
}

func TestNew_PageBounds(t *testing.T) {
	cases := []struct {
		page   int
		wantOK bool
	}{
		{page: -1, wantOK: false},
		{page: 0, wantOK: true}, // defaults to 1
		{page: 1, wantOK: true},
		{page: 1000, wantOK: true}, // no upper bound; past-end pages yield empty lists
	}
	for _, tc := range cases {
		_, err := New("q", tc.page, 10)
		if tc.wantOK && err != nil {
			t.Errorf("page %d: unexpected error: %v", tc.page, err)
		}
		if !tc.wantOK && !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("page %d: expected ErrInvalidQuery, got %v", tc.page, err)
		}
	}
}

func TestNew_PageSizeBounds(t *testing.T) {
	cases := []struct {
		pageSize int
		wantOK   bool
	}{
		{pageSize: -5, wantOK: false},
		{pageSize: 0, wantOK: true}, // defaults to 10
		{pageSize: 1, wantOK: true},
		{pageSize: MaxPageSize, wantOK: true},
		{pageSize: MaxPageSize + 1, wantOK: false},
	}
	for _, tc := range cases {
		req, err := New("q", 1, tc.pageSize)
		if tc.wantOK && err != nil {
			t.Errorf("page_size %d: unexpected error: %v", tc.pageSize, err)
		}
		if !tc.wantOK && !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("page_size %d: expected ErrInvalidQuery, got %v", tc.pageSize, err)
		}
		if tc.wantOK && tc.pageSize == 0 && req.PageSize() != DefaultPageSize {
			t.Errorf("page_size 0 defaults to %d, got %d", DefaultPageSize, req.PageSize())
		}
	}
}
