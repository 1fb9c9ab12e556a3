package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query         string
		page, perPage int
	}{
		{"", 1, 20},
		{"?page=3&limit=50", 3, 50},
		{"?page=0&limit=-4", 1, 20},
		{"?page=x&limit=500", 1, 100},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/submissions"+tc.query, nil)
			page, perPage := ParsePagination(r, 20, 100)
			require.Equal(t, tc.page, page)
			require.Equal(t, tc.perPage, perPage)
		})
	}
	require.Equal(t, 40, Offset(3, 20))
	require.Equal(t, 0, Offset(0, 20))
}
