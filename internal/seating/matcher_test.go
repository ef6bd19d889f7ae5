package seating

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avelara/seatsync/internal/model"
)

func TestResolve(t *testing.T) {
	roster := []model.Guest{
		{ID: 1, FirstName: "John", LastName: "Smith"},
		{ID: 2, FirstName: "Johanna", LastName: "Doe"},
		{ID: 3, LegacyName: "  Maria  Luisa Ortega "},
	}

	tests := []struct {
		name   string
		query  string
		wantID uint64
		found  bool
	}{
		{"substring of full name", "jo", 1, true},
		{"last name equality", "smith", 1, true},
		{"first plus last", "johanna doe", 2, true},
		{"case folded and trimmed", "  SMITH ", 1, true},
		{"legacy single name substring", "luisa", 3, true},
		{"first match wins over later candidates", "doe", 2, true},
		{"no match", "robert", 0, false},
		{"empty query", "   ", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, ok := Resolve(tc.query, roster)
			require.Equal(t, tc.found, ok)
			if tc.found {
				require.Equal(t, tc.wantID, g.ID)
			}
		})
	}
}

func TestResolve_InsertionOrderWins(t *testing.T) {
	roster := []model.Guest{
		{ID: 10, FirstName: "Anna", LastName: "Berg"},
		{ID: 11, FirstName: "Anna", LastName: "Berg"},
	}
	g, ok := Resolve("anna berg", roster)
	require.True(t, ok)
	require.Equal(t, uint64(10), g.ID, "ties resolve by stable candidate order, not by score")
}

func TestSuggest(t *testing.T) {
	roster := []model.Guest{
		{FirstName: "John", LastName: "Smith"},
		{FirstName: "Johanna", LastName: "Doe"},
		{FirstName: "Jon", LastName: "Snow"},
		{FirstName: "Mary", LastName: "Jones"},
	}

	require.Nil(t, Suggest("j", roster, 10), "single-character prefixes are rejected")
	require.Nil(t, Suggest("jo", roster, 0), "non-positive limit yields nothing")

	got := Suggest("jo", roster, 10)
	require.Equal(t, []string{"John Smith", "Johanna Doe", "Jon Snow", "Mary Jones"}, got,
		"contains-match over display names, candidate order preserved")

	require.Len(t, Suggest("jo", roster, 1), 1, "limit caps the result")
}

func TestSuggest_NoDeduplication(t *testing.T) {
	roster := []model.Guest{
		{FirstName: "Sam", LastName: "Lee"},
		{FirstName: "Sam", LastName: "Lee"},
	}
	got := Suggest("sam", roster, 10)
	require.Equal(t, []string{"Sam Lee", "Sam Lee"}, got, "identical names are kept")
}
