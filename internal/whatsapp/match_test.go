package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sharpchat/server/internal/business"
)

func TestRatio(t *testing.T) {
	require.Equal(t, 1.0, Ratio("mama ngozi", "mama ngozi"))
	require.Equal(t, 1.0, Ratio("", ""))
	require.Equal(t, 0.0, Ratio("abc", "xyz"))

	// Shared prefix scores above disjoint strings.
	require.Greater(t, Ratio("mama ngozi", "mama ngozi kitchen"), 0.6)
	require.Less(t, Ratio("kitchen", "mama ngozi kitchen"), 0.6)
}

func TestResolveBusinessExactID(t *testing.T) {
	records := []business.Record{
		{BusinessID: "BUS-001", Name: "Mama Ngozi Kitchen"},
		{BusinessID: "BUS-002", Name: "Lagos Tailors"},
	}

	rec, ok := resolveBusiness("bus-002", records)
	require.True(t, ok)
	require.Equal(t, "BUS-002", rec.BusinessID)

	_, ok = resolveBusiness("BUS-999", records)
	require.False(t, ok)
}

func TestResolveBusinessFuzzyName(t *testing.T) {
	records := []business.Record{
		{BusinessID: "BUS-001", Name: "Mama Ngozi Kitchen"},
		{BusinessID: "BUS-002", Name: "Lagos Tailors"},
	}

	rec, ok := resolveBusiness("mama ngozi", records)
	require.True(t, ok)
	require.Equal(t, "BUS-001", rec.BusinessID)

	rec, ok = resolveBusiness("LAGOS TAILORS", records)
	require.True(t, ok)
	require.Equal(t, "BUS-002", rec.BusinessID)

	_, ok = resolveBusiness("zzzzzz", records)
	require.False(t, ok)
}
