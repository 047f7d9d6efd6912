package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLocation(t *testing.T) {
	loc, err := FindLocation("Hog's Back Falls")
	require.NoError(t, err)
	assert.True(t, loc.IsOutdoor)
	assert.Equal(t, VScale, loc.Grading)

	loc.Grading[0] = "mutated"
	again, err := FindLocation("Hog's Back Falls")
	require.NoError(t, err)
	assert.Equal(t, "VB", again.Grading[0], "catalog grading cannot be mutated through a lookup")
}

func TestFindLocation_ExactMatchOnly(t *testing.T) {
	_, err := FindLocation("altitude kanata")
	var lnf *LocationNotFoundError
	require.ErrorAs(t, err, &lnf)
	assert.Equal(t, "altitude kanata", lnf.Name)
}

func TestCatalog_AgeGroupsOnlyAtKanata(t *testing.T) {
	for _, name := range LocationNames() {
		loc, err := FindLocation(name)
		require.NoError(t, err)
		assert.Equal(t, name == "Altitude Kanata", loc.TracksAgeGroups, name)
	}
}

func TestLookupLocationAlias(t *testing.T) {
	tests := []struct {
		alias string
		want  string
	}{
		{"kanata", "Altitude Kanata"},
		{"  Coyote ", "Coyote Rock Gym"},
		{"hogs back", "Hog's Back Falls"},
		{"Lac Beauchamp", "Lac Beauchamp"},
		{"CALABOGIE", "Calabogie"},
	}
	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			loc, err := LookupLocationAlias(tt.alias)
			require.NoError(t, err)
			assert.Equal(t, tt.want, loc.Name)
		})
	}

	_, err := LookupLocationAlias("klimat")
	var lnf *LocationNotFoundError
	assert.ErrorAs(t, err, &lnf)
}
