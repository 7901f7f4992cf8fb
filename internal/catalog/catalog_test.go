package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ShippedCatalog(t *testing.T) {
	datasets, err := Load()
	require.NoError(t, err)
	require.Len(t, datasets, 3)

	ids := make([]string, 0, len(datasets))
	for _, d := range datasets {
		ids = append(ids, d.ID)
		assert.NotEmpty(t, d.Name)
		assert.NotEmpty(t, d.URL)
		assert.NotEmpty(t, d.Fields)
		assert.NotEmpty(t, d.KeyFields)
		assert.NotEmpty(t, d.ExampleQuestions)
	}
	assert.Equal(t, []string{"hospitals", "schools", "cities"}, ids)
}

func TestByID(t *testing.T) {
	datasets := MustLoad()

	hospitals, ok := ByID(datasets, "hospitals")
	require.True(t, ok)
	assert.Equal(t, "US Hospitals", hospitals.Name)
	assert.Contains(t, hospitals.Fields, "BEDS")
	assert.Contains(t, hospitals.KeyFields, "TRAUMA")

	_, ok = ByID(datasets, "volcanoes")
	assert.False(t, ok)
}

func TestAllFields_CommaJoined(t *testing.T) {
	datasets := MustLoad()
	cities, ok := ByID(datasets, "cities")
	require.True(t, ok)
	assert.Contains(t, cities.AllFields(), "POP_2010, POP_CLASS")
}
