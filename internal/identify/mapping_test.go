package identify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JaimeStill/flora/pkg/plantnet"
)

func TestMapSpecies(t *testing.T) {
	tests := []struct {
		name    string
		species plantnet.Species
		want    string
		family  string
		genus   string
	}{
		{
			name:    "with authorship",
			species: plantnet.Species{ScientificNameWithoutAuthor: "Bellis perennis", ScientificNameAuthorship: "L."},
			want:    "Bellis perennis L.",
			family:  "Unknown",
			genus:   "Unknown",
		},
		{
			name:    "without authorship",
			species: plantnet.Species{ScientificNameWithoutAuthor: "Bellis perennis"},
			want:    "Bellis perennis",
			family:  "Unknown",
			genus:   "Unknown",
		},
		{
			name: "taxa present",
			species: plantnet.Species{
				ScientificNameWithoutAuthor: "Bellis perennis",
				Family:                      &plantnet.Name{ScientificNameWithoutAuthor: "Asteraceae"},
				Genus:                       &plantnet.Name{ScientificNameWithoutAuthor: "Bellis"},
			},
			want:   "Bellis perennis",
			family: "Asteraceae",
			genus:  "Bellis",
		},
		{
			name: "empty taxa",
			species: plantnet.Species{
				ScientificNameWithoutAuthor: "Bellis perennis",
				Family:                      &plantnet.Name{},
				Genus:                       &plantnet.Name{},
			},
			want:   "Bellis perennis",
			family: "Unknown",
			genus:  "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapSpecies(tt.species)
			assert.Equal(t, tt.want, got.ScientificName)
			assert.Equal(t, tt.family, got.Family)
			assert.Equal(t, tt.genus, got.Genus)
			assert.Equal(t, []string{}, got.CommonNames)
		})
	}
}

func TestMapResultsEmpty(t *testing.T) {
	assert.Empty(t, mapResults(nil))
}

func TestMapResultsWithoutImages(t *testing.T) {
	matches := mapResults([]plantnet.Result{
		{Score: 0.87, Species: plantnet.Species{ScientificNameWithoutAuthor: "Rosa gallica"}},
		{Score: 0.05, Species: plantnet.Species{ScientificNameWithoutAuthor: "Rosa canina"}, Images: []plantnet.Image{}},
	})
	assert.Len(t, matches, 2)

	for _, m := range matches {
		assert.Nil(t, m.Images)

		data, err := json.Marshal(m)
		assert.NoError(t, err)
		assert.NotContains(t, string(data), `"images"`)
	}
}

func TestPhotoFilename(t *testing.T) {
	assert.Equal(t, "plant.png", photoFilename("image/png"))
	assert.Equal(t, "plant.png", photoFilename(" IMAGE/PNG "))
	assert.Equal(t, "plant.jpg", photoFilename("image/heic"))
}
