package identify

import (
	"github.com/JaimeStill/flora/internal/identifications"
	"github.com/JaimeStill/flora/pkg/plantnet"
)

const (
	maxMatches = 5
	maxImages  = 3
	unknown    = "Unknown"
)

// mapResults converts ranked Pl@ntNet results into matches, preserving order.
func mapResults(results []plantnet.Result) []identifications.Match {
	if len(results) > maxMatches {
		results = results[:maxMatches]
	}

	matches := make([]identifications.Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, identifications.Match{
			Species: mapSpecies(r.Species),
			Score:   r.Score,
			Images:  mapImages(r.Images),
		})
	}
	return matches
}

func mapSpecies(s plantnet.Species) identifications.Species {
	name := s.ScientificNameWithoutAuthor
	if s.ScientificNameAuthorship != "" {
		name += " " + s.ScientificNameAuthorship
	}

	commonNames := s.CommonNames
	if commonNames == nil {
		commonNames = []string{}
	}

	return identifications.Species{
		ScientificName: name,
		CommonNames:    commonNames,
		Family:         taxonName(s.Family),
		Genus:          taxonName(s.Genus),
	}
}

func taxonName(n *plantnet.Name) string {
	if n == nil || n.ScientificNameWithoutAuthor == "" {
		return unknown
	}
	return n.ScientificNameWithoutAuthor
}

// mapImages returns nil for a result without images so the field is omitted.
func mapImages(images []plantnet.Image) []identifications.ReferenceImage {
	if len(images) == 0 {
		return nil
	}
	if len(images) > maxImages {
		images = images[:maxImages]
	}

	refs := make([]identifications.ReferenceImage, 0, len(images))
	for _, img := range images {
		refs = append(refs, identifications.ReferenceImage{
			URL:      img.URL.M,
			Citation: img.Citation,
		})
	}
	return refs
}
