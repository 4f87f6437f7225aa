package plantnet

import "encoding/json"

// Name is a scientific name split into its name and authorship parts.
type Name struct {
	ScientificNameWithoutAuthor string `json:"scientificNameWithoutAuthor"`
	ScientificNameAuthorship    string `json:"scientificNameAuthorship,omitempty"`
}

// Species is the taxon of a candidate result.
type Species struct {
	ScientificNameWithoutAuthor string   `json:"scientificNameWithoutAuthor"`
	ScientificNameAuthorship    string   `json:"scientificNameAuthorship,omitempty"`
	Genus                       *Name    `json:"genus,omitempty"`
	Family                      *Name    `json:"family,omitempty"`
	CommonNames                 []string `json:"commonNames,omitempty"`
}

// ImageURL holds the original, medium, and small renditions of a reference image.
type ImageURL struct {
	O string `json:"o"`
	M string `json:"m"`
	S string `json:"s"`
}

// Image is a reference image attached to a candidate result.
type Image struct {
	Organ    string   `json:"organ"`
	Author   string   `json:"author,omitempty"`
	License  string   `json:"license,omitempty"`
	Citation string   `json:"citation,omitempty"`
	URL      ImageURL `json:"url"`
}

// Result is one ranked candidate species.
type Result struct {
	Score   float64         `json:"score"`
	Species Species         `json:"species"`
	Images  []Image         `json:"images,omitempty"`
	GBIF    json.RawMessage `json:"gbif,omitempty"`
}

// Response is the decoded identify response. Results are ordered by descending score.
type Response struct {
	Language                        string   `json:"language"`
	PreferedReferential             string   `json:"preferedReferential"`
	BestMatch                       string   `json:"bestMatch,omitempty"`
	Results                         []Result `json:"results"`
	Version                         string   `json:"version"`
	RemainingIdentificationRequests int      `json:"remainingIdentificationRequests"`
}

// Identification is a successful identify call: the decoded response and
// the unmodified body it was decoded from.
type Identification struct {
	Response *Response
	Raw      json.RawMessage
}

// Photo is the image submitted for identification.
type Photo struct {
	Data        []byte
	Filename    string
	ContentType string
}
