package identifications

import "github.com/JaimeStill/flora/pkg/openapi"

var (
	unitMin    = 0.0
	unitMax    = 1.0
	maxMatches = 5
	maxImages  = 3
)

var schemas = map[string]*openapi.Schema{
	"Identification": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":            {Type: "string", Format: "uuid"},
			"image_key":     {Type: "string", Description: "Blob key of the uploaded photo"},
			"filename":      {Type: "string"},
			"content_type":  {Type: "string"},
			"size_bytes":    {Type: "integer", Format: "int64"},
			"status":        {Type: "string", Enum: []any{StatusPending, StatusSuccess, StatusFailed, StatusNoMatch}},
			"matches":       {Type: "array", Items: openapi.SchemaRef("Match"), MaxItems: &maxMatches, Description: "Ranked candidates, present only on success"},
			"raw_response":  {Type: "object", Description: "Unmodified Pl@ntNet response body"},
			"error_message": {Type: "string"},
			"image_url":     {Type: "string", Format: "uri", Description: "Time-limited display URL, null when unavailable"},
			"created_at":    {Type: "string", Format: "date-time"},
			"updated_at":    {Type: "string", Format: "date-time"},
		},
		Required: []string{"id", "image_key", "status", "created_at"},
	},
	"Match": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"species": openapi.SchemaRef("Species"),
			"score":   {Type: "number", Minimum: &unitMin, Maximum: &unitMax},
			"images":  {Type: "array", Items: openapi.SchemaRef("ReferenceImage"), MaxItems: &maxImages},
		},
		Required: []string{"species", "score", "images"},
	},
	"Species": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"scientific_name": {Type: "string", Example: "Rosa gallica L."},
			"common_names":    {Type: "array", Items: &openapi.Schema{Type: "string"}},
			"family":          {Type: "string", Example: "Rosaceae"},
			"genus":           {Type: "string", Example: "Rosa"},
		},
		Required: []string{"scientific_name", "common_names", "family", "genus"},
	},
	"ReferenceImage": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"url":      {Type: "string", Format: "uri"},
			"citation": {Type: "string"},
		},
		Required: []string{"url"},
	},
	"DeleteResult": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"success": {Type: "boolean"},
			"error":   {Type: "string"},
		},
		Required: []string{"success"},
	},
	"RegisterCommand": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"image_key": {Type: "string", Description: "Key returned by the upload-handle endpoint"},
		},
		Required: []string{"image_key"},
	},
	"UploadHandle": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"image_key":  {Type: "string"},
			"upload_url": {Type: "string", Format: "uri", Description: "Write-only blob URL accepting a PUT of the image"},
			"expires_at": {Type: "string", Format: "date-time"},
		},
		Required: []string{"image_key", "upload_url", "expires_at"},
	},
}

var idParam = openapi.PathParam("id", "Identification ID")

var listOp = &openapi.Operation{
	Summary:     "List identifications",
	Description: "Returns every identification, most recent first.",
	Parameters: []*openapi.Parameter{
		openapi.QueryEnum("status", "Only return identifications with this status", Statuses...),
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSONArray("Identifications", "Identification"),
		400: openapi.ResponseRef("BadRequest"),
		500: openapi.ResponseRef("InternalError"),
	},
}

var findOp = &openapi.Operation{
	Summary:    "Find an identification",
	Parameters: []*openapi.Parameter{idParam},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Identification", "Identification"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var uploadOp = &openapi.Operation{
	Summary:     "Upload a plant photo",
	Description: "Stores the photo, creates a pending identification, and schedules recognition.",
	RequestBody: openapi.RequestBodyMultipart("image", "JPEG, PNG, HEIC, HEIF, or WebP photo"),
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Created identification", "Identification"),
		400: openapi.ResponseRef("BadRequest"),
		413: openapi.ResponseRef("PayloadTooLarge"),
		500: openapi.ResponseRef("InternalError"),
	},
}

var registerOp = &openapi.Operation{
	Summary:     "Register an uploaded photo",
	Description: "Creates a pending identification for a photo written with an upload handle.",
	RequestBody: openapi.RequestBodyJSON("RegisterCommand", true),
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Created identification", "Identification"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
		409: openapi.ResponseRef("Conflict"),
	},
}

var uploadHandleOp = &openapi.Operation{
	Summary: "Issue an upload handle",
	Parameters: []*openapi.Parameter{
		{Name: "filename", In: "query", Description: "Name of the file to upload", Schema: &openapi.Schema{Type: "string"}},
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Upload handle", "UploadHandle"),
		500: openapi.ResponseRef("InternalError"),
	},
}

var imageOp = &openapi.Operation{
	Summary:    "Download the photo",
	Parameters: []*openapi.Parameter{idParam},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseBinary("Photo bytes"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var deleteOp = &openapi.Operation{
	Summary:     "Delete an identification",
	Description: "Deletes the record, then best-effort deletes the photo.",
	Parameters:  []*openapi.Parameter{idParam},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Deleted", "DeleteResult"),
		404: openapi.ResponseJSON("Not found", "DeleteResult"),
		500: openapi.ResponseJSON("Delete failed", "DeleteResult"),
	},
}
