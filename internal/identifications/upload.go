package identifications

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// multipartOverhead is the allowance for form boundaries and headers on top of the image limit.
const multipartOverhead = 1 << 20

// ReadUpload reads the "image" file of a multipart upload into an
// UploadCommand. It returns ErrImageTooLarge when the body or file exceeds
// max, and an error wrapping ErrInvalidImage for any other malformed request.
func ReadUpload(w http.ResponseWriter, r *http.Request, max int64) (UploadCommand, error) {
	r.Body = http.MaxBytesReader(w, r.Body, max+multipartOverhead)

	if err := r.ParseMultipartForm(max); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return UploadCommand{}, ErrImageTooLarge
		}
		return UploadCommand{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		return UploadCommand{}, fmt.Errorf("%w: image field required", ErrInvalidImage)
	}
	defer file.Close()

	if header.Size > max {
		return UploadCommand{}, ErrImageTooLarge
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return UploadCommand{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	return UploadCommand{
		Data:        data,
		Filename:    header.Filename,
		ContentType: DetectContentType(header.Header.Get("Content-Type"), data),
	}, nil
}
