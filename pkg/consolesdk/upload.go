package consolesdk

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Upload is a single file sent as multipart/form-data.
type Upload struct {
	Field    string
	Filename string
	Content  io.Reader
}

// encode buffers the form so the request can report its length.
func (u *Upload) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(u.Field, u.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, u.Content); err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", u.Filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to encode form: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}
