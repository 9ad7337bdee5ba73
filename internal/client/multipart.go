package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
)

// File is binary content attached to a multipart request.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Multipart is implemented by payloads of image-bearing resources. When
// FormFiles returns at least one file the payload is sent as
// multipart/form-data built from FormFields and FormFiles; otherwise it is
// sent as JSON like any other body.
type Multipart interface {
	FormFields() map[string]string
	FormFiles() []File
}

func encodeMultipart(mp Multipart) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := mp.FormFields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := w.WriteField(name, fields[name]); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", name, err)
		}
	}

	for _, f := range mp.FormFiles() {
		if f.Field == "" {
			return nil, "", fmt.Errorf("file %q has no form field", f.Name)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("creating part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("writing part %s: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
