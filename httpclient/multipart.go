package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
)

// MultipartBody is a multipart/form-data request body. Use it as
// Request.Body for audio uploads.
type MultipartBody struct {
	// Fields are simple form fields. Repeated keys go in MultiFields.
	Fields map[string]string
	// MultiFields are form fields sent once per value, in order.
	MultiFields map[string][]string
	// Files are file parts.
	Files []FileField
}

// FileField is one file part. Exactly one of Path, Reader or Data supplies
// the content, checked in that order.
type FileField struct {
	// FieldName is the form field name, usually "file".
	FieldName string
	// FileName is sent to the server. Defaults to the base name of Path.
	FileName string
	// ContentType defaults to application/octet-stream.
	ContentType string
	// Path is a file on disk, opened and closed by the encoder.
	Path string
	// Reader streams the content.
	Reader io.Reader
	// Data is in-memory content.
	Data []byte
}

func (m *MultipartBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, k := range sortedKeys(m.Fields) {
		if err := w.WriteField(k, m.Fields[k]); err != nil {
			return nil, "", err
		}
	}
	for _, k := range sortedKeys(m.MultiFields) {
		for _, v := range m.MultiFields[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
	}

	for _, f := range m.Files {
		if err := writeFile(w, f); err != nil {
			return nil, "", fmt.Errorf("multipart field %q: %w", f.FieldName, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, f FileField) error {
	name := f.FileName
	if name == "" && f.Path != "" {
		name = filepath.Base(f.Path)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(name)+`"`)
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	header.Set("Content-Type", ct)

	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}

	switch {
	case f.Path != "":
		file, err := os.Open(f.Path)
		if err != nil {
			return err
		}
		defer func() { _ = file.Close() }()
		_, err = io.Copy(part, file)
		return err
	case f.Reader != nil:
		_, err = io.Copy(part, f.Reader)
		return err
	default:
		_, err = part.Write(f.Data)
		return err
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
