package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// UploadFile performs the direct byte transfer to a presigned upload
// destination as a multipart POST: the auxiliary fields first, then the
// file part. The body streams from disk, so large media files are never
// buffered in memory.
func (c *Client) UploadFile(ctx context.Context, dest PrepareUploadResponse, filePath, contentType string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer file.Close()

	reader, writer := io.Pipe()
	form := multipart.NewWriter(writer)

	go func() {
		err := writeForm(form, dest.Fields, file, filepath.Base(filePath), contentType)
		writer.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dest.UploadURL, reader)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	// Deliberately not the timeout-bounded API client: transfers of large
	// media files outlive any sane per-request timeout.
	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload transfer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		text := strings.TrimSpace(string(snippet))
		if text == "" {
			return fmt.Errorf("storage returned %d", resp.StatusCode)
		}
		return fmt.Errorf("storage returned %d: %s", resp.StatusCode, text)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func writeForm(form *multipart.Writer, fields map[string]string, file io.Reader, fileName, contentType string) error {
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return fmt.Errorf("write form field %q: %w", key, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := form.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy file data: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("close form: %w", err)
	}
	return nil
}
