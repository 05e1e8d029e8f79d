package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type registryClient struct {
	baseURL string
	http    *http.Client
}

func newClient() *registryClient {
	return &registryClient{
		baseURL: serverURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// newRequest builds a request carrying the acting identity headers.
func (c *registryClient) newRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	if u := resolvedUser(); u != "" {
		req.Header.Set("X-Remote-User", u)
	}
	if r := resolvedRole(); r != "" {
		req.Header.Set("X-Remote-Role", r)
	}
	return req, nil
}

func (c *registryClient) do(req *http.Request, v any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	if v != nil {
		return json.NewDecoder(resp.Body).Decode(v)
	}
	return nil
}

// getJSON performs a GET request and decodes the response.
func (c *registryClient) getJSON(path string, v any) error {
	req, err := c.newRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, v)
}

// getRaw performs a GET request and returns the raw JSON.
func (c *registryClient) getRaw(path string) (map[string]any, error) {
	var result map[string]any
	if err := c.getJSON(path, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// sendJSON performs a request with a JSON body and decodes the response.
func (c *registryClient) sendJSON(method, path string, body any, v any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, v)
}

func (c *registryClient) postJSON(path string, body any, v any) error {
	return c.sendJSON(http.MethodPost, path, body, v)
}

func (c *registryClient) putJSON(path string, body any, v any) error {
	return c.sendJSON(http.MethodPut, path, body, v)
}

func (c *registryClient) patchJSON(path string, body any, v any) error {
	return c.sendJSON(http.MethodPatch, path, body, v)
}

func (c *registryClient) deleteJSON(path string, v any) error {
	return c.sendJSON(http.MethodDelete, path, nil, v)
}

// uploadFile performs a multipart upload of a local file.
func (c *registryClient) uploadFile(path, filePath string, fields map[string]string, v any) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", filePath, err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("write field %s: %w", key, err)
		}
	}
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := c.newRequest(http.MethodPost, path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, v)
}
