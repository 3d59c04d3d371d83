package nodes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultServiceTimeout = 30 * time.Second
	maxResponseBody       = 10 * 1024 * 1024 // 10 MB
)

// ServiceError — ошибка вызова внешнего сервиса платформы.
//
// Сохраняет HTTP-статус: координатор и retry-политика различают
// 5xx (повторяемые) и 4xx (терминальные) через текст ошибки.
type ServiceError struct {
	Service    string
	StatusCode int
	Body       string
}

// Error реализует интерфейс error.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service returned HTTP %d: %s", e.Service, e.StatusCode, e.Body)
}

// serviceClient — общий HTTP-клиент для сервисов платформы.
type serviceClient struct {
	name    string
	baseURL string
	client  *http.Client
}

func newServiceClient(name, baseURL string, timeout time.Duration) *serviceClient {
	if timeout <= 0 {
		timeout = defaultServiceTimeout
	}
	return &serviceClient{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// getJSON выполняет GET и декодирует JSON-ответ в out.
func (c *serviceClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

// postJSON сериализует body, выполняет POST и декодирует ответ в out.
func (c *serviceClient) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("serialize body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *serviceClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return fmt.Errorf("%w: %v", ErrNodeCancelled, req.Context().Err())
		}
		return fmt.Errorf("%s service request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServiceError{
			Service:    c.name,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(bodyBytes)),
		}
	}

	if out == nil || len(bodyBytes) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.name, err)
	}
	return nil
}

// CatalogClient — клиент каталога снимков и проектов платформы.
//
// Узлы data-input загружают через него метаданные проектов и снимков.
type CatalogClient struct {
	*serviceClient
}

// NewCatalogClient создаёт клиент каталога.
func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{serviceClient: newServiceClient("catalog", baseURL, timeout)}
}

// Project возвращает метаданные проекта.
func (c *CatalogClient) Project(ctx context.Context, projectID string) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/projects/"+projectID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProjectImages возвращает страницу снимков проекта.
func (c *CatalogClient) ProjectImages(ctx context.Context, projectID string, limit int) (map[string]any, error) {
	var out map[string]any
	path := fmt.Sprintf("/projects/%s/images?limit=%d", projectID, limit)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Image возвращает метаданные одного снимка.
func (c *CatalogClient) Image(ctx context.Context, imageID string) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/images/"+imageID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessingClient — клиент сервиса обработки снимков.
//
// Узлы processing передают ему операции над снимками: вегетационные
// индексы, поиск водоёмов, детекцию изменений.
type ProcessingClient struct {
	*serviceClient
}

// NewProcessingClient создаёт клиент сервиса обработки.
func NewProcessingClient(baseURL string, timeout time.Duration) *ProcessingClient {
	return &ProcessingClient{serviceClient: newServiceClient("processing", baseURL, timeout)}
}

// Process выполняет операцию обработки и возвращает её результат.
func (c *ProcessingClient) Process(ctx context.Context, operation string, request map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := c.postJSON(ctx, "/process/"+operation, request, &out); err != nil {
		return nil, err
	}
	return out, nil
}
