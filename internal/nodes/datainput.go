package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/fedibbm/geoflow/internal/domain"
)

// Ключи конфигурации data-input узла.
const (
	configDataSource = "dataSource"
	configProjectID  = "projectId"
	configImageID    = "imageId"
	configImageLimit = "limit"
)

const defaultImageLimit = 100

// DataInputExecutor — исполнитель data-input узлов.
//
// Загружает данные из каталога платформы: метаданные проекта, список
// снимков проекта или один снимок.
//
// Конфигурация:
//
//	{
//	    "dataSource": "project" | "images" | "image",
//	    "projectId": "...",   // для project и images
//	    "imageId": "...",     // для image
//	    "limit": 100          // для images
//	}
type DataInputExecutor struct {
	catalog *CatalogClient
}

// NewDataInputExecutor создаёт новый DataInputExecutor.
func NewDataInputExecutor(catalog *CatalogClient) *DataInputExecutor {
	return &DataInputExecutor{catalog: catalog}
}

// Type возвращает тип узла.
func (e *DataInputExecutor) Type() string {
	return domain.NodeTypeDataInput
}

// Validate проверяет конфигурацию узла.
func (e *DataInputExecutor) Validate(node domain.WorkflowNode) error {
	if len(node.Config) == 0 {
		return fmt.Errorf("%w: %s: config is required", ErrInvalidNodeConfig, e.Type())
	}

	source := strings.ToLower(GetConfigStringDefault(node.Config, configDataSource, "project"))
	switch source {
	case "project", "images":
		if GetConfigString(node.Config, configProjectID) == "" {
			return fmt.Errorf("%w: %s: projectId is required for source %q",
				ErrInvalidNodeConfig, e.Type(), source)
		}
	case "image":
		if GetConfigString(node.Config, configImageID) == "" {
			return fmt.Errorf("%w: %s: imageId is required for source %q",
				ErrInvalidNodeConfig, e.Type(), source)
		}
	default:
		return fmt.Errorf("%w: %s: unknown data source: %s",
			ErrInvalidNodeConfig, e.Type(), source)
	}

	return nil
}

// Execute загружает данные из каталога.
func (e *DataInputExecutor) Execute(ctx context.Context, node domain.WorkflowNode, ec *Context) (*Result, error) {
	source := strings.ToLower(GetConfigStringDefault(node.Config, configDataSource, "project"))

	switch source {
	case "project":
		return e.loadProject(ctx, node.Config)
	case "images":
		return e.loadImages(ctx, node.Config)
	case "image":
		return e.loadImage(ctx, node.Config)
	default:
		return Failuref("unknown data source: %s", source), nil
	}
}

func (e *DataInputExecutor) loadProject(ctx context.Context, config map[string]any) (*Result, error) {
	projectID := GetConfigString(config, configProjectID)

	project, err := e.catalog.Project(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}

	return Successf(map[string]any{
		"dataSource": "project",
		"projectId":  projectID,
		"project":    project,
		"status":     "success",
	}), nil
}

func (e *DataInputExecutor) loadImages(ctx context.Context, config map[string]any) (*Result, error) {
	projectID := GetConfigString(config, configProjectID)
	limit := GetConfigInt(config, configImageLimit)
	if limit <= 0 {
		limit = defaultImageLimit
	}

	page, err := e.catalog.ProjectImages(ctx, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("load images for project %s: %w", projectID, err)
	}

	outputs := map[string]any{
		"dataSource": "images",
		"projectId":  projectID,
		"status":     "success",
	}
	for k, v := range page {
		outputs[k] = v
	}

	return Successf(outputs), nil
}

func (e *DataInputExecutor) loadImage(ctx context.Context, config map[string]any) (*Result, error) {
	imageID := GetConfigString(config, configImageID)

	image, err := e.catalog.Image(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", imageID, err)
	}

	outputs := map[string]any{
		"dataSource": "image",
		"imageId":    imageID,
		"status":     "success",
	}
	for k, v := range image {
		outputs[k] = v
	}

	return Successf(outputs), nil
}
