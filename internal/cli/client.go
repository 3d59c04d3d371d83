package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// WorkflowResponse — workflow из API.
type WorkflowResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	ProjectID      string `json:"project_id,omitempty"`
	CurrentVersion int    `json:"current_version"`
	CreatedBy      string `json:"created_by,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// VersionResponse — версия workflow из API.
type VersionResponse struct {
	WorkflowID string          `json:"workflow_id"`
	Version    int             `json:"version"`
	Nodes      json.RawMessage `json:"nodes"`
	Edges      json.RawMessage `json:"edges,omitempty"`
	Changelog  string          `json:"changelog,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

// ExecutionResponse — execution из API.
type ExecutionResponse struct {
	ID          string                    `json:"id"`
	WorkflowID  string                    `json:"workflow_id"`
	Version     int                       `json:"version"`
	Status      string                    `json:"status"`
	TriggeredBy string                    `json:"triggered_by,omitempty"`
	ProjectID   string                    `json:"project_id,omitempty"`
	Input       map[string]any            `json:"input,omitempty"`
	StartedAt   string                    `json:"started_at,omitempty"`
	CompletedAt string                    `json:"completed_at,omitempty"`
	Logs        []LogEntryResponse        `json:"logs,omitempty"`
	Results     map[string]map[string]any `json:"results,omitempty"`
	Error       string                    `json:"error,omitempty"`
	RestartOf   string                    `json:"restart_of,omitempty"`
	CreatedAt   string                    `json:"created_at"`
}

// LogEntryResponse — запись журнала execution.
type LogEntryResponse struct {
	Timestamp string `json:"timestamp"`
	NodeID    string `json:"node_id"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// TriggerResponse — триггер из API.
type TriggerResponse struct {
	ID                  string         `json:"id"`
	WorkflowID          string         `json:"workflow_id"`
	Name                string         `json:"name,omitempty"`
	Type                string         `json:"type"`
	CronExpr            string         `json:"cron_expr,omitempty"`
	EventKey            string         `json:"event_key,omitempty"`
	DefaultInput        map[string]any `json:"default_input,omitempty"`
	Enabled             bool           `json:"enabled"`
	NextDueAt           string         `json:"next_due_at,omitempty"`
	ExecutionCount      int64          `json:"execution_count"`
	LastExecutionStatus string         `json:"last_execution_status,omitempty"`
	CreatedAt           string         `json:"created_at"`
}

// --- Request types ---

// CreateWorkflowRequest — создание workflow.
type CreateWorkflowRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	ProjectID   string          `json:"project_id,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
	Nodes       json.RawMessage `json:"nodes"`
	Edges       json.RawMessage `json:"edges,omitempty"`
}

// StartExecutionRequest — запуск workflow.
type StartExecutionRequest struct {
	Version     int            `json:"version,omitempty"`
	TriggeredBy string         `json:"triggered_by,omitempty"`
	Input       map[string]any `json:"input,omitempty"`
}

// CreateTriggerRequest — создание триггера.
type CreateTriggerRequest struct {
	Name         string         `json:"name,omitempty"`
	Type         string         `json:"type"`
	CronExpr     string         `json:"cron_expr,omitempty"`
	EventKey     string         `json:"event_key,omitempty"`
	DefaultInput map[string]any `json:"default_input,omitempty"`
	Enabled      bool           `json:"enabled"`
}

// ListExecutionsOpts — параметры фильтрации executions.
type ListExecutionsOpts struct {
	WorkflowID string
	Status     string
	Limit      int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для API движка.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Workflows ---

// ListWorkflows возвращает все workflows.
func (c *Client) ListWorkflows() ([]WorkflowResponse, error) {
	var workflows []WorkflowResponse
	err := c.list("/api/v1/workflows", nil, &workflows)
	return workflows, err
}

// CreateWorkflow создаёт новый workflow.
func (c *Client) CreateWorkflow(req CreateWorkflowRequest) (*WorkflowResponse, error) {
	var wf WorkflowResponse
	err := c.post("/api/v1/workflows", req, &wf)
	return &wf, err
}

// GetWorkflow возвращает workflow по ID.
func (c *Client) GetWorkflow(id string) (*WorkflowResponse, error) {
	var wf WorkflowResponse
	err := c.get("/api/v1/workflows/"+id, &wf)
	return &wf, err
}

// DeleteWorkflow удаляет workflow.
func (c *Client) DeleteWorkflow(id string) error {
	return c.delete("/api/v1/workflows/" + id)
}

// ListVersions возвращает версии workflow.
func (c *Client) ListVersions(workflowID string) ([]VersionResponse, error) {
	var versions []VersionResponse
	err := c.list("/api/v1/workflows/"+workflowID+"/versions", nil, &versions)
	return versions, err
}

// --- Executions ---

// ListExecutions возвращает список executions с фильтрацией.
func (c *Client) ListExecutions(opts ListExecutionsOpts) ([]ExecutionResponse, error) {
	params := url.Values{}
	if opts.WorkflowID != "" {
		params.Set("workflow_id", opts.WorkflowID)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var executions []ExecutionResponse
	err := c.list("/api/v1/executions", params, &executions)
	return executions, err
}

// StartExecution запускает workflow.
// wait=true блокирует до терминального статуса.
func (c *Client) StartExecution(workflowID string, req StartExecutionRequest, wait bool) (*ExecutionResponse, error) {
	path := "/api/v1/workflows/" + workflowID + "/executions"
	if wait {
		path += "?wait=true"
	}

	var exec ExecutionResponse
	err := c.post(path, req, &exec)
	return &exec, err
}

// GetExecution возвращает execution по ID.
func (c *Client) GetExecution(id string) (*ExecutionResponse, error) {
	var exec ExecutionResponse
	err := c.get("/api/v1/executions/"+id, &exec)
	return &exec, err
}

// TerminateExecution запрашивает завершение execution.
func (c *Client) TerminateExecution(id, reason string) error {
	body := map[string]string{"reason": reason}
	return c.post("/api/v1/executions/"+id+"/terminate", body, nil)
}

// PauseExecution приостанавливает execution.
func (c *Client) PauseExecution(id string) error {
	return c.post("/api/v1/executions/"+id+"/pause", nil, nil)
}

// ResumeExecution снимает паузу с execution.
func (c *Client) ResumeExecution(id string) error {
	return c.post("/api/v1/executions/"+id+"/resume", nil, nil)
}

// RestartExecution перезапускает завершившийся execution.
func (c *Client) RestartExecution(id, triggeredBy string) (*ExecutionResponse, error) {
	body := map[string]string{"triggered_by": triggeredBy}
	var exec ExecutionResponse
	err := c.post("/api/v1/executions/"+id+"/restart", body, &exec)
	return &exec, err
}

// --- Triggers ---

// ListTriggers возвращает триггеры workflow.
func (c *Client) ListTriggers(workflowID string) ([]TriggerResponse, error) {
	var triggers []TriggerResponse
	err := c.list("/api/v1/workflows/"+workflowID+"/triggers", nil, &triggers)
	return triggers, err
}

// CreateTrigger создаёт триггер для workflow.
func (c *Client) CreateTrigger(workflowID string, req CreateTriggerRequest) (*TriggerResponse, error) {
	var trigger TriggerResponse
	err := c.post("/api/v1/workflows/"+workflowID+"/triggers", req, &trigger)
	return &trigger, err
}

// SetTriggerEnabled включает или выключает триггер.
func (c *Client) SetTriggerEnabled(id string, enabled bool) (*TriggerResponse, error) {
	body := map[string]bool{"enabled": enabled}
	var trigger TriggerResponse
	err := c.put("/api/v1/triggers/"+id+"/enabled", body, &trigger)
	return &trigger, err
}

// DeleteTrigger удаляет триггер.
func (c *Client) DeleteTrigger(id string) error {
	return c.delete("/api/v1/triggers/" + id)
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
