package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fedibbm/geoflow/internal/domain"
	"github.com/fedibbm/geoflow/internal/engine"
	"github.com/fedibbm/geoflow/internal/nodes"
	"github.com/fedibbm/geoflow/internal/taskworker"
)

// Coordinator выполняет запуски workflow.
type Coordinator struct {
	workflows  WorkflowStore
	executions ExecutionStore
	registry   *nodes.Registry
	worker     *taskworker.Wrapper
	publisher  EventPublisher
	controls   *controls
	logger     *slog.Logger
}

// Config — конфигурация Coordinator.
type Config struct {
	// Workflows — хранилище определений workflow.
	Workflows WorkflowStore

	// Executions — хранилище executions.
	Executions ExecutionStore

	// Registry — реестр исполнителей узлов.
	Registry *nodes.Registry

	// Worker — обёртка выполнения узлов с retry.
	// Если nil — создаётся с политиками по умолчанию.
	Worker *taskworker.Wrapper

	// Publisher — публикация событий завершения (опционально).
	Publisher EventPublisher

	// Logger — structured logger.
	Logger *slog.Logger
}

// New создаёт новый Coordinator.
func New(cfg Config) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	worker := cfg.Worker
	if worker == nil {
		worker = taskworker.New(taskworker.Config{
			Registry: cfg.Registry,
			Logger:   logger,
		})
	}

	return &Coordinator{
		workflows:  cfg.Workflows,
		executions: cfg.Executions,
		registry:   cfg.Registry,
		worker:     worker,
		publisher:  cfg.Publisher,
		controls:   newControls(),
		logger:     logger,
	}
}

// StartRequest — параметры запуска workflow.
type StartRequest struct {
	// WorkflowID — идентификатор workflow.
	WorkflowID uuid.UUID

	// Version — номер версии. 0 — актуальная версия.
	Version int

	// TriggeredBy — кто инициировал запуск.
	TriggeredBy string

	// Input — входные параметры запуска.
	Input map[string]any

	// RestartOf — ссылка на перезапускаемый execution.
	RestartOf *uuid.UUID
}

// StartExecution создаёт execution и выполняет его до терминального
// статуса. Структурные ошибки графа (цикл, неизвестный тип узла)
// фиксируются как FAILED до выполнения первого узла; ошибка
// возвращается только когда execution не удалось даже создать.
func (c *Coordinator) StartExecution(ctx context.Context, req StartRequest) (*domain.WorkflowExecution, error) {
	exec, version, err := c.CreateExecution(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, exec, version)
}

// StartExecutionAsync создаёт execution и запускает его в фоне.
// Возвращает execution в статусе PENDING сразу после создания.
func (c *Coordinator) StartExecutionAsync(ctx context.Context, req StartRequest) (*domain.WorkflowExecution, error) {
	exec, version, err := c.CreateExecution(ctx, req)
	if err != nil {
		return nil, err
	}

	created := *exec
	go func() {
		// Выполнение переживает контекст запроса
		if _, err := c.run(context.Background(), exec, version); err != nil {
			c.logger.Error("background execution failed",
				"execution_id", exec.ID,
				"error", err,
			)
		}
	}()

	return &created, nil
}

// CreateExecution создаёт execution в статусе PENDING без запуска.
// Возвращает execution и версию графа для выполнения.
func (c *Coordinator) CreateExecution(ctx context.Context, req StartRequest) (*domain.WorkflowExecution, *domain.WorkflowVersion, error) {
	wf, err := c.workflows.GetWorkflow(ctx, req.WorkflowID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, req.WorkflowID)
	}

	versionNum := req.Version
	if versionNum == 0 {
		versionNum = wf.CurrentVersion
	}
	version := wf.Version(versionNum)
	if version == nil {
		return nil, nil, fmt.Errorf("%w: workflow %s version %d", ErrVersionNotFound, req.WorkflowID, versionNum)
	}

	exec := &domain.WorkflowExecution{
		ID:          uuid.New(),
		WorkflowID:  wf.ID,
		Version:     versionNum,
		Status:      domain.ExecutionPending,
		TriggeredBy: req.TriggeredBy,
		ProjectID:   wf.ProjectID,
		Input:       req.Input,
		RestartOf:   req.RestartOf,
		CreatedAt:   time.Now(),
	}

	if err := c.executions.CreateExecution(ctx, exec); err != nil {
		return nil, nil, fmt.Errorf("create execution: %w", err)
	}

	c.logger.Info("execution created",
		"execution_id", exec.ID,
		"workflow_id", wf.ID,
		"version", versionNum,
		"triggered_by", req.TriggeredBy,
	)

	return exec, version, nil
}

// Restart создаёт новый execution для того же workflow и версии,
// что и завершившийся, со ссылкой RestartOf. Терминальные executions
// не "воскрешаются".
func (c *Coordinator) Restart(ctx context.Context, executionID uuid.UUID, triggeredBy string) (*domain.WorkflowExecution, error) {
	prev, err := c.executions.GetExecution(ctx, executionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrExecutionNotFound, executionID)
	}
	if !prev.IsFinished() {
		return nil, fmt.Errorf("restart of unfinished execution %s: status %s", executionID, prev.Status)
	}

	return c.StartExecution(ctx, StartRequest{
		WorkflowID:  prev.WorkflowID,
		Version:     prev.Version,
		TriggeredBy: triggeredBy,
		Input:       prev.Input,
		RestartOf:   &prev.ID,
	})
}

// Terminate запрашивает завершение активного execution.
// Запрос кооперативный: текущий узел доработает, следующий не начнётся.
func (c *Coordinator) Terminate(executionID uuid.UUID, reason string) error {
	ctl, ok := c.controls.get(executionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrExecutionNotActive, executionID)
	}
	if reason == "" {
		reason = "terminated by request"
	}
	ctl.terminate(reason)
	return nil
}

// Pause приостанавливает активный execution между узлами.
func (c *Coordinator) Pause(executionID uuid.UUID) error {
	ctl, ok := c.controls.get(executionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrExecutionNotActive, executionID)
	}
	ctl.pause()
	return nil
}

// Resume снимает паузу с execution.
func (c *Coordinator) Resume(executionID uuid.UUID) error {
	ctl, ok := c.controls.get(executionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrExecutionNotActive, executionID)
	}
	if !ctl.unpause() {
		return fmt.Errorf("%w: %s", ErrExecutionNotPaused, executionID)
	}
	return nil
}

// GetExecution возвращает execution по ID.
func (c *Coordinator) GetExecution(ctx context.Context, executionID uuid.UUID) (*domain.WorkflowExecution, error) {
	return c.executions.GetExecution(ctx, executionID)
}

// ListExecutions возвращает executions по фильтру.
func (c *Coordinator) ListExecutions(ctx context.Context, filter domain.ExecutionFilter) ([]domain.WorkflowExecution, error) {
	return c.executions.ListExecutions(ctx, filter)
}

// ActiveCount возвращает число выполняемых сейчас executions.
func (c *Coordinator) ActiveCount() int {
	return c.controls.count()
}

// run выполняет execution до терминального статуса.
func (c *Coordinator) run(ctx context.Context, exec *domain.WorkflowExecution, version *domain.WorkflowVersion) (*domain.WorkflowExecution, error) {
	ctl := c.controls.add(exec.ID)
	defer c.controls.remove(exec.ID)
	activeExecutions.Inc()
	defer activeExecutions.Dec()

	exec.MarkRunning()
	exec.AppendLog(domain.SystemNode, domain.LogInfo, "execution started")
	if err := c.persist(ctx, exec); err != nil {
		return exec, err
	}

	// Пустой граф завершается сразу
	if len(version.Nodes) == 0 {
		exec.AppendLog(domain.SystemNode, domain.LogInfo, "workflow has no nodes")
		return c.finishCompleted(ctx, exec, map[string]map[string]any{})
	}

	// Валидация графа: структурные ошибки терминальны и фиксируются
	// до выполнения первого узла
	if err := engine.Validate(version, c.registry.Has); err != nil {
		exec.AppendLog(domain.SystemNode, domain.LogError, "workflow graph is invalid: "+err.Error())
		return c.finishFailed(ctx, exec, fmt.Sprintf("invalid workflow graph: %v", err))
	}

	order, err := engine.BuildOrder(version.Nodes, version.Edges)
	if err != nil {
		exec.AppendLog(domain.SystemNode, domain.LogError, "failed to build execution order: "+err.Error())
		return c.finishFailed(ctx, exec, fmt.Sprintf("build execution order: %v", err))
	}

	ec := nodes.NewContext(exec.WorkflowID, exec.ID, exec.TriggeredBy, exec.ProjectID, exec.Input)
	results := make(map[string]map[string]any)
	skipped := make(map[string]bool)

	for _, node := range order {
		// Кооперативные флаги проверяются между узлами
		if terminated, reason := ctl.wait(ctx); terminated {
			exec.AppendLog(domain.SystemNode, domain.LogWarning, "execution terminated: "+reason)
			return c.finishCancelled(ctx, exec, reason)
		}
		if ctx.Err() != nil {
			exec.AppendLog(domain.SystemNode, domain.LogWarning, "execution cancelled: "+ctx.Err().Error())
			return c.finishCancelled(ctx, exec, ctx.Err().Error())
		}

		if engine.ShouldSkip(node.ID, version.Edges, ec.Globals(), skipped) {
			skipped[node.ID] = true
			nodesSkipped.Inc()
			exec.AppendLog(node.ID, domain.LogInfo, "node skipped: no active inbound edge")
			if err := c.persist(ctx, exec); err != nil {
				return exec, err
			}
			continue
		}

		exec.AppendLog(node.ID, domain.LogInfo, fmt.Sprintf("node started: type=%s", node.Type))
		if err := c.persist(ctx, exec); err != nil {
			return exec, err
		}

		result, err := c.worker.RunToCompletion(ctx, taskworker.Task{
			ExecutionID: exec.ID,
			Node:        node,
			Attempt:     1,
		}, ec)
		if err != nil {
			// Отмена контекста
			exec.AppendLog(node.ID, domain.LogWarning, "node cancelled: "+err.Error())
			return c.finishCancelled(ctx, exec, err.Error())
		}

		if !result.Completed() {
			exec.AppendLog(node.ID, domain.LogError,
				fmt.Sprintf("node failed after %d/%d attempts: %s", result.Attempt, result.MaxAttempts, result.Error))
			if result.CompensationsInvoked > 0 {
				exec.AppendLog(domain.SystemNode, domain.LogInfo,
					fmt.Sprintf("invoked %d compensations", result.CompensationsInvoked))
			}
			return c.finishFailed(ctx, exec,
				fmt.Sprintf("node %s failed: %s", node.ID, result.Error))
		}

		ec.SetNodeOutput(node.ID, result.Outputs)
		results[node.ID] = result.Outputs

		exec.AppendLog(node.ID, domain.LogInfo,
			fmt.Sprintf("node completed in %s (attempt %d)", result.Duration.Round(time.Millisecond), result.Attempt))
		if err := c.persist(ctx, exec); err != nil {
			return exec, err
		}
	}

	c.worker.Compensations().Clear(exec.ID)
	return c.finishCompleted(ctx, exec, results)
}


func (c *Coordinator) finishCompleted(ctx context.Context, exec *domain.WorkflowExecution, results map[string]map[string]any) (*domain.WorkflowExecution, error) {
	exec.MarkCompleted(results)
	exec.AppendLog(domain.SystemNode, domain.LogInfo, "execution completed")
	return c.finish(ctx, exec)
}

func (c *Coordinator) finishFailed(ctx context.Context, exec *domain.WorkflowExecution, errMsg string) (*domain.WorkflowExecution, error) {
	exec.MarkFailed(errMsg)
	exec.AppendLog(domain.SystemNode, domain.LogError, "execution failed: "+errMsg)
	return c.finish(ctx, exec)
}

func (c *Coordinator) finishCancelled(ctx context.Context, exec *domain.WorkflowExecution, reason string) (*domain.WorkflowExecution, error) {
	// Откат должен отработать и при отменённом контексте запуска
	invoked := c.worker.Compensations().Invoke(context.WithoutCancel(ctx), exec.ID, "execution cancelled: "+reason)
	if invoked > 0 {
		exec.AppendLog(domain.SystemNode, domain.LogInfo,
			fmt.Sprintf("invoked %d compensations", invoked))
	}
	exec.MarkCancelled(reason)
	exec.AppendLog(domain.SystemNode, domain.LogWarning, "execution cancelled")
	return c.finish(ctx, exec)
}

// finish сохраняет терминальный execution и публикует событие.
func (c *Coordinator) finish(ctx context.Context, exec *domain.WorkflowExecution) (*domain.WorkflowExecution, error) {
	if err := c.persist(ctx, exec); err != nil {
		return exec, err
	}

	executionsFinished.WithLabelValues(string(exec.Status)).Inc()
	executionDuration.Observe(exec.Duration().Seconds())

	c.logger.Info("execution finished",
		"execution_id", exec.ID,
		"workflow_id", exec.WorkflowID,
		"status", exec.Status,
		"duration", exec.Duration(),
	)

	if c.publisher != nil {
		if err := c.publisher.PublishExecutionFinished(ctx, exec); err != nil {
			// Execution сохранён — потеря события не фатальна
			c.logger.Warn("failed to publish execution finished event",
				"execution_id", exec.ID,
				"error", err,
			)
		}
	}

	return exec, nil
}

// persist сохраняет execution, переживая отменённый контекст:
// терминальный переход должен попасть в хранилище даже при shutdown.
func (c *Coordinator) persist(ctx context.Context, exec *domain.WorkflowExecution) error {
	if err := c.executions.UpdateExecution(ctx, exec); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return c.executions.UpdateExecution(saveCtx, exec)
		}
		return fmt.Errorf("update execution %s: %w", exec.ID, err)
	}
	return nil
}
