package coordinator

import "errors"

// Ошибки координатора.
var (
	// ErrWorkflowNotFound — workflow не найден.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrVersionNotFound — версия workflow не найдена.
	ErrVersionNotFound = errors.New("workflow version not found")

	// ErrExecutionNotFound — execution не найден.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrExecutionNotActive — execution не выполняется координатором.
	ErrExecutionNotActive = errors.New("execution is not active")

	// ErrExecutionFinished — execution уже в терминальном статусе.
	ErrExecutionFinished = errors.New("execution already finished")

	// ErrExecutionNotPaused — execution не на паузе.
	ErrExecutionNotPaused = errors.New("execution is not paused")
)
