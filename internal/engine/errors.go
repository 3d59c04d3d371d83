package engine

import "errors"

// Ошибки валидации графа workflow.
var (
	// ErrEmptyNodeID — узел не имеет ID.
	ErrEmptyNodeID = errors.New("node has empty ID")

	// ErrDuplicateNodeID — несколько узлов с одинаковым ID.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNodeType — тип узла не зарегистрирован.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrUnknownEdgeEndpoint — ребро ссылается на несуществующий узел.
	ErrUnknownEdgeEndpoint = errors.New("edge references unknown node")

	// ErrSelfEdge — ребро из узла в самого себя.
	ErrSelfEdge = errors.New("edge connects node to itself")

	// ErrCyclicGraph — граф содержит цикл.
	ErrCyclicGraph = errors.New("workflow graph contains a cycle")
)

// ValidationError — ошибка валидации с контекстом узла.
type ValidationError struct {
	NodeID  string // ID узла, где произошла ошибка
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.NodeID != "" {
		return "node " + e.NodeID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(nodeID, field, message string, err error) *ValidationError {
	return &ValidationError{
		NodeID:  nodeID,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
