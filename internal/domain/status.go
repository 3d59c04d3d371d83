package domain

// ExecutionStatus — статус выполнения workflow.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → COMPLETED
//	                  ↘ FAILED
//	          (или) → CANCELLED (из PENDING или RUNNING)
//
// Терминальные статусы финальны: запись после них не мутируется,
// перезапуск создаёт новый execution со ссылкой RestartOf.
type ExecutionStatus string

const (
	// ExecutionPending — запись создана, выполнение не началось.
	ExecutionPending ExecutionStatus = "PENDING"

	// ExecutionRunning — координатор выполняет узлы.
	ExecutionRunning ExecutionStatus = "RUNNING"

	// ExecutionCompleted — все узлы успешно выполнены.
	ExecutionCompleted ExecutionStatus = "COMPLETED"

	// ExecutionFailed — выполнение прервано ошибкой.
	ExecutionFailed ExecutionStatus = "FAILED"

	// ExecutionCancelled — выполнение отменено администратором.
	ExecutionCancelled ExecutionStatus = "CANCELLED"
)

// IsTerminal возвращает true, если статус финальный.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionCompleted, ExecutionFailed, ExecutionCancelled:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление статуса.
func (s ExecutionStatus) String() string {
	return string(s)
}
