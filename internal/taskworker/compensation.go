package taskworker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// CompensationFunc — компенсирующее действие узла: откатывает побочные
// эффекты уже выполненной работы (удаляет сохранённые результаты,
// отменяет заказанную обработку).
type CompensationFunc func(ctx context.Context) error

// compensation — одна зарегистрированная компенсация.
type compensation struct {
	nodeID string
	fn     CompensationFunc
}

// CompensationLog — стек компенсаций по запускам.
//
// Компенсации регистрируются в порядке выполнения узлов и вызываются
// в обратном порядке (LIFO). Потокобезопасен.
type CompensationLog struct {
	mu     sync.Mutex
	stacks map[uuid.UUID][]compensation
	logger *slog.Logger
}

// NewCompensationLog создаёт пустой журнал компенсаций.
func NewCompensationLog(logger *slog.Logger) *CompensationLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompensationLog{
		stacks: make(map[uuid.UUID][]compensation),
		logger: logger,
	}
}

// Register добавляет компенсацию узла в стек запуска.
func (l *CompensationLog) Register(executionID uuid.UUID, nodeID string, fn CompensationFunc) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stacks[executionID] = append(l.stacks[executionID], compensation{nodeID: nodeID, fn: fn})
}

// Count возвращает число зарегистрированных компенсаций запуска.
func (l *CompensationLog) Count(executionID uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.stacks[executionID])
}

// Invoke выполняет компенсации запуска в обратном порядке и очищает стек.
// Reason — человекочитаемая причина отката, попадает в лог.
//
// Ошибка одной компенсации логируется и не прерывает остальные.
// Возвращает число успешно выполненных компенсаций.
func (l *CompensationLog) Invoke(ctx context.Context, executionID uuid.UUID, reason string) int {
	l.mu.Lock()
	stack := l.stacks[executionID]
	delete(l.stacks, executionID)
	l.mu.Unlock()

	invoked := 0
	for i := len(stack) - 1; i >= 0; i-- {
		comp := stack[i]

		l.logger.Info("invoking compensation",
			"execution_id", executionID,
			"node_id", comp.nodeID,
			"reason", reason,
		)

		if err := comp.fn(ctx); err != nil {
			l.logger.Error("compensation failed",
				"execution_id", executionID,
				"node_id", comp.nodeID,
				"error", err,
			)
			continue
		}
		invoked++
	}

	return invoked
}

// Clear удаляет компенсации запуска без выполнения.
// Вызывается после успешного завершения запуска.
func (l *CompensationLog) Clear(executionID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.stacks, executionID)
}
