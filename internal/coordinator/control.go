package coordinator

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// control — кооперативные флаги управления активным запуском.
//
// Цикл координатора проверяет флаги между узлами: выполняющийся узел
// не прерывается.
type control struct {
	mu         sync.Mutex
	terminated bool
	reason     string
	paused     bool
	resume     chan struct{}
}

func newControl() *control {
	return &control{}
}

// terminate выставляет флаг завершения и снимает паузу.
func (c *control) terminate(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.terminated = true
	c.reason = reason
	if c.paused {
		c.paused = false
		close(c.resume)
	}
}

// pause ставит запуск на паузу.
func (c *control) pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.paused || c.terminated {
		return
	}
	c.paused = true
	c.resume = make(chan struct{})
}

// unpause снимает паузу. Возвращает false, если запуск не на паузе.
func (c *control) unpause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.paused {
		return false
	}
	c.paused = false
	close(c.resume)
	return true
}

// state возвращает снимок флагов и канал возобновления.
func (c *control) state() (terminated bool, reason string, paused bool, resume <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminated, c.reason, c.paused, c.resume
}

// wait блокирует до снятия паузы, завершения или отмены контекста.
// Возвращает (terminated, reason).
func (c *control) wait(ctx context.Context) (bool, string) {
	for {
		terminated, reason, paused, resume := c.state()
		if terminated {
			return true, reason
		}
		if !paused {
			return false, ""
		}

		select {
		case <-resume:
		case <-ctx.Done():
			return true, ctx.Err().Error()
		}
	}
}

// controls — реестр флагов по активным executions.
type controls struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*control
}

func newControls() *controls {
	return &controls{entries: make(map[uuid.UUID]*control)}
}

// add регистрирует флаги для execution.
func (cs *controls) add(executionID uuid.UUID) *control {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	ctl := newControl()
	cs.entries[executionID] = ctl
	return ctl
}

// get возвращает флаги активного execution.
func (cs *controls) get(executionID uuid.UUID) (*control, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	ctl, ok := cs.entries[executionID]
	return ctl, ok
}

// remove удаляет флаги завершившегося execution.
func (cs *controls) remove(executionID uuid.UUID) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.entries, executionID)
}

// count возвращает число активных executions.
func (cs *controls) count() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.entries)
}
