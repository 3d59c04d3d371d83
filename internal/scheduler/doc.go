// Package scheduler реализует обработку триггеров workflow.
//
// Scheduler периодически проверяет SCHEDULED-триггеры с истекшим
// next_due_at и публикует запросы на выполнение; EventListener делает
// то же для EVENT-триггеров по событиям платформы.
//
// Структура:
//   - scheduler.go — основная логика Scheduler (Tick, fire)
//   - events.go    — EventListener для EVENT-триггеров
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{
//	    Triggers:  triggerRepo,
//	    Requester: publisher,
//	    Logger:    logger,
//	})
//
//	// Вызывается каждый тик (обычно раз в секунду)
//	if err := sched.Tick(ctx); err != nil {
//	    logger.Error("scheduler tick failed", "error", err)
//	}
//
// Leader Election:
//
// Scheduler не реализует leader election самостоятельно.
// Это делается в main.go через pg_try_advisory_lock.
// Метод Tick() вызывается только лидером.
package scheduler
