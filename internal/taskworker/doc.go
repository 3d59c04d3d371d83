// Package taskworker оборачивает выполнение узлов workflow в единый
// контракт повторов и компенсаций.
//
// Wrapper выполняет одну попытку узла и классифицирует исход:
// Completed, FailedRetryable или FailedTerminal. Планирование повторов
// кооперативное: wrapper не спит, а возвращает RetryAfterMs — задержку
// перед следующей попыткой; вызывающий (координатор) сам решает, когда
// повторить.
//
// Ошибки валидации конфигурации терминальны и не участвуют в retry.
// Классификация остальных ошибок определяется RetryPolicy для типа
// задачи: стратегия backoff, максимум попыток, список повторяемых
// подстрок ошибок.
//
// CompensationLog хранит LIFO-стек компенсаций на запуск: при провале
// запуска зарегистрированные компенсации вызываются в обратном порядке.
package taskworker
