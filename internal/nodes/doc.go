// Package nodes содержит реестр исполнителей узлов workflow и встроенные
// реализации для платформы спутниковых снимков.
//
// Каждый тип узла (trigger, data-input, processing, decision, output)
// реализует интерфейс Executor. Координатор получает исполнителя из Registry
// по типу узла и вызывает Validate перед Execute.
//
// Основные файлы:
//   - executor.go: интерфейс Executor, Result и помощники конфигурации
//   - context.go: Context с выходами узлов и глобальными переменными
//   - registry.go: потокобезопасный реестр тип → Executor
//   - trigger.go, datainput.go, processing.go, decision.go, output.go:
//     встроенные исполнители
package nodes
