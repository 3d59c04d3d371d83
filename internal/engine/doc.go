// Package engine содержит построение порядка выполнения графа workflow.
//
// Включает:
//   - order.go      — топологическая сортировка (алгоритм Кана), поиск циклов
//   - validate.go   — валидация графа версии (узлы, рёбра, типы)
//   - conditions.go — условные рёбра и отсечение недостижимых веток
//
// Engine отвечает за понимание структуры графа и определение линейного
// порядка выполнения узлов; сами узлы выполняет координатор.
package engine
