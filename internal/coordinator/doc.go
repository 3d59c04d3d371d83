// Package coordinator управляет запусками workflow.
//
// Coordinator — центральный компонент движка, который:
//   - Создаёт executions для версий workflow (PENDING)
//   - Валидирует граф и строит порядок выполнения (Kahn)
//   - Выполняет узлы последовательно через taskworker.Wrapper
//   - Пропускает недостижимые ветки по условным рёбрам
//   - Ведёт журнал и сохраняет execution после каждого перехода
//   - Финализирует executions (COMPLETED/FAILED/CANCELLED)
//
// Управление активным запуском — кооперативное: Terminate, Pause и
// Resume выставляют флаги, которые цикл проверяет между узлами.
// Выполняющийся узел не прерывается.
//
// Терминальные executions неизменяемы. Повторный запуск создаёт новый
// execution со ссылкой RestartOf на исходный.
package coordinator
