// Package cli реализует инструмент командной строки GeoFlow.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с GeoFlow API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для управления workflows, executions и triggers.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для GeoFlow API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	workflows, err := client.ListWorkflows()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: geoflow executions list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - workflows: list, create, show, versions, delete
//   - execute: запуск workflow (терминальная команда, не группа)
//   - executions: list, show, logs, terminate, pause, resume, restart
//   - triggers: list, create, enable, disable, delete
//
// Каждая группа создаётся через фабричную функцию (NewWorkflowCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
