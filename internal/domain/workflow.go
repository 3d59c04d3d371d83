package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowDefinition — определение рабочего процесса обработки снимков.
//
// Definition — это "рецепт" пайплайна: граф узлов и рёбер.
// Определение версионируется: изменение графа создаёт новую WorkflowVersion,
// история никогда не правится на месте. Каждый запуск (WorkflowExecution)
// выполняет конкретную версию.
type WorkflowDefinition struct {
	// ID — уникальный идентификатор workflow.
	ID uuid.UUID `json:"id"`

	// Name — человекочитаемое имя (например, "ndvi-monitoring").
	Name string `json:"name"`

	// Description — описание назначения workflow.
	Description string `json:"description,omitempty"`

	// ProjectID — проект платформы, которому принадлежит workflow.
	ProjectID string `json:"project_id,omitempty"`

	// CurrentVersion — номер актуальной версии.
	CurrentVersion int `json:"current_version"`

	// Versions — снимки версий, упорядочены по номеру.
	Versions []WorkflowVersion `json:"versions,omitempty"`

	// CreatedBy — кто создал workflow.
	CreatedBy string `json:"created_by,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения (создания версии).
	UpdatedAt time.Time `json:"updated_at"`
}

// Version возвращает версию по номеру.
// Возвращает nil, если версия не найдена.
func (d *WorkflowDefinition) Version(n int) *WorkflowVersion {
	for i := range d.Versions {
		if d.Versions[i].Version == n {
			return &d.Versions[i]
		}
	}
	return nil
}

// Current возвращает актуальную версию definition.
func (d *WorkflowDefinition) Current() *WorkflowVersion {
	return d.Version(d.CurrentVersion)
}

// WorkflowVersion — неизменяемый снимок графа workflow.
//
// После создания версия не редактируется: любое изменение графа
// порождает следующую версию с инкрементом номера.
type WorkflowVersion struct {
	// WorkflowID — ссылка на родительский workflow.
	WorkflowID uuid.UUID `json:"workflow_id"`

	// Version — номер версии (1, 2, 3, ...).
	Version int `json:"version"`

	// Nodes — узлы графа.
	Nodes []WorkflowNode `json:"nodes"`

	// Edges — рёбра (зависимости) графа.
	Edges []WorkflowEdge `json:"edges,omitempty"`

	// Changelog — описание изменений относительно предыдущей версии.
	Changelog string `json:"changelog,omitempty"`

	// CreatedBy — кто создал версию.
	CreatedBy string `json:"created_by,omitempty"`

	// CreatedAt — время создания версии.
	CreatedAt time.Time `json:"created_at"`
}

// WorkflowNode — один шаг пайплайна.
//
// Config интерпретируется только executor'ом соответствующего типа:
// движок передаёт её как есть.
type WorkflowNode struct {
	// ID — уникальный идентификатор узла в рамках версии.
	ID string `json:"id"`

	// Type — тип узла: "trigger", "data-input", "processing", "decision", "output".
	// Реестр executor'ов допускает регистрацию дополнительных типов.
	Type string `json:"type"`

	// Label — отображаемое имя узла.
	Label string `json:"label,omitempty"`

	// Config — конфигурация узла (зависит от типа).
	// Для processing: processing_type, band параметры
	// Для data-input: data_source, project_id / image_id
	// Для decision: condition_type, operator, threshold и т.д.
	Config map[string]any `json:"config,omitempty"`
}

// WorkflowEdge — направленная зависимость между узлами.
//
// Ребро без Condition безусловно. Ребро с Condition активно только если
// глобальная переменная с ключом Condition.Key равна Condition.Equals —
// так decision-узлы отсекают недостижимые ветки.
type WorkflowEdge struct {
	// Source — ID узла-источника.
	Source string `json:"source"`

	// Target — ID узла-приёмника.
	Target string `json:"target"`

	// Condition — условие активности ребра (nil = безусловное).
	Condition *EdgeCondition `json:"condition,omitempty"`
}

// EdgeCondition — условие на ребре.
//
// Key ссылается на глобальную переменную контекста, которую decision-узел
// публикует под ключом "<node_id>.decision".
type EdgeCondition struct {
	// Key — ключ глобальной переменной.
	Key string `json:"key"`

	// Equals — ожидаемое значение переменной.
	Equals any `json:"equals"`
}

// Стандартные типы узлов.
const (
	NodeTypeTrigger    = "trigger"
	NodeTypeDataInput  = "data-input"
	NodeTypeProcessing = "processing"
	NodeTypeDecision   = "decision"
	NodeTypeOutput     = "output"
)

// BuiltinNodeTypes возвращает список встроенных типов узлов.
func BuiltinNodeTypes() []string {
	return []string{
		NodeTypeTrigger,
		NodeTypeDataInput,
		NodeTypeProcessing,
		NodeTypeDecision,
		NodeTypeOutput,
	}
}
