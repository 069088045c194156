// Package cascade распространяет мягкое удаление и восстановление записи
// по объявленным связям на зависимые записи.
package cascade

import (
	"context"
	"fmt"

	"github.com/iudanet/wordkeeper/internal/models"
)

// Direction направление каскада
type Direction int

const (
	Delete Direction = iota
	Restore
)

// Target значение DeleteFlag, к которому приводятся записи
func (d Direction) Target() bool {
	return d == Delete
}

func (d Direction) String() string {
	if d == Delete {
		return "delete"
	}
	return "restore"
}

// DirectionFor возвращает направление по целевому значению DeleteFlag
func DirectionFor(deleted bool) Direction {
	if deleted {
		return Delete
	}
	return Restore
}

// Shape форма связи
type Shape int

const (
	// Collection дочерние записи вида Target, ссылающиеся на запись
	Collection Shape = iota
	// Reference родительская запись вида Target, на которую ссылается запись
	Reference
)

// Relation декларативное правило каскада по одной связи.
// OnDelete и OnRestore включаются независимо друг от друга.
type Relation struct {
	Name      string
	Target    models.Kind
	Shape     Shape
	OnDelete  bool
	OnRestore bool
}

// Enabled сообщает, участвует ли связь в каскаде направления dir
func (r Relation) Enabled(dir Direction) bool {
	if dir == Delete {
		return r.OnDelete
	}
	return r.OnRestore
}

// SelectFunc выбирает записи, к которым применяется каскад от n
type SelectFunc func(ctx context.Context, g Graph, n Node) ([]Node, error)

// Rule явное правило с фильтрацией. Для пары (вид, направление) правило
// полностью заменяет декларативные связи.
type Rule struct {
	Select    SelectFunc
	Name      string
	Kind      models.Kind
	Direction Direction
}

type ruleKey struct {
	kind models.Kind
	dir  Direction
}

// Registry неизменяемый после построения набор правил каскада
type Registry struct {
	relations map[models.Kind][]Relation
	rules     map[ruleKey]Rule
}

// NewRegistry создает пустой реестр
func NewRegistry() *Registry {
	return &Registry{
		relations: make(map[models.Kind][]Relation),
		rules:     make(map[ruleKey]Rule),
	}
}

// Relate добавляет связь для записей вида from
func (r *Registry) Relate(from models.Kind, rel Relation) *Registry {
	r.relations[from] = append(r.relations[from], rel)
	return r
}

// AddRule регистрирует явное правило. Повторная регистрация для той же
// пары (вид, направление) это ошибка конфигурации.
func (r *Registry) AddRule(rule Rule) *Registry {
	key := ruleKey{kind: rule.Kind, dir: rule.Direction}
	if _, exists := r.rules[key]; exists {
		panic(fmt.Sprintf("cascade: duplicate rule for %s/%s", rule.Kind, rule.Direction))
	}
	r.rules[key] = rule
	return r
}

// Resolve возвращает правило для пары (вид, направление) либо связи,
// включенные для этого направления. Источники никогда не смешиваются.
func (r *Registry) Resolve(kind models.Kind, dir Direction) (*Rule, []Relation) {
	if rule, ok := r.rules[ruleKey{kind: kind, dir: dir}]; ok {
		return &rule, nil
	}
	var enabled []Relation
	for _, rel := range r.relations[kind] {
		if rel.Enabled(dir) {
			enabled = append(enabled, rel)
		}
	}
	return nil, enabled
}

// Default реестр правил для пользовательских записей.
//
// Удаление: категория -> теги, тег -> связи с закладками и фразами,
// закладка и фраза -> свои связи с тегами.
// Восстановление: категория, закладка и фраза восстанавливают только те
// дочерние записи, которые были удалены вместе с ними (тот же ModifiedAt);
// связь с тегом восстанавливает удаленный тег. Восстановление тега не
// восстанавливает его категорию.
func Default() *Registry {
	r := NewRegistry()

	r.Relate(models.KindTagCategory, Relation{Name: "Tags", Target: models.KindTag, Shape: Collection, OnDelete: true})
	r.Relate(models.KindTag, Relation{Name: "BookmarkTags", Target: models.KindBookmarkTag, Shape: Collection, OnDelete: true})
	r.Relate(models.KindTag, Relation{Name: "PhraseTags", Target: models.KindPhraseTag, Shape: Collection, OnDelete: true})
	r.Relate(models.KindBookmark, Relation{Name: "BookmarkTags", Target: models.KindBookmarkTag, Shape: Collection, OnDelete: true})
	r.Relate(models.KindPhrase, Relation{Name: "PhraseTags", Target: models.KindPhraseTag, Shape: Collection, OnDelete: true})

	r.AddRule(Rule{Name: "restore tags deleted with category", Kind: models.KindTagCategory, Direction: Restore,
		Select: DeletedChildrenStampedWith(models.KindTag)})
	r.AddRule(Rule{Name: "restore bookmark tags deleted with bookmark", Kind: models.KindBookmark, Direction: Restore,
		Select: DeletedChildrenStampedWith(models.KindBookmarkTag)})
	r.AddRule(Rule{Name: "restore phrase tags deleted with phrase", Kind: models.KindPhrase, Direction: Restore,
		Select: DeletedChildrenStampedWith(models.KindPhraseTag)})
	r.AddRule(Rule{Name: "restore tag of bookmark tag", Kind: models.KindBookmarkTag, Direction: Restore,
		Select: DeletedParent(models.KindTag)})
	r.AddRule(Rule{Name: "restore tag of phrase tag", Kind: models.KindPhraseTag, Direction: Restore,
		Select: DeletedParent(models.KindTag)})

	return r
}

// DeletedChildrenStampedWith выбирает удаленные дочерние записи вида kind,
// чей ModifiedAt совпадает с ModifiedAt родителя на момент удаления.
func DeletedChildrenStampedWith(kind models.Kind) SelectFunc {
	return func(ctx context.Context, g Graph, n Node) ([]Node, error) {
		children, err := g.Children(ctx, kind, n)
		if err != nil {
			return nil, err
		}
		var selected []Node
		for _, child := range children {
			if child.Deleted && child.ModifiedAt == n.ModifiedAt {
				selected = append(selected, child)
			}
		}
		return selected, nil
	}
}

// DeletedParent выбирает родителя вида kind, если он удален
func DeletedParent(kind models.Kind) SelectFunc {
	return func(ctx context.Context, g Graph, n Node) ([]Node, error) {
		parent, ok, err := g.Parent(ctx, n, kind)
		if err != nil {
			return nil, err
		}
		if !ok || !parent.Deleted {
			return nil, nil
		}
		return []Node{parent}, nil
	}
}
