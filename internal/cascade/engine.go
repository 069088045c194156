package cascade

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/wordkeeper/internal/models"
)

// Node состояние записи, достаточное для обхода графа связей
type Node struct {
	Kind       models.Kind
	ID         string
	ModifiedAt models.Timestamp
	Deleted    bool
}

// NodeOf строит Node по записи
func NodeOf(r models.Record) Node {
	return Node{
		Kind:       r.Kind(),
		ID:         r.GetID(),
		ModifiedAt: r.Modified(),
		Deleted:    r.IsDeleted(),
	}
}

// Graph доступ к записям внутри открытой транзакции реплики.
// Все изменения, сделанные через SetDeleted, откатываются вместе с транзакцией.
type Graph interface {
	// Children дочерние записи вида kind, ссылающиеся на parent
	Children(ctx context.Context, kind models.Kind, parent Node) ([]Node, error)
	// Parent запись вида kind, на которую ссылается child
	Parent(ctx context.Context, child Node, kind models.Kind) (Node, bool, error)
	// SetDeleted выставляет DeleteFlag записи
	SetDeleted(ctx context.Context, n Node, deleted bool) error
}

// Result записи, у которых каскад изменил DeleteFlag, в порядке обхода
type Result struct {
	Flipped []Node
}

// Engine применяет правила реестра к графу
type Engine struct {
	registry *Registry
	logger   *slog.Logger
}

// NewEngine создает движок каскада
func NewEngine(registry *Registry, logger *slog.Logger) *Engine {
	return &Engine{registry: registry, logger: logger}
}

// Delete каскадно удаляет root и зависимые записи
func (e *Engine) Delete(ctx context.Context, g Graph, root Node) (*Result, error) {
	return e.Apply(ctx, g, root, Delete)
}

// Restore каскадно восстанавливает root и зависимые записи
func (e *Engine) Restore(ctx context.Context, g Graph, root Node) (*Result, error) {
	return e.Apply(ctx, g, root, Restore)
}

// Apply приводит root к целевому значению флага и обходит связи.
// Связи root обходятся даже если его флаг уже равен целевому: так реплика
// догоняет каскад после применения пакета, в котором флаг уже изменен.
// Множество посещенных id живет в пределах одного вызова.
func (e *Engine) Apply(ctx context.Context, g Graph, root Node, dir Direction) (*Result, error) {
	w := &walker{
		engine:    e,
		graph:     g,
		dir:       dir,
		target:    dir.Target(),
		processed: make(map[string]struct{}),
	}
	if err := w.visit(ctx, root); err != nil {
		return nil, err
	}
	return &Result{Flipped: w.flipped}, nil
}

type walker struct {
	engine    *Engine
	graph     Graph
	processed map[string]struct{}
	flipped   []Node
	dir       Direction
	target    bool
}

func (w *walker) visit(ctx context.Context, n Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, seen := w.processed[n.ID]; seen {
		return nil
	}
	w.processed[n.ID] = struct{}{}

	if n.Deleted != w.target {
		if err := w.graph.SetDeleted(ctx, n, w.target); err != nil {
			return fmt.Errorf("failed to %s %s %s: %w", w.dir, n.Kind, n.ID, err)
		}
		w.flipped = append(w.flipped, n)
		w.engine.logger.Debug("cascade flip",
			slog.String("direction", w.dir.String()),
			slog.String("kind", n.Kind.String()),
			slog.String("record_id", n.ID))
	}

	related, err := w.related(ctx, n)
	if err != nil {
		return err
	}
	for _, r := range related {
		if r.Deleted == w.target {
			continue
		}
		if err := w.visit(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) related(ctx context.Context, n Node) ([]Node, error) {
	rule, relations := w.engine.registry.Resolve(n.Kind, w.dir)
	if rule != nil {
		nodes, err := rule.Select(ctx, w.graph, n)
		if err != nil {
			return nil, fmt.Errorf("cascade rule %q: %w", rule.Name, err)
		}
		return nodes, nil
	}

	var out []Node
	for _, rel := range relations {
		switch rel.Shape {
		case Collection:
			children, err := w.graph.Children(ctx, rel.Target, n)
			if err != nil {
				return nil, fmt.Errorf("cascade relation %s.%s: %w", n.Kind, rel.Name, err)
			}
			out = append(out, children...)
		case Reference:
			parent, ok, err := w.graph.Parent(ctx, n, rel.Target)
			if err != nil {
				return nil, fmt.Errorf("cascade relation %s.%s: %w", n.Kind, rel.Name, err)
			}
			if ok {
				out = append(out, parent)
			}
		}
	}
	return out, nil
}
