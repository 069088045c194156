package storage

import (
	"context"
	"errors"

	"github.com/iudanet/wordkeeper/internal/cascade"
	"github.com/iudanet/wordkeeper/internal/models"
)

// Graph граф каскада поверх транзакции реплики. Флаги меняются в памяти;
// измененные записи попадают в реплику только при Flush, уже с новым ModifiedAt.
type Graph struct {
	tx      Tx
	touched map[string]models.Record
	order   []models.Record
}

var _ cascade.Graph = (*Graph)(nil)

// NewGraph создает граф поверх tx
func NewGraph(tx Tx) *Graph {
	return &Graph{tx: tx, touched: make(map[string]models.Record)}
}

func (g *Graph) get(kind models.Kind, id string) (models.Record, error) {
	if rec, ok := g.touched[id]; ok {
		return rec, nil
	}
	return g.tx.GetRecord(kind, id)
}

// Children дочерние записи с учетом уже измененных флагов
func (g *Graph) Children(_ context.Context, kind models.Kind, parent cascade.Node) ([]cascade.Node, error) {
	records, err := g.tx.Children(kind, parent.Kind, parent.ID)
	if err != nil {
		return nil, err
	}
	nodes := make([]cascade.Node, 0, len(records))
	for _, rec := range records {
		if touched, ok := g.touched[rec.GetID()]; ok {
			rec = touched
		}
		nodes = append(nodes, cascade.NodeOf(rec))
	}
	return nodes, nil
}

// Parent запись вида kind, на которую ссылается child
func (g *Graph) Parent(_ context.Context, child cascade.Node, kind models.Kind) (cascade.Node, bool, error) {
	rec, err := g.get(child.Kind, child.ID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return cascade.Node{}, false, nil
		}
		return cascade.Node{}, false, err
	}

	parentID := rec.ParentID(kind)
	if parentID == "" {
		return cascade.Node{}, false, nil
	}

	parent, err := g.get(kind, parentID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return cascade.Node{}, false, nil
		}
		return cascade.Node{}, false, err
	}
	return cascade.NodeOf(parent), true, nil
}

// SetDeleted меняет флаг записи в памяти
func (g *Graph) SetDeleted(_ context.Context, n cascade.Node, deleted bool) error {
	rec, err := g.get(n.Kind, n.ID)
	if err != nil {
		return err
	}
	if _, ok := g.touched[n.ID]; !ok {
		rec = rec.Clone()
		g.touched[n.ID] = rec
		g.order = append(g.order, rec)
	}
	rec.SetDeleted(deleted)
	return nil
}

// Touched записи, измененные каскадом, в порядке изменения
func (g *Graph) Touched() []models.Record {
	return g.order
}

// MaxModified наибольший ModifiedAt среди измененных записей
func (g *Graph) MaxModified() models.Timestamp {
	var maxTS models.Timestamp
	for _, rec := range g.order {
		maxTS = models.MaxTimestamp(maxTS, rec.Modified())
	}
	return maxTS
}

// Flush выставляет каждой измененной записи ModifiedAt из stamp и сохраняет ее
func (g *Graph) Flush(stamp func(rec models.Record) models.Timestamp) error {
	for _, rec := range g.order {
		rec.Stamp(stamp(rec))
		if err := g.tx.PutRecord(rec); err != nil {
			return err
		}
	}
	return nil
}
