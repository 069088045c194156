package sync

import (
	"context"
	"errors"

	"github.com/iudanet/wordkeeper/internal/cascade"
	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/internal/server/storage"
)

// txGraph граф записей внутри транзакции push. Записи, измененные каскадом,
// получают ModifiedAt записи-источника каскада (stamp), но не меньше ModifiedAt+1.
type txGraph struct {
	tx    storage.Tx
	stamp models.Timestamp
}

var _ cascade.Graph = (*txGraph)(nil)

func (g *txGraph) Children(ctx context.Context, kind models.Kind, parent cascade.Node) ([]cascade.Node, error) {
	records, err := g.tx.Children(ctx, kind, parent.Kind, parent.ID)
	if err != nil {
		return nil, err
	}
	nodes := make([]cascade.Node, 0, len(records))
	for _, rec := range records {
		nodes = append(nodes, cascade.NodeOf(rec))
	}
	return nodes, nil
}

func (g *txGraph) Parent(ctx context.Context, child cascade.Node, kind models.Kind) (cascade.Node, bool, error) {
	rec, err := g.tx.GetRecord(ctx, child.Kind, child.ID)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return cascade.Node{}, false, nil
		}
		return cascade.Node{}, false, err
	}

	parentID := rec.ParentID(kind)
	if parentID == "" {
		return cascade.Node{}, false, nil
	}

	parent, err := g.tx.GetRecord(ctx, kind, parentID)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return cascade.Node{}, false, nil
		}
		return cascade.Node{}, false, err
	}
	return cascade.NodeOf(parent), true, nil
}

func (g *txGraph) SetDeleted(ctx context.Context, n cascade.Node, deleted bool) error {
	rec, err := g.tx.GetRecord(ctx, n.Kind, n.ID)
	if err != nil {
		return err
	}

	stamp := g.stamp
	if stamp <= rec.Modified() {
		stamp = rec.Modified() + 1
	}
	rec.SetDeleted(deleted)
	rec.Stamp(stamp)
	return g.tx.UpdateRecord(ctx, rec)
}
