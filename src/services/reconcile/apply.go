package reconcile

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Dizey-pro/Students-results/src/database"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

// ResultWriter is the part of the store Apply needs.
type ResultWriter interface {
	Create(ctx context.Context, collection string, doc bson.M) (string, error)
	Update(ctx context.Context, collection, id string, fields bson.M) error
}

// Outcome counts the writes that succeeded.
type Outcome struct {
	Created int
	Updated int
}

// FailedOp is an operation the store rejected.
type FailedOp struct {
	Op  Operation
	Err error
}

// BatchError reports a save where some writes failed. The writes that
// succeeded are not rolled back.
type BatchError struct {
	Applied int
	Failed  []FailedOp
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of %d result writes failed: %v",
		len(e.Failed), len(e.Failed)+e.Applied, e.Failed[0].Err)
}

// StudentIDs lists the students whose write failed.
func (e *BatchError) StudentIDs() []string {
	ids := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		ids = append(ids, f.Op.Payload.StudentID)
	}
	return ids
}

// Apply issues every operation of plan at once and waits for all of them.
// There is no ordering between operations and no retry. A failed write does
// not stop the others; every failure is listed in the returned *BatchError.
func Apply(ctx context.Context, w ResultWriter, plan Plan) (Outcome, error) {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		out    Outcome
		failed []FailedOp
	)

	for _, op := range plan.Ops {
		g.Go(func() error {
			err := write(ctx, w, op)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, FailedOp{Op: op, Err: err})
				return err
			}
			if op.Kind == OpCreate {
				out.Created++
			} else {
				out.Updated++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		sort.Slice(failed, func(i, j int) bool {
			return failed[i].Op.Payload.StudentID < failed[j].Op.Payload.StudentID
		})
		return out, &BatchError{Applied: out.Created + out.Updated, Failed: failed}
	}
	return out, nil
}

func write(ctx context.Context, w ResultWriter, op Operation) error {
	doc, err := database.ToDocument(op.Payload)
	if err != nil {
		return err
	}
	switch op.Kind {
	case OpCreate:
		_, err = w.Create(ctx, database.ResultsCollection, doc)
	case OpUpdate:
		err = w.Update(ctx, database.ResultsCollection, op.ResultID, doc)
	default:
		err = fmt.Errorf("unknown operation %q", op.Kind)
	}
	return err
}
