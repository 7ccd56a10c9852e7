package layout

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/errors"
)

// ComputeAll computes independent declarations in parallel. Results are
// returned in input order; a declaration that fails leaves a nil entry and
// is reported in an *errors.BatchError. A cancelled context stops the batch
// and its error is returned instead.
func (e *Engine) ComputeAll(ctx context.Context, types []*ctype.Type) ([]*Result, error) {
	results := make([]*Result, len(types))

	var (
		mu     sync.Mutex
		failed = make(map[string]error)
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, t := range types {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := e.Compute(t)
			if err != nil {
				mu.Lock()
				failed[declName(i, t)] = err
				mu.Unlock()
				return nil
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if len(failed) > 0 {
		e.logger.Debug("batch finished with failures",
			zap.Int("declarations", len(types)),
			zap.Int("failed", len(failed)),
		)
		return results, errors.NewBatchError(failed)
	}
	return results, nil
}

func declName(i int, t *ctype.Type) string {
	if t == nil {
		return fmt.Sprintf("#%d", i)
	}
	return fmt.Sprintf("%s (#%d)", t.Spelling(), i)
}
