// Package storage contains the sink-agnostic batching loader. It drains
// documents from a channel, groups them into fixed-size batches, and invokes
// a provided bulk-insert function per batch.
//
// Sinks implement InsertFn with their most efficient primitive (MongoDB uses
// an unordered BulkWrite). Exactly one insert is outstanding at any moment:
// the next batch is not assembled past the channel's capacity while the
// current one is in flight.
//
// Logging: every successful flush emits a progress line with the batch
// ordinal, driver-reported inserted count, running total, and instantaneous
// rows/sec since the previous flush.
package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"geoload/pkg/document"
)

// InsertFn abstracts a sink's bulk insert. Implementations insert docs and
// return the number of documents the sink reports as inserted, which on a
// partial unordered-batch failure can be lower than len(docs).
type InsertFn func(ctx context.Context, docs []document.Doc) (int64, error)

// LoadBatches drains documents from in, groups them into batches of at most
// batchSize, and calls insert once per non-empty batch. The final batch may
// be short; an input that closes without yielding anything makes no insert
// call at all. It returns the cumulative inserted count and the first error.
//
// Any insert error is terminal: no further batches are attempted. On
// cancellation it returns (total, ctx.Err()).
func LoadBatches(
	ctx context.Context,
	in <-chan document.Doc,
	batchSize int,
	insert InsertFn,
	log *zap.SugaredLogger,
) (int64, error) {
	if batchSize < 1 {
		return 0, fmt.Errorf("batch size must be >= 1, got %d", batchSize)
	}
	if insert == nil {
		return 0, fmt.Errorf("insert must not be nil")
	}

	var (
		total     int64
		batches   int64
		batch     = make([]document.Doc, 0, batchSize)
		start     = time.Now()
		lastFlush = start
		lastTotal int64
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := insert(ctx, batch)
		total += n
		batch = batch[:0] // keep capacity

		if err != nil {
			log.Errorw("bulk insert failed", "inserted", n, "total", total, "error", err)
			return err
		}

		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlush)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(total-lastTotal) / sinceLast.Seconds()
		}
		log.Infof("batch %d inserted %d (total %d, %.0f rows/s, elapsed %s)",
			batches, n, total, rps, now.Sub(start).Truncate(time.Millisecond))
		lastFlush = now
		lastTotal = total
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case doc, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				return total, nil
			}
			batch = append(batch, doc)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}
