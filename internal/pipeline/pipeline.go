// Package pipeline connects one document producer to the batching loader.
//
// The channel between the stages is unbuffered, so at most one document sits
// in flight and exactly one bulk write is outstanding at any time. Memory
// stays bounded by the batch size regardless of input size.
package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"geoload/internal/storage"
	"geoload/pkg/document"
)

// Producer streams documents into out. It returns once the source is
// exhausted or an error occurs; closing out is Run's responsibility. Sends
// must go through Emit (or an equivalent select on ctx) so a failed consumer
// cannot strand the producer.
type Producer func(ctx context.Context, out chan<- document.Doc) error

// Emit sends doc to out unless ctx is canceled first.
func Emit(ctx context.Context, out chan<- document.Doc, doc document.Doc) error {
	select {
	case out <- doc:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes one load end to end: produce fills the channel while the
// batching loader drains it into insert. It returns the number of documents
// the sink reported inserted and the first error from either stage; when one
// stage fails the shared context cancels the other.
func Run(ctx context.Context, produce Producer, batchSize int, insert storage.InsertFn, log *zap.SugaredLogger) (int64, error) {
	out := make(chan document.Doc)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(out)
		return produce(ctx, out)
	})

	var total int64
	g.Go(func() error {
		var err error
		total, err = storage.LoadBatches(ctx, out, batchSize, insert, log)
		return err
	})

	err := g.Wait()
	return total, err
}
