package processor

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"resizer/internal/codec"
	"resizer/internal/errs"
	"resizer/internal/resize"
)

type itemResult struct {
	index int
	image ProcessedImage
	err   error
}

// Run resizes and re-encodes every source with opts.Resize on a bounded
// worker pool and returns the outcomes in input order.
//
// Invalid options or sources fail before any item runs. An item failure
// never stops the batch under PolicyIsolate. When ctx is cancelled, or the
// first failure is seen under PolicyFailFast, no further items are
// dispatched; in-flight items finish, the rest are reported as cancelled
// failures, and the error is non-nil. Run returns only after every worker
// has exited.
func Run(ctx context.Context, sources []SourceImage, opts Options) (BatchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if err := opts.Resize.Validate(); err != nil {
		return BatchResult{}, err
	}
	if err := checkSources(sources); err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{
		Successes: []ProcessedImage{},
		Failures:  []ProcessingFailure{},
	}
	if len(sources) == 0 {
		return result, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make(chan itemResult)

	workers := workerCount(opts.Workers, len(sources))
	log.Info("batch started",
		zap.Int("items", len(sources)),
		zap.Int("workers", workers),
		zap.String("policy", opts.Policy.String()),
		zap.String("format", string(opts.Resize.Format)),
		zap.Int("width", opts.Resize.Width),
		zap.Int("height", opts.Resize.Height),
	)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			worker(runCtx, sources, jobs, results, opts.Resize)
		}()
	}

	outcomes := make([]*itemResult, len(sources))
	var firstFailure error
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range results {
			outcomes[res.index] = &res
			src := sources[res.index]
			if res.err != nil {
				log.Warn("item failed",
					zap.String("source_id", src.ID),
					zap.String("name", src.OriginalName),
					zap.String("kind", errs.KindOf(res.err).String()),
					zap.Error(res.err),
				)
				if opts.Policy == PolicyFailFast && firstFailure == nil {
					firstFailure = fmt.Errorf("%s: %w", src.OriginalName, res.err)
					cancel()
				}
			} else {
				log.Debug("item processed",
					zap.String("source_id", src.ID),
					zap.String("output", res.image.Name),
					zap.Int("bytes", res.image.ByteSize),
				)
			}
			if opts.Observer != nil {
				opts.Observer(eventFor(res, src))
			}
		}
	}()

	go func() {
		defer close(jobs)
		for i := range sources {
			select {
			case jobs <- i:
			case <-runCtx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)
	<-collectorDone

	skipped := 0
	for i, out := range outcomes {
		src := sources[i]
		switch {
		case out == nil:
			skipped++
			result.Failures = append(result.Failures, skippedFailure(src, ctx.Err() != nil))
		case out.err != nil:
			result.Failures = append(result.Failures, ProcessingFailure{
				SourceID:     src.ID,
				OriginalName: src.OriginalName,
				Reason:       errs.KindOf(out.err),
				Detail:       out.err.Error(),
			})
		default:
			result.Successes = append(result.Successes, out.image)
		}
	}

	log.Info("batch finished",
		zap.Int("succeeded", len(result.Successes)),
		zap.Int("failed", len(result.Failures)-skipped),
		zap.Int("skipped", skipped),
	)

	if firstFailure != nil {
		return result, fmt.Errorf("batch aborted: %w", firstFailure)
	}
	if skipped > 0 {
		return result, errs.New(errs.KindCancelled, "process batch", ctx.Err())
	}
	return result, nil
}

func workerCount(requested, items int) int {
	workers := requested
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > items {
		workers = items
	}
	return workers
}

func worker(ctx context.Context, sources []SourceImage, jobs <-chan int, results chan<- itemResult, opts ResizeOptions) {
	for idx := range jobs {
		if ctx.Err() != nil {
			continue
		}
		img, err := processItem(sources[idx], opts)
		results <- itemResult{index: idx, image: img, err: err}
	}
}

func processItem(src SourceImage, opts ResizeOptions) (out ProcessedImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ProcessedImage{}
			err = errs.Newf(errs.KindInternal, "process", "panic: %v", r)
		}
	}()

	resized, err := decodeAndResample(src.Bytes, opts)
	if err != nil {
		return ProcessedImage{}, err
	}

	data, err := codec.Encode(resized, opts.Format, opts.Quality)
	if err != nil {
		return ProcessedImage{}, err
	}

	b := resized.Bounds()
	return ProcessedImage{
		Name:     OutputName(src.OriginalName, opts.Format),
		Bytes:    data,
		ByteSize: len(data),
		SourceID: src.ID,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Format:   opts.Format,
	}, nil
}

// decodeAndResample keeps the decoded image local so it becomes garbage as
// soon as the resampled copy exists.
func decodeAndResample(data []byte, opts ResizeOptions) (image.Image, error) {
	img, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	w, h := resize.TargetDimensions(b.Dx(), b.Dy(), opts.Width, opts.Height, opts.MaintainAspectRatio)
	return resize.Resample(img, w, h), nil
}

func skippedFailure(src SourceImage, callerCancelled bool) ProcessingFailure {
	detail := "not processed: batch aborted after an earlier failure"
	if callerCancelled {
		detail = "not processed: batch cancelled"
	}
	return ProcessingFailure{
		SourceID:     src.ID,
		OriginalName: src.OriginalName,
		Reason:       errs.KindCancelled,
		Detail:       detail,
	}
}

func eventFor(res itemResult, src SourceImage) ItemEvent {
	ev := ItemEvent{Index: res.index, SourceID: src.ID, Name: src.OriginalName}
	if res.err != nil {
		ev.Outcome = OutcomeFailed
		ev.Err = res.err
		return ev
	}
	ev.Outcome = OutcomeSucceeded
	ev.Name = res.image.Name
	ev.ByteSize = res.image.ByteSize
	return ev
}
