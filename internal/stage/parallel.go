package stage

import (
	"runtime"
	"sync"
)

// getWorkers returns the configured worker count or a sane default.
func getWorkers(meta *Meta) int {
	n := runtime.NumCPU()
	if meta != nil && meta.Config != nil && meta.Config.Build.Workers > 0 {
		n = meta.Config.Build.Workers
	}
	if n < 1 {
		n = 1
	}
	return n
}

// runIndexedParallel executes fn for indices [0,n) using a worker pool and
// returns all results in completion order.
func runIndexedParallel[T any](n, workers int, fn func(int) T) []T {
	jobs := make(chan int)
	results := make(chan T)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range jobs {
			results <- fn(idx)
		}
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go worker()
	}

	go func() {
		for i := 0; i < n; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, <-results)
	}
	wg.Wait()
	return out
}

type recordParallelRes struct {
	idx   int
	rec   Record
	envE  *Error
	fatal error
}

func mergeRecordParallelResults(out Envelope, results []recordParallelRes) (Envelope, error) {
	var envErrs []Error
	var firstErr error
	for _, rr := range results {
		if rr.envE != nil {
			envErrs = append(envErrs, *rr.envE)
		}
		if rr.fatal != nil && firstErr == nil {
			firstErr = rr.fatal
		}
		out.Records[rr.idx] = rr.rec
	}
	if firstErr != nil {
		return Envelope{}, firstErr
	}
	if len(envErrs) > 0 {
		out.Errors = append(out.Errors, envErrs...)
		SortEnvelopeErrors(&out)
	}
	return out, nil
}

// runPerRecord applies fn to every live record in parallel and merges
// results deterministically by index. Records carrying an error from an
// earlier stage pass through unchanged, keeping failure isolation between
// targets.
func runPerRecord(in Envelope, fn func(rec Record) (Record, *Error)) (Envelope, error) {
	out := in
	out.Records = append([]Record(nil), in.Records...)
	n := len(in.Records)
	workers := getWorkers(in.Meta)
	results := runIndexedParallel(n, workers, func(idx int) recordParallelRes {
		rec := in.Records[idx]
		if rec.Error != nil {
			return recordParallelRes{idx: idx, rec: rec}
		}
		r, envE := fn(rec)
		return recordParallelRes{idx: idx, rec: r, envE: envE}
	})
	return mergeRecordParallelResults(out, results)
}

// buildStages are the stages whose per-target failures packaging absorbs
// by shipping a pure-fallback package.
var buildStages = map[string]bool{
	StageCompile:     true,
	StageBundleMacOS: true,
	StageCodesign:    true,
	StageNotarize:    true,
}

// runPerRecordDegraded is runPerRecord for the package assembler: records
// failed by a build stage are downgraded to Degraded (the artifact is
// dropped) and still processed, so every target gets a usable package.
func runPerRecordDegraded(in Envelope, fn func(rec Record) (Record, *Error)) (Envelope, error) {
	out := in
	out.Records = append([]Record(nil), in.Records...)
	n := len(in.Records)
	workers := getWorkers(in.Meta)
	results := runIndexedParallel(n, workers, func(idx int) recordParallelRes {
		rec := in.Records[idx]
		if rec.Error != nil {
			if !buildStages[rec.Error.Stage] {
				return recordParallelRes{idx: idx, rec: rec}
			}
			rec.Degraded = rec.Error
			rec.Error = nil
			rec.Artifact = nil
		}
		r, envE := fn(rec)
		return recordParallelRes{idx: idx, rec: r, envE: envE}
	})
	return mergeRecordParallelResults(out, results)
}
