package models

import (
	"context"
	"runtime"
	"sync"

	"github.com/bcdannyboy/dupire/surface"
	"github.com/shirou/gopsutil/cpu"
	mpb "github.com/vbauerster/mpb/v7"
)

const jobBatchSize = 1000

type GridOptions struct {
	// Workers defaults to the number of logical CPUs.
	Workers       int
	Sensitivities bool
	// Bar, if set, is incremented once per evaluated point.
	Bar *mpb.Bar
}

type GridPoint struct {
	Time        float64                           `json:"time"`
	Strike      float64                           `json:"strike"`
	Value       float64                           `json:"value"`
	Sensitivity *surface.UnitParameterSensitivity `json:"sensitivity,omitempty"`
}

type gridJob struct {
	index        int
	time, strike float64
}

// EvaluateGrid evaluates s at every (time, strike) pair in parallel. Points
// are returned time-major in the order given. The first error stops the run.
func EvaluateGrid(ctx context.Context, s surface.Surface, times, strikes []float64, opts GridOptions) ([]GridPoint, error) {
	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers()
	}

	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	points := make([]GridPoint, len(times)*len(strikes))
	jobChan := make(chan gridJob, jobBatchSize)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobChan {
				if ctx.Err() != nil {
					continue
				}
				p, err := evaluatePoint(s, j, opts.Sensitivities)
				if err != nil {
					fail(err)
					continue
				}
				points[j.index] = p
				if opts.Bar != nil {
					opts.Bar.Increment()
				}
			}
		}()
	}

	go func() {
		defer close(jobChan)
		for i, t := range times {
			for j, k := range strikes {
				select {
				case jobChan <- gridJob{index: i*len(strikes) + j, time: t, strike: k}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

func evaluatePoint(s surface.Surface, j gridJob, withSensitivity bool) (GridPoint, error) {
	z, err := s.ZValue(j.time, j.strike)
	if err != nil {
		return GridPoint{}, err
	}
	p := GridPoint{Time: j.time, Strike: j.strike, Value: z}
	if withSensitivity {
		sens, err := s.ZValueParameterSensitivity(j.time, j.strike)
		if err != nil {
			return GridPoint{}, err
		}
		p.Sensitivity = &sens
	}
	return p, nil
}

// DefaultWorkers is the number of logical CPUs.
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}
