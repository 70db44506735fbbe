package varm

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"
)

// BootstrapOptions controls the residual bootstrap for IRF bands.
type BootstrapOptions struct {
	Replications int     // number of bootstrap samples (default 500)
	Horizon      int     // IRF periods (default 12)
	Alpha        float64 // band significance (default 0.05)
	Seed         int64   // 0 means time-based
}

// IRFBands holds the point IRF and percentile confidence bands for one shock.
type IRFBands struct {
	ShockIndex int
	Horizon    int
	Alpha      float64
	Point      *mat.Dense
	Lower      *mat.Dense
	Upper      *mat.Dense
}

// BootstrapIRF runs a residual bootstrap over the fitted model: residual rows
// are resampled with replacement, a synthetic sample is simulated from the
// fitted coefficients, the VAR is re-estimated and IRFs recomputed. Bands
// are percentile intervals over the replications. Replications run on a
// worker pool sized to the CPU count.
func (m *Model) BootstrapIRF(data *mat.Dense, opts BootstrapOptions) (map[int]*IRFBands, error) {
	if m == nil || len(m.A) == 0 {
		return nil, fmt.Errorf("varm: model not estimated")
	}
	if data == nil {
		return nil, fmt.Errorf("varm: no data")
	}
	if opts.Replications <= 0 {
		opts.Replications = 500
	}
	if opts.Horizon <= 0 {
		opts.Horizon = 12
	}
	if opts.Alpha <= 0 || opts.Alpha >= 1 {
		opts.Alpha = 0.05
	}

	T, K := data.Dims()
	p := m.Lags
	if T <= p {
		return nil, fmt.Errorf("varm: not enough data: T=%d, p=%d", T, p)
	}
	H := opts.Horizon

	results := make(map[int]*IRFBands, K)
	draws := make(map[int][][][]float64, K)
	for shock := 0; shock < K; shock++ {
		point, err := m.IRF(H, shock)
		if err != nil {
			return nil, fmt.Errorf("varm: point IRF for shock %d: %w", shock, err)
		}
		results[shock] = &IRFBands{
			ShockIndex: shock,
			Horizon:    H,
			Alpha:      opts.Alpha,
			Point:      point,
			Lower:      mat.NewDense(H, K, nil),
			Upper:      mat.NewDense(H, K, nil),
		}
		vals := make([][][]float64, H)
		for h := 0; h < H; h++ {
			vals[h] = make([][]float64, K)
			for j := 0; j < K; j++ {
				vals[h][j] = make([]float64, 0, opts.Replications)
			}
		}
		draws[shock] = vals
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	master := rand.New(rand.NewSource(seed))
	seeds := make([]int64, opts.Replications)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	type replication struct {
		irfs map[int][][]float64
		err  error
	}

	workers := runtime.NumCPU()
	if workers > opts.Replications {
		workers = opts.Replications
	}
	jobs := make(chan int)
	out := make(chan replication, opts.Replications)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for b := range jobs {
				rng := rand.New(rand.NewSource(seeds[b]))
				sim, err := m.simulate(data, rng)
				if err != nil {
					out <- replication{err: fmt.Errorf("replication %d: %w", b, err)}
					continue
				}
				boot, err := Fit(sim, m.VarNames, p)
				if err != nil {
					out <- replication{err: fmt.Errorf("replication %d: refit: %w", b, err)}
					continue
				}
				rep := replication{irfs: make(map[int][][]float64, K)}
				for shock := 0; shock < K; shock++ {
					irf, err := boot.IRF(H, shock)
					if err != nil {
						rep.err = fmt.Errorf("replication %d: irf: %w", b, err)
						break
					}
					vals := make([][]float64, H)
					for h := 0; h < H; h++ {
						vals[h] = make([]float64, K)
						for j := 0; j < K; j++ {
							vals[h][j] = irf.At(h, j)
						}
					}
					rep.irfs[shock] = vals
				}
				out <- rep
			}
		}()
	}
	go func() {
		for b := 0; b < opts.Replications; b++ {
			jobs <- b
		}
		close(jobs)
	}()

	var firstErr error
	for i := 0; i < opts.Replications; i++ {
		rep := <-out
		if rep.err != nil {
			if firstErr == nil {
				firstErr = rep.err
			}
			continue
		}
		for shock, vals := range rep.irfs {
			store := draws[shock]
			for h := 0; h < H; h++ {
				for j := 0; j < K; j++ {
					store[h][j] = append(store[h][j], vals[h][j])
				}
			}
		}
	}
	wg.Wait()
	close(out)
	if firstErr != nil {
		return nil, firstErr
	}

	loQ := opts.Alpha / 2
	hiQ := 1 - opts.Alpha/2
	for shock, bands := range results {
		vals := draws[shock]
		for h := 0; h < H; h++ {
			for j := 0; j < K; j++ {
				samples := vals[h][j]
				if len(samples) == 0 {
					bands.Lower.Set(h, j, math.NaN())
					bands.Upper.Set(h, j, math.NaN())
					continue
				}
				bands.Lower.Set(h, j, quantile(samples, loQ))
				bands.Upper.Set(h, j, quantile(samples, hiQ))
			}
		}
	}
	return results, nil
}

// simulate draws a bootstrap sample: the first p observations are copied from
// the original data, the rest are generated from the fitted coefficients plus
// resampled residual rows.
func (m *Model) simulate(data *mat.Dense, rng *rand.Rand) (*mat.Dense, error) {
	T, K := data.Dims()
	p := m.Lags
	Treg, kRes := m.Residuals.Dims()
	if Treg != T-p || kRes != K {
		return nil, fmt.Errorf("varm: residual matrix %dx%d does not match sample %dx%d", Treg, kRes, T-p, K)
	}

	sim := mat.NewDense(T, K, nil)
	for t := 0; t < p; t++ {
		for j := 0; j < K; j++ {
			sim.Set(t, j, data.At(t, j))
		}
	}
	for t := p; t < T; t++ {
		idx := rng.Intn(Treg)
		for eq := 0; eq < K; eq++ {
			val := m.C.AtVec(eq)
			for j := 1; j <= p; j++ {
				A := m.A[j-1]
				for k := 0; k < K; k++ {
					val += A.At(eq, k) * sim.At(t-j, k)
				}
			}
			sim.Set(t, eq, val+m.Residuals.At(idx, eq))
		}
	}
	return sim, nil
}

// quantile returns the empirical q-quantile with linear interpolation between
// order statistics.
func quantile(samples []float64, q float64) float64 {
	n := len(samples)
	if n == 0 {
		return math.NaN()
	}
	tmp := make([]float64, n)
	copy(tmp, samples)
	sort.Float64s(tmp)
	if q <= 0 {
		return tmp[0]
	}
	if q >= 1 {
		return tmp[n-1]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return tmp[lo]
	}
	w := pos - float64(lo)
	return tmp[lo]*(1-w) + tmp[hi]*w
}
