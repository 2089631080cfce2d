package montecarlo

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/option-mc/internal/logger"
)

// DefaultBlockSize is the number of paths sharing one NormalSource.
const DefaultBlockSize = 1024

// MaxCells bounds the number of prices a single run may allocate.
const MaxCells = 1 << 28

// PriceMatrix is a Paths x Steps row-major grid of simulated prices.
// Column 0 is the spot price of every path.
type PriceMatrix struct {
	Paths int
	Steps int
	data  []float64
}

// At returns the price of path i at step j.
func (m *PriceMatrix) At(i, j int) float64 {
	return m.data[i*m.Steps+j]
}

// Row returns path i. The slice aliases the matrix and must not be modified.
func (m *PriceMatrix) Row(i int) []float64 {
	return m.data[i*m.Steps : (i+1)*m.Steps]
}

// Terminal copies the last column.
func (m *PriceMatrix) Terminal() []float64 {
	out := make([]float64, m.Paths)
	for i := range out {
		out[i] = m.data[i*m.Steps+m.Steps-1]
	}
	return out
}

// Simulator generates GBM paths. Paths are split into fixed-size blocks,
// each drawing from its own NormalSource seeded from (seed, block index),
// so output does not depend on the worker count.
type Simulator struct {
	workers   int
	blockSize int
	newSource SourceFactory
}

// Option configures a Simulator or an Engine.
type Option func(*Simulator)

// WithWorkers caps the number of blocks simulated concurrently.
// Values < 1 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(s *Simulator) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		s.workers = n
	}
}

// WithBlockSize sets the number of paths per block. Changing it changes
// which stream each path draws from, and therefore the simulated values.
func WithBlockSize(n int) Option {
	return func(s *Simulator) {
		if n >= 1 {
			s.blockSize = n
		}
	}
}

// WithSourceFactory replaces the default PCG normal stream.
func WithSourceFactory(f SourceFactory) Option {
	return func(s *Simulator) {
		if f != nil {
			s.newSource = f
		}
	}
}

// NewSimulator returns a Simulator using GOMAXPROCS workers and
// DefaultBlockSize unless overridden.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		workers:   runtime.GOMAXPROCS(0),
		blockSize: DefaultBlockSize,
		newSource: NewNormalSource,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate returns the full price grid for p.
func (s *Simulator) Simulate(ctx context.Context, p Params, seed uint64) (*PriceMatrix, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := checkSize(p, p.Steps); err != nil {
		return nil, err
	}
	m := &PriceMatrix{Paths: p.Paths, Steps: p.Steps, data: make([]float64, p.Paths*p.Steps)}
	if err := s.run(ctx, p, seed, true, m.data); err != nil {
		return nil, err
	}
	return m, nil
}

// SimulateTerminal runs the same recurrence as Simulate but keeps only the
// last column. For equal inputs the result equals Simulate(...).Terminal().
func (s *Simulator) SimulateTerminal(ctx context.Context, p Params, seed uint64) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := checkSize(p, 1); err != nil {
		return nil, err
	}
	out := make([]float64, p.Paths)
	if err := s.run(ctx, p, seed, false, out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkSize rejects runs storing more than MaxCells prices at width
// values per path. It divides rather than multiplies so huge counts
// cannot wrap around.
func checkSize(p Params, width int) error {
	if p.Paths > MaxCells/width {
		return &ParameterError{
			Field:  "paths",
			Value:  p.Paths,
			Reason: fmt.Sprintf("exceeds %d stored prices at %d per path", MaxCells, width),
		}
	}
	return nil
}

// run fills out block by block. With full set, out holds Paths*Steps
// values; otherwise one terminal value per path.
func (s *Simulator) run(ctx context.Context, p Params, seed uint64, full bool, out []float64) error {
	drift, scale, err := p.coefficients()
	if err != nil {
		return err
	}

	width := 1
	if full {
		width = p.Steps
	}
	blocks := (p.Paths + s.blockSize - 1) / s.blockSize
	errs := make([]error, blocks)

	logger.Debugf("simulating paths=%d steps=%d blocks=%d workers=%d", p.Paths, p.Steps, blocks, s.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for b := 0; b < blocks; b++ {
		b := b
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			first := b * s.blockSize
			last := min(first+s.blockSize, p.Paths)
			src := s.newSource(blockSeed(seed, b))
			for i := first; i < last; i++ {
				row := out[i*width : (i+1)*width]
				if step, v, ok := walk(row, p.Spot, drift, scale, p.Steps, src); !ok {
					errs[b] = &NumericError{Stage: "price", Value: v, Path: i, Step: step}
					return nil
				}
			}
			logger.Tracef("block %d done paths=[%d,%d)", b, first, last)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// lowest failing block wins so the reported path is deterministic
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// walk advances one path: price[0] = spot, price[j] = price[j-1]·exp(drift
// + scale·z). Step 0 draws nothing. When len(row) == steps every price is
// stored, otherwise only the terminal one. It reports the failing step and
// value if a price leaves (0, +Inf).
func walk(row []float64, spot, drift, scale float64, steps int, src NormalSource) (int, float64, bool) {
	full := len(row) == steps && steps > 1
	price := spot
	if full {
		row[0] = price
	}
	for j := 1; j < steps; j++ {
		price *= math.Exp(drift + scale*src.NormFloat64())
		if !(price > 0) || math.IsInf(price, 1) {
			return j, price, false
		}
		if full {
			row[j] = price
		}
	}
	if !full {
		row[0] = price
	}
	return 0, price, true
}
