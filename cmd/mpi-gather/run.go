package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/wippyai/mpi-runtime/config"
	"github.com/wippyai/mpi-runtime/mpi"
	"github.com/wippyai/mpi-runtime/mpitest"
	"github.com/wippyai/mpi-runtime/native"
	"go.uber.org/zap"
)

// outcome is what one process saw. values is only set on the root.
type outcome struct {
	rank   int
	size   int
	values []float64
}

func run(out io.Writer, cfg *config.Config, args []string) error {
	logger, err := cfg.Logging.ZapConfig().Build()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	native.SetLogger(logger.Named("native"))
	mpi.SetLogger(logger.Named("mpi"))

	seed := cfg.Run.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sample := func(rank int) float64 {
		return rand.New(rand.NewPCG(uint64(seed), uint64(rank))).Float64()
	}

	var libOpts []native.Option
	if cfg.Library.CallerThread {
		libOpts = append(libOpts, native.WithCallerThread())
	}

	var res outcome
	if cfg.Run.Simulate > 0 {
		logger.Info("simulating MPI job", zap.Int("ranks", cfg.Run.Simulate), zap.Int64("seed", seed))
		res, err = simulate(cfg.Run.Simulate, libOpts, args, sample)
	} else {
		res, err = launch(cfg.Library.Path, libOpts, args, sample)
	}
	if err != nil {
		return err
	}

	if res.rank == mpi.Root {
		render(out, res, styled(out))
	}
	return nil
}

// launch runs this process as one rank of a real MPI job.
func launch(path string, opts []native.Option, args []string, sample func(int) float64) (outcome, error) {
	lib, err := native.Open(path, opts...)
	if err != nil {
		return outcome{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer lib.Close()

	return gather(mpi.NewSession(lib), args, sample)
}

// simulate runs every rank of an in-process job and returns the root's view.
func simulate(size int, opts []native.Option, args []string, sample func(int) float64) (outcome, error) {
	w := mpitest.NewWorld(size, mpitest.WithLibraryOptions(opts...))

	var root outcome
	err := w.Run(func(rank int, s *mpi.Session) error {
		res, err := gather(s, args, sample)
		if err != nil {
			return fmt.Errorf("rank %d: %w", rank, err)
		}
		if res.rank == mpi.Root {
			root = res
		}
		return nil
	})
	return root, err
}

// gather drives one process through init, gather, barrier and finalize.
func gather(s *mpi.Session, args []string, sample func(int) float64) (res outcome, err error) {
	if err := s.Init(args); err != nil {
		return res, fmt.Errorf("init: %w", err)
	}
	defer func() {
		if ferr := s.Finalize(); ferr != nil && err == nil {
			err = fmt.Errorf("finalize: %w", ferr)
		}
	}()

	world := s.World()
	if res.rank, err = world.Rank(); err != nil {
		return res, fmt.Errorf("rank: %w", err)
	}
	if res.size, err = world.Size(); err != nil {
		return res, fmt.Errorf("size: %w", err)
	}

	var recv []float64
	if res.rank == mpi.Root {
		recv = make([]float64, res.size)
	}
	if err := world.Gather(sample(res.rank), recv); err != nil {
		return res, fmt.Errorf("gather: %w", err)
	}
	if err := world.Barrier(); err != nil {
		return res, fmt.Errorf("barrier: %w", err)
	}

	res.values = recv
	return res, nil
}
