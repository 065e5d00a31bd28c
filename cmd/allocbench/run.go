package main

import (
	"io"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pavanmanishd/allockit"
	"github.com/pavanmanishd/allockit/debug"
	"github.com/pavanmanishd/allockit/pool"
)

var (
	runParent    string
	runBlockSize int
	runBatches   int
	runAllocs    int
	runSize      int
	runWords     bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVar(&runParent, "parent", "heap", "Backing allocator: heap, malloc or pages")
	cmd.Flags().IntVar(&runBlockSize, "block-size", allockit.DefaultBlockSize, "Arena block size in bytes")
	cmd.Flags().IntVar(&runBatches, "batches", 10, "Number of batches")
	cmd.Flags().IntVar(&runAllocs, "allocs", 1000, "Allocations per batch")
	cmd.Flags().IntVar(&runSize, "size", 64, "Allocation size in bytes (bump and arena)")
	cmd.Flags().BoolVar(&runWords, "words", false, "Copy generated word pairs instead of fixed-size buffers (arena only)")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <bump|arena|pool|fixed>",
		Short: "Run a batch workload through one strategy",
		Long: `The run command performs --batches rounds of --allocs allocations. Between
rounds the strategy is reset (bump, arena) or every value is released (pool,
fixed). The parent allocator is wrapped with a counter, so the report shows how
many times the strategy had to go back to it.

Pool and fixed use a 64-byte record type and ignore --size. With --words the
arena copies random word pairs of varying length, like keys being interned.

Example:
  allocbench run arena --block-size 4096
  allocbench run arena --words --verbose
  allocbench run pool --parent malloc --json`,
		ValidArgs: []string{"bump", "arena", "pool", "fixed"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkload(cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

type record [64]byte

// Report is the result of one run.
type Report struct {
	Strategy string                 `json:"strategy"`
	Parent   string                 `json:"parent"`
	Batches  int                    `json:"batches"`
	Allocs   int                    `json:"allocs_per_batch"`
	Size     int                    `json:"size"`
	Elapsed  time.Duration          `json:"elapsed_ns"`
	Calls    debug.CountingStats    `json:"parent_calls"`
	Arena    *allockit.ArenaMetrics `json:"arena,omitempty"`
	Pool     *PoolReport            `json:"pool,omitempty"`
}

// PoolReport describes a pool at the end of a run.
type PoolReport struct {
	Capacity int `json:"capacity"`
	Used     int `json:"used"`
}

func runWorkload(w io.Writer, strategy string) error {
	if runBatches < 0 || runAllocs < 0 || runSize < 0 {
		return errors.New("batches, allocs and size must not be negative")
	}
	if runWords && strategy != "arena" {
		return errors.Errorf("--words is not supported by %s", strategy)
	}
	parent, closeParent, err := openParent(runParent)
	if err != nil {
		return err
	}
	defer closeParent()

	counter := debug.NewCounting(parent)
	src := debug.NewLogging(counter, logger)

	r := &Report{
		Strategy: strategy,
		Parent:   runParent,
		Batches:  runBatches,
		Allocs:   runAllocs,
		Size:     runSize,
	}
	start := time.Now()
	switch strategy {
	case "bump":
		err = runBump(src)
	case "arena":
		r.Arena, err = runArena(src)
	case "pool":
		r.Pool, err = runPool(src)
	case "fixed":
		r.Pool, err = runFixed()
		r.Size = len(record{})
	default:
		err = errors.Errorf("unknown strategy %q", strategy)
	}
	r.Elapsed = time.Since(start)
	r.Calls = counter.Stats()
	if err != nil {
		return errors.Wrapf(err, "%s over %s", strategy, runParent)
	}

	if jsonOut {
		return printJSON(w, r)
	}
	printReport(w, r)
	return nil
}

func openParent(name string) (allockit.Allocator, func(), error) {
	switch name {
	case "heap":
		return allockit.Heap, func() {}, nil
	case "malloc":
		m := allockit.NewMalloc()
		return m, func() {
			if err := m.Close(); err != nil {
				logger.Warn("close malloc", "error", err)
			}
		}, nil
	case "pages":
		return allockit.NewPages(), func() {}, nil
	}
	return nil, nil, errors.Errorf("unknown parent %q (want heap, malloc or pages)", name)
}

// runBump carves every batch out of one buffer obtained from the parent.
func runBump(parent allockit.Allocator) error {
	stride := int(allockit.AlignUp(uintptr(runSize), allockit.AlignWord))
	buf, err := parent.Alloc(stride*runAllocs, allockit.AlignMax)
	if err != nil {
		return err
	}
	defer parent.Free(buf, allockit.AlignMax)

	b := allockit.FixedBuffer(buf)
	for range runBatches {
		for range runAllocs {
			p, err := b.Alloc(runSize, allockit.AlignWord)
			if err != nil {
				return err
			}
			touch(p)
		}
		b.Reset()
	}
	return nil
}

func runArena(parent allockit.Allocator) (*allockit.ArenaMetrics, error) {
	a := allockit.NewArena(parent, runBlockSize)
	defer a.Release()

	var m allockit.ArenaMetrics
	for range runBatches {
		for range runAllocs {
			if runWords {
				if _, err := allockit.DupString(a, faker.Word()+faker.Word()); err != nil {
					return nil, err
				}
				continue
			}
			p, err := a.Alloc(runSize, allockit.AlignWord)
			if err != nil {
				return nil, err
			}
			touch(p)
		}
		m = a.Metrics()
		a.ResetRetainCapacity()
	}
	return &m, nil
}

func runPool(parent allockit.Allocator) (*PoolReport, error) {
	p := pool.New[record](parent)
	refs := make([]pool.Ref[record], 0, runAllocs)
	for range runBatches {
		for range runAllocs {
			ref, err := p.Acquire()
			if err != nil {
				return nil, err
			}
			touch(ref.Value()[:])
			refs = append(refs, ref)
		}
		for _, ref := range refs {
			p.Release(ref)
		}
		refs = refs[:0]
	}
	rep := &PoolReport{Capacity: p.Capacity(), Used: p.Used()}
	return rep, p.Deinit()
}

func runFixed() (*PoolReport, error) {
	p := pool.NewFixed[record](runAllocs)
	held := make([]*record, 0, runAllocs)
	for range runBatches {
		for range runAllocs {
			v, ok := p.Acquire()
			if !ok {
				return nil, errors.Wrap(allockit.ErrOutOfMemory, "fixed pool exhausted")
			}
			touch(v[:])
			held = append(held, v)
		}
		for _, v := range held {
			p.Release(v)
		}
		held = held[:0]
	}
	return &PoolReport{Capacity: p.Len(), Used: p.Used()}, nil
}

func touch(b []byte) {
	if len(b) > 0 {
		b[0]++
		b[len(b)-1]++
	}
}

func printReport(w io.Writer, r *Report) {
	p := message.NewPrinter(language.English)
	headerColor.Fprintln(w, p.Sprintf("%s over %s: %d batches x %d allocations of %d bytes in %v",
		r.Strategy, r.Parent, r.Batches, r.Allocs, r.Size, r.Elapsed.Round(time.Microsecond)))
	p.Fprintf(w, "  parent allocs:  %d\n", r.Calls.Allocs)
	p.Fprintf(w, "  parent frees:   %d\n", r.Calls.Frees)
	p.Fprintf(w, "  parent peak:    %d bytes\n", r.Calls.PeakBytes)
	p.Fprintf(w, "  parent total:   %d bytes\n", r.Calls.TotalBytes)
	if m := r.Arena; m != nil {
		p.Fprintf(w, "  arena blocks:   %d (%d bytes, block size %d)\n", m.NumBlocks, m.Capacity, m.BlockSize)
		p.Fprintf(w, "  arena in use:   %d bytes (%.1f%%)\n", m.SizeInUse, m.Utilization*100)
	}
	if pr := r.Pool; pr != nil {
		p.Fprintf(w, "  pool capacity:  %d\n", pr.Capacity)
		p.Fprintf(w, "  pool in use:    %d\n", pr.Used)
	}
	if r.Calls.Live() != 0 {
		warnColor.Fprintf(w, "  warning: %d parent allocations not returned\n", r.Calls.Live())
	}
}
