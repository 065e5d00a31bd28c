package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pavanmanishd/allockit"
	"github.com/pavanmanishd/allockit/pool"
)

func init() {
	rootCmd.AddCommand(newScenariosCmd())
}

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "Walk through the fixed-buffer and pool reuse scenarios",
		Long: `The scenarios command replays two small walkthroughs step by step:
a 100-byte fixed buffer running out of space and being reset, and an object
pool handing a released node back out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if err := bumpScenario(w); err != nil {
				return err
			}
			fmt.Fprintln(w)
			return poolScenario(w)
		},
	}
}

func bumpScenario(w io.Writer) error {
	var storage [100]byte
	b := allockit.FixedBuffer(storage[:])
	fmt.Fprintln(w, "fixed buffer, 100 bytes")

	for _, n := range []int{50, 40, 20} {
		_, err := b.Alloc(n, allockit.Align1)
		switch {
		case errors.Is(err, allockit.ErrOutOfMemory):
			fmt.Fprintf(w, "  alloc %d: out of memory, offset %d\n", n, b.Offset())
		case err != nil:
			return err
		default:
			fmt.Fprintf(w, "  alloc %d: ok, offset %d\n", n, b.Offset())
		}
	}

	b.Reset()
	fmt.Fprintf(w, "  reset: offset %d\n", b.Offset())
	if _, err := b.Alloc(80, allockit.Align1); err != nil {
		return err
	}
	fmt.Fprintf(w, "  alloc 80: ok, offset %d\n", b.Offset())
	return nil
}

func poolScenario(w io.Writer) error {
	p := pool.New[record](allockit.Heap)
	fmt.Fprintln(w, "object pool")

	var refs [3]pool.Ref[record]
	for i := range refs {
		r, err := p.Acquire()
		if err != nil {
			return err
		}
		refs[i] = r
	}
	fmt.Fprintf(w, "  acquire A, B, C: capacity %d, used %d\n", p.Capacity(), p.Used())

	p.Release(refs[1])
	fmt.Fprintf(w, "  release B: used %d, free %d\n", p.Used(), p.FreeLen())

	again, err := p.Acquire()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  acquire: same node as B %t, capacity %d\n", again.Value() == refs[1].Value(), p.Capacity())

	for _, r := range []pool.Ref[record]{refs[0], again, refs[2]} {
		p.Release(r)
	}
	return p.Deinit()
}
