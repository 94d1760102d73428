package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/dhamidi/jstruct/archive"
	"github.com/dhamidi/jstruct/classfile"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type scanOptions struct {
	jobs       int
	maxVersion uint16
	quiet      bool
}

type scanResult struct {
	classes int
	errs    *multierror.Error
	kinds   map[string]int
}

func newScanCmd() *cobra.Command {
	opts := scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Parse every class file in a directory, jar, or zip file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			res, err := runScan(cmd.Context(), args[0], opts, out)
			if err != nil {
				return err
			}
			printSummary(out, res)
			if n := len(res.errs.WrappedErrors()); n > 0 {
				return fmt.Errorf("%d of %d classes failed to parse", n, res.classes+n)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", runtime.NumCPU(), "number of classes parsed concurrently")
	cmd.Flags().Uint16Var(&opts.maxVersion, "max-version", classfile.DefaultMaxMajorVersion, "newest class file major version to accept")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "only report failures")

	return cmd
}

// runScan parses every entry under path. Unreadable entries and parse
// failures are collected in the result; only a failure to walk path at all
// is returned as an error.
func runScan(ctx context.Context, path string, opts scanOptions, out io.Writer) (*scanResult, error) {
	res := &scanResult{errs: &multierror.Error{}, kinds: make(map[string]int)}
	res.errs.ErrorFormat = listErrors

	var mu sync.Mutex
	fail := func(entryPath string, err error) {
		mu.Lock()
		defer mu.Unlock()
		res.errs = multierror.Append(res.errs, fmt.Errorf("%s: %w", entryPath, err))
		res.kinds[errorKind(err)]++
		fmt.Fprintf(out, "[ERROR] %s: %v\n", entryPath, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if opts.jobs > 0 {
		g.SetLimit(opts.jobs)
	}

	walkErr := archive.Walk(gctx, path, func(e archive.Entry, err error) error {
		if err != nil {
			fail(e.Path, err)
			return nil
		}
		g.Go(func() error {
			cf, err := classfile.Parse(e.Data, classfile.WithMaxMajorVersion(opts.maxVersion))
			if err != nil {
				fail(e.Path, err)
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			res.classes++
			if !opts.quiet {
				fmt.Fprintf(out, "[OK] %s (%s)\n", e.Path, cf.ClassName())
			}
			return nil
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, walkErr
	}
	return res, nil
}

var errorKinds = []struct {
	name string
	err  error
}{
	{"invalid class file", classfile.ErrInvalidClassFile},
	{"unsupported version", classfile.ErrUnsupportedClassVersion},
	{"unexpected end of data", classfile.ErrUnexpectedEndOfData},
	{"constant pool", classfile.ErrConstantPool},
	{"attribute length mismatch", classfile.ErrAttributeLengthMismatch},
}

func errorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "other"
}

func listErrors(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = "  - " + err.Error()
	}
	return strings.Join(lines, "\n")
}

func printSummary(out io.Writer, res *scanResult) {
	fmt.Fprintf(out, "\n=== SCAN COMPLETE ===\n")
	fmt.Fprintf(out, "Classes parsed: %d\n", res.classes)
	fmt.Fprintf(out, "Errors: %d\n", len(res.errs.WrappedErrors()))
	for _, k := range errorKinds {
		if n := res.kinds[k.name]; n > 0 {
			fmt.Fprintf(out, "  %s: %d\n", k.name, n)
		}
	}
	if n := res.kinds["other"]; n > 0 {
		fmt.Fprintf(out, "  other: %d\n", n)
	}
	if res.errs.ErrorOrNil() != nil {
		fmt.Fprintln(out, res.errs.Error())
	}
}
