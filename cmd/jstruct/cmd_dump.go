package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dhamidi/jstruct/archive"
	"github.com/dhamidi/jstruct/classfile"
	"github.com/dhamidi/jstruct/format"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newDumpCmd() *cobra.Command {
	var (
		dumpFormat string
		entryName  string
		maxVersion uint16
	)

	cmd := &cobra.Command{
		Use:   "dump <file.class|archive.jar>",
		Short: "Dump the parsed structure of a class file or of the classes in an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dumpFormat == "" {
				dumpFormat = defaultFormat()
			}
			enc, err := format.New(dumpFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runDump(cmd.Context(), args[0], entryName, enc, classfile.WithMaxMajorVersion(maxVersion))
		},
	}

	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "",
		"output format ("+strings.Join(format.Names, ", ")+"); line on a terminal, json otherwise")
	cmd.Flags().StringVarP(&entryName, "entry", "e", "", "dump only this entry of an archive")
	cmd.Flags().Uint16Var(&maxVersion, "max-version", classfile.DefaultMaxMajorVersion, "newest class file major version to accept")

	return cmd
}

func defaultFormat() string {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "line"
	}
	return "json"
}

func runDump(ctx context.Context, path, entryName string, enc format.Encoder, opts ...classfile.Option) error {
	if entryName != "" {
		e, err := archive.Find(ctx, path, entryName)
		if err != nil {
			return err
		}
		return dumpEntry(e, enc, opts)
	}

	return archive.Walk(ctx, path, func(e archive.Entry, err error) error {
		if err != nil {
			return err
		}
		return dumpEntry(e, enc, opts)
	})
}

func dumpEntry(e archive.Entry, enc format.Encoder, opts []classfile.Option) error {
	cf, err := classfile.Parse(e.Data, opts...)
	if err != nil {
		return fmt.Errorf("parse %s: %w", e.Path, err)
	}
	if err := enc.Encode(cf); err != nil {
		return fmt.Errorf("encode %s: %w", e.Path, err)
	}
	return nil
}
