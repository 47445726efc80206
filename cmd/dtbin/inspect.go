package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-dtbin/dtbin"
	"github.com/robert-malhotra/go-dtbin/dtobj"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: "List every record with its element type and extents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := dtbin.Open(args[0], fileOptions()...)
			if err != nil {
				return err
			}
			defer f.Close()
			return list(cmd.OutOrStdout(), f)
		},
	}
}

func list(w io.Writer, f *dtbin.File) error {
	names, err := f.Names()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tM\tN\tO\tOFFSET")
	for _, name := range names {
		ri, err := f.Stat(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%v\t%d\t%d\t%d\t%d\n", name, f.Descriptor(ri.Type), ri.M, ri.N, ri.O, ri.Offset)
	}
	return tw.Flush()
}

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Summarize a file and its exposed variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := dtbin.Open(args[0], fileOptions()...)
			if err != nil {
				return err
			}
			defer f.Close()
			return info(cmd.OutOrStdout(), f)
		},
	}
}

func info(w io.Writer, f *dtbin.File) error {
	names, err := f.Names()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "path:       %s\n", f.Path())
	fmt.Fprintf(w, "byte order: %v\n", f.ByteOrder())
	fmt.Fprintf(w, "size:       %d\n", f.Size())
	fmt.Fprintf(w, "records:    %d\n", len(names))

	exposed := make(map[string]string)
	for _, name := range names {
		if !strings.HasPrefix(name, dtbin.ExposurePrefix) {
			continue
		}
		tag, err := f.ReadString(name)
		if err != nil {
			return errors.Wrapf(err, "reading %q", name)
		}
		exposed[strings.TrimPrefix(name, dtbin.ExposurePrefix)] = tag
	}
	vars := make([]string, 0, len(exposed))
	for v := range exposed {
		vars = append(vars, v)
	}
	sort.Strings(vars)

	fmt.Fprintf(w, "variables:  %d\n", len(vars))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, v := range vars {
		fmt.Fprintf(tw, "  %s\t%s\n", v, exposed[v])
	}
	return tw.Flush()
}

func newDumpCommand() *cobra.Command {
	var resolve bool
	cmd := &cobra.Command{
		Use:   "dump <file> <name>",
		Short: "Print a variable, as a compound object when its type is known",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := dtbin.Open(args[0], fileOptions()...)
			if err != nil {
				return err
			}
			defer f.Close()
			return dump(cmd.OutOrStdout(), f, args[1], resolve)
		},
	}
	cmd.Flags().BoolVar(&resolve, "resolve", false, "treat string records as aliases and print what they lead to")
	return cmd
}

func dump(w io.Writer, f *dtbin.File, name string, resolve bool) error {
	obj, err := dtobj.Materialize(f, name)
	switch {
	case err == nil:
		fmt.Fprintf(w, "%s (%s)\n%v\n", name, obj.DTType(), obj)
		return nil
	case errors.Is(err, dtobj.ErrUnknownCompound), errors.Is(err, dtbin.ErrNotFound):
		log.WithField("prefix", "dump").Debugf("%q: reading raw record: %v", name, err)
	default:
		return err
	}

	read := f.Read
	if resolve {
		read = f.ReadResolved
	}
	v, err := read(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s (%v)\n%v\n", name, v.Type(), v)
	return nil
}
