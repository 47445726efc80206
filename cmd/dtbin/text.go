package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/robert-malhotra/go-dtbin/dtbin"
)

func newPutTextCommand() *cobra.Command {
	var charset string
	cmd := &cobra.Command{
		Use:   "put-text <file> <name> <text file>",
		Short: "Append the contents of a text file as a String variable",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return putText(args[0], args[1], args[2], charset)
		},
	}
	cmd.Flags().StringVar(&charset, "charset", "utf-8", "encoding of the text file, e.g. windows-1252 or iso-8859-1")
	return cmd
}

func putText(path, name, textPath, charset string) error {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return errors.Wrapf(err, "charset %q", charset)
	}
	raw, err := os.ReadFile(textPath)
	if err != nil {
		return err
	}

	f, err := dtbin.OpenAppend(path, fileOptions()...)
	if err != nil {
		return err
	}
	defer f.Close()

	exposure := dtbin.ExposureName(name)
	for _, n := range []string{exposure, name} {
		ok, err := f.Contains(n)
		if err != nil {
			return err
		}
		if ok {
			return errors.Wrapf(dtbin.ErrExists, "%q", n)
		}
	}
	if err := f.AppendString(exposure, dtbin.TagString); err != nil {
		return err
	}
	return f.AppendText(name, raw, enc)
}
