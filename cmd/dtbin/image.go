package main

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/robert-malhotra/go-dtbin/dtbin"
	"github.com/robert-malhotra/go-dtbin/dtobj"
)

func newImportImageCommand() *cobra.Command {
	var (
		name string
		grid [4]float64
	)
	cmd := &cobra.Command{
		Use:   "import-image <file> <image>",
		Short: "Append a PNG, JPEG, TIFF or BMP image as a 2D Bitmap",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				base := filepath.Base(args[1])
				name = strings.TrimSuffix(base, filepath.Ext(base))
			}
			return importImage(args[0], args[1], name, dtobj.Grid{X0: grid[0], Y0: grid[1], DX: grid[2], DY: grid[3]})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "variable name (default: image file name)")
	cmd.Flags().Float64Var(&grid[0], "x0", 0, "x of the lower left pixel")
	cmd.Flags().Float64Var(&grid[1], "y0", 0, "y of the lower left pixel")
	cmd.Flags().Float64Var(&grid[2], "dx", 1, "pixel width")
	cmd.Flags().Float64Var(&grid[3], "dy", 1, "pixel height")
	return cmd
}

func importImage(path, imagePath, name string, grid dtobj.Grid) error {
	r, err := os.Open(imagePath)
	if err != nil {
		return err
	}
	defer r.Close()
	img, format, err := image.Decode(r)
	if err != nil {
		return errors.Wrapf(err, "decoding %s", imagePath)
	}

	b := dtobj.BitmapFromImage(img)
	b.SetGrid(grid)
	layout, _ := b.Layout()
	w, h := b.Size()
	log.WithField("prefix", "import").Infof("%s image %dx%d %v", format, w, h, layout)

	f, err := dtbin.OpenAppend(path, fileOptions()...)
	if err != nil {
		return err
	}
	if err := f.Write(name, b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newExportImageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export-image <file> <name> <out.tif|out.bmp>",
		Short: "Write a 2D Bitmap variable as a TIFF or BMP image",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportImage(args[0], args[1], args[2])
		},
	}
}

func exportImage(path, name, out string) error {
	f, err := dtbin.Open(path, fileOptions()...)
	if err != nil {
		return err
	}
	defer f.Close()

	obj, err := dtobj.Materialize(f, name)
	if err != nil {
		return err
	}
	b, ok := obj.(*dtobj.Bitmap2D)
	if !ok {
		return errors.Errorf("%q is a %s, not a bitmap", name, obj.DTType())
	}
	img, err := b.Image()
	if err != nil {
		return err
	}

	w, err := os.Create(out)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(out)) {
	case ".bmp":
		err = bmp.Encode(w, img)
	default:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	if err != nil {
		w.Close()
		return errors.Wrapf(err, "encoding %s", out)
	}
	return w.Close()
}
