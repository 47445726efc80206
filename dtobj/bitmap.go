package dtobj

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-dtbin/dtbin"
)

const TagBitmap2D = "2D Bitmap"

// Channel names one plane of a bitmap.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
	Alpha
	Gray
	numChannels
)

var channelNames = [numChannels]string{"Red", "Green", "Blue", "Alpha", "Gray"}

func (c Channel) String() string {
	if c < 0 || c >= numChannels {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// Layout is the set of channels present in a bitmap.
type Layout int

const (
	LayoutGray Layout = iota + 1
	LayoutGrayAlpha
	LayoutRGB
	LayoutRGBA
)

// Channels returns the channels of the layout in sample order.
func (l Layout) Channels() []Channel {
	switch l {
	case LayoutGray:
		return []Channel{Gray}
	case LayoutGrayAlpha:
		return []Channel{Gray, Alpha}
	case LayoutRGB:
		return []Channel{Red, Green, Blue}
	case LayoutRGBA:
		return []Channel{Red, Green, Blue, Alpha}
	default:
		return nil
	}
}

func (l Layout) String() string {
	switch l {
	case LayoutGray:
		return "gray"
	case LayoutGrayAlpha:
		return "gray+alpha"
	case LayoutRGB:
		return "rgb"
	case LayoutRGBA:
		return "rgba"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// Samples is a decoded raster as produced by an image decoder: pixels
// interleaved in Layout order, rows from top to bottom.
type Samples struct {
	Data     []byte
	Width    int
	Height   int
	Layout   Layout
	BitDepth int              // 8 or 16
	Order    binary.ByteOrder // byte order of 16 bit samples
}

// Bitmap2D is an 8 or 16 bit image placed on a uniform grid. Each channel
// is a (height, width) array whose first row is the bottom of the image.
type Bitmap2D struct {
	width, height int
	depth         dtbin.Type
	channels      [numChannels]*dtbin.Array
	grid          Grid
	nodata        *float64
}

// NewBitmap2D returns a bitmap with no channels.
func NewBitmap2D(grid Grid) *Bitmap2D {
	return &Bitmap2D{grid: grid}
}

// SetChannel sets channel c. Every channel must have the same shape and
// element type; floating-point samples are rejected.
func (b *Bitmap2D) SetChannel(c Channel, a *dtbin.Array) error {
	if c < 0 || c >= numChannels {
		return errors.Wrapf(ErrInvalid, "%v", c)
	}
	if a == nil {
		b.channels[c] = nil
		return nil
	}
	switch a.Type() {
	case dtbin.Uint8, dtbin.Int8, dtbin.Uint16, dtbin.Int16:
	default:
		return errors.Wrapf(ErrInvalid, "%v channel of type %v: bitmaps hold 8 or 16 bit integers", c, a.Type())
	}
	a, err := fitRank(a, 2)
	if err != nil {
		return err
	}
	shape := a.Shape()
	if b.depth == 0 {
		b.depth = a.Type()
		b.height, b.width = shape[0], shape[1]
	} else if a.Type() != b.depth || shape[0] != b.height || shape[1] != b.width {
		return errors.Wrapf(ErrInvalid, "%v channel %v%v does not match %v[%d %d]", c, a.Type(), shape, b.depth, b.height, b.width)
	}
	b.channels[c] = a
	return nil
}

// Channel returns channel c, or nil.
func (b *Bitmap2D) Channel(c Channel) *dtbin.Array {
	if c < 0 || c >= numChannels {
		return nil
	}
	return b.channels[c]
}

// Layout reports which channels are present. ok is false if the channels
// do not form a gray or RGB image.
func (b *Bitmap2D) Layout() (l Layout, ok bool) {
	has := func(c Channel) bool { return b.channels[c] != nil }
	switch {
	case has(Gray):
		l = LayoutGray
	case has(Red) && has(Green) && has(Blue):
		l = LayoutRGB
	default:
		return 0, false
	}
	if has(Alpha) {
		l++
	}
	return l, true
}

// Size returns the raster width and height.
func (b *Bitmap2D) Size() (width, height int) { return b.width, b.height }

// Depth returns the element type of the samples, or 0 for an empty bitmap.
func (b *Bitmap2D) Depth() dtbin.Type { return b.depth }

// Grid returns the placement of the bitmap.
func (b *Bitmap2D) Grid() Grid { return b.grid }

// SetGrid sets the placement of the bitmap.
func (b *Bitmap2D) SetGrid(g Grid) { b.grid = g }

// GeoTransform returns the affine transform of a north-up raster:
// (xmin, dx, 0, ymax, 0, -dy).
func (b *Bitmap2D) GeoTransform() [6]float64 {
	dy := math.Abs(b.grid.DY)
	return [6]float64{b.grid.X0, b.grid.DX, 0, b.grid.Y0 + dy*float64(b.height), 0, -dy}
}

// SetGeoTransform places the bitmap from an affine transform. Rotation
// terms are ignored. The channels must be set first.
func (b *Bitmap2D) SetGeoTransform(gt [6]float64) {
	b.grid = Grid{
		X0: gt[0],
		Y0: gt[3] + gt[5]*float64(b.height),
		DX: gt[1],
		DY: math.Abs(gt[5]),
	}
}

// SetNoData sets the sample value that marks missing data.
func (b *Bitmap2D) SetNoData(v float64) { b.nodata = &v }

// NoData returns the missing-data value, if any.
func (b *Bitmap2D) NoData() (float64, bool) {
	if b.nodata == nil {
		return 0, false
	}
	return *b.nodata, true
}

// MeshFromChannel returns channel c as a mesh on the bitmap grid. With a
// no-data value, the mesh is masked to the samples that differ from it.
func (b *Bitmap2D) MeshFromChannel(c Channel) (*Mesh2D, error) {
	values := b.Channel(c)
	if values == nil {
		return nil, errors.Wrapf(ErrInvalid, "bitmap has no %v channel", c)
	}
	var mask *Mask
	if nodata, ok := b.NoData(); ok {
		flat := values.Float64s()
		inside := make([]uint8, len(flat))
		for i, v := range flat {
			if v != nodata {
				inside[i] = 1
			}
		}
		var err error
		if mask, err = NewMask(dtbin.MustArray(inside, values.Shape()...)); err != nil {
			return nil, err
		}
	}
	return NewMesh2D(values, b.grid, mask)
}

// BitmapFromSamples converts a decoded raster to a bitmap on the unit grid.
func BitmapFromSamples(s Samples) (*Bitmap2D, error) {
	chans := s.Layout.Channels()
	if chans == nil {
		return nil, errors.Wrapf(ErrInvalid, "%v", s.Layout)
	}
	if s.Width < 0 || s.Height < 0 {
		return nil, errors.Wrapf(ErrInvalid, "raster size %dx%d", s.Width, s.Height)
	}
	if s.BitDepth != 8 && s.BitDepth != 16 {
		return nil, errors.Wrapf(ErrInvalid, "%d bit samples", s.BitDepth)
	}
	if s.BitDepth == 16 && s.Order == nil {
		return nil, errors.Wrap(ErrInvalid, "16 bit samples need a byte order")
	}
	width := s.BitDepth / 8
	want := s.Width * s.Height * len(chans) * width
	if len(s.Data) != want {
		return nil, errors.Wrapf(ErrInvalid, "%d sample bytes for %dx%d %v, want %d", len(s.Data), s.Width, s.Height, s.Layout, want)
	}

	b := NewBitmap2D(UnitGrid)
	stride := s.Width * len(chans) * width
	for ci, c := range chans {
		var a *dtbin.Array
		if s.BitDepth == 8 {
			plane := make([]uint8, s.Width*s.Height)
			for y := 0; y < s.Height; y++ {
				src := s.Data[y*stride:]
				dst := plane[(s.Height-1-y)*s.Width:]
				for x := 0; x < s.Width; x++ {
					dst[x] = src[(x*len(chans)+ci)*width]
				}
			}
			a = dtbin.MustArray(plane, s.Height, s.Width)
		} else {
			plane := make([]uint16, s.Width*s.Height)
			for y := 0; y < s.Height; y++ {
				src := s.Data[y*stride:]
				dst := plane[(s.Height-1-y)*s.Width:]
				for x := 0; x < s.Width; x++ {
					dst[x] = s.Order.Uint16(src[(x*len(chans)+ci)*width:])
				}
			}
			a = dtbin.MustArray(plane, s.Height, s.Width)
		}
		if err := b.SetChannel(c, a); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// BitmapFromImage converts img to a bitmap on the unit grid. Gray images
// give a gray channel; everything else gives RGB, plus alpha when some
// pixel is not opaque. 16 bit color models keep 16 bit samples.
func BitmapFromImage(img image.Image) *Bitmap2D {
	r := img.Bounds()
	w, h := r.Dx(), r.Dy()
	wide := false
	switch img.ColorModel() {
	case color.Gray16Model, color.RGBA64Model, color.NRGBA64Model:
		wide = true
	}
	gray := img.ColorModel() == color.GrayModel || img.ColorModel() == color.Gray16Model

	var planes [numChannels][]uint16
	used := []Channel{Red, Green, Blue, Alpha}
	if gray {
		used = []Channel{Gray}
	}
	for _, c := range used {
		planes[c] = make([]uint16, w*h)
	}
	opaque := true
	for y := 0; y < h; y++ {
		row := (h - 1 - y) * w
		for x := 0; x < w; x++ {
			px := img.At(r.Min.X+x, r.Min.Y+y)
			if gray {
				planes[Gray][row+x] = color.Gray16Model.Convert(px).(color.Gray16).Y
				continue
			}
			c := color.NRGBA64Model.Convert(px).(color.NRGBA64)
			planes[Red][row+x] = c.R
			planes[Green][row+x] = c.G
			planes[Blue][row+x] = c.B
			planes[Alpha][row+x] = c.A
			if c.A != 0xffff {
				opaque = false
			}
		}
	}
	if !gray && opaque {
		planes[Alpha] = nil
	}

	b := NewBitmap2D(UnitGrid)
	for c, p := range planes {
		if p == nil {
			continue
		}
		var a *dtbin.Array
		if wide {
			a = dtbin.MustArray(p, h, w)
		} else {
			a = dtbin.MustArray(narrow(p), h, w)
		}
		// every plane has the same shape and type
		_ = b.SetChannel(Channel(c), a)
	}
	return b
}

func narrow(p []uint16) []uint8 {
	out := make([]uint8, len(p))
	for i, v := range p {
		out[i] = uint8(v >> 8)
	}
	return out
}

// sample returns channel c at raster position (x, y), y counted from the
// top, scaled to 16 bits. An absent channel reads as full intensity.
func (b *Bitmap2D) sample(c Channel, x, y int) uint16 {
	a := b.channels[c]
	if a == nil {
		return 0xffff
	}
	i := (b.height-1-y)*b.width + x
	if v, ok := dtbin.Elements[uint8](a); ok {
		return uint16(v[i]) * 0x101
	}
	v, _ := dtbin.Elements[uint16](a)
	return v[i]
}

// Image returns the bitmap as an image. Only unsigned samples are
// supported.
func (b *Bitmap2D) Image() (image.Image, error) {
	layout, ok := b.Layout()
	if !ok {
		return nil, errors.Wrap(ErrInvalid, "bitmap has no gray or RGB channels")
	}
	if b.depth != dtbin.Uint8 && b.depth != dtbin.Uint16 {
		return nil, errors.Wrapf(ErrInvalid, "cannot build an image from %v samples", b.depth)
	}
	wide := b.depth == dtbin.Uint16
	rect := image.Rect(0, 0, b.width, b.height)

	if layout == LayoutGray {
		if wide {
			img := image.NewGray16(rect)
			for y := 0; y < b.height; y++ {
				for x := 0; x < b.width; x++ {
					img.SetGray16(x, y, color.Gray16{Y: b.sample(Gray, x, y)})
				}
			}
			return img, nil
		}
		img := image.NewGray(rect)
		for y := 0; y < b.height; y++ {
			for x := 0; x < b.width; x++ {
				img.SetGray(x, y, color.Gray{Y: uint8(b.sample(Gray, x, y) >> 8)})
			}
		}
		return img, nil
	}

	rc, gc, bc := Red, Green, Blue
	if layout == LayoutGrayAlpha {
		rc, gc, bc = Gray, Gray, Gray
	}
	if wide {
		img := image.NewNRGBA64(rect)
		for y := 0; y < b.height; y++ {
			for x := 0; x < b.width; x++ {
				img.SetNRGBA64(x, y, color.NRGBA64{
					R: b.sample(rc, x, y),
					G: b.sample(gc, x, y),
					B: b.sample(bc, x, y),
					A: b.sample(Alpha, x, y),
				})
			}
		}
		return img, nil
	}
	img := image.NewNRGBA(rect)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(b.sample(rc, x, y) >> 8),
				G: uint8(b.sample(gc, x, y) >> 8),
				B: uint8(b.sample(bc, x, y) >> 8),
				A: uint8(b.sample(Alpha, x, y) >> 8),
			})
		}
	}
	return img, nil
}

func (*Bitmap2D) DTType() string { return TagBitmap2D }

func (b *Bitmap2D) suffix() string {
	if b.depth == dtbin.Uint16 || b.depth == dtbin.Int16 {
		return "16"
	}
	return ""
}

// WriteDT writes each channel as "<name>_<Channel>", with a "16" suffix for
// 16 bit samples, and the grid under name.
func (b *Bitmap2D) WriteDT(f *dtbin.File, name string) error {
	if b.depth == 0 {
		return errors.Wrap(ErrInvalid, "bitmap has no channels")
	}
	for c := Channel(0); c < numChannels; c++ {
		if b.channels[c] == nil {
			continue
		}
		if err := f.AppendArray(name+"_"+c.String()+b.suffix(), b.channels[c]); err != nil {
			return err
		}
	}
	return writeDoubles(f, name, b.grid.values()...)
}

// ReadBitmap2D reads a 2D Bitmap.
func ReadBitmap2D(f *dtbin.File, name string) (*Bitmap2D, error) {
	grid, err := readGrid(f, name)
	if err != nil {
		return nil, err
	}
	b := NewBitmap2D(grid)
	for _, suffix := range []string{"", "16"} {
		for c := Channel(0); c < numChannels; c++ {
			cname := name + "_" + c.String() + suffix
			ok, err := f.Contains(cname)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			a, err := readArray(f, cname, 2)
			if err != nil {
				return nil, err
			}
			if err := b.SetChannel(c, a); err != nil {
				return nil, errors.Wrapf(err, "%q", cname)
			}
		}
	}
	return b, nil
}
