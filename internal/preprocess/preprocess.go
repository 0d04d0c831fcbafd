// ABOUTME: CLIP image preprocessing: RGB conversion, resize, center crop, rescale, normalize.
// ABOUTME: Produces a channel-major float32 tensor ready for the vision encoder.
package preprocess

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Preprocessor applies a fixed transform to decoded images.
type Preprocessor struct {
	cfg    Config
	height int
	width  int
	scale  [3]float32 // rescale / std, folded
	offset [3]float32 // mean / std, folded
}

// New validates cfg and returns a Preprocessor for it.
func New(cfg Config) (*Preprocessor, error) {
	height, width, err := cfg.OutputSize()
	if err != nil {
		return nil, err
	}
	if cfg.DoResize && cfg.Size.ShortestEdge <= 0 && (cfg.Size.Height <= 0 || cfg.Size.Width <= 0) {
		return nil, fmt.Errorf("invalid resize size %+v", cfg.Size)
	}

	p := &Preprocessor{cfg: cfg, height: height, width: width}

	rescale := 1.0
	if cfg.DoRescale {
		if cfg.RescaleFactor <= 0 {
			return nil, fmt.Errorf("invalid rescale factor %v", cfg.RescaleFactor)
		}
		rescale = cfg.RescaleFactor
	}
	for c := 0; c < 3; c++ {
		mean, std := 0.0, 1.0
		if cfg.DoNormalize {
			if len(cfg.ImageMean) != 3 || len(cfg.ImageStd) != 3 {
				return nil, fmt.Errorf("image_mean and image_std need 3 channels, got %d and %d", len(cfg.ImageMean), len(cfg.ImageStd))
			}
			mean, std = cfg.ImageMean[c], cfg.ImageStd[c]
			if std == 0 {
				return nil, errors.New("image_std must not contain zero")
			}
		}
		p.scale[c] = float32(rescale / std)
		p.offset[c] = float32(mean / std)
	}
	return p, nil
}

// Config returns the settings the preprocessor was built with.
func (p *Preprocessor) Config() Config {
	return p.cfg
}

// Shape returns the NCHW tensor shape produced by Apply.
func (p *Preprocessor) Shape() []int64 {
	return []int64{1, 3, int64(p.height), int64(p.width)}
}

// Apply converts img into a normalized CHW tensor of length 3*height*width.
func (p *Preprocessor) Apply(img image.Image) ([]float32, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	if img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}

	src := toRGB(img)
	if p.cfg.DoResize {
		src = p.resize(src)
	}

	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	top, left := 0, 0
	if p.cfg.DoCenterCrop {
		top = floorDiv(srcH-p.height, 2)
		left = floorDiv(srcW-p.width, 2)
	}

	plane := p.height * p.width
	out := make([]float32, 3*plane)
	for y := 0; y < p.height; y++ {
		sy := y + top
		for x := 0; x < p.width; x++ {
			sx := x + left
			var rgb [3]uint8
			// Pixels outside the source are zero padding.
			if sy >= 0 && sy < srcH && sx >= 0 && sx < srcW {
				off := src.PixOffset(b.Min.X+sx, b.Min.Y+sy)
				rgb = [3]uint8{src.Pix[off], src.Pix[off+1], src.Pix[off+2]}
			}
			i := y*p.width + x
			for c := 0; c < 3; c++ {
				out[c*plane+i] = float32(rgb[c])*p.scale[c] - p.offset[c]
			}
		}
	}
	return out, nil
}

// resize scales the image so its shortest edge matches the configured size,
// or to the explicit height and width when no shortest edge is set.
func (p *Preprocessor) resize(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	var newW, newH int
	if edge := p.cfg.Size.ShortestEdge; edge > 0 {
		if w <= h {
			newW, newH = edge, int(float64(edge)*float64(h)/float64(w))
		} else {
			newW, newH = int(float64(edge)*float64(w)/float64(h)), edge
		}
	} else {
		newW, newH = p.cfg.Size.Width, p.cfg.Size.Height
	}
	if newW == w && newH == h {
		return src
	}

	dst := image.NewNRGBA(image.Rect(0, 0, newW, newH))
	interpolator(p.cfg.Resample).Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func interpolator(resample int) draw.Interpolator {
	switch resample {
	case ResampleNearest:
		return draw.NearestNeighbor
	case ResampleBilinear:
		return draw.BiLinear
	default:
		// Bicubic and Lanczos both map to the Catmull-Rom kernel.
		return draw.CatmullRom
	}
}

// toRGB copies img into an opaque NRGBA image. Color values are un-premultiplied
// and alpha is discarded, the way an RGB conversion drops the alpha channel.
func toRGB(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			off := dst.PixOffset(x-b.Min.X, y-b.Min.Y)
			dst.Pix[off] = c.R
			dst.Pix[off+1] = c.G
			dst.Pix[off+2] = c.B
			dst.Pix[off+3] = 0xff
		}
	}
	return dst
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
