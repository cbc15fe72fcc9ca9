package signals

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"truthlens/config"
	"truthlens/risk"
)

const maxSampledPixels = 512 * 512

// ImageStatistics scores structural traits common in generated images:
// power-of-two canvases, unnaturally smooth colour histograms, an alpha
// channel and extreme resolutions. The result is capped at cfg.Cap.
func ImageStatistics(img image.Image, cfg config.ImageScoring) risk.Contribution {
	var c risk.Contribution
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		c.Note("Image has no pixels")
		return c
	}

	if isPowerOfTwo(w) && isPowerOfTwo(h) {
		if w == h {
			c.Add(cfg.PowerOfTwo+cfg.PerfectSquare, fmt.Sprintf("Dimensions %dx%d are a power of 2 / perfect square, typical of AI generators", w, h))
		} else {
			c.Add(cfg.PowerOfTwo, fmt.Sprintf("Dimensions %dx%d are powers of 2, typical of AI generators", w, h))
		}
	}

	if spread := meanChannelStdDev(img); spread < cfg.SmoothStdDev {
		c.Add(cfg.Smooth, fmt.Sprintf("Unnaturally smooth colour distribution (std dev %.1f)", spread))
	}

	if hasAlpha(img) {
		c.Add(cfg.Alpha, "Image has an alpha (transparency) channel")
	}

	longest, shortest := max(w, h), min(w, h)
	if longest >= cfg.ExtremeMaxSide || shortest <= cfg.ExtremeMinSide {
		c.Add(cfg.ExtremeResolution, fmt.Sprintf("Unusual resolution %dx%d", w, h))
	}

	return c.Capped(cfg.Cap)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// meanChannelStdDev builds a 256-bin histogram per RGB channel over a pixel
// sample and returns the mean of the three standard deviations.
func meanChannelStdDev(img image.Image) float64 {
	b := img.Bounds()
	step := 1
	for (b.Dx()/step)*(b.Dy()/step) > maxSampledPixels {
		step++
	}

	var hist [3][256]float64
	n := 0.0
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, _ := img.At(x, y).RGBA()
			hist[0][r>>8]++
			hist[1][g>>8]++
			hist[2][bl>>8]++
			n++
		}
	}
	if n == 0 {
		return 0
	}

	total := 0.0
	for ch := range hist {
		mean := 0.0
		for v, cnt := range hist[ch] {
			mean += float64(v) * cnt
		}
		mean /= n
		variance := 0.0
		for v, cnt := range hist[ch] {
			d := float64(v) - mean
			variance += d * d * cnt
		}
		total += math.Sqrt(variance / n)
	}
	return total / 3
}

func hasAlpha(img image.Image) bool {
	switch img.ColorModel() {
	case color.NRGBAModel, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}
