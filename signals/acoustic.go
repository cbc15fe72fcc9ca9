package signals

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"truthlens/config"
	"truthlens/risk"
)

const (
	frameLength   = 2048
	hopLength     = 512
	maxSpectra    = 256
	cutoffFloorDB = -60.0
)

// AcousticReport is the acoustic layer plus the measured statistics.
type AcousticReport struct {
	risk.Contribution
	ZeroFraction float64
	CutoffHz     float64
	ZCRVariance  float64
}

// AcousticStatistics scores synthesis artefacts in a waveform: stretches of
// exact digital silence, a band-limited spectrum and an unnaturally stable
// zero-crossing rate.
func AcousticStatistics(w Waveform, cfg config.AudioScoring) AcousticReport {
	var r AcousticReport
	if len(w.Samples) < frameLength || w.SampleRate <= 0 {
		r.Note("Audio too short for acoustic analysis")
		return r
	}

	zeros := 0
	for _, s := range w.Samples {
		if s == 0 {
			zeros++
		}
	}
	r.ZeroFraction = float64(zeros) / float64(len(w.Samples))
	if r.ZeroFraction > cfg.SilenceFraction {
		r.Add(cfg.DigitalSilence, fmt.Sprintf("%.0f%% of samples are exact digital silence", r.ZeroFraction*100))
	}

	r.CutoffHz = spectralCutoff(w)
	if r.CutoffHz > 0 && r.CutoffHz < cfg.CutoffHz {
		r.Add(cfg.LowCutoff, fmt.Sprintf("Frequency content stops at %.0f Hz (band-limited synthesis)", r.CutoffHz))
	}

	r.ZCRVariance = zcrVariance(w.Samples)
	if r.ZCRVariance < cfg.ZCRVariance {
		r.Add(cfg.PitchStability, fmt.Sprintf("Unnaturally stable zero-crossing rate (variance %.2e)", r.ZCRVariance))
	}
	return r
}

// spectralCutoff averages Hann-windowed power spectra over up to maxSpectra
// evenly spaced frames and returns the highest frequency whose mean power is
// within cutoffFloorDB of the peak. Zero means silence.
func spectralCutoff(w Waveform) float64 {
	frames := (len(w.Samples)-frameLength)/hopLength + 1
	stride := 1
	if frames > maxSpectra {
		stride = frames / maxSpectra
	}

	fft := fourier.NewFFT(frameLength)
	window := make([]float64, frameLength)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(frameLength-1))
	}

	power := make([]float64, frameLength/2+1)
	seq := make([]float64, frameLength)
	var coeffs []complex128
	for f := 0; f < frames; f += stride {
		start := f * hopLength
		for i := range seq {
			seq[i] = w.Samples[start+i] * window[i]
		}
		coeffs = fft.Coefficients(coeffs, seq)
		for k, c := range coeffs {
			power[k] += real(c)*real(c) + imag(c)*imag(c)
		}
	}

	peak := 0.0
	for _, p := range power {
		peak = math.Max(peak, p)
	}
	if peak == 0 {
		return 0
	}
	floor := peak * math.Pow(10, cutoffFloorDB/10)
	binHz := float64(w.SampleRate) / frameLength
	for k := len(power) - 1; k >= 0; k-- {
		if power[k] >= floor {
			return float64(k) * binHz
		}
	}
	return 0
}

// zcrVariance is the variance of the per-frame zero-crossing rate. Zero
// counts as positive.
func zcrVariance(samples []float64) float64 {
	frames := (len(samples)-frameLength)/hopLength + 1
	rates := make([]float64, 0, frames)
	for f := 0; f < frames; f++ {
		frame := samples[f*hopLength : f*hopLength+frameLength]
		crossings := 0
		for i := 1; i < len(frame); i++ {
			if (frame[i] >= 0) != (frame[i-1] >= 0) {
				crossings++
			}
		}
		rates = append(rates, float64(crossings)/frameLength)
	}

	mean := 0.0
	for _, v := range rates {
		mean += v
	}
	mean /= float64(len(rates))
	variance := 0.0
	for _, v := range rates {
		variance += (v - mean) * (v - mean)
	}
	return variance / float64(len(rates))
}
