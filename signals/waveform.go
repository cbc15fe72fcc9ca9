package signals

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// ErrUnsupportedAudio means the container has no waveform decoder; such
// files can still be transcribed.
var ErrUnsupportedAudio = errors.New("no waveform decoder for this audio format")

// Waveform is mono PCM normalised to [-1, 1].
type Waveform struct {
	Samples    []float64
	SampleRate int
}

func (w Waveform) Duration() time.Duration {
	if w.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(len(w.Samples)) / float64(w.SampleRate) * float64(time.Second))
}

// DecodeWaveform decodes WAV and MP3 data. mimeType is the detected MIME
// type of data.
func DecodeWaveform(data []byte, mimeType string) (Waveform, error) {
	switch mimeType {
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
		return decodeWAV(data)
	case "audio/mpeg", "audio/mp3", "audio/x-mpeg":
		return decodeMP3(data)
	default:
		return Waveform{}, fmt.Errorf("%w: %s", ErrUnsupportedAudio, mimeType)
	}
}

func decodeWAV(data []byte) (Waveform, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return Waveform{}, errors.New("invalid WAV file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Waveform{}, fmt.Errorf("decode WAV: %w", err)
	}

	channels := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	bitDepth := int(d.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := math.Pow(2, float64(bitDepth-1))

	frames := len(buf.Data) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			v := float64(buf.Data[i*channels+ch])
			if bitDepth == 8 {
				v -= 128
			}
			sum += v / scale
		}
		out[i] = sum / float64(channels)
	}
	return Waveform{Samples: out, SampleRate: int(d.SampleRate)}, nil
}

// go-mp3 always produces interleaved 16-bit little-endian stereo.
func decodeMP3(data []byte) (Waveform, error) {
	d, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return Waveform{}, fmt.Errorf("decode MP3: %w", err)
	}
	pcm, err := io.ReadAll(d)
	if err != nil {
		return Waveform{}, fmt.Errorf("decode MP3: %w", err)
	}

	frames := len(pcm) / 4
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(pcm[i*4:]))
		r := int16(binary.LittleEndian.Uint16(pcm[i*4+2:]))
		out[i] = (float64(l) + float64(r)) / 2 / 32768
	}
	return Waveform{Samples: out, SampleRate: d.SampleRate()}, nil
}
