package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"truthlens/config"
	"truthlens/models"
	"truthlens/risk"
	"truthlens/signals"
)

const (
	MaxAudioBytes = 25 << 20

	LayerAcoustic   = "acoustic"
	LayerContent    = "content"
	LayerVoiceModel = "voice_model"
)

var audioFormats = []string{
	"audio/wav", "audio/mpeg", "audio/ogg", "audio/flac",
	"audio/x-m4a", "audio/mp4", "audio/webm",
}

// AudioService scores a voice recording for synthesis artefacts and scam
// content.
type AudioService struct {
	transcriber Transcriber
	judge       *Judge
	scoring     config.Scoring
}

func NewAudioService(transcriber Transcriber, judge *Judge, scoring config.Scoring) *AudioService {
	return &AudioService{transcriber: transcriber, judge: judge, scoring: scoring}
}

// Analyze runs the audio pipeline. The request fails only when the file can
// be neither decoded nor transcribed.
func (s *AudioService) Analyze(ctx context.Context, fileName string, data []byte) (*models.AudioResult, error) {
	if len(data) == 0 {
		return nil, invalid("No audio file provided")
	}
	if len(data) > MaxAudioBytes {
		return nil, invalid("Audio file too large (max 25 MB)")
	}
	mime := mimetype.Detect(data)
	if !isAllowed(mime, audioFormats) {
		return nil, invalid("Unsupported audio format %s. Allowed: WAV, MP3, OGG, FLAC, M4A, WEBM", mime.String())
	}
	log.Printf("[AUDIO] ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("[AUDIO] 🎙 %s: %s, %d bytes", fileName, mime.String(), len(data))

	acoustic := risk.Unchecked(LayerAcoustic, "Acoustic analysis unavailable for this format")
	var duration float64
	wave, decodeErr := signals.DecodeWaveform(data, mime.String())
	if decodeErr == nil {
		report := signals.AcousticStatistics(wave, s.scoring.Audio)
		acoustic = risk.NewLayer(LayerAcoustic, report.Contribution)
		duration = math.Round(wave.Duration().Seconds()*10) / 10
		log.Printf("[AUDIO] 📈 zeros=%.3f cutoff=%.0fHz zcr_var=%.2e → %d points",
			report.ZeroFraction, report.CutoffHz, report.ZCRVariance, report.Points)
	} else {
		log.Printf("[AUDIO] ⚠ No waveform: %v", decodeErr)
	}

	transcript, transcribeErr := s.transcriber.Transcribe(ctx, fileName, data)
	if transcribeErr != nil {
		if !errors.Is(transcribeErr, ErrModelUnavailable) {
			log.Printf("[AUDIO] ⚠ Transcription failed: %v", transcribeErr)
		}
		transcript = ""
	}
	if decodeErr != nil && transcribeErr != nil {
		return nil, invalid("Could not decode or transcribe this audio file")
	}

	deepfake, judged := s.judge.Deepfake(ctx, audioData{
		DurationSeconds: duration,
		Signals:         acoustic.Signals,
		Transcript:      transcript,
	})
	scam := s.judge.ScamLikelihood(ctx, transcript)

	content := risk.Unchecked(LayerContent)
	if transcript != "" {
		var c risk.Contribution
		if scam.Likelihood > 0 {
			msg := fmt.Sprintf("Transcript scam likelihood %d%%", scam.Likelihood)
			if len(scam.Patterns) > 0 {
				msg += ": " + strings.Join(scam.Patterns, ", ")
			}
			c.Add(weighted(scam.Likelihood, s.scoring.Audio.ScamWeight), msg)
		}
		content = risk.NewLayer(LayerContent, c)
	}

	model := risk.Unchecked(LayerVoiceModel)
	if judged {
		var c risk.Contribution
		c.Add(weighted(deepfake.AIProbability, s.scoring.Audio.ModelWeight),
			fmt.Sprintf("Voice model rates the recording %s (%d%% synthetic, %s)", deepfake.Label, deepfake.AIProbability, deepfake.AnalysisType))
		model = risk.NewLayer(LayerVoiceModel, c)
	}

	v := risk.AggregateWithOverride(s.scoring.Verdicts.Audio, risk.AudioScale,
		LayerAcoustic, s.scoring.Audio.AcousticOverride,
		acoustic, content, model,
	)

	explanation := deepfake.Explanation
	if v.Overridden() {
		explanation = strings.TrimSpace(explanation + fmt.Sprintf(
			" Deterministic acoustic evidence (%d points) forces a %s verdict regardless of the model's assessment.",
			acoustic.Points, v.Category()))
	}
	log.Printf("[AUDIO] ✓ acoustic=%d content=%d model=%d → %d %s (overridden=%v)",
		acoustic.Points, content.Points, model.Points, v.TotalRisk(), v.Category(), v.Overridden())

	return &models.AudioResult{
		FileName:        fileName,
		DurationSeconds: duration,
		AIProbability:   v.TotalRisk(),
		Verdict:         string(v.Category()),
		AnalysisType:    deepfake.AnalysisType,
		Signals:         v.Signals(),
		Transcript:      transcript,
		Explanation:     explanation,
		ScamLikelihood:  scam.Likelihood,
		ScamPatterns:    scam.Patterns,
	}, nil
}
