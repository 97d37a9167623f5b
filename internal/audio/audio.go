// Package audio plays a short tone whenever the cloud changes template.
package audio

import (
	"fmt"
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/san-kum/handcloud/internal/shape"
)

const (
	SampleRate = 44100
	BufferSize = 512

	cueDecay  = 6.0 // per second
	cueFloor  = 1e-4
	volume    = 0.25
	delayTime = 0.18
)

// Pitches per template, a rising minor pentatonic step for each advance.
var pitches = map[shape.Template]float64{
	shape.Sphere:    220.00,
	shape.Heart:     261.63,
	shape.Saturn:    293.66,
	shape.Fireworks: 392.00,
}

// Pitch returns the cue frequency of a template.
func Pitch(t shape.Template) float64 {
	if f, ok := pitches[t]; ok {
		return f
	}
	return pitches[shape.Sphere]
}

// Synth renders decaying triangle cues through a one-pole filter and a
// short stereo echo. Cue may be called from any goroutine while Render runs
// on the audio thread.
type Synth struct {
	mu   sync.Mutex
	freq float64
	env  float64

	phase       float64
	filterState [2]float64
	delayLine   [2][]float64
	delayHead   int
}

func NewSynth() *Synth {
	n := int(float64(SampleRate) * delayTime)
	return &Synth{delayLine: [2][]float64{make([]float64, n), make([]float64, n)}}
}

// Cue starts a tone for t, replacing any tone still ringing.
func (s *Synth) Cue(t shape.Template) {
	s.mu.Lock()
	s.freq = Pitch(t)
	s.env = 1
	s.phase = 0
	s.mu.Unlock()
}

// Ringing reports whether a cue is still audible.
func (s *Synth) Ringing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env > cueFloor
}

// Triangle wave, smooth and without harsh overtones.
func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// One pole low pass.
func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

// Render fills a stereo buffer.
func (s *Synth) Render(out [][]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dt := 1.0 / float64(SampleRate)
	decay := math.Exp(-cueDecay * dt)
	cutoff := 4 * s.freq
	if cutoff == 0 {
		cutoff = 1000
	}

	for i := range out[0] {
		dry := 0.0
		if s.env > cueFloor {
			dry = triangle(s.phase) * s.env
			s.phase += s.freq * dt
			s.env *= decay
		} else {
			s.env = 0
		}

		wetL := s.delayLine[0][s.delayHead]
		wetR := s.delayLine[1][s.delayHead]

		s.filterState[0] = lpf(dry+wetR*0.35, cutoff, dt, s.filterState[0])
		s.filterState[1] = lpf(dry+wetL*0.35, cutoff, dt, s.filterState[1])

		s.delayLine[0][s.delayHead] = s.filterState[0] * 0.5
		s.delayLine[1][s.delayHead] = s.filterState[1] * 0.5
		s.delayHead = (s.delayHead + 1) % len(s.delayLine[0])

		out[0][i] = float32(s.filterState[0] * volume)
		if len(out) > 1 {
			out[1][i] = float32(s.filterState[1] * volume)
		}
	}
}

// Player drives a Synth from the default output device.
type Player struct {
	*Synth
	stream *portaudio.Stream
}

// Start opens the default output device. The caller should keep running
// without sound when it fails.
func Start() (*Player, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audio init: %w", err)
	}
	p := &Player{Synth: NewSynth()}
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, p.Render)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("audio open: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("audio start: %w", err)
	}
	p.stream = stream
	return p, nil
}

func (p *Player) Close() error {
	if p == nil || p.stream == nil {
		return nil
	}
	p.stream.Stop()
	err := p.stream.Close()
	portaudio.Terminate()
	p.stream = nil
	return err
}
