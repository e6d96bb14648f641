package main

import (
	"log"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// victoryNotes is a rising C major arpeggio (C5 E5 G5 C6)
var victoryNotes = []float64{523.25, 659.25, 783.99, 1046.50}

const noteLength = 120 * time.Millisecond

// chime plays short tones on the speaker. A chime that failed to open the
// speaker stays silent.
type chime struct {
	enabled bool
}

func newChime(mute bool) *chime {
	if mute {
		return &chime{}
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		log.Printf("[AUDIO] speaker unavailable: %v", err)
		return &chime{}
	}
	return &chime{enabled: true}
}

// victoryStreamer builds the arpeggio as a single streamer
func victoryStreamer() (beep.Streamer, error) {
	notes := make([]beep.Streamer, 0, len(victoryNotes))
	for _, freq := range victoryNotes {
		tone, err := generators.SineTone(sampleRate, freq)
		if err != nil {
			return nil, err
		}
		notes = append(notes, beep.Take(sampleRate.N(noteLength), tone))
	}
	return &effects.Volume{Streamer: beep.Seq(notes...), Base: 2, Volume: -2}, nil
}

// Victory plays the victory arpeggio without blocking
func (c *chime) Victory() {
	if !c.enabled {
		return
	}
	s, err := victoryStreamer()
	if err != nil {
		log.Printf("[AUDIO] %v", err)
		return
	}
	speaker.Play(s)
}
