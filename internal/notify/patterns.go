package notify

import "time"

const (
	noteC5 = 523.25
	noteE5 = 659.25
	noteG5 = 783.99
)

var (
	// newOrderPattern rises over two tones.
	newOrderPattern = []Tone{
		{FrequencyHz: 660, Duration: 150 * time.Millisecond, Gap: 80 * time.Millisecond},
		{FrequencyHz: 880, Duration: 220 * time.Millisecond},
	}

	// orderReadyPattern climbs a major triad.
	orderReadyPattern = []Tone{
		{FrequencyHz: noteC5, Duration: 150 * time.Millisecond, Gap: 60 * time.Millisecond},
		{FrequencyHz: noteE5, Duration: 150 * time.Millisecond, Gap: 60 * time.Millisecond},
		{FrequencyHz: noteG5, Duration: 150 * time.Millisecond},
	}

	testPattern = []Tone{
		{FrequencyHz: 880, Duration: 300 * time.Millisecond},
	}
)
