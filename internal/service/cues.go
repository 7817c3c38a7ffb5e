package service

// Cues is the audio-feedback boundary. The engine decides when a cue should
// play; producing the sound is the presentation layer's job.
type Cues interface {
	PaymentChime()
	StealBlockedSiren()
}

// NoopCues ignores every cue.
type NoopCues struct{}

func (NoopCues) PaymentChime()      {}
func (NoopCues) StealBlockedSiren() {}
