package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func init() {
	registerForAutomigration(&Session{})
	registerForAutomigration(&StrategyResult{})
}

// Session is one finished tracker run.
type Session struct {
	gorm.Model
	UUID       string `gorm:"uniqueIndex"`
	Source     string
	FrameRate  float64
	Budget     int
	Ticks      int
	Processed  int
	StopReason string
	StartedAt  time.Time
	StoppedAt  time.Time
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if len(s.UUID) == 0 {
		s.UUID = uuid.NewString()
	}
	return nil
}

// StrategyResult is one pair's summary, Position keeping configuration order.
type StrategyResult struct {
	gorm.Model
	SessionUUID string `gorm:"index"`
	Position    int
	Extractor   string
	Strategy    string
	Samples     int
	Windows     int
	WindowSize  int
	PulseRate   float64
	Waveform    []byte
}

func (r *StrategyResult) SetWaveform(waveform []float64) error {
	b, err := encode(waveform)
	if err != nil {
		return err
	}
	r.Waveform = b
	return nil
}

func (r *StrategyResult) DecodeWaveform() ([]float64, error) {
	var waveform []float64
	err := decode(r.Waveform, &waveform)
	return waveform, err
}
