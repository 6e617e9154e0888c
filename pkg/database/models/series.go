package models

import (
	"gorm.io/gorm"
)

func init() {
	registerForAutomigration(&Series{})
}

// Series is a labelled per-frame feature stream kept for classifier
// training. Rows hold four values per frame.
type Series struct {
	gorm.Model
	SessionUUID string `gorm:"index"`
	Split       string `gorm:"index"`
	Label       int
	FrameRate   float64
	Frames      int
	Rows        []byte
}

func (s *Series) SetRows(rows [][4]float64) error {
	b, err := encode(rows)
	if err != nil {
		return err
	}
	s.Rows = b
	s.Frames = len(rows)
	return nil
}

func (s *Series) DecodeRows() ([][4]float64, error) {
	var rows [][4]float64
	err := decode(s.Rows, &rows)
	return rows, err
}
