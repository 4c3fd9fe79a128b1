package model

import (
	"fmt"
	"time"
)

const (
	MinPainLevel = 0
	MaxPainLevel = 10
)

type BodyArea int

const (
	AreaGeneral BodyArea = iota
	AreaNeck
	AreaShoulder
	AreaBack
	AreaHip
	AreaKnee
	AreaAnkle
)

var bodyAreaNames = map[BodyArea]string{
	AreaGeneral:  "general",
	AreaNeck:     "neck",
	AreaShoulder: "shoulder",
	AreaBack:     "back",
	AreaHip:      "hip",
	AreaKnee:     "knee",
	AreaAnkle:    "ankle",
}

// BodyAreas lists every area in declaration order.
func BodyAreas() []BodyArea {
	return []BodyArea{AreaGeneral, AreaNeck, AreaShoulder, AreaBack, AreaHip, AreaKnee, AreaAnkle}
}

func (a BodyArea) String() string {
	if name, ok := bodyAreaNames[a]; ok {
		return name
	}
	return fmt.Sprintf("area(%d)", int(a))
}

func ParseBodyArea(raw string) (BodyArea, error) {
	if raw == "" {
		return AreaGeneral, nil
	}
	for a, name := range bodyAreaNames {
		if name == raw {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown body area %q", raw)
}

func (a BodyArea) MarshalText() ([]byte, error) {
	if _, ok := bodyAreaNames[a]; !ok {
		return nil, fmt.Errorf("unknown body area %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *BodyArea) UnmarshalText(text []byte) error {
	parsed, err := ParseBodyArea(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

type PainEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	SessionID  *string   `json:"sessionId,omitempty"`
	Level      int       `json:"level"`
	Area       BodyArea  `json:"area"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

type PainSummary struct {
	Area    BodyArea `json:"area"`
	Count   int      `json:"count"`
	Average float64  `json:"average"`
	Max     int      `json:"max"`
}
