package recommend

import (
	"context"
	"fmt"
	"strings"

	"physiotrack/backend/internal/model"
)

var catalog = map[model.BodyArea][]string{
	model.AreaGeneral:  {"Cat-Cow Stretch", "Glute Bridge", "Bird Dog", "Wall Push-Up", "Standing Calf Raise", "Diaphragmatic Breathing"},
	model.AreaNeck:     {"Chin Tuck", "Neck Side Bend", "Levator Scapulae Stretch", "Shoulder Shrug", "Upper Trapezius Stretch"},
	model.AreaShoulder: {"Pendulum Swing", "Wall Slide", "External Rotation with Band", "Scapular Squeeze", "Doorway Pec Stretch"},
	model.AreaBack:     {"Pelvic Tilt", "Knee to Chest", "Bird Dog", "Cat-Cow Stretch", "Prone Press-Up", "Dead Bug"},
	model.AreaHip:      {"Clamshell", "Hip Flexor Stretch", "Side-Lying Leg Raise", "Glute Bridge", "Standing Hip Abduction"},
	model.AreaKnee:     {"Quad Set", "Straight Leg Raise", "Heel Slide", "Mini Squat", "Step-Up", "Hamstring Curl"},
	model.AreaAnkle:    {"Ankle Alphabet", "Towel Scrunch", "Calf Stretch", "Single-Leg Balance", "Resisted Dorsiflexion"},
}

// CatalogGenerator builds programs from a fixed exercise list per body area.
// The level decides how many exercises are included.
type CatalogGenerator struct{}

func (CatalogGenerator) Suggest(_ context.Context, profile model.Profile) (Suggestion, error) {
	names := catalog[profile.Area]
	if len(names) == 0 {
		names = catalog[model.AreaGeneral]
	}

	count := 3
	switch profile.Level {
	case model.LevelIntermediate:
		count = 4
	case model.LevelAdvanced:
		count = 5
	}
	if count > len(names) {
		count = len(names)
	}

	return Suggestion{
		Name:      fmt.Sprintf("%s %s Program", titleCase(profile.Level.String()), titleCase(profile.Area.String())),
		Exercises: append([]string(nil), names[:count]...),
		Source:    "catalog",
	}, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
