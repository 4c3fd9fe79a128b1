package model

import "fmt"

type FitnessLevel int

const (
	LevelBeginner FitnessLevel = iota
	LevelIntermediate
	LevelAdvanced
)

var fitnessLevelNames = map[FitnessLevel]string{
	LevelBeginner:     "beginner",
	LevelIntermediate: "intermediate",
	LevelAdvanced:     "advanced",
}

func (l FitnessLevel) String() string {
	if name, ok := fitnessLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

func ParseFitnessLevel(raw string) (FitnessLevel, error) {
	if raw == "" {
		return LevelBeginner, nil
	}
	for l, name := range fitnessLevelNames {
		if name == raw {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown fitness level %q", raw)
}

func (l FitnessLevel) MarshalText() ([]byte, error) {
	if _, ok := fitnessLevelNames[l]; !ok {
		return nil, fmt.Errorf("unknown fitness level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *FitnessLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseFitnessLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Profile is what the recommendation generator sees about a user.
type Profile struct {
	Area  BodyArea     `json:"area"`
	Level FitnessLevel `json:"level"`
	Goal  string       `json:"goal,omitempty"`
}
