package model

import "fmt"

type Category int

const (
	CategoryMobility Category = iota
	CategoryStrength
	CategoryStretching
	CategoryBalance
	CategoryBreathing
)

var categoryNames = map[Category]string{
	CategoryMobility:   "mobility",
	CategoryStrength:   "strength",
	CategoryStretching: "stretching",
	CategoryBalance:    "balance",
	CategoryBreathing:  "breathing",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory converts the external string form. An empty string maps to mobility.
func ParseCategory(raw string) (Category, error) {
	if raw == "" {
		return CategoryMobility, nil
	}
	for c, name := range categoryNames {
		if name == raw {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", raw)
}

func (c Category) MarshalText() ([]byte, error) {
	if _, ok := categoryNames[c]; !ok {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Exercise is owned by exactly one session or template; copies are made when
// seeding a new session.
type Exercise struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Completed   bool     `json:"completed"`
}
