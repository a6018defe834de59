package domain

// AllergySeverity grades how strongly a user reacts to an allergen
type AllergySeverity string

const (
	SeverityMild     AllergySeverity = "mild"
	SeverityModerate AllergySeverity = "moderate"
	SeveritySevere   AllergySeverity = "severe"
)

// Allergy is a single user allergy
type Allergy struct {
	Name     string          `json:"name" yaml:"name"`
	Severity AllergySeverity `json:"severity" yaml:"severity"`
}

// UserProfile is the consumer's health and dietary profile. It is read-only input.
type UserProfile struct {
	Allergies          []Allergy `json:"allergies,omitempty" yaml:"allergies,omitempty"`
	Sensitivities      []string  `json:"sensitivities,omitempty" yaml:"sensitivities,omitempty"`
	DietaryPreferences []string  `json:"dietaryPreferences,omitempty" yaml:"dietaryPreferences,omitempty"`
	Priorities         []string  `json:"priorities,omitempty" yaml:"priorities,omitempty"`
	AvoidList          []string  `json:"avoidList,omitempty" yaml:"avoidList,omitempty"`
	SeekList           []string  `json:"seekList,omitempty" yaml:"seekList,omitempty"`
	OnboardingComplete bool      `json:"onboardingComplete" yaml:"onboardingComplete"`
}

// IsEmpty reports whether the profile carries nothing the oracle could use
func (p *UserProfile) IsEmpty() bool {
	if p == nil {
		return true
	}
	return len(p.Allergies) == 0 &&
		len(p.Sensitivities) == 0 &&
		len(p.DietaryPreferences) == 0 &&
		len(p.Priorities) == 0 &&
		len(p.AvoidList) == 0 &&
		len(p.SeekList) == 0
}
