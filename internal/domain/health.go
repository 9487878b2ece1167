package domain

// SupplementRecommendation is one supplement suggestion inside a health
// analysis.
type SupplementRecommendation struct {
	Name    string `json:"name"`
	Dosage  string `json:"dosage"`
	Timing  string `json:"timing"`
	Reason  string `json:"reason"`
	Caution string `json:"caution"`
}

// HealthAnalysis is the reasoning payload stored in videos.health_analysis.
// The score itself lives in videos.health_impact_score (lifetime minutes,
// positive adds to life expectancy, negative subtracts).
type HealthAnalysis struct {
	Summary                   string                     `json:"summary"`
	ContentType               string                     `json:"content_type"`
	LongevityImpact           string                     `json:"longevity_impact"`
	Benefits                  []string                   `json:"benefits"`
	Risks                     []string                   `json:"risks"`
	Recommendations           []string                   `json:"recommendations"`
	Tags                      []string                   `json:"tags"`
	SupplementRecommendations []SupplementRecommendation `json:"supplement_recommendations"`
}

// ContentCategories is the vision-derived payload stored in
// videos.content_categories.
type ContentCategories struct {
	PrimaryCategory  string             `json:"primary_category,omitempty"`
	Activities       []DetectedActivity `json:"activities,omitempty"`
	Environment      string             `json:"environment,omitempty"`
	Objects          []string           `json:"objects,omitempty"`
	SafetyAssessment map[string]string  `json:"safety_assessment,omitempty"`
}

type DetectedActivity struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}
