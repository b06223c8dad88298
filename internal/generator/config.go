package generator

// Config drives the synthetic campus generator.
type Config struct {
	GridColumns    int
	GridRows       int
	Spacing        float64
	Jitter         float64
	Destinations   int
	Groups         []string
	DiagonalChance float64
	DropEdgeChance float64
	TagChance      float64
	Seed           int64
}

// DefaultConfig returns a small campus suitable for local development.
func DefaultConfig() Config {
	return Config{
		GridColumns:    12,
		GridRows:       8,
		Spacing:        25,
		Jitter:         4,
		Destinations:   40,
		Groups:         []string{"library", "dining", "parking", "lab", "residence", "athletics"},
		DiagonalChance: 0.15,
		DropEdgeChance: 0.05,
		TagChance:      0.5,
		Seed:           42,
	}
}
