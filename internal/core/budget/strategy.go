package budget

// Strategy declares which fields a caller category treats as critical or
// important, and how important fields compete for the remaining budget.
// Field order in CriticalFields is the packing order for the critical
// tier, so it is an explicit ordered sequence rather than map keys.
type Strategy struct {
	Name            string             `json:"name"`
	CriticalFields  []string           `json:"criticalFields"`
	ImportantFields []string           `json:"importantFields"`
	Weights         map[string]float64 `json:"weights"`
}

// tierFor classifies a field name. Membership is resolved once,
// first-match-wins, with critical checked before important. Everything
// else degrades to the optional catch-all instead of being dropped.
func (s Strategy) tierFor(key string) Tier {
	for _, name := range s.CriticalFields {
		if name == key {
			return TierCritical
		}
	}
	for _, name := range s.ImportantFields {
		if name == key {
			return TierImportant
		}
	}
	return TierOptional
}

// weightOf returns the configured weight for a field, defaulting to zero.
func (s Strategy) weightOf(key string) float64 {
	if s.Weights == nil {
		return 0
	}
	return s.Weights[key]
}

// StrategyProvider resolves a caller category to a Strategy. Providers
// must return a usable strategy for every input, including unknown
// categories.
type StrategyProvider interface {
	StrategyFor(category string) Strategy
}

// DefaultStrategy is the minimal profile applied to unrecognized
// categories: a field literally named "essential" is critical, "relevant"
// is important, everything else is optional.
func DefaultStrategy() Strategy {
	return Strategy{
		Name:            "default",
		CriticalFields:  []string{"essential"},
		ImportantFields: []string{"relevant"},
		Weights:         map[string]float64{},
	}
}

// builtinStrategies are the statically known caller profiles. They mirror
// the context shapes produced by the surrounding tooling: merge conflict
// resolution, review, debugging and refactoring sessions.
var builtinStrategies = map[string]Strategy{
	"conflict-resolution": {
		Name:            "conflict-resolution",
		CriticalFields:  []string{"conflictDetails", "baseChanges", "localChanges", "remoteChanges"},
		ImportantFields: []string{"fileHistory", "recentCommits", "relatedSymbols"},
		Weights: map[string]float64{
			"fileHistory":    0.9,
			"recentCommits":  0.7,
			"relatedSymbols": 0.5,
		},
	},
	"code-review": {
		Name:            "code-review",
		CriticalFields:  []string{"changes", "reviewRequest"},
		ImportantFields: []string{"symbols", "testResults", "patterns", "fileChanges"},
		Weights: map[string]float64{
			"symbols":     0.9,
			"testResults": 0.8,
			"patterns":    0.6,
			"fileChanges": 0.5,
		},
	},
	"debugging": {
		Name:            "debugging",
		CriticalFields:  []string{"errorDetails", "stackTrace"},
		ImportantFields: []string{"recentChanges", "logOutput", "symbols", "history"},
		Weights: map[string]float64{
			"recentChanges": 0.9,
			"logOutput":     0.8,
			"symbols":       0.6,
			"history":       0.4,
		},
	},
	"refactoring": {
		Name:            "refactoring",
		CriticalFields:  []string{"targetSymbols", "dependencies"},
		ImportantFields: []string{"patterns", "testCoverage", "fileChanges"},
		Weights: map[string]float64{
			"patterns":     0.8,
			"testCoverage": 0.7,
			"fileChanges":  0.5,
		},
	},
}

// Registry holds the built-in strategy profiles plus any caller
// registered ones. The zero value is not usable; construct with
// NewRegistry.
type Registry struct {
	profiles map[string]Strategy
}

// NewRegistry returns a registry seeded with the built-in profiles.
func NewRegistry() *Registry {
	profiles := make(map[string]Strategy, len(builtinStrategies))
	for category, strategy := range builtinStrategies {
		profiles[category] = strategy
	}
	return &Registry{profiles: profiles}
}

// Register adds or replaces the strategy for a category.
func (r *Registry) Register(category string, strategy Strategy) {
	if strategy.Name == "" {
		strategy.Name = category
	}
	r.profiles[category] = strategy
}

// StrategyFor resolves a category, falling back to DefaultStrategy for
// anything unrecognized.
func (r *Registry) StrategyFor(category string) Strategy {
	if strategy, ok := r.profiles[category]; ok {
		return strategy
	}
	return DefaultStrategy()
}
