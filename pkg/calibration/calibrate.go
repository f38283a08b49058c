package calibration

// Config tunes Calibrate. Zero fields take the package defaults.
type Config struct {
	BaseTau          int
	Multiplier       float64
	ConsistencyScale float64
}

func (c Config) withDefaults() Config {
	if c.BaseTau <= 0 {
		c.BaseTau = DefaultBaseTau
	}
	if c.Multiplier <= 0 {
		c.Multiplier = DefaultMultiplier
	}
	if c.ConsistencyScale <= 0 {
		c.ConsistencyScale = DefaultConsistencyScale
	}
	return c
}

// Result is everything a client needs to commit to a template.
type Result struct {
	Template []int   `json:"template"`
	Tau      int     `json:"tau"`
	Quality  Quality `json:"quality"`
}

// Calibrate averages samples into a template, then derives its threshold
// and quality.
func Calibrate(samples [][]int, cfg Config) (Result, error) {
	cfg = cfg.withDefaults()

	template, err := AverageTemplate(samples)
	if err != nil {
		return Result{}, err
	}

	tau, err := AdaptiveTau(template, samples, cfg.BaseTau, cfg.Multiplier)
	if err != nil {
		return Result{}, err
	}

	q, err := TemplateQuality(template, samples, cfg.ConsistencyScale)
	if err != nil {
		return Result{}, err
	}

	return Result{Template: template, Tau: tau, Quality: q}, nil
}
