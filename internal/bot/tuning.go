package bot

// Tuning holds the weights behind the bot's turn decision. Weights within a situation are
// relative; they need not sum to one.
type Tuning struct {
	// Ahead or level on score.
	PlayWhenAhead float64 `yaml:"play_when_ahead" json:"play_when_ahead"`
	PassWhenAhead float64 `yaml:"pass_when_ahead" json:"pass_when_ahead"`

	// Behind on score.
	PlayWhenBehind   float64 `yaml:"play_when_behind" json:"play_when_behind"`
	LeaderWhenBehind float64 `yaml:"leader_when_behind" json:"leader_when_behind"`

	// Units weaker than this are swapped out during the redraw.
	RedrawBelow int `yaml:"redraw_below" json:"redraw_below"`
}

// DefaultTuning plays cautiously when ahead and pushes when behind.
var DefaultTuning = Tuning{
	PlayWhenAhead:    0.4,
	PassWhenAhead:    0.6,
	PlayWhenBehind:   0.7,
	LeaderWhenBehind: 0.3,
	RedrawBelow:      3,
}

// withDefaults replaces an all-zero situation with the default weights.
func (t Tuning) withDefaults() Tuning {
	if t.PlayWhenAhead <= 0 && t.PassWhenAhead <= 0 {
		t.PlayWhenAhead = DefaultTuning.PlayWhenAhead
		t.PassWhenAhead = DefaultTuning.PassWhenAhead
	}
	if t.PlayWhenBehind <= 0 && t.LeaderWhenBehind <= 0 {
		t.PlayWhenBehind = DefaultTuning.PlayWhenBehind
		t.LeaderWhenBehind = DefaultTuning.LeaderWhenBehind
	}
	if t.RedrawBelow < 0 {
		t.RedrawBelow = 0
	}
	return t
}
