package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriorityLabel is the human-facing bucket of a score.
type PriorityLabel string

const (
	LabelCritical PriorityLabel = "Critical"
	LabelHigh     PriorityLabel = "High"
	LabelMedium   PriorityLabel = "Medium"
	LabelLow      PriorityLabel = "Low"
	LabelFuture   PriorityLabel = "Future" // scheduled after today
)

// FutureScore is returned for any task scheduled after today.
const FutureScore = 0.1

// ScoringInput carries everything a scorer may consume.
// Parent and Dependents are only used by the additive scheme.
type ScoringInput struct {
	Now        time.Time // Reference time; today is its calendar date
	Item       *Item
	Parent     *Item // nil = root or unknown
	Settings   Settings
	Dependents int // Number of live children
}

// Score is a computed priority.
type Score struct {
	Label PriorityLabel
	Value float64
}

// Scorer computes a priority. Implementations must be pure.
type Scorer interface {
	Score(in ScoringInput) Score
	Scheme() ScoringScheme
}

// NewScorer returns the scorer selected by cfg.
// Zero weights and thresholds fall back to the scheme defaults.
func NewScorer(cfg ScoringConfig) Scorer {
	if cfg.Scheme == SchemeAdditive {
		return NewAdditiveScorer(cfg.Additive, cfg.Labels)
	}
	return NewMultiplicativeScorer(cfg.Multiplicative, cfg.Labels)
}

// ScoreItem computes the priority of item. Non-task items score zero.
func ScoreItem(s Scorer, in ScoringInput) Score {
	if in.Item == nil || in.Item.Type != TypeTask {
		return Score{Value: 0, Label: LabelLow}
	}
	return s.Score(in)
}

// DefaultMultiplicativeLabels are the label thresholds of the multiplicative scheme.
func DefaultMultiplicativeLabels() LabelThresholds {
	return LabelThresholds{Critical: 400, High: 200, Medium: 100}
}

// EffectiveLabels returns the thresholds the configured scheme labels with.
func (cfg ScoringConfig) EffectiveLabels() LabelThresholds {
	switch {
	case !cfg.Labels.IsZero():
		return cfg.Labels
	case cfg.Scheme == SchemeAdditive:
		return DefaultAdditiveLabels()
	default:
		return DefaultMultiplicativeLabels()
	}
}

// Label maps a score to its label.
func (l LabelThresholds) Label(v float64) PriorityLabel {
	switch {
	case v >= l.Critical:
		return LabelCritical
	case v >= l.High:
		return LabelHigh
	case v >= l.Medium:
		return LabelMedium
	default:
		return LabelLow
	}
}

// MultiplicativeScorer is the canonical gatekeeper-then-multiplicative scheme:
// importance times due-adjusted urgency, plus flat bonuses.
type MultiplicativeScorer struct {
	labels  LabelThresholds
	weights MultiplicativeWeights
}

// NewMultiplicativeScorer creates a multiplicative scorer.
func NewMultiplicativeScorer(w MultiplicativeWeights, labels LabelThresholds) *MultiplicativeScorer {
	if w == (MultiplicativeWeights{}) {
		w = DefaultMultiplicativeWeights()
	}
	if labels.IsZero() {
		labels = DefaultMultiplicativeLabels()
	}
	return &MultiplicativeScorer{weights: w, labels: labels}
}

// Scheme implements Scorer.
func (s *MultiplicativeScorer) Scheme() ScoringScheme { return SchemeMultiplicative }

// Score implements Scorer.
func (s *MultiplicativeScorer) Score(in ScoringInput) Score {
	item := in.Item
	today := DateOf(in.Now)
	if isFuture(item, today) {
		return Score{Value: FutureScore, Label: LabelFuture}
	}

	importance := decimal.NewFromInt(int64(rating(item.Importance, DefaultImportance)))
	urgency := decimal.NewFromInt(int64(rating(item.Urgency, DefaultUrgency)))
	ten := decimal.NewFromInt(10)

	base := importance.Mul(ten).Mul(urgency.Mul(DueMultiplier(item.DueDate, today)).Mul(ten))

	bonus := decimal.Zero
	if item.IsStarred {
		bonus = bonus.Add(decimal.NewFromFloat(s.weights.StarBonus))
	}
	if contextMatches(item, in.Settings) {
		bonus = bonus.Add(decimal.NewFromFloat(s.weights.ContextBonus))
	}
	switch energyMatch(item.Energy, in.Settings.CurrentEnergy) {
	case energyExact:
		bonus = bonus.Add(decimal.NewFromFloat(s.weights.EnergyBonus))
	case energyPartial:
		bonus = bonus.Add(decimal.NewFromFloat(s.weights.PartialEnergyBonus))
	}
	age := decimal.NewFromFloat(s.weights.AgePerDay).Mul(decimal.NewFromInt(int64(ageDays(item, in.Now))))
	bonus = bonus.Add(decimal.Min(age, decimal.NewFromFloat(s.weights.AgeCap)))

	value := base.Add(bonus).Round(2).InexactFloat64()
	return Score{Value: value, Label: s.labels.Label(value)}
}

// DueMultiplier returns the urgency multiplier for a due date relative to today.
// Overdue grows by 0.1 per day without bound.
func DueMultiplier(due, today Date) decimal.Decimal {
	if due.IsZero() {
		return decimal.NewFromInt(1)
	}
	days := due.DaysSince(today)
	switch {
	case days < 0:
		return decimal.NewFromInt(4).Add(decimal.New(1, -1).Mul(decimal.NewFromInt(int64(-days))))
	case days == 0:
		return decimal.NewFromInt(3)
	case days == 1:
		return decimal.NewFromInt(2)
	case days <= 7:
		return decimal.NewFromFloat(1.5)
	default:
		return decimal.NewFromInt(1)
	}
}

func isFuture(item *Item, today Date) bool {
	return !item.ScheduledDate.IsZero() && item.ScheduledDate.After(today)
}

func contextMatches(item *Item, s Settings) bool {
	return item.ContextID != "" && s.CurrentContext != "" && item.ContextID == s.CurrentContext
}

type energyFit int

const (
	energyNone energyFit = iota
	energyPartial
	energyExact
)

func energyMatch(required, available Energy) energyFit {
	switch {
	case available == "" || required == "":
		return energyNone
	case required == available:
		return energyExact
	case available == EnergyHigh:
		return energyPartial
	default:
		return energyNone
	}
}

// ageDays returns whole days since the item was created, never negative.
func ageDays(item *Item, now time.Time) int {
	if item.CreatedDate.IsZero() {
		return 0
	}
	days := DateOf(now).DaysSince(DateOf(item.CreatedDate.In(now.Location())))
	return max(days, 0)
}

func rating(v, def int) int {
	if v == 0 {
		return def
	}
	return min(max(v, MinRating), MaxRating)
}
