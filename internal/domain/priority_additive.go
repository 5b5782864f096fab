package domain

import "github.com/shopspring/decimal"

// DefaultAdditiveLabels are the label thresholds of the additive scheme.
func DefaultAdditiveLabels() LabelThresholds {
	return LabelThresholds{Critical: 75, High: 50, Medium: 25}
}

// Factor saturation points of the additive scheme.
const (
	additiveAgeDays   = 30 // age factor saturates after this many days
	additiveFanOutCap = 5  // fan-out factor saturates at this many dependents
)

// AdditiveScorer is the compatibility scheme: seven weighted factors, each
// normalized to [0,1], summed on a 0-100 scale.
type AdditiveScorer struct {
	labels  LabelThresholds
	weights AdditiveWeights
}

// NewAdditiveScorer creates an additive scorer.
func NewAdditiveScorer(w AdditiveWeights, labels LabelThresholds) *AdditiveScorer {
	if w == (AdditiveWeights{}) {
		w = DefaultAdditiveWeights()
	}
	if labels.IsZero() {
		labels = DefaultAdditiveLabels()
	}
	return &AdditiveScorer{weights: w, labels: labels}
}

// Scheme implements Scorer.
func (s *AdditiveScorer) Scheme() ScoringScheme { return SchemeAdditive }

// Score implements Scorer.
func (s *AdditiveScorer) Score(in ScoringInput) Score {
	item := in.Item
	today := DateOf(in.Now)
	if isFuture(item, today) {
		return Score{Value: FutureScore, Label: LabelFuture}
	}

	factors := []struct {
		weight float64
		value  float64
	}{
		{s.weights.Due, dueProximity(item.DueDate, today)},
		{s.weights.ProjectImportance, projectImportance(item, in.Parent)},
		{s.weights.Context, boolFactor(contextMatches(item, in.Settings))},
		{s.weights.Energy, energyFactor(item.Energy, in.Settings.CurrentEnergy)},
		{s.weights.TimeFit, timeFit(item.TimeEstimate, in.Settings.AvailableMinutes)},
		{s.weights.Age, min(float64(ageDays(item, in.Now))/additiveAgeDays, 1)},
		{s.weights.FanOut, min(float64(in.Dependents)/additiveFanOutCap, 1)},
	}

	total := decimal.Zero
	for _, f := range factors {
		total = total.Add(decimal.NewFromFloat(f.weight).Mul(decimal.NewFromFloat(f.value)))
	}
	value := total.Round(2).InexactFloat64()
	return Score{Value: value, Label: s.labels.Label(value)}
}

func dueProximity(due, today Date) float64 {
	if due.IsZero() {
		return 0
	}
	days := due.DaysSince(today)
	switch {
	case days <= 0:
		return 1
	case days == 1:
		return 0.8
	case days <= 7:
		return 0.5
	case days <= 30:
		return 0.2
	default:
		return 0
	}
}

// projectImportance uses the parent project's importance, or the item's own
// when it has no project parent.
func projectImportance(item, parent *Item) float64 {
	imp := item.Importance
	if parent != nil && parent.Type == TypeProject {
		imp = parent.Importance
	}
	return float64(rating(imp, DefaultImportance)-MinRating) / float64(MaxRating-MinRating)
}

func energyFactor(required, available Energy) float64 {
	switch energyMatch(required, available) {
	case energyExact:
		return 1
	case energyPartial:
		return 0.5
	default:
		return 0
	}
}

// timeFit is neutral when either side is unknown.
func timeFit(estimate, available int) float64 {
	switch {
	case estimate <= 0 || available <= 0:
		return 0.5
	case estimate <= available:
		return 1
	default:
		return 0
	}
}

func boolFactor(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
