package report

// Percent returns num/den as a percentage, 0 when the denominator is
// not positive. Rates are unbounded above; values over 100 are real.
func Percent(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den * 100
}

// BarWidth clamps a rate to [0,100] for progress-bar rendering. Only
// the visual width is clamped; displayed percentages keep full range.
func BarWidth(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}

// CardStatus grades a KPI card rate for coloring.
func CardStatus(rate float64) string {
	switch {
	case rate >= 100:
		return "success"
	case rate >= 80:
		return "warning"
	case rate > 0:
		return "danger"
	default:
		return ""
	}
}

// CoverageResult carries the parsed coverage fields and the derived
// count/amount coverage rates.
type CoverageResult struct {
	SuccessCount      int64   `json:"successCount"`
	ContactCount      int64   `json:"contactCount"`
	UnconvertedCount  int64   `json:"unconvertedCount"`
	SuccessAmount     int64   `json:"successAmount"`
	ContactAmount     int64   `json:"contactAmount"`
	UnconvertedAmount int64   `json:"unconvertedAmount"`
	CountRate         float64 `json:"countRate"`
	AmountRate        float64 `json:"amountRate"`
}

// ParseCoverage extracts the coverage fields from pasted text and
// computes both coverage rates. Success counts toward the numerator and
// the denominator: covered = success + contacted, base = success +
// unconverted.
func ParseCoverage(raw string) CoverageResult {
	rec := Parse(raw, CoverageRules)
	r := CoverageResult{
		SuccessCount:      rec["successCount"],
		ContactCount:      rec["contactCount"],
		UnconvertedCount:  rec["unconvertedCount"],
		SuccessAmount:     rec["successAmount"],
		ContactAmount:     rec["contactAmount"],
		UnconvertedAmount: rec["unconvertedAmount"],
	}
	r.CountRate = Percent(float64(r.SuccessCount+r.ContactCount), float64(r.SuccessCount+r.UnconvertedCount))
	r.AmountRate = Percent(float64(r.SuccessAmount+r.ContactAmount), float64(r.SuccessAmount+r.UnconvertedAmount))
	return r
}

// ActivityResult carries call/SMS activity counts for the application
// and defense teams. Total pairs call attempts (activity+absent);
// Extra pairs the follow-up work (followup+sms).
type ActivityResult struct {
	ApplyActivity   int64 `json:"applyActivity"`
	ApplyAbsent     int64 `json:"applyAbsent"`
	ApplyFollowup   int64 `json:"applyFollowup"`
	ApplySms        int64 `json:"applySms"`
	DefenseActivity int64 `json:"defenseActivity"`
	DefenseAbsent   int64 `json:"defenseAbsent"`
	DefenseFollowup int64 `json:"defenseFollowup"`
	DefenseSms      int64 `json:"defenseSms"`
	ApplyTotal      int64 `json:"applyTotal"`
	ApplyExtra      int64 `json:"applyExtra"`
	DefenseTotal    int64 `json:"defenseTotal"`
	DefenseExtra    int64 `json:"defenseExtra"`
}

// ParseActivity extracts raw activity counts from pasted text.
func ParseActivity(raw string) ActivityResult {
	rec := Parse(raw, ActivityRules)
	r := ActivityResult{
		ApplyActivity:   rec["applyActivity"],
		ApplyAbsent:     rec["applyAbsent"],
		ApplyFollowup:   rec["applyFollowup"],
		ApplySms:        rec["applySms"],
		DefenseActivity: rec["defenseActivity"],
		DefenseAbsent:   rec["defenseAbsent"],
		DefenseFollowup: rec["defenseFollowup"],
		DefenseSms:      rec["defenseSms"],
	}
	r.ApplyTotal = r.ApplyActivity + r.ApplyAbsent
	r.ApplyExtra = r.ApplyFollowup + r.ApplySms
	r.DefenseTotal = r.DefenseActivity + r.DefenseAbsent
	r.DefenseExtra = r.DefenseFollowup + r.DefenseSms
	return r
}

// ApplicationResult carries the application funnel amounts and rates
// against total views.
type ApplicationResult struct {
	TotalView        int64   `json:"totalView"`
	TotalApply       int64   `json:"totalApply"`
	ApplyConvert     int64   `json:"applyConvert"`
	TotalApplyRate   float64 `json:"totalApplyRate"`
	ApplySuccessRate float64 `json:"applySuccessRate"`
}

// ParseApplication extracts the application funnel from pasted text.
func ParseApplication(raw string) ApplicationResult {
	rec := Parse(raw, ApplicationRules)
	r := ApplicationResult{
		TotalView:    rec["totalView"],
		TotalApply:   rec["totalApply"],
		ApplyConvert: rec["applyConvert"],
	}
	r.TotalApplyRate = Percent(float64(r.TotalApply), float64(r.TotalView))
	r.ApplySuccessRate = Percent(float64(r.ApplyConvert), float64(r.TotalView))
	return r
}

// DefenseResult carries the cancellation defense funnel amounts, the
// review completion rate against all cancellations, and the defense
// success rate against reviewed cancellations.
type DefenseResult struct {
	CancelRequest   int64   `json:"cancelRequest"`
	CancelAvailable int64   `json:"cancelAvailable"`
	CancelSuccess   int64   `json:"cancelSuccess"`
	ReviewRate      float64 `json:"reviewRate"`
	DefenseRate     float64 `json:"defenseRate"`
}

// ParseDefense extracts the cancellation defense funnel from pasted text.
func ParseDefense(raw string) DefenseResult {
	rec := Parse(raw, DefenseRules)
	r := DefenseResult{
		CancelRequest:   rec["cancelRequest"],
		CancelAvailable: rec["cancelAvailable"],
		CancelSuccess:   rec["cancelSuccess"],
	}
	r.ReviewRate = Percent(float64(r.CancelAvailable), float64(r.CancelRequest))
	r.DefenseRate = Percent(float64(r.CancelSuccess), float64(r.CancelAvailable))
	return r
}
