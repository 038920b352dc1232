package report

// MatchMode controls how a rule's keyword is matched against a line.
type MatchMode int

const (
	// MatchExact requires full-line equality with the keyword.
	MatchExact MatchMode = iota
	// MatchPrefix requires the line to start with the keyword.
	MatchPrefix
	// MatchSubstring requires the keyword anywhere in the line, with none
	// of the rule's exclude words present.
	MatchSubstring
)

// ValueShape selects the pattern a candidate value line must satisfy.
type ValueShape int

const (
	// ShapeCount accepts lines consisting entirely of digits and commas.
	ShapeCount ValueShape = iota
	// ShapeCurrency accepts lines starting with ₩ immediately followed by
	// digits. A bare sign or placeholder dash does not match.
	ShapeCurrency
)

// ParseRule declares how one named field is located in a pasted report:
// an anchor keyword, a bounded forward search window below it, and the
// shape the value line must have.
type ParseRule struct {
	Keyword      string
	Match        MatchMode
	Exclude      []string // substring mode only
	SearchWindow int      // lines below the anchor, before tolerance margin
	Shape        ValueShape
}

// RuleSet maps field names to their parse rules. Rules are independent;
// two rules may anchor on the same line.
type RuleSet map[string]ParseRule

// CoverageRules extracts the conversion coverage fields from a pasted
// CRM insights dump. Labels carry trailing qualifiers in some layouts,
// so keywords match as substrings.
var CoverageRules = RuleSet{
	"successCount":      {Keyword: "전환 성공 건수", Match: MatchSubstring, SearchWindow: 5, Shape: ShapeCount},
	"contactCount":      {Keyword: "컨택 진행 건수 (구간 전체)", Match: MatchSubstring, SearchWindow: 5, Shape: ShapeCount},
	"unconvertedCount":  {Keyword: "미전환 건수 (구간 전체)", Match: MatchSubstring, SearchWindow: 5, Shape: ShapeCount},
	"successAmount":     {Keyword: "전환 성공 금액", Match: MatchSubstring, SearchWindow: 5, Shape: ShapeCurrency},
	"contactAmount":     {Keyword: "컨택 진행 금액 (구간 전체)", Match: MatchSubstring, SearchWindow: 5, Shape: ShapeCurrency},
	"unconvertedAmount": {Keyword: "미전환 금액 (구간 전체)", Match: MatchSubstring, SearchWindow: 5, Shape: ShapeCurrency},
}

// ActivityRules extracts call/SMS activity counts. Activity labels are
// sometimes suffixed with agent names, so prefix matching is used.
var ActivityRules = RuleSet{
	"applyActivity":   {Keyword: "줍줍 활동", Match: MatchPrefix, SearchWindow: 5, Shape: ShapeCount},
	"applyAbsent":     {Keyword: "줍줍 부재", Match: MatchPrefix, SearchWindow: 5, Shape: ShapeCount},
	"applyFollowup":   {Keyword: "줍줍콜 사후관리", Match: MatchPrefix, SearchWindow: 5, Shape: ShapeCount},
	"applySms":        {Keyword: "신청 문자", Match: MatchPrefix, SearchWindow: 5, Shape: ShapeCount},
	"defenseActivity": {Keyword: "취소 활동", Match: MatchPrefix, SearchWindow: 5, Shape: ShapeCount},
	"defenseAbsent":   {Keyword: "취소 부재", Match: MatchPrefix, SearchWindow: 5, Shape: ShapeCount},
	"defenseFollowup": {Keyword: "취소방어 사후관리", Match: MatchPrefix, SearchWindow: 5, Shape: ShapeCount},
	"defenseSms":      {Keyword: "취소 문자", Match: MatchPrefix, SearchWindow: 5, Shape: ShapeCount},
}

// ApplicationRules extracts the application funnel amounts. The KPI_
// labels stand alone on their line, so exact matching avoids the prefix
// collision between KPI_신청 and KPI_신청전환.
var ApplicationRules = RuleSet{
	"totalView":    {Keyword: "KPI_총조회", Match: MatchExact, SearchWindow: 5, Shape: ShapeCurrency},
	"totalApply":   {Keyword: "KPI_신청", Match: MatchExact, SearchWindow: 5, Shape: ShapeCurrency},
	"applyConvert": {Keyword: "KPI_신청전환", Match: MatchExact, SearchWindow: 5, Shape: ShapeCurrency},
}

// DefenseRules extracts the cancellation defense funnel amounts.
var DefenseRules = RuleSet{
	"cancelRequest":   {Keyword: "KPI_취소전체", Match: MatchExact, SearchWindow: 5, Shape: ShapeCurrency},
	"cancelAvailable": {Keyword: "KPI_취소검토", Match: MatchExact, SearchWindow: 5, Shape: ShapeCurrency},
	"cancelSuccess":   {Keyword: "KPI_취소성공", Match: MatchExact, SearchWindow: 5, Shape: ShapeCurrency},
}
