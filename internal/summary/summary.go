// Package summary renders the copy-paste KPI digests shared in chat
// channels. Builders take computed KPI structs and emit the fixed
// Korean message layout the operation runs on.
package summary

import (
	"fmt"
	"strings"
	"time"

	"kpideck/internal/aggregate"
	"kpideck/internal/feed"
	"kpideck/internal/kst"
	"kpideck/internal/report"
)

const (
	headerRule  = 40
	sectionRule = 30
)

var horizonLabels = map[int]string{
	0:  "당일",
	3:  "3일",
	7:  "7일",
	21: "21일",
	30: "30일",
	60: "60일",
}

func koreanDate(t time.Time) string {
	t = t.In(kst.Zone)
	return fmt.Sprintf("%d년 %d월 %d일", t.Year(), int(t.Month()), t.Day())
}

func header(b *strings.Builder, title string, now time.Time) {
	fmt.Fprintf(b, "%s (%s)\n", title, koreanDate(now))
	b.WriteString(strings.Repeat("=", headerRule) + "\n\n")
}

func section(b *strings.Builder, title string) {
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("-", sectionRule) + "\n")
}

// DailyInput bundles everything the daily digest reports on.
type DailyInput struct {
	Performance  *feed.PerformanceDTO
	Target       int64
	ProgressRate float64
	Coverage     *report.CoverageResult
	Activity     *report.ActivityResult
	Application  *report.ApplicationResult
	Defense      *report.DefenseResult
}

// BuildDaily renders the daily KPI digest. Sections without data are
// rendered with zeros, matching an untouched dashboard.
func BuildDaily(in DailyInput, now time.Time) string {
	perf := in.Performance
	if perf == nil {
		perf = &feed.PerformanceDTO{}
	}
	cov := in.Coverage
	if cov == nil {
		cov = &report.CoverageResult{}
	}
	act := in.Activity
	if act == nil {
		act = &report.ActivityResult{}
	}
	app := in.Application
	if app == nil {
		app = &report.ApplicationResult{}
	}
	def := in.Defense
	if def == nil {
		def = &report.DefenseResult{}
	}

	var b strings.Builder
	header(&b, "📊 Daily KPI 요약", now)

	section(&b, "🏆 성과 요약")
	total := perf.Total
	if total == 0 {
		total = perf.Apply.Amount + perf.Defense.Amount
	}
	fmt.Fprintf(&b, "• 신청전환 성공: %s (%d건)\n", FormatEok(perf.Apply.Amount), perf.Apply.Count)
	fmt.Fprintf(&b, "• 취소방어 성공: %s (%d건)\n", FormatEok(perf.Defense.Amount), perf.Defense.Count)
	fmt.Fprintf(&b, "• 합계: %s\n", FormatEok(total))
	target := "미설정"
	if in.Target > 0 {
		target = FormatEok(in.Target)
	}
	fmt.Fprintf(&b, "• 목표: %s / 진행률: %s\n\n", target, FormatPercent(in.ProgressRate))

	section(&b, "📌 커버리지 현황")
	fmt.Fprintf(&b, "• 건수 커버리지: %s\n", FormatPercent(cov.CountRate))
	fmt.Fprintf(&b, "  - 전환 성공: %s건 / 컨택 진행: %s건\n", FormatNumber(cov.SuccessCount), FormatNumber(cov.ContactCount))
	fmt.Fprintf(&b, "• 금액 커버리지: %s\n", FormatPercent(cov.AmountRate))
	fmt.Fprintf(&b, "  - 전환 성공: %s / 컨택 진행: %s\n\n", FormatEok(cov.SuccessAmount), FormatEok(cov.ContactAmount))

	section(&b, "📌 활동수 현황")
	fmt.Fprintf(&b, "• 신청 전환 활동수\n")
	fmt.Fprintf(&b, "  - 총 활동: %s / 부가활동: %s\n",
		FormatNumber(act.ApplyTotal), FormatNumber(act.ApplyExtra))
	fmt.Fprintf(&b, "• 취소 방어 활동수\n")
	fmt.Fprintf(&b, "  - 총 활동: %s / 부가활동: %s\n\n",
		FormatNumber(act.DefenseTotal), FormatNumber(act.DefenseExtra))

	section(&b, "📌 총조회대비 신청전환")
	fmt.Fprintf(&b, "• 총조회 대비 전체 신청률: %s\n", FormatPercent(app.TotalApplyRate))
	fmt.Fprintf(&b, "  - 총조회: %s / 조회 신청: %s\n", FormatEok(app.TotalView), FormatEok(app.TotalApply))
	fmt.Fprintf(&b, "• 총조회 대비 전환 성공률: %s\n", FormatPercent(app.ApplySuccessRate))
	fmt.Fprintf(&b, "  - 총조회: %s / 전환 성공: %s\n\n", FormatEok(app.TotalView), FormatEok(app.ApplyConvert))

	section(&b, "📌 총검토대비 취소방어")
	fmt.Fprintf(&b, "• 전체취소 대비 검토완료율: %s\n", FormatPercent(def.ReviewRate))
	fmt.Fprintf(&b, "  - 전체취소: %s / 검토완료: %s\n", FormatEok(def.CancelRequest), FormatEok(def.CancelAvailable))
	fmt.Fprintf(&b, "• 검토완료 대비 방어 성공률: %s\n", FormatPercent(def.DefenseRate))
	fmt.Fprintf(&b, "  - 검토완료: %s / 취소방어 성공: %s\n", FormatEok(def.CancelAvailable), FormatEok(def.CancelSuccess))

	return b.String()
}

// BuildPayment renders the weekly payment digest.
func BuildPayment(monthly aggregate.MonthlyPayment, weekly aggregate.WeeklyConversion, now time.Time) string {
	var b strings.Builder
	header(&b, "💳 결제파트 요약", now)

	section(&b, fmt.Sprintf("📌 %s 결제금액", monthly.Month))
	fmt.Fprintf(&b, "• 결제금액: %s (%d건)\n\n", FormatEok(monthly.Amount), monthly.Count)

	section(&b, fmt.Sprintf("📌 주차별 결제 KPI (%s)", weekly.Label))
	fmt.Fprintf(&b, "• 환급 완료: %d건 / %s\n", weekly.ReferenceCount, FormatEok(weekly.ReferenceAmount))
	for _, h := range weekly.Horizons {
		switch h.Horizon {
		case 0:
			fmt.Fprintf(&b, "• 당일 결제: %d건 (%s)\n", h.Count, FormatPercent(h.CountRate))
		case 30:
			fmt.Fprintf(&b, "• 30일이내 결제: %d건 (%s)\n", h.Count, FormatPercent(h.CountRate))
		}
	}
	b.WriteString("\n")

	section(&b, "📌 기간별 결제율")
	for _, h := range weekly.Horizons {
		fmt.Fprintf(&b, "• %s이내: 건수 %s / 금액 %s\n",
			horizonLabels[h.Horizon], FormatPercent(h.CountRate), FormatPercent(h.AmountRate))
	}

	return b.String()
}

// BuildCollection renders the collection digest: the month KPI pair and
// one line per yearly-tracking month that saw transfers.
func BuildCollection(month aggregate.CollectionMonth, year int, rows []aggregate.MonthTracking, now time.Time) string {
	var b strings.Builder
	header(&b, "⚖️ 추심 요약", now)

	section(&b, fmt.Sprintf("📌 추심 KPI (%s)", month.Month))
	fmt.Fprintf(&b, "• 환급완료: %s (%d건)\n", FormatEok(month.RefundAmount), month.RefundCount)
	fmt.Fprintf(&b, "• 이관총액: %s (%d건)\n", FormatEok(month.TransferAmount), month.TransferCount)
	fmt.Fprintf(&b, "• 이관비율: %s\n\n", FormatPercent(month.Ratio))

	section(&b, fmt.Sprintf("📌 연간 이관 결제 추적 (%d년)", year))
	for _, row := range rows {
		if row.TransferCount == 0 {
			continue
		}
		fmt.Fprintf(&b, "• %d월: 이관 %s (%d건) / 성사 %s (%d건, %s)\n",
			row.Month,
			FormatEokShort(row.TransferAmount), row.TransferCount,
			FormatEokShort(row.PaidAmount), row.PaidCount, FormatPercent(row.PaidRate))
	}

	return b.String()
}
