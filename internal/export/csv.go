// Package export renders deal subsets as CSV for spreadsheet use. Files
// start with a UTF-8 BOM so Excel decodes the Korean headers correctly.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"kpideck/internal/deal"
	"kpideck/internal/kst"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// exportHorizons are the Y/N membership columns of the weekly raw file,
// matching the conversion table's horizons.
var exportHorizons = []int{0, 3, 7, 21, 30, 60}

func csvDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(kst.Zone).Format("2006-01-02")
}

func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

// WriteWeeklyRaw writes the week's reference deals with one Y/N column
// per conversion horizon: a deal is marked Y for horizon N when its
// notice-to-won day difference falls within days 1..N of the notice.
func WriteWeeklyRaw(w io.Writer, deals []deal.Deal) error {
	if _, err := w.Write(bom); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"거래ID", "고객명", "금액", "최초결제안내일", "성사일", "일수차이", "결제여부"}
	for _, h := range exportHorizons {
		if h == 0 {
			header = append(header, "당일결제")
		} else {
			header = append(header, fmt.Sprintf("%d일이내", h))
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, d := range deals {
		paid := d.WonTime != nil
		diff := 0
		if paid && d.FirstPaymentNotice != nil {
			diff = kst.DayDiff(*d.FirstPaymentNotice, *d.WonTime)
		}

		row := []string{
			strconv.FormatInt(d.ID, 10),
			d.Name,
			strconv.FormatInt(d.Value, 10),
			csvDate(d.FirstPaymentNotice),
			csvDate(d.WonTime),
		}
		if paid && d.FirstPaymentNotice != nil {
			row = append(row, strconv.Itoa(diff))
		} else {
			row = append(row, "")
		}
		row = append(row, yn(paid))

		for _, h := range exportHorizons {
			in := paid && d.FirstPaymentNotice != nil
			if in {
				if h == 0 {
					in = diff == 0
				} else {
					in = diff >= 0 && diff <= h-1
				}
			}
			row = append(row, yn(in))
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteMonthlyRaw writes the month's paid deals.
func WriteMonthlyRaw(w io.Writer, deals []deal.Deal) error {
	if _, err := w.Write(bom); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"거래ID", "고객명", "금액", "성사일", "최초결제안내일"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, d := range deals {
		row := []string{
			strconv.FormatInt(d.ID, 10),
			d.Name,
			strconv.FormatInt(d.Value, 10),
			csvDate(d.WonTime),
			csvDate(d.FirstPaymentNotice),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
