package printing

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/georgemunganga/lensworks-backend/internal/modules/order"
	"golang.org/x/text/width"
)

// SlipWidth is the paper width of the receipt printer in half-width columns.
const SlipWidth = 42

const (
	nameCols   = 26
	qtyCols    = 7
	amountCols = SlipWidth - nameCols - qtyCols
)

// FormatSlip renders the shipping slip for o. Hangul counts as two columns.
func FormatSlip(o *order.Order, printedAt time.Time) string {
	var b strings.Builder
	heavy := strings.Repeat("=", SlipWidth)
	light := strings.Repeat("-", SlipWidth)

	line := func(s string) { b.WriteString(s + "\n") }

	line(heavy)
	line(center("출 고 명 세 서", SlipWidth))
	line(heavy)
	line("주문번호: " + o.OrderNo)
	line("거래처: " + truncate(o.StoreName, SlipWidth-8))
	line("주문일: " + o.OrderedAt.Format("2006-01-02 15:04"))
	line("출력일: " + printedAt.Format("2006-01-02 15:04"))
	line(light)
	line(padRight("상품명", nameCols) + padLeft("수량", qtyCols) + padLeft("금액", amountCols))
	line(light)
	for _, it := range o.Items {
		line(padRight(truncate(it.ProductName, nameCols-1), nameCols) +
			padLeft(quantity(it.Quantity), qtyCols) +
			padLeft(humanize.Comma(it.TotalPrice), amountCols))
		if rx := prescription(it); rx != "" {
			line("  " + rx)
		}
	}
	line(light)
	line(padRight("합계 수량", SlipWidth-12) + padLeft(quantity(o.TotalQuantity()), 12))
	line(padRight("합계 금액", SlipWidth-16) + padLeft(humanize.Comma(o.TotalAmount)+"원", 16))
	line(heavy)
	return b.String()
}

func prescription(it *order.OrderItem) string {
	var parts []string
	if it.Sph != "" {
		parts = append(parts, "S"+it.Sph)
	}
	if it.Cyl != "" {
		parts = append(parts, "C"+it.Cyl)
	}
	if it.Axis != "" {
		parts = append(parts, "AX"+it.Axis)
	}
	return strings.Join(parts, " ")
}

func quantity(q float64) string { return fmt.Sprintf("%.1f", q) }

// displayWidth counts East Asian wide and fullwidth runes as two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func truncate(s string, cols int) string {
	if displayWidth(s) <= cols {
		return s
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := displayWidth(string(r))
		if used+w > cols-1 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String() + "…"
}

func padRight(s string, cols int) string {
	if pad := cols - displayWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

func padLeft(s string, cols int) string {
	if pad := cols - displayWidth(s); pad > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s
}

func center(s string, cols int) string {
	pad := cols - displayWidth(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad/2) + s
}
