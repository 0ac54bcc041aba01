package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Bucket counts values within [Lo, Hi].
type Bucket struct {
	Lo    int
	Hi    int
	Count int
}

const (
	defaultBucketCount  = 15
	minBarWidth         = 10
	barChar             = "#"
	axisSeparator       = " | "
	colorBar            = "\x1b[36m"
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

// Buckets groups values in [lo, hi] into at most n equal-width buckets.
// Values outside the range are ignored.
func Buckets(values []int, lo, hi, n int) []Bucket {
	if hi < lo {
		return nil
	}
	if n <= 0 {
		n = defaultBucketCount
	}
	span := hi - lo + 1
	size := (span + n - 1) / n
	buckets := make([]Bucket, 0, n)
	for start := lo; start <= hi; start += size {
		end := start + size - 1
		if end > hi {
			end = hi
		}
		buckets = append(buckets, Bucket{Lo: start, Hi: end})
	}
	for _, v := range values {
		if v < lo || v > hi {
			continue
		}
		buckets[(v-lo)/size].Count++
	}
	return buckets
}

// RenderHistogram prints buckets as horizontal bars sized to width. A width of
// zero uses the terminal width.
func RenderHistogram(w io.Writer, title string, buckets []Bucket, width int, forceColor bool) error {
	if len(buckets) == 0 {
		return nil
	}
	if width <= 0 {
		width = terminalWidth()
	}
	labels := make([]string, len(buckets))
	labelWidth := 0
	maxCount := 0
	for i, b := range buckets {
		labels[i] = fmt.Sprintf("%d-%d", b.Lo, b.Hi)
		if b.Lo == b.Hi {
			labels[i] = fmt.Sprintf("%d", b.Lo)
		}
		if lw := runewidth.StringWidth(labels[i]); lw > labelWidth {
			labelWidth = lw
		}
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	countWidth := len(fmt.Sprintf("%d", maxCount))
	barWidth := BarWidthFor(width, labelWidth, countWidth)
	useColor := shouldUseColor(w, forceColor)

	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for i, b := range buckets {
		n := 0
		if maxCount > 0 {
			n = b.Count * barWidth / maxCount
		}
		if b.Count > 0 && n == 0 {
			n = 1
		}
		bar := strings.Repeat(barChar, n)
		if useColor && n > 0 {
			bar = colorBar + bar + colorReset
		}
		line := padCell(labels[i], labelWidth, true) + axisSeparator + bar
		if _, err := fmt.Fprintf(w, "%s %d\n", line, b.Count); err != nil {
			return err
		}
	}
	return nil
}

// BarWidthFor computes the bar width that fits a line within totalWidth.
func BarWidthFor(totalWidth, labelWidth, countWidth int) int {
	barWidth := totalWidth - labelWidth - runewidth.StringWidth(axisSeparator) - countWidth - 1
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	return barWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
