// Package progress renders download progress on a terminal.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"videocrawl/pkg/validator"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const (
	titleWidth = 30
	barWidth   = 40
)

var (
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))
	sizeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"})
)

// Bar draws a single-line progress bar for one download. It is safe for
// concurrent use.
type Bar struct {
	mu       sync.Mutex
	out      io.Writer
	label    string
	model    progress.Model
	total    int64
	done     int64
	lastDraw time.Time
	interval time.Duration
}

// New creates a bar labelled with title, truncated to keep lines short
func New(out io.Writer, title string) *Bar {
	return &Bar{
		out:      out,
		label:    validator.TruncateTitle(title, titleWidth),
		model:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
		interval: 100 * time.Millisecond,
	}
}

func (b *Bar) Start(total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total = total
	b.draw()
}

func (b *Bar) Progress(done, total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.done = done
	if total > 0 {
		b.total = total
	}
	if done != b.total && time.Since(b.lastDraw) < b.interval {
		return
	}
	b.draw()
}

func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draw()
	fmt.Fprintln(b.out)
}

func (b *Bar) draw() {
	b.lastDraw = time.Now()

	var line strings.Builder
	line.WriteString("\r")
	line.WriteString(labelStyle.Render(b.label))
	line.WriteString(" ")
	if b.total > 0 {
		line.WriteString(b.model.ViewAs(float64(b.done) / float64(b.total)))
		line.WriteString(" ")
		line.WriteString(sizeStyle.Render(formatBytes(b.done) + "/" + formatBytes(b.total)))
	} else {
		line.WriteString(sizeStyle.Render(formatBytes(b.done)))
	}
	io.WriteString(b.out, line.String())
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
