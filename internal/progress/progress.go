package progress

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// ProgressTracker renders a live byte counter for one file on stderr,
// keeping stdout free for checksum lines.
type ProgressTracker struct {
	total     int64
	current   int64
	message   string
	mu        sync.Mutex
	startTime time.Time
	done      chan bool
}

func NewProgress(total int64, message string) *ProgressTracker {
	p := &ProgressTracker{
		total:     total,
		message:   message,
		startTime: time.Now(),
		done:      make(chan bool),
	}
	go p.render()
	return p
}

func (p *ProgressTracker) render() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	spinner := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	frame := 0

	for {
		select {
		case <-p.done:
			p.mu.Lock()
			elapsed := time.Since(p.startTime)
			fmt.Fprintf(os.Stderr, "\r✓ %s (%s, %s)          \n",
				p.message, fmtBytes(p.current), elapsed.Round(time.Millisecond))
			p.mu.Unlock()
			return

		case <-ticker.C:
			p.mu.Lock()
			if p.total > 0 {
				percent := float64(p.current) / float64(p.total) * 100
				fmt.Fprintf(os.Stderr, "\r%s %s [%s/%s] %.0f%%  ",
					spinner[frame%len(spinner)],
					p.message,
					fmtBytes(p.current),
					fmtBytes(p.total),
					percent)
			} else {
				fmt.Fprintf(os.Stderr, "\r%s %s [%s]  ",
					spinner[frame%len(spinner)],
					p.message,
					fmtBytes(p.current))
			}
			p.mu.Unlock()
			frame++
		}
	}
}

// Add records n more processed bytes.
func (p *ProgressTracker) Add(n int64) {
	p.mu.Lock()
	p.current += n
	p.mu.Unlock()
}

func (p *ProgressTracker) Finish() {
	close(p.done)
	time.Sleep(1 * time.Millisecond)
}

func fmtBytes(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
