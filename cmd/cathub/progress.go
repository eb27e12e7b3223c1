package main

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"cathub/internal/pipeline"
)

// progressObserver drives a terminal progress bar from pipeline callbacks.
type progressObserver struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func newProgressObserver(out io.Writer) *progressObserver {
	return &progressObserver{out: out}
}

func (p *progressObserver) FileStarted(item pipeline.Item, index, total int) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("Syncing media"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	p.bar.Describe(item.Source)
}

func (p *progressObserver) FileFinished(pipeline.Outcome) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *progressObserver) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
