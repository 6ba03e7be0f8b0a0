package presenter

import (
	"github.com/charmbracelet/log"
)

// Log writes presenter effects to a charmbracelet logger. It is what the
// CLI shows while a one-shot upload runs.
type Log struct {
	logger  *log.Logger
	prefix  string
	visible bool
}

func NewLog(logger *log.Logger, fileName string) *Log {
	return &Log{logger: logger, prefix: fileName}
}

func (p *Log) SetVisible(visible bool) {
	p.visible = visible
	if !visible {
		p.logger.Debug("progress hidden", "file", p.prefix)
	}
}

func (p *Log) SetValue(percent float64) {
	if p.visible {
		p.logger.Debug("progress", "file", p.prefix, "value", percent)
	}
}

func (p *Log) SetText(text string) {
	p.logger.Info(text, "file", p.prefix)
}
