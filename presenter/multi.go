package presenter

import "github.com/moyoez/diary-upload-go/transfer"

// Multi forwards each effect to every presenter in order.
type Multi []transfer.Presenter

func (m Multi) SetVisible(visible bool) {
	for _, p := range m {
		p.SetVisible(visible)
	}
}

func (m Multi) SetValue(percent float64) {
	for _, p := range m {
		p.SetValue(percent)
	}
}

func (m Multi) SetText(text string) {
	for _, p := range m {
		p.SetText(text)
	}
}
