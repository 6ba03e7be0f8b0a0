package transfer

// Presenter is the passive surface a Session reports to: a progress
// indicator and a status label. A Session only writes to it.
type Presenter interface {
	SetVisible(visible bool)
	SetValue(percent float64)
	SetText(text string)
}

type nopPresenter struct{}

func (nopPresenter) SetVisible(bool)  {}
func (nopPresenter) SetValue(float64) {}
func (nopPresenter) SetText(string)   {}
