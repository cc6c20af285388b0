package window

// CloseFigureWindow acts as the user clicking the close button of the named
// figure window.
func (d *Driver) CloseFigureWindow(name string) {
	d.mu.Lock()
	fw, ok := d.figures[name]
	d.mu.Unlock()
	if ok {
		fw.inner.CloseIntercept()
	}
}
