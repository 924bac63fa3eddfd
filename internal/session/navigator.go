package session

// Navigator moves the client to another route.
type Navigator interface {
	Navigate(path string)
}

// Recorder is a Navigator that remembers the last target, for transports
// that answer with a redirect after the flow has finished.
type Recorder struct {
	Target string
}

// Navigate records path.
func (r *Recorder) Navigate(path string) {
	r.Target = path
}
