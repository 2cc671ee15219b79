package notify

import "sync"

// Notifier shows transient messages to the user.
type Notifier interface {
	Info(msg string)
	Error(msg string, err error)
}

type discard struct{}

func (discard) Info(string)         {}
func (discard) Error(string, error) {}

// Discard drops every notice.
var Discard Notifier = discard{}

type Notice struct {
	Msg string
	Err error
}

// Recorder keeps notices in order and streams them to watchers.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
	watch   *Broadcaster[Notice]
}

func NewRecorder() *Recorder {
	return &Recorder{watch: NewBroadcaster[Notice]()}
}

func (r *Recorder) Info(msg string) {
	r.record(Notice{Msg: msg})
}

func (r *Recorder) Error(msg string, err error) {
	r.record(Notice{Msg: msg, Err: err})
}

func (r *Recorder) record(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
	r.watch.Broadcast(n)
}

// Watch streams notices recorded after the call.
func (r *Recorder) Watch(buffer int) *Subscriber[Notice] {
	return r.watch.Subscribe(buffer)
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}
