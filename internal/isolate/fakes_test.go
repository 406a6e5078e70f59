package isolate

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	originalSession Handle = 1
	foreignSession  Handle = 99
)

type fakeSessions struct {
	mu sync.Mutex

	next      Handle
	active    Handle
	bound     Handle
	names     map[Handle]string
	created   []Handle
	destroyed map[Handle]int
	opened    int
	released  int
	misuse    []string

	createErr   error
	bindErr     error
	nameErr     error
	namePanics  bool
	threadLies  bool
	onDestroy   func(h Handle)
	imeDisabled int
	pumpedCount int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		next:      10,
		active:    originalSession,
		bound:     originalSession,
		names:     map[Handle]string{originalSession: "Default", foreignSession: "Winlogon"},
		destroyed: map[Handle]int{},
	}
}

func (f *fakeSessions) checkAlive(op string, h Handle) {
	if f.destroyed[h] > 0 {
		f.misuse = append(f.misuse, op+" on destroyed session")
	}
}

func (f *fakeSessions) Create(name string) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	h := f.next
	f.next++
	f.names[h] = name
	f.created = append(f.created, h)
	return h, nil
}

func (f *fakeSessions) BindThread(h Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkAlive("bind", h)
	if f.bindErr != nil && h != originalSession {
		return f.bindErr
	}
	f.bound = h
	return nil
}

func (f *fakeSessions) ThreadSession() (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.threadLies {
		return originalSession, nil
	}
	return f.bound, nil
}

func (f *fakeSessions) ActiveSession() (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened++
	return f.active, nil
}

func (f *fakeSessions) Release(h Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
	return nil
}

func (f *fakeSessions) Switch(h Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkAlive("switch", h)
	f.active = h
	return nil
}

func (f *fakeSessions) Destroy(h Handle) error {
	f.mu.Lock()
	f.checkAlive("destroy", h)
	f.destroyed[h]++
	hook := f.onDestroy
	f.mu.Unlock()
	if hook != nil {
		hook(h)
	}
	return nil
}

func (f *fakeSessions) NameContains(h Handle, substr string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.namePanics {
		panic("name query exploded")
	}
	if f.nameErr != nil {
		return false, f.nameErr
	}
	f.checkAlive("name", h)
	return strings.Contains(f.names[h], substr), nil
}

func (f *fakeSessions) DisableIME() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imeDisabled++
	return errors.New("no ime")
}

func (f *fakeSessions) PumpMessages() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pumpedCount++
}

func (f *fakeSessions) setActive(h Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = h
}

func (f *fakeSessions) Active() Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeSessions) Created() []Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Handle(nil), f.created...)
}

func (f *fakeSessions) Destroyed(h Handle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.destroyed[h]
}

// InputHandles returns how many ActiveSession handles were opened and released.
func (f *fakeSessions) InputHandles() (opened, released int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened, f.released
}

func (f *fakeSessions) Misuse() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.misuse...)
}

type fakeSurface struct {
	closed atomic.Int32
}

func (s *fakeSurface) Close() error {
	s.closed.Add(1)
	return nil
}

type fakeBackdrops struct {
	mu       sync.Mutex
	surfaces []*fakeSurface
	err      error
}

func (b *fakeBackdrops) Show(img image.Image) (Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	s := &fakeSurface{}
	b.surfaces = append(b.surfaces, s)
	return s, nil
}

func (b *fakeBackdrops) Surfaces() []*fakeSurface {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*fakeSurface(nil), b.surfaces...)
}

type fakeScreen struct{}

func (fakeScreen) Capture() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	return img, nil
}

type fakeNotifier struct {
	warnings atomic.Int32
	cues     atomic.Int32
	lastText atomic.Value
}

func (n *fakeNotifier) Warn(title, text string) {
	n.lastText.Store(text)
	n.warnings.Add(1)
}

func (n *fakeNotifier) PlayCue() error {
	n.cues.Add(1)
	return nil
}

type fakeDialog struct {
	outcome     Outcome
	payload     string
	shown       chan struct{}
	release     chan struct{}
	panicOnShow bool

	owner     Surface
	destroyed atomic.Int32
}

func (d *fakeDialog) ShowModal(owner Surface) Outcome {
	d.owner = owner
	if d.shown != nil {
		close(d.shown)
	}
	if d.panicOnShow {
		panic("dialog exploded")
	}
	if d.release != nil {
		<-d.release
	}
	return d.outcome
}

func (d *fakeDialog) Destroy() {
	d.destroyed.Add(1)
}

// dialogFactory hands out dialogs in order and records construct calls.
type dialogFactory struct {
	mu      sync.Mutex
	calls   int
	params  []string
	dialogs []*fakeDialog
	errs    []error
	inScope func() bool
	scoped  []bool
}

func (f *dialogFactory) construct(param string) (Dialog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	f.params = append(f.params, param)
	if f.inScope != nil {
		f.scoped = append(f.scoped, f.inScope())
	}
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.dialogs) {
		return f.dialogs[i], nil
	}
	return &fakeDialog{outcome: OutcomeOK, payload: param}, nil
}

func (f *dialogFactory) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func payloadOf(d Dialog) string {
	return d.(*fakeDialog).payload
}

type fakeGuard struct {
	mu     sync.Mutex
	inside bool
	calls  int
	clear  bool
}

func (g *fakeGuard) Protect(fn func()) bool {
	g.mu.Lock()
	g.inside = true
	g.calls++
	g.mu.Unlock()

	fn()

	g.mu.Lock()
	g.inside = false
	g.mu.Unlock()
	return g.clear
}

func (g *fakeGuard) Inside() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inside
}

type reportSink struct {
	mu      sync.Mutex
	reports []Report
}

func (s *reportSink) Observe(r Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
}

func (s *reportSink) Last() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.reports) == 0 {
		return Report{}
	}
	return s.reports[len(s.reports)-1]
}
