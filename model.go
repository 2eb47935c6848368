package carousel

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/teranos/carousel/clock"
	"github.com/teranos/carousel/trip"
)

// frameInterval is how often the progress bar is redrawn.
const frameInterval = 100 * time.Millisecond

// ReloadMsg replaces the deck. The running controller is closed and a fresh one
// is mounted at slide 0, keeping the pointer's hover state.
type ReloadMsg struct {
	Deck Deck
}

// Option configures a Model.
type Option func(*Model)

// WithConfig sets timing, gesture and geometry parameters.
func WithConfig(cfg Config) Option {
	return func(m *Model) { m.cfg = cfg }
}

// WithClock replaces the system clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(m *Model) { m.clock = c }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithKeyMap overrides the key bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// Model is the bubbletea host of one carousel. Run it with mouse all-motion and
// focus reporting enabled so hover, drag and blur reach the arbiter.
type Model struct {
	cfg    Config
	deck   Deck
	clock  clock.Clock
	logger *zap.Logger
	keys   KeyMap

	sched    *Scheduler
	ctrl     *Controller
	arb      *Arbiter
	painter  *painter
	progress *progressTracker
	trips    *trip.Handler

	layout      Layout
	frame       TimerID
	inContainer bool
	inContent   bool
	started     bool
}

// New mounts a carousel over deck.
func New(deck Deck, opts ...Option) (*Model, error) {
	m := &Model{
		cfg:    DefaultConfig(),
		deck:   deck,
		keys:   DefaultKeyMap(),
		layout: DefaultLayout(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.clock == nil {
		m.clock = clock.System()
	}

	m.sched = NewScheduler(m.clock)
	ctrl, err := NewController(deck, m.sched, m.cfg, m.logger)
	if err != nil {
		m.sched.Close()
		return nil, err
	}
	m.ctrl = ctrl
	m.arb = NewArbiter(ctrl, m.cfg, m.logger)
	m.painter = newPainter(m.keys, m.cfg.TiltMaxDegrees)
	m.progress = newProgressTracker(m.cfg.Interval)
	m.trips = trip.NewHandler("carousel", trip.DefaultPolicy())
	return m, nil
}

// Init starts autoplay and the redraw ticker, and begins draining the timer mailbox.
func (m *Model) Init() tea.Cmd {
	if !m.started {
		m.started = true
		m.ctrl.Start()
		m.frame = m.sched.Every(frameInterval, TagFrame)
		m.logger.Info("carousel mounted",
			zap.Int("slides", m.deck.Len()),
			zap.Duration("interval", m.cfg.Interval),
			zap.String("pause_mode", string(m.cfg.PauseMode)))
	}
	return m.sched.Listen()
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.observe()
	defer m.observe()

	switch msg := msg.(type) {
	case Fired:
		if msg.Tag != TagFrame {
			m.ctrl.HandleTimer(msg)
		}
		return m, m.sched.Listen()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.painter.showHelp = !m.painter.showHelp
		case key.Matches(msg, m.keys.Prev):
			_, err := m.arb.Key(KeyLeft)
			m.record(err)
		case key.Matches(msg, m.keys.Next):
			_, err := m.arb.Key(KeyRight)
			m.record(err)
		}

	case tea.MouseMsg:
		m.mouse(msg)

	case tea.BlurMsg:
		m.arb.TouchCancel()
		m.setContent(false)
		m.setContainer(false)

	case tea.WindowSizeMsg:
		m.layout = Layout{Width: msg.Width, Height: msg.Height}

	case ReloadMsg:
		m.remount(msg.Deck)
	}

	return m, nil
}

func (m *Model) mouse(msg tea.MouseMsg) {
	cell := Point{X: float64(msg.X), Y: float64(msg.Y)}
	px := m.toPixels(cell)
	sc := m.Scene()

	inContainer := sc.Container.Contains(cell)
	m.setContainer(inContainer)
	m.setContent(inContainer && sc.Content.Contains(cell))
	if m.inContent {
		region := sc.Content.Scale(float64(m.cfg.CellWidth), float64(m.cfg.CellHeight))
		m.arb.PointerMoveContent(px, region)
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if c, ok := sc.HitTest(cell); ok {
			m.record(m.arb.Click(c.Control))
			return
		}
		m.arb.TouchStart(px.X)
	case tea.MouseActionMotion:
		m.arb.TouchMove()
	case tea.MouseActionRelease:
		_, err := m.arb.TouchEnd(px.X)
		m.record(err)
	}
}

// toPixels maps a cell to the pixel at its centre.
func (m *Model) toPixels(cell Point) Point {
	return Point{
		X: (cell.X + 0.5) * float64(m.cfg.CellWidth),
		Y: (cell.Y + 0.5) * float64(m.cfg.CellHeight),
	}
}

func (m *Model) setContainer(in bool) {
	if in == m.inContainer {
		return
	}
	m.inContainer = in
	if in {
		m.arb.PointerEnterContainer()
	} else {
		m.arb.PointerLeaveContainer()
	}
}

func (m *Model) setContent(in bool) {
	if in == m.inContent {
		return
	}
	m.inContent = in
	if in {
		m.arb.PointerEnterContent()
	} else {
		m.arb.PointerLeaveContent()
	}
}

func (m *Model) remount(deck Deck) {
	ctrl, err := NewController(deck, m.sched, m.cfg, m.logger)
	if err != nil {
		m.record(trip.Wrap(trip.TypeConfig, err, trip.Context{"op": "reload"}))
		m.logger.Warn("deck reload refused", zap.Error(err))
		return
	}

	m.ctrl.Close()
	m.deck = deck
	m.ctrl = ctrl
	m.arb = NewArbiter(ctrl, m.cfg, m.logger)
	m.progress = newProgressTracker(m.cfg.Interval)
	if m.inContainer {
		m.arb.PointerEnterContainer()
	}
	if m.inContent {
		m.arb.PointerEnterContent()
	}
	if m.started {
		m.ctrl.Start()
	}
	m.logger.Info("deck reloaded", zap.Int("slides", deck.Len()))
}

func (m *Model) record(err error) {
	if err == nil {
		return
	}
	var t *trip.Trip
	if !errors.As(err, &t) {
		t = trip.Wrap(trip.TypePrecondition, err, nil)
	}
	m.trips.Record(t)
	m.logger.Debug("command rejected", zap.Error(err))
}

func (m *Model) observe() {
	snap := m.ctrl.Snapshot()
	m.progress.observe(m.clock.Now(), snap.Epoch, snap.Paused || snap.Closed)
}

// View renders the carousel.
func (m *Model) View() string {
	if m.sched.Closed() {
		return ""
	}
	return m.painter.paint(m.Scene())
}

// Scene returns the current visual state.
func (m *Model) Scene() Scene {
	return BuildScene(m.ctrl.Snapshot(), m.deck, m.layout, m.progress.fraction())
}

// Snapshot returns the current rotation state.
func (m *Model) Snapshot() Snapshot { return m.ctrl.Snapshot() }

// Trips returns the handler collecting rejected commands.
func (m *Model) Trips() *trip.Handler { return m.trips }

// Close releases every timer. It is safe to call more than once.
func (m *Model) Close() {
	if m.sched.Closed() {
		return
	}
	m.ctrl.Close()
	m.sched.Close()
	m.logger.Info("carousel closed", zap.String("summary", m.trips.Summary()))
}

// CurrentSlide returns the active slide index.
func (m *Model) CurrentSlide() int { return m.ctrl.Index() }

// CurrentMode is "playing", "paused" or "closed".
func (m *Model) CurrentMode() string {
	snap := m.ctrl.Snapshot()
	switch {
	case snap.Closed:
		return "closed"
	case snap.Paused:
		return "paused"
	default:
		return "playing"
	}
}

// CheckCondition evaluates a named state predicate.
func (m *Model) CheckCondition(name string) bool {
	snap := m.ctrl.Snapshot()
	switch name {
	case "playing":
		return !snap.Paused && !snap.Closed
	case "paused":
		return snap.Paused
	case "hover":
		return snap.Reasons&PauseHover != 0
	case "hover_content":
		return snap.HoveringContent
	case "manual_pause":
		return snap.Reasons&PauseManual != 0
	case "touching":
		return m.arb.Touching()
	case "closed":
		return snap.Closed
	default:
		return false
	}
}

// Still renders slide index of deck without starting any timers.
func Still(deck Deck, cfg Config, index int, layout Layout) (string, error) {
	sched := NewScheduler(nil)
	defer sched.Close()

	ctrl, err := NewController(deck, sched, cfg, nil)
	if err != nil {
		return "", err
	}
	if err := ctrl.JumpTo(index); err != nil {
		return "", err
	}
	p := newPainter(DefaultKeyMap(), cfg.TiltMaxDegrees)
	p.showHelp = false
	return p.paint(BuildScene(ctrl.Snapshot(), deck, layout, 0)), nil
}
