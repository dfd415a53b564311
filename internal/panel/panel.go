package panel

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"garden_panel/internal/duration"
	"garden_panel/internal/logger"
	"garden_panel/internal/models"
	"garden_panel/internal/templates"
	"garden_panel/internal/view"
)

// NotScheduled is shown in the next-run label when no run is scheduled.
const NotScheduled = "N"

// Sub-region suffixes of the zone template: zone_<id>-<part>.
const (
	partName    = "name"
	partState   = "state"
	partRuntime = "runtime"
	partNextRun = "next_run"
	partActions = "actions"
)

var (
	ErrNoCommand = errors.New("zone command not configured")
	ErrNoAction  = errors.New("no action bound at index")
)

// MaterializeError reports a zone template that did not yield the expected
// elements after insertion.
type MaterializeError struct {
	ZoneID  models.ZoneID
	Element string
}

func (e *MaterializeError) Error() string {
	return fmt.Sprintf("zone %s: element %q not found after render", e.ZoneID, e.Element)
}

// Renderer resolves a named template. *templates.Cache implements it.
type Renderer interface {
	Render(name string, data any) (string, bool)
}

// Commands are the remote operations a panel may request. The owner injects
// them at construction; each is already bound to the panel's zone.
type Commands struct {
	Start func(ctx context.Context, runLength time.Duration) error
	Stop  func(ctx context.Context) error
}

// Action is a handler bound to one rendered button.
type Action func(ctx context.Context) error

// Option configures a Panel.
type Option func(*Panel)

// WithClock overrides the time source used for the next-run label.
func WithClock(now func() time.Time) Option {
	return func(p *Panel) { p.now = now }
}

// WithLogger sets the panel logger.
func WithLogger(log *logger.Logger) Option {
	return func(p *Panel) { p.log = logger.OrNop(log) }
}

// Panel owns one zone record and the region it renders into.
type Panel struct {
	id        models.ZoneID
	record    models.ZoneRecord
	container *view.Container
	templates Renderer
	commands  Commands
	now       func() time.Time
	log       *logger.Logger

	element     *view.Element
	ctrlName    *view.Element
	ctrlState   *view.Element
	ctrlRuntime *view.Element
	ctrlNextRun *view.Element
	ctrlActions *view.Element

	actions []Action
}

// New creates a panel holding the default record for id. Nothing is
// rendered until Update or Render is called.
func New(id models.ZoneID, container *view.Container, tmpl Renderer, commands Commands, opts ...Option) *Panel {
	p := &Panel{
		id:        id,
		record:    models.NewZoneRecord(id),
		container: container,
		templates: tmpl,
		commands:  commands,
		now:       time.Now,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ID returns the zone id. It never changes.
func (p *Panel) ID() models.ZoneID { return p.id }

// Name returns the current zone name.
func (p *Panel) Name() string { return p.record.Name }

// Record returns a copy of the current zone record.
func (p *Panel) Record() models.ZoneRecord { return p.record.Clone() }

// Update replaces every field of the record except the id, then renders.
// Render failures are logged, not returned.
func (p *Panel) Update(rec models.ZoneRecord) *Panel {
	rec = rec.Clone()
	rec.ID = p.id
	p.record = rec
	_ = p.Render()
	return p
}

// Render redraws the panel from its record. The region is created on the
// first successful call and reused afterwards.
func (p *Panel) Render() error {
	if err := p.ensureElement(); err != nil {
		p.log.Errorw("zone_render_failed", "zone", p.id, "err", err)
		return err
	}

	p.ctrlState.SetChecked(p.record.IsOn)
	p.ctrlRuntime.SetText(duration.Format(p.record.Runtime))

	if p.record.NextRun != nil {
		left := p.record.NextRun.Sub(p.now())
		p.ctrlNextRun.SetText(duration.FormatMillis(floorMillis(left)))
	} else {
		p.ctrlNextRun.SetText(NotScheduled)
	}

	if p.ctrlName != nil {
		p.ctrlName.SetText(p.record.Name)
	}

	var err error
	if !p.record.IsRunning {
		err = p.renderRunButtons()
	} else {
		err = p.renderStopButton()
	}
	if err != nil {
		p.log.Errorw("zone_render_failed", "zone", p.id, "err", err)
	}
	return err
}

// floorMillis converts d to whole milliseconds rounding toward negative
// infinity, so a time just past reads as -1s and not 0s.
func floorMillis(d time.Duration) int64 {
	ms := int64(d / time.Millisecond)
	if d%time.Millisecond < 0 {
		ms--
	}
	return ms
}

func (p *Panel) elementID(part string) string {
	if part == "" {
		return "zone_" + string(p.id)
	}
	return "zone_" + string(p.id) + "-" + part
}

func (p *Panel) ensureElement() error {
	baseID := p.elementID("")

	// regions are direct children; a nested part id such as zone_1-state
	// must not be taken for the region of zone "1-state"
	el := p.container.Child(baseID)
	if el == nil {
		fragment, _ := p.templates.Render(templates.Zone, p)
		if err := p.container.Append(fragment); err != nil {
			return fmt.Errorf("zone %s: %w", p.id, err)
		}
		el = p.container.Child(baseID)
	}
	if el == nil {
		p.element = nil
		return &MaterializeError{ZoneID: p.id, Element: baseID}
	}
	if p.element != nil {
		return nil
	}

	var missing string
	sub := func(part string) *view.Element {
		found := el.Find(p.elementID(part))
		if found == nil && missing == "" {
			missing = p.elementID(part)
		}
		return found
	}
	state, runtime, nextRun, actions := sub(partState), sub(partRuntime), sub(partNextRun), sub(partActions)
	if missing != "" {
		return &MaterializeError{ZoneID: p.id, Element: missing}
	}

	p.ctrlState, p.ctrlRuntime, p.ctrlNextRun, p.ctrlActions = state, runtime, nextRun, actions
	p.ctrlName = el.Find(p.elementID(partName))
	p.element = el
	return nil
}

type runButton struct {
	Runtime string
}

func (p *Panel) renderRunButtons() error {
	var sb strings.Builder
	for _, label := range p.record.RunTemplate {
		out, _ := p.templates.Render(templates.RunButton, runButton{Runtime: label})
		sb.WriteString(out)
	}
	if err := p.ctrlActions.SetInnerHTML(sb.String()); err != nil {
		return err
	}

	buttons := p.ctrlActions.Buttons()
	p.actions = make([]Action, len(buttons))
	for i, b := range buttons {
		runLength := ParseRunLength(b.Attr("data-runtime"))
		p.bind(i, b, func(ctx context.Context) error {
			p.log.Infow("zone_start_requested", "zone", p.id, "run_length", runLength)
			return p.DoStart(ctx, runLength)
		})
	}
	return nil
}

func (p *Panel) renderStopButton() error {
	out, _ := p.templates.Render(templates.StopButton, p)
	if err := p.ctrlActions.SetInnerHTML(out); err != nil {
		return err
	}

	buttons := p.ctrlActions.Buttons()
	p.actions = make([]Action, len(buttons))
	for i, b := range buttons {
		p.bind(i, b, func(ctx context.Context) error {
			p.log.Infow("zone_stop_requested", "zone", p.id)
			return p.DoStop(ctx)
		})
	}
	return nil
}

func (p *Panel) bind(i int, b *view.Element, action Action) {
	b.SetAttr("data-zone", string(p.id))
	b.SetAttr("data-action", strconv.Itoa(i))
	p.actions[i] = action
}

// ParseRunLength reads a quick-start label such as "10m". Labels that are
// not Go durations, or are not positive, yield 0, meaning the server default.
func ParseRunLength(label string) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(label))
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// Action returns the handler bound to the button at index by the last render.
func (p *Panel) Action(index int) (Action, bool) {
	if index < 0 || index >= len(p.actions) {
		return nil, false
	}
	return p.actions[index], true
}

// Press runs the handler bound to the button at index.
func (p *Panel) Press(ctx context.Context, index int) error {
	action, ok := p.Action(index)
	if !ok {
		return fmt.Errorf("%w %d for zone %s", ErrNoAction, index, p.id)
	}
	return action(ctx)
}

// DoStart asks the server to run the zone. Local state is left untouched;
// the next feed reports the outcome.
func (p *Panel) DoStart(ctx context.Context, runLength time.Duration) error {
	if p.commands.Start == nil {
		return ErrNoCommand
	}
	return p.commands.Start(ctx, runLength)
}

// DoStop asks the server to stop the zone.
func (p *Panel) DoStop(ctx context.Context) error {
	if p.commands.Stop == nil {
		return ErrNoCommand
	}
	return p.commands.Stop(ctx)
}
