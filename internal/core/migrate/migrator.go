package migrate

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"djedi-migrate/internal/djedi"
)

// Source is the read side of a migration.
type Source interface {
	Load(ctx context.Context, uri string) (djedi.Node, error)
	URL(uri, action string) string
}

// Destination is the side written to. It is read first to detect nodes that
// are already up to date.
type Destination interface {
	Source
	SaveDraft(ctx context.Context, uri, data string) error
	Publish(ctx context.Context, uri string) error
}

// Options configure a Migrator.
type Options struct {
	Language string
	// DryRun performs all reads but skips draft saving and publishing.
	DryRun   bool
	Observer Observer
	Logger   *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Migrator copies node data from a source to a destination instance, one URI
// at a time.
type Migrator struct {
	src  Source
	dst  Destination
	opts Options
}

// New creates a Migrator.
func New(src Source, dst Destination, opts Options) *Migrator {
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Migrator{src: src, dst: dst, opts: opts}
}

// Run processes uris in order and returns one outcome per URI. Failures of a
// single URI do not stop the batch. When ctx is cancelled the remaining URIs
// are not started and the partial result is returned with Interrupted set.
func (m *Migrator) Run(ctx context.Context, uris []string) *Result {
	res := newResult(m.opts.Language, m.opts.DryRun)
	res.StartedAt = m.opts.Now()
	for i, uri := range uris {
		if ctx.Err() != nil {
			res.Interrupted = true
			m.opts.Logger.Warn("run interrupted", zap.Int("remaining", len(uris)-i))
			break
		}
		m.emit(Event{Kind: EventStarted, Index: i, Total: len(uris), URI: uri})
		started := m.opts.Now()
		out, err := m.process(ctx, i, len(uris), uri)
		out.Index = i
		out.URI = uri
		out.Duration = m.opts.Now().Sub(started)
		res.Add(out)
		m.log(out, err)
		m.emit(Event{Kind: EventFinished, Index: i, Total: len(uris), URI: uri, Outcome: &out})
	}
	res.FinishedAt = m.opts.Now()
	return res
}

func (m *Migrator) process(ctx context.Context, idx, total int, uri string) (Outcome, error) {
	if djedi.IsImage(uri) {
		return Outcome{Category: CategoryImages}, nil
	}
	step := func(kind EventKind, e Event) {
		e.Kind, e.Index, e.Total, e.URI = kind, idx, total, uri
		m.emit(e)
	}

	step(EventRequest, Event{Method: http.MethodGet, URL: m.src.URL(uri, djedi.ActionLoad)})
	src, err := m.src.Load(ctx, uri)
	if err != nil {
		return failed(err, false)
	}
	if src.Data == nil {
		return Outcome{Category: CategoryNull}, nil
	}
	data := *src.Data
	preview := Truncate(data)
	step(EventData, Event{Preview: preview, Size: len(data)})

	step(EventRequest, Event{Method: http.MethodGet, URL: m.dst.URL(uri, djedi.ActionLoad)})
	dst, err := m.dst.Load(ctx, uri)
	if err != nil {
		return failed(err, false)
	}
	if dst.Data != nil && *dst.Data == data {
		step(EventSame, Event{})
		return Outcome{Category: CategorySame}, nil
	}

	step(EventRequest, Event{Method: http.MethodPost, URL: m.dst.URL(uri, djedi.ActionEditor)})
	if m.opts.DryRun {
		step(EventDryRun, Event{})
	} else {
		if err := m.dst.SaveDraft(ctx, uri, data); err != nil {
			return failed(err, false)
		}
		step(EventStatus, Event{StatusCode: http.StatusOK})
	}

	step(EventRequest, Event{Method: http.MethodPut, URL: m.dst.URL(uri, djedi.ActionPublish)})
	if m.opts.DryRun {
		step(EventDryRun, Event{})
	} else {
		if err := m.dst.Publish(ctx, uri); err != nil {
			return failed(err, true)
		}
		step(EventStatus, Event{StatusCode: http.StatusOK})
	}

	return Outcome{Category: CategorySuccess, Preview: preview}, nil
}

func failed(err error, draftSaved bool) (Outcome, error) {
	return Outcome{Category: CategoryFail, Error: err.Error(), DraftSaved: draftSaved}, err
}

func (m *Migrator) emit(e Event) {
	m.opts.Observer.Observe(e)
}

func (m *Migrator) log(o Outcome, err error) {
	fields := []zap.Field{
		zap.Int("index", o.Index),
		zap.String("uri", o.URI),
		zap.String("category", string(o.Category)),
		zap.Duration("duration", o.Duration),
	}
	if o.Category != CategoryFail {
		m.opts.Logger.Debug("uri processed", fields...)
		return
	}
	fields = append(fields, zap.Error(err), zap.Bool("draft_saved", o.DraftSaved))
	var se *djedi.StatusError
	if errors.As(err, &se) {
		fields = append(fields, zap.Int("status", se.Code))
	}
	m.opts.Logger.Warn("uri failed", fields...)
}
