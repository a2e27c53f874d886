package migrate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"djedi-migrate/internal/djedi"
)

// mockNodeAPI implements Destination with in-memory nodes and call counters.
type mockNodeAPI struct {
	name  string
	nodes map[string]*string

	loadErr    func(uri string) error
	saveErr    func(uri string) error
	publishErr func(uri string) error

	loads     []string
	saves     []string
	publishes []string
}

func newMockNodeAPI(name string) *mockNodeAPI {
	return &mockNodeAPI{name: name, nodes: map[string]*string{}}
}

func (m *mockNodeAPI) set(uri, data string) { m.nodes[uri] = &data }

func (m *mockNodeAPI) Load(_ context.Context, uri string) (djedi.Node, error) {
	m.loads = append(m.loads, uri)
	if m.loadErr != nil {
		if err := m.loadErr(uri); err != nil {
			return djedi.Node{}, err
		}
	}
	return djedi.Node{Data: m.nodes[uri]}, nil
}

func (m *mockNodeAPI) URL(uri, action string) string {
	return djedi.NodeURL("https://"+m.name+".example.com/admin", uri, action)
}

func (m *mockNodeAPI) SaveDraft(_ context.Context, uri, data string) error {
	m.saves = append(m.saves, uri)
	if m.saveErr != nil {
		if err := m.saveErr(uri); err != nil {
			return err
		}
	}
	m.set(uri, data)
	return nil
}

func (m *mockNodeAPI) Publish(_ context.Context, uri string) error {
	m.publishes = append(m.publishes, uri)
	if m.publishErr != nil {
		return m.publishErr(uri)
	}
	return nil
}

func (m *mockNodeAPI) requests() int { return len(m.loads) + len(m.saves) + len(m.publishes) }

func rejected(op string, code int) error {
	return &djedi.StatusError{Op: op, Code: code}
}

func run(t *testing.T, src, dst *mockNodeAPI, dryRun bool, uris ...string) *Result {
	t.Helper()
	return New(src, dst, Options{Language: "en", DryRun: dryRun}).Run(context.Background(), uris)
}

func TestImageSkippedWithoutRequests(t *testing.T) {
	src, dst := newMockNodeAPI("from"), newMockNodeAPI("to")
	res := run(t, src, dst, false, "i18n://en@hero/logo.img")

	require.Len(t, res.Get(CategoryImages), 1)
	assert.Zero(t, src.requests())
	assert.Zero(t, dst.requests())
}

func TestNullSourceStopsAfterOneRead(t *testing.T) {
	src, dst := newMockNodeAPI("from"), newMockNodeAPI("to")
	res := run(t, src, dst, false, "i18n://en@a.txt")

	require.Len(t, res.Get(CategoryNull), 1)
	assert.Equal(t, 1, src.requests())
	assert.Zero(t, dst.requests())
}

func TestSameDataIsNotWritten(t *testing.T) {
	src, dst := newMockNodeAPI("from"), newMockNodeAPI("to")
	src.set("i18n://en@a.txt", "hello")
	dst.set("i18n://en@a.txt", "hello")

	res := run(t, src, dst, false, "i18n://en@a.txt")
	require.Len(t, res.Get(CategorySame), 1)
	assert.Len(t, src.loads, 1)
	assert.Len(t, dst.loads, 1)
	assert.Empty(t, dst.saves)
	assert.Empty(t, dst.publishes)
}

func TestSuccessWritesAndPublishes(t *testing.T) {
	src, dst := newMockNodeAPI("from"), newMockNodeAPI("to")
	src.set("i18n://en@a.txt", "new")
	dst.set("i18n://en@a.txt", "old")

	res := run(t, src, dst, false, "i18n://en@a.txt", "i18n://en@b.txt")
	success := res.Get(CategorySuccess)
	require.Len(t, success, 1)
	assert.Equal(t, `"new"`, success[0].Preview)
	assert.Equal(t, []string{"i18n://en@a.txt"}, dst.saves)
	assert.Equal(t, []string{"i18n://en@a.txt"}, dst.publishes)
	assert.Equal(t, "new", *dst.nodes["i18n://en@a.txt"])
}

func TestMissingDestinationCountsAsDifferent(t *testing.T) {
	src, dst := newMockNodeAPI("from"), newMockNodeAPI("to")
	src.set("i18n://en@a.txt", "")

	res := run(t, src, dst, false, "i18n://en@a.txt")
	require.Len(t, res.Get(CategorySuccess), 1)
	assert.Equal(t, `""`, res.Get(CategorySuccess)[0].Preview)
}

func TestDryRunReadsOnly(t *testing.T) {
	src, dst := newMockNodeAPI("from"), newMockNodeAPI("to")
	src.set("i18n://en@a.txt", "new")
	dst.set("i18n://en@a.txt", "old")

	var kinds []EventKind
	m := New(src, dst, Options{DryRun: true, Observer: ObserverFunc(func(e Event) { kinds = append(kinds, e.Kind) })})
	res := m.Run(context.Background(), []string{"i18n://en@a.txt"})

	require.Len(t, res.Get(CategorySuccess), 1)
	assert.True(t, res.DryRun)
	assert.Equal(t, 2, src.requests()+dst.requests())
	assert.Empty(t, dst.saves)
	assert.Empty(t, dst.publishes)
	assert.Equal(t, []EventKind{
		EventStarted,
		EventRequest, EventData,
		EventRequest,
		EventRequest, EventDryRun,
		EventRequest, EventDryRun,
		EventFinished,
	}, kinds)
}

func TestWriteRejectedFails(t *testing.T) {
	src, dst := newMockNodeAPI("from"), newMockNodeAPI("to")
	src.set("i18n://en@a.txt", "new")
	dst.saveErr = func(string) error { return rejected("node.editor", 500) }

	res := run(t, src, dst, false, "i18n://en@a.txt")
	fail := res.Get(CategoryFail)
	require.Len(t, fail, 1)
	assert.Contains(t, fail[0].Error, "500")
	assert.False(t, fail[0].DraftSaved)
	assert.Empty(t, dst.publishes)
}

func TestPublishRejectedKeepsDraftFlag(t *testing.T) {
	src, dst := newMockNodeAPI("from"), newMockNodeAPI("to")
	src.set("i18n://en@a.txt", "new")
	dst.publishErr = func(string) error { return rejected("node.publish", 403) }

	res := run(t, src, dst, false, "i18n://en@a.txt")
	fail := res.Get(CategoryFail)
	require.Len(t, fail, 1)
	assert.True(t, fail[0].DraftSaved)
	assert.Contains(t, fail[0].Error, "403")
}

func TestFetchErrorDoesNotStopBatch(t *testing.T) {
	src, dst := newMockNodeAPI("from"), newMockNodeAPI("to")
	src.set("i18n://en@a.txt", "x")
	src.set("i18n://en@b.txt", "y")
	src.loadErr = func(uri string) error {
		if uri == "i18n://en@a.txt" {
			return fmt.Errorf("%w: connection refused", djedi.ErrFetch)
		}
		return nil
	}

	res := run(t, src, dst, false, "i18n://en@a.txt", "i18n://en@b.txt")
	require.Len(t, res.Get(CategoryFail), 1)
	require.Len(t, res.Get(CategorySuccess), 1)
	assert.Equal(t, "i18n://en@b.txt", res.Get(CategorySuccess)[0].URI)
}

func TestPartitionCoversEveryURI(t *testing.T) {
	src, dst := newMockNodeAPI("from"), newMockNodeAPI("to")
	uris := []string{
		"i18n://en@ok.txt",
		"i18n://en@same.txt",
		"i18n://en@logo.img",
		"i18n://en@missing.txt",
		"i18n://en@broken.txt",
		"i18n://en@ok2.md",
		"i18n://en@ok.txt",
	}
	src.set("i18n://en@ok.txt", "1")
	src.set("i18n://en@ok2.md", "2")
	src.set("i18n://en@same.txt", "s")
	dst.set("i18n://en@same.txt", "s")
	src.set("i18n://en@broken.txt", "b")
	dst.loadErr = func(uri string) error {
		if strings.Contains(uri, "broken") {
			return errors.New("boom")
		}
		return nil
	}

	res := run(t, src, dst, false, uris...)
	assert.Equal(t, len(uris), res.Total())

	seen := map[int]Category{}
	for _, c := range Categories {
		for _, o := range res.Get(c) {
			_, dup := seen[o.Index]
			require.False(t, dup, "index %d in two categories", o.Index)
			seen[o.Index] = c
			assert.Equal(t, uris[o.Index], o.URI)
		}
	}
	assert.Len(t, seen, len(uris))
	assert.Equal(t, Counts{Success: 2, Same: 2, Images: 1, Null: 1, Fail: 1}, res.Counts())

	// the repeated URI finds its own earlier write on the destination
	assert.Equal(t, CategorySame, seen[6])
}

func TestGroupsKeepProcessingOrder(t *testing.T) {
	src, dst := newMockNodeAPI("from"), newMockNodeAPI("to")
	for _, u := range []string{"c", "a", "b"} {
		src.set("i18n://en@"+u+".txt", u)
	}
	res := run(t, src, dst, false, "i18n://en@c.txt", "i18n://en@a.txt", "i18n://en@b.txt")

	var got []string
	for _, o := range res.Get(CategorySuccess) {
		got = append(got, o.URI)
	}
	assert.Equal(t, []string{"i18n://en@c.txt", "i18n://en@a.txt", "i18n://en@b.txt"}, got)
}

func TestCancelledContextStopsBeforeNextURI(t *testing.T) {
	src, dst := newMockNodeAPI("from"), newMockNodeAPI("to")
	src.set("i18n://en@a.txt", "a")
	src.set("i18n://en@b.txt", "b")

	ctx, cancel := context.WithCancel(context.Background())
	obs := ObserverFunc(func(e Event) {
		if e.Kind == EventFinished && e.Index == 0 {
			cancel()
		}
	})
	res := New(src, dst, Options{Observer: obs}).Run(ctx, []string{"i18n://en@a.txt", "i18n://en@b.txt"})

	assert.True(t, res.Interrupted)
	assert.Equal(t, 1, res.Total())
	assert.NotContains(t, src.loads, "i18n://en@b.txt")
}

func TestRunRecordsTimestamps(t *testing.T) {
	clock := time.Unix(100, 0)
	now := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	res := New(newMockNodeAPI("from"), newMockNodeAPI("to"), Options{Language: "sv", Now: now}).
		Run(context.Background(), []string{"i18n://sv@a.txt"})

	assert.Equal(t, "sv", res.Language)
	assert.Equal(t, 3*time.Second, res.Elapsed())
	assert.Equal(t, time.Second, res.Get(CategoryNull)[0].Duration)
}

func TestObserverSeesRequestURLs(t *testing.T) {
	src, dst := newMockNodeAPI("from"), newMockNodeAPI("to")
	src.set("i18n://en@a.txt", "x")

	var lines []string
	obs := ObserverFunc(func(e Event) {
		if e.Kind == EventRequest {
			lines = append(lines, e.Method+" "+e.URL)
		}
	})
	New(src, dst, Options{Observer: obs}).Run(context.Background(), []string{"i18n://en@a.txt"})

	enc := djedi.EncodeNodeURI("i18n://en@a.txt")
	assert.Equal(t, []string{
		"GET https://from.example.com/admin/djedi/cms/node/" + enc + "/load",
		"GET https://to.example.com/admin/djedi/cms/node/" + enc + "/load",
		"POST https://to.example.com/admin/djedi/cms/node/" + enc + "/editor",
		"PUT https://to.example.com/admin/djedi/cms/node/" + enc + "%23draft/publish",
	}, lines)
}
