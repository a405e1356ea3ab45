package hoof

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testViews is a small site exercising inheritance, includes and loops.
var testViews = map[string]string{
	"layouts/main.mix": `<html><head></head><body><header><block name="header">Site</block></header>` +
		`<main><block name="content"></block></main></body></html>`,
	"partials/item.mix": `<li :class="{done: item.done}">{{ item.label }}</li>`,
	"pages/list.mix": `<extends file="layouts/main"/><block name="content"><h1>{{ title }}</h1>` +
		`<ul><each :="item in items"><include file="partials/item"></include></each></ul></block>`,
	"pages/counter.mix": `<p>{{ count }}</p>`,
	"pages/broken.mix":  `<require file="partials/missing"></require>`,
	"pages/loop.mix":    `<extends file="pages/loop"/>`,
	"pages/strict.mix":  `<p>{{ 1 / 0 }}</p>`,
	"pages/math.mix":    `<p>{{ double(n) }}</p>`,
	"pages/spaces.mix":  "<div>\n  <p>a</p>\n  <p>b</p>\n</div>",
}

// testClock is a settable clock for cache ageing.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	engine, err := New(append([]Option{WithReader(NewMemoryReader(testViews))}, opts...)...)
	require.NoError(t, err)
	return engine
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		engine, err := New(WithViewsRoot(t.TempDir()))
		require.NoError(t, err)
		assert.NotNil(t, engine.Reader())
		assert.Contains(t, engine.Directives(), "each")
		assert.Contains(t, engine.ListFuncs(), "upper")
	})

	t.Run("negative depth", func(t *testing.T) {
		_, err := New(WithMaxDepth(-1))
		require.Error(t, err)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
		field, ok := customErr.GetMetadata(MetaKeyField)
		assert.True(t, ok)
		assert.Equal(t, ConfigFieldMaxDepth, field)
	})

	t.Run("must new panics", func(t *testing.T) {
		assert.Panics(t, func() { MustNew(WithMaxInheritance(-1)) })
	})
}

func TestEngine_Render(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	out, err := engine.Render(ctx, "pages/list", map[string]any{
		"title": "Todo",
		"items": []any{
			map[string]any{"label": "write", "done": true},
			map[string]any{"label": "test", "done": false},
		},
	}, &Request{Path: "/todo"})
	require.NoError(t, err)

	assert.Equal(t, `<html><head></head><body><header>Site</header><main><h1>Todo</h1>`+
		`<ul><li class="done">write</li><li>test</li></ul></main></body></html>`, out)
}

func TestEngine_Render_Errors(t *testing.T) {
	engine := newTestEngine(t, WithStrictPlaceholders(true))
	ctx := context.Background()

	tests := []struct {
		name     string
		view     string
		kind     string
		checkErr func(t *testing.T, err error)
	}{
		{
			name: "missing view",
			view: "pages/nope",
			kind: KindMissingResource,
			checkErr: func(t *testing.T, err error) {
				assert.True(t, IsMissingResource(err))
			},
		},
		{
			name: "missing require",
			view: "pages/broken",
			kind: KindMissingResource,
			checkErr: func(t *testing.T, err error) {
				var customErr *cuserr.CustomError
				require.True(t, errors.As(err, &customErr))
				tag, ok := customErr.GetMetadata(MetaKeyTag)
				assert.True(t, ok)
				assert.Equal(t, "require", tag)
				p, _ := customErr.GetMetadata(MetaKeyPath)
				assert.Equal(t, "partials/missing.mix", p)
			},
		},
		{
			name: "circular inheritance",
			view: "pages/loop",
			kind: KindInheritance,
			checkErr: func(t *testing.T, err error) {
				assert.True(t, IsInheritanceError(err))
				assert.False(t, IsMissingResource(err))
			},
		},
		{
			name: "strict placeholder",
			view: "pages/strict",
			kind: KindRenderAbort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Render(ctx, tt.view, nil, nil)
			require.Error(t, err)
			assert.Equal(t, tt.kind, kindOf(err))
			if tt.checkErr != nil {
				tt.checkErr(t, err)
			}
		})
	}
}

func TestEngine_RenderString(t *testing.T) {
	engine := newTestEngine(t)

	out, err := engine.RenderString(context.Background(), "inline",
		`<extends file="layouts/main"/><block name="header">{{ upper(name) }}</block>`,
		map[string]any{"name": "hoof"}, nil)
	require.NoError(t, err)
	assert.Equal(t, `<html><head></head><body><header>HOOF</header><main></main></body></html>`, out)
}

func TestEngine_RenderCached(t *testing.T) {
	clock := newTestClock()
	store := NewMemoryFragmentStoreWithClock(clock.Now)
	engine := newTestEngine(t, WithFragmentStore(store), WithClock(clock.Now))
	ctx := context.Background()
	req := &Request{Path: "/count"}

	out, err := engine.RenderCached(ctx, "pages/counter", map[string]any{"count": 1}, req, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "<p>1</p>", out)

	clock.Advance(59 * time.Second)
	out, err = engine.RenderCached(ctx, "pages/counter", map[string]any{"count": 2}, req, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "<p>1</p>", out, "fresh page is replayed")

	out, err = engine.RenderCached(ctx, "pages/counter", map[string]any{"count": 3}, &Request{Path: "/other"}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "<p>3</p>", out, "pages are keyed by request path")

	clock.Advance(time.Second)
	out, err = engine.RenderCached(ctx, "pages/counter", map[string]any{"count": 4}, req, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "<p>4</p>", out, "stale page is rendered again")
	assert.Equal(t, 2, store.Len())

	t.Run("errors are not cached", func(t *testing.T) {
		_, err := engine.RenderCached(ctx, "pages/broken", nil, req, time.Minute)
		assert.True(t, IsMissingResource(err))
		assert.Equal(t, 2, store.Len())
	})

	t.Run("without store it renders", func(t *testing.T) {
		plain := newTestEngine(t)
		out, err := plain.RenderCached(ctx, "pages/counter", map[string]any{"count": 5}, req, 0)
		require.NoError(t, err)
		assert.Equal(t, "<p>5</p>", out)
	})
}

func TestEngine_Minify(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	out, err := engine.Render(ctx, "pages/spaces", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, testViews["pages/spaces.mix"], out)

	out, err = engine.Render(ctx, "pages/spaces", nil, nil, WithMinify(true))
	require.NoError(t, err)
	assert.Equal(t, "<div><p>a</p><p>b</p></div>", out)

	minifying := newTestEngine(t, WithMinifyOutput(true))
	out, err = minifying.Render(ctx, "pages/spaces", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "<div><p>a</p><p>b</p></div>", out)

	out, err = minifying.Render(ctx, "pages/spaces", nil, nil, WithMinify(false))
	require.NoError(t, err)
	assert.Equal(t, testViews["pages/spaces.mix"], out)
}

func TestEngine_RegisterFunc(t *testing.T) {
	engine := newTestEngine(t)

	double := &Func{
		Name:    "double",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []any) (any, error) {
			n, _ := args[0].(float64)
			return n * 2, nil
		},
	}
	require.NoError(t, engine.RegisterFunc(double))
	assert.True(t, engine.HasFunc("double"))

	out, err := engine.Render(context.Background(), "pages/math", map[string]any{"n": 21.0}, nil)
	require.NoError(t, err)
	assert.Equal(t, "<p>42</p>", out)

	err = engine.RegisterFunc(double)
	require.Error(t, err)
	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))
	name, _ := customErr.GetMetadata(MetaKeyFuncName)
	assert.Equal(t, "double", name)

	assert.Error(t, engine.RegisterFunc(nil))
	assert.Error(t, engine.RegisterFunc(&Func{}))
	assert.Panics(t, func() { engine.MustRegisterFunc(double) })
}

func TestEngine_Exists(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	ok, err := engine.Exists(ctx, "pages/counter")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.Exists(ctx, "pages/none")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_Close(t *testing.T) {
	store := NewMemoryFragmentStore()
	engine := newTestEngine(t, WithFragmentStore(store))
	require.NoError(t, engine.Close())

	err := store.Write(context.Background(), "x", []byte("y"))
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, ErrMsgStoreClosed, storeErr.Message)

	assert.NoError(t, newTestEngine(t).Close())
}

func TestEngine_ConcurrentRender(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			out, err := engine.Render(ctx, "pages/counter", map[string]any{"count": n}, nil)
			if err != nil {
				errs <- err
				return
			}
			if out != "<p>"+strconv.Itoa(n)+"</p>" {
				errs <- errors.New("unexpected output " + out)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
