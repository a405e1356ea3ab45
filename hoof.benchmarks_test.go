package hoof

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

var benchViews = map[string]string{
	"layout.mix": `<!DOCTYPE html><html><head><title><block name="title">Site</block></title></head>` +
		`<body><block name="content"></block></body></html>`,
	"row.mix":    `<tr :class="{odd: i % 2}"><td>{{ item.name }}</td><td>{{ item.price }}</td></tr>`,
	"simple.mix": `<p>Hello {{ user }}!</p>`,
	"conditional.mix": `<if :="isAdmin"><p>Admin Panel</p></if><elif :="isUser"><p>User Dashboard</p></elif>` +
		`<else><p>Guest View</p></else>`,
	"loop.mix": `<ul><each :="item in items"><li>{{ item.name }}: {{ item.price }}</li></each></ul>`,
	"page.mix": `<extends file="layout"/><block name="title">{{ title }}</block><block name="content">` +
		`<table><each :="item, i in items"><include file="row"></include></each></table></block>`,
	"cached.mix": `<div><cached ttl="3600"><ul><each :="item in items"><li>{{ item.name }}</li></each></ul></cached></div>`,
}

func newBenchEngine(b *testing.B, opts ...Option) *Engine {
	b.Helper()
	engine, err := New(append([]Option{WithReader(NewMemoryReader(benchViews))}, opts...)...)
	if err != nil {
		b.Fatal(err)
	}
	return engine
}

func benchItems(n int) []any {
	items := make([]any, n)
	for i := range items {
		items[i] = map[string]any{"name": fmt.Sprintf("item-%d", i), "price": float64(i) * 1.5}
	}
	return items
}

// =============================================================================
// RENDER BENCHMARKS
// =============================================================================

func BenchmarkRender_Simple(b *testing.B) {
	engine := newBenchEngine(b)
	ctx := context.Background()
	data := map[string]any{"user": "Alice"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = engine.Render(ctx, "simple", data, nil)
	}
}

func BenchmarkRender_Conditional(b *testing.B) {
	engine := newBenchEngine(b)
	ctx := context.Background()
	data := map[string]any{"isAdmin": false, "isUser": true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = engine.Render(ctx, "conditional", data, nil)
	}
}

func BenchmarkRender_Loop(b *testing.B) {
	for _, size := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("items=%d", size), func(b *testing.B) {
			engine := newBenchEngine(b)
			ctx := context.Background()
			data := map[string]any{"items": benchItems(size)}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = engine.Render(ctx, "loop", data, nil)
			}
		})
	}
}

func BenchmarkRender_InheritanceWithIncludes(b *testing.B) {
	engine := newBenchEngine(b)
	ctx := context.Background()
	data := map[string]any{"title": "Prices", "items": benchItems(50)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = engine.Render(ctx, "page", data, nil)
	}
}

func BenchmarkRender_Minified(b *testing.B) {
	engine := newBenchEngine(b, WithMinifyOutput(true))
	ctx := context.Background()
	data := map[string]any{"title": "Prices", "items": benchItems(50)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = engine.Render(ctx, "page", data, nil)
	}
}

// =============================================================================
// CACHE BENCHMARKS
// =============================================================================

func BenchmarkRender_CachedFragment(b *testing.B) {
	engine := newBenchEngine(b, WithFragmentStore(NewMemoryFragmentStore()))
	ctx := context.Background()
	data := map[string]any{"items": benchItems(200)}
	req := &Request{Path: "/bench"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = engine.Render(ctx, "cached", data, req)
	}
}

func BenchmarkRenderCached_Page(b *testing.B) {
	engine := newBenchEngine(b, WithFragmentStore(NewMemoryFragmentStore()))
	ctx := context.Background()
	data := map[string]any{"title": "Prices", "items": benchItems(200)}
	req := &Request{Path: "/bench"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = engine.RenderCached(ctx, "page", data, req, time.Hour)
	}
}

func BenchmarkFilesystemStore_Zstd(b *testing.B) {
	store, err := NewFilesystemFragmentStore(b.TempDir(), CompressionZstd)
	if err != nil {
		b.Fatal(err)
	}
	engine := newBenchEngine(b, WithFragmentStore(store))
	ctx := context.Background()
	data := map[string]any{"items": benchItems(200)}
	req := &Request{Path: "/bench"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = engine.Render(ctx, "cached", data, req)
	}
}

// =============================================================================
// CONCURRENCY BENCHMARKS
// =============================================================================

func BenchmarkRender_Parallel(b *testing.B) {
	engine := newBenchEngine(b)
	ctx := context.Background()
	data := map[string]any{"items": benchItems(20)}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = engine.Render(ctx, "loop", data, nil)
		}
	})
}

func BenchmarkRender_ConcurrentEngines(b *testing.B) {
	const workers = 8
	ctx := context.Background()
	data := map[string]any{"user": "Alice"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				engine, err := New(WithReader(NewMemoryReader(benchViews)))
				if err != nil {
					return
				}
				_, _ = engine.Render(ctx, "simple", data, nil)
			}()
		}
		wg.Wait()
	}
}
