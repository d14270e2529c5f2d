package logctx

import (
	"context"
	"fmt"
	"logpush/internal/global"
	"reflect"
	"sync"
	"testing"
)

func ctxWithTags(tags []string) context.Context {
	return context.WithValue(context.Background(), global.LogTagsKey, tags)
}

func assertTags(t *testing.T, ctx context.Context, want []string) {
	t.Helper()
	got := GetTagList(ctx)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tags mismatch: got=%v want=%v", got, want)
	}
}

func TestGetTagList(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want []string
	}{
		{name: "no value in context", ctx: context.Background(), want: []string{}},
		{name: "correct slice stored", ctx: ctxWithTags([]string{"a", "b"}), want: []string{"a", "b"}},
		{name: "wrong type stored", ctx: context.WithValue(context.Background(), global.LogTagsKey, "nope"), want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTags(t, tt.ctx, tt.want)
		})
	}
}

func TestGetTagList_ReturnedSliceIsIndependent(t *testing.T) {
	ctx := ctxWithTags([]string{global.NSRelay, global.NSCollector})

	tags := GetTagList(ctx)
	tags[0] = "mutated"

	assertTags(t, ctx, []string{global.NSRelay, global.NSCollector})
}

func TestAppendCtxTag(t *testing.T) {
	tests := []struct {
		name      string
		startTags []string
		append    []string
		want      []string
	}{
		{name: "append to empty", startTags: []string{}, append: []string{"a"}, want: []string{"a"}},
		{name: "append to existing", startTags: []string{"a", "b"}, append: []string{"c"}, want: []string{"a", "b", "c"}},
		{name: "append several", startTags: []string{global.NSRelay}, append: []string{global.NSTransport, global.NSoZmq}, want: []string{global.NSRelay, global.NSTransport, global.NSoZmq}},
		{name: "append nothing", startTags: []string{"a"}, append: nil, want: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := ctxWithTags(tt.startTags)
			newCtx := AppendCtxTag(orig, tt.append...)

			assertTags(t, newCtx, tt.want)
			assertTags(t, orig, tt.startTags)
		})
	}
}

func TestRemoveLastCtxTag(t *testing.T) {
	ctx := ctxWithTags([]string{"a", "b"})

	ctx = RemoveLastCtxTag(ctx)
	assertTags(t, ctx, []string{"a"})

	ctx = RemoveLastCtxTag(ctx)
	assertTags(t, ctx, []string{})

	ctx = RemoveLastCtxTag(ctx)
	assertTags(t, ctx, []string{})
}

func TestOverwriteCtxTag_Immutability(t *testing.T) {
	newTags := []string{"a"}
	ctx := OverwriteCtxTag(ctxWithTags([]string{"x", "y"}), newTags)

	newTags[0] = "mutated"

	assertTags(t, ctx, []string{"a"})
}

func TestContextTags_ConcurrentImmutability(t *testing.T) {
	baseCtx := OverwriteCtxTag(context.Background(), []string{"base"})

	const goroutines = 8
	results := make([][]string, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			ctx := AppendCtxTag(baseCtx, fmt.Sprintf("worker-%d", id), "step1")
			ctx = RemoveLastCtxTag(ctx)
			ctx = AppendCtxTag(ctx, "final")
			results[id] = GetTagList(ctx)
		}(i)
	}
	wg.Wait()

	assertTags(t, baseCtx, []string{"base"})
	for id, got := range results {
		want := []string{"base", fmt.Sprintf("worker-%d", id), "final"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("goroutine %d tags mismatch: got=%v want=%v", id, got, want)
		}
	}
}
