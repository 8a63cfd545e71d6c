package reports

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

type flight struct {
	group singleflight.Group
}

// do coalesces concurrent calls sharing key. Each waiter still honours its own ctx.
//
// A call stops accepting joiners once fn reports, through snapshotStarting,
// that it is about to read. Every waiter therefore arrived before the read
// began and sees all writes committed before it arrived.
func (f *flight) do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error, bool) {
	resultChan := f.group.DoChan(key, func() (any, error) {
		var once sync.Once
		closeCall := func() { once.Do(func() { f.group.Forget(key) }) }
		defer closeCall()
		return fn(withSnapshotHook(context.WithoutCancel(ctx), closeCall))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}

type snapshotHookKey struct{}

func withSnapshotHook(ctx context.Context, hook func()) context.Context {
	return context.WithValue(ctx, snapshotHookKey{}, hook)
}

// snapshotStarting must be called right before the first query of a snapshot.
func snapshotStarting(ctx context.Context) {
	if hook, ok := ctx.Value(snapshotHookKey{}).(func()); ok {
		hook()
	}
}
