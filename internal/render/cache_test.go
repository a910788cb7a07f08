package render

import (
	"sync"
	"testing"
)

func TestKeyOf(t *testing.T) {
	base := DefaultOptions()

	if keyOf(base) != keyOf(DefaultOptions()) {
		t.Error("equal options should share a key")
	}
	if keyOf(base) == keyOf(base.WithWidth(100)) {
		t.Error("width should change the key")
	}
	if keyOf(base) == keyOf(base.WithStyle("light")) {
		t.Error("style should change the key")
	}
	if keyOf(base) != keyOf(base.WithCodeStyle("dracula")) {
		t.Error("code style is not a glamour option and should not change the key")
	}
}

func TestPoolsReuse(t *testing.T) {
	pools.reset()
	defer pools.reset()

	opts := DefaultOptions()
	r, err := pools.acquire(opts)
	if err != nil || r == nil {
		t.Fatalf("acquire() = %v, %v", r, err)
	}
	pools.release(opts, r)

	if _, err := pools.acquire(opts.WithWidth(60)); err != nil {
		t.Fatal(err)
	}
	if pools.size() != 2 {
		t.Errorf("size() = %d, want 2", pools.size())
	}

	pools.release(opts, nil)
	if pools.size() != 2 {
		t.Error("releasing nil should not add a pool")
	}
}

func TestPoolsBounded(t *testing.T) {
	pools.reset()
	defer pools.reset()

	for w := 20; w < 20+maxPools+5; w++ {
		pools.pool(DefaultOptions().WithWidth(w))
	}
	if n := pools.size(); n > maxPools {
		t.Errorf("size() = %d, want at most %d", n, maxPools)
	}
}

func TestPoolsConcurrentRender(t *testing.T) {
	pools.reset()
	defer pools.reset()

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			opts := DefaultOptions().WithWidth(40 + i%3)
			if _, err := Markdown("# Title\n\nsome *text*", opts); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent render: %v", err)
	}
	if pools.size() != 3 {
		t.Errorf("size() = %d, want 3", pools.size())
	}
}

func TestNewGlamourInvalidStyle(t *testing.T) {
	if _, err := newGlamour(DefaultOptions().WithStyle("no_such_style_file")); err == nil {
		t.Error("expected error for unknown style")
	}
	if _, err := Markdown("hi", DefaultOptions().WithStyle("no_such_style_file")); err == nil {
		t.Error("Markdown should surface the style error")
	}
}
