package bufpool

import "testing"

func TestGetMutMonotonic(t *testing.T) {
	p := New(16)

	a, err := p.GetMut(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != 10 {
		t.Fatalf("expected 10 bytes, got %d", len(a))
	}

	b, err := p.GetMut(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b) != 4 {
		t.Fatalf("expected 4 bytes, got %d", len(b))
	}

	if _, err := p.GetMut(4); err == nil {
		t.Fatalf("expected BufferTooSmallError, got nil")
	}
}

func TestBufferTooSmallReportsNeededAndAvailable(t *testing.T) {
	p := New(8)
	_, _ = p.GetMut(6)

	_, err := p.GetMut(5)
	if err == nil {
		t.Fatal("expected error")
	}

	var tooSmall *BufferTooSmallError
	if !asTooSmall(err, &tooSmall) {
		t.Fatalf("expected BufferTooSmallError, got %T", err)
	}
	if tooSmall.Needed != 5 || tooSmall.Available != 2 {
		t.Fatalf("unexpected error fields: %+v", tooSmall)
	}
}

func asTooSmall(err error, target **BufferTooSmallError) bool {
	if e, ok := err.(*BufferTooSmallError); ok {
		*target = e
		return true
	}
	return false
}

func TestResetInvalidatesOffset(t *testing.T) {
	p := New(8)
	if _, err := p.GetMut(8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Remaining() != 0 {
		t.Fatalf("expected 0 remaining, got %d", p.Remaining())
	}

	p.Reset()
	if p.Remaining() != 8 {
		t.Fatalf("expected 8 remaining after reset, got %d", p.Remaining())
	}
}
