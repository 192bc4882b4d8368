package iox

import (
	"errors"
	"testing"
)

type spyCloser struct{ calls int }

func (s *spyCloser) Close() error {
	s.calls++
	return errors.New("close failed")
}

func TestDiscardClose(t *testing.T) {
	s := &spyCloser{}
	DiscardClose(s)
	if s.calls != 1 {
		t.Fatalf("Close calls = %d, want 1", s.calls)
	}
}

func TestCloseFunc_Deferred(t *testing.T) {
	s := &spyCloser{}
	fn := CloseFunc(s)
	if s.calls != 0 {
		t.Fatal("Close called before the returned func ran")
	}
	fn()
	fn()
	if s.calls != 2 {
		t.Fatalf("Close calls = %d, want 2", s.calls)
	}
}

func TestDiscardErr(t *testing.T) {
	calls := 0
	DiscardErr(func() error {
		calls++
		return errors.New("sync failed")
	})
	if calls != 1 {
		t.Fatalf("fn calls = %d, want 1", calls)
	}
}
