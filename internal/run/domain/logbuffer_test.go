package domain

import (
	"fmt"
	"sync"
	"testing"
)

func TestLogBufferReadFrom(t *testing.T) {
	b := NewLogBuffer()
	b.Append("one", "two", "three")

	lines, next := b.ReadFrom(0)
	if len(lines) != 3 || next != 3 {
		t.Fatalf("ReadFrom(0) = %v, %d", lines, next)
	}
	lines, next = b.ReadFrom(2)
	if len(lines) != 1 || lines[0] != "three" || next != 3 {
		t.Fatalf("ReadFrom(2) = %v, %d", lines, next)
	}
	lines, next = b.ReadFrom(10)
	if len(lines) != 0 || next != 3 {
		t.Fatalf("past-end ReadFrom = %v, %d", lines, next)
	}
	lines, _ = b.ReadFrom(-5)
	if len(lines) != 3 {
		t.Fatalf("negative offset should read from start, got %v", lines)
	}
}

// A reader polling from its last offset while a producer appends must see
// every line exactly once, in order.
func TestLogBufferConcurrentProducerConsumer(t *testing.T) {
	b := NewLogBuffer()
	const total = 500

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			b.Append(fmt.Sprintf("line %d", i))
		}
	}()

	var got []string
	offset := 0
	for len(got) < total {
		lines, next := b.ReadFrom(offset)
		if next < offset {
			t.Fatalf("offset went backwards: %d -> %d", offset, next)
		}
		got = append(got, lines...)
		offset = next
	}
	wg.Wait()

	for i, line := range got {
		if want := fmt.Sprintf("line %d", i); line != want {
			t.Fatalf("position %d = %q, want %q", i, line, want)
		}
	}
}
