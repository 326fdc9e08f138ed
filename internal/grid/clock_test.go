package grid

import (
	"sync"
	"testing"
	"time"
)

func TestLogicalClock_Sequence(t *testing.T) {
	c := NewClock()
	if got := c.Current(); got != 0 {
		t.Fatalf("Current() = %d, want 0", got)
	}
	for want := int64(1); want <= 3; want++ {
		if got := c.Next(); got != want {
			t.Errorf("Next() = %d, want %d", got, want)
		}
	}

	c = NewClockAt(100)
	if got := c.Next(); got != 101 {
		t.Errorf("NewClockAt(100).Next() = %d, want 101", got)
	}
}

func TestLogicalClock_Concurrent(t *testing.T) {
	c := NewClock()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Next()
			}
		}()
	}
	wg.Wait()
	if got := c.Current(); got != 1000 {
		t.Errorf("Current() = %d, want 1000", got)
	}
}

func TestLogicalClock_NowIsUTC(t *testing.T) {
	if loc := NewClock().Now().Location(); loc != time.UTC {
		t.Errorf("Now().Location() = %v, want UTC", loc)
	}
}
