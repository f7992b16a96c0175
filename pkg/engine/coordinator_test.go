package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// serve stands in for the worker: it handles envelopes in order and acks
// those that ask for it.
func serve(c *Coordinator, handle func(Envelope)) {
	for {
		select {
		case env := <-c.Inbox():
			handle(env)
			if env.WaitForAck {
				c.Ack(env.Seq)
			}
		case <-c.Done():
			return
		}
	}
}

func TestCoordinator_SendAndWaitBlocksUntilAck(t *testing.T) {
	c := NewCoordinator(4)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var (
		mu        sync.Mutex
		processed []any
	)
	defer c.Close()
	go serve(c, func(env Envelope) {
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		processed = append(processed, env.Event)
		mu.Unlock()
	})

	if _, err := c.Send(ctx, Redraw{}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := c.SendAndWait(ctx, SurfaceCreated{}); err != nil {
		t.Fatalf("SendAndWait: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	// The ack for the second envelope implies the first was processed too.
	if len(processed) != 2 {
		t.Fatalf("processed %d envelopes before the ack, want 2", len(processed))
	}
	if _, ok := processed[0].(Redraw); !ok {
		t.Errorf("first processed = %T, want Redraw", processed[0])
	}
}

func TestCoordinator_SequenceNumbersIncrease(t *testing.T) {
	c := NewCoordinator(3)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.Send(ctx, Redraw{}); err != nil {
			t.Fatal(err)
		}
	}
	var last uint64
	for i := 0; i < 3; i++ {
		env := <-c.Inbox()
		if env.Seq <= last {
			t.Errorf("seq %d after %d", env.Seq, last)
		}
		if env.WaitForAck {
			t.Error("Send must not ask for an ack")
		}
		last = env.Seq
	}
}

func TestCoordinator_StaleAckIsSkipped(t *testing.T) {
	c := NewCoordinator(4)

	// A wait that gives up leaves its ack behind.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.SendAndWait(ctx, Redraw{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled SendAndWait = %v", err)
	}

	defer c.Close()
	go serve(c, func(Envelope) {})
	wait, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()
	if err := c.SendAndWait(wait, ProcessQueue{}); err != nil {
		t.Fatalf("SendAndWait after abandoned wait: %v", err)
	}
}

func TestCoordinator_TrySendAndClose(t *testing.T) {
	c := NewCoordinator(1)
	if !c.TrySend(Redraw{}) {
		t.Fatal("TrySend into an empty inbox should succeed")
	}
	if c.TrySend(Redraw{}) {
		t.Error("TrySend into a full inbox should fail")
	}

	c.Close()
	c.Close()
	if _, err := c.Send(context.Background(), Redraw{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after Close = %v, want ErrClosed", err)
	}
	if c.TrySend(Redraw{}) {
		t.Error("TrySend after Close should fail")
	}
}
