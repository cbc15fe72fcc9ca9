package logger

import (
	"io"
	"os"
	"sync"
)

// Broadcaster is an io.Writer that copies every write to an underlying
// writer and to each subscribed channel.
type Broadcaster struct {
	mu          sync.Mutex
	out         io.Writer
	subscribers map[chan string]bool
}

func NewBroadcaster(out io.Writer) *Broadcaster {
	return &Broadcaster{out: out, subscribers: make(map[chan string]bool)}
}

// Instance mirrors the process log to stdout.
var Instance = NewBroadcaster(os.Stdout)

func (b *Broadcaster) Write(p []byte) (n int, err error) {
	msg := string(p)
	b.out.Write(p)

	b.mu.Lock()
	for ch := range b.subscribers {
		// slow readers drop lines instead of blocking the logger
		select {
		case ch <- msg:
		default:
		}
	}
	b.mu.Unlock()

	return len(p), nil
}

// Subscribe returns a channel receiving every subsequent log line.
func (b *Broadcaster) Subscribe() chan string {
	ch := make(chan string, 100)
	b.mu.Lock()
	b.subscribers[ch] = true
	b.mu.Unlock()
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan string) {
	b.mu.Lock()
	delete(b.subscribers, ch)
	b.mu.Unlock()
	close(ch)
}
