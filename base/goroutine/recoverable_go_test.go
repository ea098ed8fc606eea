package goroutine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecoverableGo(t *testing.T) {
	req := require.New(t)

	done := make(chan struct{})
	pc := RecoverableGo(func() {
		close(done)
	})
	<-done
	_, ok := <-pc
	req.False(ok)
}

func TestRecoverableGoPanic(t *testing.T) {
	req := require.New(t)

	recovered := make(chan interface{}, 1)
	pc := RecoverableGo(func() {
		panic("boom")
	}, WithAfterRecovered(func(p interface{}, stack []byte) {
		recovered <- p
	}))

	ev := <-pc
	req.NotNil(ev)
	req.Equal("boom", ev.Panic)
	req.Equal("boom", <-recovered)
}
