package flight

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/SFSPlayer-sys/gosfs/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestContext_Defaults(t *testing.T) {
	ctx := NewContext()

	f := ctx.GetFlight()
	assert.Equal(t, "No flight recording", f.Name)
	assert.Zero(t, ctx.Samples())
}

func TestContext_SetFlightResetsSeq(t *testing.T) {
	ctx := NewContext()
	assert.Equal(t, uint(1), ctx.NextSeq())
	assert.Equal(t, uint(2), ctx.NextSeq())

	ctx.SetFlight(&core.Flight{ID: 4, Name: "Orbit test"})
	assert.Zero(t, ctx.Samples())
	assert.Equal(t, uint(1), ctx.NextSeq())
	assert.Equal(t, "Orbit test", ctx.GetFlight().Name)
}

func TestContext_ConcurrentSeq(t *testing.T) {
	ctx := NewContext()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx.NextSeq()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint(50), ctx.Samples())
}

func TestContext_LogAttrs(t *testing.T) {
	ctx := NewContext()
	ctx.SetFlight(&core.Flight{ID: 9, Name: "Mun hop"})

	attrs := ctx.LogAttrs()
	assert.Equal(t, []slog.Attr{
		slog.String("flight", "Mun hop"),
		slog.Uint64("flightId", 9),
	}, attrs)
}

func TestContext_ActiveAndClear(t *testing.T) {
	ctx := NewContext()
	assert.False(t, ctx.Active())

	ctx.SetFlight(&core.Flight{ID: 1, Name: "Hop"})
	ctx.NextSeq()
	assert.True(t, ctx.Active())

	ctx.Clear()
	assert.False(t, ctx.Active())
	assert.Zero(t, ctx.Samples())
	assert.Equal(t, "No flight recording", ctx.GetFlight().Name)
}
