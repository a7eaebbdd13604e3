package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())
	assert.Nil(t, bar.Init())
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(b *Bar)
		contains []string
	}{
		{
			name:     "ready",
			setup:    func(b *Bar) {},
			contains: []string{"Ready", "enter: ask", "esc/q: quit"},
		},
		{
			name:     "ready with chunks",
			setup:    func(b *Bar) { b.SetChunkCount(42) },
			contains: []string{"Ready (42 chunks)"},
		},
		{
			name: "ready with message",
			setup: func(b *Bar) {
				b.SetMessage("No documents indexed")
			},
			contains: []string{"No documents indexed"},
		},
		{
			name:     "loading",
			setup:    func(b *Bar) { b.SetState(StateLoading) },
			contains: []string{"Loading index..."},
		},
		{
			name:     "thinking",
			setup:    func(b *Bar) { b.SetState(StateThinking) },
			contains: []string{"Thinking..."},
		},
		{
			name: "answered",
			setup: func(b *Bar) {
				b.SetState(StateAnswered)
				b.SetSourceCount(3)
			},
			contains: []string{"3 sources", "n: new question"},
		},
		{
			name: "error",
			setup: func(b *Bar) {
				b.SetState(StateError)
				b.SetMessage("embedding failed")
			},
			contains: []string{"Error: embedding failed"},
		},
		{
			name:     "error without message",
			setup:    func(b *Bar) { b.SetState(StateError) },
			contains: []string{"Error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			tt.setup(bar)

			view := bar.View()
			for _, want := range tt.contains {
				assert.Contains(t, view, want)
			}
		})
	}
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateAnswered)
	bar.SetMessage("x")
	bar.SetSourceCount(2)
	bar.SetChunkCount(10)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, 0, bar.SourceCount())
	assert.Contains(t, bar.View(), "10 chunks")
}
