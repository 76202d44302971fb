package queue

import (
	"testing"

	"github.com/abdul-hamid-achik/videopipeline/internal/statestore"
	"github.com/stretchr/testify/require"
)

func TestLanesPriorityOrder(t *testing.T) {
	l := newLanes()
	l.push(&Job{VideoID: "v1", Resolution: statestore.ResolutionHigh})
	l.push(&Job{VideoID: "v1", Resolution: statestore.ResolutionMedium})
	l.push(&Job{VideoID: "v1", Resolution: statestore.ResolutionLow})

	j1, ok := l.pop()
	require.True(t, ok)
	require.Equal(t, statestore.ResolutionLow, j1.Resolution)

	j2, ok := l.pop()
	require.True(t, ok)
	require.Equal(t, statestore.ResolutionMedium, j2.Resolution)

	j3, ok := l.pop()
	require.True(t, ok)
	require.Equal(t, statestore.ResolutionHigh, j3.Resolution)
}

func TestLanesFIFOWithinPriority(t *testing.T) {
	l := newLanes()
	first := &Job{VideoID: "a", Resolution: statestore.ResolutionLow}
	second := &Job{VideoID: "b", Resolution: statestore.ResolutionLow}
	l.push(first)
	l.push(second)

	got1, _ := l.pop()
	got2, _ := l.pop()
	require.Equal(t, "a", got1.VideoID)
	require.Equal(t, "b", got2.VideoID)
}

func TestLanesCloseUnblocksPop(t *testing.T) {
	l := newLanes()
	done := make(chan bool, 1)
	go func() {
		_, ok := l.pop()
		done <- ok
	}()
	l.close()
	require.False(t, <-done)
}
