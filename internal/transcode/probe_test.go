package transcode

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProbeDuration(t *testing.T) {
	runner := &fakeRunner{output: "125.446000\n"}
	probe := NewProbe("ffprobe", runner)

	seconds, err := probe.Duration(context.Background(), "/tmp/src.mp4")
	require.NoError(t, err)
	require.InDelta(t, 125.446, seconds, 0.001)

	require.Len(t, runner.calls, 1)
	joined := strings.Join(runner.calls[0], " ")
	require.Contains(t, joined, "format=duration")
	require.Contains(t, joined, "/tmp/src.mp4")
}

func TestProbeDurationToolFailure(t *testing.T) {
	runner := &fakeRunner{outErr: errors.New("exit status 1")}
	probe := NewProbe("ffprobe", runner)

	_, err := probe.Duration(context.Background(), "/tmp/src.mp4")
	require.Error(t, err)
}

func TestProbeDurationUnparseable(t *testing.T) {
	runner := &fakeRunner{output: "N/A"}
	probe := NewProbe("ffprobe", runner)

	_, err := probe.Duration(context.Background(), "/tmp/src.mp4")
	require.Error(t, err)
}

func TestProbeDurationNegative(t *testing.T) {
	runner := &fakeRunner{output: "-3.5"}
	probe := NewProbe("ffprobe", runner)

	_, err := probe.Duration(context.Background(), "/tmp/src.mp4")
	require.Error(t, err)
}
