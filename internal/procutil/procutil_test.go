package procutil

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeardown_GracefulExitWithinFirstWindow(t *testing.T) {
	cmd := exec.Command("sh", "-c", "exit 0")
	require.NoError(t, cmd.Start())

	result := Teardown(cmd.Process, 500*time.Millisecond, 700*time.Millisecond, 500*time.Millisecond)
	assert.True(t, result.Exited)
	assert.Empty(t, result.Survived)
}

func TestTeardown_IgnoresSIGTERMThenDiesToSIGKILL(t *testing.T) {
	cmd := exec.Command("sh", "-c", "trap '' TERM; sleep 5")
	require.NoError(t, cmd.Start())

	start := time.Now()
	result := Teardown(cmd.Process, 50*time.Millisecond, 100*time.Millisecond, 2*time.Second)
	elapsed := time.Since(start)

	assert.True(t, result.Exited)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestTeardown_NilProcess(t *testing.T) {
	result := Teardown(nil, time.Millisecond, time.Millisecond, time.Millisecond)
	assert.True(t, result.Exited)
}
