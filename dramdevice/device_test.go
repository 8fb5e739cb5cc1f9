package dramdevice

import (
	"testing"

	"github.com/sarchlab/dramsim/devicespec"
	"github.com/stretchr/testify/assert"
)

const (
	cmdACT = 0
	cmdRD  = 1
)

func buildTestSpec() *devicespec.Spec {
	spec := &devicespec.Spec{
		Levels:       []string{"bank"},
		LevelSize:    []int{1},
		Commands:     []string{"ACT", "RD"},
		CommandScope: []int{0, 0},
		InitState:    []int{0},
		RowLevel:     0,
	}

	spec.Actions = [][]devicespec.ActionFunc{make([]devicespec.ActionFunc, 2)}
	spec.Preqs = [][]devicespec.PreqFunc{make([]devicespec.PreqFunc, 2)}
	spec.RowHits = [][]devicespec.RowHitFunc{make([]devicespec.RowHitFunc, 2)}
	spec.RowOpens = [][]devicespec.RowOpenFunc{make([]devicespec.RowOpenFunc, 2)}
	spec.Powers = [][]devicespec.PowerFunc{make([]devicespec.PowerFunc, 2)}
	spec.TimingTable = [][][]devicespec.TimingConstraint{make([][]devicespec.TimingConstraint, 2)}

	spec.Actions[0][cmdACT] = func(node devicespec.NodeView, cmd, targetID int, clk int64) {
		node.SetRowState(targetID)
	}
	spec.TimingTable[0][cmdACT] = []devicespec.TimingConstraint{
		{ReadyCmd: cmdRD, Window: 1, Val: 9},
	}

	return spec
}

func TestDeviceIssueCommandGatesFollowOnTiming(t *testing.T) {
	dev := New(buildTestSpec())
	addr := []int{0, 3}

	dev.IssueCommand(cmdACT, addr, 0)

	assert.False(t, dev.CheckReady(cmdRD, addr, 5))
	assert.True(t, dev.CheckReady(cmdRD, addr, 9))
}

func TestDeviceGetLevelSize(t *testing.T) {
	dev := New(buildTestSpec())
	assert.Equal(t, 1, dev.GetLevelSize(0))
	assert.Equal(t, 0, dev.GetLevelSize(5))
}

func TestDeviceNotify(t *testing.T) {
	dev := New(buildTestSpec())
	_, ok := dev.Notification("refresh_mode")
	assert.False(t, ok)

	dev.Notify("refresh_mode", "per_bank")
	v, ok := dev.Notification("refresh_mode")
	assert.True(t, ok)
	assert.Equal(t, "per_bank", v)
}
