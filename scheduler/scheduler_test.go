package scheduler

import (
	"testing"

	"github.com/sarchlab/dramsim/ddr4"
	"github.com/sarchlab/dramsim/dramdevice"
	"github.com/sarchlab/dramsim/request"
	"github.com/stretchr/testify/assert"
)

func newDevice() *dramdevice.Device {
	spec := ddr4.New(ddr4.Config{RanksPerChannel: 1, BankGroupsPerRank: 1, BanksPerBankGroup: 2})

	return dramdevice.New(spec)
}

func TestFRFCFSPrefersReadyOverEarlierArrival(t *testing.T) {
	dev := newDevice()
	dev.IssueCommand(ddr4.CmdACT, []int{0, 0, 0, 0, 5}, 0)

	sched := NewFRFCFS()
	buf := request.NewBuffer(8)

	// bank0's row is open but still inside t_RCD: its RD is not yet ready.
	stillWaitingOnRCD := request.NewFromAddrVec([]int{0, 0, 0, 0, 5}, request.TypeRead)
	stillWaitingOnRCD.FinalCommand = ddr4.CmdRD
	stillWaitingOnRCD.Arrive = 0
	buf.Enqueue(stillWaitingOnRCD)

	// bank1's row is closed; its ACT is ready once the sibling tRRD window
	// from bank0's ACT has passed, even though this request arrived later.
	readyViaACT := request.NewFromAddrVec([]int{0, 0, 0, 1, 9}, request.TypeRead)
	readyViaACT.FinalCommand = ddr4.CmdRD
	readyViaACT.Arrive = 5
	buf.Enqueue(readyViaACT)

	best := sched.GetBestRequest(buf, dev, ddr4.DefaultTRRD)

	assert.Same(t, readyViaACT, best)
	assert.Equal(t, ddr4.CmdACT, best.Command)
}

func TestFRFCFSFallsBackToFCFSAmongReadyRequests(t *testing.T) {
	dev := newDevice()
	sched := NewFRFCFS()
	buf := request.NewBuffer(8)

	later := request.NewFromAddrVec([]int{0, 0, 0, 0, 5}, request.TypeRead)
	later.FinalCommand = ddr4.CmdACT
	later.Arrive = 10
	buf.Enqueue(later)

	earlier := request.NewFromAddrVec([]int{0, 0, 0, 1, 5}, request.TypeRead)
	earlier.FinalCommand = ddr4.CmdACT
	earlier.Arrive = 3
	buf.Enqueue(earlier)

	best := sched.GetBestRequest(buf, dev, 0)

	assert.Same(t, earlier, best)
}
