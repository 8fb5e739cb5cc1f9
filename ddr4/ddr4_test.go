package ddr4

import (
	"testing"

	"github.com/sarchlab/dramsim/dramdevice"
	"github.com/stretchr/testify/assert"
)

func testDevice() *dramdevice.Device {
	spec := New(Config{RanksPerChannel: 1, BankGroupsPerRank: 2, BanksPerBankGroup: 2})

	return dramdevice.New(spec)
}

func TestActivateThenReadRequiresRCD(t *testing.T) {
	dev := testDevice()
	addr := []int{0, 0, 0, 0, 5}

	dev.IssueCommand(CmdACT, addr, 0)

	assert.False(t, dev.CheckReady(CmdRD, addr, DefaultTRCD-1))
	assert.True(t, dev.CheckReady(CmdRD, addr, DefaultTRCD))
	assert.True(t, dev.CheckRowBufferHit(CmdRD, addr, DefaultTRCD))
}

func TestRowConflictRequiresPrecharge(t *testing.T) {
	dev := testDevice()
	openAddr := []int{0, 0, 0, 0, 5}
	dev.IssueCommand(CmdACT, openAddr, 0)

	conflict := []int{0, 0, 0, 0, 6}
	assert.False(t, dev.CheckRowBufferHit(CmdRD, conflict, 1))
	assert.True(t, dev.CheckNodeOpen(CmdRD, conflict, 1))
	assert.Equal(t, CmdACT, dev.GetPreqCommand(CmdRD, conflict, 1))
	assert.Equal(t, CmdPRE, dev.GetPreqCommand(CmdACT, conflict, 1))
}

func TestActivateToActivateSiblingBankUsesRRD(t *testing.T) {
	dev := testDevice()
	bank0 := []int{0, 0, 0, 0, 5}
	bank1 := []int{0, 0, 0, 1, 5}

	dev.IssueCommand(CmdACT, bank0, 10)

	assert.False(t, dev.CheckReady(CmdACT, bank1, int64(10+DefaultTRRD-1)))
	assert.True(t, dev.CheckReady(CmdACT, bank1, int64(10+DefaultTRRD)))
}

func TestPrechargeAllClosesEveryBank(t *testing.T) {
	dev := testDevice()
	bank0 := []int{0, 0, 0, 0, 5}
	bank1 := []int{0, 0, 1, 1, 5}

	dev.IssueCommand(CmdACT, bank0, 0)
	dev.IssueCommand(CmdACT, bank1, 0)

	broadcast := []int{0, 0, -1, -1, -1}
	dev.IssueCommand(CmdPREA, broadcast, 100)

	assert.False(t, dev.CheckNodeOpen(CmdRD, bank0, 101))
	assert.False(t, dev.CheckNodeOpen(CmdRD, bank1, 101))
}

func TestRefreshAllGatesActivateByRFC(t *testing.T) {
	dev := testDevice()
	broadcast := []int{0, 0, -1, -1, -1}

	dev.IssueCommand(CmdREFab, broadcast, 0)

	addr := []int{0, 0, 0, 0, 5}
	assert.False(t, dev.CheckReady(CmdACT, addr, DefaultTRFC-1))
	assert.True(t, dev.CheckReady(CmdACT, addr, DefaultTRFC))
}
