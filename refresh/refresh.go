// Package refresh implements the refresh pressure a DRAM controller must
// inject on a schedule, independent of any pending traffic.
package refresh

import "github.com/sarchlab/dramsim/request"

// PrioritySender is the slice of a controller a refresh manager needs: a
// place to push synthesized maintenance requests ahead of ordinary traffic.
type PrioritySender interface {
	PrioritySend(req *request.Request) bool
}

// Manager is ticked once per controller cycle and decides whether refresh
// pressure is due.
type Manager interface {
	Tick(clk int64, sender PrioritySender)
}

func broadcastVec(length, fixedSlot, fixedValue int) []int {
	vec := make([]int, length)
	for i := range vec {
		vec[i] = -1
	}
	if fixedSlot >= 0 {
		vec[fixedSlot] = fixedValue
	}

	return vec
}

func refreshRequest(addrVec []int, command int, clk int64) *request.Request {
	req := request.NewFromAddrVec(addrVec, request.TypeCount)
	req.Command = command
	req.FinalCommand = command
	req.Arrive = request.Clk(clk)

	return req
}

// AllBank refreshes every bank of a channel in one go (an REFab-equivalent
// command, broadcast via an all -1 address vector) on a fixed interval.
type AllBank struct {
	Interval   int64
	Command    int
	AddrVecLen int

	next int64
}

// NewAllBank constructs an all-bank refresh manager. The first refresh is
// due at clock interval.
func NewAllBank(interval int64, command, addrVecLen int) *AllBank {
	return &AllBank{Interval: interval, Command: command, AddrVecLen: addrVecLen, next: interval}
}

// Tick implements Manager.
func (m *AllBank) Tick(clk int64, sender PrioritySender) {
	if clk < m.next {
		return
	}

	sender.PrioritySend(refreshRequest(broadcastVec(m.AddrVecLen, -1, 0), m.Command, clk))
	m.next += m.Interval
}

// PerBank rotates through every bank index, refreshing one bank (across all
// bank groups and ranks, via an REFsb-equivalent command) per sub-interval,
// cycling through all banks once per full Interval.
type PerBank struct {
	Interval   int64
	NumBanks   int
	Command    int
	AddrVecLen int
	// BankSlot is the address vector index the bank level occupies.
	BankSlot int

	next    int64
	bankIdx int
}

// NewPerBank constructs a per-bank rotation refresh manager.
func NewPerBank(interval int64, numBanks, command, addrVecLen, bankSlot int) *PerBank {
	sub := interval / int64(numBanks)

	return &PerBank{
		Interval:   interval,
		NumBanks:   numBanks,
		Command:    command,
		AddrVecLen: addrVecLen,
		BankSlot:   bankSlot,
		next:       sub,
	}
}

// Tick implements Manager.
func (m *PerBank) Tick(clk int64, sender PrioritySender) {
	if clk < m.next {
		return
	}

	sender.PrioritySend(refreshRequest(broadcastVec(m.AddrVecLen, m.BankSlot, m.bankIdx), m.Command, clk))

	m.bankIdx = (m.bankIdx + 1) % m.NumBanks
	m.next += m.Interval / int64(m.NumBanks)
}
