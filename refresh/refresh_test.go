package refresh

import (
	"testing"

	"github.com/sarchlab/dramsim/request"
	"github.com/stretchr/testify/assert"
)

type fakeSender struct {
	sent []*request.Request
}

func (s *fakeSender) PrioritySend(req *request.Request) bool {
	s.sent = append(s.sent, req)

	return true
}

func TestAllBankFiresOncePerInterval(t *testing.T) {
	sender := &fakeSender{}
	mgr := NewAllBank(7800, 5, 5)

	for clk := int64(0); clk < 7800; clk++ {
		mgr.Tick(clk, sender)
	}
	assert.Empty(t, sender.sent)

	mgr.Tick(7800, sender)
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, []int{-1, -1, -1, -1, -1}, sender.sent[0].AddrVec)

	for clk := int64(7801); clk < 15600; clk++ {
		mgr.Tick(clk, sender)
	}
	assert.Len(t, sender.sent, 1)

	mgr.Tick(15600, sender)
	assert.Len(t, sender.sent, 2)
}

func TestPerBankRotatesThroughEveryBank(t *testing.T) {
	sender := &fakeSender{}
	mgr := NewPerBank(8000, 4, 6, 5, 3)

	for round := 0; round < 4; round++ {
		mgr.Tick(int64(2000*(round+1)), sender)
	}

	assert.Len(t, sender.sent, 4)
	for i, req := range sender.sent {
		assert.Equal(t, i, req.AddrVec[3], "rotation visits every bank index exactly once per full interval")
	}
}
