package sim

type directConnectionEnd struct {
	port    Port
	buf     []Msg
	bufSize int
	busy    bool
}

// DirectConnection connects two components without latency
type DirectConnection struct {
	*TickingComponent

	nextPortID int
	ports      []Port
	ends       map[Port]*directConnectionEnd
}

// PlugIn marks the port connects to this DirectConnection.
func (c *DirectConnection) PlugIn(port Port, sourceSideBufSize int) {
	c.Lock()
	defer c.Unlock()

	c.ports = append(c.ports, port)
	end := &directConnectionEnd{}
	end.port = port
	end.bufSize = sourceSideBufSize
	c.ends[port] = end

	port.SetConnection(c)
}

// Unplug marks the port no longer connects to this DirectConnection.
func (c *DirectConnection) Unplug(_ Port) {
	panic("not implemented")
}

// NotifyAvailable is called by a port to notify that the connection can
// deliver to the port again.
func (c *DirectConnection) NotifyAvailable(_ Port) {
	c.TickNow()
}

// NotifySend is called by a port to notify that it has a message ready to
// send.
func (c *DirectConnection) NotifySend() {
	c.TickNow()
}

func (c *DirectConnection) msgMustBeValid(msg Msg) {
	c.portMustNotBeNil(msg.Meta().Src)
	c.portMustNotBeNil(msg.Meta().Dst)
	c.portMustBeConnected(msg.Meta().Src)
	c.portMustBeConnected(msg.Meta().Dst)
	c.srcDstMustNotBeTheSame(msg)
}

func (c *DirectConnection) portMustNotBeNil(port RemotePort) {
	if port == "" {
		panic("src or dst is not given")
	}
}

func (c *DirectConnection) portMustBeConnected(port RemotePort) {
	for p := range c.ends {
		if p.AsRemote() == port {
			return
		}
	}

	panic("src or dst is not connected")
}

func (c *DirectConnection) srcDstMustNotBeTheSame(msg Msg) {
	if msg.Meta().Src == msg.Meta().Dst {
		panic("sending back to src")
	}
}

func (c *DirectConnection) findPort(remote RemotePort) Port {
	for p := range c.ends {
		if p.AsRemote() == remote {
			return p
		}
	}

	return nil
}

// Tick updates the states of the connection and delivers messages.
func (c *DirectConnection) Tick() bool {
	madeProgress := false

	for i := 0; i < len(c.ports); i++ {
		madeProgress = c.fetchOutgoing(c.ports[i]) || madeProgress
	}

	for i := 0; i < len(c.ports); i++ {
		portID := (i + c.nextPortID) % len(c.ports)
		port := c.ports[portID]
		end := c.ends[port]
		madeProgress = c.forwardMany(end) || madeProgress
	}

	if len(c.ports) > 0 {
		c.nextPortID = (c.nextPortID + 1) % len(c.ports)
	}

	return madeProgress
}

func (c *DirectConnection) fetchOutgoing(port Port) bool {
	msg := port.PeekOutgoing()
	if msg == nil {
		return false
	}

	c.msgMustBeValid(msg)

	end := c.ends[port]
	if len(end.buf) >= end.bufSize {
		end.busy = true
		return false
	}

	port.RetrieveOutgoing()
	msg.Meta().SendTime = c.CurrentTime()
	end.buf = append(end.buf, msg)

	return true
}

func (c *DirectConnection) forwardMany(end *directConnectionEnd) bool {
	madeProgress := false

	for len(end.buf) > 0 {
		head := end.buf[0]
		dst := c.findPort(head.Meta().Dst)

		head.Meta().RecvTime = c.CurrentTime()
		err := dst.Deliver(head)
		if err != nil {
			break
		}

		madeProgress = true
		end.buf = end.buf[1:]

		if end.busy {
			end.port.NotifyAvailable()
			end.busy = false
		}
	}

	return madeProgress
}

// NewDirectConnection creates a new DirectConnection object
func NewDirectConnection(
	name string,
	engine Engine,
	freq Freq,
) *DirectConnection {
	c := new(DirectConnection)
	c.TickingComponent = NewSecondaryTickingComponent(name, engine, freq, c)
	c.ends = make(map[Port]*directConnectionEnd)
	return c
}
