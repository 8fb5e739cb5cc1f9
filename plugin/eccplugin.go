package plugin

import "github.com/sarchlab/dramsim/request"

// ECCConfig parameterizes the ECC plugin.
type ECCConfig struct {
	DataBlockSize    int // bytes
	EDCScheme        string
	ECCScheme        string
	BER              float64 // per-symbol bit error rate target
	MaxFailureProb   float64
	MaxECCSize       int // parity bytes, upper bound
}

// Payload is what the ECC plugin stores on request.Request.Payload. A real
// memory system would carry the actual data block here; this model
// synthesizes a deterministic stand-in so encode/verify/correct have
// something concrete to operate on in a timing simulation that never
// models data values.
type Payload struct {
	Data   []byte
	EDC    []byte
	Parity []byte
}

// ECCPlugin implements the controller's ECC/EDC pipeline stage: every write
// is encoded with an EDC code and ECC parity sized to the configured
// failure-probability target; every read is verified, falling back to ECC
// correction on an EDC mismatch.
type ECCPlugin struct {
	cfg ECCConfig
	edc EDC
	ecc ECC
	t   int
}

// NewECCPlugin resolves cfg's scheme names and precomputes the dynamic
// correction strength t. Returns an error if either scheme name is
// unrecognized.
func NewECCPlugin(cfg ECCConfig) (*ECCPlugin, error) {
	edc, err := NewEDC(cfg.EDCScheme)
	if err != nil {
		return nil, err
	}

	ecc, err := NewECC(cfg.ECCScheme)
	if err != nil {
		return nil, err
	}

	t := DynamicECCSize(cfg.DataBlockSize*8, cfg.BER, cfg.MaxFailureProb, cfg.MaxECCSize) / 2

	return &ECCPlugin{cfg: cfg, edc: edc, ecc: ecc, t: t}, nil
}

// Update implements plugin.Plugin.
func (p *ECCPlugin) Update(found bool, req *request.Request, clk int64, stats StatsRecorder) {
	if !found {
		return
	}

	switch {
	case req.TypeID == request.TypePartialWrite:
		p.partialWrite(req)
	case req.IsWrite():
		p.write(req)
	case req.IsRead():
		p.read(req, stats)
	}
}

func (p *ECCPlugin) syntheticData(req *request.Request) []byte {
	data := make([]byte, p.cfg.DataBlockSize)
	for i := range data {
		data[i] = byte(req.Addr) + byte(i)
	}

	return data
}

func (p *ECCPlugin) encode(data []byte) *Payload {
	return &Payload{
		Data:   data,
		EDC:    p.edc.Compute(data),
		Parity: p.ecc.Encode(data, p.t),
	}
}

func (p *ECCPlugin) write(req *request.Request) {
	req.Payload = p.encode(p.syntheticData(req))
}

func (p *ECCPlugin) read(req *request.Request, stats StatsRecorder) {
	payload, ok := req.Payload.(*Payload)
	if !ok {
		payload = p.encode(p.syntheticData(req))
		req.Payload = payload

		return
	}

	if p.edc.Verify(payload.Data, payload.EDC) {
		return
	}

	corrected, ok := p.ecc.Correct(payload.Data, payload.Parity, p.t)
	payload.Data = corrected

	if stats == nil {
		return
	}

	if ok {
		stats.Add("ecc_successes", 1)
	} else {
		stats.Add("ecc_failures", 1)
	}
}

// partialWrite recomputes EDC/parity over the whole block after splicing
// in the touched byte range, rather than encoding a fresh block from
// scratch, modeling the reference implementation's incremental
// recomputation on the write path.
func (p *ECCPlugin) partialWrite(req *request.Request) {
	payload, ok := req.Payload.(*Payload)
	if !ok {
		payload = &Payload{Data: p.syntheticData(req)}
	}

	offset, length := req.PartialWriteOffset, req.PartialWriteLen
	if offset < 0 {
		offset = 0
	}
	if offset+length > len(payload.Data) {
		length = len(payload.Data) - offset
	}

	for i := 0; i < length; i++ {
		payload.Data[offset+i] = byte(req.Addr) + byte(offset+i)
	}

	payload.EDC = p.edc.Compute(payload.Data)
	payload.Parity = p.ecc.Encode(payload.Data, p.t)
	req.Payload = payload
}
