package main

import (
	"fmt"

	"github.com/sarchlab/dramsim/config"
	"github.com/sarchlab/dramsim/ddr4"
	"github.com/sarchlab/dramsim/devicespec"
	"github.com/sarchlab/dramsim/dram"
	"github.com/sarchlab/dramsim/dramdevice"
	"github.com/sarchlab/dramsim/frontend"
	"github.com/sarchlab/dramsim/plugin"
	"github.com/sarchlab/dramsim/refresh"
	"github.com/sarchlab/dramsim/rowpolicy"
	"github.com/sarchlab/dramsim/scheduler"
	"github.com/sarchlab/dramsim/sim"
	"github.com/sarchlab/dramsim/sim/hooking"
	"github.com/sarchlab/dramsim/statsserver"
)

// tickingFrontEnd is what build needs beyond frontend.FrontEnd: the two
// trace-replaying front-ends drive themselves with their own Tick, rather
// than through the engine's event loop, the same way the controller and
// connection do in every component-level test in this repository.
type tickingFrontEnd interface {
	frontend.FrontEnd
	sim.Ticker
}

// simulation bundles every piece run needs to drive and tear down.
type simulation struct {
	engine sim.Engine
	conn   *sim.DirectConnection
	ctrl   *dram.Comp
	dev    *dramdevice.Device
	front  tickingFrontEnd

	statsServer *statsserver.Server
	traceDB     *hooking.SQLiteBackend

	busyTracer *hooking.BusyTimeTracer
	avgTracer  *hooking.TotalAvgTimeTracer
}

func buildSimulation(reg *config.Registry) (*simulation, error) {
	engine := sim.NewSerialEngine()

	dev, layout, err := buildDevice(reg.Section("device"))
	if err != nil {
		return nil, err
	}

	ctrlCfg, err := buildControllerConfig(reg.Section("controller"))
	if err != nil {
		return nil, err
	}

	sched, err := buildScheduler(reg.Section("scheduler"))
	if err != nil {
		return nil, err
	}

	refresher, err := buildRefresh(reg.Section("refresh"), layout)
	if err != nil {
		return nil, err
	}

	rp, err := buildRowPolicy(reg.Section("row_policy"))
	if err != nil {
		return nil, err
	}

	pipeline, err := buildPlugins(reg.Section("ecc"))
	if err != nil {
		return nil, err
	}

	ctrl := dram.NewComp(
		"MemCtrl", engine, 1*sim.GHz, dev, sched, refresher, rp, pipeline, ctrlCfg,
	)

	front, err := buildFrontEnd(reg.Section("frontend"), engine, ctrl)
	if err != nil {
		return nil, err
	}

	conn := sim.NewDirectConnection("Conn", engine, 1*sim.GHz)
	conn.PlugIn(frontEndPort(front), 8)
	conn.PlugIn(ctrl.TopPort(), 8)

	s := &simulation{engine: engine, conn: conn, ctrl: ctrl, dev: dev, front: front}

	if err := wireStats(s, reg.Section("stats")); err != nil {
		return nil, err
	}

	return s, nil
}

func buildDevice(reg *config.Registry) (*dramdevice.Device, *ddrBankLayout, error) {
	ranksPerChannel, err := reg.Param("ranks_per_channel").
		Desc("Number of ranks per channel.").Default(1).Int()
	if err != nil {
		return nil, nil, err
	}

	bankGroupsPerRank, err := reg.Param("bank_groups_per_rank").
		Desc("Number of bank groups per rank.").Default(4).Int()
	if err != nil {
		return nil, nil, err
	}

	banksPerBankGroup, err := reg.Param("banks_per_bank_group").
		Desc("Number of banks per bank group.").Default(4).Int()
	if err != nil {
		return nil, nil, err
	}

	power, err := reg.Param("power").
		Desc("Enable the power-model callback walk.").Default(false).Bool()
	if err != nil {
		return nil, nil, err
	}

	cfg := ddr4.Config{
		RanksPerChannel:   ranksPerChannel,
		BankGroupsPerRank: bankGroupsPerRank,
		BanksPerBankGroup: banksPerBankGroup,
		Power:             power,
	}
	if power {
		cfg.Stats = &ddr4.PowerStats{}
	}

	spec := ddr4.New(cfg)
	dev := dramdevice.New(spec)

	layout := &ddrBankLayout{
		spec:     spec,
		// Per-bank refresh rotates the bank slot only; ranks and bank
		// groups are broadcast, so the rotation spans one bank group's banks.
		numBanks: banksPerBankGroup,
	}

	return dev, layout, nil
}

// ddrBankLayout carries the bits of the built spec a refresh manager needs
// to size itself, without making the refresh builder re-derive bank counts
// from the device.
type ddrBankLayout struct {
	spec     *devicespec.Spec
	numBanks int
}

func buildControllerConfig(reg *config.Registry) (dram.Config, error) {
	activeBufSize, err := reg.Param("active_buf_size").Desc("Active buffer capacity.").Default(0).Int()
	if err != nil {
		return dram.Config{}, err
	}

	priorityBufSize, err := reg.Param("priority_buf_size").Desc("Priority buffer capacity.").Default(0).Int()
	if err != nil {
		return dram.Config{}, err
	}

	readBufSize, err := reg.Param("read_buf_size").Desc("Read buffer capacity.").Default(0).Int()
	if err != nil {
		return dram.Config{}, err
	}

	writeBufSize, err := reg.Param("write_buf_size").Desc("Write buffer capacity.").Default(0).Int()
	if err != nil {
		return dram.Config{}, err
	}

	lowWatermark, err := reg.Param("write_low_watermark").
		Desc("Write-buffer fill ratio below which write mode exits.").Default(0.0).Float64()
	if err != nil {
		return dram.Config{}, err
	}

	highWatermark, err := reg.Param("write_high_watermark").
		Desc("Write-buffer fill ratio at or above which write mode enters.").Default(0.0).Float64()
	if err != nil {
		return dram.Config{}, err
	}

	return dram.Config{
		ActiveBufSize:      activeBufSize,
		PriorityBufSize:    priorityBufSize,
		ReadBufSize:        readBufSize,
		WriteBufSize:       writeBufSize,
		WriteLowWatermark:  lowWatermark,
		WriteHighWatermark: highWatermark,
	}, nil
}

func buildScheduler(reg *config.Registry) (scheduler.Scheduler, error) {
	kind, err := reg.Param("kind").
		Desc("Request scheduler: frfcfs.").Default("frfcfs").String()
	if err != nil {
		return nil, err
	}

	switch kind {
	case "frfcfs":
		return scheduler.NewFRFCFS(), nil
	default:
		return nil, &config.Error{
			Path:   "scheduler.kind",
			Reason: fmt.Sprintf("unknown scheduler %q", kind),
		}
	}
}

func buildRefresh(reg *config.Registry, layout *ddrBankLayout) (refresh.Manager, error) {
	kind, err := reg.Param("kind").
		Desc("Refresh manager: all_bank or per_bank.").Default("all_bank").String()
	if err != nil {
		return nil, err
	}

	interval, err := reg.Param("interval").
		Desc("Refresh interval, in cycles.").Default(7800).Int64()
	if err != nil {
		return nil, err
	}

	addrVecLen := len(layout.spec.LevelSize) + 1

	switch kind {
	case "all_bank":
		return refresh.NewAllBank(interval, ddr4.CmdREFab, addrVecLen), nil
	case "per_bank":
		return refresh.NewPerBank(interval, layout.numBanks, ddr4.CmdREFsb, addrVecLen, ddr4.LevelBank), nil
	default:
		return nil, &config.Error{Path: "refresh.kind", Reason: fmt.Sprintf("unknown refresh manager %q", kind)}
	}
}

func buildRowPolicy(reg *config.Registry) (rowpolicy.Policy, error) {
	kind, err := reg.Param("kind").
		Desc("Row policy: open_page, closed_page, or timeout.").Default("open_page").String()
	if err != nil {
		return nil, err
	}

	switch kind {
	case "open_page":
		return rowpolicy.OpenPage{}, nil
	case "closed_page":
		return rowpolicy.ClosedPage{}, nil
	case "timeout":
		cycles, err := reg.Param("timeout_cycles").
			Desc("Cycles an open row may idle before timeout row policy closes it.").
			Default(int64(100)).Int64()
		if err != nil {
			return nil, err
		}

		return rowpolicy.Timeout{Cycles: cycles}, nil
	default:
		return nil, &config.Error{Path: "row_policy.kind", Reason: fmt.Sprintf("unknown row policy %q", kind)}
	}
}

func buildPlugins(reg *config.Registry) (plugin.Pipeline, error) {
	enabled, err := reg.Param("enabled").
		Desc("Enable the ECC/EDC plugin.").Default(false).Bool()
	if err != nil || !enabled {
		return plugin.Pipeline{}, err
	}

	dataBlockSize, err := reg.Param("data_block_size").
		Desc("Data block size, in bytes, the ECC plugin operates over.").Default(64).Int()
	if err != nil {
		return plugin.Pipeline{}, err
	}

	edcScheme, err := reg.Param("edc_scheme").
		Desc("EDC scheme: checksum or crc32.").Default("crc32").String()
	if err != nil {
		return plugin.Pipeline{}, err
	}

	eccScheme, err := reg.Param("ecc_scheme").
		Desc("ECC scheme: hamming or parity-rs.").Default("hamming").String()
	if err != nil {
		return plugin.Pipeline{}, err
	}

	ber, err := reg.Param("ber").
		Desc("Target per-symbol bit error rate.").Default(1e-9).Float64()
	if err != nil {
		return plugin.Pipeline{}, err
	}

	maxFailureProb, err := reg.Param("max_failure_prob").
		Desc("Target maximum silent-failure probability.").Default(1e-12).Float64()
	if err != nil {
		return plugin.Pipeline{}, err
	}

	maxECCSize, err := reg.Param("max_ecc_size").
		Desc("Upper bound on ECC parity size, in bytes.").Default(16).Int()
	if err != nil {
		return plugin.Pipeline{}, err
	}

	eccPlugin, err := plugin.NewECCPlugin(plugin.ECCConfig{
		DataBlockSize:  dataBlockSize,
		EDCScheme:      edcScheme,
		ECCScheme:      eccScheme,
		BER:            ber,
		MaxFailureProb: maxFailureProb,
		MaxECCSize:     maxECCSize,
	})
	if err != nil {
		return plugin.Pipeline{}, &config.Error{Path: "ecc", Reason: err.Error()}
	}

	return plugin.Pipeline{Plugins: []plugin.Plugin{eccPlugin}}, nil
}

func buildFrontEnd(reg *config.Registry, engine sim.Engine, ctrl *dram.Comp) (tickingFrontEnd, error) {
	kind, err := reg.Param("kind").
		Desc("Front-end kind: loadstore or readwrite.").Default("loadstore").String()
	if err != nil {
		return nil, err
	}

	switch kind {
	case "loadstore":
		return frontend.NewLoadStoreTrace("Front", engine, 1*sim.GHz, ctrl.TopPort().AsRemote(), reg)
	case "readwrite":
		return frontend.NewReadWriteTrace("Front", engine, 1*sim.GHz, ctrl.TopPort().AsRemote(), reg)
	default:
		return nil, &config.Error{Path: "frontend.kind", Reason: fmt.Sprintf("unknown front-end %q", kind)}
	}
}

func frontEndPort(front tickingFrontEnd) sim.Port {
	return front.GetPortByName("Top")
}

func wireStats(s *simulation, reg *config.Registry) error {
	httpPort, err := reg.Param("http_port").
		Desc("TCP port to serve live stats JSON on, 0 to disable.").Default(0).Int()
	if err != nil {
		return err
	}

	if httpPort != 0 {
		s.statsServer = statsserver.New(httpPort)
		s.statsServer.Register("channel0", s.ctrl.Stats())
		s.statsServer.RegisterInspectable("controller", s.ctrl)
		s.statsServer.RegisterInspectable("device", s.dev)

		if err := s.statsServer.Start(); err != nil {
			return err
		}
	}

	traceDB, err := reg.Param("trace_db").
		Desc("Path to a SQLite database to persist per-request traces into, empty to disable.").
		Default("").String()
	if err != nil {
		return err
	}

	if traceDB != "" {
		s.traceDB = hooking.NewSQLiteBackend(traceDB)
		s.traceDB.Init()

		tracer := hooking.NewDBTracer(engineTimeTeller{s.engine}, s.traceDB)
		s.ctrl.AcceptTaskHook(tracer)
	}

	acceptAllTasks := func(hooking.TaskStart) bool { return true }

	s.busyTracer = hooking.NewBusyTimeTracer(engineTimeTeller{s.engine}, acceptAllTasks)
	s.ctrl.AcceptTaskHook(s.busyTracer)

	s.avgTracer = hooking.NewAverageTimeTracer(engineTimeTeller{s.engine}, acceptAllTasks)
	s.ctrl.AcceptTaskHook(s.avgTracer)

	return nil
}

type engineTimeTeller struct {
	engine sim.Engine
}

func (t engineTimeTeller) Now() float64 {
	return float64(t.engine.CurrentTime())
}
