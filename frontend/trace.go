package frontend

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// loadStoreEntry is one line of a Load/Store trace: a flat address and
// whether it is a store.
type loadStoreEntry struct {
	isWrite bool
	addr    int64
}

// parseLoadStoreTrace parses a "LD <addr>"/"ST <addr>" per-line trace file,
// <addr> decimal or 0x/0X-prefixed hex, mirroring
// LoadStoreTrace::init_trace.
func parseLoadStoreTrace(path string) ([]loadStoreEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace %s does not exist: %w", path, err)
	}
	defer f.Close()

	var entries []loadStoreEntry
	scanner := bufio.NewScanner(f)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		if len(tokens) != 2 {
			return nil, fmt.Errorf("trace %s line %d: format invalid", path, lineNo)
		}

		var isWrite bool
		switch tokens[0] {
		case "LD":
			isWrite = false
		case "ST":
			isWrite = true
		default:
			return nil, fmt.Errorf("trace %s line %d: format invalid", path, lineNo)
		}

		addr, err := parseAddr(tokens[1])
		if err != nil {
			return nil, fmt.Errorf("trace %s line %d: %w", path, lineNo, err)
		}

		entries = append(entries, loadStoreEntry{isWrite: isWrite, addr: addr})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("trace %s: %w", path, err)
	}

	return entries, nil
}

func parseAddr(tok string) (int64, error) {
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		return strconv.ParseInt(tok[2:], 16, 64)
	}

	return strconv.ParseInt(tok, 10, 64)
}

// formatLoadStoreTrace renders entries back into the "LD <addr>"/"ST <addr>"
// grammar parseLoadStoreTrace reads, one line per entry, addresses in
// decimal. Round-tripping a trace written in decimal through parse then
// format reproduces the original file byte-for-byte modulo whitespace.
func formatLoadStoreTrace(entries []loadStoreEntry) string {
	var b strings.Builder

	for _, e := range entries {
		op := "LD"
		if e.isWrite {
			op = "ST"
		}

		fmt.Fprintf(&b, "%s %d\n", op, e.addr)
	}

	return b.String()
}

// readWriteEntry is one line of a Read/Write trace: a decoded address
// vector and whether it is a write.
type readWriteEntry struct {
	isWrite bool
	addrVec []int
}

// parseReadWriteTrace parses a "R <a0,a1,...>"/"W <a0,a1,...>" per-line
// trace file, mirroring ReadWriteTrace::init_trace.
func parseReadWriteTrace(path string) ([]readWriteEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace %s does not exist: %w", path, err)
	}
	defer f.Close()

	var entries []readWriteEntry
	scanner := bufio.NewScanner(f)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		if len(tokens) != 2 {
			return nil, fmt.Errorf("trace %s line %d: format invalid", path, lineNo)
		}

		var isWrite bool
		switch tokens[0] {
		case "R":
			isWrite = false
		case "W":
			isWrite = true
		default:
			return nil, fmt.Errorf("trace %s line %d: format invalid", path, lineNo)
		}

		addrTokens := strings.Split(tokens[1], ",")
		addrVec := make([]int, len(addrTokens))
		for i, at := range addrTokens {
			v, err := strconv.Atoi(at)
			if err != nil {
				return nil, fmt.Errorf("trace %s line %d: %w", path, lineNo, err)
			}
			addrVec[i] = v
		}

		entries = append(entries, readWriteEntry{isWrite: isWrite, addrVec: addrVec})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("trace %s: %w", path, err)
	}

	return entries, nil
}

// formatReadWriteTrace renders entries back into the "R <a0,a1,...>"/
// "W <a0,a1,...>" grammar parseReadWriteTrace reads.
func formatReadWriteTrace(entries []readWriteEntry) string {
	var b strings.Builder

	for _, e := range entries {
		op := "R"
		if e.isWrite {
			op = "W"
		}

		addrTokens := make([]string, len(e.addrVec))
		for i, v := range e.addrVec {
			addrTokens[i] = strconv.Itoa(v)
		}

		fmt.Fprintf(&b, "%s %s\n", op, strings.Join(addrTokens, ","))
	}

	return b.String()
}
