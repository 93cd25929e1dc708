// Package config parses the simulator's input script: the six resource
// parameter lines, initial register/memory values, and the program of
// MIPS-like instructions (spec.md §6). It is the one place allowed to
// fail at startup — every error returned here is fatal before any cycle
// runs (spec.md §7's Configuration/Initialization/Decode taxonomy).
//
// Grounded on original_source/lib/helpers.py's getParameters, and in
// shape on _examples/syifan-m2sim2/timing/latency/config.go's
// LoadConfig/Validate pattern of returning a fully-populated struct or a
// wrapped error.
package config

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/sarchlab/tomasim/core"
)

// Config is everything a Simulator needs to start a run.
type Config struct {
	Machine core.MachineConfig
	ARF     *core.ARF
	Memory  *core.Memory
	Program core.Program
}

var (
	memInitRe = regexp.MustCompile(`^MEM\[\s*(-?\d+)\s*\]\s*=\s*(-?\d+(?:\.\d+)?)$`)
	regInitRe = regexp.MustCompile(`^([A-Za-z])(\d+)\s*=\s*(-?\d+(?:\.\d+)?)$`)
	offsetRe  = regexp.MustCompile(`^(-?\d+)\((\w+)\)$`)
)

// Load reads and parses the input file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)

	if !sc.Scan() {
		return nil, fmt.Errorf("config: %s is empty, expected a header line", path)
	}

	machine, err := parseMachineConfig(sc)
	if err != nil {
		return nil, err
	}

	arf := core.NewARF()
	mem := core.NewMemory()

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			break
		}
		if err := parseInitializerLine(line, arf, mem); err != nil {
			return nil, err
		}
	}

	var program core.Program
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		inst, err := parseInstruction(line)
		if err != nil {
			return nil, fmt.Errorf("config: instruction line %d: %w", lineNo, err)
		}
		program = append(program, inst)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if len(program) == 0 {
		return nil, fmt.Errorf("config: %s contains no instructions", path)
	}

	return &Config{Machine: machine, ARF: arf, Memory: mem, Program: program}, nil
}

// parseMachineConfig reads the six parameter lines, in the fixed order
// IntegerAdder, FPAdder, FPMultiplier, LoadStoreUnit, ROBEntries,
// CDBBufferEntries (spec.md §6.2).
func parseMachineConfig(sc *bufio.Scanner) (core.MachineConfig, error) {
	var cfg core.MachineConfig
	var err error

	if cfg.IntegerAdder, err = nextUnitLine(sc, "IntegerAdder"); err != nil {
		return cfg, err
	}
	if cfg.FPAdder, err = nextUnitLine(sc, "FPAdder"); err != nil {
		return cfg, err
	}
	if cfg.FPMultiplier, err = nextUnitLine(sc, "FPMultiplier"); err != nil {
		return cfg, err
	}
	if cfg.LoadStoreUnit, err = nextUnitLine(sc, "LoadStoreUnit"); err != nil {
		return cfg, err
	}
	if cfg.ROBEntries, err = nextIntLine(sc, "ROBEntries"); err != nil {
		return cfg, err
	}
	if cfg.CheckpointSlots, err = nextIntLine(sc, "CDBBufferEntries"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func nextUnitLine(sc *bufio.Scanner, name string) (core.UnitConfig, error) {
	if !sc.Scan() {
		return core.UnitConfig{}, fmt.Errorf("config: missing %s parameter line", name)
	}
	fields := strings.Fields(sc.Text())
	if len(fields) < 3 {
		return core.UnitConfig{}, fmt.Errorf("config: %s line has too few fields: %q", name, sc.Text())
	}
	tail := fields[len(fields)-3:]

	rsSize, err := strconv.Atoi(tail[0])
	if err != nil {
		return core.UnitConfig{}, fmt.Errorf("config: %s reservation-station size: %w", name, err)
	}
	latency, err := strconv.ParseUint(tail[1], 10, 64)
	if err != nil {
		return core.UnitConfig{}, fmt.Errorf("config: %s latency: %w", name, err)
	}
	count, err := strconv.Atoi(tail[2])
	if err != nil {
		return core.UnitConfig{}, fmt.Errorf("config: %s count: %w", name, err)
	}
	return core.UnitConfig{RSSize: rsSize, Latency: latency, Count: count}, nil
}

func nextIntLine(sc *bufio.Scanner, name string) (int, error) {
	if !sc.Scan() {
		return 0, fmt.Errorf("config: missing %s parameter line", name)
	}
	fields := strings.Fields(sc.Text())
	if len(fields) == 0 {
		return 0, fmt.Errorf("config: %s line is empty", name)
	}
	v, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, fmt.Errorf("config: %s value: %w", name, err)
	}
	return v, nil
}

// parseInitializerLine handles one comma-separated MEM[...] or register
// initializer line (spec.md §6.3).
func parseInitializerLine(line string, arf *core.ARF, mem *core.Memory) error {
	isMem := len(line) > 0 && (line[0] == 'M' || line[0] == 'm')
	for _, raw := range strings.Split(line, ",") {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if isMem {
			if err := parseMemInit(entry, mem); err != nil {
				return err
			}
			continue
		}
		if err := parseRegInit(entry, arf); err != nil {
			return err
		}
	}
	return nil
}

func parseMemInit(entry string, mem *core.Memory) error {
	m := memInitRe.FindStringSubmatch(entry)
	if m == nil {
		return fmt.Errorf("config: malformed memory initializer %q", entry)
	}
	addr, _ := strconv.ParseInt(m[1], 10, 64)
	addr = reinterpretAddress(addr)

	if strings.Contains(m[2], ".") {
		v, _ := strconv.ParseFloat(m[2], 64)
		if err := mem.WriteFloat(addr, v); err != nil {
			return fmt.Errorf("config: memory initializer %q: %w", entry, err)
		}
		return nil
	}
	v, _ := strconv.ParseInt(m[2], 10, 64)
	if err := mem.WriteInt(addr, v); err != nil {
		return fmt.Errorf("config: memory initializer %q: %w", entry, err)
	}
	return nil
}

// reinterpretAddress multiplies a word-aligned address by 4 so that
// word-indexed and byte-indexed initializer files both work (spec.md
// §6.3), matching original_source/lib/helpers.py's "if not (addr % 4):
// addr = 4*addr".
func reinterpretAddress(addr int64) int64 {
	if addr%4 == 0 {
		return addr * 4
	}
	return addr
}

func parseRegInit(entry string, arf *core.ARF) error {
	m := regInitRe.FindStringSubmatch(entry)
	if m == nil {
		return fmt.Errorf("config: malformed register initializer %q", entry)
	}
	kind := strings.ToUpper(m[1])
	name := kind + m[2]

	switch kind {
	case "R":
		v, _ := strconv.ParseInt(m[3], 10, 64)
		if name == "R0" {
			if v != 0 {
				return fmt.Errorf("config: R0 must be initialized to 0, got %s", m[3])
			}
			return nil
		}
		if err := arf.WriteInt(name, v); err != nil {
			return fmt.Errorf("config: register initializer %q: %w", entry, err)
		}
	case "F":
		v, _ := strconv.ParseFloat(m[3], 64)
		if name == "F0" {
			if v != 0 {
				return fmt.Errorf("config: F0 must be initialized to 0, got %s", m[3])
			}
			return nil
		}
		if err := arf.WriteFloat(name, v); err != nil {
			return fmt.Errorf("config: register initializer %q: %w", entry, err)
		}
	default:
		return fmt.Errorf("config: unknown register kind in initializer %q", entry)
	}
	return nil
}
