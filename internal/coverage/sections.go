package coverage

import (
	"debug/elf"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Section names of the three in-binary LLVM source-based-coverage mapping.
// regions plus the live counters region. __llvm_prf_data is not read.
const (
	sectionCovMap   = "__llvm_covmap"
	sectionCovFun   = "__llvm_covfun"
	sectionPrfNames = "__llvm_prf_names"
	sectionPrfCnts  = "__llvm_prf_cnts"
)

// Sections holds the static (on-disk) coverage mapping regions plus a live.
// view over the mutable counters region, mmap'd directly from process.
// memory so writes from compiler-generated instrumentation and from.
// Sensor.Clear are visible without an intervening copy.
type Sections struct {
	CovMap   []byte
	CovFun   []byte
	PrfNames []byte
	Counters []uint64

	countersMapping []byte
}

// Close unmaps the live counters region. Call once the sensor is done.
func (s *Sections) Close() error {
	if s.countersMapping == nil {
		return nil
	}

	err := unix.Munmap(s.countersMapping)
	s.countersMapping = nil

	return err
}

// Locate opens the current executable, finds the four coverage sections by.
// name, reads the three static regions off disk, and maps the counters.
// region directly over its live virtual address so in-place zeroing.
// (Sensor.Clear) and instrumentation writes observe each other.
func Locate() (*Sections, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("coverage: could not read current executable: %w", err)
	}

	f, err := elf.Open(exe)
	if err != nil {
		return nil, fmt.Errorf("coverage: could not open %s as ELF: %w", exe, err)
	}
	defer f.Close()

	covmap, err := readStaticSection(f, sectionCovMap)
	if err != nil {
		return nil, err
	}

	covfun, err := readStaticSection(f, sectionCovFun)
	if err != nil {
		return nil, err
	}

	prfNames, err := readStaticSection(f, sectionPrfNames)
	if err != nil {
		return nil, err
	}

	cntsSection := f.Section(sectionPrfCnts)
	if cntsSection == nil {
		return nil, fmt.Errorf("coverage: missing required section %s", sectionPrfCnts)
	}

	counters, mapping, err := mapLiveCounters(exe, cntsSection)
	if err != nil {
		return nil, err
	}

	return &Sections{
		CovMap:          covmap,
		CovFun:          covfun,
		PrfNames:        prfNames,
		Counters:        counters,
		countersMapping: mapping,
	}, nil
}

func readStaticSection(f *elf.File, name string) ([]byte, error) {
	sec := f.Section(name)
	if sec == nil {
		return nil, fmt.Errorf("coverage: missing required section %s", name)
	}

	data, err := sec.Data()
	if err != nil {
		return nil, fmt.Errorf("coverage: could not read section %s: %w", name, err)
	}

	return data, nil
}

// mapLiveCounters mmaps the page(s) backing sec's virtual address range out.
// of this process's own memory, so the returned []uint64 aliases the actual.
// instrumentation counters rather than a point-in-time snapshot.
func mapLiveCounters(exe string, sec *elf.Section) ([]uint64, []byte, error) {
	bias, err := loadBias(exe)
	if err != nil {
		return nil, nil, err
	}

	addr := int64(bias + sec.Addr)
	size := int(sec.Size)

	if size == 0 {
		return nil, nil, nil
	}

	memFile, err := os.OpenFile("/proc/self/mem", os.O_RDWR, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("coverage: could not open /proc/self/mem: %w", err)
	}
	defer memFile.Close()

	mapping, err := unix.Mmap(int(memFile.Fd()), addr, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("coverage: could not map counters region at 0x%x: %w", addr, err)
	}

	counters := unsafe.Slice((*uint64)(unsafe.Pointer(&mapping[0])), size/8)

	return counters, mapping, nil
}

// loadBias approximates a PIE executable's load bias as the start address.
// of its first /proc/self/maps mapping.
//
// TODO: derive the bias from the ELF program headers' lowest PT_LOAD
// p_vaddr instead of assuming the first mapping is it; this is wrong for
// any loader that maps auxiliary segments (e.g. the interpreter) first.
func loadBias(exe string) (uint64, error) {
	data, err := os.ReadFile("/proc/self/maps")
	if err != nil {
		return 0, fmt.Errorf("coverage: could not read /proc/self/maps: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasSuffix(strings.TrimSpace(line), exe) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		startHex, _, ok := strings.Cut(fields[0], "-")
		if !ok {
			continue
		}

		start, err := strconv.ParseUint(startHex, 16, 64)
		if err != nil {
			continue
		}

		return start, nil
	}

	return 0, fmt.Errorf("coverage: could not locate a load bias for %s in /proc/self/maps", exe)
}
