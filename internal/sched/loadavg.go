package sched

import (
	"fmt"

	"golang.org/x/sys/unix"

	"atrund/internal/privs"
)

// LoadSampler yields the 1-minute load average.
type LoadSampler interface {
	Sample() (float64, error)
}

// SysinfoSampler reads the load average from the kernel. Privs is optional;
// platforms where the sample needs real privileges set it so the read runs
// inside an elevated section.
type SysinfoSampler struct {
	Privs *privs.Manager
}

const loadScale = 1 << 16 // sysinfo loads are fixed-point

// Sample returns the 1-minute load average.
func (s SysinfoSampler) Sample() (float64, error) {
	var info unix.Sysinfo_t
	read := func() error {
		return unix.Sysinfo(&info)
	}

	var err error
	if s.Privs != nil {
		err = s.Privs.Do(read)
	} else {
		err = read()
	}
	if err != nil {
		return 0, fmt.Errorf("sysinfo: %w", err)
	}
	return float64(info.Loads[0]) / loadScale, nil
}
