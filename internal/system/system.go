package system

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

// InitResourceLimits raises the open-file limit. Batch runs hold a PDF,
// a temp dir of extracted images and report assets open at once.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logrus.WithError(err).Warn("could not read open-file limit")
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logrus.WithError(err).Warn("could not raise open-file limit")
	} else {
		logrus.WithField("nofile", rLimit.Cur).Debug("open-file limit raised")
	}
}

// FindPDFs lists the PDF files in dir, sorted by name.
func FindPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no PDF files in %s", dir)
	}

	sort.Strings(paths)
	return paths, nil
}

// perWorkerBytes is a rough ceiling for one in-flight paper: the PDF,
// its extracted candidates and the working buffers of the classifier.
const perWorkerBytes = 512 * 1024 * 1024

// Workers picks a worker count for the extraction pool: one per logical
// CPU, capped by available memory so concurrent MuPDF/pdfcpu instances
// cannot thrash the machine.
func Workers() int {
	workers := runtime.NumCPU()
	if counts, err := cpu.Counts(true); err == nil && counts > 0 {
		workers = counts
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		byMem := int(vm.Available / perWorkerBytes)
		if byMem < 1 {
			byMem = 1
		}
		if byMem < workers {
			workers = byMem
		}
	}

	if workers < 1 {
		workers = 1
	}
	return workers
}
