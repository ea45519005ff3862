package ecs150

import (
	"fmt"

	"github.com/ecsfs/go-ecsfs/util/bitmap"
)

// CheckReport the outcome of a consistency check
type CheckReport struct {
	Files          int
	UsedBlocks     int
	FreeBlocks     int
	LargestFreeRun int
	Problems       []string
}

// OK no problems were found
func (r *CheckReport) OK() bool {
	return len(r.Problems) == 0
}

func (r *CheckReport) addf(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Check verifies that every file's chain stays inside the data region, that no block belongs to two
// chains or to a chain twice, that each chain is exactly as long as its file needs, and that every
// allocated block belongs to some file. Nothing is modified.
func (fs *FileSystem) Check() (*CheckReport, error) {
	if !fs.mounted {
		return nil, ErrNotMounted
	}
	limit := fs.table.limit()
	report := &CheckReport{}
	owned := bitmap.NewBits(limit)
	_ = owned.Set(0)

	for i := range fs.root.entries {
		entry := &fs.root.entries[i]
		if entry.free() {
			continue
		}
		report.Files++
		blocks := 0
	walk:
		for p := entry.first; p.valid; {
			switch set, err := owned.IsSet(int(p.index)); {
			case err != nil || p.index == 0:
				report.addf("%s: block %d is outside the data region", entry.filename, p.index)
				break walk
			case set:
				report.addf("%s: block %d is already in use, chain is cross-linked or loops", entry.filename, p.index)
				break walk
			}
			_ = owned.Set(int(p.index))
			blocks++
			v := fs.table.entries[p.index]
			if v == fatFree {
				report.addf("%s: block %d is marked free", entry.filename, p.index)
				break
			}
			p = ptrFromDisk(v)
		}
		needed := int((uint64(entry.fileSize) + BlockSize - 1) / BlockSize)
		switch {
		case blocks < needed:
			report.addf("%s: size %d needs %d blocks, chain has %d", entry.filename, entry.fileSize, needed, blocks)
		case blocks > needed:
			report.addf("%s: chain has %d blocks past its size %d", entry.filename, blocks-needed, entry.fileSize)
		}
		report.UsedBlocks += blocks
	}

	allocated := bitmap.NewBits(limit)
	_ = allocated.Set(0)
	for i := 1; i < limit; i++ {
		if fs.table.entries[i] == fatFree {
			continue
		}
		_ = allocated.Set(i)
		if set, _ := owned.IsSet(i); !set {
			report.addf("block %d is allocated but belongs to no file", i)
		}
	}
	for _, run := range allocated.FreeList() {
		report.FreeBlocks += run.Count
		if run.Count > report.LargestFreeRun {
			report.LargestFreeRun = run.Count
		}
	}
	return report, nil
}
