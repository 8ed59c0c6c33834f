package models

import "sort"

// FrameFile describes one on-disk frame of a spectral cube before loading.
type FrameFile struct {
	// Path is the location of the frame image on disk.
	Path string

	// Index is the position of this frame in the cube sequence, derived
	// from the numeric part of the filename.
	Index int

	// Wavelength is the wavelength this frame was observed at, in micron.
	// Zero when no wavelength information is available.
	Wavelength float64
}

// SortFrameFiles orders frame files by their sequence index, falling back
// to path order for equal indices so the ordering is deterministic.
func SortFrameFiles(files []FrameFile) {
	sort.Slice(files, func(i, j int) bool {
		if files[i].Index != files[j].Index {
			return files[i].Index < files[j].Index
		}
		return files[i].Path < files[j].Path
	})
}
