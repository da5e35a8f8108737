// pkg/datafile/format.go
package datafile

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
)

// Format is the backend that wrote a data file
type Format string

const (
	// FormatMock is PSRFITS from the Mock spectrometers, one file per beam and subband
	FormatMock Format = "Mock"
	// FormatWAPP is multiplexed WAPP data holding all beams in one file
	FormatWAPP Format = "WAPP"
)

var (
	// ErrUnknownFormat is returned for files that match no known naming scheme
	ErrUnknownFormat = errors.New("unrecognised data file name")
	// ErrBeamRequired is returned when a multiplexed format is parsed without a beam
	ErrBeamRequired = errors.New("beam number is required for multiplexed data")
)

var (
	rawdataRe = regexp.MustCompile(`^p2030.*b[0-7]s[0-1]g?.*\.fits$`)
	mockRe    = regexp.MustCompile(`^p2030\.(\d{8})\.(.+)\.b([0-7])s([01])g?\d*\.(\d{5})\.fits$`)
	wappRe    = regexp.MustCompile(`^p2030_(\d{5})_(\d{5})_(\d{4})_(.+)\.w4bit\.fits$`)
)

// Name holds what a file name says about its contents
type Name struct {
	Format Format
	Beam   int // -1 for multiplexed files
	Scan   int
	Source string
}

// ParseName recognises a survey data file name
func ParseName(path string) (Name, error) {
	base := filepath.Base(path)

	if rawdataRe.MatchString(base) {
		m := mockRe.FindStringSubmatch(base)
		if m == nil {
			return Name{}, fmt.Errorf("%s: %w", base, ErrUnknownFormat)
		}
		beam, _ := strconv.Atoi(m[3])
		scan, _ := strconv.Atoi(m[5])
		return Name{Format: FormatMock, Beam: beam, Scan: scan, Source: m[2]}, nil
	}

	if m := wappRe.FindStringSubmatch(base); m != nil {
		scan, _ := strconv.Atoi(m[3])
		return Name{Format: FormatWAPP, Beam: -1, Scan: scan, Source: m[4]}, nil
	}

	return Name{}, fmt.Errorf("%s: %w", base, ErrUnknownFormat)
}

// Detect checks that files belong to one beam of one scan and returns the
// format and the beam number. An explicit beam must agree with the names.
func Detect(files []string, beam *int) (Format, int, error) {
	if len(files) == 0 {
		return "", 0, errors.New("no data files given")
	}

	first, err := ParseName(files[0])
	if err != nil {
		return "", 0, err
	}

	for _, f := range files[1:] {
		n, err := ParseName(f)
		if err != nil {
			return "", 0, err
		}
		if n.Format != first.Format || n.Beam != first.Beam || n.Scan != first.Scan {
			return "", 0, fmt.Errorf("%s does not belong with %s", filepath.Base(f), filepath.Base(files[0]))
		}
	}

	if first.Beam < 0 {
		if beam == nil {
			return "", 0, fmt.Errorf("%s: %w", filepath.Base(files[0]), ErrBeamRequired)
		}
		return first.Format, *beam, nil
	}

	if beam != nil && *beam != first.Beam {
		return "", 0, fmt.Errorf("beam %d given but %s is beam %d", *beam, filepath.Base(files[0]), first.Beam)
	}
	return first.Format, first.Beam, nil
}
