// pkg/datafile/data.go

// Package datafile turns survey data files into typed header metadata.
package datafile

import "context"

// Data is the typed metadata of one beam of one observation
type Data struct {
	ObsName      string
	BeamID       int
	OriginalFile string
	Format       Format

	SampleTime           float64 // microseconds
	ObservationTime      float64 // seconds
	TimestampMJD         float64
	NumSamplesPerRecord  int
	CenterFreq           float64 // MHz
	ChannelBandwidth     float64 // MHz
	NumChannelsPerRecord int
	NumIFs               int

	// Telescope pointing as recorded, packed HHMMSS.ssss / DDMMSS.ssss
	OrigRightAscension    float64
	OrigDeclination       float64
	OrigGalacticLongitude float64
	OrigGalacticLatitude  float64
	OrigRADeg             float64
	OrigDecDeg            float64

	SourceName  string
	SumID       int
	OrigStartAz float64
	OrigStartZa float64
	StartAST    float64
	StartLST    float64
	ProjectID   string
	Observers   string

	FileSize   int64
	DataSize   int64
	NumSamples int64

	// Beam position after correction, packed like the originals
	RightAscension    float64
	Declination       float64
	GalacticLongitude float64
	GalacticLatitude  float64
	RADeg             float64
	DecDeg            float64
}

// ObsType returns the backend name stored with the header
func (d *Data) ObsType() string {
	return string(d.Format)
}

// Parser reads the metadata of a beam from a set of data files. beam may be
// nil when the file format identifies the beam on its own.
type Parser interface {
	Parse(ctx context.Context, files []string, beam *int) (*Data, error)
}
