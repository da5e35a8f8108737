// pkg/datafile/manifest.go
package datafile

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/palfa/commondb/pkg/astro"
)

// ManifestSuffix is appended to the first data file name to find its manifest
const ManifestSuffix = ".toml"

// Pointing is a sexagesimal sky position
type Pointing struct {
	RA  string `toml:"ra"`
	Dec string `toml:"dec"`
}

// Manifest is the metadata recorded next to the data files at the telescope
type Manifest struct {
	ObsName   string `toml:"obs_name"`
	ProjectID string `toml:"project_id"`
	Observers string `toml:"observers"`

	SourceName string `toml:"source_name"`

	TimestampMJD         float64 `toml:"timestamp_mjd"`
	ObservationTime      float64 `toml:"observation_time"`
	SampleTime           float64 `toml:"sample_time"`
	NumSamplesPerRecord  int     `toml:"num_samples_per_record"`
	CenterFreq           float64 `toml:"center_freq"`
	ChannelBandwidth     float64 `toml:"channel_bandwidth"`
	NumChannelsPerRecord int     `toml:"num_channels_per_record"`
	NumIFs               int     `toml:"num_ifs"`
	SumID                int     `toml:"sum_id"`

	StartAz  float64 `toml:"start_az"`
	StartZa  float64 `toml:"start_za"`
	StartAST float64 `toml:"start_ast"`
	StartLST float64 `toml:"start_lst"`

	DataSize   int64 `toml:"data_size"`
	NumSamples int64 `toml:"num_samples"`

	// Recorded telescope pointing
	Orig Pointing `toml:"orig"`
	// Corrected beam positions keyed by beam number; beams absent here use Orig
	Beams map[string]Pointing `toml:"beams"`
}

// ManifestParser reads header metadata from a TOML manifest written next to
// the first data file as "<file>.toml"
type ManifestParser struct {
	logger *zap.Logger
}

// NewManifestParser creates a new manifest parser
func NewManifestParser(logger *zap.Logger) *ManifestParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManifestParser{logger: logger}
}

// Parse implements Parser
func (p *ManifestParser) Parse(ctx context.Context, files []string, beam *int) (*Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, beamID, err := Detect(files, beam)
	if err != nil {
		return nil, err
	}

	var fileSize int64
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			return nil, fmt.Errorf("failed to stat data file: %w", err)
		}
		fileSize += info.Size()
	}

	m, err := ReadManifest(files[0] + ManifestSuffix)
	if err != nil {
		return nil, err
	}

	data, err := m.data(beamID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(files[0])+ManifestSuffix, err)
	}

	name, _ := ParseName(files[0])
	if data.ObsName == "" {
		data.ObsName = m.defaultObsName(name.Scan)
	}
	data.Format = format
	data.OriginalFile = filepath.Base(files[0])
	data.FileSize = fileSize

	p.logger.Debug("Parsed data file metadata",
		zap.String("obs_name", data.ObsName),
		zap.Int("beam_id", data.BeamID),
		zap.String("format", string(format)),
		zap.Int("files", len(files)),
		zap.Int64("file_size", fileSize))

	return data, nil
}

// ReadManifest decodes a manifest file. Unknown keys are rejected.
func ReadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	var m Manifest
	decoder := toml.NewDecoder(file).DisallowUnknownFields()
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", filepath.Base(path), err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", filepath.Base(path), err)
	}
	return &m, nil
}

// Validate checks the fields every header needs
func (m *Manifest) Validate() error {
	switch {
	case m.ProjectID == "":
		return fmt.Errorf("project_id is required")
	case m.SourceName == "":
		return fmt.Errorf("source_name is required")
	case m.TimestampMJD <= 0:
		return fmt.Errorf("timestamp_mjd must be positive")
	case m.SampleTime <= 0:
		return fmt.Errorf("sample_time must be positive")
	case m.NumChannelsPerRecord <= 0:
		return fmt.Errorf("num_channels_per_record must be positive")
	case m.Orig.RA == "" || m.Orig.Dec == "":
		return fmt.Errorf("orig.ra and orig.dec are required")
	}
	return nil
}

// defaultObsName builds "<project>_<mjd>_<seconds>_<scan>" from the start time
func (m *Manifest) defaultObsName(scan int) string {
	day := math.Floor(m.TimestampMJD)
	secs := int(math.Round((m.TimestampMJD - day) * 86400))
	if secs == 86400 {
		day++
		secs = 0
	}
	return fmt.Sprintf("%s_%05d_%05d_%04d", m.ProjectID, int(day), secs, scan)
}

func (m *Manifest) data(beam int) (*Data, error) {
	d := &Data{
		ObsName:              m.ObsName,
		BeamID:               beam,
		SampleTime:           m.SampleTime,
		ObservationTime:      m.ObservationTime,
		TimestampMJD:         m.TimestampMJD,
		NumSamplesPerRecord:  m.NumSamplesPerRecord,
		CenterFreq:           m.CenterFreq,
		ChannelBandwidth:     m.ChannelBandwidth,
		NumChannelsPerRecord: m.NumChannelsPerRecord,
		NumIFs:               m.NumIFs,
		SourceName:           m.SourceName,
		SumID:                m.SumID,
		OrigStartAz:          m.StartAz,
		OrigStartZa:          m.StartZa,
		StartAST:             m.StartAST,
		StartLST:             m.StartLST,
		ProjectID:            m.ProjectID,
		Observers:            m.Observers,
		DataSize:             m.DataSize,
		NumSamples:           m.NumSamples,
	}

	var err error
	d.OrigRightAscension, d.OrigRADeg, err = astro.ParseRA(m.Orig.RA)
	if err != nil {
		return nil, fmt.Errorf("orig.ra: %w", err)
	}
	d.OrigDeclination, d.OrigDecDeg, err = astro.ParseDec(m.Orig.Dec)
	if err != nil {
		return nil, fmt.Errorf("orig.dec: %w", err)
	}
	d.OrigGalacticLongitude, d.OrigGalacticLatitude = astro.EquatorialToGalactic(d.OrigRADeg, d.OrigDecDeg)

	pointing, ok := m.Beams[strconv.Itoa(beam)]
	if !ok {
		pointing = m.Orig
	}
	d.RightAscension, d.RADeg, err = astro.ParseRA(pointing.RA)
	if err != nil {
		return nil, fmt.Errorf("beams.%d.ra: %w", beam, err)
	}
	d.Declination, d.DecDeg, err = astro.ParseDec(pointing.Dec)
	if err != nil {
		return nil, fmt.Errorf("beams.%d.dec: %w", beam, err)
	}
	d.GalacticLongitude, d.GalacticLatitude = astro.EquatorialToGalactic(d.RADeg, d.DecDeg)

	return d, nil
}
