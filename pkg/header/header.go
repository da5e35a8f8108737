// pkg/header/header.go
package header

import (
	"context"
	"errors"
	"fmt"

	"github.com/palfa/commondb/pkg/datafile"
	"github.com/palfa/commondb/pkg/record"
	"github.com/palfa/commondb/pkg/upload"
)

// MaxBeam is the highest ALFA beam number
const MaxBeam = 7

// ErrBeamRange is returned for beam numbers outside [0, MaxBeam]
var ErrBeamRange = errors.New("beam number must be between 0 and 7, inclusive")

// Header is the metadata of one beam of one observation as stored in the
// common DB. Dependents attached to it receive its header_id on upload.
type Header struct {
	rec  *record.Record
	deps upload.Dependents
}

// New builds a header from values keyed by field name
func New(values map[string]interface{}) (*Header, error) {
	rec, err := record.New(Schema, values)
	if err != nil {
		return nil, err
	}
	return &Header{rec: rec}, nil
}

// FromData builds a header from parsed data file metadata
func FromData(d *datafile.Data) (*Header, error) {
	if d == nil {
		return nil, errors.New("nil data")
	}
	return New(Values(d))
}

// Get parses files into a header. beam is only needed for multiplexed data;
// when given it must be a valid ALFA beam, which is checked before parsing.
// Any failure is returned as an upload construction error wrapping the cause.
func Get(ctx context.Context, parser datafile.Parser, files []string, beam *int) (*Header, error) {
	if beam != nil && (*beam < 0 || *beam > MaxBeam) {
		return nil, upload.ConstructionError(Schema.Name, files,
			fmt.Errorf("%w: got %d", ErrBeamRange, *beam))
	}

	data, err := parser.Parse(ctx, files, beam)
	if err != nil {
		return nil, upload.ConstructionError(Schema.Name, files, err)
	}

	h, err := FromData(data)
	if err != nil {
		return nil, upload.ConstructionError(Schema.Name, files, err)
	}
	return h, nil
}

// Values maps data file metadata onto header field names
func Values(d *datafile.Data) map[string]interface{} {
	return map[string]interface{}{
		"obs_name":                d.ObsName,
		"beam_id":                 d.BeamID,
		"original_file":           d.OriginalFile,
		"sample_time":             d.SampleTime,
		"observation_time":        d.ObservationTime,
		"timestamp_mjd":           d.TimestampMJD,
		"num_samples_per_record":  d.NumSamplesPerRecord,
		"center_freq":             d.CenterFreq,
		"channel_bandwidth":       d.ChannelBandwidth,
		"num_channels_per_record": d.NumChannelsPerRecord,
		"num_ifs":                 d.NumIFs,
		"orig_right_ascension":    d.OrigRightAscension,
		"orig_declination":        d.OrigDeclination,
		"orig_galactic_longitude": d.OrigGalacticLongitude,
		"orig_galactic_latitude":  d.OrigGalacticLatitude,
		"source_name":             d.SourceName,
		"sum_id":                  d.SumID,
		"orig_start_az":           d.OrigStartAz,
		"orig_start_za":           d.OrigStartZa,
		"start_ast":               d.StartAST,
		"start_lst":               d.StartLST,
		"project_id":              d.ProjectID,
		"observers":               d.Observers,
		"file_size":               d.FileSize,
		"data_size":               d.DataSize,
		"num_samples":             d.NumSamples,
		"orig_ra_deg":             d.OrigRADeg,
		"orig_dec_deg":            d.OrigDecDeg,
		"right_ascension":         d.RightAscension,
		"declination":             d.Declination,
		"galactic_longitude":      d.GalacticLongitude,
		"galactic_latitude":       d.GalacticLatitude,
		"ra_deg":                  d.RADeg,
		"dec_deg":                 d.DecDeg,
		"obstype":                 d.ObsType(),
	}
}

// Record returns the underlying record
func (h *Header) Record() *record.Record {
	return h.rec
}

// Attach adds a dependent that needs this header's header_id
func (h *Header) Attach(dep upload.Uploadable) {
	h.deps.Attach(dep)
}

// Dependents returns the attached dependents in upload order
func (h *Header) Dependents() []upload.Uploadable {
	return h.deps.Items()
}

// Call returns the loader call for this header
func (h *Header) Call() (record.Call, error) {
	return h.rec.Call()
}

// ObsName returns the observation name, the first half of the natural key
func (h *Header) ObsName() string {
	return h.rec.String("obs_name")
}

// BeamID returns the ALFA beam number (0-7)
func (h *Header) BeamID() int {
	return int(h.rec.Int("beam_id"))
}

// OriginalFile returns the base name of the first data file
func (h *Header) OriginalFile() string {
	return h.rec.String("original_file")
}

// SampleTime returns the sample time in microseconds
func (h *Header) SampleTime() float64 {
	return h.rec.Float("sample_time")
}

// ObservationTime returns the observation length
func (h *Header) ObservationTime() float64 {
	return h.rec.Float("observation_time")
}

// TimestampMJD returns the start time as an MJD
func (h *Header) TimestampMJD() float64 {
	return h.rec.Float("timestamp_mjd")
}

// NumSamplesPerRecord returns the number of samples per record
func (h *Header) NumSamplesPerRecord() int {
	return int(h.rec.Int("num_samples_per_record"))
}

// CenterFreq returns the centre frequency in MHz
func (h *Header) CenterFreq() float64 {
	return h.rec.Float("center_freq")
}

// ChannelBandwidth returns the channel bandwidth in MHz
func (h *Header) ChannelBandwidth() float64 {
	return h.rec.Float("channel_bandwidth")
}

// NumChannelsPerRecord returns the number of channels per record
func (h *Header) NumChannelsPerRecord() int {
	return int(h.rec.Int("num_channels_per_record"))
}

// NumIFs returns the number of IFs
func (h *Header) NumIFs() int {
	return int(h.rec.Int("num_ifs"))
}

// OrigRightAscension returns the file's RA in packed HHMMSS.ssss form
func (h *Header) OrigRightAscension() float64 {
	return h.rec.Float("orig_right_ascension")
}

// OrigDeclination returns the file's Dec in packed DDMMSS.ssss form
func (h *Header) OrigDeclination() float64 {
	return h.rec.Float("orig_declination")
}

// OrigGalacticLongitude returns the galactic longitude of the file's pointing
func (h *Header) OrigGalacticLongitude() float64 {
	return h.rec.Float("orig_galactic_longitude")
}

// OrigGalacticLatitude returns the galactic latitude of the file's pointing
func (h *Header) OrigGalacticLatitude() float64 {
	return h.rec.Float("orig_galactic_latitude")
}

// SourceName returns the source name
func (h *Header) SourceName() string {
	return h.rec.String("source_name")
}

// SumID returns the sum id
func (h *Header) SumID() int {
	return int(h.rec.Int("sum_id"))
}

// OrigStartAz returns the telescope azimuth at the start
func (h *Header) OrigStartAz() float64 {
	return h.rec.Float("orig_start_az")
}

// OrigStartZa returns the telescope zenith angle at the start
func (h *Header) OrigStartZa() float64 {
	return h.rec.Float("orig_start_za")
}

// StartAST returns the AST at the start
func (h *Header) StartAST() float64 {
	return h.rec.Float("start_ast")
}

// StartLST returns the LST at the start
func (h *Header) StartLST() float64 {
	return h.rec.Float("start_lst")
}

// ProjectID returns the project id
func (h *Header) ProjectID() string {
	return h.rec.String("project_id")
}

// Observers returns the observers
func (h *Header) Observers() string {
	return h.rec.String("observers")
}

// FileSize returns the total size of the data files in bytes
func (h *Header) FileSize() int64 {
	return h.rec.Int("file_size")
}

// DataSize returns the size of the data in bytes
func (h *Header) DataSize() int64 {
	return h.rec.Int("data_size")
}

// NumSamples returns the number of samples
func (h *Header) NumSamples() int64 {
	return h.rec.Int("num_samples")
}

// OrigRADeg returns the file's RA in degrees
func (h *Header) OrigRADeg() float64 {
	return h.rec.Float("orig_ra_deg")
}

// OrigDecDeg returns the file's Dec in degrees
func (h *Header) OrigDecDeg() float64 {
	return h.rec.Float("orig_dec_deg")
}

// RightAscension returns the beam's RA in packed HHMMSS.ssss form
func (h *Header) RightAscension() float64 {
	return h.rec.Float("right_ascension")
}

// Declination returns the beam's Dec in packed DDMMSS.ssss form
func (h *Header) Declination() float64 {
	return h.rec.Float("declination")
}

// GalacticLongitude returns the beam's galactic longitude
func (h *Header) GalacticLongitude() float64 {
	return h.rec.Float("galactic_longitude")
}

// GalacticLatitude returns the beam's galactic latitude
func (h *Header) GalacticLatitude() float64 {
	return h.rec.Float("galactic_latitude")
}

// RADeg returns the beam's RA in degrees
func (h *Header) RADeg() float64 {
	return h.rec.Float("ra_deg")
}

// DecDeg returns the beam's Dec in degrees
func (h *Header) DecDeg() float64 {
	return h.rec.Float("dec_deg")
}

// ObsType returns the data format, e.g. "Mock" or "WAPP"
func (h *Header) ObsType() string {
	return h.rec.String("obstype")
}

