package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/palfa/commondb/pkg/datafile"
)

// Manifest is a complete data file manifest for a Mock observation
const Manifest = `
obs_name = "P2030_0001"
project_id = "p2030"
observers = "Lazarus, Cordes"
source_name = "G45.61+0.02"

timestamp_mjd = 55000.123456789012345
observation_time = 268.435456
sample_time = 65.476
num_samples_per_record = 1
center_freq = 1375.432
channel_bandwidth = 0.336059570312
num_channels_per_record = 960
num_ifs = 2
sum_id = 0

start_az = 212.3456
start_za = 12.0001
start_ast = 12345.12345678
start_lst = 67890.87654321

data_size = 1048576
num_samples = 4194304

[orig]
ra = "19:14:50.26"
dec = "+11:18:21.5"

[beams.3]
ra = "19:14:42.18"
dec = "+11:16:04.7"
`

// MockFile is the name of the sample Mock data file for beam 3
const MockFile = "p2030.20090613.G45.61+0.02.b3s0g0.00100.fits"

// WriteFile writes size bytes of filler to path
func WriteFile(t testing.TB, path string, size int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteObservation writes data files of the given size into dir with
// manifest next to the first one and returns their paths
func WriteObservation(t testing.TB, dir, manifest string, size int, names ...string) []string {
	t.Helper()

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		WriteFile(t, paths[i], size)
	}
	if len(paths) > 0 {
		if err := os.WriteFile(paths[0]+datafile.ManifestSuffix, []byte(manifest), 0o644); err != nil {
			t.Fatalf("write manifest: %v", err)
		}
	}
	return paths
}

// SampleData returns header metadata for obs P2030_0001 beam 3
func SampleData() *datafile.Data {
	return &datafile.Data{
		ObsName:               "P2030_0001",
		BeamID:                3,
		OriginalFile:          MockFile,
		Format:                datafile.FormatMock,
		SampleTime:            65.476,
		ObservationTime:       268.435456,
		TimestampMJD:          55000.123456789012345,
		NumSamplesPerRecord:   1,
		CenterFreq:            1375.432,
		ChannelBandwidth:      0.336059570312,
		NumChannelsPerRecord:  960,
		NumIFs:                2,
		OrigRightAscension:    191450.26,
		OrigDeclination:       111821.5,
		OrigGalacticLongitude: 45.61234567,
		OrigGalacticLatitude:  0.02345678,
		SourceName:            "G45.61+0.02",
		SumID:                 0,
		OrigStartAz:           212.3456,
		OrigStartZa:           12.0001,
		StartAST:              12345.12345678,
		StartLST:              67890.87654321,
		ProjectID:             "p2030",
		Observers:             "Lazarus, Cordes",
		FileSize:              2048,
		DataSize:              1048576,
		NumSamples:            4194304,
		OrigRADeg:             288.70941667,
		OrigDecDeg:            11.30597222,
		RightAscension:        191442.18,
		Declination:           111604.7,
		GalacticLongitude:     45.58765432,
		GalacticLatitude:      0.04567891,
		RADeg:                 288.67575,
		DecDeg:                11.26797222,
	}
}
