package datafile_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palfa/commondb/internal/testsupport"
	"github.com/palfa/commondb/pkg/astro"
	"github.com/palfa/commondb/pkg/datafile"
)

func intPtr(i int) *int { return &i }

func TestParseName(t *testing.T) {
	n, err := datafile.ParseName("/data/" + testsupport.MockFile)
	require.NoError(t, err)
	assert.Equal(t, datafile.FormatMock, n.Format)
	assert.Equal(t, 3, n.Beam)
	assert.Equal(t, 100, n.Scan)
	assert.Equal(t, "G45.61+0.02", n.Source)

	n, err = datafile.ParseName("p2030_53912_22137_0006_G40.03+00.14.w4bit.fits")
	require.NoError(t, err)
	assert.Equal(t, datafile.FormatWAPP, n.Format)
	assert.Equal(t, -1, n.Beam)
	assert.Equal(t, 6, n.Scan)

	_, err = datafile.ParseName("notes.txt")
	require.ErrorIs(t, err, datafile.ErrUnknownFormat)
}

func TestDetect(t *testing.T) {
	s0 := "p2030.20090613.G45.61+0.02.b3s0g0.00100.fits"
	s1 := "p2030.20090613.G45.61+0.02.b3s1g0.00100.fits"
	other := "p2030.20090613.G45.61+0.02.b4s1g0.00100.fits"
	wapp := "p2030_53912_22137_0006_G40.03+00.14.w4bit.fits"

	format, beam, err := datafile.Detect([]string{s0, s1}, nil)
	require.NoError(t, err)
	assert.Equal(t, datafile.FormatMock, format)
	assert.Equal(t, 3, beam)

	_, _, err = datafile.Detect([]string{s0, other}, nil)
	require.Error(t, err)

	_, _, err = datafile.Detect([]string{s0}, intPtr(5))
	require.Error(t, err)

	_, _, err = datafile.Detect([]string{wapp}, nil)
	require.ErrorIs(t, err, datafile.ErrBeamRequired)

	format, beam, err = datafile.Detect([]string{wapp}, intPtr(6))
	require.NoError(t, err)
	assert.Equal(t, datafile.FormatWAPP, format)
	assert.Equal(t, 6, beam)

	_, _, err = datafile.Detect(nil, nil)
	require.Error(t, err)
}

func TestManifestParserParse(t *testing.T) {
	dir := t.TempDir()
	files := testsupport.WriteObservation(t, dir, testsupport.Manifest, 1024,
		"p2030.20090613.G45.61+0.02.b3s0g0.00100.fits",
		"p2030.20090613.G45.61+0.02.b3s1g0.00100.fits")

	data, err := datafile.NewManifestParser(nil).Parse(context.Background(), files, nil)
	require.NoError(t, err)

	assert.Equal(t, "P2030_0001", data.ObsName)
	assert.Equal(t, 3, data.BeamID)
	assert.Equal(t, "Mock", data.ObsType())
	assert.Equal(t, filepath.Base(files[0]), data.OriginalFile)
	assert.EqualValues(t, 2048, data.FileSize)
	assert.EqualValues(t, 1048576, data.DataSize)
	assert.Equal(t, 960, data.NumChannelsPerRecord)

	assert.InDelta(t, 191450.26, data.OrigRightAscension, 1e-9)
	assert.InDelta(t, 111821.5, data.OrigDeclination, 1e-9)
	assert.InDelta(t, 191442.18, data.RightAscension, 1e-9)
	assert.InDelta(t, 111604.7, data.Declination, 1e-9)

	l, b := astro.EquatorialToGalactic(data.RADeg, data.DecDeg)
	assert.Equal(t, l, data.GalacticLongitude)
	assert.Equal(t, b, data.GalacticLatitude)
}

func TestManifestParserDefaultsObsName(t *testing.T) {
	manifest := strings.Replace(testsupport.Manifest, `obs_name = "P2030_0001"`, "", 1)
	files := testsupport.WriteObservation(t, t.TempDir(), manifest, 16, testsupport.MockFile)

	data, err := datafile.NewManifestParser(nil).Parse(context.Background(), files, nil)
	require.NoError(t, err)
	// MJD 55000.123456789 is 10667 s after midnight
	assert.Equal(t, "p2030_55000_10667_0100", data.ObsName)
}

func TestManifestParserDefaultsObsNameAtMidnight(t *testing.T) {
	manifest := strings.Replace(testsupport.Manifest, `obs_name = "P2030_0001"`, "", 1)
	manifest = strings.Replace(manifest, "timestamp_mjd = 55000.123456789012345", "timestamp_mjd = 55000.999999999", 1)
	files := testsupport.WriteObservation(t, t.TempDir(), manifest, 16, testsupport.MockFile)

	data, err := datafile.NewManifestParser(nil).Parse(context.Background(), files, nil)
	require.NoError(t, err)
	assert.Equal(t, "p2030_55001_00000_0100", data.ObsName)
}

func TestManifestParserRejectsBadCoordinates(t *testing.T) {
	manifest := strings.Replace(testsupport.Manifest, `ra = "19:14:50.26"`, `ra = "19h14m50s"`, 1)
	files := testsupport.WriteObservation(t, t.TempDir(), manifest, 16, testsupport.MockFile)

	_, err := datafile.NewManifestParser(nil).Parse(context.Background(), files, nil)
	var perr *astro.ParseError
	require.True(t, errors.As(err, &perr), "got %v", err)
}

func TestManifestParserRejectsUnknownKeys(t *testing.T) {
	manifest := testsupport.Manifest + "\nbogus = 1\n"
	files := testsupport.WriteObservation(t, t.TempDir(), manifest, 16, testsupport.MockFile)

	_, err := datafile.NewManifestParser(nil).Parse(context.Background(), files, nil)
	require.Error(t, err)
}

func TestManifestParserMissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := datafile.NewManifestParser(nil).Parse(context.Background(),
		[]string{filepath.Join(dir, testsupport.MockFile)}, nil)
	require.Error(t, err)
}

func TestManifestParserMissingManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, testsupport.MockFile)
	testsupport.WriteFile(t, path, 16)

	_, err := datafile.NewManifestParser(nil).Parse(context.Background(), []string{path}, nil)
	require.Error(t, err)
}
