package upload_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/palfa/commondb/internal/testsupport"
	"github.com/palfa/commondb/pkg/header"
	"github.com/palfa/commondb/pkg/upload"
)

func TestVerifyToleratesCaseAndPrecision(t *testing.T) {
	ctx := context.Background()
	db := testsupport.OpenDB(t)
	uploader := upload.NewUploader(upload.TableEndpoint{}, zaptest.NewLogger(t))

	h := newHeader(t, "P2030_0001")
	_, err := uploader.Upload(ctx, h, db)
	require.NoError(t, err)

	// changes below each field's precision, and in letter case only
	_, err = db.ExecContext(ctx, `UPDATE headers SET
		source_name = UPPER(source_name),
		obsType = 'MOCK',
		center_freq = center_freq + 0.0000001,
		orig_right_ascension = orig_right_ascension + 0.00001`)
	require.NoError(t, err)

	ok, err := uploader.Verifier().Verify(ctx, h.Record(), db)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompareReportsEveryMismatch(t *testing.T) {
	ctx := context.Background()
	db := testsupport.OpenDB(t)
	uploader := upload.NewUploader(upload.TableEndpoint{}, zaptest.NewLogger(t))

	h := newHeader(t, "P2030_0001")
	_, err := uploader.Upload(ctx, h, db)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `UPDATE headers SET
		sample_time = sample_time + 0.000001,
		num_ifs = 1,
		observers = 'Someone else'`)
	require.NoError(t, err)

	discrepancies, err := uploader.Verifier().Compare(ctx, h.Record(), db)
	require.NoError(t, err)

	fields := make([]string, len(discrepancies))
	for i, d := range discrepancies {
		fields[i] = d.Field
	}
	assert.Equal(t, []string{"sample_time", "num_ifs", "observers"}, fields)
	assert.Equal(t, "65.476000", discrepancies[0].MemoryForm)
	assert.Equal(t, "65.476001", discrepancies[0].StoredForm)

	ok, err := uploader.Verifier().Verify(ctx, h.Record(), db)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyNotFound(t *testing.T) {
	ctx := context.Background()
	db := testsupport.OpenDB(t)

	_, err := upload.NewVerifier(nil).Verify(ctx, newHeader(t, "P2030_0001").Record(), db)
	require.ErrorIs(t, err, upload.ErrNotFound)
	assert.Contains(t, err.Error(), "obs_name=P2030_0001 beam_id=3")
}

func TestVerifyOtherBeamNotFound(t *testing.T) {
	ctx := context.Background()
	db := testsupport.OpenDB(t)
	uploader := upload.NewUploader(upload.TableEndpoint{}, nil)

	_, err := uploader.Upload(ctx, newHeader(t, "P2030_0001"), db)
	require.NoError(t, err)

	d := testsupport.SampleData()
	d.BeamID = 4
	other, err := header.FromData(d)
	require.NoError(t, err)

	_, err = uploader.Verifier().Verify(ctx, other.Record(), db)
	require.ErrorIs(t, err, upload.ErrNotFound)
}
