package upload_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palfa/commondb/pkg/record"
	"github.com/palfa/commondb/pkg/upload"
)

func TestProcedureStatement(t *testing.T) {
	call := record.Call{
		Procedure: "spHeaderLoader",
		Params: []record.Param{
			{Name: "obs_name", Literal: "'P2030_0001'"},
			{Name: "beam_id", Literal: "3"},
		},
	}
	endpoint := upload.ProcedureEndpoint{}

	stmt, err := endpoint.Statement(call, "pgx")
	require.NoError(t, err)
	assert.Equal(t, "SELECT spHeaderLoader(obs_name => 'P2030_0001', beam_id => 3)", stmt)

	stmt, err = endpoint.Statement(call, "snowflake")
	require.NoError(t, err)
	assert.Equal(t, "CALL spHeaderLoader(obs_name => 'P2030_0001', beam_id => 3)", stmt)

	stmt, err = endpoint.Statement(call, "sqlserver")
	require.NoError(t, err)
	assert.Equal(t, "EXEC spHeaderLoader @obs_name='P2030_0001', @beam_id=3", stmt)

	_, err = endpoint.Statement(call, "sqlite")
	require.Error(t, err)
}

func TestEndpointFor(t *testing.T) {
	e, err := upload.EndpointFor(upload.ModeTable)
	require.NoError(t, err)
	assert.IsType(t, upload.TableEndpoint{}, e)

	e, err = upload.EndpointFor("")
	require.NoError(t, err)
	assert.IsType(t, upload.ProcedureEndpoint{}, e)

	_, err = upload.EndpointFor("bulk")
	require.Error(t, err)
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("bad file")
	err := upload.ConstructionError("header", []string{"a.fits"}, cause)

	assert.ErrorIs(t, err, upload.ErrConstruction)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, upload.ErrNotFound)
	assert.Equal(t, "construction [header]: couldn't create record for files [a.fits]: bad file", err.Error())

	mismatch := &upload.Error{
		Kind:   upload.KindMismatch,
		Schema: "header",
		Key:    record.NaturalKey{{Field: "obs_name", Value: "P2030_0001"}, {Field: "beam_id", Value: int64(3)}},
		Fields: []string{"center_freq"},
	}
	assert.ErrorIs(t, mismatch, upload.ErrMismatch)
	assert.Equal(t,
		"mismatch [header] (obs_name=P2030_0001 beam_id=3): persisted row doesn't match what was uploaded (fields: center_freq)",
		mismatch.Error())

	dep := &upload.Error{Kind: upload.KindDependent, Err: mismatch}
	assert.ErrorIs(t, dep, upload.ErrDependent)
	assert.ErrorIs(t, dep, upload.ErrMismatch)
}
