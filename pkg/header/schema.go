// pkg/header/schema.go
package header

import "github.com/palfa/commondb/pkg/record"

// Schema describes how a header is written to and read back from the common DB
var Schema = &record.Schema{
	Name:      "header",
	Table:     "headers",
	Alias:     "h",
	IDColumn:  "header_id",
	Procedure: "spHeaderLoader",
	Key:       []string{"obs_name", "beam_id"},
	Lookup: &record.Lookup{
		Table:    "observations",
		Alias:    "obs",
		IDColumn: "obs_id",
	},
	Fields: []record.Field{
		{Name: "obs_name", Kind: record.KindString, Joined: true},
		{Name: "beam_id", Kind: record.KindInt},
		{Name: "original_file", Column: "original_wapp_file", Kind: record.KindString},
		{Name: "sample_time", Kind: record.KindFloat, Precision: 6},
		{Name: "observation_time", Kind: record.KindFloat, Precision: 6},
		{Name: "timestamp_mjd", Kind: record.KindFloat, Precision: 15},
		{Name: "num_samples_per_record", Kind: record.KindInt},
		{Name: "center_freq", Kind: record.KindFloat, Precision: 6},
		{Name: "channel_bandwidth", Kind: record.KindFloat, Precision: 6},
		{Name: "num_channels_per_record", Kind: record.KindInt},
		{Name: "num_ifs", Kind: record.KindInt},
		{Name: "orig_right_ascension", Kind: record.KindFloat, Precision: 4},
		{Name: "orig_declination", Kind: record.KindFloat, Precision: 4},
		{Name: "orig_galactic_longitude", Kind: record.KindFloat, Precision: 8},
		{Name: "orig_galactic_latitude", Kind: record.KindFloat, Precision: 8},
		{Name: "source_name", Kind: record.KindString},
		{Name: "sum_id", Kind: record.KindInt},
		{Name: "orig_start_az", Kind: record.KindFloat, Precision: 4},
		{Name: "orig_start_za", Kind: record.KindFloat, Precision: 4},
		{Name: "start_ast", Kind: record.KindFloat, Precision: 8},
		{Name: "start_lst", Kind: record.KindFloat, Precision: 8},
		{Name: "project_id", Kind: record.KindString},
		{Name: "observers", Kind: record.KindString},
		{Name: "file_size", Kind: record.KindInt},
		{Name: "data_size", Kind: record.KindInt},
		{Name: "num_samples", Kind: record.KindInt},
		{Name: "orig_ra_deg", Kind: record.KindFloat, Precision: 8},
		{Name: "orig_dec_deg", Kind: record.KindFloat, Precision: 8},
		{Name: "right_ascension", Kind: record.KindFloat, Precision: 4},
		{Name: "declination", Kind: record.KindFloat, Precision: 4},
		{Name: "galactic_longitude", Kind: record.KindFloat, Precision: 8},
		{Name: "galactic_latitude", Kind: record.KindFloat, Precision: 8},
		{Name: "ra_deg", Kind: record.KindFloat, Precision: 8},
		{Name: "dec_deg", Kind: record.KindFloat, Precision: 8},
		{Name: "obstype", Column: "obsType", Kind: record.KindString},
	},
}
