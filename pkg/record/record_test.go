package record_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palfa/commondb/pkg/record"
)

func testSchema() *record.Schema {
	return &record.Schema{
		Name:      "widget",
		Table:     "widgets",
		Alias:     "w",
		IDColumn:  "widget_id",
		Procedure: "spWidgetLoader",
		Fields: []record.Field{
			{Name: "group_name", Kind: record.KindString, Joined: true},
			{Name: "slot", Kind: record.KindInt},
			{Name: "label", Column: "widget_label", Kind: record.KindString},
			{Name: "ra", Kind: record.KindFloat, Precision: 4},
			{Name: "mjd", Kind: record.KindFloat, Precision: 15},
		},
		Key:    []string{"group_name", "slot"},
		Lookup: &record.Lookup{Table: "groups", Alias: "g", IDColumn: "group_id"},
	}
}

func testValues() map[string]interface{} {
	return map[string]interface{}{
		"group_name": "G1",
		"slot":       3,
		"label":      "Vela",
		"ra":         123456.12345,
		"mjd":        55000.123456789012345,
	}
}

func TestRuleFormat(t *testing.T) {
	cases := []struct {
		name string
		rule record.Rule
		a, b interface{}
		want bool
	}{
		{"case folded", record.Rule{Kind: record.KindString}, "Vela", "vela", true},
		{"bytes vs string", record.Rule{Kind: record.KindString}, []byte("VELA"), "vela", true},
		{"different strings", record.Rule{Kind: record.KindString}, "Vela", "Crab", false},
		{"trailing zeros", record.Rule{Kind: record.KindFloat, Precision: 8}, 1.23400000, 1.234, true},
		{"numeric text", record.Rule{Kind: record.KindFloat, Precision: 8}, []byte("1.2340000000"), 1.234, true},
		{"below precision", record.Rule{Kind: record.KindFloat, Precision: 4}, 1.23441, 1.23439, true},
		{"above precision", record.Rule{Kind: record.KindFloat, Precision: 4}, 1.2345, 1.2347, false},
		{"int from float column", record.Rule{Kind: record.KindInt}, float64(42), int64(42), true},
		{"int from text", record.Rule{Kind: record.KindInt}, "42", 42, true},
		{"int mismatch", record.Rule{Kind: record.KindInt}, int64(41), 42, false},
		{"nil never equal", record.Rule{Kind: record.KindInt}, nil, 0, false},
		{"negative zero", record.Rule{Kind: record.KindFloat, Precision: 4}, -0.00001, 0, true},
		{"negative zero bytes", record.Rule{Kind: record.KindFloat, Precision: 8}, -0.000000001, []byte("0"), true},
		{"small negative kept", record.Rule{Kind: record.KindFloat, Precision: 4}, -0.0001, 0, false},
		{"int from fractional float32", record.Rule{Kind: record.KindInt}, float32(3.7), 3, false},
		{"int from fractional float64", record.Rule{Kind: record.KindInt}, 3.7, 3, false},
		{"int from integral float32", record.Rule{Kind: record.KindInt}, float32(3), 3, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.rule.Equal(tc.a, tc.b))
		})
	}
}

func TestRuleFormatPrecision(t *testing.T) {
	s, err := record.Rule{Kind: record.KindFloat, Precision: 6}.Format(0.000064)
	require.NoError(t, err)
	assert.Equal(t, "0.000064", s)

	s, err = record.Rule{Kind: record.KindFloat, Precision: 15}.Format(55000.5)
	require.NoError(t, err)
	assert.Equal(t, "55000.500000000000000", s)
}

func TestRuleNegativeZeroIsUnsigned(t *testing.T) {
	rule := record.Rule{Kind: record.KindFloat, Precision: 8}

	s, err := rule.Format(-0.000000001)
	require.NoError(t, err)
	assert.Equal(t, "0.00000000", s)

	lit, err := rule.Literal(-0.000000001)
	require.NoError(t, err)
	assert.Equal(t, "0.00000000", lit)

	lit, err = rule.Literal(-0.5)
	require.NoError(t, err)
	assert.Equal(t, "-0.50000000", lit)
}

func TestNewRequiresEveryField(t *testing.T) {
	values := testValues()
	delete(values, "label")

	_, err := record.New(testSchema(), values)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing field label")
}

func TestNewRejectsWrongKind(t *testing.T) {
	values := testValues()
	values["slot"] = 3.5

	_, err := record.New(testSchema(), values)
	require.Error(t, err)

	values = testValues()
	values["label"] = 12
	_, err = record.New(testSchema(), values)
	require.Error(t, err)
}

func TestNewRejectsUnknownField(t *testing.T) {
	values := testValues()
	values["colour"] = "blue"

	_, err := record.New(testSchema(), values)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field colour")
}

func TestAssignParentIsWriteOnce(t *testing.T) {
	schema := &record.Schema{
		Name:        "child",
		Table:       "children",
		IDColumn:    "child_id",
		Procedure:   "spChildLoader",
		Fields:      []record.Field{{Name: "parent_id", Kind: record.KindInt}, {Name: "name", Kind: record.KindString}},
		Key:         []string{"parent_id", "name"},
		ParentField: "parent_id",
	}

	rec, err := record.New(schema, map[string]interface{}{"name": "a"})
	require.NoError(t, err)
	assert.False(t, rec.ParentAssigned())

	_, err = rec.Call()
	require.ErrorIs(t, err, record.ErrParentUnset)

	require.NoError(t, rec.AssignParent(77))
	assert.True(t, rec.ParentAssigned())
	assert.Equal(t, int64(77), rec.Int("parent_id"))

	require.ErrorIs(t, rec.AssignParent(78), record.ErrParentAssigned)
	assert.Equal(t, int64(77), rec.Int("parent_id"))

	_, err = record.New(schema, map[string]interface{}{"name": "a", "parent_id": 1})
	require.Error(t, err)
}

func TestAssignParentWithoutParentField(t *testing.T) {
	rec, err := record.New(testSchema(), testValues())
	require.NoError(t, err)
	require.ErrorIs(t, rec.AssignParent(1), record.ErrNoParentField)
}

func TestCallRendersLiterals(t *testing.T) {
	rec, err := record.New(testSchema(), testValues())
	require.NoError(t, err)

	call, err := rec.Call()
	require.NoError(t, err)
	assert.Equal(t,
		"EXEC spWidgetLoader @group_name='G1', @slot=3, @widget_label='Vela', @ra=123456.1234, @mjd=55000.123456789013289",
		call.String())
	assert.Equal(t,
		"group_name => 'G1', slot => 3, widget_label => 'Vela', ra => 123456.1234, mjd => 55000.123456789013289",
		call.Named())
}

func TestLookupQuery(t *testing.T) {
	q := testSchema().LookupQuery()
	assert.Equal(t,
		"SELECT g.group_name, w.slot, w.widget_label, w.ra, w.mjd FROM widgets AS w "+
			"LEFT JOIN groups AS g ON g.group_id=w.group_id WHERE g.group_name=? AND w.slot=?",
		q)
}

func TestNaturalKey(t *testing.T) {
	rec, err := record.New(testSchema(), testValues())
	require.NoError(t, err)

	key := rec.NaturalKey()
	assert.Equal(t, "group_name=G1 slot=3", key.String())
	assert.Equal(t, []interface{}{"G1", int64(3)}, key.Args())
}

func TestSchemaValidate(t *testing.T) {
	s := testSchema()
	s.Key = []string{"missing"}
	require.Error(t, s.Validate())

	s = testSchema()
	s.Lookup = nil
	require.Error(t, s.Validate())

	s = testSchema()
	s.Fields = append(s.Fields, record.Field{Name: "slot", Kind: record.KindInt})
	require.Error(t, s.Validate())

	require.NoError(t, testSchema().Validate())
}
