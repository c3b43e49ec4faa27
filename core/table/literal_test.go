package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLiteral(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"null", Null(), "NULL"},
		{"plain string", String("hello"), "'hello'"},
		{"embedded quote", String("O'Brien"), "'O''Brien'"},
		{"only quotes", String("''"), "''''''"},
		{"bool true", Bool(true), "TRUE"},
		{"bool false", Bool(false), "FALSE"},
		{"integer", NumberInt(42), "42"},
		{"negative float", NumberFloat(-3.25), "-3.25"},
		{"big int keeps digits", NumberText("9007199254740993"), "9007199254740993"},
		{"timestamp", Time(ts), "'2024-03-15 10:30:00'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Literal(tt.value)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLiteral_Errors(t *testing.T) {
	// Numeric text that is not a decimal must not be embedded.
	_, err := Literal(NumberText("1; DROP TABLE x"))
	assert.Error(t, err)
	var fe *FormatError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, KindNumber, fe.Kind)

	// Unknown kind fails fast instead of stringifying.
	_, err = Literal(Value{Kind: Kind(99)})
	assert.Error(t, err)
}

func TestLiteral_TimestampIsUTC(t *testing.T) {
	loc := time.FixedZone("plus2", 2*3600)
	v := Time(time.Date(2024, 3, 15, 12, 0, 0, 0, loc))

	got, err := Literal(v)
	assert.NoError(t, err)
	assert.Equal(t, "'2024-03-15 10:00:00'", got)
}
