package traps

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassifyDefinedCodes ensures every value in the trap table classifies to exactly the matching TrapCode.
func TestClassifyDefinedCodes(t *testing.T) {
	expected := map[int64]TrapCode{
		0:  Start,
		2:  Undef,
		3:  AlignmentFault,
		4:  DataReadFault,
		5:  DataWriteFault,
		8:  InstructionPermissionAbort,
		9:  Timer0,
		10: Timer1,
		11: Timer2,
		12: Timer3,
		14: Task1,
		15: Task2,
		16: PrivilegedData,
		17: PublicData,
		18: TableWalk,
	}
	for raw, code := range expected {
		classified, err := Classify(raw)
		assert.NoError(t, err, "raw value %d", raw)
		assert.Equal(t, code, classified)
	}

	// The table must not contain anything we did not list above
	assert.Len(t, AllTrapCodes(), len(expected))
}

// TestClassifyUnknownCodes ensures reserved gaps and out of range values fail with an UnknownTrapCodeError.
func TestClassifyUnknownCodes(t *testing.T) {
	unknown := []int64{1, 6, 7, 13, 19, 20, 255, 256, -1, math.MinInt64, math.MaxInt64}
	for _, raw := range unknown {
		_, err := Classify(raw)
		require.Error(t, err, "raw value %d", raw)
		assert.True(t, errors.Is(err, ErrUnknownTrapCode))

		var unknownErr *UnknownTrapCodeError
		require.True(t, errors.As(err, &unknownErr))
		assert.EqualValues(t, raw, unknownErr.Raw)
	}
}

// TestAllTrapCodesOrdering checks codes are listed in ascending order and all are valid.
func TestAllTrapCodesOrdering(t *testing.T) {
	codes := AllTrapCodes()
	for i, code := range codes {
		assert.True(t, code.IsValid())
		if i > 0 {
			assert.Less(t, codes[i-1], code)
		}
	}
	assert.Equal(t, Start, codes[0])
	assert.Equal(t, TableWalk, codes[len(codes)-1])
}

func TestTrapCodesInCategory(t *testing.T) {
	assert.Equal(t, []TrapCode{Timer0, Timer1, Timer2, Timer3}, TrapCodesInCategory(CategoryInterrupt))
	assert.Equal(t, []TrapCode{Task1, Task2}, TrapCodesInCategory(CategoryScheduling))
	assert.Equal(t, []TrapCode{PrivilegedData, PublicData, TableWalk}, TrapCodesInCategory(CategoryProtection))
	assert.Equal(t, []TrapCode{Start}, TrapCodesInCategory(CategoryControl))
	assert.Len(t, TrapCodesInCategory(CategoryFault), 5)
}

// TestParseTrapCode checks names, prefixed names and numbers are all accepted while reserved values are not.
func TestParseTrapCode(t *testing.T) {
	tests := []struct {
		input    string
		expected TrapCode
		wantErr  bool
	}{
		{input: "TIMER2", expected: Timer2},
		{input: "timer2", expected: Timer2},
		{input: "TESTING_TABLE_WALK", expected: TableWalk},
		{input: " 11 ", expected: Timer2},
		{input: "0", expected: Start},
		{input: "6", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "TIMER4", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tc := range tests {
		code, err := ParseTrapCode(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.input)
			continue
		}
		assert.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.expected, code)
	}
}

func TestTrapCodeStrings(t *testing.T) {
	assert.Equal(t, "INSTRUCTION_PERMISSION_ABORT", InstructionPermissionAbort.String())
	assert.Equal(t, "TIMER2 (11)", Timer2.Describe())
	assert.Equal(t, "RESERVED(13)", TrapCode(13).String())
	assert.Equal(t, Category(""), TrapCode(13).Category())
}

// TestTrapCodeJSON checks TrapCodes embedded in JSON documents are encoded by name.
func TestTrapCodeJSON(t *testing.T) {
	type wrapper struct {
		Code TrapCode `json:"code"`
	}

	b, err := json.Marshal(wrapper{Code: DataWriteFault})
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"DATA_WRITE_FAULT"}`, string(b))

	var decoded wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"code":"TESTING_TASK2"}`), &decoded))
	assert.Equal(t, Task2, decoded.Code)

	// Reserved values can neither be encoded nor decoded
	_, err = json.Marshal(wrapper{Code: TrapCode(7)})
	assert.Error(t, err)
	assert.Error(t, json.Unmarshal([]byte(`{"code":"7"}`), &decoded))

	// Numbers are accepted as well as quoted values
	require.NoError(t, json.Unmarshal([]byte(`{"code":11}`), &decoded))
	assert.Equal(t, Timer2, decoded.Code)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"code":13}`), &decoded), ErrUnknownTrapCode)
	assert.Error(t, json.Unmarshal([]byte(`{"code":-1}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"code":true}`), &decoded))
	assert.Equal(t, Timer2, decoded.Code)
}
