package solana

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"
)

func decodeRaw(t *testing.T, s string) interface{} {
	d := json.NewDecoder(bytes.NewBufferString(s))
	d.UseNumber()

	var raw interface{}
	require.NoError(t, d.Decode(&raw))
	return raw
}

func TestParseTransactionError(t *testing.T) {
	e, err := ParseTransactionError(decodeRaw(t, `{"InstructionError":[1,{"Custom":12}]}`))
	require.NoError(t, err)
	assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
	require.NotNil(t, e.InstructionError())
	assert.Equal(t, 1, e.InstructionError().Index)
	assert.Equal(t, InstructionErrorCustom, e.InstructionError().ErrorKey())
	require.NotNil(t, e.InstructionError().CustomError())
	assert.Equal(t, CustomError(12), *e.InstructionError().CustomError())

	var custom CustomError
	assert.True(t, errors.As(e.InstructionError(), &custom))
	assert.Equal(t, CustomError(12), custom)

	e, err = ParseTransactionError(decodeRaw(t, `{"InstructionError":[0,"InvalidArgument"]}`))
	require.NoError(t, err)
	assert.Equal(t, InstructionErrorInvalidArgument, e.InstructionError().ErrorKey())
	assert.Nil(t, e.InstructionError().CustomError())

	e, err = ParseTransactionError(decodeRaw(t, `"BlockhashNotFound"`))
	require.NoError(t, err)
	assert.Equal(t, TransactionErrorBlockhashNotFound, e.ErrorKey())
	assert.Nil(t, e.InstructionError())

	e, err = ParseTransactionError(nil)
	assert.NoError(t, err)
	assert.Nil(t, e)

	_, err = ParseTransactionError(decodeRaw(t, `{"a":1,"b":2}`))
	assert.Error(t, err)
}

func TestParseRPCError(t *testing.T) {
	e, err := ParseRPCError(&jsonrpc.RPCError{
		Code:    -32002,
		Message: "Transaction simulation failed",
		Data: map[string]interface{}{
			"err": decodeRaw(t, `{"InstructionError":[1,"MissingRequiredSignature"]}`),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, InstructionErrorMissingRequiredSignature, e.InstructionError().ErrorKey())

	e, err = ParseRPCError(&jsonrpc.RPCError{Data: map[string]interface{}{}})
	assert.NoError(t, err)
	assert.Nil(t, e)

	_, err = ParseRPCError(&jsonrpc.RPCError{Data: "nope"})
	assert.Error(t, err)
}

func TestNewTransactionErrors(t *testing.T) {
	e := NewTransactionError(TransactionErrorDuplicateSignature)
	assert.Equal(t, TransactionErrorDuplicateSignature, e.ErrorKey())
	s, err := e.JSONString()
	require.NoError(t, err)
	assert.Equal(t, `"DuplicateSignature"`, s)

	e = NewInstructionTransactionError(1, CustomError(3))
	assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
	assert.Equal(t, "Error processing Instruction 1: custom program error: 0x3", e.Error())
}

func TestParseJSONNumber(t *testing.T) {
	for i, c := range []interface{}{"1", 1.0, json.Number("1")} {
		v, err := parseJSONNumber(c)
		assert.NoError(t, err)
		assert.Equal(t, 1, v, i)
	}

	_, err := parseJSONNumber(true)
	assert.Error(t, err)
}
