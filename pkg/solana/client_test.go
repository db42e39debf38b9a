package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureStatus(t *testing.T) {
	zero, one := 0, 1

	for _, tc := range []struct {
		s         SignatureStatus
		confirmed bool
		finalized bool
	}{
		{s: SignatureStatus{Confirmations: &zero}},
		{s: SignatureStatus{Confirmations: &zero, ConfirmationStatus: "random"}},
		{s: SignatureStatus{Confirmations: &zero, ConfirmationStatus: confirmationStatusProcessed}},
		{s: SignatureStatus{Confirmations: &one}, confirmed: true},
		{s: SignatureStatus{Confirmations: &zero, ConfirmationStatus: confirmationStatusConfirmed}, confirmed: true},
		{s: SignatureStatus{Confirmations: &zero, ConfirmationStatus: confirmationStatusFinalized}, confirmed: true, finalized: true},
		{s: SignatureStatus{}, confirmed: true, finalized: true},
	} {
		assert.Equal(t, tc.confirmed, tc.s.Confirmed())
		assert.Equal(t, tc.finalized, tc.s.Finalized())
		assert.True(t, tc.s.Reached(CommitmentProcessed))
		assert.Equal(t, tc.confirmed, tc.s.Reached(CommitmentConfirmed))
		assert.Equal(t, tc.finalized, tc.s.Reached(CommitmentFinalized))
	}
}

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     int               `json:"id"`
}

type fakeNode struct {
	mu       sync.Mutex
	handlers map[string]func(params []json.RawMessage) (interface{}, map[string]interface{})
	calls    map[string]int
}

func newFakeNode(t *testing.T) (*fakeNode, Client) {
	n := &fakeNode{
		handlers: make(map[string]func([]json.RawMessage) (interface{}, map[string]interface{})),
		calls:    make(map[string]int),
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		n.mu.Lock()
		n.calls[req.Method]++
		handler, ok := n.handlers[req.Method]
		n.mu.Unlock()

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if !ok {
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		} else if result, rpcErr := handler(req.Params); rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)

	return n, New(server.URL)
}

func (n *fakeNode) handle(method string, h func(params []json.RawMessage) (interface{}, map[string]interface{})) {
	n.mu.Lock()
	n.handlers[method] = h
	n.mu.Unlock()
}

func (n *fakeNode) callCount(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

func TestClient_RentAndBlockhash(t *testing.T) {
	node, client := newFakeNode(t)

	node.handle("getMinimumBalanceForRentExemption", func(params []json.RawMessage) (interface{}, map[string]interface{}) {
		var size uint64
		require.NoError(t, json.Unmarshal(params[0], &size))
		return (128 + size) * 3480 * 2, nil
	})

	var expected Blockhash
	expected[0] = 42
	node.handle("getLatestBlockhash", func(_ []json.RawMessage) (interface{}, map[string]interface{}) {
		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 1},
			"value":   map[string]interface{}{"blockhash": expected.String(), "lastValidBlockHeight": 100},
		}, nil
	})

	lamports, err := client.GetMinimumBalanceForRentExemption(context.Background(), 25)
	require.NoError(t, err)
	assert.EqualValues(t, (128+25)*3480*2, lamports)

	bh, err := client.GetLatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, bh)

	// Served from cache.
	bh, err = client.GetLatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, bh)
	assert.Equal(t, 1, node.callCount("getLatestBlockhash"))
}

func TestClient_GetAccountInfo(t *testing.T) {
	node, client := newFakeNode(t)

	owner, _ := generateKey(t)
	account, _ := generateKey(t)
	data := []byte{1, 2, 3}

	node.handle("getAccountInfo", func(params []json.RawMessage) (interface{}, map[string]interface{}) {
		var requested string
		require.NoError(t, json.Unmarshal(params[0], &requested))
		if requested != base58.Encode(account) {
			return map[string]interface{}{"value": nil}, nil
		}

		return map[string]interface{}{
			"value": map[string]interface{}{
				"lamports":   1000,
				"owner":      base58.Encode(owner),
				"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
				"executable": false,
			},
		}, nil
	})

	info, err := client.GetAccountInfo(context.Background(), account, CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, owner, info.Owner)
	assert.Equal(t, data, info.Data)
	assert.EqualValues(t, 1000, info.Lamports)

	_, err = client.GetAccountInfo(context.Background(), owner, CommitmentConfirmed)
	assert.Equal(t, ErrNoAccountInfo, err)
}

func TestClient_SubmitTransaction(t *testing.T) {
	node, client := newFakeNode(t)

	payer, payerKey := generateKey(t)
	program, _ := generateKey(t)
	tx := NewTransaction(payer, NewInstruction(program, []byte{10}, NewAccountMeta(payer, true)))
	require.NoError(t, tx.Sign(payerKey))

	node.handle("sendTransaction", func(params []json.RawMessage) (interface{}, map[string]interface{}) {
		var encoded string
		require.NoError(t, json.Unmarshal(params[0], &encoded))

		raw, err := base58.Decode(encoded)
		require.NoError(t, err)

		var submitted Transaction
		require.NoError(t, submitted.Unmarshal(raw))
		assert.NoError(t, submitted.VerifySignatures())

		return submitted.Signature().String(), nil
	})

	sig, err := client.SubmitTransaction(context.Background(), tx, CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, tx.Signature(), sig)

	node.handle("sendTransaction", func(_ []json.RawMessage) (interface{}, map[string]interface{}) {
		return nil, map[string]interface{}{
			"code":    -32002,
			"message": "Transaction simulation failed",
			"data": map[string]interface{}{
				"err": map[string]interface{}{"InstructionError": []interface{}{1, map[string]interface{}{"Custom": 12}}},
			},
		}
	})

	_, err = client.SubmitTransaction(context.Background(), tx, CommitmentConfirmed)
	require.Error(t, err)
	txErr, ok := err.(*TransactionError)
	require.True(t, ok)
	require.NotNil(t, txErr.InstructionError())
	assert.Equal(t, 1, txErr.InstructionError().Index)
	assert.Equal(t, CustomError(12), *txErr.InstructionError().CustomError())

	// Rejections are surfaced once, without a resubmission.
	assert.Equal(t, 2, node.callCount("sendTransaction"))
}

func TestClient_GetSignatureStatus(t *testing.T) {
	node, client := newFakeNode(t)

	var sig Signature
	sig[0] = 7

	var polls int32
	node.handle("getSignatureStatuses", func(_ []json.RawMessage) (interface{}, map[string]interface{}) {
		switch atomic.AddInt32(&polls, 1) {
		case 1:
			return map[string]interface{}{"value": []interface{}{nil}}, nil
		case 2:
			return map[string]interface{}{"value": []interface{}{
				map[string]interface{}{"slot": 10, "confirmations": 0, "confirmationStatus": "processed", "err": nil},
			}}, nil
		default:
			return map[string]interface{}{"value": []interface{}{
				map[string]interface{}{"slot": 10, "confirmations": 1, "confirmationStatus": "confirmed", "err": nil},
			}}, nil
		}
	})

	status, err := client.GetSignatureStatus(context.Background(), sig, CommitmentConfirmed)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.True(t, status.Confirmed())
	assert.Nil(t, status.ErrorResult)
	assert.EqualValues(t, 3, atomic.LoadInt32(&polls))

	node.handle("getSignatureStatuses", func(_ []json.RawMessage) (interface{}, map[string]interface{}) {
		return map[string]interface{}{"value": []interface{}{
			map[string]interface{}{"slot": 11, "confirmations": 0, "confirmationStatus": "processed", "err": map[string]interface{}{
				"InstructionError": []interface{}{0, "MissingRequiredSignature"},
			}},
		}}, nil
	})

	status, err = client.GetSignatureStatus(context.Background(), sig, CommitmentFinalized)
	require.NoError(t, err)
	require.NotNil(t, status.ErrorResult)
	assert.Equal(t, InstructionErrorMissingRequiredSignature, status.ErrorResult.InstructionError().ErrorKey())
}

func TestClient_CanceledContext(t *testing.T) {
	node, client := newFakeNode(t)
	node.handle("getMinimumBalanceForRentExemption", func(_ []json.RawMessage) (interface{}, map[string]interface{}) {
		return 1, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetMinimumBalanceForRentExemption(ctx, 25)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, node.callCount("getMinimumBalanceForRentExemption"))
}
