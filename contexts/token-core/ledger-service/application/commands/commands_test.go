package commands

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"fatcow/contexts/token-core/ledger-service/adapters/memory"
	"fatcow/contexts/token-core/ledger-service/domain/entities"
	domainerrors "fatcow/contexts/token-core/ledger-service/domain/errors"
	"fatcow/contexts/token-core/ledger-service/ports"
)

type stubAdminGuard struct {
	administrator string
	paused        bool
}

func (g stubAdminGuard) IsAdministrator(_ context.Context, caller string) (bool, error) {
	return caller == g.administrator, nil
}

func (g stubAdminGuard) IsPaused(_ context.Context) (bool, error) {
	return g.paused, nil
}

func newMintUseCase(store *memory.Store, guard stubAdminGuard) MintUseCase {
	return MintUseCase{
		Ledger: store,
		Admin:  guard,
		Clock:  store,
		IDGen:  store,
	}
}

func mintToken(t *testing.T, store *memory.Store, owner string) entities.Token {
	t.Helper()
	result, err := newMintUseCase(store, stubAdminGuard{administrator: "tz1-admin"}).
		Execute(context.Background(), MintCommand{Caller: "tz1-admin", To: owner})
	if err != nil {
		t.Fatalf("mint to %s: %v", owner, err)
	}
	return result.Token
}

func TestMintAssignsSequentialIDs(t *testing.T) {
	store := memory.NewStore()

	first := mintToken(t, store, "tz1-alice")
	second := mintToken(t, store, "tz1-bob")
	if first.TokenID != 0 || second.TokenID != 1 {
		t.Fatalf("expected ids 0 and 1, got %d and %d", first.TokenID, second.TokenID)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPendingOutbox: %v", err)
	}
	if len(pending) != 2 || pending[0].EventType != "ledger.token.minted" {
		t.Fatalf("expected two minted envelopes, got %+v", pending)
	}
}

func TestMintRejectsNonAdministrator(t *testing.T) {
	store := memory.NewStore()
	useCase := newMintUseCase(store, stubAdminGuard{administrator: "tz1-admin"})

	_, err := useCase.Execute(context.Background(), MintCommand{Caller: "tz1-mallory", To: "tz1-mallory"})
	if !errors.Is(err, domainerrors.ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
}

func TestMintPauseGateBeatsAdminCheck(t *testing.T) {
	store := memory.NewStore()
	useCase := newMintUseCase(store, stubAdminGuard{administrator: "tz1-admin", paused: true})

	// Even the administrator sees the pause error while the gate is closed.
	_, err := useCase.Execute(context.Background(), MintCommand{Caller: "tz1-admin", To: "tz1-alice"})
	if !errors.Is(err, domainerrors.ErrMintPaused) {
		t.Fatalf("admin caller: expected ErrMintPaused, got %v", err)
	}
	_, err = useCase.Execute(context.Background(), MintCommand{Caller: "tz1-mallory", To: "tz1-mallory"})
	if !errors.Is(err, domainerrors.ErrMintPaused) {
		t.Fatalf("non-admin caller: expected ErrMintPaused, got %v", err)
	}
}

func TestTransferByOwnerMovesToken(t *testing.T) {
	store := memory.NewStore()
	mintToken(t, store, "tz1-alice")

	useCase := TransferUseCase{Ledger: store, Operators: store, Clock: store, IDGen: store}
	result, err := useCase.Execute(context.Background(), TransferCommand{
		Caller: "tz1-alice",
		Batches: []entities.TransferBatch{{
			From: "tz1-alice",
			Txs:  []entities.TransferTx{{To: "tz1-bob", TokenID: 0, Amount: 1}},
		}},
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if len(result.Changes) != 1 {
		t.Fatalf("expected one change, got %d", len(result.Changes))
	}

	token, err := store.GetToken(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if token.Owner != "tz1-bob" {
		t.Fatalf("expected owner tz1-bob, got %s", token.Owner)
	}
}

func TestTransferBatchIsAtomic(t *testing.T) {
	store := memory.NewStore()
	mintToken(t, store, "tz1-alice")
	mintToken(t, store, "tz1-alice")

	useCase := TransferUseCase{Ledger: store, Operators: store, Clock: store, IDGen: store}
	// Second entry names an undefined token, so the first must not apply.
	_, err := useCase.Execute(context.Background(), TransferCommand{
		Caller: "tz1-alice",
		Batches: []entities.TransferBatch{{
			From: "tz1-alice",
			Txs: []entities.TransferTx{
				{To: "tz1-bob", TokenID: 0, Amount: 1},
				{To: "tz1-bob", TokenID: 99, Amount: 1},
			},
		}},
	})
	if !errors.Is(err, domainerrors.ErrTokenUndefined) {
		t.Fatalf("expected ErrTokenUndefined, got %v", err)
	}

	token, err := store.GetToken(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if token.Owner != "tz1-alice" {
		t.Fatalf("expected token 0 untouched by failed batch, owner %s", token.Owner)
	}
}

func TestTransferSequentialSemanticsWithinBatchList(t *testing.T) {
	store := memory.NewStore()
	mintToken(t, store, "tz1-alice")

	useCase := TransferUseCase{Ledger: store, Operators: store, Clock: store, IDGen: store}
	key, _ := entities.NewOperatorKey("tz1-bob", "tz1-alice", 0)
	if err := store.ApplyOperatorUpdates(context.Background(), []entities.OperatorUpdate{
		{Kind: entities.OperatorAdd, Key: key},
	}); err != nil {
		t.Fatalf("seed operator grant: %v", err)
	}

	// Alice moves the token to Bob, then moves it onward on Bob's behalf. The
	// second batch is only valid because the first already staged Bob as owner.
	_, err := useCase.Execute(context.Background(), TransferCommand{
		Caller: "tz1-alice",
		Batches: []entities.TransferBatch{
			{
				From: "tz1-alice",
				Txs:  []entities.TransferTx{{To: "tz1-bob", TokenID: 0, Amount: 1}},
			},
			{
				From: "tz1-bob",
				Txs:  []entities.TransferTx{{To: "tz1-carol", TokenID: 0, Amount: 1}},
			},
		},
	})
	if err != nil {
		t.Fatalf("chained transfer: %v", err)
	}

	token, err := store.GetToken(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if token.Owner != "tz1-carol" {
		t.Fatalf("expected owner tz1-carol, got %s", token.Owner)
	}
}

func TestTransferRequiresOperatorGrant(t *testing.T) {
	store := memory.NewStore()
	mintToken(t, store, "tz1-alice")

	useCase := TransferUseCase{Ledger: store, Operators: store, Clock: store, IDGen: store}
	_, err := useCase.Execute(context.Background(), TransferCommand{
		Caller: "tz1-mallory",
		Batches: []entities.TransferBatch{{
			From: "tz1-alice",
			Txs:  []entities.TransferTx{{To: "tz1-mallory", TokenID: 0, Amount: 1}},
		}},
	})
	if !errors.Is(err, domainerrors.ErrNotOperator) {
		t.Fatalf("expected ErrNotOperator, got %v", err)
	}
}

func TestTransferZeroAmountIsNoOp(t *testing.T) {
	store := memory.NewStore()
	mintToken(t, store, "tz1-alice")

	useCase := TransferUseCase{Ledger: store, Operators: store, Clock: store, IDGen: store}
	// Zero-amount entries skip every balance check, even from a non-owner.
	result, err := useCase.Execute(context.Background(), TransferCommand{
		Caller: "tz1-bob",
		Batches: []entities.TransferBatch{{
			From: "tz1-bob",
			Txs:  []entities.TransferTx{{To: "tz1-carol", TokenID: 0, Amount: 0}},
		}},
	})
	if err != nil {
		t.Fatalf("zero-amount transfer: %v", err)
	}
	if len(result.Changes) != 0 {
		t.Fatalf("expected no changes, got %d", len(result.Changes))
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPendingOutbox: %v", err)
	}
	for _, row := range pending {
		if row.EventType == "ledger.transfer.applied" {
			t.Fatalf("no-op transfer must not queue an envelope")
		}
	}
}

func TestTransferRejectsWrongAmountOrOwner(t *testing.T) {
	store := memory.NewStore()
	mintToken(t, store, "tz1-alice")

	useCase := TransferUseCase{Ledger: store, Operators: store, Clock: store, IDGen: store}
	_, err := useCase.Execute(context.Background(), TransferCommand{
		Caller: "tz1-alice",
		Batches: []entities.TransferBatch{{
			From: "tz1-alice",
			Txs:  []entities.TransferTx{{To: "tz1-bob", TokenID: 0, Amount: 2}},
		}},
	})
	if !errors.Is(err, domainerrors.ErrInsufficientBalance) {
		t.Fatalf("amount 2: expected ErrInsufficientBalance, got %v", err)
	}

	_, err = useCase.Execute(context.Background(), TransferCommand{
		Caller: "tz1-bob",
		Batches: []entities.TransferBatch{{
			From: "tz1-bob",
			Txs:  []entities.TransferTx{{To: "tz1-carol", TokenID: 0, Amount: 1}},
		}},
	})
	if !errors.Is(err, domainerrors.ErrInsufficientBalance) {
		t.Fatalf("non-owner source: expected ErrInsufficientBalance, got %v", err)
	}
}

func TestBalanceOfQueuesOneCallbackEnvelope(t *testing.T) {
	store := memory.NewStore()
	mintToken(t, store, "tz1-alice")

	useCase := BalanceOfUseCase{Ledger: store, Outbox: store, Clock: store, IDGen: store}
	result, err := useCase.Execute(context.Background(), BalanceOfCommand{
		Caller:   "kt1-consumer",
		Callback: "kt1-consumer%receive_balances",
		Requests: []ports.BalanceRequest{
			{Owner: "tz1-alice", TokenID: 0},
			{Owner: "tz1-bob", TokenID: 0},
		},
	})
	if err != nil {
		t.Fatalf("balance_of: %v", err)
	}
	if result.RequestCount != 2 {
		t.Fatalf("expected 2 answered requests, got %d", result.RequestCount)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPendingOutbox: %v", err)
	}
	var callback struct {
		Callback string               `json:"callback"`
		Results  []ports.BalanceResult `json:"results"`
	}
	found := false
	for _, row := range pending {
		if row.EventType != "ledger.balance_of.responded" {
			continue
		}
		found = true
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if err := json.Unmarshal(envelope.Data, &callback); err != nil {
			t.Fatalf("decode callback payload: %v", err)
		}
	}
	if !found {
		t.Fatalf("expected a queued balance callback envelope")
	}
	if callback.Callback != "kt1-consumer%receive_balances" || len(callback.Results) != 2 {
		t.Fatalf("unexpected callback payload: %+v", callback)
	}
	if callback.Results[0].Balance != 1 || callback.Results[1].Balance != 0 {
		t.Fatalf("expected balances 1 and 0, got %+v", callback.Results)
	}
}

func TestBalanceOfRejectsUndefinedToken(t *testing.T) {
	store := memory.NewStore()
	useCase := BalanceOfUseCase{Ledger: store, Outbox: store, Clock: store, IDGen: store}

	_, err := useCase.Execute(context.Background(), BalanceOfCommand{
		Caller:   "kt1-consumer",
		Callback: "kt1-consumer%receive_balances",
		Requests: []ports.BalanceRequest{{Owner: "tz1-alice", TokenID: 0}},
	})
	if !errors.Is(err, domainerrors.ErrTokenUndefined) {
		t.Fatalf("expected ErrTokenUndefined, got %v", err)
	}
}

func TestUpdateOperatorsRequiresOwnership(t *testing.T) {
	store := memory.NewStore()
	useCase := UpdateOperatorsUseCase{Operators: store}

	key, _ := entities.NewOperatorKey("tz1-alice", "kt1-market", 0)
	err := useCase.Execute(context.Background(), UpdateOperatorsCommand{
		Caller:  "tz1-mallory",
		Updates: []entities.OperatorUpdate{{Kind: entities.OperatorAdd, Key: key}},
	})
	if !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	// One bad action rejects the whole list before any write.
	selfKey, _ := entities.NewOperatorKey("tz1-mallory", "kt1-market", 0)
	err = useCase.Execute(context.Background(), UpdateOperatorsCommand{
		Caller: "tz1-mallory",
		Updates: []entities.OperatorUpdate{
			{Kind: entities.OperatorAdd, Key: selfKey},
			{Kind: entities.OperatorAdd, Key: key},
		},
	})
	if !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for mixed list, got %v", err)
	}
	granted, err := store.HasOperator(context.Background(), selfKey)
	if err != nil || granted {
		t.Fatalf("expected no partial grant, granted=%v err=%v", granted, err)
	}
}
