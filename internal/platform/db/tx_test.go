package db

import (
	"context"
	"errors"
	"testing"
)

func TestTxFromContext_Nil(t *testing.T) {
	tx := TxFromContext(context.Background())
	if tx != nil {
		t.Error("expected nil tx from empty context")
	}
}

func TestTxFromContext_WithWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), DBTxKey, "not-a-tx")
	tx := TxFromContext(ctx)
	if tx != nil {
		t.Error("expected nil when context value is wrong type")
	}
}

func TestConnFromContext_Nil(t *testing.T) {
	conn := ConnFromContext(context.Background())
	if conn != nil {
		t.Error("expected nil conn from empty context")
	}
}

func TestConnFromContext_WithWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), DBTxKey, 12345)
	if conn := ConnFromContext(ctx); conn != nil {
		t.Error("expected nil when context value is wrong type")
	}
}

func TestTransactor_NoPool(t *testing.T) {
	tr := NewTransactor(nil)
	called := false
	err := tr.WithinTx(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error without a pool")
	}
	if called {
		t.Error("callback must not run without a transaction")
	}
	if err.Error() != "no database pool configured" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestTransactor_NoPoolErrorIsNotWrapped(t *testing.T) {
	tr := NewTransactor(nil)
	err := tr.WithinTx(context.Background(), func(ctx context.Context) error { return nil })
	if errors.Unwrap(err) != nil {
		t.Errorf("expected a plain error, got wrapped %v", err)
	}
}
