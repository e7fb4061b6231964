package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

type fakeExecutor struct {
	execQueries []string
	execErr     error
}

func (f *fakeExecutor) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	f.execQueries = append(f.execQueries, query)
	if f.execErr != nil {
		return nil, f.execErr
	}
	return fakeResult{}, nil
}

func (f *fakeExecutor) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, nil
}

func (f *fakeExecutor) BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error) {
	return nil, errors.New("transactions unavailable in fake")
}

type fakeResult struct{}

func (fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (fakeResult) RowsAffected() (int64, error) { return 1, nil }

func TestBunAdapterExecDelegates(t *testing.T) {
	fake := &fakeExecutor{}
	adapter := NewBunAdapter(fake, "sqlite")

	result, err := adapter.Exec(context.Background(), "DELETE FROM builds WHERE id = ?", "b1")
	if err != nil {
		t.Fatalf("Exec() = %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil || affected != 1 {
		t.Fatalf("RowsAffected() = %d, %v", affected, err)
	}
	if len(fake.execQueries) != 1 {
		t.Fatalf("expected one query, got %d", len(fake.execQueries))
	}
}

func TestBunAdapterExecPropagatesError(t *testing.T) {
	boom := errors.New("disk full")
	adapter := NewBunAdapter(&fakeExecutor{execErr: boom}, "sqlite")

	if _, err := adapter.Exec(context.Background(), "INSERT"); !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
}

func TestBunAdapterReportsDriver(t *testing.T) {
	adapter := NewBunAdapter(&fakeExecutor{}, "postgres").(*BunAdapter)

	caps := adapter.Capabilities()
	if !caps.SupportsTx {
		t.Fatal("expected transaction support")
	}
	if caps.Metadata["driver"] != "postgres" {
		t.Fatalf("unexpected driver metadata %q", caps.Metadata["driver"])
	}
}

func TestNoOpProviderSwallowsEverything(t *testing.T) {
	provider := NewNoOpProvider()
	ctx := context.Background()

	if rows, err := provider.Query(ctx, "SELECT 1"); rows != nil || err != nil {
		t.Fatalf("Query() = %v, %v", rows, err)
	}
	if _, err := provider.Exec(ctx, "UPDATE"); err != nil {
		t.Fatalf("Exec() = %v", err)
	}

	called := false
	err := provider.Transaction(ctx, func(tx interfaces.Transaction) error {
		called = true
		return tx.Commit()
	})
	if err != nil {
		t.Fatalf("Transaction() = %v", err)
	}
	if !called {
		t.Fatal("expected transaction callback to run")
	}
}
