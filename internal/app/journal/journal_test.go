package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"satch-client/internal/app/gateway"
	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/ledgertest"
	"satch-client/internal/app/orchestrator"
	"satch-client/internal/app/schema"
	"satch-client/internal/app/signer"
	reasoncodes "satch-client/pkg/reason_codes"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var programID = solana.MustPublicKeyFromBase58("4D3Lfi2YVgFiqRaiN8SyBxJkob5cnbxHUo86xUtgqNoH")

func openTestDB(t *testing.T) *gorm.DB {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := Open(JournalConfigJson{
		Driver:           DriverSqlite,
		ConnectionString: fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}.ConvertToDomain())
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestConfigDefaults(t *testing.T) {
	cfg := JournalConfigJson{}.ConvertToDomain()
	assert.Equal(t, DriverSqlite, cfg.Driver)
	assert.Equal(t, DefaultConnectionString, cfg.ConnectionString)
	assert.Equal(t, DefaultSchedule, cfg.ReconcileSchedule)
	assert.Equal(t, DefaultResolveAfter, cfg.ResolveAfter)

	_, err := Open(JournalConfig{Driver: "mongodb"})
	assert.Error(t, err)
}

func TestCompleteSetsStatus(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	target := solana.NewWallet().PublicKey()
	sig := solana.Signature{1, 2, 3}

	tests := []struct {
		name      string
		confirmed bool
		outcome   error
		want      Status
		reason    string
	}{
		{"confirmed", true, nil, StatusConfirmed, ""},
		{"submitted", false, nil, StatusSubmitted, ""},
		{"lost answer", false, fmt.Errorf("%w: timeout", ledgererr.ErrUnknownOutcome), StatusUnknown, ""},
		{"rejected", false, gateway.NewRemoteError("custom program error: 0x1770", nil, nil), StatusRejected, string(reasoncodes.ErrRemoteRejected)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := repo.Begin(ctx, schema.RequestRegisterPlatform, target)
			require.NoError(t, err)

			entry, err := repo.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, StatusPending, entry.Status)
			assert.True(t, entry.Open())

			require.NoError(t, repo.Complete(ctx, id, sig, tt.confirmed, tt.outcome))
			entry, err = repo.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, entry.Status)
			assert.Equal(t, sig.String(), entry.Signature)
			assert.Equal(t, target.String(), entry.Target)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, entry.ReasonCode)
			}
		})
	}
}

func TestGetAndUpdateMissingEntry(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	_, err := repo.Get(context.Background(), "no-such-entry")
	assert.True(t, errors.Is(err, ErrEntryNotFound))
	err = repo.MarkChecked(context.Background(), "no-such-entry")
	assert.True(t, errors.Is(err, ErrEntryNotFound))
}

func TestOrchestratorWritesJournal(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ledger := ledgertest.New(programID)
	svc := orchestrator.NewService(ledger, programID, orchestrator.Options{Confirm: true}).WithJournal(repo)
	authority := signer.NewKeypairSigner(solana.NewWallet().PrivateKey)

	res, err := svc.RegisterPlatform(context.Background(), authority, "Ola")
	require.NoError(t, err)
	require.NotEmpty(t, res.JournalID)

	entry, err := repo.Get(context.Background(), res.JournalID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, entry.Status)
	assert.Equal(t, res.Signature.String(), entry.Signature)
	assert.Equal(t, schema.RequestRegisterPlatform, entry.UseCase)
}

func TestReconcileResolvesLostAnswers(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ledger := ledgertest.New(programID)
	svc := orchestrator.NewService(ledger, programID, orchestrator.Options{}).WithJournal(repo)
	ctx := context.Background()

	// lands, but the answer is lost
	ledger.DropNextResponse()
	landed, err := svc.RegisterPlatform(ctx, signer.NewKeypairSigner(solana.NewWallet().PrivateKey), "Ola")
	require.True(t, errors.Is(err, ledgererr.ErrUnknownOutcome))

	// never reaches the program
	ledger.FailNextSubmit(fmt.Errorf("%w: connection reset", ledgererr.ErrUnknownOutcome))
	lost, err := svc.RegisterPlatform(ctx, signer.NewKeypairSigner(solana.NewWallet().PrivateKey), "Uber")
	require.True(t, errors.Is(err, ledgererr.ErrUnknownOutcome))

	worker := NewReconcileWorker(repo, ledger, JournalConfigJson{ResolveAfterSecond: 60}.ConvertToDomain())
	assert.Equal(t, reconcileWorkerName, worker.GetServiceName())

	assert.Equal(t, 1, worker.Reconcile(ctx))
	entry, err := repo.Get(ctx, landed.JournalID)
	require.NoError(t, err)
	assert.Equal(t, StatusResolvedPresent, entry.Status)

	entry, err = repo.Get(ctx, lost.JournalID)
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, entry.Status)
	assert.Equal(t, 1, entry.Checks)

	worker.now = func() time.Time { return time.Now().Add(time.Hour) }
	assert.Equal(t, 1, worker.Reconcile(ctx))
	entry, err = repo.Get(ctx, lost.JournalID)
	require.NoError(t, err)
	assert.Equal(t, StatusResolvedAbsent, entry.Status)
	assert.False(t, entry.Open())

	assert.Equal(t, 0, worker.Reconcile(ctx))
}

func TestReconcileFindsLostReviewBySignature(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ledger := ledgertest.New(programID)
	svc := orchestrator.NewService(ledger, programID, orchestrator.Options{Confirm: true}).WithJournal(repo)
	ctx := context.Background()

	authority := signer.NewKeypairSigner(solana.NewWallet().PrivateKey)
	driver := signer.NewKeypairSigner(solana.NewWallet().PrivateKey)
	_, err := svc.RegisterPlatform(ctx, authority, "Ola")
	require.NoError(t, err)
	registered, err := svc.RegisterDriver(ctx, authority, driver, "Raju", "KA-01-1234")
	require.NoError(t, err)

	ledger.DropNextResponse()
	review, err := svc.LeaveReview(ctx, signer.NewKeypairSigner(solana.NewWallet().PrivateKey), registered.Target, 5, "ar://lost")
	require.True(t, errors.Is(err, ledgererr.ErrUnknownOutcome))
	require.NotNil(t, review)

	entry, err := repo.Get(ctx, review.JournalID)
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, entry.Status)
	assert.NotEmpty(t, entry.Signature)
	assert.Equal(t, review.Signature.String(), entry.Signature)

	worker := NewReconcileWorker(repo, ledger, JournalConfigJson{ResolveAfterSecond: 60}.ConvertToDomain())
	worker.now = func() time.Time { return time.Now().Add(time.Hour) }
	assert.Equal(t, 1, worker.Reconcile(ctx))

	entry, err = repo.Get(ctx, review.JournalID)
	require.NoError(t, err)
	assert.Equal(t, StatusResolvedPresent, entry.Status)
	assert.Equal(t, "signature landed", entry.Detail)
}
