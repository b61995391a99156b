package journal

import (
	"context"
	"errors"
	"time"

	"satch-client/internal/app/gateway"
	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/schema"
	"satch-client/pkg/logger"

	"github.com/gagliardetto/solana-go"
	"github.com/robfig/cron"
)

const (
	reconcileWorkerName = "JournalReconcileWorker"
	confirmTimeout      = 5 * time.Second
)

// ReconcileWorker settles submissions whose outcome was lost. A landed signature or a
// present target resolves the entry as present; a target still missing once
// ResolveAfter has passed resolves it as absent.
type ReconcileWorker struct {
	repository   Repository
	gateway      gateway.Gateway
	cron         *cron.Cron
	schedule     string
	resolveAfter time.Duration
	now          func() time.Time
}

func NewReconcileWorker(repository Repository, gw gateway.Gateway, cfg JournalConfig) *ReconcileWorker {
	return &ReconcileWorker{
		repository:   repository,
		gateway:      gw,
		cron:         cron.New(),
		schedule:     cfg.ReconcileSchedule,
		resolveAfter: cfg.ResolveAfter,
		now:          time.Now,
	}
}

func (rw *ReconcileWorker) GetServiceName() string {
	return reconcileWorkerName
}

func (rw *ReconcileWorker) StartService() {
	err := rw.cron.AddFunc(rw.schedule, func() { rw.Reconcile(context.Background()) })
	if err != nil {
		logger.Default().Errorf(err, "Could not add function to %s", reconcileWorkerName)
		return
	}

	rw.cron.Start()
}

func (rw *ReconcileWorker) Stop() {
	rw.cron.Stop()
}

// Reconcile checks every open entry once and returns how many were resolved.
func (rw *ReconcileWorker) Reconcile(ctx context.Context) int {
	journalLogger := logger.Default()

	entries, err := rw.repository.OpenEntries(ctx)
	if err != nil {
		journalLogger.Error(err, "Could not read open journal entries")
		return 0
	}

	resolved := 0
	for _, e := range entries {
		status, detail, err := rw.check(ctx, e)
		if err != nil {
			journalLogger.Errorf(err, "Could not check journal entry %s", e.EntryId)
			continue
		}

		if status == "" {
			err = rw.repository.MarkChecked(ctx, e.EntryId)
		} else {
			err = rw.repository.Resolve(ctx, e.EntryId, status, detail)
			resolved++
			journalLogger.Infof("Journal entry %s (%s) resolved as %s", e.EntryId, e.UseCase, status)
		}
		if err != nil {
			journalLogger.Errorf(err, "Could not update journal entry %s", e.EntryId)
		}
	}
	return resolved
}

// check returns an empty status while the entry cannot be decided yet.
func (rw *ReconcileWorker) check(ctx context.Context, e Entry) (Status, string, error) {
	if e.Signature != "" {
		sig, err := solana.SignatureFromBase58(e.Signature)
		if err == nil {
			confirmCtx, cancel := context.WithTimeout(ctx, confirmTimeout)
			err = rw.gateway.Confirm(confirmCtx, sig)
			cancel()
			if err == nil {
				return StatusResolvedPresent, "signature landed", nil
			}
			var remote *ledgererr.RemoteError
			if errors.As(err, &remote) {
				return StatusRejected, remote.Error(), nil
			}
		}
	}

	target, err := solana.PublicKeyFromBase58(e.Target)
	if err != nil {
		return "", "", err
	}
	_, err = rw.gateway.FetchRaw(ctx, target)
	switch {
	case err == nil && e.UseCase != schema.RequestLeaveReview:
		return StatusResolvedPresent, "target exists", nil
	case err == nil, errors.Is(err, ledgererr.ErrEntityNotFound):
		// a review slot can be filled by a competing reviewer, so only the signature proves it
	default:
		return "", "", err
	}

	if rw.now().Sub(e.CreatedAt) >= rw.resolveAfter {
		return StatusResolvedAbsent, "target not written", nil
	}
	return "", "", nil
}
