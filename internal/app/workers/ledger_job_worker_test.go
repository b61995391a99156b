package workers

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/ledgertest"
	"satch-client/internal/app/orchestrator"
	"satch-client/internal/app/schema"
	"satch-client/internal/app/signer"
	reasoncodes "satch-client/pkg/reason_codes"
	"satch-client/pkg/utilities"

	"github.com/gagliardetto/solana-go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var programID = solana.MustPublicKeyFromBase58("4D3Lfi2YVgFiqRaiN8SyBxJkob5cnbxHUo86xUtgqNoH")

type fakeConsumer struct {
	bodies [][]byte
}

func (fc *fakeConsumer) StartConsuming(handler func(amqp.Delivery)) error {
	for _, b := range fc.bodies {
		handler(amqp.Delivery{Body: b})
	}
	return nil
}

type fakePublisher struct {
	mu      sync.Mutex
	results []LedgerJobResultDto
}

func (fp *fakePublisher) Publish(body utilities.Serializable) error {
	raw, err := body.Serialize()
	if err != nil {
		return err
	}
	var result LedgerJobResultDto
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.results = append(fp.results, result)
	return nil
}

type workerFixture struct {
	ledger *ledgertest.Ledger
	worker *LedgerJobWorker
	payer  signer.Signer
	driver signer.Signer
}

func newWorkerFixture() *workerFixture {
	ledger := ledgertest.New(programID)
	payer := signer.NewKeypairSigner(solana.NewWallet().PrivateKey)
	driver := signer.NewKeypairSigner(solana.NewWallet().PrivateKey)

	svc := orchestrator.NewService(ledger, programID, orchestrator.Options{Confirm: true, ConflictRetries: 2})
	worker := NewLedgerJobWorker(svc, payer, signer.NewKeyring("", driver))
	return &workerFixture{ledger: ledger, worker: worker, payer: payer, driver: driver}
}

func jobBody(t *testing.T, job LedgerJobDto) []byte {
	body, err := json.Marshal(job)
	require.NoError(t, err)
	return body
}

func TestJobsRunThroughConsumer(t *testing.T) {
	f := newWorkerFixture()
	consumer := &fakeConsumer{bodies: [][]byte{
		jobBody(t, LedgerJobDto{JobId: "p1", Kind: schema.RequestRegisterPlatform, Name: "Ola"}),
		jobBody(t, LedgerJobDto{JobId: "d1", Kind: schema.RequestRegisterDriver, Name: "Raju", LicensePlate: "KA-01-1234", DriverAuthority: f.driver.PublicKey().String()}),
		jobBody(t, LedgerJobDto{JobId: "r1", Kind: schema.RequestLeaveReview, LicensePlate: "KA-01-1234", Rating: 5, MessageHash: "ar://a"}),
		jobBody(t, LedgerJobDto{Kind: schema.RequestLeaveReview, LicensePlate: "KA-01-1234", Rating: 4, MessageHash: "ar://b"}),
	}}
	publisher := &fakePublisher{}
	f.worker.Consumer = consumer
	f.worker.Publisher = publisher

	f.worker.StartService()

	require.Len(t, publisher.results, 4)
	for _, r := range publisher.results {
		assert.Equal(t, JobSucceeded, r.Status, "%s: %s", r.JobId, r.Error)
		assert.NotEmpty(t, r.Signature)
	}
	assert.Equal(t, "p1", publisher.results[0].JobId)
	require.NotNil(t, publisher.results[2].Index)
	assert.Equal(t, uint64(0), *publisher.results[2].Index)
	require.NotNil(t, publisher.results[3].Index)
	assert.Equal(t, uint64(1), *publisher.results[3].Index)
	assert.NotEmpty(t, publisher.results[3].JobId)
}

func TestJobFailuresCarryReasonCodes(t *testing.T) {
	f := newWorkerFixture()
	ctx := context.Background()

	result := f.worker.Handle(ctx, []byte("{not json"))
	assert.Equal(t, JobFailed, result.Status)
	assert.Equal(t, reasoncodes.ErrUnmarshal, result.ReasonCode)
	assert.NotEmpty(t, result.RequestBody)

	result = f.worker.Handle(ctx, jobBody(t, LedgerJobDto{JobId: "x", Kind: "close_driver"}))
	assert.Equal(t, reasoncodes.ErrUnsupportedJob, result.ReasonCode)
	assert.Equal(t, ledgererr.InputError, result.RetryClass)

	result = f.worker.Handle(ctx, jobBody(t, LedgerJobDto{Kind: schema.RequestLeaveReview, LicensePlate: "NO-SUCH", Rating: 5, MessageHash: "h"}))
	assert.Equal(t, reasoncodes.ErrEntityNotFound, result.ReasonCode)

	result = f.worker.Handle(ctx, jobBody(t, LedgerJobDto{Kind: schema.RequestRegisterPlatform, Name: "Ola"}))
	require.Equal(t, JobSucceeded, result.Status)
	result = f.worker.Handle(ctx, jobBody(t, LedgerJobDto{Kind: schema.RequestRegisterPlatform, Name: "Ola"}))
	assert.Equal(t, JobFailed, result.Status)
	assert.Equal(t, reasoncodes.ErrDuplicateKey, result.ReasonCode)
	assert.NotEmpty(t, result.Target)

	result = f.worker.Handle(ctx, jobBody(t, LedgerJobDto{
		Kind:            schema.RequestRegisterDriver,
		Name:            "Raju",
		LicensePlate:    "KA-01-1234",
		DriverAuthority: solana.NewWallet().PublicKey().String(),
	}))
	assert.Equal(t, reasoncodes.ErrSigner, result.ReasonCode)
}

func TestLostAnswerReportsUnknown(t *testing.T) {
	f := newWorkerFixture()
	f.ledger.DropNextResponse()

	result := f.worker.Handle(context.Background(), jobBody(t, LedgerJobDto{Kind: schema.RequestRegisterPlatform, Name: "Ola"}))
	assert.Equal(t, JobUnknown, result.Status)
	assert.Equal(t, ledgererr.Unknown, result.RetryClass)
	assert.Equal(t, reasoncodes.ErrUnknownOutcome, result.ReasonCode)
	assert.NotEmpty(t, result.Signature)
}

func TestStartServiceWithoutQueues(t *testing.T) {
	f := newWorkerFixture()
	f.worker.Consumer = nil
	assert.NotPanics(t, f.worker.StartService)
	assert.Equal(t, ledgerJobWorkerName, f.worker.GetServiceName())
}

func TestReviewJobByDriverAuthority(t *testing.T) {
	f := newWorkerFixture()
	ctx := context.Background()

	result := f.worker.Handle(ctx, jobBody(t, LedgerJobDto{Kind: schema.RequestRegisterPlatform, Name: "Ola"}))
	require.Equal(t, JobSucceeded, result.Status, result.Error)
	result = f.worker.Handle(ctx, jobBody(t, LedgerJobDto{
		Kind:            schema.RequestRegisterDriver,
		Name:            "Raju",
		LicensePlate:    "KA-01-1234",
		DriverAuthority: f.driver.PublicKey().String(),
	}))
	require.Equal(t, JobSucceeded, result.Status, result.Error)

	result = f.worker.Handle(ctx, jobBody(t, LedgerJobDto{
		Kind:        schema.RequestLeaveReview,
		Driver:      f.driver.PublicKey().String(),
		Rating:      4,
		MessageHash: "ar://by-authority",
	}))
	require.Equal(t, JobSucceeded, result.Status, result.Error)
	require.NotNil(t, result.Index)
	assert.Equal(t, uint64(0), *result.Index)

	profileAddr, _, err := f.worker.Service.Deriver.Driver(f.driver.PublicKey())
	require.NoError(t, err)
	reviewAddr, _, err := f.worker.Service.Deriver.Review(profileAddr, 0)
	require.NoError(t, err)
	assert.Equal(t, reviewAddr.String(), result.Target)

	result = f.worker.Handle(ctx, jobBody(t, LedgerJobDto{Kind: schema.RequestLeaveReview, Driver: "not-a-key", Rating: 4, MessageHash: "h"}))
	assert.Equal(t, JobFailed, result.Status)
	assert.Equal(t, ledgererr.InputError, result.RetryClass)
}
