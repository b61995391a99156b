package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/orchestrator"
	"satch-client/internal/app/schema"
	"satch-client/internal/app/signer"
	"satch-client/pkg/logger"
	"satch-client/pkg/rabbitmq"
	reasoncodes "satch-client/pkg/reason_codes"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ledgerJobWorkerName = "LedgerJobWorker"

	LedgerJobConsumerAlias        rabbitmq.ConsumerAlias  = "SatchJobConsumer"
	LedgerJobResultPublisherAlias rabbitmq.PublisherAlias = "SatchJobResultPublisher"

	defaultJobTimeout = 90 * time.Second
)

// LedgerJobWorker executes queued writes with the service keypair as platform
// authority and default reviewer. Driver keys come from the keyring.
type LedgerJobWorker struct {
	Consumer  rabbitmq.IRabbitmqConsumer
	Publisher rabbitmq.IRabbitmqPublisher
	Service   *orchestrator.Service
	Payer     signer.Signer
	Keyring   *signer.Keyring
	Timeout   time.Duration
}

func NewLedgerJobWorker(service *orchestrator.Service, payer signer.Signer, keyring *signer.Keyring) *LedgerJobWorker {
	return &LedgerJobWorker{
		Consumer:  rabbitmq.GetConsumer(LedgerJobConsumerAlias),
		Publisher: rabbitmq.GetPublisher(LedgerJobResultPublisherAlias),
		Service:   service,
		Payer:     payer,
		Keyring:   keyring,
		Timeout:   defaultJobTimeout,
	}
}

func (w *LedgerJobWorker) GetServiceName() string {
	return ledgerJobWorkerName
}

func (w *LedgerJobWorker) StartService() {
	workerLogger := logger.Default()
	if w.Consumer == nil || w.Publisher == nil {
		workerLogger.Warnf("%s has no consumer or publisher configured, not starting", ledgerJobWorkerName)
		return
	}

	err := w.Consumer.StartConsuming(func(d amqp.Delivery) {
		ctx, cancel := context.WithTimeout(context.Background(), w.Timeout)
		defer cancel()

		result := w.Handle(ctx, d.Body)
		if err := w.Publisher.Publish(result); err != nil {
			workerLogger.Errorf(err, "Can't publish result of job %s", result.JobId)
		}
	})
	if err != nil {
		workerLogger.Errorf(err, "%s stopped consuming", ledgerJobWorkerName)
	}
}

// Handle runs one job body and always returns a result to publish.
func (w *LedgerJobWorker) Handle(ctx context.Context, body []byte) LedgerJobResultDto {
	workerLogger := logger.Default()

	var job LedgerJobDto
	if err := json.Unmarshal(body, &job); err != nil {
		workerLogger.Error(err, "Unable to unmarshal ledger job")
		return LedgerJobResultDto{
			Status:      JobFailed,
			ReasonCode:  reasoncodes.ErrUnmarshal,
			RetryClass:  ledgererr.InputError,
			Error:       err.Error(),
			RequestBody: body,
		}
	}
	if job.JobId == "" {
		job.JobId = uuid.NewString()
	}

	result, err := w.run(ctx, job)
	result.JobId = job.JobId
	result.Kind = job.Kind
	if err == nil {
		result.Status = JobSucceeded
		workerLogger.Infof("Job %s (%s) succeeded with signature %s", job.JobId, job.Kind, result.Signature)
		return result
	}

	code, class := ledgererr.Classify(err)
	if errors.Is(err, errUnsupportedJob) {
		code, class = reasoncodes.ErrUnsupportedJob, ledgererr.InputError
	}
	result.Status = JobFailed
	if class == ledgererr.Unknown {
		result.Status = JobUnknown
	}
	result.ReasonCode = code
	result.RetryClass = class
	result.Error = err.Error()
	workerLogger.Errorf(err, "Job %s (%s) finished as %s", job.JobId, job.Kind, result.Status)
	return result
}

var errUnsupportedJob = errors.New("unsupported job kind")

func (w *LedgerJobWorker) run(ctx context.Context, job LedgerJobDto) (LedgerJobResultDto, error) {
	switch job.Kind {
	case schema.RequestRegisterPlatform:
		res, err := w.Service.RegisterPlatform(ctx, w.Payer, job.Name)
		if res == nil {
			return LedgerJobResultDto{}, err
		}
		return fromSubmission(res.Submission), err

	case schema.RequestRegisterDriver:
		driverKey, err := solana.PublicKeyFromBase58(job.DriverAuthority)
		if err != nil {
			return LedgerJobResultDto{}, fmt.Errorf("%w: driver_authority: %v", ledgererr.ErrEncode, err)
		}
		driver, err := w.lookupSigner(driverKey)
		if err != nil {
			return LedgerJobResultDto{}, err
		}
		res, err := w.Service.RegisterDriver(ctx, w.Payer, driver, job.Name, job.LicensePlate)
		if res == nil {
			return LedgerJobResultDto{}, err
		}
		return fromSubmission(res.Submission), err

	case schema.RequestLeaveReview:
		profileAddr, err := w.reviewTarget(ctx, job)
		if err != nil {
			return LedgerJobResultDto{}, err
		}
		reviewer := w.Payer
		if job.Reviewer != "" {
			reviewerKey, err := solana.PublicKeyFromBase58(job.Reviewer)
			if err != nil {
				return LedgerJobResultDto{}, fmt.Errorf("%w: reviewer: %v", ledgererr.ErrEncode, err)
			}
			if reviewer, err = w.lookupSigner(reviewerKey); err != nil {
				return LedgerJobResultDto{}, err
			}
		}
		res, err := w.Service.LeaveReview(ctx, reviewer, profileAddr, job.Rating, job.MessageHash)
		if res == nil {
			return LedgerJobResultDto{}, err
		}
		out := fromSubmission(res.Submission)
		index := res.Index
		out.Index = &index
		out.Attempts = res.Attempts
		return out, err

	default:
		return LedgerJobResultDto{}, fmt.Errorf("%w: %q", errUnsupportedJob, job.Kind)
	}
}

func (w *LedgerJobWorker) lookupSigner(pub solana.PublicKey) (signer.Signer, error) {
	if pub.Equals(w.Payer.PublicKey()) {
		return w.Payer, nil
	}
	if w.Keyring == nil {
		return nil, fmt.Errorf("%w: %w: no keyring for %s", ledgererr.ErrSigner, ledgererr.ErrSignerUnavailable, pub)
	}
	return w.Keyring.Signer(pub)
}

// reviewTarget resolves the driver profile from the driver authority or a license plate.
func (w *LedgerJobWorker) reviewTarget(ctx context.Context, job LedgerJobDto) (solana.PublicKey, error) {
	if job.Driver != "" {
		authority, err := solana.PublicKeyFromBase58(job.Driver)
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("%w: driver: %v", ledgererr.ErrEncode, err)
		}
		addr, _, err := w.Service.Deriver.Driver(authority)
		if err != nil {
			return solana.PublicKey{}, err
		}
		return addr, nil
	}
	entry, err := w.Service.LookupDriver(ctx, job.LicensePlate)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return entry.Address, nil
}

func fromSubmission(sub orchestrator.Submission) LedgerJobResultDto {
	out := LedgerJobResultDto{
		Target:    sub.Target.String(),
		JournalId: sub.JournalID,
	}
	if sub.Signature != (solana.Signature{}) {
		out.Signature = sub.Signature.String()
	}
	return out
}
