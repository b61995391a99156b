package handlers

import (
	"errors"
	"net/http"

	"satch-client/internal/app/journal"
	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/orchestrator"
	"satch-client/pkg/logger"
	"satch-client/pkg/rest"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
)

const apiGroup = "v1"

// Handler serves read-only views of the satch program. Every request goes to the
// ledger; nothing is cached between requests.
type Handler struct {
	Service *orchestrator.Service
	Journal journal.Repository
	BaseUrl string
}

func NewHandler(service *orchestrator.Service, journalRepo journal.Repository, baseUrl string) *Handler {
	return &Handler{Service: service, Journal: journalRepo, BaseUrl: baseUrl}
}

func (h *Handler) Routes() []rest.Route {
	return []rest.Route{
		rest.NewRoute(rest.GET, apiGroup, "plates/:plate", h.GetDriverByPlate),
		rest.NewRoute(rest.GET, apiGroup, "drivers/:authority", h.GetDriver),
		rest.NewRoute(rest.GET, apiGroup, "drivers/:authority/reviews", h.GetDriverReviews),
		rest.NewRoute(rest.GET, apiGroup, "drivers/:authority/qr", h.GetDriverQr),
		rest.NewRoute(rest.GET, apiGroup, "platforms/:authority", h.GetPlatform),
		rest.NewRoute(rest.GET, apiGroup, "platforms/:authority/drivers", h.GetPlatformDrivers),
		rest.NewRoute(rest.GET, apiGroup, "addresses/platform/:authority", h.DerivePlatform),
		rest.NewRoute(rest.GET, apiGroup, "addresses/driver/:authority", h.DeriveDriver),
		rest.NewRoute(rest.GET, apiGroup, "addresses/plate/:plate", h.DerivePlate),
		rest.NewRoute(rest.GET, apiGroup, "addresses/review/:profile/:index", h.DeriveReview),
		rest.NewRoute(rest.GET, apiGroup, "debug/accounts", h.DumpAccounts),
		rest.NewRoute(rest.GET, apiGroup, "journal/:id", h.GetJournalEntry),
		rest.NewRoute(rest.GET, apiGroup, "openapi.json", h.OpenApi),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledgererr.ErrEntityNotFound), errors.Is(err, journal.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledgererr.ErrEncode), errors.Is(err, ledgererr.ErrInvalidSeeds):
		return http.StatusBadRequest
	case errors.Is(err, ledgererr.ErrDecode):
		return http.StatusBadGateway
	case errors.Is(err, ledgererr.ErrGateway), errors.Is(err, ledgererr.ErrUnknownOutcome):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Default().Errorf(err, "%s %s failed", c.Request.Method, c.Request.URL.Path)
	}
	code, _ := ledgererr.Classify(err)
	c.JSON(status, gin.H{"error": err.Error(), "reason_code": code})
}

// publicKeyParam writes a 400 and returns false when the path parameter is not base58.
func publicKeyParam(c *gin.Context, name string) (solana.PublicKey, bool) {
	key, err := solana.PublicKeyFromBase58(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + ": " + err.Error()})
		return solana.PublicKey{}, false
	}
	return key, true
}
