package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/mosaicnetworks/consent/src/address"
	"github.com/mosaicnetworks/consent/src/common"
	"github.com/mosaicnetworks/consent/src/crypto/keys"
	"github.com/mosaicnetworks/consent/src/ledger"
	"github.com/mosaicnetworks/consent/src/payload"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// permission kinds by their URL name
var kindNames = map[string]address.Kind{
	"read":         address.Read,
	"write":        address.Write,
	"share":        address.Share,
	"share_shared": address.ShareOfShared,
}

// Service ...
type Service struct {
	bindAddress string
	client      LedgerClient
	router      chi.Router
	server      *http.Server
	logger      *logrus.Entry
}

// NewService ...
func NewService(bindAddress string, client LedgerClient, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress: bindAddress,
		client:      client,
		router:      chi.NewRouter(),
		logger:      logger,
	}

	service.registerHandlers()

	service.server = &http.Server{
		Addr:    bindAddress,
		Handler: service.router,
	}

	return &service
}

func (s *Service) registerHandlers() {
	s.logger.Debug("Registering gateway handlers")

	// Any origin may call the API. Preflight requests are answered here.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/health", s.GetHealth)

	s.router.Route("/clients", func(r chi.Router) {
		r.Post("/", s.CreateClient)
		r.Get("/{public_key}", s.GetClient)
	})

	s.router.Route("/consent", func(r chi.Router) {
		r.Post("/grant/{kind}", s.makeAccessHandler(true))
		r.Post("/revoke/{kind}", s.makeAccessHandler(false))
		r.Get("/{src_pkey}/{dest_pkey}", s.GetConsent)
	})
}

// Handler returns the router, for embedding or testing.
func (s *Service) Handler() http.Handler {
	return s.router
}

// Serve calls ListenAndServe. This is a blocking call.
func (s *Service) Serve() error {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving gateway")

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown ...
func (s *Service) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

/*******************************************************************************
* Handlers                                                                     *
*******************************************************************************/

type createClientRequest struct {
	PublicKey string `json:"public_key"`
	Name      string `json:"name"`
}

type accessRequest struct {
	DestPkey string `json:"dest_pkey"`
	SrcPkey  string `json:"src_pkey"`
}

type clientResponse struct {
	PublicKey string `json:"public_key"`
	Name      string `json:"name"`
}

type consentResponse struct {
	SrcPkey     string `json:"src_pkey"`
	DestPkey    string `json:"dest_pkey"`
	Read        bool   `json:"read"`
	Write       bool   `json:"write"`
	Share       bool   `json:"share"`
	ShareShared bool   `json:"share_shared"`
}

// GetHealth ...
func (s *Service) GetHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := s.client.Stats(r.Context())
	if err != nil {
		s.logger.WithError(err).Debug("Health")
		writeJSON(w, statusFor(err), map[string]interface{}{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"ledger": stats,
	})
}

// CreateClient ...
func (s *Service) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}

	s.submit(w, r, payload.NewCreateClientAction(req.PublicKey, req.Name))
}

// GetClient ...
func (s *Service) GetClient(w http.ResponseWriter, r *http.Request) {
	pkey := chi.URLParam(r, "public_key")
	if _, err := keys.ParsePublicKeyHex(pkey); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_PUBLIC_KEY", err.Error())
		return
	}

	client, err := ConsentState(r.Context(), s.client).GetClient(pkey)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"request_id": newRequestID(),
		"client":     clientResponse{PublicKey: client.PublicKey, Name: client.Name},
	})
}

func (s *Service) makeAccessHandler(grant bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := kindNames[chi.URLParam(r, "kind")]
		if !ok {
			writeError(w, http.StatusNotFound, "UNKNOWN_KIND", "unknown permission kind "+chi.URLParam(r, "kind"))
			return
		}

		at, err := payload.AccessAction(kind, grant)
		if err != nil {
			writeError(w, http.StatusNotFound, "UNKNOWN_KIND", err.Error())
			return
		}

		var req accessRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
			return
		}

		s.submit(w, r, payload.NewAccessAction(at, req.DestPkey, req.SrcPkey))
	}
}

// GetConsent ...
func (s *Service) GetConsent(w http.ResponseWriter, r *http.Request) {
	src := chi.URLParam(r, "src_pkey")
	dest := chi.URLParam(r, "dest_pkey")

	for _, p := range []string{src, dest} {
		if _, err := keys.ParsePublicKeyHex(p); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_PUBLIC_KEY", err.Error())
			return
		}
	}

	state := ConsentState(r.Context(), s.client)

	granted := make(map[address.Kind]bool)
	for _, kind := range address.PermissionKinds {
		ok, err := state.HasAccess(kind, dest, src)
		if err != nil {
			s.writeLedgerError(w, err)
			return
		}
		granted[kind] = ok
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"request_id": newRequestID(),
		"consent": consentResponse{
			SrcPkey:     src,
			DestPkey:    dest,
			Read:        granted[address.Read],
			Write:       granted[address.Write],
			Share:       granted[address.Share],
			ShareShared: granted[address.ShareOfShared],
		},
	})
}

func (s *Service) submit(w http.ResponseWriter, r *http.Request, action *payload.Action) {
	receipt, err := s.client.Submit(r.Context(), action)
	if err != nil {
		s.logger.WithError(err).WithField("action", action.Type).Debug("Submit")
		s.writeLedgerError(w, err)
		return
	}

	status := http.StatusOK
	if receipt.Status != ledger.Committed {
		status = http.StatusBadRequest
	}

	writeJSON(w, status, map[string]interface{}{
		"request_id": newRequestID(),
		"receipt":    receipt,
	})
}

func (s *Service) writeLedgerError(w http.ResponseWriter, err error) {
	status := statusFor(err)

	code := "LEDGER_ERROR"
	switch status {
	case http.StatusBadRequest:
		code = "INVALID_REQUEST"
	case http.StatusNotFound:
		code = "NOT_FOUND"
	case http.StatusGatewayTimeout:
		code = "TIMEOUT"
	case http.StatusInternalServerError:
		code = "INTERNAL"
	}

	writeError(w, status, code, err.Error())
}

// statusFor maps an error from a LedgerClient to an HTTP status.
func statusFor(err error) int {
	var (
		te *TimeoutError
		le *LedgerError
		de *payload.DecodeError
		ve *payload.ValidationError
	)

	switch {
	case errors.As(err, &te), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &le):
		return http.StatusBadGateway
	case errors.As(err, &de), errors.As(err, &ve):
		return http.StatusBadRequest
	case common.IsStore(err, common.KeyNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

/*******************************************************************************
* JSON helpers                                                                 *
*******************************************************************************/

func newRequestID() string {
	return "req_" + ulid.Make().String()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"request_id": newRequestID(),
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}
