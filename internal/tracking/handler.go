package tracking

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/pkg/logger"
)

// 1x1 transparent GIF
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2c,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x44, 0x01, 0x00, 0x3b,
}

const unsubscribedPage = `<!DOCTYPE html><html><body style="font-family:Arial,sans-serif;text-align:center;padding:50px;">
	<h1>You have been unsubscribed</h1>
	<p>You will no longer receive these emails.</p>
</body></html>`

// Handler serves the public tracking endpoints embedded in emails.
type Handler struct {
	signer *Signer
	pub    EventPublisher
	now    func() time.Time
}

func NewHandler(signer *Signer, pub EventPublisher) *Handler {
	return &Handler{signer: signer, pub: pub, now: time.Now}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/t/open/{data}/{sig}", h.HandleOpen)
	r.Get("/t/click/{data}/{sig}", h.HandleClick)
	r.Get("/t/unsubscribe/{data}/{sig}", h.HandleUnsubscribe)
	r.Get("/health", h.HandleHealth)
	return r
}

// HandleOpen always answers with the pixel; only valid links are recorded.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	p, err := h.signer.Decode(chi.URLParam(r, "data"), chi.URLParam(r, "sig"), false)
	if err != nil {
		logger.Debug("ignoring open with bad link", "error", err)
		h.servePixel(w)
		return
	}
	h.pub.Publish(r.Context(), h.event(r, domain.EventOpened, p))
	h.servePixel(w)
}

func (h *Handler) HandleClick(w http.ResponseWriter, r *http.Request) {
	p, err := h.signer.Decode(chi.URLParam(r, "data"), chi.URLParam(r, "sig"), true)
	if err != nil {
		http.Error(w, "bad link", http.StatusBadRequest)
		return
	}
	if !Redirectable(p.URL) {
		http.Error(w, "bad link", http.StatusBadRequest)
		return
	}
	h.pub.Publish(r.Context(), h.event(r, domain.EventClicked, p))
	http.Redirect(w, r, p.URL, http.StatusTemporaryRedirect)
}

func (h *Handler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	p, err := h.signer.Decode(chi.URLParam(r, "data"), chi.URLParam(r, "sig"), false)
	if err != nil {
		http.Error(w, "bad link", http.StatusBadRequest)
		return
	}
	h.pub.Publish(r.Context(), h.event(r, domain.EventUnsubscribed, p))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(unsubscribedPage))
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) event(r *http.Request, kind domain.EventType, p Payload) domain.TrackingEvent {
	return domain.TrackingEvent{
		EventType:  kind,
		TenantID:   p.TenantID,
		CampaignID: p.CampaignID,
		ContactID:  p.ContactID,
		LinkURL:    p.URL,
		IPAddress:  realIP(r),
		UserAgent:  r.UserAgent(),
		Timestamp:  h.now().UTC(),
	}
}

func (h *Handler) servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Write(pixelGIF)
}

// Redirectable rejects anything but absolute http(s) URLs so a signed link
// can never become a javascript: or data: redirect.
func Redirectable(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
