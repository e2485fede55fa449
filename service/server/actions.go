package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/brojonat/floorlink/service/config"
	qrcode "github.com/skip2/go-qrcode"
)

// actionMetadata is the GET response describing an action to blink clients:
// what the item is, what it costs, and which operations are available.
type actionMetadata struct {
	Icon        string        `json:"icon"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Label       string        `json:"label"`
	Links       *actionLinks  `json:"links,omitempty"`
	Disabled    bool          `json:"disabled,omitempty"`
	Error       *actionErrMsg `json:"error,omitempty"`
}

type actionLinks struct {
	Actions []linkedAction `json:"actions"`
}

// linkedAction is one concrete operation a client can invoke, optionally
// parameterized (e.g. the bid amount).
type linkedAction struct {
	Label      string            `json:"label"`
	Href       string            `json:"href"`
	Parameters []actionParameter `json:"parameters,omitempty"`
}

type actionParameter struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

type actionErrMsg struct {
	Message string `json:"message"`
}

// actionPostResponse carries the unsigned transaction back to the client.
// The transaction is base64-encoded wire format; the client signs and
// broadcasts it. It is only valid for the lifetime of its blockhash.
type actionPostResponse struct {
	Transaction string `json:"transaction"`
	Message     string `json:"message,omitempty"`
}

// actionPostRequest is the POST body for all actions.
type actionPostRequest struct {
	Account string `json:"account"`
}

// buyActionPath returns the service-relative path for the buy action.
func buyActionPath(mint string) string {
	return fmt.Sprintf("/api/v1/actions/buy/%s", url.PathEscape(mint))
}

// bidActionPath returns the service-relative path for the parameterized bid
// action. The {amount} placeholder is substituted by the action client.
func bidActionPath(mint string) string {
	return fmt.Sprintf("/api/v1/actions/bid/%s?amount={amount}", url.PathEscape(mint))
}

// blinkURL builds the shareable blink URL for an action, as understood by
// blink-aware wallets and clients.
func blinkURL(cfg *config.Config, mint string) string {
	action := cfg.PublicBaseURL + buyActionPath(mint)
	return "solana-action:" + action
}

// handleActionsRules serves the actions.json routing manifest that action
// clients fetch to map site URLs onto API paths.
func handleActionsRules() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"rules": []map[string]string{
				{
					"pathPattern": "/api/v1/actions/**",
					"apiPath":     "/api/v1/actions/**",
				},
			},
		}, http.StatusOK)
	}
}

// handleActionQR renders the blink URL for a listing as a QR code PNG so the
// action can be shared out-of-band (print, screen share, chat).
// GET /api/v1/actions/buy/{mint}/qr
func handleActionQR(cfg *config.Config, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mint := r.PathValue("mint")
		if err := validateAddress(mint); err != nil {
			logger.Debug("invalid mint", "mint", mint, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		png, err := qrcode.Encode(blinkURL(cfg, mint), qrcode.Medium, 256)
		if err != nil {
			logger.Error("failed to encode QR code", "mint", mint, "error", err)
			writeError(w, "failed to generate QR code", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	})
}
