package handlers

import (
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	// Dialogflow fulfillment and the mini-app REST surface. Paths are part
	// of the deployed contract, keep them stable.
	r.Post("/webhook", h.WebhookHandler)
	r.Get("/tableros_abiertos", h.OpenBoardsHandler)
	r.Get("/tablero/{id}/jugadores", h.BoardPlayersHandler)
	r.Get("/tablero/{id}/jackpot", h.BoardJackpotHandler)
	r.Get("/albumes_disponibles", h.AlbumsHandler)
	r.Post("/iniciar_compra_album", h.StartAlbumPurchaseHandler)
	r.Post("/callback_bold", h.BoldCallbackHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.HealthHandler)
		r.Get("/ws", h.HandleWebSocket)
	})

	// Secure routes
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(h.tokenAuth))
		r.Use(jwtauth.Authenticator)

		r.Post("/simular_compras", h.SimulatePurchasesHandler)
	})
}

func (h *Handler) InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := h.tokenAuth.Encode(map[string]interface{}{
		"service_id": 8003022,
		"exp":        expirationTime,
	})

	// For debugging only, comment it out in production
	log.Infof("DEBUG: JWT for testing expires soon : %s", tokenString)
}
