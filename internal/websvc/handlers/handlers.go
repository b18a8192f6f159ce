package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/solutions-systems/bolas-locas/internal/comm"
	"github.com/solutions-systems/bolas-locas/internal/websvc/dialog"
	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
	"github.com/solutions-systems/bolas-locas/internal/websvc/service"
	"github.com/solutions-systems/bolas-locas/internal/websvc/ws"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, req *dialog.WebhookRequest) dialog.Reply
}

type BoardReader interface {
	ListOpen(ctx context.Context) ([]*models.Board, error)
	Players(ctx context.Context, boardID int) ([]*models.BoardPlayer, error)
}

type JackpotReader interface {
	GetByBoardID(ctx context.Context, boardID int) (*models.Jackpot, error)
}

type AlbumShop interface {
	ListActive(ctx context.Context) ([]*models.Album, error)
	StartPurchase(ctx context.Context, userId int64, albumID int) (string, error)
	Settle(ctx context.Context, purchaseID int64, state string) error
}

type Simulator interface {
	Run(ctx context.Context, boardID int) (made, skipped int, err error)
}

type AuditLog interface {
	Record(ctx context.Context, userId int64, action, fulfillment string)
}

type Handler struct {
	tokenAuth  *jwtauth.JWTAuth
	upgrader   websocket.Upgrader
	hub        *ws.Hub
	dispatcher Dispatcher
	boards     BoardReader
	jackpots   JackpotReader
	albums     AlbumShop
	simulator  Simulator
	audit      AuditLog
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func NewHandler(dispatcher Dispatcher, boards BoardReader, jackpots JackpotReader, albums AlbumShop, simulator Simulator, audit AuditLog, hub *ws.Hub) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		hub:        hub,
		dispatcher: dispatcher,
		boards:     boards,
		jackpots:   jackpots,
		albums:     albums,
		simulator:  simulator,
		audit:      audit,
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

// WebhookHandler is the Dialogflow fulfillment endpoint. Chat transports
// expect 200 regardless of business outcome, so every path answers with a
// well-formed reply payload.
func (h *Handler) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	req := &dialog.WebhookRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Errorf("webhook: malformed request body: %v", err)
		writeJSON(w, http.StatusOK, dialog.Text("❌ Hubo un error al procesar la solicitud."))
		return
	}

	reply := h.dispatcher.Dispatch(r.Context(), req)

	if h.audit != nil {
		userId, _ := req.CallerID()
		h.audit.Record(r.Context(), userId, req.QueryResult.Action, reply.Summary())
	}

	writeJSON(w, http.StatusOK, reply)
}

type openBoardItem struct {
	ID        int     `json:"id_tablero"`
	Name      string  `json:"nombre"`
	UnitPrice float64 `json:"precio_por_bolita"`
}

func (h *Handler) OpenBoardsHandler(w http.ResponseWriter, r *http.Request) {
	boards, err := h.boards.ListOpen(r.Context())
	if err != nil {
		log.Errorf("list open boards: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(boards) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No hay tableros abiertos."})
		return
	}

	items := make([]openBoardItem, 0, len(boards))
	for _, b := range boards {
		items = append(items, openBoardItem{
			ID:        b.ID,
			Name:      b.Name,
			UnitPrice: b.UnitPrice.InexactFloat64(),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) BoardPlayersHandler(w http.ResponseWriter, r *http.Request) {
	boardID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "El ID del tablero debe ser numérico."})
		return
	}

	players, err := h.boards.Players(r.Context(), boardID)
	if err != nil {
		log.Errorf("players of board %d: %v", boardID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(players) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No hay jugadores en este tablero."})
		return
	}

	writeJSON(w, http.StatusOK, players)
}

type boardJackpot struct {
	BoardID      int     `json:"id_tablero"`
	AccumUnits   int     `json:"acum_bolitas"`
	WinnerPrize  float64 `json:"premio_ganador"`
	SponsorPrize float64 `json:"premio_sponsor"`
}

func (h *Handler) BoardJackpotHandler(w http.ResponseWriter, r *http.Request) {
	boardID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "El ID del tablero debe ser numérico."})
		return
	}

	jp, err := h.jackpots.GetByBoardID(r.Context(), boardID)
	if err != nil {
		log.Errorf("jackpot of board %d: %v", boardID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if jp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No se encontraron datos del jackpot para este tablero."})
		return
	}

	writeJSON(w, http.StatusOK, boardJackpot{
		BoardID:      jp.BoardID,
		AccumUnits:   jp.AccumUnits,
		WinnerPrize:  jp.WinnerPrize.InexactFloat64(),
		SponsorPrize: jp.SponsorPrize.InexactFloat64(),
	})
}

type albumItem struct {
	ID          int     `json:"id_album"`
	Name        string  `json:"nombre"`
	Description string  `json:"descripcion"`
	Price       float64 `json:"precio"`
}

func (h *Handler) AlbumsHandler(w http.ResponseWriter, r *http.Request) {
	albums, err := h.albums.ListActive(r.Context())
	if err != nil {
		log.Errorf("list active albums: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(albums) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No hay álbumes disponibles."})
		return
	}

	items := make([]albumItem, 0, len(albums))
	for _, a := range albums {
		items = append(items, albumItem{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Price:       a.Price.InexactFloat64(),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) StartAlbumPurchaseHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserId  int64 `json:"user_id"`
		AlbumID int   `json:"id_album"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserId == 0 || body.AlbumID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Faltan parámetros obligatorios."})
		return
	}

	paymentURL, err := h.albums.StartPurchase(r.Context(), body.UserId, body.AlbumID)
	if err != nil {
		if errors.Is(err, service.ErrAlbumNotAvailable) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "El álbum no existe o no está disponible."})
			return
		}
		log.Errorf("start album purchase (user %d, album %d): %v", body.UserId, body.AlbumID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Error al generar la solicitud de pago."})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"payment_url": paymentURL})
}

// BoldCallbackHandler settles a pending album purchase when the payment
// gateway reports its final state.
func (h *Handler) BoldCallbackHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Reference == "" || body.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Faltan parámetros obligatorios."})
		return
	}

	purchaseID, err := strconv.ParseInt(body.Reference, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "La referencia de pago no es válida."})
		return
	}

	if err := h.albums.Settle(r.Context(), purchaseID, body.Status); err != nil {
		log.Errorf("settle album purchase %d: %v", purchaseID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Error al procesar el callback."})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Callback procesado correctamente."})
}

// SimulatePurchasesHandler resets one board and replays a random purchase
// per registered player. Maintenance traffic only, hence the JWT group.
func (h *Handler) SimulatePurchasesHandler(w http.ResponseWriter, r *http.Request) {
	boardID := service.DefaultSimulationBoard
	if raw := r.URL.Query().Get("tablero"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "El ID del tablero debe ser numérico."})
			return
		}
		boardID = id
	}

	made, skipped, err := h.simulator.Run(r.Context(), boardID)
	if err != nil {
		log.Errorf("purchase simulation on board %d: %v", boardID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	log.Infof("simulation on board %d: %d purchases, %d skipped", boardID, made, skipped)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Simulación de compras completada."})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "web service is running at port " + os.Getenv("SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode health response: %v", err)
	}
}

// HandleWebSocket upgrades a client onto the live jackpot feed.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Failed to upgrade to WebSocket: %v", err)
		http.Error(w, "Failed to upgrade to WebSocket", http.StatusInternalServerError)
		return
	}

	socketId := uuid.New().String()
	h.hub.StoreConnection(socketId, conn)

	log.Infof("New WebSocket connection established: %s", socketId)

	go h.handleConnection(conn, socketId)
}

func (h *Handler) handleConnection(conn *websocket.Conn, socketId string) {
	defer func() {
		log.Infof("Closing WebSocket connection: %s", socketId)
		conn.Close()
		h.hub.HandleDisconnect(socketId)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Errorf("WebSocket unexpected close error for socket %s: %v", socketId, err)
			} else {
				log.Infof("WebSocket connection closed normally for socket: %s", socketId)
			}
			break
		}

		message := &comm.WSMessage{}
		if err := json.Unmarshal(raw, &message); err != nil {
			log.Errorf("Failed to unmarshal message from socket %s: %v", socketId, err)
			continue
		}

		h.hub.SocketMessage(socketId, message)
	}
}
