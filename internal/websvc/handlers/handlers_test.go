package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solutions-systems/bolas-locas/internal/websvc/dialog"
	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
	"github.com/solutions-systems/bolas-locas/internal/websvc/service"
	"github.com/solutions-systems/bolas-locas/internal/websvc/ws"
)

type stubDispatcher struct {
	reply dialog.Reply
}

func (s *stubDispatcher) Dispatch(ctx context.Context, req *dialog.WebhookRequest) dialog.Reply {
	return s.reply
}

type stubBoards struct {
	open    []*models.Board
	players []*models.BoardPlayer
	err     error
}

func (s *stubBoards) ListOpen(ctx context.Context) ([]*models.Board, error) {
	return s.open, s.err
}

func (s *stubBoards) Players(ctx context.Context, boardID int) ([]*models.BoardPlayer, error) {
	return s.players, s.err
}

type stubJackpots struct {
	jp *models.Jackpot
}

func (s *stubJackpots) GetByBoardID(ctx context.Context, boardID int) (*models.Jackpot, error) {
	return s.jp, nil
}

type stubAlbums struct {
	albums     []*models.Album
	paymentURL string
	startErr   error
	settleErr  error

	settledID    int64
	settledState string
}

func (s *stubAlbums) ListActive(ctx context.Context) ([]*models.Album, error) {
	return s.albums, nil
}

func (s *stubAlbums) StartPurchase(ctx context.Context, userId int64, albumID int) (string, error) {
	return s.paymentURL, s.startErr
}

func (s *stubAlbums) Settle(ctx context.Context, purchaseID int64, state string) error {
	s.settledID = purchaseID
	s.settledState = state
	return s.settleErr
}

type stubSimulator struct {
	made    int
	skipped int
	err     error

	gotBoardID int
}

func (s *stubSimulator) Run(ctx context.Context, boardID int) (int, int, error) {
	s.gotBoardID = boardID
	return s.made, s.skipped, s.err
}

type testEnv struct {
	dispatcher *stubDispatcher
	boards     *stubBoards
	jackpots   *stubJackpots
	albums     *stubAlbums
	simulator  *stubSimulator
	handler    *Handler
	router     *chi.Mux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	env := &testEnv{
		dispatcher: &stubDispatcher{},
		boards:     &stubBoards{},
		jackpots:   &stubJackpots{},
		albums:     &stubAlbums{},
		simulator:  &stubSimulator{},
	}
	env.handler = NewHandler(env.dispatcher, env.boards, env.jackpots, env.albums, env.simulator, nil, ws.NewHub())
	env.handler.InitAuth()

	env.router = chi.NewRouter()
	env.handler.SetRoutes(env.router)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestOpenBoardsEmptyIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/tableros_abiertos", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "No hay tableros abiertos.", body["message"])
}

func TestOpenBoardsList(t *testing.T) {
	env := newTestEnv(t)
	env.boards.open = []*models.Board{
		{ID: 4, Name: "Tablero Estelar", UnitPrice: decimal.NewFromInt(1000)},
	}

	rec := env.do(t, http.MethodGet, "/tableros_abiertos", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, float64(4), items[0]["id_tablero"])
	assert.Equal(t, "Tablero Estelar", items[0]["nombre"])
	assert.Equal(t, float64(1000), items[0]["precio_por_bolita"])
}

func TestBoardPlayersNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/tablero/4/jugadores", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBoardPlayersList(t *testing.T) {
	env := newTestEnv(t)
	env.boards.players = []*models.BoardPlayer{
		{UserId: 111, Alias: "marta", Sponsor: "carlos", TotalUnits: 7},
	}

	rec := env.do(t, http.MethodGet, "/tablero/4/jugadores", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "marta", items[0]["alias"])
	assert.Equal(t, float64(7), items[0]["total_bolitas"])
}

func TestBoardJackpot(t *testing.T) {
	env := newTestEnv(t)
	env.jackpots.jp = &models.Jackpot{
		BoardID:      4,
		AccumUnits:   8,
		WinnerPrize:  decimal.NewFromInt(2720),
		SponsorPrize: decimal.NewFromInt(480),
	}

	rec := env.do(t, http.MethodGet, "/tablero/4/jackpot", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(4), body["id_tablero"])
	assert.Equal(t, float64(8), body["acum_bolitas"])
	assert.Equal(t, float64(2720), body["premio_ganador"])
	assert.Equal(t, float64(480), body["premio_sponsor"])
}

func TestBoardJackpotNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/tablero/4/jackpot", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBoardJackpotBadID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/tablero/cuatro/jackpot", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookAlwaysAnswers200(t *testing.T) {
	env := newTestEnv(t)
	env.dispatcher.reply = dialog.Text("⚠️ Acción no reconocida.")

	body := map[string]interface{}{
		"queryResult": map[string]interface{}{"action": "actQueNoExiste"},
	}
	rec := env.do(t, http.MethodPost, "/webhook", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	var reply dialog.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "⚠️ Acción no reconocida.", reply.FulfillmentText)
}

func TestStartAlbumPurchase(t *testing.T) {
	env := newTestEnv(t)
	env.albums.paymentURL = "https://checkout.bold.co/abc"

	body := map[string]interface{}{"user_id": 111, "id_album": 1}
	rec := env.do(t, http.MethodPost, "/iniciar_compra_album", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://checkout.bold.co/abc", resp["payment_url"])
}

func TestStartAlbumPurchaseMissingParams(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/iniciar_compra_album", map[string]interface{}{"user_id": 111})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartAlbumPurchaseUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.albums.startErr = service.ErrAlbumNotAvailable

	body := map[string]interface{}{"user_id": 111, "id_album": 9}
	rec := env.do(t, http.MethodPost, "/iniciar_compra_album", body)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBoldCallbackSettlesPurchase(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]interface{}{"reference": "42", "status": "completado"}
	rec := env.do(t, http.MethodPost, "/callback_bold", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), env.albums.settledID)
	assert.Equal(t, "completado", env.albums.settledState)
}

func TestBoldCallbackMissingParams(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/callback_bold", map[string]interface{}{"reference": "42"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulateRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/simular_compras", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSimulateWithToken(t *testing.T) {
	env := newTestEnv(t)

	_, token, err := env.handler.tokenAuth.Encode(map[string]interface{}{"service_id": 1})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/simular_compras?tablero=4", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, env.simulator.gotBoardID)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Simulación de compras completada.", body["message"])
}
