package dialog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/solutions-systems/bolas-locas/internal/websvc/jackpot"
	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
	"github.com/solutions-systems/bolas-locas/internal/websvc/service"
	"github.com/solutions-systems/bolas-locas/internal/websvc/store"
)

// Action names Dialogflow sends in queryResult.action. One constant per
// intent; anything else falls through to the not-recognized reply.
type Action string

const (
	ActionAccount         Action = "actDatosCuenta"
	ActionChangePhone     Action = "actCambiarNequi"
	ActionPlay            Action = "actJugar"
	ActionRegister        Action = "actRegistrarUsuario"
	ActionSelectBoard     Action = "actTableroSelect"
	ActionBuyUnits        Action = "actComprarBolitas"
	ActionMyOpenBoards    Action = "actMisTabAbiertos"
	ActionPlayedBoards    Action = "actMisTabJugados"
	ActionQueryBoard      Action = "actConsultaTablero"
	ActionWonBoards       Action = "actMisTabGanados"
	ActionBuyAlbum        Action = "actComprarAlbum"
	ActionBuyAlbumMiniApp Action = "actComprarAlbumMiniApp"
)

// Shared literal replies.
const (
	msgNotRegistered   = "❌ No estás registrado en el sistema."
	msgNoCallerID      = "❌ Error: No se pudo obtener el ID de usuario de Telegram."
	msgUnknownAction   = "⚠️ Acción no reconocida."
	msgMissingParams   = "❌ Faltan parámetros obligatorios. Verifica la información ingresada."
	msgInvalidPhone    = "❌ El número de celular debe tener 10 dígitos y empezar por 3."
	msgGenericFailure  = "❌ Hubo un error al procesar la solicitud."
	msgBoardIDMissing  = "❌ No se recibió el ID del tablero."
	msgQuantityMissing = "❌ No se recibió la cantidad de bolitas."
	msgBoardNotFound   = "❌ Tablero no encontrado."
)

// The service dependencies the dispatcher needs, narrowed to what it calls.
type PlayerDirectory interface {
	GetByUserID(ctx context.Context, userId int64) (*models.Player, error)
	Register(ctx context.Context, userId int64, rawPhone, alias, sponsor string) (string, error)
	ChangePhone(ctx context.Context, userId int64, rawPhone string) error
}

type BoardCatalog interface {
	GetByID(ctx context.Context, boardID int) (*models.Board, error)
	ListOpen(ctx context.Context) ([]*models.Board, error)
	Stats(ctx context.Context, boardID int) (players, units int, err error)
	OpenBoardSummaries(ctx context.Context, userId int64) ([]*models.PlayerBoardSummary, error)
	PlayedBoardIDs(ctx context.Context, userId int64, month, year int) ([]int, error)
}

type JackpotLedger interface {
	GetByBoardID(ctx context.Context, boardID int) (*models.Jackpot, error)
	WonByAlias(ctx context.Context, alias string) ([]*models.Jackpot, error)
	WinnerPrizeByBoard(ctx context.Context) (map[int]decimal.Decimal, error)
}

type UnitSeller interface {
	Buy(ctx context.Context, userId int64, boardID, qty int) (*store.PurchaseResult, error)
}

type AlbumCatalog interface {
	ListActive(ctx context.Context) ([]*models.Album, error)
}

// Dispatcher routes a webhook request to the handler its action names.
// Stateless: every request stands alone.
type Dispatcher struct {
	players  PlayerDirectory
	boards   BoardCatalog
	jackpots JackpotLedger
	seller   UnitSeller
	albums   AlbumCatalog

	miniAppURL string
}

func NewDispatcher(players PlayerDirectory, boards BoardCatalog, jackpots JackpotLedger, seller UnitSeller, albums AlbumCatalog) *Dispatcher {
	return &Dispatcher{
		players:    players,
		boards:     boards,
		jackpots:   jackpots,
		seller:     seller,
		albums:     albums,
		miniAppURL: os.Getenv("MINI_APP_URL"),
	}
}

// Dispatch resolves the caller and the action and runs the matching handler.
// Every outcome, including unknown actions and contract violations, is a
// well-formed chat reply.
func (d *Dispatcher) Dispatch(ctx context.Context, req *WebhookRequest) Reply {
	userId, ok := req.CallerID()
	if !ok {
		return Text(msgNoCallerID)
	}

	params := req.QueryResult.Parameters

	switch Action(req.QueryResult.Action) {
	case ActionAccount:
		return d.handleAccount(ctx, userId)
	case ActionChangePhone:
		return d.handleChangePhone(ctx, userId, params)
	case ActionPlay:
		return d.handlePlay(ctx, userId)
	case ActionRegister:
		return d.handleRegister(ctx, userId, params)
	case ActionSelectBoard:
		return d.handleSelectBoard(ctx, params)
	case ActionBuyUnits:
		return d.handleBuyUnits(ctx, userId, params)
	case ActionMyOpenBoards:
		return d.handleMyOpenBoards(ctx, userId)
	case ActionPlayedBoards:
		return d.handlePlayedBoards(ctx, userId, params)
	case ActionQueryBoard:
		return d.handleQueryBoard(ctx, params)
	case ActionWonBoards:
		return d.handleWonBoards(ctx, userId)
	case ActionBuyAlbum:
		return d.handleBuyAlbum(ctx)
	case ActionBuyAlbumMiniApp:
		return d.handleBuyAlbumMiniApp()
	default:
		return Text(msgUnknownAction)
	}
}

func (d *Dispatcher) handleRegister(ctx context.Context, userId int64, params map[string]interface{}) Reply {
	existing, err := d.players.GetByUserID(ctx, userId)
	if err != nil {
		log.Errorf("register: lookup caller %d: %v", userId, err)
		return Text(msgGenericFailure)
	}
	if existing != nil {
		return Text("⚠️ Esta cuenta de Telegram ya está registrada en el Juego Bolas Locas.")
	}

	p, ok := parseRegisterParams(params)
	if !ok {
		return Text(msgMissingParams)
	}

	sponsor, err := d.players.Register(ctx, userId, p.Phone, p.Alias, p.Sponsor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPhone):
			return Text(msgInvalidPhone)
		case errors.Is(err, service.ErrNoPlayersForAuto):
			return Text("❌ No hay usuarios registrados para asignar como sponsor.")
		case errors.Is(err, service.ErrSponsorNotFound):
			return Text(fmt.Sprintf("❌ El usuario %s no existe. Verifica y vuelve a intentarlo.", p.Sponsor))
		case errors.Is(err, store.ErrDuplicatePlayer):
			return Text("⚠️ Esta cuenta de Telegram ya está registrada en el Juego Bolas Locas.")
		default:
			log.Errorf("register: create player %d: %v", userId, err)
			return Text("❌ Hubo un error al registrar el usuario.")
		}
	}

	return Text(fmt.Sprintf("✅ Usuario %s registrado correctamente con sponsor %s.", p.Alias, sponsor))
}

func (d *Dispatcher) handleAccount(ctx context.Context, userId int64) Reply {
	player, err := d.players.GetByUserID(ctx, userId)
	if err != nil {
		log.Errorf("account: lookup caller %d: %v", userId, err)
		return Text(msgGenericFailure)
	}
	if player == nil {
		return Text(msgNotRegistered)
	}

	text := fmt.Sprintf(
		"Tu cuenta en *Bolas Locas:*\n\n"+
			"👤 *Usuario:* _%s_\n"+
			"📱 *Número registrado en Nequi:* _%s_\n"+
			"🤝 *Patrocinador:* _%s_\n\n"+
			"💲 *SALDO:* _%s_\n\n"+
			"🔽 ¿Qué quieres hacer?",
		player.Alias, player.Phone, player.Sponsor, FormatCOP(player.Balance),
	)

	keyboard := &InlineKeyboard{InlineKeyboard: [][]Button{
		{{Text: "💲 Recargar saldo", CallbackData: "recargar_saldo"}},
		{{Text: "🔄 Cambiar número Nequi", CallbackData: "c4mb14r_n3qu1"}},
		{{Text: "📋 Mis tableros", CallbackData: "M1st4bl4s"}},
		{{Text: "🔮 Jugar", CallbackData: "1n1c10Ju3g0"}},
	}}

	return Telegram(text, keyboard)
}

func (d *Dispatcher) handleChangePhone(ctx context.Context, userId int64, params map[string]interface{}) Reply {
	p, ok := parseChangePhoneParams(params)
	if !ok {
		return Text(msgInvalidPhone)
	}

	if err := d.players.ChangePhone(ctx, userId, p.Phone); err != nil {
		if errors.Is(err, service.ErrInvalidPhone) {
			return Text(msgInvalidPhone)
		}
		log.Errorf("change phone for %d: %v", userId, err)
		return Text(msgGenericFailure)
	}

	return Text("✅ Número de Nequi actualizado correctamente.")
}

func (d *Dispatcher) handlePlay(ctx context.Context, userId int64) Reply {
	player, err := d.players.GetByUserID(ctx, userId)
	if err != nil {
		log.Errorf("play: lookup caller %d: %v", userId, err)
		return Text(msgGenericFailure)
	}
	if player == nil {
		return Text(msgNotRegistered)
	}

	boards, err := d.boards.ListOpen(ctx)
	if err != nil {
		log.Errorf("play: list open boards: %v", err)
		return Text(msgGenericFailure)
	}
	if len(boards) == 0 {
		return Text("🚧 No hay tableros disponibles en este momento.")
	}

	prizes, err := d.jackpots.WinnerPrizeByBoard(ctx)
	if err != nil {
		log.Errorf("play: winner prizes: %v", err)
		return Text(msgGenericFailure)
	}

	rows := make([][]Button, 0, len(boards))
	for _, b := range boards {
		prize := prizes[b.ID] // zero when the board has no jackpot yet
		rows = append(rows, []Button{{
			Text:         fmt.Sprintf("#ID: %d - 🟢 %s  - 💰 Acum: %s", b.ID, FormatCOP(b.UnitPrice), FormatCOP(prize)),
			CallbackData: fmt.Sprintf("t4bl3r0s3l|%d", b.ID),
		}})
	}

	return Telegram("🎲 *Selecciona un tablero para jugar:*", &InlineKeyboard{InlineKeyboard: rows})
}

func (d *Dispatcher) handleSelectBoard(ctx context.Context, params map[string]interface{}) Reply {
	p, ok := parseSelectBoardParams(params)
	if !ok {
		return Text(msgBoardIDMissing)
	}

	board, err := d.boards.GetByID(ctx, p.BoardID)
	if err != nil {
		log.Errorf("select board %d: %v", p.BoardID, err)
		return Text(msgGenericFailure)
	}
	if board == nil {
		return Text(msgBoardNotFound)
	}

	enrolled, _, err := d.boards.Stats(ctx, p.BoardID)
	if err != nil {
		log.Errorf("select board %d stats: %v", p.BoardID, err)
		return Text(msgGenericFailure)
	}

	jp, err := d.jackpots.GetByBoardID(ctx, p.BoardID)
	if err != nil {
		log.Errorf("select board %d jackpot: %v", p.BoardID, err)
		return Text(msgGenericFailure)
	}
	prize := decimal.Zero
	if jp != nil {
		prize = jp.WinnerPrize
	}

	text := fmt.Sprintf(
		"📋 Tablero ID: %d\n\n"+
			"🟢 Precio/Bolita: %s\n"+
			"🔹 Mín. por jugador: %d\n"+
			"🔷 Máx. por jugador: %d\n"+
			"🙂 Jugadores inscritos: %d\n\n"+
			"💰 ACUMULADO: %s",
		board.ID, FormatCOP(board.UnitPrice), board.MinPerPlayer, board.MaxPerPlayer, enrolled, FormatCOP(prize),
	)

	keyboard := &InlineKeyboard{InlineKeyboard: [][]Button{
		{{Text: "👉 Comprar Bolitas 🚀", CallbackData: fmt.Sprintf("C0mpr4rB0l1t4s|%d", board.ID)}},
	}}

	return Telegram(text, keyboard)
}

func (d *Dispatcher) handleBuyUnits(ctx context.Context, userId int64, params map[string]interface{}) Reply {
	p, okID, okQty := parseBuyUnitsParams(params)
	if !okID {
		return Text(msgBoardIDMissing)
	}
	if !okQty {
		return Text(msgQuantityMissing)
	}

	_, err := d.seller.Buy(ctx, userId, p.BoardID, p.Quantity)
	if err != nil {
		var limitErr *jackpot.LimitExceededError
		switch {
		case errors.Is(err, jackpot.ErrBoardNotFound):
			return Text(msgBoardNotFound)
		case errors.Is(err, jackpot.ErrPlayerNotFound):
			return Text(msgNotRegistered)
		case errors.Is(err, jackpot.ErrInsufficientBalance):
			return Text("❌ No tienes saldo suficiente.")
		case errors.Is(err, jackpot.ErrQuantityOutOfRange):
			return Text("❌ Cantidad de bolitas fuera del rango permitido.")
		case errors.As(err, &limitErr):
			return Text(fmt.Sprintf(
				"❌ No puedes comprar más bolitas. Ya tienes %d y el límite es %d.",
				limitErr.CurrentUnits, limitErr.Limit,
			))
		default:
			log.Errorf("buy %d units on board %d for %d: %v", p.Quantity, p.BoardID, userId, err)
			return Text(msgGenericFailure)
		}
	}

	return Text("✅ Compra realizada con éxito.")
}

func (d *Dispatcher) handleMyOpenBoards(ctx context.Context, userId int64) Reply {
	summaries, err := d.boards.OpenBoardSummaries(ctx, userId)
	if err != nil {
		log.Errorf("open board summaries for %d: %v", userId, err)
		return Text(msgGenericFailure)
	}
	if len(summaries) == 0 {
		return Text("📭 No estás inscrito en ningún tablero abierto en este momento.")
	}

	var b strings.Builder
	b.WriteString("📋 *Mis Tableros Abiertos:*\n\n")
	for _, s := range summaries {
		fmt.Fprintf(&b,
			"🔹 *ID Tablero:* %d\n"+
				"📅 *Fecha de creación:* %s\n"+
				"🔮 *Bolitas compradas por ti:* %d\n"+
				"💠 *Bolitas totales en el tablero:* %d\n"+
				"💰 *Acumulado del tablero:* %s\n\n",
			s.BoardID,
			s.BoardCreatedAt.Format("2006-01-02 15:04:05"),
			s.UnitsByPlayer,
			s.UnitsOnBoard,
			FormatCOP(s.WinnerPrize),
		)
	}

	return Telegram(b.String(), nil)
}

func (d *Dispatcher) handlePlayedBoards(ctx context.Context, userId int64, params map[string]interface{}) Reply {
	rawMonth := paramString(params, "rtaMes")
	rawYear := paramString(params, "rtaAnio")
	if rawMonth == "" || rawYear == "" {
		return Text("❌ Faltan parámetros obligatorios (mes o año).")
	}

	month, errM := strconv.Atoi(rawMonth)
	year, errY := strconv.Atoi(rawYear)
	if errM != nil || errY != nil {
		return Text("❌ El mes y el año deben ser números válidos.")
	}
	if month < 1 || month > 12 {
		return Text("❌ El mes debe estar entre 1 y 12.")
	}

	ids, err := d.boards.PlayedBoardIDs(ctx, userId, month, year)
	if err != nil {
		log.Errorf("played boards for %d (%d/%d): %v", userId, month, year, err)
		return Text(msgGenericFailure)
	}
	if len(ids) == 0 {
		return Text(fmt.Sprintf("📭 No participaste en ningún tablero en %d/%d.", month, year))
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}

	return Text(fmt.Sprintf(
		"📋 ID de los Tableros en los que participaste en %d/%d:\n\n %s",
		month, year, strings.Join(parts, ", "),
	))
}

func (d *Dispatcher) handleQueryBoard(ctx context.Context, params map[string]interface{}) Reply {
	p, ok := parseQueryBoardParams(params)
	if !ok {
		return Text("❌ Faltan parámetros obligatorios (ID del tablero).")
	}

	jp, err := d.jackpots.GetByBoardID(ctx, p.BoardID)
	if err != nil {
		log.Errorf("query board %d: %v", p.BoardID, err)
		return Text(msgGenericFailure)
	}
	if jp == nil {
		return Text(fmt.Sprintf("❌ No se encontró información para el tablero con ID %d.", p.BoardID))
	}

	return Telegram(formatJackpotDetail("📋 *Información del Tablero ID %d:*\n\n", jp), nil)
}

func (d *Dispatcher) handleWonBoards(ctx context.Context, userId int64) Reply {
	player, err := d.players.GetByUserID(ctx, userId)
	if err != nil {
		log.Errorf("won boards: lookup caller %d: %v", userId, err)
		return Text(msgGenericFailure)
	}
	if player == nil {
		return Text(msgNotRegistered)
	}

	jackpots, err := d.jackpots.WonByAlias(ctx, player.Alias)
	if err != nil {
		log.Errorf("won boards for %s: %v", player.Alias, err)
		return Text(msgGenericFailure)
	}
	if len(jackpots) == 0 {
		return Text("📭 No has ganado ni has sido sponsor en ningún tablero ganador.")
	}

	var b strings.Builder
	b.WriteString("🏆 *Tus Tableros Ganados o con ganacias como Sponsor:*\n\n")
	for _, jp := range jackpots {
		b.WriteString(formatJackpotDetail("🔹 *ID Tablero:* %d\n", jp))
		b.WriteString("\n")
	}

	return Telegram(b.String(), nil)
}

// formatJackpotDetail renders the shared jackpot/payout block; header is a
// format string receiving the board id.
func formatJackpotDetail(header string, jp *models.Jackpot) string {
	paidAt := "N/A"
	if jp.PaidAt != nil {
		paidAt = jp.PaidAt.Format("2006-01-02 15:04:05")
	}

	var b strings.Builder
	fmt.Fprintf(&b, header, jp.BoardID)
	fmt.Fprintf(&b,
		"💰 *Monto Acumulado:* %s\n"+
			"🔮 *Bolitas Jugadas:* %d\n"+
			"🏆 *Usuario Ganador:* %s\n"+
			"🤝 *Sponsor del Ganador:* %s\n"+
			"🎁 *Premio del Ganador:* %s\n"+
			"🎁 *Premio del Sponsor:* %s\n\n"+
			"📊 *Estado del tablero:* %s\n"+
			"🔗 *Link Soporte pago:* %s\n"+
			"📅 *Fecha de Pago:* %s\n",
		FormatCOP(jp.AccumAmount),
		jp.AccumUnits,
		orNA(jp.WinnerAlias),
		orNA(jp.SponsorAlias),
		FormatCOP(jp.WinnerPrize),
		FormatCOP(jp.SponsorPrize),
		capitalize(jp.State),
		orNA(jp.SupportLink),
		paidAt,
	)
	return b.String()
}

func (d *Dispatcher) handleBuyAlbum(ctx context.Context) Reply {
	albums, err := d.albums.ListActive(ctx)
	if err != nil {
		log.Errorf("buy album: list active: %v", err)
		return Text(msgGenericFailure)
	}
	if len(albums) == 0 {
		return Text("📭 No hay álbumes disponibles en este momento.")
	}

	var b strings.Builder
	b.WriteString("📚 *Álbumes Disponibles:*\n\n")
	rows := make([][]Button, 0, len(albums))
	for _, a := range albums {
		fmt.Fprintf(&b, "🔹 *ID:* %d - %s\n💰 Precio: %s\n\n", a.ID, a.Name, FormatCOP(a.Price))
		rows = append(rows, []Button{{
			Text:         fmt.Sprintf("🛒 Comprar Álbum %d", a.ID),
			CallbackData: fmt.Sprintf("C0mpr4r4lbum|%d", a.ID),
		}})
	}

	return Telegram(b.String(), &InlineKeyboard{InlineKeyboard: rows})
}

func (d *Dispatcher) handleBuyAlbumMiniApp() Reply {
	keyboard := &InlineKeyboard{InlineKeyboard: [][]Button{
		{{Text: "👉 Abrir Mini App", WebApp: &WebAppURL{URL: d.miniAppURL}}},
	}}
	return Telegram("🛍️ *Compra un Álbum:*", keyboard)
}
