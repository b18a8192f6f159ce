package dialog

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialogflow hands parameters over as a loosely typed string-keyed map;
// values arrive as strings or JSON numbers depending on the entity type, and
// board ids picked from callback buttons carry a trailing "|". Everything is
// decoded into a typed struct here, before a handler runs.

type RegisterParams struct {
	Phone   string
	Alias   string
	Sponsor string
}

type ChangePhoneParams struct {
	Phone string
}

type SelectBoardParams struct {
	BoardID int
}

type BuyUnitsParams struct {
	BoardID  int
	Quantity int
}

type PlayedBoardsParams struct {
	Month int
	Year  int
}

type QueryBoardParams struct {
	BoardID int
}

func paramString(params map[string]interface{}, key string) string {
	v, ok := params[key]
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		// whole numbers come through as float64
		return strconv.FormatInt(int64(t), 10)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

func paramInt(params map[string]interface{}, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, "|", ""))
		if s == "" {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func parseRegisterParams(params map[string]interface{}) (RegisterParams, bool) {
	p := RegisterParams{
		Phone:   paramString(params, "rtaCelularNequi"),
		Alias:   paramString(params, "rtaAlias"),
		Sponsor: paramString(params, "rtaSponsor"),
	}
	if p.Phone == "" || p.Alias == "" || p.Sponsor == "" {
		return p, false
	}
	return p, true
}

func parseChangePhoneParams(params map[string]interface{}) (ChangePhoneParams, bool) {
	p := ChangePhoneParams{Phone: paramString(params, "rtaNuevoNequi")}
	return p, p.Phone != ""
}

func parseSelectBoardParams(params map[string]interface{}) (SelectBoardParams, bool) {
	id, ok := paramInt(params, "rtaTableroID")
	return SelectBoardParams{BoardID: id}, ok
}

// parseBuyUnitsParams reports the two fields separately so the reply can name
// the one that is actually missing.
func parseBuyUnitsParams(params map[string]interface{}) (p BuyUnitsParams, okID, okQty bool) {
	p.BoardID, okID = paramInt(params, "rtaTableroID")
	p.Quantity, okQty = paramInt(params, "rtaCantBolitas")
	return p, okID, okQty
}

func parseQueryBoardParams(params map[string]interface{}) (QueryBoardParams, bool) {
	id, ok := paramInt(params, "rtaIDTablero")
	return QueryBoardParams{BoardID: id}, ok
}
