package dialog

// WebhookRequest is the body Dialogflow posts to /webhook. Only the fields
// the dispatcher reads are modeled.
type WebhookRequest struct {
	QueryResult                 QueryResult                 `json:"queryResult"`
	OriginalDetectIntentRequest OriginalDetectIntentRequest `json:"originalDetectIntentRequest"`
}

type QueryResult struct {
	Action     string                 `json:"action"`
	Parameters map[string]interface{} `json:"parameters"`
}

type OriginalDetectIntentRequest struct {
	Payload struct {
		Data struct {
			From          *TelegramUser `json:"from"`
			CallbackQuery *struct {
				From *TelegramUser `json:"from"`
			} `json:"callback_query"`
		} `json:"data"`
	} `json:"payload"`
}

type TelegramUser struct {
	ID int64 `json:"id"`
}

// CallerID extracts the Telegram user id: the direct message sender when
// present, otherwise the callback-query sender. ok is false when neither is
// in the payload, which is an input contract violation handled before any
// dispatch.
func (r *WebhookRequest) CallerID() (int64, bool) {
	data := r.OriginalDetectIntentRequest.Payload.Data
	if data.From != nil {
		return data.From.ID, true
	}
	if data.CallbackQuery != nil && data.CallbackQuery.From != nil {
		return data.CallbackQuery.From.ID, true
	}
	return 0, false
}
