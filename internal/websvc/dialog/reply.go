package dialog

// Reply is the Dialogflow fulfillment payload: either plain text or a
// Telegram-specific rich message. Chat transports expect HTTP 200 regardless
// of the business outcome, so every handler path ends in one of these.
type Reply struct {
	FulfillmentText     string    `json:"fulfillmentText,omitempty"`
	FulfillmentMessages []Message `json:"fulfillmentMessages,omitempty"`
}

type Message struct {
	Platform string  `json:"platform,omitempty"`
	Payload  Payload `json:"payload"`
}

type Payload struct {
	Telegram TelegramPayload `json:"telegram"`
}

type TelegramPayload struct {
	ParseMode   string          `json:"parse_mode,omitempty"`
	Text        string          `json:"text"`
	ReplyMarkup *InlineKeyboard `json:"reply_markup,omitempty"`
}

// InlineKeyboard mirrors Telegram's reply_markup shape: rows of buttons that
// either fire a callback or open a mini-app.
type InlineKeyboard struct {
	InlineKeyboard [][]Button `json:"inline_keyboard"`
}

type Button struct {
	Text         string     `json:"text"`
	CallbackData string     `json:"callback_data,omitempty"`
	WebApp       *WebAppURL `json:"web_app,omitempty"`
}

type WebAppURL struct {
	URL string `json:"url"`
}

// Text builds a plain fulfillmentText reply.
func Text(text string) Reply {
	return Reply{FulfillmentText: text}
}

// Telegram builds a Markdown Telegram message, optionally with an inline
// keyboard.
func Telegram(text string, keyboard *InlineKeyboard) Reply {
	return Reply{
		FulfillmentMessages: []Message{
			{
				Platform: "TELEGRAM",
				Payload: Payload{
					Telegram: TelegramPayload{
						ParseMode:   "Markdown",
						Text:        text,
						ReplyMarkup: keyboard,
					},
				},
			},
		},
	}
}

// Summary returns the reply's text for logging and auditing.
func (r Reply) Summary() string {
	if r.FulfillmentText != "" {
		return r.FulfillmentText
	}
	if len(r.FulfillmentMessages) > 0 {
		return r.FulfillmentMessages[0].Payload.Telegram.Text
	}
	return ""
}
