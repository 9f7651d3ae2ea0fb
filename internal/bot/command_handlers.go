package bot

const welcomeText = `🤖 *Welcome to TL;DRgram\!*

Send me a link to a web page or a YouTube video and I will reply with a short summary of it\.`

const helpText = `*How it works*

– Send a single http\(s\) link, optionally surrounded by text
– YouTube links are summarized from the video transcript
– Other links are summarized from the main text of the page
– Only one link is processed at a time, so please wait for the reply`

func (b *Bot) handleStartCommand(chatID int64) error {
	return b.sendMessageWithKeyboard(chatID, welcomeText, b.helpKeyboard)
}

func (b *Bot) handleHelpCommand(chatID int64) error {
	return b.sendMessage(chatID, helpText)
}
