package bot

import "github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

// Input is one inbound conversation event. An event is exactly one of
// TextInput or ButtonInput.
type Input interface {
	isInput()
}

// TextInput is a free-text message from the user.
type TextInput struct {
	Text string
}

func (TextInput) isInput() {}

// ButtonInput is a postback token from a button press.
type ButtonInput struct {
	Data string
}

func (ButtonInput) isInput() {}

// Postback tokens the dispatcher understands.
const (
	postbackCorrect   = "correct"
	postbackIncorrect = "incorrect"
	postbackStart     = "start"
	postbackLogout    = "logout"
	postbackMonitor   = "monitor"
	postbackEducate   = "educate"
	postbackExercise  = "exercise"
)

// Keywords recognized in the idle state.
const (
	keywordNewMember = "新會員"
	keywordLink      = "連結LINE集點"
	keywordLogin     = "登入"
	keywordCollect   = "集點"
	keywordAllPoints = "所有集點"
)

// Result is the outcome of dispatching one event: at most one batch of
// reply-mode messages (consumes the event's reply token) plus zero or
// more push batches addressed to the user ID.
type Result struct {
	Reply  []messaging_api.MessageInterface
	Pushes [][]messaging_api.MessageInterface
}

func (r *Result) reply(msgs ...messaging_api.MessageInterface) {
	r.Reply = append(r.Reply, msgs...)
}

func (r *Result) push(msgs ...messaging_api.MessageInterface) {
	r.Pushes = append(r.Pushes, msgs)
}

// Empty reports whether the event produced no outbound messages.
func (r *Result) Empty() bool {
	return len(r.Reply) == 0 && len(r.Pushes) == 0
}
