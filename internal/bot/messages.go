package bot

import (
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/chiaheng/health-linebot-go/internal/lineutil"
)

// User-facing reply text. The wording is part of the bot's contract
// with its (Traditional Chinese speaking) users, keep it verbatim.
const (
	msgAskName        = "請輸入姓名"
	msgAskNationalID  = "請輸入身分證字號"
	msgAskPhone       = "請輸入電話號碼"
	msgAskNameAgain   = "請重新輸入姓名"
	msgLinked         = "連結成功"
	msgLinkConflict   = "重複連結或錯誤，請確認!"
	msgContactAdmin   = "請聯絡管理員"
	msgIDFormatError  = "身分證字號格式錯誤，請輸入有效的身分證字號（1個字母 + 9個數字）"
	msgIDFormatError2 = "格式錯誤！請輸入 1 個英文字母和 9 個數字。"
	msgLoginStepError = "登入步驟錯誤或身分證字號格式錯誤"
	msgPleaseRegister = "請註冊!!"
	msgRegistered     = "註冊完成！請輸入身分證字號登入"
	msgRegisterFailed = "註冊失敗！請稍後嘗試!"
	msgLoggedOut      = "登出成功"
	msgPleaseRetry    = "請重試"
	msgPointKeepGoing = "集點成功，加油!!"
	msgPointComplete  = "集滿囉!!!可以拿給志工確認換禮物囉~"
	msgPointAboveGoal = "有持續量血壓很棒喔~"
	msgPointFailed    = "集點失敗！請稍後嘗試!"
	msgPointAdded     = "集點完成"

	welcomeText = "您好！歡迎使用健康小幫手，您看起來還不是我們會員，請選擇新會員或其他以獲得服務。"

	progressAltText = "hello"
	progressCaption = "目前集點進度"
)

// Progress bubble titles per counter.
const (
	titleCollectCard = "集點券"
	titleMonitor     = "量血壓次數"
	titleEducate     = "AI衛教次數"
	titleExercise    = "運動次數"
)

// operationMenu asks whether the user wants to start collecting points.
func operationMenu() messaging_api.MessageInterface {
	return lineutil.NewButtonsTemplate(
		"請問你要進行什麼操作？",
		"請問你要進行什麼操作？",
		"請點擊以下選項",
		[]lineutil.Action{
			lineutil.NewPostbackAction("開始集點", postbackStart),
			lineutil.NewPostbackAction("不需要操作", postbackLogout),
		},
	)
}

// activityMenu lists the point-collecting activities.
func activityMenu() messaging_api.MessageInterface {
	return lineutil.NewButtonsTemplate(
		"請問你要進行什麼集點？",
		"請問你要處理哪個項目？",
		"請點擊以下選項",
		activityActions(),
	)
}

// otherOperationMenu is pushed after a point was collected.
func otherOperationMenu() messaging_api.MessageInterface {
	return lineutil.NewButtonsTemplate(
		"請問你還需要處理其他項目嗎？",
		"請問你還需要處理其他項目嗎？",
		"請點擊以下選項",
		activityActions(),
	)
}

func activityActions() []lineutil.Action {
	return []lineutil.Action{
		lineutil.NewPostbackAction("生理監測", postbackMonitor),
		lineutil.NewPostbackAction("AI衛教", postbackEducate),
		lineutil.NewPostbackAction("運動", postbackExercise),
		lineutil.NewPostbackAction("登出", postbackLogout),
	}
}

// confirmProfileMessage summarizes the collected registration data and
// asks the user to confirm it.
func confirmProfileMessage(name, nationalID, phone string) messaging_api.MessageInterface {
	text := fmt.Sprintf("您的姓名是 %s、\n身份證字號是 %s、\n電話是 %s。\n請問是否正確？", name, nationalID, phone)
	return lineutil.NewButtonsTemplate(
		"確認資料",
		"請確認您的資料",
		text,
		[]lineutil.Action{
			lineutil.NewPostbackAction("是", postbackCorrect),
			lineutil.NewPostbackAction("否", postbackIncorrect),
		},
	)
}

// WelcomeMessages builds the follow-event greeting. displayName is
// prepended when the profile lookup succeeded.
func WelcomeMessages(displayName string) []messaging_api.MessageInterface {
	greeting := welcomeText
	if displayName != "" {
		greeting = displayName + welcomeText
	}

	menu := lineutil.NewButtonsTemplate(
		"歡迎新朋友～",
		"服務選單",
		"請點擊以下選項",
		[]lineutil.Action{
			lineutil.NewMessageAction("新會員", keywordNewMember),
			lineutil.NewPostbackAction("其他", "idontknow"),
		},
	)

	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(greeting),
		menu,
	}
}
