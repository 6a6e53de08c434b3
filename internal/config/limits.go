// Package config provides LINE Messaging API limit constants.
// Values come from the published API reference:
// https://developers.line.biz/en/reference/messaging-api/
package config

const (
	// LINEMaxMessagesPerReply is the maximum number of message objects in a
	// single reply or push request.
	LINEMaxMessagesPerReply = 5

	// LINEMaxPostbackDataLength is the maximum byte length of postback data.
	LINEMaxPostbackDataLength = 300
)
