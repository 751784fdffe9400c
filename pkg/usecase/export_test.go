package usecase

// ArgumentText is exported for testing
var ArgumentText = argumentText

// ChatTurns is exported for testing
var ChatTurns = (*Conversation).chatTurns

// ChatPrompt is exported for testing
var ChatPrompt = (*Conversation).chatPrompt
